package photometry

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// bandPattern matches the configured band on a word boundary,
// case-insensitively, so that band "V" accepts "Johnson V" but not "IV".
func bandPattern(band string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(band) + `\b`)
}

// pickColumn returns the index of the first header name present,
// or -1. Provider exports vary slightly in column naming.
func pickColumn(header []string, names ...string) int {
	for _, name := range names {
		for i, col := range header {
			if col == name {
				return i
			}
		}
	}
	return -1
}

// latestObservation scans tabular rows and returns the most recent
// eligible reading. Eligibility: band matches the pattern, obstype (when a
// column index is given) contains the configured type, and both JD and
// magnitude parse. Ties on JD are broken by keeping the earlier row.
func latestObservation(rows [][]string, jdIdx, magIdx, bandIdx, typeIdx int, band *regexp.Regexp, obstype string) (Observation, bool) {
	var best Observation
	found := false

	obstypeUpper := strings.ToUpper(obstype)
	for _, row := range rows {
		if !band.MatchString(row[bandIdx]) {
			continue
		}
		if typeIdx >= 0 && !strings.Contains(strings.ToUpper(row[typeIdx]), obstypeUpper) {
			continue
		}

		jd, err := strconv.ParseFloat(strings.TrimSpace(row[jdIdx]), 64)
		if err != nil {
			continue
		}
		mag, err := decimal.NewFromString(strings.TrimSpace(row[magIdx]))
		if err != nil {
			continue
		}

		if !found || jd > best.JulianDate {
			best = Observation{Magnitude: mag, JulianDate: jd}
			found = true
		}
	}

	return best, found
}
