package photometry

import (
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// VSXOptions parameterise the AAVSO VSX CSV provider.
type VSXOptions struct {
	BaseURL      string
	Star         string
	Band         string
	Obstype      string
	LookbackDays float64
	MaxRecords   int
	Timeout      time.Duration
	UserAgent    string
}

// VSX fetches photometry from the AAVSO VSX CSV API. It is the fallback
// path when the LCGv2 endpoint misbehaves.
type VSX struct {
	opts    VSXOptions
	logger  zerolog.Logger
	client  *http.Client
	baseURL string
	band    *regexp.Regexp
}

// NewVSX constructs a VSX provider.
func NewVSX(opts VSXOptions, logger zerolog.Logger) *VSX {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 45 * time.Second
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://www.aavso.org/vsx/index.php"
	}

	return &VSX{
		opts:    opts,
		logger:  logger.With().Str("component", "vsx_provider").Logger(),
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
		band:    bandPattern(opts.Band),
	}
}

// Name identifies the provider in logs and alerts.
func (v *VSX) Name() string { return "aavso-vsx" }

// FetchLatest retrieves the most recent eligible reading within the
// lookback window.
func (v *VSX) FetchLatest(ctx context.Context) (Observation, bool, error) {
	tojd := JulianDate(time.Now()) + 1.0
	fromjd := tojd - v.opts.LookbackDays

	maxrec := v.opts.MaxRecords
	if maxrec <= 0 {
		maxrec = 50000
	}

	params := url.Values{}
	params.Set("view", "api.delim")
	params.Set("ident", v.opts.Star)
	params.Set("fromjd", fmt.Sprintf("%.5f", fromjd))
	params.Set("tojd", fmt.Sprintf("%.5f", tojd))
	params.Set("delimiter", ",")
	params.Set("band", v.opts.Band)
	params.Set("mtype", "std")
	params.Set("maxrec", fmt.Sprintf("%d", maxrec))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return Observation{}, false, err
	}
	if ua := strings.TrimSpace(v.opts.UserAgent); ua != "" {
		req.Header.Set("User-Agent", ua)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return Observation{}, false, fmt.Errorf("vsx request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Observation{}, false, fmt.Errorf("vsx status %d", resp.StatusCode)
	}

	reader := csv.NewReader(resp.Body)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return Observation{}, false, fmt.Errorf("vsx parse csv: %w", err)
	}
	if len(records) < 2 {
		return Observation{}, false, nil
	}

	header := records[0]
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	jdIdx := pickColumn(header, "HJD", "JD")
	magIdx := pickColumn(header, "Magnitude", "Mag", "mag")
	bandIdx := pickColumn(header, "Band", "Filter")
	// VSX exports do not always carry an observation type column; when
	// absent, the server-side band/mtype filters are all we get.
	typeIdx := pickColumn(header, "Obstype", "Type")
	if jdIdx < 0 || magIdx < 0 || bandIdx < 0 {
		v.logger.Warn().Strs("header", header).Msg("expected columns not found")
		return Observation{}, false, nil
	}

	var rows [][]string
	for _, rec := range records[1:] {
		if len(rec) < len(header) {
			continue
		}
		rows = append(rows, rec)
	}

	obs, found := latestObservation(rows, jdIdx, magIdx, bandIdx, typeIdx, v.band, v.opts.Obstype)
	return obs, found, nil
}

var _ Source = (*VSX)(nil)
