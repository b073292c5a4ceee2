package photometry

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// lcgDelimiter keeps the api.delim output parseable; observer remarks
// can contain commas.
const lcgDelimiter = "@@@"

// LCGOptions parameterise the AAVSO LCGv2 provider.
type LCGOptions struct {
	BaseURL      string
	Star         string
	Band         string
	Obstype      string
	LookbackDays float64
	Timeout      time.Duration
	UserAgent    string
}

// LCG fetches photometry from the AAVSO LCGv2 delimited API.
type LCG struct {
	opts    LCGOptions
	logger  zerolog.Logger
	client  *http.Client
	baseURL string
	band    *regexp.Regexp
}

// NewLCG constructs an LCGv2 provider.
func NewLCG(opts LCGOptions, logger zerolog.Logger) *LCG {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 45 * time.Second
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://www.aavso.org/LCGv2/index.htm"
	}

	return &LCG{
		opts:    opts,
		logger:  logger.With().Str("component", "lcg_provider").Logger(),
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
		band:    bandPattern(opts.Band),
	}
}

// Name identifies the provider in logs and alerts.
func (l *LCG) Name() string { return "aavso-lcg" }

// FetchLatest retrieves the most recent eligible reading within the
// lookback window.
func (l *LCG) FetchLatest(ctx context.Context) (Observation, bool, error) {
	tojd := JulianDate(time.Now()) + 1.0
	fromjd := tojd - l.opts.LookbackDays

	params := url.Values{}
	params.Set("view", "api.delim")
	params.Set("DateFormat", "Julian")
	params.Set("RequestedBands", l.opts.Band)
	params.Set("ident", l.opts.Star)
	params.Set("fromjd", fmt.Sprintf("%.2f", fromjd))
	params.Set("tojd", fmt.Sprintf("%.2f", tojd))
	params.Set("delimiter", lcgDelimiter)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return Observation{}, false, err
	}
	if ua := strings.TrimSpace(l.opts.UserAgent); ua != "" {
		req.Header.Set("User-Agent", ua)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return Observation{}, false, fmt.Errorf("lcg request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Observation{}, false, fmt.Errorf("lcg read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Observation{}, false, fmt.Errorf("lcg status %d", resp.StatusCode)
	}

	return l.parse(string(body))
}

func (l *LCG) parse(text string) (Observation, bool, error) {
	var lines []string
	for _, ln := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(ln); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}

	header, headerIdx := findHeader(lines)
	if header == nil {
		l.logger.Warn().Int("lines", len(lines)).Msg("response missing header row")
		return Observation{}, false, nil
	}

	var rows [][]string
	for _, ln := range lines[headerIdx+1:] {
		parts := splitTrim(ln, lcgDelimiter)
		if len(parts) < len(header) {
			continue
		}
		rows = append(rows, parts)
	}
	if len(rows) == 0 {
		return Observation{}, false, nil
	}

	jdIdx := pickColumn(header, "HJD", "JD")
	magIdx := pickColumn(header, "Magnitude", "Mag", "mag")
	bandIdx := pickColumn(header, "Band", "Filter")
	typeIdx := pickColumn(header, "Obstype", "Type")
	if jdIdx < 0 || magIdx < 0 || bandIdx < 0 || typeIdx < 0 {
		l.logger.Warn().Strs("header", header).Msg("expected columns not found")
		return Observation{}, false, nil
	}

	obs, found := latestObservation(rows, jdIdx, magIdx, bandIdx, typeIdx, l.band, l.opts.Obstype)
	return obs, found, nil
}

// findHeader locates the column header among preamble lines.
func findHeader(lines []string) ([]string, int) {
	for i, ln := range lines {
		if strings.Contains(ln, "JD") && strings.Contains(ln, "Magnitude") && strings.Contains(ln, "Band") {
			return splitTrim(ln, lcgDelimiter), i
		}
	}
	return nil, -1
}

func splitTrim(line, delim string) []string {
	parts := strings.Split(line, delim)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

var _ Source = (*LCG)(nil)
