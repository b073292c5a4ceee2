package photometry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// ErrTargetNotResolved indicates no catalog entry was found near the
// configured coordinates.
var ErrTargetNotResolved = errors.New("skypatrol: target not resolved")

// TargetCache persists the resolved ASAS-SN identifier so the catalog
// lookup runs once per deployment, not once per cycle.
type TargetCache interface {
	TargetID() *int64
	SetTargetID(id int64) error
}

// SkyPatrolOptions parameterise the ASAS-SN SkyPatrol provider.
type SkyPatrolOptions struct {
	BaseURL   string
	Star      string
	Band      string
	RADeg     float64
	DecDeg    float64
	RadiusDeg float64
	Timeout   time.Duration
	UserAgent string
}

// SkyPatrol fetches light curves from the ASAS-SN SkyPatrol service.
type SkyPatrol struct {
	opts    SkyPatrolOptions
	logger  zerolog.Logger
	client  *http.Client
	baseURL string
	cache   TargetCache
}

// NewSkyPatrol constructs a SkyPatrol provider.
func NewSkyPatrol(opts SkyPatrolOptions, cache TargetCache, logger zerolog.Logger) *SkyPatrol {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 45 * time.Second
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://asas-sn.ifa.hawaii.edu/skypatrol"
	}

	return &SkyPatrol{
		opts:    opts,
		logger:  logger.With().Str("component", "skypatrol_provider").Logger(),
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
		cache:   cache,
	}
}

// Name identifies the provider in logs and alerts.
func (s *SkyPatrol) Name() string { return "asassn-skypatrol" }

type catalogEntry struct {
	ASASSNID int64   `json:"asas_sn_id"`
	RADeg    float64 `json:"ra_deg"`
	DecDeg   float64 `json:"dec_deg"`
	Name     string  `json:"name"`
}

type lightCurvePoint struct {
	JD         float64 `json:"jd"`
	Mag        float64 `json:"mag"`
	PhotFilter string  `json:"phot_filter"`
}

type lightCurveResponse struct {
	Data []lightCurvePoint `json:"data"`
}

// Resolve maps the configured star to an ASAS-SN identifier: VSX
// catalog by name first, then a cone search around the known
// coordinates. The nearest entry wins.
func (s *SkyPatrol) Resolve(ctx context.Context) (int64, error) {
	byName, err := s.queryCatalog(ctx, "aavsovsx", url.Values{"name": {s.opts.Star}})
	if err != nil {
		s.logger.Warn().Err(err).Msg("vsx catalog name lookup failed")
	} else if len(byName) > 0 {
		return s.nearest(byName), nil
	}

	params := url.Values{}
	params.Set("ra_deg", fmt.Sprintf("%.6f", s.opts.RADeg))
	params.Set("dec_deg", fmt.Sprintf("%.6f", s.opts.DecDeg))
	params.Set("radius_deg", fmt.Sprintf("%.4f", s.opts.RadiusDeg))

	byCone, err := s.queryCatalog(ctx, "master_list", params)
	if err != nil {
		return 0, fmt.Errorf("cone search: %w", err)
	}
	if len(byCone) == 0 {
		return 0, ErrTargetNotResolved
	}
	return s.nearest(byCone), nil
}

// nearest picks the entry closest to the configured coordinates. The
// planar approximation is fine inside a 0.02 degree cone.
func (s *SkyPatrol) nearest(entries []catalogEntry) int64 {
	best := entries[0]
	bestDist := math.Inf(1)
	for _, e := range entries {
		dRA := e.RADeg - s.opts.RADeg
		dDec := e.DecDeg - s.opts.DecDeg
		dist := dRA*dRA + dDec*dDec
		if dist < bestDist {
			best = e
			bestDist = dist
		}
	}
	return best.ASASSNID
}

func (s *SkyPatrol) queryCatalog(ctx context.Context, catalog string, params url.Values) ([]catalogEntry, error) {
	endpoint := fmt.Sprintf("%s/catalogs/%s?%s", s.baseURL, catalog, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if ua := strings.TrimSpace(s.opts.UserAgent); ua != "" {
		req.Header.Set("User-Agent", ua)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog status %d", resp.StatusCode)
	}

	var entries []catalogEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode catalog response: %w", err)
	}
	return entries, nil
}

// targetID returns the cached identifier, resolving and persisting it
// on first use.
func (s *SkyPatrol) targetID(ctx context.Context) (int64, error) {
	if cached := s.cache.TargetID(); cached != nil {
		return *cached, nil
	}

	id, err := s.Resolve(ctx)
	if err != nil {
		return 0, err
	}
	if err := s.cache.SetTargetID(id); err != nil {
		s.logger.Warn().Err(err).Msg("failed to persist resolved target id")
	}
	s.logger.Info().Int64("asas_sn_id", id).Str("star", s.opts.Star).Msg("target resolved")
	return id, nil
}

// FetchLatest retrieves the most recent point in the configured band.
func (s *SkyPatrol) FetchLatest(ctx context.Context) (Observation, bool, error) {
	id, err := s.targetID(ctx)
	if err != nil {
		return Observation{}, false, err
	}

	endpoint := fmt.Sprintf("%s/lightcurves/%d", s.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Observation{}, false, err
	}
	req.Header.Set("Accept", "application/json")
	if ua := strings.TrimSpace(s.opts.UserAgent); ua != "" {
		req.Header.Set("User-Agent", ua)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return Observation{}, false, fmt.Errorf("lightcurve request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Observation{}, false, fmt.Errorf("lightcurve status %d", resp.StatusCode)
	}

	var lc lightCurveResponse
	if err := json.NewDecoder(resp.Body).Decode(&lc); err != nil {
		return Observation{}, false, fmt.Errorf("decode lightcurve: %w", err)
	}

	var best Observation
	found := false
	for _, p := range lc.Data {
		if !strings.EqualFold(p.PhotFilter, s.opts.Band) {
			continue
		}
		if !found || p.JD > best.JulianDate {
			best = Observation{Magnitude: decimal.NewFromFloat(p.Mag), JulianDate: p.JD}
			found = true
		}
	}
	return best, found, nil
}

var _ Source = (*SkyPatrol)(nil)
