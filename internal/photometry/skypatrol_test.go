package photometry

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

type memoryCache struct {
	id *int64
}

func (m *memoryCache) TargetID() *int64 { return m.id }

func (m *memoryCache) SetTargetID(id int64) error {
	m.id = &id
	return nil
}

func newTestSkyPatrol(baseURL string, cache TargetCache) *SkyPatrol {
	return NewSkyPatrol(SkyPatrolOptions{
		BaseURL:   baseURL,
		Star:      "T CrB",
		Band:      "V",
		RADeg:     263.0545,
		DecDeg:    25.9208,
		RadiusDeg: 0.02,
		Timeout:   time.Second,
	}, cache, noopLogger())
}

func lightCurveJSON(points []lightCurvePoint) []byte {
	data, _ := json.Marshal(lightCurveResponse{Data: points})
	return data
}

func TestSkyPatrolResolvesByNameAndCaches(t *testing.T) {
	catalogCalls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.Contains(r.URL.Path, "/catalogs/aavsovsx"):
			catalogCalls++
			if got := r.URL.Query().Get("name"); got != "T CrB" {
				t.Errorf("expected name lookup for T CrB, got %q", got)
			}
			// Two candidates: the nearer one must win.
			_ = json.NewEncoder(w).Encode([]catalogEntry{
				{ASASSNID: 111, RADeg: 263.09, DecDeg: 25.95, Name: "T CrB companion"},
				{ASASSNID: 661919, RADeg: 263.0545, DecDeg: 25.9208, Name: "T CrB"},
			})
		case strings.Contains(r.URL.Path, "/lightcurves/661919"):
			_, _ = w.Write(lightCurveJSON([]lightCurvePoint{
				{JD: 2460001.5, Mag: 9.91, PhotFilter: "V"},
				{JD: 2460002.5, Mag: 9.87, PhotFilter: "V"},
				{JD: 2460003.5, Mag: 9.80, PhotFilter: "g"},
			}))
		default:
			t.Errorf("unexpected request path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	cache := &memoryCache{}
	sp := newTestSkyPatrol(srv.URL, cache)

	obs, found, err := sp.FetchLatest(context.Background())
	if err != nil {
		t.Fatalf("FetchLatest failed: %v", err)
	}
	if !found {
		t.Fatal("expected a V-band reading")
	}
	if obs.JulianDate != 2460002.5 {
		t.Fatalf("g-band row must be excluded; expected JD 2460002.5, got %.5f", obs.JulianDate)
	}

	if cache.id == nil || *cache.id != 661919 {
		t.Fatalf("nearest catalog entry must be cached, got %+v", cache.id)
	}

	// Second fetch must reuse the cached identifier.
	if _, _, err := sp.FetchLatest(context.Background()); err != nil {
		t.Fatalf("second fetch failed: %v", err)
	}
	if catalogCalls != 1 {
		t.Fatalf("catalog must be queried once, saw %d calls", catalogCalls)
	}
}

func TestSkyPatrolConeSearchFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.Contains(r.URL.Path, "/catalogs/aavsovsx"):
			_ = json.NewEncoder(w).Encode([]catalogEntry{})
		case strings.Contains(r.URL.Path, "/catalogs/master_list"):
			_ = json.NewEncoder(w).Encode([]catalogEntry{
				{ASASSNID: 424242, RADeg: 263.055, DecDeg: 25.92},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	sp := newTestSkyPatrol(srv.URL, &memoryCache{})
	id, err := sp.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if id != 424242 {
		t.Fatalf("expected cone search fallback id 424242, got %d", id)
	}
}

func TestSkyPatrolUnresolvable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]catalogEntry{})
	}))
	defer srv.Close()

	sp := newTestSkyPatrol(srv.URL, &memoryCache{})
	if _, err := sp.Resolve(context.Background()); err == nil {
		t.Fatal("empty catalogs must fail resolution")
	}
}

func TestSkyPatrolNoBandData(t *testing.T) {
	id := int64(661919)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(lightCurveJSON([]lightCurvePoint{
			{JD: 2460001.5, Mag: 12.3, PhotFilter: "g"},
		}))
	}))
	defer srv.Close()

	sp := newTestSkyPatrol(srv.URL, &memoryCache{id: &id})
	_, found, err := sp.FetchLatest(context.Background())
	if err != nil {
		t.Fatalf("FetchLatest failed: %v", err)
	}
	if found {
		t.Fatal("g-band only light curve must report no data for band V")
	}
}
