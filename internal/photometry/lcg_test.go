package photometry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

func noopLogger() zerolog.Logger {
	return zerolog.Nop()
}

func newTestLCG(baseURL string) *LCG {
	return NewLCG(LCGOptions{
		BaseURL:      baseURL,
		Star:         "T CrB",
		Band:         "V",
		Obstype:      "CCD",
		LookbackDays: 14,
		Timeout:      time.Second,
	}, noopLogger())
}

const lcgPayload = "Results for T CrB\n" +
	"JD@@@Magnitude@@@Uncertainty@@@Band@@@Obstype@@@Observer\n" +
	"2460001.41000@@@9.912@@@0.01@@@Johnson V@@@CCD@@@ABC\n" +
	"2460003.52000@@@9.850@@@0.02@@@I@@@CCD@@@DEF\n" +
	"2460004.61000@@@9.790@@@0.01@@@IV@@@CCD@@@GHI\n" +
	"2460002.73000@@@9.901@@@0.03@@@V@@@Visual@@@JKL\n" +
	"2460002.88000@@@9.874@@@0.01@@@V@@@CCD@@@MNO\n" +
	"2460000.10000@@@bad@@@0.01@@@V@@@CCD@@@PQR\n"

func TestLCGPicksLatestEligible(t *testing.T) {
	var gotQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		_, _ = w.Write([]byte(lcgPayload))
	}))
	defer srv.Close()

	obs, found, err := newTestLCG(srv.URL).FetchLatest(context.Background())
	if err != nil {
		t.Fatalf("FetchLatest failed: %v", err)
	}
	if !found {
		t.Fatal("expected an eligible reading")
	}

	// Later rows exist, but they are I-band, IV-band, or Visual; the
	// latest Johnson V + CCD row must win.
	if obs.JulianDate != 2460002.88 {
		t.Fatalf("expected JD 2460002.88, got %.5f", obs.JulianDate)
	}
	if !obs.Magnitude.Equal(decimal.NewFromFloat(9.874)) {
		t.Fatalf("expected magnitude 9.874, got %s", obs.Magnitude)
	}

	if gotQuery["view"][0] != "api.delim" {
		t.Fatalf("expected api.delim view, got %v", gotQuery["view"])
	}
	if gotQuery["ident"][0] != "T CrB" {
		t.Fatalf("expected star ident, got %v", gotQuery["ident"])
	}
	if gotQuery["delimiter"][0] != "@@@" {
		t.Fatalf("expected @@@ delimiter, got %v", gotQuery["delimiter"])
	}
}

func TestLCGBandWordBoundary(t *testing.T) {
	// Only an "IV" row below: must not match band "V".
	payload := "JD@@@Magnitude@@@Band@@@Obstype\n" +
		"2460001.50000@@@9.100@@@IV@@@CCD\n"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(payload))
	}))
	defer srv.Close()

	_, found, err := newTestLCG(srv.URL).FetchLatest(context.Background())
	if err != nil {
		t.Fatalf("FetchLatest failed: %v", err)
	}
	if found {
		t.Fatal("band IV must not satisfy a V filter")
	}
}

func TestLCGMissingHeaderIsNoData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("maintenance page\nplease retry later\n"))
	}))
	defer srv.Close()

	_, found, err := newTestLCG(srv.URL).FetchLatest(context.Background())
	if err != nil {
		t.Fatalf("missing header must not be an error: %v", err)
	}
	if found {
		t.Fatal("missing header must be treated as no data")
	}
}

func TestLCGHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, _, err := newTestLCG(srv.URL).FetchLatest(context.Background())
	if err == nil {
		t.Fatal("HTTP 502 must surface as a transport error")
	}
}

func TestLCGHJDColumnAlternate(t *testing.T) {
	payload := "HJD@@@Magnitude@@@Band@@@Type\n" +
		"2460001.50000@@@8.123@@@V@@@CCD\n"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(payload))
	}))
	defer srv.Close()

	obs, found, err := newTestLCG(srv.URL).FetchLatest(context.Background())
	if err != nil || !found {
		t.Fatalf("alternate column names must parse (found=%v err=%v)", found, err)
	}
	if obs.JulianDate != 2460001.5 {
		t.Fatalf("expected JD 2460001.5, got %.5f", obs.JulianDate)
	}
}
