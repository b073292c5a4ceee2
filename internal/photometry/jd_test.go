package photometry

import (
	"math"
	"testing"
	"time"
)

func TestJulianDateKnownEpochs(t *testing.T) {
	cases := []struct {
		name string
		t    time.Time
		want float64
	}{
		{"J2000", time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC), 2451545.0},
		{"unix epoch", time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC), 2440587.5},
		{"midnight rollover", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), 2460370.5},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := JulianDate(tc.t)
			if math.Abs(got-tc.want) > 1e-6 {
				t.Fatalf("JulianDate(%s) = %.6f, want %.6f", tc.t, got, tc.want)
			}
		})
	}
}

func TestJulianDateMonotonic(t *testing.T) {
	base := time.Date(2026, 8, 31, 10, 30, 0, 0, time.UTC)
	a := JulianDate(base)
	b := JulianDate(base.Add(time.Minute))
	if b <= a {
		t.Fatalf("julian date must increase with time: %.8f then %.8f", a, b)
	}
	if math.Abs((b-a)-1.0/1440.0) > 1e-9 {
		t.Fatalf("one minute should advance JD by 1/1440, got %.10f", b-a)
	}
}
