package app

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"tcrbwatch/internal/photometry"
	"tcrbwatch/internal/service"
)

// SimulateAlert pushes a synthetic observation through the full
// decide-notify-persist path for operational testing.
func (a *App) SimulateAlert(ctx context.Context, magnitude decimal.Decimal, jd float64) error {
	if jd == 0 {
		jd = photometry.JulianDate(time.Now())
	}

	states := a.newStateStore()
	notifier := a.newNotifier()
	source := &staticSource{obs: photometry.Observation{Magnitude: magnitude, JulianDate: jd}}

	svc := service.New(a.Config, nil, source, states, nil, notifier, a.Logger)
	return svc.Cycle(ctx, time.Now().UTC())
}

type staticSource struct {
	obs photometry.Observation
}

func (s *staticSource) Name() string { return "simulated" }

func (s *staticSource) FetchLatest(ctx context.Context) (photometry.Observation, bool, error) {
	return s.obs, true, nil
}

var _ photometry.Source = (*staticSource)(nil)
