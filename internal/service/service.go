package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"tcrbwatch/internal/alert"
	"tcrbwatch/internal/alerting"
	"tcrbwatch/internal/config"
	"tcrbwatch/internal/photometry"
	"tcrbwatch/internal/scheduler"
	"tcrbwatch/internal/state"
	"tcrbwatch/internal/storage"
)

// Service orchestrates fetching, the alert decision, notification, and
// state persistence.
type Service struct {
	scheduler  *scheduler.Scheduler
	source     photometry.Source
	states     state.Store
	alertStore storage.AlertStore
	notifier   alerting.Notifier
	decider    *alert.Decider
	logger     zerolog.Logger

	star string
	band string
	now  func() time.Time
}

// New constructs the monitoring service.
func New(cfg *config.Config, sched *scheduler.Scheduler, source photometry.Source, states state.Store, alertStore storage.AlertStore, notifier alerting.Notifier, logger zerolog.Logger) *Service {
	decider := &alert.Decider{
		Threshold: decimal.NewFromFloat(cfg.Alerting.Threshold),
		Cooldown:  cfg.Alerting.Cooldown,
		ForceTest: cfg.Alerting.ForceTest,
	}

	return &Service{
		scheduler:  sched,
		source:     source,
		states:     states,
		alertStore: alertStore,
		notifier:   notifier,
		decider:    decider,
		logger:     logger.With().Str("component", "service").Logger(),
		star:       cfg.Target.Star,
		band:       cfg.Target.Band,
		now:        time.Now,
	}
}

// Run begins the polling loop.
func (s *Service) Run(ctx context.Context) error {
	if s.scheduler == nil {
		return fmt.Errorf("scheduler not configured")
	}
	return s.scheduler.Run(ctx, s.Cycle)
}

// Cycle executes a single fetch-decide-notify pass. Errors returned
// here are logged by the scheduler and never stop the loop.
func (s *Service) Cycle(ctx context.Context, at time.Time) error {
	obs, found, err := s.source.FetchLatest(ctx)
	if err != nil {
		return fmt.Errorf("fetch latest observation: %w", err)
	}
	if !found {
		s.logger.Info().Str("star", s.star).Str("band", s.band).Msg("no eligible photometry this cycle")
		return nil
	}

	s.logger.Info().
		Str("star", s.star).
		Str("band", s.band).
		Str("magnitude", obs.Magnitude.StringFixed(3)).
		Float64("jd", obs.JulianDate).
		Msg("latest observation")

	st := s.states.Load()
	now := s.now().UTC()
	if !s.decider.ShouldAlert(obs, st, now) {
		return nil
	}

	s.emit(ctx, obs, now)

	// State is updated whether or not delivery succeeded: a failed send
	// is not retried, the next new observation is.
	jd := obs.JulianDate
	st = s.states.Load()
	st.LastAlertJD = &jd
	st.LastAlertTime = now.Format("2006-01-02T15:04:05Z")
	if err := s.states.Save(st); err != nil {
		s.logger.Error().Err(err).Msg("failed to persist alert state")
	}

	return nil
}

func (s *Service) emit(ctx context.Context, obs photometry.Observation, now time.Time) {
	note := alerting.Notification{
		Star:       s.star,
		Band:       s.band,
		Magnitude:  obs.Magnitude,
		JulianDate: obs.JulianDate,
		Threshold:  s.decider.Threshold,
		Source:     s.source.Name(),
		SentAt:     now,
	}

	if s.alertStore != nil {
		record := storage.AlertRecord{
			Star:       s.star,
			Magnitude:  obs.Magnitude,
			JulianDate: obs.JulianDate,
			Threshold:  s.decider.Threshold,
			Source:     s.source.Name(),
		}
		if _, err := s.alertStore.InsertAlert(ctx, record); err != nil {
			s.logger.Error().Err(err).Msg("failed to persist alert record")
		}
	}

	if s.notifier == nil {
		s.logger.Warn().Msg("no notifier configured; alert not delivered")
		return
	}
	if err := s.notifier.Notify(ctx, note); err != nil {
		s.logger.Error().Err(err).Msg("failed to dispatch alert")
	}
}
