package app

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"tcrbwatch/internal/alerting"
	"tcrbwatch/internal/config"
	"tcrbwatch/internal/photometry"
	"tcrbwatch/internal/scheduler"
	"tcrbwatch/internal/service"
	"tcrbwatch/internal/state"
	"tcrbwatch/internal/storage"
)

const userAgent = "tcrbwatch/1.0"

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger.With().Str("component", "app").Logger()}
}

func (a *App) newStateStore() state.Store {
	return state.NewFileStore(a.Config.State.Path, a.Logger)
}

// targetCache adapts the state store to the SkyPatrol provider's
// resolved-id cache via read-modify-write, so the state file stays the
// single source of truth.
type targetCache struct {
	store state.Store
}

func (c *targetCache) TargetID() *int64 {
	return c.store.Load().TargetID
}

func (c *targetCache) SetTargetID(id int64) error {
	st := c.store.Load()
	st.TargetID = &id
	return c.store.Save(st)
}

func (a *App) newSource(states state.Store) (photometry.Source, *photometry.SkyPatrol) {
	target := a.Config.Target
	providers := a.Config.Providers

	var sources []photometry.Source
	var skypatrol *photometry.SkyPatrol

	if providers.LCG.Enabled {
		sources = append(sources, photometry.NewLCG(photometry.LCGOptions{
			BaseURL:      providers.LCG.BaseURL,
			Star:         target.Star,
			Band:         target.Band,
			Obstype:      target.Obstype,
			LookbackDays: providers.LookbackDays,
			Timeout:      providers.RequestTimeout,
			UserAgent:    userAgent,
		}, a.Logger))
	}

	if providers.VSX.Enabled {
		sources = append(sources, photometry.NewVSX(photometry.VSXOptions{
			BaseURL:      providers.VSX.BaseURL,
			Star:         target.Star,
			Band:         target.Band,
			Obstype:      target.Obstype,
			LookbackDays: providers.LookbackDays,
			Timeout:      providers.RequestTimeout,
			UserAgent:    userAgent,
		}, a.Logger))
	}

	if providers.SkyPatrol.Enabled {
		skypatrol = photometry.NewSkyPatrol(photometry.SkyPatrolOptions{
			BaseURL:   providers.SkyPatrol.BaseURL,
			Star:      target.Star,
			Band:      target.Band,
			RADeg:     target.RADeg,
			DecDeg:    target.DecDeg,
			RadiusDeg: target.RadiusDeg,
			Timeout:   providers.RequestTimeout,
			UserAgent: userAgent,
		}, &targetCache{store: states}, a.Logger)
		sources = append(sources, skypatrol)
	}

	chain := photometry.NewChain(sources, photometry.ChainOptions{
		MaxAgeDays: providers.MaxAgeDays,
	}, a.Logger)

	// The second return is only meaningful when SkyPatrol is the sole
	// provider; that is the one arrangement needing eager resolution.
	if len(sources) != 1 {
		skypatrol = nil
	}
	return chain, skypatrol
}

func (a *App) newNotifier() alerting.Notifier {
	if !a.Config.Email.Enabled {
		return nil
	}
	cfg := a.Config.Email
	return alerting.NewEmailNotifier(alerting.EmailOptions{
		Host:       cfg.Host,
		Port:       cfg.Port,
		Username:   cfg.Username,
		Password:   cfg.Password,
		From:       cfg.From,
		Recipients: cfg.Recipients,
		Timeout:    cfg.Timeout,
	}, a.Logger)
}

func (a *App) openStore(ctx context.Context) (*storage.Store, func(), error) {
	if a.Config.Database.DSN == "" {
		return nil, nil, nil
	}

	pool, err := storage.NewPool(ctx, a.Config.Database)
	if err != nil {
		return nil, nil, err
	}

	store := storage.NewStore(pool)
	closer := func() {
		store.Close()
	}
	return store, closer, nil
}

func (a *App) buildService(ctx context.Context, sched *scheduler.Scheduler) (*service.Service, func(), error) {
	states := a.newStateStore()
	source, soleSkyPatrol := a.newSource(states)

	// SkyPatrol as the only provider cannot do anything useful without
	// a resolved target; surface that at startup instead of looping.
	if soleSkyPatrol != nil && states.Load().TargetID == nil {
		id, err := soleSkyPatrol.Resolve(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("resolve target %q: %w", a.Config.Target.Star, err)
		}
		cache := targetCache{store: states}
		if err := cache.SetTargetID(id); err != nil {
			return nil, nil, err
		}
		a.Logger.Info().Int64("asas_sn_id", id).Msg("target resolved at startup")
	}

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return nil, nil, err
	}
	if store == nil {
		closeStore = func() {}
	}

	var alertStore storage.AlertStore
	if store != nil {
		alertStore = store
	}

	notifier := a.newNotifier()
	if notifier == nil {
		a.Logger.Warn().Msg("email disabled; alerts will only be logged")
	}

	svc := service.New(a.Config, sched, source, states, alertStore, notifier, a.Logger)
	return svc, closeStore, nil
}

// Run executes the long-running monitoring service.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sched := scheduler.New(scheduler.Options{
		Interval:     a.Config.Scheduler.Interval,
		StartupDelay: a.Config.Scheduler.StartupDelay,
	}, a.Logger)

	svc, closeStore, err := a.buildService(ctx, sched)
	if err != nil {
		return err
	}
	defer closeStore()

	a.Logger.Info().
		Str("star", a.Config.Target.Star).
		Float64("threshold", a.Config.Alerting.Threshold).
		Dur("interval", a.Config.Scheduler.Interval).
		Msg("starting monitoring service")

	err = svc.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		a.Logger.Error().Err(err).Msg("service terminated with error")
		return err
	}

	a.Logger.Info().Msg("monitoring service stopped")
	return nil
}

// AlertsOptions configure the alerts command.
type AlertsOptions struct {
	Limit          int
	PurgeOlderThan time.Duration
}
