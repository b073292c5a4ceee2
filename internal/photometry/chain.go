package photometry

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// ChainOptions tune multi-provider resolution.
type ChainOptions struct {
	// MaxAgeDays treats a provider's latest point as a miss when it is
	// older than this many days. Zero disables the staleness check.
	MaxAgeDays float64
}

// Chain tries providers in priority order and returns the first fresh
// result. A provider failing or coming back empty never aborts the
// lookup; the chain only reports an error when every provider failed
// at the transport level.
type Chain struct {
	providers []Source
	opts      ChainOptions
	logger    zerolog.Logger
	now       func() time.Time
}

// NewChain orders the given providers into a fallback chain.
func NewChain(providers []Source, opts ChainOptions, logger zerolog.Logger) *Chain {
	return &Chain{
		providers: providers,
		opts:      opts,
		logger:    logger.With().Str("component", "source_chain").Logger(),
		now:       time.Now,
	}
}

// Name identifies the chain in logs.
func (c *Chain) Name() string { return "chain" }

// FetchLatest walks the providers in order.
func (c *Chain) FetchLatest(ctx context.Context) (Observation, bool, error) {
	var lastErr error
	failures := 0

	for _, p := range c.providers {
		obs, found, err := p.FetchLatest(ctx)
		if err != nil {
			c.logger.Warn().Err(err).Str("provider", p.Name()).Msg("provider failed; falling through")
			lastErr = err
			failures++
			continue
		}
		if !found {
			c.logger.Debug().Str("provider", p.Name()).Msg("provider returned no eligible readings")
			continue
		}
		if c.stale(obs) {
			c.logger.Warn().
				Str("provider", p.Name()).
				Float64("jd", obs.JulianDate).
				Float64("max_age_days", c.opts.MaxAgeDays).
				Msg("latest reading too old; falling through")
			continue
		}
		return obs, true, nil
	}

	if failures == len(c.providers) && lastErr != nil {
		return Observation{}, false, lastErr
	}
	return Observation{}, false, nil
}

func (c *Chain) stale(obs Observation) bool {
	if c.opts.MaxAgeDays <= 0 {
		return false
	}
	return JulianDate(c.now())-obs.JulianDate > c.opts.MaxAgeDays
}

var _ Source = (*Chain)(nil)
