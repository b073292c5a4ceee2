package alert

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"tcrbwatch/internal/photometry"
	"tcrbwatch/internal/state"
)

// JDTolerance is the Julian-date equality tolerance: readings closer
// than this (~0.09 s) are the same observation, absorbing provider
// rounding differences.
const JDTolerance = 1e-6

// forceTestCeiling keeps the force-test knob from firing on sentinel
// magnitudes some providers use for missing data.
var forceTestCeiling = decimal.NewFromInt(99)

// Decider decides whether a reading warrants a notification. It is
// pure: callers own the side effects of actually alerting and
// recording that an alert went out.
type Decider struct {
	Threshold decimal.Decimal
	Cooldown  time.Duration
	ForceTest bool
}

// ShouldAlert reports whether an alert should be emitted for obs given
// the prior alert state. Both the trigger gate and the de-duplication
// gate must pass.
func (d *Decider) ShouldAlert(obs photometry.Observation, st state.State, now time.Time) bool {
	return d.triggered(obs) && d.allowedByState(obs, st, now)
}

// triggered is the threshold gate. Magnitudes are inverted: a lower
// value is brighter, so the event of interest is mag < threshold.
func (d *Decider) triggered(obs photometry.Observation) bool {
	if obs.Magnitude.LessThan(d.Threshold) {
		return true
	}
	return d.ForceTest && obs.Magnitude.LessThan(forceTestCeiling)
}

// allowedByState is the de-duplication gate: a genuinely new
// observation alerts immediately, the same observation re-alerts only
// after the cooldown. An unparseable prior timestamp fails open so a
// corrupt state file can never suppress alerts forever.
func (d *Decider) allowedByState(obs photometry.Observation, st state.State, now time.Time) bool {
	if st.LastAlertJD == nil || math.Abs(*st.LastAlertJD-obs.JulianDate) > JDTolerance {
		return true
	}
	if st.LastAlertTime == "" {
		return false
	}
	last, err := time.Parse(time.RFC3339, st.LastAlertTime)
	if err != nil {
		return true
	}
	return now.Sub(last) >= d.Cooldown
}
