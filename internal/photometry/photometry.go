package photometry

import (
	"context"

	"github.com/shopspring/decimal"
)

// Observation is a single photometric reading. Identity is the Julian
// date: two readings closer than the decision engine's tolerance are
// the same observation.
type Observation struct {
	Magnitude  decimal.Decimal
	JulianDate float64
}

// Source produces the latest known observation for the configured
// star/band/obstype combination. The boolean reports whether any
// eligible reading was found; ordinary absence of data is not an error.
type Source interface {
	Name() string
	FetchLatest(ctx context.Context) (Observation, bool, error)
}
