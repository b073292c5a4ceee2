package storage

import (
	"time"

	"github.com/shopspring/decimal"
)

// AlertRecord captures an emitted alert for auditing.
type AlertRecord struct {
	ID         int64
	Star       string
	Magnitude  decimal.Decimal
	JulianDate float64
	Threshold  decimal.Decimal
	Source     string
	CreatedAt  time.Time
}
