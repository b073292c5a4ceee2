package alerting

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Notification carries the context of a threshold crossing.
type Notification struct {
	Star       string
	Band       string
	Magnitude  decimal.Decimal
	JulianDate float64
	Threshold  decimal.Decimal
	Source     string
	SentAt     time.Time
}

// Notifier delivers notifications. Delivery is best effort; failures
// are reported to the caller, which logs and moves on.
type Notifier interface {
	Notify(ctx context.Context, notification Notification) error
}

// Subject renders the one-line alert summary used as the email subject.
func Subject(note Notification) string {
	return fmt.Sprintf("%s %s-Band Alert: %s (JD %.5f)",
		note.Star, note.Band, note.Magnitude.StringFixed(2), note.JulianDate)
}

// renderMessage builds the notification body.
func renderMessage(note Notification) string {
	builder := strings.Builder{}
	builder.WriteString(fmt.Sprintf("%s dipped below %s=%s.\n\n", note.Star, note.Band, note.Threshold.StringFixed(2)))
	builder.WriteString(fmt.Sprintf("Latest %s: %s\n", note.Band, note.Magnitude.StringFixed(3)))
	builder.WriteString(fmt.Sprintf("JD: %.5f\n", note.JulianDate))
	builder.WriteString(fmt.Sprintf("UTC Sent: %s\n\n", note.SentAt.UTC().Format("2006-01-02 15:04:05Z")))
	if note.Source != "" {
		builder.WriteString(fmt.Sprintf("Source: %s\n", note.Source))
	}
	return builder.String()
}
