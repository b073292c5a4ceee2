package alerting

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

func testNote() Notification {
	return Notification{
		Star:       "T CrB",
		Band:       "V",
		Magnitude:  decimal.NewFromFloat(8.123),
		JulianDate: 2460002.88,
		Threshold:  decimal.NewFromFloat(8.5),
		Source:     "aavso-lcg",
		SentAt:     time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC),
	}
}

func TestSubject(t *testing.T) {
	got := Subject(testNote())
	want := "T CrB V-Band Alert: 8.12 (JD 2460002.88000)"
	if got != want {
		t.Fatalf("subject %q, want %q", got, want)
	}
}

func TestRenderMessage(t *testing.T) {
	body := renderMessage(testNote())

	for _, fragment := range []string{
		"T CrB dipped below V=8.50.",
		"Latest V: 8.123",
		"JD: 2460002.88000",
		"UTC Sent: 2026-08-31 12:00:00Z",
		"Source: aavso-lcg",
	} {
		if !strings.Contains(body, fragment) {
			t.Fatalf("body missing %q:\n%s", fragment, body)
		}
	}
}

func TestNotifyWithoutCredentials(t *testing.T) {
	notifier := NewEmailNotifier(EmailOptions{
		Host:       "smtp.example.com",
		Port:       465,
		Username:   "alerts@example.com",
		From:       "alerts@example.com",
		Recipients: []string{"astro@example.com"},
	}, zerolog.Nop())

	err := notifier.Notify(context.Background(), testNote())
	if !errors.Is(err, ErrNoCredentials) {
		t.Fatalf("missing password must report ErrNoCredentials, got %v", err)
	}
}

func TestNotifyWithoutRecipients(t *testing.T) {
	notifier := NewEmailNotifier(EmailOptions{
		Host:     "smtp.example.com",
		Port:     465,
		Password: "app-password",
		From:     "alerts@example.com",
	}, zerolog.Nop())

	if err := notifier.Notify(context.Background(), testNote()); err == nil {
		t.Fatal("no recipients must be an error")
	}
}
