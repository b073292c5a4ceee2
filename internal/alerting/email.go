package alerting

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ErrNoCredentials indicates the SMTP password was not configured; the
// send is skipped rather than attempted.
var ErrNoCredentials = errors.New("alerting: smtp credentials not configured")

// EmailOptions parameterise SMTP submission.
type EmailOptions struct {
	Host       string
	Port       int
	Username   string
	Password   string
	From       string
	Recipients []string
	Timeout    time.Duration
}

// EmailNotifier submits one plain-text message per alert over
// implicit-TLS SMTP. Port 465 expects a TLS session from the first
// byte, so this dials TLS directly rather than using STARTTLS.
type EmailNotifier struct {
	opts   EmailOptions
	logger zerolog.Logger
}

// NewEmailNotifier constructs an email notifier.
func NewEmailNotifier(opts EmailOptions, logger zerolog.Logger) *EmailNotifier {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	return &EmailNotifier{
		opts:   opts,
		logger: logger.With().Str("component", "alert_email").Logger(),
	}
}

// Notify delivers the alert to every configured recipient in a single
// message. At-most-once: there is no retry within a cycle.
func (n *EmailNotifier) Notify(ctx context.Context, note Notification) error {
	if n.opts.Password == "" {
		return ErrNoCredentials
	}
	if len(n.opts.Recipients) == 0 {
		return errors.New("alerting: no recipients configured")
	}

	subject := Subject(note)
	body := renderMessage(note)

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s\r\n",
		n.opts.From, strings.Join(n.opts.Recipients, ", "), subject, body)

	if err := n.send(ctx, msg); err != nil {
		return err
	}

	n.logger.Info().Str("subject", subject).Int("recipients", len(n.opts.Recipients)).Msg("alert email sent")
	return nil
}

func (n *EmailNotifier) send(ctx context.Context, msg string) error {
	addr := net.JoinHostPort(n.opts.Host, fmt.Sprintf("%d", n.opts.Port))

	dialer := &net.Dialer{Timeout: n.opts.Timeout}
	conn, err := tls.DialWithDialer(dialer, "tcp", addr, &tls.Config{ServerName: n.opts.Host})
	if err != nil {
		return fmt.Errorf("dial smtp: %w", err)
	}

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	} else {
		_ = conn.SetDeadline(time.Now().Add(n.opts.Timeout))
	}

	client, err := smtp.NewClient(conn, n.opts.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp client: %w", err)
	}
	defer client.Close()

	if n.opts.Username != "" {
		auth := smtp.PlainAuth("", n.opts.Username, n.opts.Password, n.opts.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err := client.Mail(n.opts.From); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	for _, rcpt := range n.opts.Recipients {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("smtp rcpt %s: %w", rcpt, err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write([]byte(msg)); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close message: %w", err)
	}

	return client.Quit()
}

var _ Notifier = (*EmailNotifier)(nil)
