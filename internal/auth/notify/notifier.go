// Package notify delivers one-time login codes to users. The production
// transport is SMTP; development setups log the code instead.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"time"
)

// Notifier delivers a login challenge code to its recipient.
type Notifier interface {
	SendChallenge(ctx context.Context, email, code string, expiresAt time.Time) error
}

// LogNotifier writes codes to the log. Development only.
type LogNotifier struct {
	Log *slog.Logger
}

func (n *LogNotifier) SendChallenge(_ context.Context, email, code string, expiresAt time.Time) error {
	n.Log.Info("login code issued",
		"email", email,
		"code", code,
		"expires_at", expiresAt.Format(time.RFC3339),
	)
	return nil
}

// SMTPNotifier sends codes by plain SMTP.
type SMTPNotifier struct {
	Addr string // host:port
	From string
	Auth smtp.Auth
}

func (n *SMTPNotifier) SendChallenge(_ context.Context, email, code string, expiresAt time.Time) error {
	msg := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: Your FuelOS login code\r\n\r\n"+
			"Your one-time login code is %s. It expires at %s.\r\n",
		n.From, email, code, expiresAt.UTC().Format(time.RFC1123),
	)
	if err := smtp.SendMail(n.Addr, n.Auth, n.From, []string{email}, []byte(msg)); err != nil {
		return fmt.Errorf("send challenge mail: %w", err)
	}
	return nil
}
