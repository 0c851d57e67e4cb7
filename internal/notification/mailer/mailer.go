// Package mailer delivers notification mail.
package mailer

import (
	"context"
	"log/slog"
)

// Mail is one outgoing message.
type Mail struct {
	To      string
	Subject string
	Body    string
}

//go:generate mockgen -source=mailer.go -destination=mocks/mocks.go -package=mocks

// Mailer sends mail. Implementations must be safe for concurrent use.
type Mailer interface {
	Send(ctx context.Context, m Mail) error
}

// LogMailer writes mail to the logger instead of sending it.
type LogMailer struct {
	logger *slog.Logger
}

func NewLogMailer(logger *slog.Logger) *LogMailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(ctx context.Context, mail Mail) error {
	m.logger.InfoContext(ctx, "mail sent",
		"to", mail.To,
		"subject", mail.Subject,
		"body_length", len(mail.Body),
	)
	return nil
}
