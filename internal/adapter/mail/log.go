package mail

import (
	"context"
	"log/slog"

	"loanportal/internal/usecase/notification"
)

// Log is the mailer used when no SMTP relay is configured. It records the
// envelope and drops the message.
type Log struct{ log *slog.Logger }

var _ notification.Mailer = (*Log)(nil)

func NewLog(logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{log: logger}
}

func (l *Log) Send(ctx context.Context, m notification.Message) error {
	l.log.InfoContext(ctx, "email not sent, no smtp host configured",
		"to", m.To,
		"subject", m.Subject,
		"attachments", len(m.Attachments),
	)
	return nil
}
