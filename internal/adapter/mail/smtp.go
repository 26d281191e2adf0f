package mail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	gomail "github.com/wneessen/go-mail"

	"loanportal/internal/usecase/notification"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
}

// SMTP sends notification messages through an SMTP relay.
type SMTP struct {
	cfg SMTPConfig
	log *slog.Logger
}

var _ notification.Mailer = (*SMTP)(nil)

func NewSMTP(cfg SMTPConfig, logger *slog.Logger) (*SMTP, error) {
	if cfg.Host == "" {
		return nil, errors.New("mail: smtp host is required")
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SMTP{cfg: cfg, log: logger}, nil
}

func (s *SMTP) Send(ctx context.Context, m notification.Message) error {
	msg, err := s.buildMsg(ctx, m)
	if err != nil {
		return err
	}
	opts := []gomail.Option{
		gomail.WithPort(s.cfg.Port),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	}
	if s.cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(s.cfg.Username),
			gomail.WithPassword(s.cfg.Password),
		)
	}
	client, err := gomail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("mail: new client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("mail: send: %w", err)
	}
	return nil
}

// buildMsg converts m into a multipart message. Attachments whose file is
// gone are skipped.
func (s *SMTP) buildMsg(ctx context.Context, m notification.Message) (*gomail.Msg, error) {
	msg := gomail.NewMsg()
	if err := msg.From(m.From); err != nil {
		return nil, fmt.Errorf("mail: from %q: %w", m.From, err)
	}
	if err := msg.To(m.To); err != nil {
		return nil, fmt.Errorf("mail: to %q: %w", m.To, err)
	}
	if m.ReplyTo != "" {
		if err := msg.ReplyTo(m.ReplyTo); err != nil {
			return nil, fmt.Errorf("mail: reply-to %q: %w", m.ReplyTo, err)
		}
	}
	msg.Subject(m.Subject)
	msg.SetBodyString(gomail.TypeTextPlain, m.Text)
	if m.HTML != "" {
		msg.AddAlternativeString(gomail.TypeTextHTML, m.HTML)
	}
	for _, a := range m.Attachments {
		if _, err := os.Stat(a.Path); err != nil {
			s.log.WarnContext(ctx, "could not attach document", "filename", a.Name, "error", err)
			continue
		}
		msg.AttachFile(a.Path, gomail.WithFileName(a.Name))
	}
	return msg, nil
}
