// Package mailer delivers transactional email such as password-reset codes.
package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"gripinvest/config"

	"github.com/wneessen/go-mail"
)

// Message is a plain-text email.
type Message struct {
	To      string
	Subject string
	Body    string
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SMTP sends mail through an authenticated SMTP relay.
type SMTP struct {
	cfg config.MailConfig
}

func NewSMTP(cfg config.MailConfig) *SMTP {
	return &SMTP{cfg: cfg}
}

func (s *SMTP) Send(ctx context.Context, msg Message) error {
	m := mail.NewMsg()
	if err := m.From(s.cfg.From); err != nil {
		return fmt.Errorf("set from: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return fmt.Errorf("set recipient: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextPlain, msg.Body)

	opts := []mail.Option{mail.WithPort(s.cfg.Port)}
	if s.cfg.User != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.User),
			mail.WithPassword(s.cfg.Pass),
		)
	}
	if s.cfg.Secure {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}

	client, err := mail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("create mail client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("send mail to %s: %w", msg.To, err)
	}
	return nil
}

// Log only records outgoing mail. It is used when no SMTP host is configured
// and keeps the last messages for inspection.
type Log struct {
	log *slog.Logger

	mu   sync.Mutex
	sent []Message
}

func NewLog(log *slog.Logger) *Log {
	if log == nil {
		log = slog.Default()
	}
	return &Log{log: log}
}

func (l *Log) Send(_ context.Context, msg Message) error {
	l.mu.Lock()
	l.sent = append(l.sent, msg)
	if len(l.sent) > 50 {
		l.sent = l.sent[1:]
	}
	l.mu.Unlock()
	l.log.Info("mail not delivered, no SMTP host configured", slog.String("to", msg.To), slog.String("subject", msg.Subject))
	return nil
}

// Sent returns a copy of the recorded messages.
func (l *Log) Sent() []Message {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Message, len(l.sent))
	copy(out, l.sent)
	return out
}

// New returns an SMTP sender when a host is configured, otherwise a Log sender.
func New(cfg config.MailConfig, log *slog.Logger) Sender {
	if cfg.Host == "" {
		return NewLog(log)
	}
	return NewSMTP(cfg)
}
