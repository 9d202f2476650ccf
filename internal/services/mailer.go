package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sanjeevni-health/sanjeevni/internal/logger"
	"github.com/wneessen/go-mail"
)

type Email struct {
	To      string
	Subject string
	Body    string
}

// Mailer sends one email. A nil error means the server accepted it.
type Mailer interface {
	Send(ctx context.Context, email Email) error
}

type SMTPMailer struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Timeout  time.Duration
}

func (m SMTPMailer) Send(ctx context.Context, email Email) error {
	msg, err := m.message(email)
	if err != nil {
		return err
	}

	client, err := mail.NewClient(m.Host, m.options()...)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", email.To, err)
	}

	return nil
}

func (m SMTPMailer) options() []mail.Option {
	timeout := m.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	opts := []mail.Option{
		mail.WithPort(m.Port),
		mail.WithTimeout(timeout),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}

	if m.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.Username),
			mail.WithPassword(m.Password),
		)
	}

	return opts
}

// message builds the MIME message. Headers are encoded by go-mail, so
// non-ASCII subjects survive.
func (m SMTPMailer) message(email Email) (*mail.Msg, error) {
	msg := mail.NewMsg()

	if err := msg.From(m.From); err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", m.From, err)
	}
	if err := msg.To(email.To); err != nil {
		return nil, fmt.Errorf("invalid recipient %q: %w", email.To, err)
	}

	msg.Subject(email.Subject)
	msg.SetDate()
	msg.SetMessageID()
	msg.SetBodyString(mail.TypeTextPlain, email.Body)

	return msg, nil
}

// LogMailer writes emails to the log. Used when SMTP is not configured.
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, email Email) error {
	logger.L().Infow("email not sent, SMTP disabled", "to", email.To, "subject", email.Subject)
	return nil
}
