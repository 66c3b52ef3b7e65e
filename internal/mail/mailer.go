// Package mail implements outgoing email delivery for the contact
// verification flow. It exposes a narrow Mailer interface so services can be
// tested with a stub, and an SMTP implementation backed by wneessen/go-mail
// that sends multipart messages with a plain-text body and an HTML
// alternative.
package mail

import (
	"context"
	"fmt"

	gomail "github.com/wneessen/go-mail"

	"github.com/go-catalog-backend/internal/config"
)

// Mailer delivers a single email with a plain-text body and an HTML
// alternative. Implementations must be safe for concurrent use and must
// honor the context for cancellation.
type Mailer interface {
	Send(ctx context.Context, to, subject, textBody, htmlBody string) error
}

// SMTPMailer is the production Mailer backed by an SMTP server.
type SMTPMailer struct {
	cfg    config.MailConfig
	client *gomail.Client
}

// NewSMTPMailer builds an SMTP client from cfg. The connection is dialed per
// send, so construction succeeds even when the server is unreachable.
func NewSMTPMailer(cfg config.MailConfig) (*SMTPMailer, error) {
	opts := []gomail.Option{
		gomail.WithPort(cfg.Port),
	}

	switch cfg.Encryption {
	case "ssl":
		opts = append(opts, gomail.WithSSL())
	case "none":
		opts = append(opts, gomail.WithTLSPortPolicy(gomail.NoTLS))
	default: // starttls / tls
		opts = append(opts, gomail.WithTLSPortPolicy(gomail.TLSMandatory))
	}

	if cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	}

	client, err := gomail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("create mail client: %w", err)
	}
	return &SMTPMailer{cfg: cfg, client: client}, nil
}

// Send delivers one message to a single recipient. The text body is the
// primary part and the HTML body is attached as an alternative, so clients
// without HTML rendering still see the content.
func (m *SMTPMailer) Send(ctx context.Context, to, subject, textBody, htmlBody string) error {
	msg := gomail.NewMsg()

	from := m.cfg.FromAddress
	if m.cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", m.cfg.FromName, m.cfg.FromAddress)
	}
	if err := msg.From(from); err != nil {
		return fmt.Errorf("set FROM address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("set TO address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextPlain, textBody)
	if htmlBody != "" {
		msg.AddAlternativeString(gomail.TypeTextHTML, htmlBody)
	}

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}
