package mail

import (
	"context"
	"fmt"
	"strings"
	"time"

	gomail "github.com/wneessen/go-mail"

	"umbrella-reminder/internal/domain/model"
)

// SMTPConfig holds the SMTP relay settings
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	// TLSPolicy is one of "mandatory", "opportunistic" or "none"
	TLSPolicy string
	// SSL enables implicit TLS (port 465 style) instead of STARTTLS
	SSL     bool
	Timeout time.Duration
}

type SMTPSender struct {
	client *gomail.Client
}

var _ Sender = (*SMTPSender)(nil)

func NewSMTPSender(config SMTPConfig) (*SMTPSender, error) {
	opts := []gomail.Option{
		gomail.WithPort(config.Port),
		gomail.WithTLSPolicy(tlsPolicy(config.TLSPolicy)),
	}
	if config.SSL {
		opts = append(opts, gomail.WithSSL())
	}
	if config.Timeout > 0 {
		opts = append(opts, gomail.WithTimeout(config.Timeout))
	}
	if config.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(config.Username),
			gomail.WithPassword(config.Password),
		)
	}

	client, err := gomail.NewClient(config.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create smtp client: %w", err)
	}

	return &SMTPSender{client: client}, nil
}

// Send dials the relay, delivers the message and closes the connection
func (sender *SMTPSender) Send(ctx context.Context, message Message) error {
	msg, err := buildMessage(message)
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrEmailDeliveryFailed, err)
	}

	if err = sender.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("%w: %v", model.ErrEmailDeliveryFailed, err)
	}

	return nil
}

func buildMessage(message Message) (*gomail.Msg, error) {
	msg := gomail.NewMsg()
	if err := msg.From(message.From); err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", message.From, err)
	}
	if err := msg.To(message.To); err != nil {
		return nil, fmt.Errorf("invalid recipient %q: %w", message.To, err)
	}
	msg.Subject(message.Subject)
	msg.SetBodyString(gomail.TypeTextHTML, message.HTML)

	return msg, nil
}

func tlsPolicy(name string) gomail.TLSPolicy {
	switch strings.ToLower(name) {
	case "none":
		return gomail.NoTLS
	case "opportunistic":
		return gomail.TLSOpportunistic
	default:
		return gomail.TLSMandatory
	}
}
