package mailer

import (
	"context"
	"fmt"

	"certificados/config"
)

// Message is one outbound email with a single attachment.
type Message struct {
	To             string
	Subject        string
	Body           string
	AttachmentName string
	AttachmentType string
	Attachment     []byte
}

// Mailer is the single capability the issuance workflow depends on. Which
// transport actually sends the message is a deployment choice.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// ConfigError marks a transport-configuration problem: missing credentials or
// a failed credential acquisition. It is an operational failure, not a
// per-message one, and is never retried within the same request.
type ConfigError struct {
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("mail transport configuration: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("mail transport configuration: %s", e.Reason)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// DeliveryError marks a failed message submission. The provider's status code
// and response body are kept for diagnostics.
type DeliveryError struct {
	Provider   string
	StatusCode int
	Detail     string
	Err        error
}

func (e *DeliveryError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s delivery failed (%d): %s", e.Provider, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("%s delivery failed: %s", e.Provider, e.Detail)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// New selects the transport adapter from configuration.
func New(cfg *config.Config) (Mailer, error) {
	switch cfg.MailTransport {
	case "graph":
		if cfg.GraphTenantID == "" || cfg.GraphClientID == "" || cfg.GraphClientSecret == "" || cfg.GraphSender == "" {
			return nil, &ConfigError{Reason: "graph transport requires GRAPH_TENANT_ID, GRAPH_CLIENT_ID, GRAPH_CLIENT_SECRET and GRAPH_SENDER"}
		}
		return NewGraphMailer(cfg.GraphTenantID, cfg.GraphClientID, cfg.GraphClientSecret, cfg.GraphSender), nil
	case "smtp":
		if cfg.SMTPHost == "" || cfg.EmailFrom == "" {
			return nil, &ConfigError{Reason: "smtp transport requires SMTP_HOST and EMAIL_FROM"}
		}
		return NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.EmailFrom), nil
	case "sendgrid":
		if cfg.SendGridAPIKey == "" || cfg.EmailFrom == "" {
			return nil, &ConfigError{Reason: "sendgrid transport requires SENDGRID_API_KEY and EMAIL_FROM"}
		}
		return NewSendGridMailer(cfg.SendGridAPIKey, cfg.EmailFrom), nil
	default:
		return nil, &ConfigError{Reason: fmt.Sprintf("unknown MAIL_TRANSPORT %q", cfg.MailTransport)}
	}
}
