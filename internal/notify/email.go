package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/jordan-wright/email"

	"tenderwatch/pkg/models"
)

// EmailConfig holds SMTP settings for the email channel. App passwords work
// with Gmail; any STARTTLS-capable SMTP host will do.
type EmailConfig struct {
	Host     string
	Port     int
	From     string
	Password string
}

// Email sends tender alerts as plain-text email over SMTP.
type Email struct {
	cfg EmailConfig
}

// NewEmail creates the email channel. Missing settings are a configuration
// error, handled the same way as a missing WhatsApp credential.
func NewEmail(cfg EmailConfig) (*Email, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("smtp sender address is required")
	}
	if cfg.Password == "" {
		return nil, fmt.Errorf("smtp password is required")
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	return &Email{cfg: cfg}, nil
}

// Send delivers one tender alert by email. The WhatsApp bold markers are
// stripped for the plain-text body.
func (e *Email) Send(ctx context.Context, recipient string, t models.Tender) Outcome {
	if err := ctx.Err(); err != nil {
		return Outcome{Err: err.Error()}
	}

	mail := email.NewEmail()
	mail.From = fmt.Sprintf("Tenderwatch <%s>", e.cfg.From)
	mail.To = []string{recipient}
	mail.Subject = Subject(t)
	mail.Text = []byte(strings.ReplaceAll(RenderAlert(t), "*", ""))

	addr := fmt.Sprintf("%s:%d", e.cfg.Host, e.cfg.Port)
	auth := smtp.PlainAuth("", e.cfg.From, e.cfg.Password, e.cfg.Host)
	if err := mail.Send(addr, auth); err != nil {
		return Outcome{Err: fmt.Sprintf("smtp send failed: %v", err)}
	}

	return Outcome{OK: true}
}
