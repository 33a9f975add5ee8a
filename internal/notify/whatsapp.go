package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"

	"tenderwatch/pkg/models"
)

const twilioBaseURL = "https://api.twilio.com"

// WhatsAppConfig holds Twilio credentials for the WhatsApp channel.
type WhatsAppConfig struct {
	AccountSID string
	AuthToken  string
	From       string // Twilio WhatsApp number, with or without the whatsapp: prefix
	BaseURL    string // override for tests; defaults to the Twilio API
}

// WhatsApp sends tender alerts as WhatsApp messages through the Twilio
// Messages API.
type WhatsApp struct {
	cfg    WhatsAppConfig
	client *resty.Client
}

// NewWhatsApp creates the WhatsApp channel. Missing credentials are a
// configuration error; callers treat it as "channel not available" rather
// than aborting the run.
func NewWhatsApp(cfg WhatsAppConfig) (*WhatsApp, error) {
	if cfg.AccountSID == "" {
		return nil, fmt.Errorf("twilio account SID is required")
	}
	if cfg.AuthToken == "" {
		return nil, fmt.Errorf("twilio auth token is required")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("twilio whatsapp sender number is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = twilioBaseURL
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetBasicAuth(cfg.AccountSID, cfg.AuthToken)

	return &WhatsApp{cfg: cfg, client: client}, nil
}

// twilioMessage is the subset of Twilio's response we care about.
type twilioMessage struct {
	Sid    string `json:"sid"`
	Status string `json:"status"`
}

// twilioError is Twilio's error envelope.
type twilioError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Send delivers one tender alert. Failures are reported in the Outcome, not
// returned as errors: one undeliverable alert must not stop the batch.
func (w *WhatsApp) Send(ctx context.Context, recipient string, t models.Tender) Outcome {
	body := RenderAlert(t)

	var msg twilioMessage
	var apiErr twilioError

	resp, err := w.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"From": withWhatsAppPrefix(w.cfg.From),
			"To":   withWhatsAppPrefix(recipient),
			"Body": body,
		}).
		SetResult(&msg).
		SetError(&apiErr).
		Post(fmt.Sprintf("/2010-04-01/Accounts/%s/Messages.json", w.cfg.AccountSID))
	if err != nil {
		return Outcome{Err: fmt.Sprintf("twilio request failed: %v", err)}
	}
	if resp.IsError() {
		return Outcome{Err: fmt.Sprintf("twilio API error: %s (code %d)", apiErr.Message, apiErr.Code)}
	}

	return Outcome{OK: true, ProviderID: msg.Sid}
}

func withWhatsAppPrefix(number string) string {
	if strings.HasPrefix(number, "whatsapp:") {
		return number
	}
	return "whatsapp:" + number
}
