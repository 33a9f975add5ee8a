// Package notify delivers tender alerts over the configured channels:
// WhatsApp through the Twilio REST API and plain email over SMTP.
package notify

import (
	"context"

	"tenderwatch/pkg/models"
)

// Outcome is the result of one delivery attempt.
type Outcome struct {
	OK         bool
	ProviderID string // provider message ID when the channel reports one
	Err        string
}

// Notifier sends a single tender alert to a recipient handle (a WhatsApp
// number or an email address, depending on the channel).
type Notifier interface {
	Send(ctx context.Context, recipient string, t models.Tender) Outcome
}

// Channel pairs a notifier with its configured recipient.
type Channel struct {
	Name      string
	Recipient string
	Notifier  Notifier
}
