package notify

import (
	"fmt"
	"strings"

	"tenderwatch/pkg/models"
)

// maxRenderedLinks bounds how many document links appear in an alert;
// WhatsApp messages get unwieldy past a few URLs.
const maxRenderedLinks = 3

// RenderAlert produces the human-readable alert body shared by all channels.
// Empty fields are omitted rather than rendered as blanks.
func RenderAlert(t models.Tender) string {
	var b strings.Builder
	b.WriteString("*New Tender Alert*\n")

	if t.Title != "" {
		fmt.Fprintf(&b, "\n*Title:* %s", t.Title)
	}
	if t.Number != "" {
		fmt.Fprintf(&b, "\n*Tender No:* %s", t.Number)
	}
	if t.Category != "" {
		fmt.Fprintf(&b, "\n*Category:* %s", t.Category)
	}
	if t.DepartmentOwner != "" {
		fmt.Fprintf(&b, "\n*Department:* %s", t.DepartmentOwner)
	}
	if t.ClosingDate != "" {
		fmt.Fprintf(&b, "\n*Closing Date:* %s", t.ClosingDate)
	}

	if len(t.DocumentLinks) > 0 {
		fmt.Fprintf(&b, "\n\n*Documents:* %d available", len(t.DocumentLinks))
		for i, link := range t.DocumentLinks {
			if i >= maxRenderedLinks {
				break
			}
			fmt.Fprintf(&b, "\n%d. %s", i+1, link)
		}
	}

	return b.String()
}

// Subject produces the email subject line for a tender alert.
func Subject(t models.Tender) string {
	if t.Title == "" {
		return "New Tender Alert"
	}
	return "New Tender Alert: " + t.Title
}
