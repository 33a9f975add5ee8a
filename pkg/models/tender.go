package models

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
)

// Tender represents one procurement tender extracted from the listing page.
//
// StartDate and ClosingDate stay free-text because the source page does not
// use a consistent date format.
type Tender struct {
	Title           string   `json:"tender_title"`
	Category        string   `json:"category"`
	DepartmentOwner string   `json:"department_owner"`
	StartDate       string   `json:"start_date"`
	ClosingDate     string   `json:"closing_date"`
	Number          string   `json:"tender_number"`
	TSE             string   `json:"tse"`
	DocumentLinks   []string `json:"pdf_links"`
}

var tsePattern = regexp.MustCompile(`(?i)TSE[:\s-]?(\w+)`)

// ExtractTSE pulls the tender serial (TSE) out of a tender number when one is
// embedded, e.g. "TSE-2024-001" or "PROC TSE 42". Returns "" when no TSE
// marker is present.
func ExtractTSE(number string) string {
	if number == "" {
		return ""
	}
	m := tsePattern.FindStringSubmatch(number)
	if m == nil {
		return ""
	}
	return m[1]
}

// TenderID creates a deterministic ID for a tender from its number, suitable
// as an archive document ID. The ID is a SHA-256 hash (first 16 chars) of the
// trimmed, lowercased number.
func TenderID(number string) string {
	key := strings.ToLower(strings.TrimSpace(number))
	hash := sha256.Sum256([]byte(key))
	return hex.EncodeToString(hash[:])[:16]
}
