// Package history decides which scraped tenders are new relative to the
// persisted record of everything seen so far.
//
// Identity is the tender number, compared after trimming and case-folding. A
// tender with an empty number has no stable identity: it is always treated as
// new, so repeated runs can duplicate it in the store. That behavior matches
// the deployed system and callers rely on it; do not "fix" it here without
// migrating the store.
package history

import (
	"strings"

	"tenderwatch/pkg/models"
)

// Normalize canonicalizes a tender number for identity comparison. Empty
// input normalizes to "" which means "no identity".
func Normalize(number string) string {
	return strings.ToLower(strings.TrimSpace(number))
}

// IsDuplicate reports whether t's normalized number already appears in seen.
// Tenders with an empty number are never duplicates of anything.
func IsDuplicate(t models.Tender, seen map[string]struct{}) bool {
	key := Normalize(t.Number)
	if key == "" {
		return false
	}
	_, ok := seen[key]
	return ok
}

// MergeResult holds the outcome of merging a scraped batch into the store.
type MergeResult struct {
	// Merged is existing followed by every appended tender, in input order.
	// Existing entries are never edited, reordered or removed.
	Merged []models.Tender
	// Added holds exactly the tenders appended this call.
	Added []models.Tender
}

// AddedCount returns the number of tenders appended by the merge.
func (r MergeResult) AddedCount() int {
	return len(r.Added)
}

// Merge appends every incoming tender that is not already known, preserving
// input order. Duplicates within the incoming batch itself are suppressed
// (second occurrence of the same normalized number is dropped), but only for
// non-empty numbers.
func Merge(existing, incoming []models.Tender) MergeResult {
	seen := make(map[string]struct{}, len(existing))
	for _, t := range existing {
		if key := Normalize(t.Number); key != "" {
			seen[key] = struct{}{}
		}
	}

	merged := make([]models.Tender, len(existing), len(existing)+len(incoming))
	copy(merged, existing)

	var added []models.Tender
	for _, t := range incoming {
		if IsDuplicate(t, seen) {
			continue
		}
		if key := Normalize(t.Number); key != "" {
			seen[key] = struct{}{}
		}
		merged = append(merged, t)
		added = append(added, t)
	}

	return MergeResult{Merged: merged, Added: added}
}
