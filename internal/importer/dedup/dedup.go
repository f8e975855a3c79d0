// Package dedup merges entries that resolved to the same underlying lead.
// The same lead reached through its phone number and through its CRM URL
// must be imported and notified exactly once.
package dedup

import (
	"strings"

	"crm_portal_backend/internal/importer/domain"
)

// Result is the outcome of one deduplication pass.
type Result struct {
	Entries     []*domain.SearchEntry `json:"entries"`
	MergedCount int                   `json:"mergedCount"`
}

// Deduplicate collapses duplicate resolutions. It must run only after every
// lookup has settled, never incrementally. Entries are walked in original
// order and the first entry per lead id survives; later duplicates merge
// into it and are dropped. Entries without a successful resolution pass
// through untouched.
func Deduplicate(entries []*domain.SearchEntry) Result {
	kept := make([]*domain.SearchEntry, 0, len(entries))
	byLeadID := make(map[string]*domain.SearchEntry)
	merged := 0

	for _, entry := range entries {
		if entry.Resolution != domain.ResolutionFound || entry.Lead == nil || entry.Lead.LeadID == "" {
			kept = append(kept, entry)
			continue
		}

		key := strings.ToLower(entry.Lead.LeadID)
		first, seen := byLeadID[key]
		if !seen {
			byLeadID[key] = entry
			kept = append(kept, entry)
			continue
		}

		mergeInto(first, entry)
		merged++
	}

	return Result{Entries: kept, MergedCount: merged}
}

// mergeInto folds the duplicate into the surviving first-seen entry.
func mergeInto(first, dup *domain.SearchEntry) {
	// Adopt a contact number known directly from user input when the
	// survivor has none.
	if !first.HasContactNumber() && dup.Kind == domain.KindPhoneNumber && dup.HasContactNumber() {
		first.ContactNumber = dup.ContactNumber
	}

	if dup.LookupElapsed > 0 && (first.LookupElapsed == 0 || dup.LookupElapsed < first.LookupElapsed) {
		first.LookupElapsed = dup.LookupElapsed
	}

	// Cosmetic audit trail on the surviving raw text.
	if !strings.Contains(first.RawText, dup.RawText) {
		first.RawText = first.RawText + " (+ " + dup.RawText + ")"
	}
}
