package dedup

import (
	"strings"
	"testing"
	"time"

	"crm_portal_backend/internal/importer/domain"
)

func found(id string, kind domain.EntryKind, leadID, contact string) *domain.SearchEntry {
	e := &domain.SearchEntry{
		ID:            id,
		RawText:       id,
		Kind:          kind,
		ContactNumber: contact,
		Resolution:    domain.ResolutionFound,
		Lead:          &domain.LeadIdentity{LeadID: leadID},
	}
	return e
}

func TestPhoneAndURLSameLeadMergeToOne(t *testing.T) {
	phone := found("a", domain.KindPhoneNumber, "lead-1", "5512345678")
	url := found("b", domain.KindCrmReference, "lead-1", "")

	result := Deduplicate([]*domain.SearchEntry{phone, url})

	if len(result.Entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(result.Entries))
	}
	if result.MergedCount != 1 {
		t.Fatalf("mergedCount = %d, want 1", result.MergedCount)
	}
	survivor := result.Entries[0]
	if survivor.ID != "a" {
		t.Fatalf("first-seen entry must survive, got %s", survivor.ID)
	}
	if survivor.ContactNumber != "5512345678" {
		t.Fatalf("contact number lost on merge: %q", survivor.ContactNumber)
	}
}

func TestURLFirstAdoptsPhoneFromDuplicate(t *testing.T) {
	url := found("a", domain.KindCrmReference, "lead-1", "")
	phone := found("b", domain.KindPhoneNumber, "lead-1", "5512345678")

	result := Deduplicate([]*domain.SearchEntry{url, phone})

	survivor := result.Entries[0]
	if survivor.ID != "a" {
		t.Fatalf("first-seen entry must survive, got %s", survivor.ID)
	}
	if survivor.ContactNumber != "5512345678" {
		t.Fatalf("survivor should adopt the duplicate's contact number, got %q", survivor.ContactNumber)
	}
	if !strings.Contains(survivor.RawText, "b") {
		t.Fatalf("survivor raw text should be tagged with the merged line, got %q", survivor.RawText)
	}
}

func TestKeepsMinimumElapsedTime(t *testing.T) {
	slow := found("a", domain.KindCrmReference, "lead-1", "")
	slow.LookupElapsed = 40 * time.Second
	fast := found("b", domain.KindPhoneNumber, "lead-1", "5512345678")
	fast.LookupElapsed = 2 * time.Second

	result := Deduplicate([]*domain.SearchEntry{slow, fast})
	if got := result.Entries[0].LookupElapsed; got != 2*time.Second {
		t.Fatalf("elapsed = %v, want the minimum 2s", got)
	}
}

func TestLeadIDComparisonIsCaseInsensitive(t *testing.T) {
	a := found("a", domain.KindPhoneNumber, "ABC-123", "5512345678")
	b := found("b", domain.KindCrmReference, "abc-123", "")

	result := Deduplicate([]*domain.SearchEntry{a, b})
	if len(result.Entries) != 1 || result.MergedCount != 1 {
		t.Fatalf("case-differing lead ids must merge: %d entries, %d merged", len(result.Entries), result.MergedCount)
	}
}

func TestUnresolvedEntriesPassThrough(t *testing.T) {
	ok := found("a", domain.KindPhoneNumber, "lead-1", "5512345678")
	notFound := &domain.SearchEntry{ID: "b", Resolution: domain.ResolutionNotFound}
	failed := &domain.SearchEntry{ID: "c", Resolution: domain.ResolutionError}

	result := Deduplicate([]*domain.SearchEntry{ok, notFound, failed})
	if len(result.Entries) != 3 || result.MergedCount != 0 {
		t.Fatalf("unresolved entries must pass through: %d entries, %d merged", len(result.Entries), result.MergedCount)
	}
}

func TestDistinctLeadsUntouched(t *testing.T) {
	a := found("a", domain.KindPhoneNumber, "lead-1", "5512345678")
	b := found("b", domain.KindPhoneNumber, "lead-2", "5599999999")

	result := Deduplicate([]*domain.SearchEntry{a, b})
	if len(result.Entries) != 2 || result.MergedCount != 0 {
		t.Fatalf("distinct leads must not merge: %d entries, %d merged", len(result.Entries), result.MergedCount)
	}
}

func TestThreeWayMergeCountsTwo(t *testing.T) {
	a := found("a", domain.KindCrmReference, "lead-1", "")
	b := found("b", domain.KindPhoneNumber, "lead-1", "5512345678")
	c := found("c", domain.KindCrmReference, "lead-1", "")

	result := Deduplicate([]*domain.SearchEntry{a, b, c})
	if len(result.Entries) != 1 || result.MergedCount != 2 {
		t.Fatalf("three-way merge: %d entries, %d merged, want 1/2", len(result.Entries), result.MergedCount)
	}
}
