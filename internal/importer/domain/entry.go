// Package domain contains the core types for the prospect import workflow.
package domain

import (
	"time"
)

// EntryKind classifies what a raw input line was recognized as.
type EntryKind string

const (
	KindPhoneNumber  EntryKind = "phone_number"
	KindCrmReference EntryKind = "crm_reference"
)

// ResolutionStatus is the per-entry lookup state machine.
// Pending -> Searching -> {Found | NotFound | Error | ExistsLocally}
type ResolutionStatus string

const (
	ResolutionPending       ResolutionStatus = "pending"
	ResolutionSearching     ResolutionStatus = "searching"
	ResolutionFound         ResolutionStatus = "found"
	ResolutionNotFound      ResolutionStatus = "not_found"
	ResolutionError         ResolutionStatus = "error"
	ResolutionExistsLocally ResolutionStatus = "exists_locally"
)

// ImportStatus tracks the import lifecycle of a resolved entry.
type ImportStatus string

const (
	ImportIdle      ImportStatus = "idle"
	ImportImporting ImportStatus = "importing"
	ImportSuccess   ImportStatus = "success"
	ImportFailed    ImportStatus = "failed"
)

// MaxBatchEntries is the hard cap on entries per import batch. It also bounds
// worst-case lookup and import concurrency.
const MaxBatchEntries = 5

// ContactNumberLength is the exact digit count a contact number must have
// before an entry may be imported.
const ContactNumberLength = 10

// Permission is the outcome of the permission evaluation for one entry.
type Permission struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// SearchEntry is one user-submitted line tracked through its whole lifecycle:
// parsed, resolved, deduplicated, permission-annotated and imported.
type SearchEntry struct {
	ID             string           `json:"id"`
	RawText        string           `json:"rawText"`
	Kind           EntryKind        `json:"kind"`
	SearchKey      string           `json:"searchKey"`
	ContactNumber  string           `json:"contactNumber,omitempty"`
	Resolution     ResolutionStatus `json:"resolution"`
	ResolutionNote string           `json:"resolutionNote,omitempty"`
	LookupElapsed  time.Duration    `json:"lookupElapsedNs,omitempty"`
	Lead           *LeadIdentity    `json:"lead,omitempty"`
	LocalMatch     *Prospect        `json:"localMatch,omitempty"`
	Permission     *Permission      `json:"permission,omitempty"`
	Selected       bool             `json:"selected"`
	Import         ImportStatus     `json:"import"`
	ImportError    string           `json:"importError,omitempty"`
	LocalRecordID  string           `json:"localRecordId,omitempty"`
}

// HasContactNumber reports whether the entry carries a full contact number.
func (e *SearchEntry) HasContactNumber() bool {
	return len(e.ContactNumber) == ContactNumberLength
}

// EligibleForImport reports whether the entry satisfies every import
// precondition: selected, resolved to a lead, permission granted and a
// complete contact number.
func (e *SearchEntry) EligibleForImport() bool {
	return e.Selected &&
		e.Resolution == ResolutionFound &&
		e.Lead != nil &&
		e.Permission != nil && e.Permission.Allowed &&
		e.HasContactNumber()
}

// PendingPhone reports whether the entry would be importable except that its
// contact number is missing or incomplete. These entries are surfaced to the
// caller and excluded from the import pass.
func (e *SearchEntry) PendingPhone() bool {
	return e.Selected &&
		e.Resolution == ResolutionFound &&
		e.Lead != nil &&
		e.Permission != nil && e.Permission.Allowed &&
		!e.HasContactNumber()
}

// ImportResult is the per-entry outcome of one import call.
type ImportResult struct {
	EntryID  string `json:"entryId"`
	Success  bool   `json:"success"`
	RecordID string `json:"recordId,omitempty"`
	Error    string `json:"error,omitempty"`
}
