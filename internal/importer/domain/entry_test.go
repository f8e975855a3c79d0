package domain

import "testing"

func foundEntry() *SearchEntry {
	return &SearchEntry{
		ID:            "e1",
		Kind:          KindPhoneNumber,
		SearchKey:     "5512345678",
		ContactNumber: "5512345678",
		Resolution:    ResolutionFound,
		Lead:          &LeadIdentity{LeadID: "lead-1"},
		Permission:    &Permission{Allowed: true},
		Selected:      true,
		Import:        ImportIdle,
	}
}

func TestEligibleForImport(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(e *SearchEntry)
		want   bool
	}{
		{"fully eligible", func(e *SearchEntry) {}, true},
		{"deselected", func(e *SearchEntry) { e.Selected = false }, false},
		{"not resolved", func(e *SearchEntry) { e.Resolution = ResolutionNotFound }, false},
		{"missing lead", func(e *SearchEntry) { e.Lead = nil }, false},
		{"permission denied", func(e *SearchEntry) { e.Permission = &Permission{Allowed: false} }, false},
		{"permission not evaluated", func(e *SearchEntry) { e.Permission = nil }, false},
		{"short contact number", func(e *SearchEntry) { e.ContactNumber = "551234" }, false},
		{"empty contact number", func(e *SearchEntry) { e.ContactNumber = "" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := foundEntry()
			tt.mutate(e)
			if got := e.EligibleForImport(); got != tt.want {
				t.Fatalf("EligibleForImport() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPendingPhone(t *testing.T) {
	e := foundEntry()
	e.ContactNumber = ""
	if !e.PendingPhone() {
		t.Fatal("entry without contact number should be pending phone")
	}
	if e.EligibleForImport() {
		t.Fatal("pending-phone entry must never be import eligible")
	}

	e.ContactNumber = "5512345678"
	if e.PendingPhone() {
		t.Fatal("entry with full contact number is not pending phone")
	}
}

func TestHasElevatedRole(t *testing.T) {
	if (Actor{}).HasElevatedRole() {
		t.Fatal("plain actor should not be elevated")
	}
	for _, a := range []Actor{
		{IsAdministrator: true},
		{IsQualityCoordinator: true},
		{IsOperational: true},
	} {
		if !a.HasElevatedRole() {
			t.Fatalf("actor %+v should be elevated", a)
		}
	}
}
