package reconcile

import (
	"testing"

	"crm_portal_backend/internal/importer/domain"
)

func TestCompareLeadNoDrift(t *testing.T) {
	local := &domain.Prospect{
		FullName:      "Ana López",
		Email:         "ana@example.com",
		Phone:         "5512345678",
		ExecutiveName: "Carlos",
		UnitID:        "unit-1",
	}
	lead := &domain.LeadIdentity{
		Name:      "ana lópez",
		Email:     "ANA@example.com",
		Phone:     "+52 55 1234 5678",
		OwnerName: "Carlos",
		UnitID:    "UNIT-1",
	}

	if diffs := CompareLead(local, lead); len(diffs) != 0 {
		t.Fatalf("expected no drift, got %+v", diffs)
	}
}

func TestCompareLeadReportsDrift(t *testing.T) {
	local := &domain.Prospect{FullName: "Ana", Phone: "5512345678", Email: "ana@example.com"}
	lead := &domain.LeadIdentity{Name: "Ana María", Phone: "5599999999", Email: "ana@example.com"}

	diffs := CompareLead(local, lead)
	if len(diffs) != 2 {
		t.Fatalf("expected 2 diffs, got %+v", diffs)
	}
	fields := map[string]bool{}
	for _, d := range diffs {
		fields[d.Field] = true
	}
	if !fields["nombre"] || !fields["telefono"] {
		t.Fatalf("unexpected diff fields: %+v", diffs)
	}
}

func TestCompareLeadIgnoresBlankRemoteFields(t *testing.T) {
	local := &domain.Prospect{FullName: "Ana", Email: "ana@example.com"}
	lead := &domain.LeadIdentity{Name: "Ana"}

	if diffs := CompareLead(local, lead); len(diffs) != 0 {
		t.Fatalf("blank remote fields are not drift: %+v", diffs)
	}
}

func TestCompareLeadNilInputs(t *testing.T) {
	if CompareLead(nil, &domain.LeadIdentity{}) != nil || CompareLead(&domain.Prospect{}, nil) != nil {
		t.Fatal("nil inputs should produce no diffs")
	}
}
