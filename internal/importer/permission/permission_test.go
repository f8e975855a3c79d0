package permission

import (
	"strings"
	"testing"

	"crm_portal_backend/internal/importer/domain"
)

func lead(unit string) *domain.LeadIdentity {
	return &domain.LeadIdentity{LeadID: "lead-1", Name: "Ana", Unit: unit}
}

func TestElevatedRolesAlwaysAllowed(t *testing.T) {
	actors := []domain.Actor{
		{IsAdministrator: true},
		{IsQualityCoordinator: true, UnitName: "VEN"},
		{IsOperational: true, Role: domain.RoleExecutive},
	}

	for _, actor := range actors {
		// Unit mismatch must not matter for elevated actors.
		perm := Evaluate(actor, lead("BOOM"))
		if !perm.Allowed {
			t.Fatalf("elevated actor %+v denied: %s", actor, perm.Reason)
		}
	}
}

func TestUnitMatchTable(t *testing.T) {
	tests := []struct {
		name      string
		role      string
		actorUnit string
		leadUnit  string
		allowed   bool
	}{
		{"coordinator same unit", domain.RoleCoordinator, "VEN", "VENTAS", true},
		{"executive same unit variant", domain.RoleExecutive, "cob aca", "COBACA", true},
		{"coordinator different unit", domain.RoleCoordinator, "VEN", "BOOM", false},
		{"executive different unit", domain.RoleExecutive, "CDMX SUR", "I360", false},
		{"shared prefix is not a match", domain.RoleExecutive, "acapulco", "COB", false},
		{"unmatched labels equal", domain.RoleCoordinator, "zona norte", "ZONA  NORTE", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actor := domain.Actor{Role: tt.role, UnitName: tt.actorUnit}
			perm := Evaluate(actor, lead(tt.leadUnit))
			if perm.Allowed != tt.allowed {
				t.Fatalf("allowed = %v, want %v (reason %q)", perm.Allowed, tt.allowed, perm.Reason)
			}
		})
	}
}

func TestDenialReasonNamesBothUnits(t *testing.T) {
	actor := domain.Actor{Role: domain.RoleCoordinator, UnitName: "VEN"}
	perm := Evaluate(actor, lead("BOOM"))
	if perm.Allowed {
		t.Fatal("expected denial")
	}
	if !strings.Contains(perm.Reason, "VEN") || !strings.Contains(perm.Reason, "BOOM") {
		t.Fatalf("reason should name both units, got %q", perm.Reason)
	}
}

func TestActorWithoutUnit(t *testing.T) {
	actor := domain.Actor{Role: domain.RoleExecutive}
	perm := Evaluate(actor, lead("VEN"))
	if perm.Allowed || !strings.Contains(perm.Reason, "coordinación asignada") {
		t.Fatalf("unexpected permission %+v", perm)
	}
}

func TestLeadWithoutUnit(t *testing.T) {
	actor := domain.Actor{Role: domain.RoleCoordinator, UnitName: "VEN"}
	for _, l := range []*domain.LeadIdentity{lead(""), nil} {
		perm := Evaluate(actor, l)
		if perm.Allowed || !strings.Contains(perm.Reason, "no tiene coordinación") {
			t.Fatalf("unexpected permission %+v", perm)
		}
	}
}

func TestUnknownRoleDenied(t *testing.T) {
	perm := Evaluate(domain.Actor{Role: "analista", UnitName: "VEN"}, lead("VEN"))
	if perm.Allowed || !strings.Contains(perm.Reason, "insuficientes") {
		t.Fatalf("unexpected permission %+v", perm)
	}
}

func TestEvaluateAllAnnotatesAndSelects(t *testing.T) {
	actor := domain.Actor{Role: domain.RoleCoordinator, UnitName: "VEN"}
	entries := []*domain.SearchEntry{
		{ID: "a", Resolution: domain.ResolutionFound, Lead: lead("VENTAS")},
		{ID: "b", Resolution: domain.ResolutionFound, Lead: lead("BOOM")},
		{ID: "c", Resolution: domain.ResolutionNotFound},
	}

	EvaluateAll(entries, actor)

	if entries[0].Permission == nil || !entries[0].Permission.Allowed || !entries[0].Selected {
		t.Fatalf("matching entry should be allowed and selected: %+v", entries[0])
	}
	if entries[1].Permission == nil || entries[1].Permission.Allowed || entries[1].Selected {
		t.Fatalf("mismatched entry should be denied and deselected: %+v", entries[1])
	}
	if entries[2].Permission != nil {
		t.Fatal("unresolved entry must not be annotated")
	}
}
