// Package permission decides whether an actor may import a resolved lead.
// The evaluation is a pure function of the actor snapshot and the lead; the
// caller owns refreshing the snapshot, no state lives here.
package permission

import (
	"fmt"

	"crm_portal_backend/internal/importer/coordination"
	"crm_portal_backend/internal/importer/domain"
)

// Evaluate returns the import permission for one resolved lead.
//
// Elevated actors (administrator, quality coordinator, operational) are
// always allowed. Coordinators and executives may only import leads whose
// organizational unit normalizes to their own. Everyone else is denied.
func Evaluate(actor domain.Actor, lead *domain.LeadIdentity) domain.Permission {
	if actor.HasElevatedRole() {
		return domain.Permission{Allowed: true}
	}

	switch actor.Role {
	case domain.RoleCoordinator, domain.RoleExecutive:
		return evaluateUnitMatch(actor, lead)
	default:
		return domain.Permission{Allowed: false, Reason: "permisos insuficientes para importar prospectos"}
	}
}

func evaluateUnitMatch(actor domain.Actor, lead *domain.LeadIdentity) domain.Permission {
	actorUnit := coordination.Normalize(actor.UnitName)
	if actorUnit == "" {
		return domain.Permission{Allowed: false, Reason: "no tienes coordinación asignada"}
	}

	if lead == nil || coordination.Normalize(lead.Unit) == "" {
		return domain.Permission{Allowed: false, Reason: "el lead no tiene coordinación registrada"}
	}

	leadUnit := coordination.Normalize(lead.Unit)
	if actorUnit != leadUnit {
		return domain.Permission{
			Allowed: false,
			Reason: fmt.Sprintf(
				"el lead pertenece a la coordinación %s y tu coordinación es %s",
				leadUnit, actorUnit,
			),
		}
	}

	return domain.Permission{Allowed: true}
}

// EvaluateAll annotates every resolved entry in place and returns the slice
// for convenience. Entries without a resolved lead keep a nil permission.
func EvaluateAll(entries []*domain.SearchEntry, actor domain.Actor) []*domain.SearchEntry {
	for _, entry := range entries {
		if entry.Resolution != domain.ResolutionFound || entry.Lead == nil {
			continue
		}
		perm := Evaluate(actor, entry.Lead)
		entry.Permission = &perm
		// Default the selection to the permission outcome; the user can still
		// deselect allowed entries afterwards.
		entry.Selected = perm.Allowed
	}
	return entries
}
