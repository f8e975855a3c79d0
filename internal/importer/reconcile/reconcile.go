// Package reconcile compares a locally imported prospect against its CRM
// identity and reports field-level drift. Used by the post-import re-check.
package reconcile

import (
	"strings"

	"crm_portal_backend/internal/importer/domain"
	"crm_portal_backend/platform/phone"
)

// CompareLead returns the fields where the local record and the CRM identity
// disagree. Blank remote fields are ignored: an empty CRM value is missing
// data, not a change.
func CompareLead(local *domain.Prospect, lead *domain.LeadIdentity) []domain.FieldDiff {
	if local == nil || lead == nil {
		return nil
	}

	var diffs []domain.FieldDiff

	check := func(field, localValue, remoteValue string) {
		if strings.TrimSpace(remoteValue) == "" {
			return
		}
		if !strings.EqualFold(strings.TrimSpace(localValue), strings.TrimSpace(remoteValue)) {
			diffs = append(diffs, domain.FieldDiff{Field: field, Local: localValue, Remote: remoteValue})
		}
	}

	check("nombre", local.FullName, lead.Name)
	check("email", local.Email, lead.Email)
	check("propietario", local.ExecutiveName, lead.OwnerName)

	if lead.Phone != "" {
		if remote := phone.Last10(lead.Phone); remote != "" && remote != local.Phone {
			diffs = append(diffs, domain.FieldDiff{Field: "telefono", Local: local.Phone, Remote: remote})
		}
	}

	if lead.UnitID != "" && local.UnitID != "" && !strings.EqualFold(lead.UnitID, local.UnitID) {
		diffs = append(diffs, domain.FieldDiff{Field: "coordinacion_id", Local: local.UnitID, Remote: lead.UnitID})
	}

	return diffs
}
