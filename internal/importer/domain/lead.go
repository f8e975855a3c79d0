package domain

import (
	"time"

	"github.com/google/uuid"
)

// LeadIdentity is the canonical representation of an external CRM lead
// record. It is immutable once resolved.
type LeadIdentity struct {
	LeadID        string `json:"leadId"`
	Name          string `json:"name"`
	Email         string `json:"email,omitempty"`
	MaritalStatus string `json:"maritalStatus,omitempty"`
	Occupation    string `json:"occupation,omitempty"`
	Country       string `json:"country,omitempty"`
	State         string `json:"state,omitempty"`
	Unit          string `json:"unit,omitempty"`
	UnitID        string `json:"unitId,omitempty"`
	OwnerName     string `json:"ownerName,omitempty"`
	OwnerID       string `json:"ownerId,omitempty"`
	LastCallDate  string `json:"lastCallDate,omitempty"`
	Qualification string `json:"qualification,omitempty"`
	// Phone is best-effort, extracted from whichever phone-shaped field the
	// remote record carried. May be empty; the remote schema does not
	// guarantee it.
	Phone string `json:"phone,omitempty"`
}

// Prospect is a locally stored record, previously imported from the CRM.
type Prospect struct {
	ID            uuid.UUID `json:"id"`
	FullName      string    `json:"fullName"`
	Phone         string    `json:"phone"`
	Email         string    `json:"email,omitempty"`
	Stage         string    `json:"stage,omitempty"`
	Source        string    `json:"source,omitempty"`
	DynamicsID    string    `json:"dynamicsId,omitempty"`
	UnitID        string    `json:"unitId,omitempty"`
	ExecutiveID   string    `json:"executiveId,omitempty"`
	ExecutiveName string    `json:"executiveName,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Actor is the user driving an import, with the role flags and unit needed
// by the permission evaluator. Callers build it from their auth context; the
// evaluator holds no state of its own.
type Actor struct {
	ID                   uuid.UUID `json:"id"`
	Name                 string    `json:"name"`
	Email                string    `json:"email,omitempty"`
	Role                 string    `json:"role"`
	UnitID               string    `json:"unitId,omitempty"`
	UnitName             string    `json:"unitName,omitempty"`
	IsAdministrator      bool      `json:"isAdministrator"`
	IsQualityCoordinator bool      `json:"isQualityCoordinator"`
	IsOperational        bool      `json:"isOperational"`
}

// Functional roles subject to unit matching. Any role outside this set that
// does not carry an elevated flag is denied outright.
const (
	RoleCoordinator = "coordinador"
	RoleExecutive   = "ejecutivo"
)

// HasElevatedRole reports whether any of the three elevated flags is set.
// Elevated actors bypass unit matching entirely.
func (a Actor) HasElevatedRole() bool {
	return a.IsAdministrator || a.IsQualityCoordinator || a.IsOperational
}

// FieldDiff is one field-level discrepancy between a local prospect and its
// CRM identity, produced by the post-import re-check.
type FieldDiff struct {
	Field  string `json:"field"`
	Local  string `json:"local"`
	Remote string `json:"remote"`
}
