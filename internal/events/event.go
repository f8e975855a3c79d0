// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"crm_portal_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Import Domain Events
// =============================================================================

// BatchImported is published when an import batch finishes with at least one
// successful record.
type BatchImported struct {
	BaseEvent
	ActorID    uuid.UUID   `json:"actorId"`
	ActorName  string      `json:"actorName"`
	ActorEmail string      `json:"actorEmail,omitempty"`
	Succeeded  int         `json:"succeeded"`
	Failed     int         `json:"failed"`
	RecordIDs  []uuid.UUID `json:"recordIds"`
}

func (e BatchImported) EventName() string { return "importer.batch_imported" }

// LeadDiscrepancyFound is published by the post-import re-check when a local
// record drifted from its CRM identity.
type LeadDiscrepancyFound struct {
	BaseEvent
	RecordID uuid.UUID `json:"recordId"`
	LeadID   string    `json:"leadId"`
	Fields   []string  `json:"fields"`
}

func (e LeadDiscrepancyFound) EventName() string { return "importer.lead_discrepancy_found" }
