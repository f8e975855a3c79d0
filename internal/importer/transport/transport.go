// Package transport defines the request/response DTOs for the importer API.
package transport

import (
	"strings"

	"crm_portal_backend/internal/importer/domain"
	"crm_portal_backend/platform/httpkit"

	"github.com/google/uuid"
)

// ActorContext carries the profile attributes the token does not: the
// functional role and the display name of the actor's coordination unit.
type ActorContext struct {
	Role     string `json:"role" validate:"omitempty,max=64"`
	UnitName string `json:"unitName" validate:"omitempty,max=128"`
}

// ParseRequest carries the raw multiline text to classify.
type ParseRequest struct {
	Text string `json:"text" validate:"required"`
}

// ParseResponse returns the classified entries plus per-line rejections.
type ParseResponse struct {
	Entries []*domain.SearchEntry `json:"entries"`
	Errors  []string              `json:"errors,omitempty"`
}

// ResolveRequest resolves a parsed batch against the local store and the CRM.
type ResolveRequest struct {
	Entries []*domain.SearchEntry `json:"entries" validate:"required,min=1,max=5"`
}

// ResolveResponse returns the settled batch.
type ResolveResponse struct {
	Entries []*domain.SearchEntry `json:"entries"`
}

// DeduplicateRequest merges entries that resolved to the same lead.
type DeduplicateRequest struct {
	Entries []*domain.SearchEntry `json:"entries" validate:"required,min=1,max=5"`
}

// DeduplicateResponse returns the merged batch.
type DeduplicateResponse struct {
	Entries     []*domain.SearchEntry `json:"entries"`
	MergedCount int                   `json:"mergedCount"`
}

// PermissionsRequest annotates resolved entries with the actor's permission.
type PermissionsRequest struct {
	Actor   ActorContext          `json:"actor"`
	Entries []*domain.SearchEntry `json:"entries" validate:"required,min=1,max=5"`
}

// PermissionsResponse returns the annotated batch.
type PermissionsResponse struct {
	Entries []*domain.SearchEntry `json:"entries"`
}

// ExecuteRequest imports the eligible entries of a settled batch.
type ExecuteRequest struct {
	Actor   ActorContext          `json:"actor"`
	Entries []*domain.SearchEntry `json:"entries" validate:"required,min=1,max=5"`
}

// NotifyRequest sends one template to a set of imported records.
type NotifyRequest struct {
	RecordIDs  []uuid.UUID `json:"recordIds" validate:"required,min=1"`
	TemplateID uuid.UUID   `json:"templateId" validate:"required"`
	CustomDate string      `json:"customDate" validate:"omitempty,max=64"`
	CustomTime string      `json:"customTime" validate:"omitempty,max=32"`
}

// LookupResponse is the quick local search result.
type LookupResponse struct {
	Found  bool             `json:"found"`
	Record *domain.Prospect `json:"record,omitempty"`
}

// BuildActor assembles the permission-evaluator snapshot from the verified
// token identity plus the request's profile attributes. Elevated flags come
// from token roles only; the body cannot grant them.
func BuildActor(identity httpkit.Identity, actorCtx ActorContext) domain.Actor {
	actor := domain.Actor{
		ID:       identity.UserID(),
		Name:     identity.DisplayName(),
		Email:    identity.Email(),
		Role:     strings.ToLower(strings.TrimSpace(actorCtx.Role)),
		UnitID:   identity.UnitID(),
		UnitName: actorCtx.UnitName,
	}

	for _, role := range identity.Roles() {
		switch strings.ToLower(role) {
		case "administrador", "admin":
			actor.IsAdministrator = true
		case "calidad":
			actor.IsQualityCoordinator = true
		case "operaciones":
			actor.IsOperational = true
		case domain.RoleCoordinator, domain.RoleExecutive:
			if actor.Role == "" {
				actor.Role = strings.ToLower(role)
			}
		}
	}

	return actor
}
