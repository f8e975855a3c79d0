// Package handler exposes the import workflow over HTTP.
package handler

import (
	"errors"
	"net/http"

	"crm_portal_backend/internal/importer/repository"
	"crm_portal_backend/internal/importer/service"
	"crm_portal_backend/internal/importer/transport"
	"crm_portal_backend/platform/httpkit"
	"crm_portal_backend/platform/phone"
	"crm_portal_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Handler handles HTTP requests for the import workflow.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes registers the import routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/parse", h.Parse)
	rg.POST("/resolve", h.Resolve)
	rg.POST("/deduplicate", h.Deduplicate)
	rg.POST("/permissions", h.Permissions)
	rg.POST("/execute", h.Execute)
	rg.POST("/notify", h.Notify)
	rg.GET("/lookup/:phone", h.Lookup)
}

// Parse handles POST /api/v1/import/parse
func (h *Handler) Parse(c *gin.Context) {
	var req transport.ParseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result := h.svc.ParseAndValidate(req.Text)
	httpkit.OK(c, transport.ParseResponse{Entries: result.Entries, Errors: result.Errors})
}

// Resolve handles POST /api/v1/import/resolve
func (h *Handler) Resolve(c *gin.Context) {
	var req transport.ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	entries := h.svc.ResolveAll(c.Request.Context(), req.Entries)
	httpkit.OK(c, transport.ResolveResponse{Entries: entries})
}

// Deduplicate handles POST /api/v1/import/deduplicate
func (h *Handler) Deduplicate(c *gin.Context) {
	var req transport.DeduplicateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result := h.svc.Deduplicate(req.Entries)
	httpkit.OK(c, transport.DeduplicateResponse{Entries: result.Entries, MergedCount: result.MergedCount})
}

// Permissions handles POST /api/v1/import/permissions
func (h *Handler) Permissions(c *gin.Context) {
	var req transport.PermissionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	actor := transport.BuildActor(identity, req.Actor)
	entries := h.svc.EvaluatePermissions(req.Entries, actor)
	httpkit.OK(c, transport.PermissionsResponse{Entries: entries})
}

// Execute handles POST /api/v1/import/execute
func (h *Handler) Execute(c *gin.Context) {
	var req transport.ExecuteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	actor := transport.BuildActor(identity, req.Actor)
	summary, err := h.svc.ImportSelected(c.Request.Context(), req.Entries, actor)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, summary)
}

// Notify handles POST /api/v1/import/notify
func (h *Handler) Notify(c *gin.Context) {
	var req transport.NotifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	actor := transport.BuildActor(identity, transport.ActorContext{})
	result, err := h.svc.SendNotifications(c.Request.Context(), service.NotifyRequest{
		RecordIDs:  req.RecordIDs,
		TemplateID: req.TemplateID,
		CustomDate: req.CustomDate,
		CustomTime: req.CustomTime,
	}, actor)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// ListTemplates handles GET /api/v1/templates
func (h *Handler) ListTemplates(c *gin.Context) {
	list, err := h.svc.ListTemplates(c.Request.Context(), c.Query("tag"))
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"templates": list})
}

// Lookup handles GET /api/v1/import/lookup/:phone
func (h *Handler) Lookup(c *gin.Context) {
	digits := phone.Last10(c.Param("phone"))
	if digits == "" {
		httpkit.Error(c, http.StatusBadRequest, "número de teléfono inválido", nil)
		return
	}

	record, err := h.svc.LookupLocal(c.Request.Context(), digits)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			httpkit.OK(c, transport.LookupResponse{Found: false})
			return
		}
		httpkit.HandleError(c, err)
		return
	}

	httpkit.OK(c, transport.LookupResponse{Found: true, Record: record})
}
