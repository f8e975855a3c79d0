// Package importer provides the prospect import domain module.
package importer

import (
	"crm_portal_backend/internal/crm"
	apphttp "crm_portal_backend/internal/http"
	"crm_portal_backend/internal/importer/handler"
	"crm_portal_backend/internal/importer/repository"
	"crm_portal_backend/internal/importer/resolver"
	"crm_portal_backend/internal/importer/service"
	"crm_portal_backend/internal/notify"
	"crm_portal_backend/internal/templates"
	"crm_portal_backend/internal/whatsapp"
	"crm_portal_backend/platform/config"
	"crm_portal_backend/platform/events"
	"crm_portal_backend/platform/logger"
	"crm_portal_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Config combines the config interfaces the importer module needs.
type Config interface {
	config.CRMConfig
	config.WhatsAppConfig
}

// Module represents the prospect import domain module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    *repository.Repository
}

// NewModule creates the importer module with all dependencies wired.
// recheck may be nil when no task queue is configured.
func NewModule(
	pool *pgxpool.Pool,
	cfg Config,
	bus events.Bus,
	recheck service.RecheckScheduler,
	val *validator.Validator,
	log *logger.Logger,
) *Module {
	repo := repository.New(pool)
	crmClient := crm.NewClient(cfg, log)
	res := resolver.New(repo, crmClient, log)
	templateStore := templates.NewStore(pool)
	waClient := whatsapp.NewClient(cfg, log)
	dispatcher := notify.New(waClient, cfg.GetSendInterval(), log)

	svc := service.New(repo, res, crmClient, templateStore, dispatcher, bus, recheck, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
	}
}

// Name returns the module name for logging.
func (m *Module) Name() string {
	return "importer"
}

// Service exposes the orchestrator for cross-module wiring.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository exposes the prospect store for event subscribers.
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// RegisterRoutes registers the module's routes under /api/v1.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	imports := ctx.Protected.Group("/import")
	m.handler.RegisterRoutes(imports)

	ctx.Protected.GET("/templates", m.handler.ListTemplates)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
