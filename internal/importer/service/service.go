// Package service orchestrates the import workflow: parse, resolve,
// deduplicate, evaluate permissions, import and notify.
package service

import (
	"context"
	"errors"
	"time"

	"crm_portal_backend/internal/crm"
	"crm_portal_backend/internal/events"
	"crm_portal_backend/internal/importer/dedup"
	"crm_portal_backend/internal/importer/domain"
	"crm_portal_backend/internal/importer/parser"
	"crm_portal_backend/internal/importer/permission"
	"crm_portal_backend/internal/notify"
	"crm_portal_backend/internal/templates"
	"crm_portal_backend/platform/apperr"
	"crm_portal_backend/platform/logger"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// ProspectStore is the subset of the repository the orchestrator needs.
type ProspectStore interface {
	FindByPhone(ctx context.Context, phone string) (*domain.Prospect, error)
	FindByPhoneOrDynamicsID(ctx context.Context, phone, dynamicsID string) (*domain.Prospect, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Prospect, error)
}

// LeadResolver resolves a batch of entries against store and CRM.
type LeadResolver interface {
	ResolveAll(ctx context.Context, entries []*domain.SearchEntry) []*domain.SearchEntry
}

// Importer is the CRM import endpoint boundary.
type Importer interface {
	Import(ctx context.Context, payload crm.ImportPayload) (crm.ImportOutcome, error)
}

// TemplateStore provides message templates.
type TemplateStore interface {
	List(ctx context.Context, tag string) ([]templates.Template, error)
	GetByID(ctx context.Context, id uuid.UUID) (*templates.Template, error)
}

// Notifier dispatches templated messages sequentially.
type Notifier interface {
	SendAll(ctx context.Context, records []*domain.Prospect, tmpl templates.Template, opts templates.ResolveOptions) notify.Result
}

// RecheckScheduler enqueues the post-import CRM discrepancy re-check.
// May be nil when no task queue is configured.
type RecheckScheduler interface {
	ScheduleImportRecheck(ctx context.Context, recordID uuid.UUID, leadID string, runAt time.Time) error
}

type Service struct {
	store     ProspectStore
	resolver  LeadResolver
	importer  Importer
	templates TemplateStore
	notifier  Notifier
	bus       events.Bus
	recheck   RecheckScheduler
	log       *logger.Logger

	// fetchBackDelay gives the remote workflow time to land the insert
	// before the fallback search runs.
	fetchBackDelay time.Duration
	// recheckDelay is how long after import the discrepancy re-check runs.
	recheckDelay time.Duration
}

func New(
	store ProspectStore,
	resolver LeadResolver,
	importer Importer,
	templateStore TemplateStore,
	notifier Notifier,
	bus events.Bus,
	recheck RecheckScheduler,
	log *logger.Logger,
) *Service {
	return &Service{
		store:          store,
		resolver:       resolver,
		importer:       importer,
		templates:      templateStore,
		notifier:       notifier,
		bus:            bus,
		recheck:        recheck,
		log:            log,
		fetchBackDelay: 2 * time.Second,
		recheckDelay:   10 * time.Minute,
	}
}

// ParseAndValidate classifies raw input lines into entries.
func (s *Service) ParseAndValidate(text string) parser.Result {
	return parser.ParseAndValidate(text)
}

// ResolveAll resolves every entry concurrently; the batch always settles.
func (s *Service) ResolveAll(ctx context.Context, entries []*domain.SearchEntry) []*domain.SearchEntry {
	return s.resolver.ResolveAll(ctx, entries)
}

// Deduplicate merges entries that resolved to the same lead. Callers must
// run it only after ResolveAll has returned.
func (s *Service) Deduplicate(entries []*domain.SearchEntry) dedup.Result {
	return dedup.Deduplicate(entries)
}

// EvaluatePermissions annotates resolved entries with the actor's import
// permission.
func (s *Service) EvaluatePermissions(entries []*domain.SearchEntry, actor domain.Actor) []*domain.SearchEntry {
	return permission.EvaluateAll(entries, actor)
}

// EvaluatePermission decides a single entry, for callers re-checking one row.
func (s *Service) EvaluatePermission(entry *domain.SearchEntry, actor domain.Actor) domain.Permission {
	return permission.Evaluate(actor, entry.Lead)
}

// LookupLocal is the quick search: does a ten-digit phone already exist in
// the local store?
func (s *Service) LookupLocal(ctx context.Context, phone string) (*domain.Prospect, error) {
	return s.store.FindByPhone(ctx, phone)
}

// ImportSummary aggregates one import pass.
type ImportSummary struct {
	Results        []domain.ImportResult `json:"results"`
	SuccessRecords []*domain.Prospect    `json:"successRecords"`
	Succeeded      int                   `json:"succeeded"`
	Failed         int                   `json:"failed"`
	PendingPhone   []string              `json:"pendingPhone,omitempty"`
}

// ImportSelected imports every eligible entry concurrently and aggregates
// the outcomes. Entries that would be eligible but lack a contact number are
// reported as pending and skipped. Individual failures never abort the
// batch, and no automatic retry happens; the caller re-invokes for the
// failed subset.
//
// Duplicate leads are NOT guarded here: Deduplicate must have run first.
func (s *Service) ImportSelected(ctx context.Context, entries []*domain.SearchEntry, actor domain.Actor) (*ImportSummary, error) {
	summary := &ImportSummary{}

	var eligible []*domain.SearchEntry
	for _, entry := range entries {
		switch {
		case entry.EligibleForImport():
			eligible = append(eligible, entry)
		case entry.PendingPhone():
			summary.PendingPhone = append(summary.PendingPhone, entry.ID)
		}
	}

	// Single state update before any call launches, so consumers never see a
	// half-marked batch.
	for _, entry := range eligible {
		entry.Import = domain.ImportImporting
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(domain.MaxBatchEntries)
	for _, entry := range eligible {
		g.Go(func() error {
			s.importOne(gctx, entry, actor)
			return nil
		})
	}
	_ = g.Wait()

	var recordIDs []uuid.UUID
	for _, entry := range eligible {
		result := domain.ImportResult{EntryID: entry.ID}
		if entry.Import == domain.ImportSuccess {
			result.Success = true
			result.RecordID = entry.LocalRecordID
			summary.Succeeded++
			if id, err := uuid.Parse(entry.LocalRecordID); err == nil {
				recordIDs = append(recordIDs, id)
			}
		} else {
			result.Error = entry.ImportError
			summary.Failed++
		}
		summary.Results = append(summary.Results, result)
		s.log.ImportOutcome(leadIDOf(entry), result.Success, result.Error)
	}

	if len(recordIDs) > 0 {
		records, err := s.store.GetByIDs(ctx, recordIDs)
		if err != nil {
			// The imports themselves succeeded; report them even if the
			// fetch-back read failed.
			s.log.DatabaseError("prospects.get_by_ids", err)
		} else {
			summary.SuccessRecords = records
		}

		s.publishBatchImported(ctx, actor, summary, recordIDs)
		s.scheduleRechecks(ctx, eligible)
	}

	return summary, nil
}

func (s *Service) importOne(ctx context.Context, entry *domain.SearchEntry, actor domain.Actor) {
	outcome, err := s.importer.Import(ctx, buildPayload(entry, actor))
	if err != nil {
		s.failEntry(entry, err.Error())
		return
	}
	if !outcome.Success {
		s.failEntry(entry, outcome.Message)
		return
	}

	recordID := outcome.RecordID
	if recordID == "" {
		recordID = s.fetchBack(ctx, entry)
	}
	if recordID == "" {
		s.failEntry(entry, "importación aceptada pero el registro local no se encontró")
		return
	}

	entry.Import = domain.ImportSuccess
	entry.LocalRecordID = recordID
	entry.ImportError = ""
}

// fetchBack searches the local store for the record the import should have
// created, after a grace delay for the remote workflow to land the insert.
func (s *Service) fetchBack(ctx context.Context, entry *domain.SearchEntry) string {
	timer := time.NewTimer(s.fetchBackDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ""
	case <-timer.C:
	}

	match, err := s.store.FindByPhoneOrDynamicsID(ctx, entry.ContactNumber, leadIDOf(entry))
	if err != nil {
		return ""
	}
	return match.ID.String()
}

func (s *Service) failEntry(entry *domain.SearchEntry, detail string) {
	if detail == "" {
		detail = "error desconocido al importar"
	}
	entry.Import = domain.ImportFailed
	entry.ImportError = detail
}

func buildPayload(entry *domain.SearchEntry, actor domain.Actor) crm.ImportPayload {
	lead := entry.Lead
	return crm.ImportPayload{
		EjecutivoNombre: actor.Name,
		EjecutivoID:     actor.ID.String(),
		CoordinacionID:  actor.UnitID,
		FechaSolicitud:  time.Now().UTC().Format(time.RFC3339),
		LeadDynamics: map[string]any{
			"LeadID":             lead.LeadID,
			"Nombre":             lead.Name,
			"Email":              lead.Email,
			"EstadoCivil":        lead.MaritalStatus,
			"Ocupacion":          lead.Occupation,
			"Pais":               lead.Country,
			"EntidadFederativa":  lead.State,
			"Coordinacion":       lead.Unit,
			"CoordinacionID":     lead.UnitID,
			"Propietario":        lead.OwnerName,
			"OwnerID":            lead.OwnerID,
			"FechaUltimaLlamada": lead.LastCallDate,
			"Calificacion":       lead.Qualification,
		},
		Telefono:       entry.ContactNumber,
		NombreCompleto: lead.Name,
		IDDynamics:     lead.LeadID,
	}
}

func leadIDOf(entry *domain.SearchEntry) string {
	if entry.Lead == nil {
		return ""
	}
	return entry.Lead.LeadID
}

func (s *Service) publishBatchImported(ctx context.Context, actor domain.Actor, summary *ImportSummary, recordIDs []uuid.UUID) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(ctx, events.BatchImported{
		BaseEvent:  events.NewBaseEvent(),
		ActorID:    actor.ID,
		ActorName:  actor.Name,
		ActorEmail: actor.Email,
		Succeeded:  summary.Succeeded,
		Failed:     summary.Failed,
		RecordIDs:  recordIDs,
	})
}

func (s *Service) scheduleRechecks(ctx context.Context, eligible []*domain.SearchEntry) {
	if s.recheck == nil {
		return
	}
	runAt := time.Now().Add(s.recheckDelay)
	for _, entry := range eligible {
		if entry.Import != domain.ImportSuccess {
			continue
		}
		recordID, err := uuid.Parse(entry.LocalRecordID)
		if err != nil {
			continue
		}
		if err := s.recheck.ScheduleImportRecheck(ctx, recordID, leadIDOf(entry), runAt); err != nil {
			s.log.Warn("recheck scheduling failed", "record_id", entry.LocalRecordID, "error", err.Error())
		}
	}
}

// NotifyRequest drives one notification batch.
type NotifyRequest struct {
	RecordIDs  []uuid.UUID
	TemplateID uuid.UUID
	CustomDate string
	CustomTime string
}

// SendNotifications resolves the template per record and dispatches
// sequentially in the order of req.RecordIDs.
func (s *Service) SendNotifications(ctx context.Context, req NotifyRequest, actor domain.Actor) (notify.Result, error) {
	tmpl, err := s.templates.GetByID(ctx, req.TemplateID)
	if err != nil {
		if errors.Is(err, templates.ErrNotFound) {
			return notify.Result{}, apperr.NotFound("plantilla no encontrada")
		}
		return notify.Result{}, apperr.Wrap(apperr.KindInternal, "error al cargar la plantilla", err)
	}

	records, err := s.store.GetByIDs(ctx, req.RecordIDs)
	if err != nil {
		return notify.Result{}, apperr.Wrap(apperr.KindInternal, "error al cargar los prospectos", err)
	}

	// Delivery order is the request order; the store does not guarantee it.
	byID := make(map[uuid.UUID]*domain.Prospect, len(records))
	for _, record := range records {
		byID[record.ID] = record
	}
	ordered := make([]*domain.Prospect, 0, len(req.RecordIDs))
	for _, id := range req.RecordIDs {
		if record, ok := byID[id]; ok {
			ordered = append(ordered, record)
		}
	}

	opts := templates.ResolveOptions{
		Actor:      actor,
		Now:        time.Now(),
		CustomDate: req.CustomDate,
		CustomTime: req.CustomTime,
	}
	return s.notifier.SendAll(ctx, ordered, *tmpl, opts), nil
}

// ListTemplates returns stored templates, optionally filtered by tag.
func (s *Service) ListTemplates(ctx context.Context, tag string) ([]templates.Template, error) {
	list, err := s.templates.List(ctx, tag)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "error al listar plantillas", err)
	}
	return list, nil
}
