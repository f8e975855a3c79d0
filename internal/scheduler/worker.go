package scheduler

import (
	"context"
	"errors"
	"fmt"

	"crm_portal_backend/internal/crm"
	"crm_portal_backend/internal/events"
	"crm_portal_backend/internal/importer/reconcile"
	"crm_portal_backend/internal/importer/repository"
	"crm_portal_backend/platform/config"
	"crm_portal_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	repo   *repository.Repository
	crm    *crm.Client
	bus    events.Bus
	log    *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, pool *pgxpool.Pool, crmClient *crm.Client, bus events.Bus, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server: server,
		mux:    mux,
		repo:   repository.New(pool),
		crm:    crmClient,
		bus:    bus,
		log:    log,
	}

	mux.HandleFunc(TaskImportRecheck, w.handleImportRecheck)

	return w, nil
}

// handleImportRecheck re-reads an imported record and its CRM identity and
// publishes a discrepancy event when the two drifted apart. A lead that
// disappeared from the CRM is not retried.
func (w *Worker) handleImportRecheck(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseImportRecheckPayload(task)
	if err != nil {
		return err
	}

	recordID, err := uuid.Parse(payload.RecordID)
	if err != nil {
		return err
	}

	record, err := w.repo.GetByID(ctx, recordID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			w.log.Warn("import recheck skipped, record gone", "recordId", payload.RecordID)
			return nil
		}
		return err
	}

	lead, err := w.crm.LookupByLeadID(ctx, payload.LeadID)
	if err != nil {
		if errors.Is(err, crm.ErrNotFound) {
			w.log.Warn("import recheck skipped, lead gone from crm", "leadId", payload.LeadID)
			return nil
		}
		return err
	}

	diffs := reconcile.CompareLead(record, lead)
	if len(diffs) == 0 {
		return nil
	}

	fields := make([]string, 0, len(diffs))
	for _, d := range diffs {
		fields = append(fields, d.Field)
	}

	w.log.Warn("imported record drifted from crm",
		"recordId", record.ID,
		"leadId", payload.LeadID,
		"fields", fields,
	)

	if w.bus == nil {
		return nil
	}

	return w.bus.PublishSync(ctx, events.LeadDiscrepancyFound{
		BaseEvent: events.NewBaseEvent(),
		RecordID:  record.ID,
		LeadID:    payload.LeadID,
		Fields:    fields,
	})
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
