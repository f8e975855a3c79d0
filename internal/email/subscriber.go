package email

import (
	"context"
	"fmt"

	"crm_portal_backend/internal/events"
	"crm_portal_backend/internal/importer/domain"
	"crm_portal_backend/platform/logger"

	"github.com/google/uuid"
)

// RecordLister loads imported prospects for the summary body.
type RecordLister interface {
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Prospect, error)
}

// Subscriber mails the acting user a summary when an import batch finishes.
type Subscriber struct {
	sender  Sender
	records RecordLister
	log     *logger.Logger
}

func NewSubscriber(sender Sender, records RecordLister, log *logger.Logger) *Subscriber {
	return &Subscriber{sender: sender, records: records, log: log}
}

// RegisterHandlers subscribes to the importer events this module reacts to.
func (s *Subscriber) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.BatchImported{}.EventName(), events.HandlerFunc(s.onBatchImported))
}

func (s *Subscriber) onBatchImported(ctx context.Context, event events.Event) error {
	e, ok := event.(events.BatchImported)
	if !ok {
		return fmt.Errorf("unexpected event %s", event.EventName())
	}
	return s.handleBatchImported(ctx, e)
}

func (s *Subscriber) handleBatchImported(ctx context.Context, e events.BatchImported) error {
	if s.sender == nil || e.ActorEmail == "" {
		return nil
	}

	var records []*domain.Prospect
	if s.records != nil && len(e.RecordIDs) > 0 {
		loaded, err := s.records.GetByIDs(ctx, e.RecordIDs)
		if err != nil {
			s.log.Warn("import summary without record detail", "error", err)
		} else {
			records = loaded
		}
	}

	if err := s.sender.SendImportSummaryEmail(ctx, e.ActorEmail, e.ActorName, e.Succeeded, e.Failed, records); err != nil {
		return fmt.Errorf("send import summary: %w", err)
	}

	s.log.Info("import summary email sent", "to", e.ActorEmail, "succeeded", e.Succeeded, "failed", e.Failed)
	return nil
}
