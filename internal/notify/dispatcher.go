// Package notify dispatches templated messages to freshly imported
// prospects. Delivery is strictly sequential in input order; the gateway
// rate limits hosts aggressively, so ordering and pacing beat latency here.
package notify

import (
	"context"
	"time"

	"crm_portal_backend/internal/importer/domain"
	"crm_portal_backend/internal/templates"
	"crm_portal_backend/platform/logger"

	"golang.org/x/time/rate"
)

// Sender is the message gateway boundary.
type Sender interface {
	SendMessage(ctx context.Context, phoneNumber string, message string) error
}

// Result aggregates one dispatch batch.
type Result struct {
	Sent     int      `json:"sent"`
	Failed   int      `json:"failed"`
	Failures []string `json:"failures,omitempty"`
}

type Dispatcher struct {
	sender  Sender
	limiter *rate.Limiter
	log     *logger.Logger
}

// New creates a dispatcher pacing sends at one per interval.
func New(sender Sender, interval time.Duration, log *logger.Logger) *Dispatcher {
	if interval <= 0 {
		interval = time.Second
	}
	return &Dispatcher{
		sender:  sender,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
		log:     log,
	}
}

// SendAll resolves the template per record and dispatches one message each,
// in input order. A record's failure is counted and the batch continues.
func (d *Dispatcher) SendAll(ctx context.Context, records []*domain.Prospect, tmpl templates.Template, opts templates.ResolveOptions) Result {
	var result Result

	for _, record := range records {
		if record.Phone == "" {
			result.Failed++
			result.Failures = append(result.Failures, record.FullName+": sin número de teléfono")
			continue
		}

		if err := d.limiter.Wait(ctx); err != nil {
			// Context cancelled; the remaining records were never attempted.
			result.Failed++
			result.Failures = append(result.Failures, record.FullName+": "+err.Error())
			continue
		}

		message := templates.Resolve(tmpl.Body, record, opts)
		if err := d.sender.SendMessage(ctx, record.Phone, message); err != nil {
			result.Failed++
			result.Failures = append(result.Failures, record.FullName+": "+err.Error())
			d.log.Warn("notification failed", "prospect_id", record.ID, "error", err.Error())
			continue
		}

		result.Sent++
	}

	return result
}
