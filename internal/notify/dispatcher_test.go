package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"crm_portal_backend/internal/importer/domain"
	"crm_portal_backend/internal/templates"
	"crm_portal_backend/internal/whatsapp"
	"crm_portal_backend/platform/logger"

	"github.com/google/uuid"
)

type recordingSender struct {
	phones   []string
	messages []string
	failOn   map[string]error
}

func (s *recordingSender) SendMessage(ctx context.Context, phoneNumber, message string) error {
	if err, ok := s.failOn[phoneNumber]; ok {
		return err
	}
	s.phones = append(s.phones, phoneNumber)
	s.messages = append(s.messages, message)
	return nil
}

func prospect(name, phone string) *domain.Prospect {
	return &domain.Prospect{ID: uuid.New(), FullName: name, Phone: phone}
}

func newDispatcher(sender Sender) *Dispatcher {
	// Effectively no pacing in tests.
	return New(sender, time.Nanosecond, logger.New("development"))
}

func TestSendAllSequentialOrder(t *testing.T) {
	sender := &recordingSender{}
	d := newDispatcher(sender)

	records := []*domain.Prospect{
		prospect("Uno", "5500000001"),
		prospect("Dos", "5500000002"),
		prospect("Tres", "5500000003"),
	}
	tmpl := templates.Template{Body: "Hola {nombre}"}

	result := d.SendAll(context.Background(), records, tmpl, templates.ResolveOptions{})

	if result.Sent != 3 || result.Failed != 0 {
		t.Fatalf("sent=%d failed=%d, want 3/0", result.Sent, result.Failed)
	}
	want := []string{"5500000001", "5500000002", "5500000003"}
	for i, phone := range want {
		if sender.phones[i] != phone {
			t.Fatalf("delivery order broken: position %d got %s, want %s", i, sender.phones[i], phone)
		}
	}
	if sender.messages[0] != "Hola Uno" {
		t.Fatalf("template not resolved per record: %q", sender.messages[0])
	}
}

func TestSendAllFailureDoesNotStopBatch(t *testing.T) {
	sender := &recordingSender{failOn: map[string]error{
		"5500000002": errors.New("gateway caído"),
	}}
	d := newDispatcher(sender)

	records := []*domain.Prospect{
		prospect("Uno", "5500000001"),
		prospect("Dos", "5500000002"),
		prospect("Tres", "5500000003"),
	}

	result := d.SendAll(context.Background(), records, templates.Template{Body: "hola"}, templates.ResolveOptions{})

	if result.Sent != 2 || result.Failed != 1 {
		t.Fatalf("sent=%d failed=%d, want 2/1", result.Sent, result.Failed)
	}
	if len(sender.phones) != 2 || sender.phones[1] != "5500000003" {
		t.Fatalf("third record should still be sent after a failure: %v", sender.phones)
	}
	if len(result.Failures) != 1 {
		t.Fatalf("failures = %v", result.Failures)
	}
}

func TestSendAllSkipsRecordsWithoutPhone(t *testing.T) {
	sender := &recordingSender{}
	d := newDispatcher(sender)

	result := d.SendAll(context.Background(), []*domain.Prospect{prospect("SinTel", "")}, templates.Template{Body: "hola"}, templates.ResolveOptions{})

	if result.Sent != 0 || result.Failed != 1 {
		t.Fatalf("sent=%d failed=%d, want 0/1", result.Sent, result.Failed)
	}
	if len(sender.phones) != 0 {
		t.Fatal("no send should be attempted without a phone")
	}
}

// A dispatcher wired to an unconfigured gateway must report every message as
// failed rather than pretending it was delivered.
func TestSendAllUnconfiguredGatewayReportsFailures(t *testing.T) {
	var client *whatsapp.Client
	d := newDispatcher(client)

	records := []*domain.Prospect{
		prospect("Uno", "5500000001"),
		prospect("Dos", "5500000002"),
	}

	result := d.SendAll(context.Background(), records, templates.Template{Body: "hola"}, templates.ResolveOptions{})

	if result.Sent != 0 || result.Failed != 2 {
		t.Fatalf("sent=%d failed=%d, want 0/2", result.Sent, result.Failed)
	}
	if len(result.Failures) != 2 {
		t.Fatalf("failures = %v", result.Failures)
	}
}

func TestSendAllEmptyBatch(t *testing.T) {
	d := newDispatcher(&recordingSender{})
	result := d.SendAll(context.Background(), nil, templates.Template{Body: "hola"}, templates.ResolveOptions{})
	if result.Sent != 0 || result.Failed != 0 {
		t.Fatalf("empty batch should be a no-op, got %+v", result)
	}
}
