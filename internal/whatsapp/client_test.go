package whatsapp

import (
	"context"
	"errors"
	"testing"
	"time"

	"crm_portal_backend/platform/logger"
)

type stubConfig struct {
	url string
}

func (c stubConfig) GetWhatsAppURL() string         { return c.url }
func (c stubConfig) GetWhatsAppKey() string         { return "" }
func (c stubConfig) GetWhatsAppDeviceID() string    { return "" }
func (c stubConfig) GetSendInterval() time.Duration { return time.Second }

func TestNewClientWithoutGatewayURL(t *testing.T) {
	if c := NewClient(stubConfig{}, logger.New("development")); c != nil {
		t.Fatal("expected nil client without a gateway URL")
	}
}

// An unconfigured gateway must reject sends, never swallow them.
func TestSendMessageUnconfigured(t *testing.T) {
	var c *Client
	err := c.SendMessage(context.Background(), "5512345678", "hola")
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("err = %v, want ErrNotConfigured", err)
	}
}
