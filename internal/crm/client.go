// Package crm implements the HTTP client for the external CRM: lead lookup
// by record id or phone, and the contact import endpoint. Both endpoints sit
// behind a workflow engine, so responses are loosely shaped; this client
// normalizes them into domain types.
package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"crm_portal_backend/internal/importer/domain"
	"crm_portal_backend/platform/config"
	"crm_portal_backend/platform/logger"
)

// ErrNotFound is returned when the lookup succeeds but carries no record.
var ErrNotFound = errors.New("lead not found")

type Client struct {
	lookupURL string
	importURL string
	authToken string
	http      *http.Client
	log       *logger.Logger
}

// NewClient builds the CRM client. Phone lookups routinely take tens of
// seconds on the remote side, hence the long default timeout from config.
func NewClient(cfg config.CRMConfig, log *logger.Logger) *Client {
	timeout := cfg.GetCRMLookupTimeout()
	if timeout <= 0 {
		timeout = 90 * time.Second
	}

	return &Client{
		lookupURL: strings.TrimRight(cfg.GetCRMLookupURL(), "/"),
		importURL: strings.TrimRight(cfg.GetCRMImportURL(), "/"),
		authToken: cfg.GetCRMAuthToken(),
		http:      &http.Client{Timeout: timeout},
		log:       log,
	}
}

// lookupRequest is the wire shape of a lookup. Exactly one of the two fields
// is set.
type lookupRequest struct {
	LeadID string `json:"lead_id,omitempty"`
	Phone  string `json:"telefono,omitempty"`
}

// lookupEnvelope is the remote response contract: {success, data?, error?}.
// data may be a single record or an array of records.
type lookupEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// leadRecord mirrors the remote field names. The id may arrive as LeadID or
// ID_Dynamics depending on which workflow answered; phone-shaped fields vary
// by record origin and are probed in order.
type leadRecord struct {
	LeadID         string     `json:"LeadID"`
	IDDynamics     string     `json:"ID_Dynamics"`
	Nombre         string     `json:"Nombre"`
	Email          string     `json:"Email"`
	EstadoCivil    string     `json:"EstadoCivil"`
	Ocupacion      string     `json:"Ocupacion"`
	Pais           string     `json:"Pais"`
	Entidad        string     `json:"EntidadFederativa"`
	Coordinacion   string     `json:"Coordinacion"`
	CoordinacionID string     `json:"CoordinacionID"`
	Propietario    string     `json:"Propietario"`
	OwnerID        string     `json:"OwnerID"`
	UltimaLlamada  string     `json:"FechaUltimaLlamada"`
	Calificacion   flexString `json:"Calificacion"`
	Telefono       flexString `json:"Telefono"`
	Phone          flexString `json:"Phone"`
	MobilePhone    flexString `json:"MobilePhone"`
	Celular        flexString `json:"Celular"`
}

// flexString tolerates remote fields that arrive as string or number.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// LookupByLeadID fetches a lead by its CRM record GUID.
func (c *Client) LookupByLeadID(ctx context.Context, leadID string) (*domain.LeadIdentity, error) {
	return c.lookup(ctx, lookupRequest{LeadID: strings.ToLower(leadID)})
}

// LookupByPhone fetches a lead by its ten-digit phone number.
func (c *Client) LookupByPhone(ctx context.Context, phone string) (*domain.LeadIdentity, error) {
	return c.lookup(ctx, lookupRequest{Phone: phone})
}

func (c *Client) lookup(ctx context.Context, payload lookupRequest) (*domain.LeadIdentity, error) {
	var envelope lookupEnvelope
	if err := c.post(ctx, c.lookupURL, payload, &envelope); err != nil {
		return nil, err
	}

	if !envelope.Success {
		if envelope.Error != "" {
			return nil, fmt.Errorf("crm lookup: %s", envelope.Error)
		}
		return nil, ErrNotFound
	}

	record, ok := firstRecord(envelope.Data)
	if !ok {
		return nil, ErrNotFound
	}

	return record.toIdentity(), nil
}

// firstRecord decodes the data payload, which may be one record or an array.
func firstRecord(data json.RawMessage) (*leadRecord, bool) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return nil, false
	}

	if trimmed[0] == '[' {
		var records []leadRecord
		if err := json.Unmarshal(trimmed, &records); err != nil || len(records) == 0 {
			return nil, false
		}
		return &records[0], true
	}

	var record leadRecord
	if err := json.Unmarshal(trimmed, &record); err != nil {
		return nil, false
	}
	if record.LeadID == "" && record.IDDynamics == "" {
		return nil, false
	}
	return &record, true
}

func (r *leadRecord) toIdentity() *domain.LeadIdentity {
	leadID := r.LeadID
	if leadID == "" {
		leadID = r.IDDynamics
	}

	return &domain.LeadIdentity{
		LeadID:        strings.ToLower(strings.TrimSpace(leadID)),
		Name:          r.Nombre,
		Email:         r.Email,
		MaritalStatus: r.EstadoCivil,
		Occupation:    r.Ocupacion,
		Country:       r.Pais,
		State:         r.Entidad,
		Unit:          r.Coordinacion,
		UnitID:        r.CoordinacionID,
		OwnerName:     r.Propietario,
		OwnerID:       r.OwnerID,
		LastCallDate:  r.UltimaLlamada,
		Qualification: string(r.Calificacion),
		Phone:         r.probePhone(),
	}
}

// probePhone returns the first non-empty phone-shaped field. The field list
// tracks the remote schema's current spelling variants and is not exhaustive.
func (r *leadRecord) probePhone() string {
	for _, candidate := range []flexString{r.Telefono, r.Phone, r.MobilePhone, r.Celular} {
		if candidate != "" {
			return string(candidate)
		}
	}
	return ""
}

// =============================================================================
// Import endpoint
// =============================================================================

// ImportPayload is the contact import request. Field names follow the remote
// workflow contract.
type ImportPayload struct {
	EjecutivoNombre string         `json:"ejecutivo_nombre"`
	EjecutivoID     string         `json:"ejecutivo_id"`
	CoordinacionID  string         `json:"coordinacion_id"`
	FechaSolicitud  string         `json:"fecha_solicitud"`
	LeadDynamics    map[string]any `json:"lead_dynamics"`
	Telefono        string         `json:"telefono"`
	NombreCompleto  string         `json:"nombre_completo"`
	IDDynamics      string         `json:"id_dynamics"`
}

// ImportOutcome is the normalized import response.
type ImportOutcome struct {
	Success  bool
	RecordID string
	IsNew    bool
	Message  string
}

// importResponse is one element of the remote response, which arrives as an
// object or a single-element array.
type importResponse struct {
	Success     bool   `json:"success"`
	ProspectoID string `json:"prospecto_id"`
	EsNuevo     bool   `json:"es_nuevo"`
	Message     string `json:"message"`
	Data        struct {
		ID string `json:"id"`
	} `json:"data"`
}

// Import submits one contact to the import endpoint. A response without a
// record id is still a success; the caller falls back to a local search.
func (c *Client) Import(ctx context.Context, payload ImportPayload) (ImportOutcome, error) {
	var raw json.RawMessage
	if err := c.post(ctx, c.importURL, payload, &raw); err != nil {
		return ImportOutcome{}, err
	}

	trimmed := bytes.TrimSpace(raw)
	var first importResponse
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var list []importResponse
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return ImportOutcome{}, fmt.Errorf("crm import: decode response: %w", err)
		}
		if len(list) == 0 {
			return ImportOutcome{}, fmt.Errorf("crm import: empty response")
		}
		first = list[0]
	} else if err := json.Unmarshal(trimmed, &first); err != nil {
		return ImportOutcome{}, fmt.Errorf("crm import: decode response: %w", err)
	}

	if !first.Success {
		message := first.Message
		if message == "" {
			message = "el servicio de importación reportó un error"
		}
		return ImportOutcome{Success: false, Message: message}, nil
	}

	recordID := first.ProspectoID
	if recordID == "" {
		recordID = first.Data.ID
	}

	return ImportOutcome{
		Success:  true,
		RecordID: recordID,
		IsNew:    first.EsNuevo,
		Message:  first.Message,
	}, nil
}

func (c *Client) post(ctx context.Context, url string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal crm payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.authToken != "" {
		req.Header.Set("Authorization", formatAuthHeader(c.authToken))
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("crm request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("crm returned %s: %s", strconv.Itoa(resp.StatusCode), strings.TrimSpace(string(data)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode crm response: %w", err)
	}
	return nil
}

func formatAuthHeader(token string) string {
	lower := strings.ToLower(token)
	if strings.HasPrefix(lower, "bearer ") || strings.HasPrefix(lower, "basic ") {
		return token
	}
	return "Bearer " + token
}
