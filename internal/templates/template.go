// Package templates provides message template storage and variable
// resolution for outgoing notifications.
package templates

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"crm_portal_backend/internal/importer/domain"

	"github.com/google/uuid"
)

// Template is a stored message template. Body text carries {variable}
// placeholders resolved per recipient at send time.
type Template struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Tag       string    `json:"tag,omitempty"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

var variablePattern = regexp.MustCompile(`\{([a-zA-Z_][a-zA-Z0-9_]*)\}`)

var monthNames = []string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// ResolveOptions carries the caller-side context for system variables.
type ResolveOptions struct {
	Actor domain.Actor
	Now   time.Time
	// CustomDate and CustomTime back the {fecha} and {hora} variables when a
	// template schedules something other than "now".
	CustomDate string
	CustomTime string
}

// Resolve substitutes every {variable} in the template body. System
// variables come from the options, record variables from the prospect's own
// fields. A variable that resolves to nothing renders as a visible
// [Variable] placeholder instead of failing the send.
func Resolve(body string, record *domain.Prospect, opts ResolveOptions) string {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	return variablePattern.ReplaceAllStringFunc(body, func(match string) string {
		name := strings.ToLower(match[1 : len(match)-1])

		if value := systemVariable(name, opts, now); value != "" {
			return value
		}
		if value := recordVariable(name, record); value != "" {
			return value
		}
		return placeholder(name)
	})
}

func systemVariable(name string, opts ResolveOptions, now time.Time) string {
	switch name {
	case "fecha_actual":
		return LongDate(now)
	case "hora_actual":
		return ShortTime(now)
	case "ejecutivo_nombre":
		return opts.Actor.Name
	case "fecha":
		return opts.CustomDate
	case "hora":
		return opts.CustomTime
	}
	return ""
}

func recordVariable(name string, record *domain.Prospect) string {
	if record == nil {
		return ""
	}
	switch name {
	case "nombre", "nombre_completo":
		return record.FullName
	case "telefono", "whatsapp":
		return record.Phone
	case "email":
		return record.Email
	case "etapa":
		return record.Stage
	case "origen":
		return record.Source
	case "ejecutivo":
		return record.ExecutiveName
	}
	return ""
}

// placeholder renders an unresolved variable visibly, e.g. [Nombre].
func placeholder(name string) string {
	cleaned := strings.ReplaceAll(name, "_", " ")
	if cleaned == "" {
		return "[]"
	}
	return "[" + strings.ToUpper(cleaned[:1]) + cleaned[1:] + "]"
}

// LongDate formats a date the way notifications spell it: "11 de abril".
func LongDate(t time.Time) string {
	return fmt.Sprintf("%d de %s", t.Day(), monthNames[t.Month()-1])
}

// ShortTime formats a time as 12-hour lowercase, e.g. "4:30pm".
func ShortTime(t time.Time) string {
	hour := t.Hour() % 12
	if hour == 0 {
		hour = 12
	}
	suffix := "am"
	if t.Hour() >= 12 {
		suffix = "pm"
	}
	return fmt.Sprintf("%d:%02d%s", hour, t.Minute(), suffix)
}
