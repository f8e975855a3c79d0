package templates

import (
	"testing"
	"time"

	"crm_portal_backend/internal/importer/domain"
)

func TestLongDate(t *testing.T) {
	tests := []struct {
		date time.Time
		want string
	}{
		{time.Date(2026, time.April, 11, 0, 0, 0, 0, time.UTC), "11 de abril"},
		{time.Date(2026, time.January, 2, 0, 0, 0, 0, time.UTC), "2 de enero"},
		{time.Date(2026, time.December, 31, 0, 0, 0, 0, time.UTC), "31 de diciembre"},
	}
	for _, tt := range tests {
		if got := LongDate(tt.date); got != tt.want {
			t.Fatalf("LongDate(%v) = %q, want %q", tt.date, got, tt.want)
		}
	}
}

func TestShortTime(t *testing.T) {
	tests := []struct {
		hour, minute int
		want         string
	}{
		{16, 30, "4:30pm"},
		{0, 5, "12:05am"},
		{12, 0, "12:00pm"},
		{9, 45, "9:45am"},
	}
	for _, tt := range tests {
		tm := time.Date(2026, 1, 1, tt.hour, tt.minute, 0, 0, time.UTC)
		if got := ShortTime(tm); got != tt.want {
			t.Fatalf("ShortTime(%02d:%02d) = %q, want %q", tt.hour, tt.minute, got, tt.want)
		}
	}
}

func TestResolveSystemAndRecordVariables(t *testing.T) {
	record := &domain.Prospect{
		FullName: "Ana López",
		Phone:    "5512345678",
		Email:    "ana@example.com",
	}
	opts := ResolveOptions{
		Actor: domain.Actor{Name: "Carlos"},
		Now:   time.Date(2026, time.April, 11, 16, 30, 0, 0, time.UTC),
	}

	body := "Hola {nombre}, soy {ejecutivo_nombre}. Hoy es {fecha_actual} y son las {hora_actual}."
	got := Resolve(body, record, opts)
	want := "Hola Ana López, soy Carlos. Hoy es 11 de abril y son las 4:30pm."
	if got != want {
		t.Fatalf("Resolve = %q, want %q", got, want)
	}
}

func TestResolveCustomDateAndTime(t *testing.T) {
	opts := ResolveOptions{CustomDate: "15 de mayo", CustomTime: "10:00am"}
	got := Resolve("Cita el {fecha} a las {hora}", nil, opts)
	if got != "Cita el 15 de mayo a las 10:00am" {
		t.Fatalf("Resolve = %q", got)
	}
}

func TestUnresolvedVariableRendersPlaceholder(t *testing.T) {
	record := &domain.Prospect{FullName: "Ana"}
	got := Resolve("Hola {nombre}, tu {codigo_postal} está pendiente", record, ResolveOptions{})
	want := "Hola Ana, tu [Codigo postal] está pendiente"
	if got != want {
		t.Fatalf("Resolve = %q, want %q", got, want)
	}
}

func TestMissingRecordFieldRendersPlaceholder(t *testing.T) {
	record := &domain.Prospect{FullName: "Ana"} // no email
	got := Resolve("Correo: {email}", record, ResolveOptions{})
	if got != "Correo: [Email]" {
		t.Fatalf("Resolve = %q", got)
	}
}

func TestResolveLeavesPlainTextAlone(t *testing.T) {
	body := "Sin variables, con {llaves} y sin más"
	got := Resolve(body, nil, ResolveOptions{})
	if got != "Sin variables, con [Llaves] y sin más" {
		t.Fatalf("Resolve = %q", got)
	}
}
