package parser

import (
	"strings"
	"testing"

	"crm_portal_backend/internal/importer/domain"
)

const crmURL = "https://x.crm.dynamics.com/main.aspx?id=4bbfb4b9-7b2b-f011-8c4e-00224805f7a5"

func TestParsePhoneLine(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantKey string
	}{
		{"plain", "5512345678", "5512345678"},
		{"with country code", "+52 55 1234 5678", "5512345678"},
		{"formatted", "(55) 1234-5678", "5512345678"},
		{"extra digits keeps last ten", "0445512345678", "5512345678"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ParseAndValidate(tt.input)
			if len(result.Errors) != 0 {
				t.Fatalf("unexpected errors: %v", result.Errors)
			}
			if len(result.Entries) != 1 {
				t.Fatalf("expected 1 entry, got %d", len(result.Entries))
			}
			e := result.Entries[0]
			if e.Kind != domain.KindPhoneNumber {
				t.Fatalf("kind = %s, want phone_number", e.Kind)
			}
			if e.SearchKey != tt.wantKey {
				t.Fatalf("searchKey = %q, want %q", e.SearchKey, tt.wantKey)
			}
			if e.ContactNumber != tt.wantKey {
				t.Fatalf("contactNumber should be prefilled, got %q", e.ContactNumber)
			}
			if e.Resolution != domain.ResolutionPending {
				t.Fatalf("new entry resolution = %s, want pending", e.Resolution)
			}
		})
	}
}

func TestParseCrmURL(t *testing.T) {
	result := ParseAndValidate(crmURL)
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(result.Entries))
	}
	e := result.Entries[0]
	if e.Kind != domain.KindCrmReference {
		t.Fatalf("kind = %s, want crm_reference", e.Kind)
	}
	if e.SearchKey != "4bbfb4b9-7b2b-f011-8c4e-00224805f7a5" {
		t.Fatalf("searchKey = %q", e.SearchKey)
	}
	if e.ContactNumber != "" {
		t.Fatalf("crm entry should not prefill contact number, got %q", e.ContactNumber)
	}
}

func TestParseCrmURLUppercaseGUID(t *testing.T) {
	result := ParseAndValidate("https://org.crm.dynamics.com/main.aspx?pagetype=entityrecord&id=4BBFB4B9-7B2B-F011-8C4E-00224805F7A5")
	if len(result.Entries) != 1 {
		t.Fatalf("expected 1 entry, got %d (errors %v)", len(result.Entries), result.Errors)
	}
	if got := result.Entries[0].SearchKey; got != "4bbfb4b9-7b2b-f011-8c4e-00224805f7a5" {
		t.Fatalf("guid should be lowercased, got %q", got)
	}
}

func TestCrmURLWithoutGUIDFallsThroughToDigits(t *testing.T) {
	// Ten digits hiding in the URL path still make a phone entry.
	result := ParseAndValidate("https://x.crm.dynamics.com/call/5512345678")
	if len(result.Entries) != 1 {
		t.Fatalf("expected 1 entry, got %d (errors %v)", len(result.Entries), result.Errors)
	}
	if result.Entries[0].Kind != domain.KindPhoneNumber {
		t.Fatalf("kind = %s, want phone_number", result.Entries[0].Kind)
	}
}

func TestUnrecognizedLine(t *testing.T) {
	result := ParseAndValidate("hola mundo")
	if len(result.Entries) != 0 {
		t.Fatalf("expected no entries, got %d", len(result.Entries))
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected one error, got %v", result.Errors)
	}
}

func TestBatchCapRejectsEverything(t *testing.T) {
	input := strings.Repeat("5512345678\n", domain.MaxBatchEntries+1)
	result := ParseAndValidate(input)
	if len(result.Entries) != 0 {
		t.Fatalf("over-cap batch must yield zero entries, got %d", len(result.Entries))
	}
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "5") {
		t.Fatalf("expected a single error naming the limit, got %v", result.Errors)
	}
}

func TestBlankLinesAndMixedInput(t *testing.T) {
	input := "\n  5512345678  \n\n" + crmURL + "\nno-valido\n"
	result := ParseAndValidate(input)
	if len(result.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(result.Entries))
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected 1 error, got %v", result.Errors)
	}
	if result.Entries[0].ID == result.Entries[1].ID {
		t.Fatal("entry ids must be unique")
	}
}

func TestEmptyInput(t *testing.T) {
	result := ParseAndValidate("   \n\n ")
	if len(result.Entries) != 0 || len(result.Errors) != 0 {
		t.Fatalf("blank input should produce nothing, got %+v", result)
	}
}
