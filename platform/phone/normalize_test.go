package phone

import "testing"

func TestLast10(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain ten digits", "5512345678", "5512345678"},
		{"with country code", "+52 55 1234 5678", "5512345678"},
		{"formatted", "(55) 1234-5678", "5512345678"},
		{"too short", "12345", ""},
		{"empty", "", ""},
		{"letters only", "not a phone", ""},
		{"eleven digits keeps last ten", "15512345678", "5512345678"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Last10(tt.input); got != tt.want {
				t.Fatalf("Last10(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeE164FallsBackToInput(t *testing.T) {
	if got := NormalizeE164("garbage"); got != "garbage" {
		t.Fatalf("expected passthrough for unparseable input, got %q", got)
	}
	if got := NormalizeE164("  "); got != "" {
		t.Fatalf("expected empty output for blank input, got %q", got)
	}
}
