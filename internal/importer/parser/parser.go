// Package parser classifies raw user input lines into search entries.
// Each line is either a phone number or a CRM record URL; anything else is
// reported as a line-level error without producing an entry.
package parser

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"crm_portal_backend/internal/importer/domain"
	"crm_portal_backend/platform/phone"

	"github.com/google/uuid"
)

// guidPattern matches an 8-4-4-4-12 hex GUID anywhere in a string.
var guidPattern = regexp.MustCompile(`(?i)[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`)

// crmHostFragment marks a line as a CRM record URL.
const crmHostFragment = "dynamics.com"

// Result is the outcome of parsing one input batch.
type Result struct {
	Entries []*domain.SearchEntry `json:"entries"`
	Errors  []string              `json:"errors"`
}

// ParseAndValidate splits free-form text into search entries. At most
// domain.MaxBatchEntries non-blank lines are accepted; over-cap input yields
// zero entries and a single error naming the limit. Malformed lines produce
// line-level errors, never entries.
func ParseAndValidate(text string) Result {
	lines := nonBlankLines(text)

	if len(lines) > domain.MaxBatchEntries {
		return Result{
			Entries: []*domain.SearchEntry{},
			Errors: []string{fmt.Sprintf(
				"demasiadas líneas: %d recibidas, máximo %d por lote",
				len(lines), domain.MaxBatchEntries,
			)},
		}
	}

	result := Result{Entries: make([]*domain.SearchEntry, 0, len(lines))}

	for i, line := range lines {
		entry, err := parseLine(line)
		if err != "" {
			result.Errors = append(result.Errors, fmt.Sprintf("línea %d: %s", i+1, err))
			continue
		}
		result.Entries = append(result.Entries, entry)
	}

	return result
}

// parseLine classifies one trimmed, non-blank line. Returns the entry or an
// error message; never both.
func parseLine(line string) (*domain.SearchEntry, string) {
	if isCrmURL(line) {
		if guid := extractGUID(line); guid != "" {
			return newEntry(line, domain.KindCrmReference, guid, ""), ""
		}
		// URL without an extractable GUID falls through to the digit check.
	}

	if digits := phone.Last10(line); digits != "" {
		return newEntry(line, domain.KindPhoneNumber, digits, digits), ""
	}

	return nil, fmt.Sprintf("no se reconoce como teléfono ni como URL de CRM: %q", line)
}

func newEntry(raw string, kind domain.EntryKind, searchKey, contactNumber string) *domain.SearchEntry {
	return &domain.SearchEntry{
		ID:            uuid.NewString(),
		RawText:       raw,
		Kind:          kind,
		SearchKey:     searchKey,
		ContactNumber: contactNumber,
		Resolution:    domain.ResolutionPending,
		Import:        domain.ImportIdle,
	}
}

func isCrmURL(line string) bool {
	return strings.Contains(strings.ToLower(line), crmHostFragment)
}

// extractGUID returns the lowercased GUID carried in a query parameter of the
// URL, or the empty string. Any parameter position is accepted; the record id
// is usually but not always the first.
func extractGUID(line string) string {
	parsed, err := url.Parse(strings.TrimSpace(line))
	if err == nil {
		for _, values := range parsed.Query() {
			for _, value := range values {
				if match := guidPattern.FindString(value); match != "" {
					return strings.ToLower(match)
				}
			}
		}
	}

	// Malformed URLs still count when a GUID is visible anywhere in the line.
	if match := guidPattern.FindString(line); match != "" {
		return strings.ToLower(match)
	}
	return ""
}

func nonBlankLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return lines
}
