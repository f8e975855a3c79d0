// Package coordination canonicalizes free-text organizational-unit labels
// into the small fixed vocabulary used for permission comparison.
package coordination

import (
	"regexp"
	"strings"
)

// rule maps a label shape to its canonical code. Every pattern is anchored on
// both ends: only a known spelling variant of a unit maps to a code, never a
// label that merely starts with one. Rules are evaluated in order and the
// first match wins.
type rule struct {
	pattern *regexp.Regexp
	code    string
}

var rules = []rule{
	{regexp.MustCompile(`^COB\s*(ACA|ACAP|ACAPULCO)$`), "COBACA"},
	{regexp.MustCompile(`^COBACA$`), "COBACA"},
	{regexp.MustCompile(`^(APEX|I360)$`), "i360"},
	{regexp.MustCompile(`^MVP$`), "MVP"},
	{regexp.MustCompile(`^VEN(TAS)?$`), "VEN"},
	{regexp.MustCompile(`^BOOM$`), "BOOM"},
	{regexp.MustCompile(`^(TELE|TELEMARK|TELEMARKETING)$`), "TELEMARKETING"},
	{regexp.MustCompile(`^(CAMP|CAMPA|CAMPANA|CAMPAIGN)$`), "CAMPANA"},
	{regexp.MustCompile(`^CDMX(\s*(SUR|NORTE|CENTRO))?$`), "CDMX"},
	{regexp.MustCompile(`^(INB|INBOUND)$`), "INBOUND"},
	{regexp.MustCompile(`^(OUT|OUTBOUND)$`), "OUTBOUND"},
}

var whitespace = regexp.MustCompile(`\s+`)

// Normalize uppercases and collapses whitespace, then applies the rule table.
// Labels that match no rule pass through cleaned but otherwise unchanged, so
// a unit the table does not know still compares equal to itself. The function
// is deterministic and idempotent: every canonical code normalizes to itself.
func Normalize(label string) string {
	cleaned := clean(label)
	if cleaned == "" {
		return ""
	}

	for _, r := range rules {
		if r.pattern.MatchString(cleaned) {
			return r.code
		}
	}
	return cleaned
}

func clean(label string) string {
	return whitespace.ReplaceAllString(strings.ToUpper(strings.TrimSpace(label)), " ")
}
