package shared

import (
	"regexp"
	"strings"
	"unicode"
)

// Injection patterns checked by DetectInjection. Matching input is not
// rejected outright; it is flagged so the caller can audit it.
var injectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)ignore\s+(all\s+)?(previous|prior|above)\s+instructions`),
	regexp.MustCompile(`(?i)you\s+are\s+now\s+`),
	regexp.MustCompile(`(?i)system\s*prompt`),
	regexp.MustCompile(`(?i)<\s*script[^>]*>`),
	regexp.MustCompile(`(?i)javascript\s*:`),
	regexp.MustCompile(`(?i)on(load|error|click|mouseover)\s*=`),
	regexp.MustCompile(`(?i)(union\s+select|drop\s+table|insert\s+into|delete\s+from)\b`),
	regexp.MustCompile(`(?i)('|")\s*(or|and)\s+('|")?\d+('|")?\s*=\s*('|")?\d+`),
	regexp.MustCompile("(?i)--\\s*$|;\\s*--"),
}

var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

// SanitizeString strips control characters, trims whitespace and bounds
// the length of the input. maxLen <= 0 means no length bound.
func SanitizeString(s string, maxLen int) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '\n' || r == '\t' {
			b.WriteRune(' ')
			continue
		}
		if unicode.IsControl(r) {
			continue
		}
		b.WriteRune(r)
	}
	out := strings.TrimSpace(b.String())
	if maxLen > 0 && len(out) > maxLen {
		runes := []rune(out)
		if len(runes) > maxLen {
			out = strings.TrimSpace(string(runes[:maxLen]))
		}
	}
	return out
}

// FieldSpec describes how a single map field is sanitized
type FieldSpec struct {
	MaxLen   int
	Required bool
}

// SanitizeMap applies per-field sanitization to the string values of m
// according to schema. Unknown fields are dropped. A missing required
// field yields an INVALID_INPUT error.
func SanitizeMap(m map[string]string, schema map[string]FieldSpec) (map[string]string, error) {
	out := make(map[string]string, len(schema))
	for field, spec := range schema {
		value, ok := m[field]
		if !ok || strings.TrimSpace(value) == "" {
			if spec.Required {
				return nil, NewDomainError("INVALID_INPUT", "Champ requis manquant: "+field)
			}
			continue
		}
		out[field] = SanitizeString(value, spec.MaxLen)
	}
	return out, nil
}

// DetectInjection reports whether s contains patterns commonly used for
// prompt injection or SQL/HTML injection. The input is still processed by
// callers; a true result marks it for audit.
func DetectInjection(s string) bool {
	for _, p := range injectionPatterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}

// StripHTML removes any markup tags from s
func StripHTML(s string) string {
	return htmlTagPattern.ReplaceAllString(s, "")
}
