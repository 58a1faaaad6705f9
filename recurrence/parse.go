package recurrence

import "strings"

// Normalize strips an optional leading "RRULE:" prefix and surrounding
// whitespace from a stored rule string.
func Normalize(rrule string) string {
	value := strings.TrimSpace(rrule)
	if len(value) >= 6 && strings.EqualFold(value[:6], "RRULE:") {
		value = value[6:]
	}
	return strings.TrimSpace(value)
}

// ParseParts splits a rule string into its KEY=[values...] parts. Parsing
// is deliberately lenient and never fails: malformed or empty segments are
// dropped, unrecognized keys are preserved untouched. This backs
// best-effort descriptions of rules that may originate outside this
// engine, so unparseable fragments must degrade, not error.
func ParseParts(rrule string) map[string][]string {
	parts := make(map[string][]string)

	normalized := Normalize(rrule)
	if normalized == "" {
		return parts
	}

	for _, chunk := range strings.Split(normalized, ";") {
		key, rawValues, ok := strings.Cut(chunk, "=")
		if !ok {
			continue
		}
		key = strings.ToUpper(strings.TrimSpace(key))
		if key == "" {
			continue
		}

		var values []string
		for _, v := range strings.Split(rawValues, ",") {
			if v = strings.TrimSpace(v); v != "" {
				values = append(values, v)
			}
		}
		if len(values) == 0 {
			continue
		}
		parts[key] = values
	}

	return parts
}
