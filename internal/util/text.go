package util

import "strings"

// SanitizeText removes bytes and control characters that Postgres text columns
// reject (especially NUL / 0x00 from some PDF extractors and API payloads).
func SanitizeText(s string) string {
	if s == "" {
		return s
	}
	// NUL bytes are not valid in PostgreSQL text.
	s = strings.ReplaceAll(s, "\x00", "")

	// Drop other non-printing controls except common whitespace.
	r := make([]rune, 0, len(s))
	for _, ch := range s {
		if ch == '\n' || ch == '\r' || ch == '\t' {
			r = append(r, ch)
			continue
		}
		if ch < 0x20 {
			continue
		}
		r = append(r, ch)
	}
	return strings.TrimSpace(string(r))
}

// ClearEmpty drops empty (after trimming) strings from a list and trims the
// rest. Returns nil when nothing is left, so callers can treat the result as
// a nullable column.
func ClearEmpty(vals []string) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// SplitTrimmed splits s on sep, trims the parts and drops empty ones.
// Bibliographic exports love semicolon-joined lists, hence the helper.
func SplitTrimmed(s, sep string) []string {
	if s == "" {
		return nil
	}
	return ClearEmpty(strings.Split(s, sep))
}
