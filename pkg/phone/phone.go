// Package phone normalizes Kenyan subscriber numbers to a single international form.
package phone

import (
	"strings"
	"unicode"
)

// DefaultCountryCode is the calling code used for local numbers with a leading zero.
const DefaultCountryCode = "254"

// Normalize strips whitespace, rewrites a leading 0 to +254 and makes sure the
// result starts with +. Empty input stays empty.
func Normalize(raw string) string {
	return NormalizeWithCode(raw, DefaultCountryCode)
}

// NormalizeWithCode is Normalize with an explicit calling code.
func NormalizeWithCode(raw, countryCode string) string {
	compact := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, raw)
	if compact == "" {
		return ""
	}
	if strings.HasPrefix(compact, "0") {
		compact = "+" + strings.TrimPrefix(countryCode, "+") + compact[1:]
	}
	if !strings.HasPrefix(compact, "+") {
		compact = "+" + compact
	}
	return compact
}

// Candidates returns the distinct raw and normalized forms of a number, raw first.
func Candidates(raw string) []string {
	return CandidatesWithCode(raw, DefaultCountryCode)
}

// CandidatesWithCode is Candidates with an explicit calling code.
func CandidatesWithCode(raw, countryCode string) []string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	normalized := NormalizeWithCode(trimmed, countryCode)
	if normalized == trimmed {
		return []string{trimmed}
	}
	return []string{trimmed, normalized}
}
