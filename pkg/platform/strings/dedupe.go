// Package strings provides string slice helpers.
package strings

import (
	"strings"
)

// DedupeAndTrim removes duplicates and blank entries, trimming each element.
// Order of first occurrence is preserved. The result is never nil, so callers
// can rely on it serializing as an empty JSON array.
//
// Example:
//
//	DedupeAndTrim([]string{"  Medical ", "Dental", "Medical", "", "  "})
//	// Returns: []string{"Medical", "Dental"}
func DedupeAndTrim(values []string) []string {
	result := make([]string, 0, len(values))
	if len(values) == 0 {
		return result
	}

	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		result = append(result, trimmed)
	}
	return result
}

// Clone returns a copy of values that never aliases the input and is never nil.
func Clone(values []string) []string {
	out := make([]string, len(values))
	copy(out, values)
	return out
}
