package util

import "strings"

// DedupeNonEmptyStrings returns a copy of values without blank strings or duplicates, preserving order.
// Values are trimmed before comparison.
func DedupeNonEmptyStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// WithoutString returns a copy of values with every occurrence of v removed.
func WithoutString(values []string, v string) []string {
	out := make([]string, 0, len(values))
	for _, candidate := range values {
		if candidate != v {
			out = append(out, candidate)
		}
	}
	return out
}
