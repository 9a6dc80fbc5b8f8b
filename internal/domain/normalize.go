package domain

import "strings"

// NormalizeName trims leading/trailing whitespace and collapses internal whitespace runs.
// It is applied to list and item names before uniqueness checks.
func NormalizeName(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
