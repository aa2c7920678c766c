// Package sqltext holds the pure text transforms between raw model output and
// a single executable SELECT statement. Kept free of network and handler code
// so the edge-case-sensitive pieces (terminator handling, LIMIT enforcement)
// stay independently testable.
package sqltext

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	// First case-insensitive SELECT span up to a statement terminator or end
	// of text. Anything after the first terminator is discarded.
	reSelect = regexp.MustCompile(`(?is)\bselect\b[^;]*`)

	reLimit = regexp.MustCompile(`(?i)\blimit\s+\d+\b`)

	reFence = regexp.MustCompile("(?i)```(?:sql)?")
)

// StripFences removes code-fence markup the model may wrap its answer in.
func StripFences(text string) string {
	return strings.TrimSpace(reFence.ReplaceAllString(text, ""))
}

// ExtractSelect locates the first SELECT statement in text. The returned
// statement is trimmed and carries no trailing terminator.
func ExtractSelect(text string) (string, bool) {
	m := reSelect.FindString(text)
	if m == "" {
		return "", false
	}
	return strings.TrimSpace(m), true
}

// HasLimit reports whether sql already contains a LIMIT clause.
func HasLimit(sql string) bool {
	return reLimit.MatchString(sql)
}

// WantsAllRows reports whether the user prompt explicitly asked for all rows,
// which disables automatic row limiting.
func WantsAllRows(prompt string) bool {
	return strings.Contains(strings.ToLower(prompt), "all rows")
}

// EnsureLimit appends a LIMIT clause unless the statement already has one or
// the prompt requested all rows. Idempotent: a limited statement is returned
// unchanged.
func EnsureLimit(sql, prompt string, limit int) string {
	if HasLimit(sql) || WantsAllRows(prompt) {
		return sql
	}
	return fmt.Sprintf("%s LIMIT %d", sql, limit)
}
