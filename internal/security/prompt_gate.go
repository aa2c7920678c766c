package security

import (
	"fmt"
	"regexp"
	"strings"
)

// reLimitOverride matches an explicit "limit <number>" request in the prompt.
var reLimitOverride = regexp.MustCompile(`(?i)\blimit\s+\d+\b`)

// PromptGate rejects oversized prompts. This is a cost-control heuristic, not
// a correctness guarantee: a prompt that asks for all rows or supplies its own
// limit is let through regardless of length.
type PromptGate struct {
	maxLen int
}

func NewPromptGate(maxLen int) *PromptGate {
	return &PromptGate{maxLen: maxLen}
}

// ValidationResult contains validation outcome
type ValidationResult struct {
	Valid   bool
	Message string
}

// Validate checks a prompt against the length gate. Prompts of exactly maxLen
// characters pass; only strictly longer ones are rejected.
func (g *PromptGate) Validate(prompt string) ValidationResult {
	if strings.TrimSpace(prompt) == "" {
		return ValidationResult{Valid: false, Message: "prompt is required"}
	}
	if len(prompt) > g.maxLen && !g.hasOverride(prompt) {
		return ValidationResult{
			Valid:   false,
			Message: fmt.Sprintf("Prompt too long (> %d chars)", g.maxLen),
		}
	}
	return ValidationResult{Valid: true, Message: "ok"}
}

func (g *PromptGate) hasOverride(prompt string) bool {
	if strings.Contains(strings.ToLower(prompt), "all rows") {
		return true
	}
	return reLimitOverride.MatchString(prompt)
}
