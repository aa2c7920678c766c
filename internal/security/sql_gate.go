package security

import "strings"

// SQLGate enforces the SELECT-prefix contract on generated statements. It is a
// shallow structural check, not a SQL parser: a statement that embeds side
// effects after valid-looking SELECT syntax passes. Documented accepted risk.
type SQLGate struct{}

func NewSQLGate() *SQLGate {
	return &SQLGate{}
}

// Validate returns an error string if sql is invalid, or empty string if OK
func (g *SQLGate) Validate(sql string) string {
	trimmed := strings.TrimSpace(sql)
	if trimmed == "" {
		return "SQL cannot be empty"
	}
	if !strings.HasPrefix(strings.ToUpper(trimmed), "SELECT") {
		return "Only SELECT queries allowed"
	}
	return ""
}
