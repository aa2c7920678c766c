package security

import (
	"crypto/sha256"
	"fmt"

	"github.com/rs/zerolog/log"
)

// AuditLogger logs ask events with hashed identifiers so prompts and SQL never
// land in logs verbatim.
type AuditLogger struct {
	enabled bool
}

func NewAuditLogger(enabled bool) *AuditLogger {
	return &AuditLogger{enabled: enabled}
}

// LogAsk records one request through the prompt→SQL→execute pipeline.
func (a *AuditLogger) LogAsk(
	prompt, apiKey, generatedSQL string,
	status int,
	executionTimeMs int64,
	rowCount int,
	errMsg string,
) {
	if !a.enabled {
		return
	}
	sqlHash := ""
	if generatedSQL != "" {
		sqlHash = hashStr(generatedSQL)[:16]
	}

	evt := log.Info().
		Str("event", "ask_audit").
		Str("prompt_hash", hashStr(prompt)[:16]).
		Str("api_key_hash", hashStr(apiKey)[:16]).
		Str("sql_hash", sqlHash).
		Int("status", status).
		Int64("execution_time_ms", executionTimeMs).
		Int("row_count", rowCount)

	if errMsg != "" {
		evt = evt.Str("error", errMsg)
	}
	evt.Msg("audit")
}

func hashStr(s string) string {
	h := sha256.Sum256([]byte(s))
	return fmt.Sprintf("%x", h)
}
