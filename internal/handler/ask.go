package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/shipquery/shipquery/internal/models"
	"github.com/shipquery/shipquery/internal/security"
	"github.com/shipquery/shipquery/internal/service"
)

// SQLGenerator produces a single SQL SELECT for a natural-language prompt.
type SQLGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// AskHandler handles POST /api/v1/ask: validate prompt, generate SQL, gate it,
// execute it, return {sql, rows}. Strictly linear per request, no state shared
// across invocations.
type AskHandler struct {
	gen        SQLGenerator
	exec       service.Executor
	promptGate *security.PromptGate
	sqlGate    *security.SQLGate
	audit      *security.AuditLogger
}

func NewAskHandler(
	gen SQLGenerator,
	exec service.Executor,
	promptGate *security.PromptGate,
	sqlGate *security.SQLGate,
	audit *security.AuditLogger,
) *AskHandler {
	return &AskHandler{
		gen:        gen,
		exec:       exec,
		promptGate: promptGate,
		sqlGate:    sqlGate,
		audit:      audit,
	}
}

// Ask handles POST /api/v1/ask
func (h *AskHandler) Ask(w http.ResponseWriter, r *http.Request) {
	apiKey := r.Header.Get("X-API-Key")
	start := time.Now()

	var req models.AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		models.WriteError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	prompt := strings.TrimSpace(req.Prompt)

	// Length gate runs before any network call.
	if vr := h.promptGate.Validate(prompt); !vr.Valid {
		h.audit.LogAsk(prompt, apiKey, "", http.StatusBadRequest, 0, 0, vr.Message)
		models.WriteError(w, http.StatusBadRequest, vr.Message)
		return
	}

	if h.gen == nil {
		models.WriteError(w, http.StatusServiceUnavailable, "generation service not configured")
		return
	}
	if h.exec == nil {
		models.WriteError(w, http.StatusServiceUnavailable, "execution service not configured")
		return
	}

	sql, err := h.gen.Generate(r.Context(), prompt)
	if err != nil {
		h.audit.LogAsk(prompt, apiKey, "", http.StatusBadGateway, elapsedMs(start), 0, err.Error())
		models.WriteError(w, http.StatusBadGateway, err.Error())
		return
	}

	if msg := h.sqlGate.Validate(sql); msg != "" {
		h.audit.LogAsk(prompt, apiKey, sql, http.StatusBadRequest, elapsedMs(start), 0, msg)
		models.WriteError(w, http.StatusBadRequest, msg)
		return
	}

	rows, err := h.exec.Execute(r.Context(), sql)
	if err != nil {
		var remote *service.RemoteError
		if errors.As(err, &remote) {
			// Database errors pass through verbatim, never reinterpreted.
			h.audit.LogAsk(prompt, apiKey, sql, remote.Status, elapsedMs(start), 0, string(remote.Body))
			models.WriteRaw(w, remote.Status, remote.Body)
			return
		}
		h.audit.LogAsk(prompt, apiKey, sql, http.StatusInternalServerError, elapsedMs(start), 0, err.Error())
		models.WriteError(w, http.StatusInternalServerError, "query execution failed: "+err.Error())
		return
	}
	if rows == nil {
		rows = []map[string]any{}
	}

	h.audit.LogAsk(prompt, apiKey, sql, http.StatusOK, elapsedMs(start), len(rows), "")
	models.WriteJSON(w, http.StatusOK, models.AskResponse{SQL: sql, Rows: rows})
}

func elapsedMs(start time.Time) int64 {
	return time.Since(start).Milliseconds()
}
