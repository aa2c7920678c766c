package generator_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shipquery/shipquery/internal/generator"
)

// fakeGemini records every generateContent call and replies per model.
type fakeGemini struct {
	mu      sync.Mutex
	calls   []call
	replies map[string]reply // keyed by model name
}

type call struct {
	model  string
	prompt string
	temp   float64
}

type reply struct {
	status int
	body   string
}

func textReply(text string) reply {
	b, _ := json.Marshal(map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": []map[string]string{{"text": text}}}},
		},
	})
	return reply{status: http.StatusOK, body: string(b)}
}

func errorReply(httpStatus, code int, msg string) reply {
	b, _ := json.Marshal(map[string]any{
		"error": map[string]any{"code": code, "message": msg},
	})
	return reply{status: httpStatus, body: string(b)}
}

func (f *fakeGemini) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Path: /v1/models/{model}:generateContent
		path := strings.TrimPrefix(r.URL.Path, "/v1/models/")
		model := strings.TrimSuffix(path, ":generateContent")

		var req struct {
			Contents []struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"contents"`
			GenerationConfig struct {
				Temperature float64 `json:"temperature"`
			} `json:"generationConfig"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		prompt := ""
		if len(req.Contents) > 0 && len(req.Contents[0].Parts) > 0 {
			prompt = req.Contents[0].Parts[0].Text
		}

		f.mu.Lock()
		f.calls = append(f.calls, call{model: model, prompt: prompt, temp: req.GenerationConfig.Temperature})
		rep, ok := f.replies[model]
		f.mu.Unlock()

		if !ok {
			http.Error(w, fmt.Sprintf("unexpected model %q", model), http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(rep.status)
		w.Write([]byte(rep.body))
	}
}

func newClient(t *testing.T, f *fakeGemini, cacheTTL time.Duration) *generator.Client {
	t.Helper()
	ts := httptest.NewServer(f.handler())
	t.Cleanup(ts.Close)
	return generator.NewClient(generator.Options{
		APIKey:        "test-key",
		BaseURL:       ts.URL,
		Models:        []string{"model-a", "model-b"},
		ReferenceDate: "2025-06-01",
		RowLimit:      200,
		CacheTTL:      cacheTTL,
	})
}

// ─── Success path ─────────────────────────────────────────────────────────────

func TestGenerateSuccess(t *testing.T) {
	f := &fakeGemini{replies: map[string]reply{
		"model-a": textReply("```sql\nSELECT * FROM shipments WHERE country ILIKE '%ca%';\n```"),
	}}
	c := newClient(t, f, 0)

	sql, err := c.Generate(context.Background(), "show me all shipments to Canada")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	want := "SELECT * FROM shipments WHERE country ILIKE '%ca%' LIMIT 200"
	if sql != want {
		t.Errorf("sql = %q, want %q", sql, want)
	}

	if len(f.calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(f.calls))
	}
	got := f.calls[0]
	if got.model != "model-a" {
		t.Errorf("model = %q, want model-a", got.model)
	}
	if got.temp != 0 {
		t.Errorf("temperature = %v, want 0", got.temp)
	}
	if !strings.Contains(got.prompt, "expert Postgres SQL generator") {
		t.Error("template header missing from prompt")
	}
	if !strings.Contains(got.prompt, "Today is 2025-06-01.") {
		t.Error("reference date missing from prompt")
	}
	if !strings.Contains(got.prompt, "User request: show me all shipments to Canada") {
		t.Error("user prompt missing from template")
	}
}

// ─── Quota fallback ───────────────────────────────────────────────────────────

func TestGenerateQuotaFallback(t *testing.T) {
	f := &fakeGemini{replies: map[string]reply{
		"model-a": errorReply(http.StatusTooManyRequests, 429, "quota exceeded"),
		"model-b": textReply("SELECT supplier FROM shipments LIMIT 5"),
	}}
	c := newClient(t, f, 0)

	sql, err := c.Generate(context.Background(), "top suppliers")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if sql != "SELECT supplier FROM shipments LIMIT 5" {
		t.Errorf("unexpected sql %q", sql)
	}

	if len(f.calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(f.calls))
	}
	if f.calls[0].model != "model-a" || f.calls[1].model != "model-b" {
		t.Errorf("fallback order wrong: %v", f.calls)
	}
	if f.calls[0].prompt != f.calls[1].prompt {
		t.Error("fallback must reuse the identical prompt template")
	}
}

func TestGenerateAllModelsOverQuota(t *testing.T) {
	f := &fakeGemini{replies: map[string]reply{
		"model-a": errorReply(http.StatusTooManyRequests, 429, "quota exceeded"),
		"model-b": errorReply(http.StatusTooManyRequests, 429, "quota exceeded"),
	}}
	c := newClient(t, f, 0)

	_, err := c.Generate(context.Background(), "top suppliers")
	if !errors.Is(err, generator.ErrQuotaExhausted) {
		t.Fatalf("expected ErrQuotaExhausted, got %v", err)
	}
	if len(f.calls) != 2 {
		t.Errorf("expected both models tried, got %d calls", len(f.calls))
	}
}

// ─── Hard errors ──────────────────────────────────────────────────────────────

func TestGenerateHardErrorFailsImmediately(t *testing.T) {
	f := &fakeGemini{replies: map[string]reply{
		"model-a": errorReply(http.StatusBadRequest, 400, "invalid API key"),
		"model-b": textReply("SELECT 1"),
	}}
	c := newClient(t, f, 0)

	_, err := c.Generate(context.Background(), "top suppliers")
	if err == nil || !strings.Contains(err.Error(), "invalid API key") {
		t.Fatalf("expected remote message propagated, got %v", err)
	}
	if len(f.calls) != 1 {
		t.Errorf("non-quota error must not trigger fallback, got %d calls", len(f.calls))
	}
}

func TestGenerateNoSQL(t *testing.T) {
	f := &fakeGemini{replies: map[string]reply{
		"model-a": textReply("I am unable to help with that."),
	}}
	c := newClient(t, f, 0)

	_, err := c.Generate(context.Background(), "tell me a joke about data")
	if !errors.Is(err, generator.ErrNoSQL) {
		t.Fatalf("expected ErrNoSQL, got %v", err)
	}
}

// ─── Cache ────────────────────────────────────────────────────────────────────

func TestGenerateCacheHit(t *testing.T) {
	f := &fakeGemini{replies: map[string]reply{
		"model-a": textReply("SELECT * FROM shipments LIMIT 10"),
	}}
	c := newClient(t, f, time.Minute)

	for i := 0; i < 3; i++ {
		if _, err := c.Generate(context.Background(), "recent shipments"); err != nil {
			t.Fatalf("Generate #%d: %v", i, err)
		}
	}
	if len(f.calls) != 1 {
		t.Errorf("cached prompt should hit upstream once, got %d calls", len(f.calls))
	}
}
