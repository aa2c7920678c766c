package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shipquery/shipquery/internal/config"
)

func testRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := &config.Config{
		Host:               "127.0.0.1",
		Port:               0,
		APIPrefix:          config.DefaultAPIPrefix,
		CORSOrigins:        config.DefaultCORSOrigins,
		RateLimitPerMinute: 100,
		GeminiBaseURL:      config.DefaultGeminiBaseURL,
		GeminiModels:       config.DefaultGeminiModels,
		MaxPromptLength:    config.DefaultMaxPromptLength,
		DefaultRowLimit:    config.DefaultRowLimit,
		ExecutorKind:       config.ExecutorRest,
		ExecTimeout:        config.DefaultExecTimeout,
	}
	s := &Server{cfg: cfg}
	router, _, err := s.setupRoutes()
	if err != nil {
		t.Fatalf("setupRoutes: %v", err)
	}
	return router
}

func TestOptionsReturns204(t *testing.T) {
	router := testRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Errorf("OPTIONS status = %d, want 204", rr.Code)
	}
	if rr.Body.Len() != 0 {
		t.Error("OPTIONS response must have no body")
	}
	if rr.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("CORS headers missing on preflight")
	}
}

func TestNonPostIsMethodNotAllowed(t *testing.T) {
	router := testRouter(t)

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		req := httptest.NewRequest(method, "/", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		if rr.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s / status = %d, want 405", method, rr.Code)
		}
		if rr.Header().Get("Access-Control-Allow-Origin") != "*" {
			t.Errorf("%s /: CORS headers must be present on error paths", method)
		}
	}
}

func TestEmptyBodyIsBadRequest(t *testing.T) {
	router := testRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for empty body", rr.Code)
	}
}

func TestHealthIsPublic(t *testing.T) {
	router := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	// Executor is disabled in this config, so health reports ok with checks.
	if rr.Code != http.StatusOK {
		t.Errorf("health status = %d, want 200", rr.Code)
	}
}
