package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/shipquery/shipquery/internal/config"
	"github.com/shipquery/shipquery/internal/generator"
	"github.com/shipquery/shipquery/internal/handler"
	"github.com/shipquery/shipquery/internal/middleware"
	"github.com/shipquery/shipquery/internal/models"
	"github.com/shipquery/shipquery/internal/security"
	"github.com/shipquery/shipquery/internal/service"
)

// setupRoutes returns (router, pgSvc, error) so the pgx pool can be closed on
// shutdown when the postgres executor is selected.
func (s *Server) setupRoutes() (http.Handler, *service.PostgresExecutor, error) {
	cfg := s.cfg
	ctx := context.Background()

	// ─── Executor ────────────────────────────────────────────────────────────────
	var exec service.Executor
	var pgSvc *service.PostgresExecutor

	switch cfg.ExecutorKind {
	case config.ExecutorPostgres:
		if cfg.PostgresDSN == "" {
			log.Warn().Msg("SHIPQUERY_POSTGRES_DSN not set - execution disabled")
		} else {
			var pgErr error
			pgSvc, pgErr = service.NewPostgresExecutor(ctx, cfg.PostgresDSN)
			if pgErr != nil {
				log.Warn().Err(pgErr).Msg("postgres executor unavailable")
			} else {
				exec = pgSvc
			}
		}
	default:
		if cfg.ExecEndpoint == "" {
			log.Warn().Msg("SHIPQUERY_EXEC_ENDPOINT not set - execution disabled")
		} else {
			exec = service.NewRestExecutor(cfg.ExecEndpoint, cfg.ExecAPIKey, time.Duration(cfg.ExecTimeout)*time.Second)
		}
	}

	// ─── Generator ───────────────────────────────────────────────────────────────
	var gen handler.SQLGenerator
	if cfg.GeminiAPIKey != "" {
		cacheTTL := time.Duration(0)
		if cfg.EnablePromptCache {
			cacheTTL = time.Duration(cfg.PromptCacheTTL) * time.Second
		}
		gen = generator.NewClient(generator.Options{
			APIKey:        cfg.GeminiAPIKey,
			BaseURL:       cfg.GeminiBaseURL,
			Models:        cfg.GeminiModels,
			ReferenceDate: cfg.ReferenceDate,
			RowLimit:      cfg.DefaultRowLimit,
			CacheTTL:      cacheTTL,
		})
	} else {
		log.Warn().Msg("GEMINI_API_KEY not set - generation disabled")
	}

	log.Info().
		Bool("generator_enabled", gen != nil).
		Bool("executor_enabled", exec != nil).
		Str("executor", cfg.ExecutorKind).
		Strs("models", cfg.GeminiModels).
		Bool("auth_enabled", cfg.EnableAuth && len(cfg.APIKeys) > 0).
		Bool("prompt_cache", cfg.EnablePromptCache).
		Bool("audit_logging", cfg.EnableAuditLogging).
		Msg("service configuration")

	// ─── Gates ───────────────────────────────────────────────────────────────────
	promptGate := security.NewPromptGate(cfg.MaxPromptLength)
	sqlGate := security.NewSQLGate()
	auditLogger := security.NewAuditLogger(cfg.EnableAuditLogging)

	// ─── Handlers ────────────────────────────────────────────────────────────────
	healthH := handler.NewHealthHandler(exec, gen != nil)
	askH := handler.NewAskHandler(gen, exec, promptGate, sqlGate, auditLogger)

	// ─── Router ──────────────────────────────────────────────────────────────────
	r := chi.NewRouter()

	r.Use(middleware.Recovery)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.CORSOrigins)))
	r.Use(chiMiddleware.RealIP)

	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		models.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		models.WriteError(w, http.StatusNotFound, "not found")
	})

	// Public routes
	r.Get("/health", healthH.Health)

	// Auth + rate limiting for the ask surface
	apiMiddleware := []func(http.Handler) http.Handler{
		middleware.RateLimit(cfg.RateLimitPerMinute),
	}
	if cfg.EnableAuth && len(cfg.APIKeys) > 0 {
		apiMiddleware = append(apiMiddleware, middleware.Auth(cfg.APIKeys, cfg.APIKeyHeader))
	}

	r.Group(func(r chi.Router) {
		for _, m := range apiMiddleware {
			r.Use(m)
		}

		// Root alias preserves the original single-endpoint deployment contract.
		r.Post("/", askH.Ask)
		r.Route(cfg.APIPrefix, func(r chi.Router) {
			r.Post("/ask", askH.Ask)
		})
	})

	return r, pgSvc, nil
}
