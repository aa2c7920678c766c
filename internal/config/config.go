package config

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Server
	Host        string `json:"host"`
	Port        int    `json:"port"`
	Environment string `json:"environment"`
	APIPrefix   string `json:"api_prefix"`
	LogLevel    string `json:"log_level"`

	// CORS
	CORSOrigins []string `json:"cors_origins"`

	// Auth
	APIKeyHeader string   `json:"api_key_header"`
	APIKeys      []string `json:"api_keys"`
	EnableAuth   bool     `json:"enable_auth"`

	// Rate Limiting
	RateLimitPerMinute int `json:"rate_limit_per_minute"`

	// Generation service (Gemini)
	GeminiAPIKey  string   `json:"gemini_api_key"`
	GeminiBaseURL string   `json:"gemini_base_url"`
	GeminiModels  []string `json:"gemini_models"` // ordered: primary first, cheaper fallback after
	ReferenceDate string   `json:"reference_date"`

	// Prompt / SQL gates
	MaxPromptLength int `json:"max_prompt_length"`
	DefaultRowLimit int `json:"default_row_limit"`

	// Generation result cache
	EnablePromptCache bool `json:"enable_prompt_cache"`
	PromptCacheTTL    int  `json:"prompt_cache_ttl_seconds"`

	// Execution service
	ExecutorKind string `json:"executor"` // "rest" | "postgres"
	ExecEndpoint string `json:"exec_endpoint"`
	ExecAPIKey   string `json:"exec_api_key"`
	ExecTimeout  int    `json:"exec_timeout_seconds"`
	PostgresDSN  string `json:"postgres_dsn"`

	// Audit
	EnableAuditLogging bool `json:"enable_audit_logging"`
}

func Load() (*Config, error) {
	cfg := &Config{
		Host:               DefaultHost,
		Port:               DefaultPort,
		Environment:        DefaultEnvironment,
		APIPrefix:          DefaultAPIPrefix,
		LogLevel:           DefaultLogLevel,
		CORSOrigins:        DefaultCORSOrigins,
		APIKeyHeader:       "X-API-Key",
		RateLimitPerMinute: DefaultRateLimitPerMinute,
		GeminiBaseURL:      DefaultGeminiBaseURL,
		GeminiModels:       DefaultGeminiModels,
		ReferenceDate:      time.Now().Format("2006-01-02"),
		MaxPromptLength:    DefaultMaxPromptLength,
		DefaultRowLimit:    DefaultRowLimit,
		EnablePromptCache:  true,
		PromptCacheTTL:     DefaultPromptCacheTTL,
		ExecutorKind:       ExecutorRest,
		ExecTimeout:        DefaultExecTimeout,
		EnableAuditLogging: true,
	}

	// Load from JSON config file if specified
	if path := getEnv("SHIPQUERY_CONFIG", ""); path != "" {
		if err := loadJSON(path, cfg); err != nil {
			return nil, err
		}
	}

	// Environment overrides
	applyEnvOverrides(cfg)

	return cfg, nil
}

func loadJSON(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, cfg)
}

func applyEnvOverrides(cfg *Config) {
	if v := getEnv("SHIPQUERY_HOST", ""); v != "" {
		cfg.Host = v
	}
	if v := getEnv("SHIPQUERY_PORT", ""); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Port = p
		}
	}
	if v := getEnv("SHIPQUERY_ENV", ""); v != "" {
		cfg.Environment = v
	}
	if v := getEnv("SHIPQUERY_LOG_LEVEL", ""); v != "" {
		cfg.LogLevel = v
	}
	if v := getEnv("SHIPQUERY_API_KEYS", ""); v != "" {
		cfg.APIKeys = strings.Split(v, ",")
	}
	if v := getEnv("SHIPQUERY_ENABLE_AUTH", ""); v != "" {
		cfg.EnableAuth = v == "true" || v == "1"
	}
	if v := getEnv("RATE_LIMIT_PER_MINUTE", ""); v != "" {
		if r, err := strconv.Atoi(v); err == nil {
			cfg.RateLimitPerMinute = r
		}
	}
	if v := getEnv("GEMINI_API_KEY", ""); v != "" {
		cfg.GeminiAPIKey = v
	}
	if v := getEnv("GEMINI_BASE_URL", ""); v != "" {
		cfg.GeminiBaseURL = v
	}
	if v := getEnv("GEMINI_MODELS", ""); v != "" {
		cfg.GeminiModels = strings.Split(v, ",")
	}
	if v := getEnv("SHIPQUERY_REFERENCE_DATE", ""); v != "" {
		cfg.ReferenceDate = v
	}
	if v := getEnv("SHIPQUERY_ENABLE_PROMPT_CACHE", ""); v != "" {
		cfg.EnablePromptCache = v == "true" || v == "1"
	}
	if v := getEnv("SHIPQUERY_EXECUTOR", ""); v != "" {
		cfg.ExecutorKind = v
	}
	if v := getEnv("SHIPQUERY_EXEC_ENDPOINT", ""); v != "" {
		cfg.ExecEndpoint = v
	}
	if v := getEnv("SHIPQUERY_EXEC_KEY", ""); v != "" {
		cfg.ExecAPIKey = v
	}
	if v := getEnv("SHIPQUERY_POSTGRES_DSN", ""); v != "" {
		cfg.PostgresDSN = v
	}
	if v := getEnv("SHIPQUERY_ENABLE_AUDIT", ""); v != "" {
		cfg.EnableAuditLogging = v == "true" || v == "1"
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}
