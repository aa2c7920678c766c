package config

const (
	DefaultHost        = "0.0.0.0"
	DefaultPort        = 8000
	DefaultEnvironment = "development"
	DefaultAPIPrefix   = "/api/v1"
	DefaultLogLevel    = "info"

	DefaultRateLimitPerMinute = 60

	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com"

	// Oversized prompts are rejected as a cost control unless the user
	// explicitly asks for all rows or supplies a limit.
	DefaultMaxPromptLength = 160

	// Appended to generated statements that carry no LIMIT clause.
	DefaultRowLimit = 200

	DefaultPromptCacheTTL = 300 // seconds

	DefaultExecTimeout = 30 // seconds

	ExecutorRest     = "rest"
	ExecutorPostgres = "postgres"
)

// DefaultGeminiModels is iterated top-down: the primary model first, then the
// cheaper fallback that is tried when the primary reports quota exhaustion.
var DefaultGeminiModels = []string{
	"gemini-1.5-pro",
	"gemini-1.5-flash",
}

var DefaultCORSOrigins = []string{"*"}
