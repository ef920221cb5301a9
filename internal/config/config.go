// Package config loads expertminer configuration from the environment.
package config

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// LLM provider identifiers.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderOllama    = "ollama"
	ProviderBedrock   = "bedrock"
	ProviderNone      = "" // keyword-fallback extraction, no LLM calls
)

// Config holds all configuration values.
type Config struct {
	// SurrealDB connection
	SurrealDBURL       string
	SurrealDBNamespace string
	SurrealDBDatabase  string
	SurrealDBUser      string
	SurrealDBPass      string
	SurrealDBAuthLevel string

	// LLM
	LLMProvider     string
	LLMModel        string // extraction pass (strong, multimodal)
	LLMFastModel    string // relevance pass (cheap)
	OpenAIAPIKey    string
	AnthropicAPIKey string
	OllamaHost      string

	// Remote browser service (login broker + scraper transport)
	BrowserServiceURL string
	BrowserServiceKey string

	// Session cookie encryption key, base64-encoded 32 bytes
	SessionKey string

	// Artifacts
	ArtifactDir string

	// Worker tuning
	LoginRetryDelay time.Duration
	MaxRunMinutes   int
	PollInterval    time.Duration

	// Logging
	LogFile  string
	LogLevel slog.Level
}

// Load reads configuration from environment variables.
func Load() Config {
	return Config{
		SurrealDBURL:       getEnv("SURREALDB_URL", "ws://localhost:8000/rpc"),
		SurrealDBNamespace: getEnv("SURREALDB_NAMESPACE", "expertminer"),
		SurrealDBDatabase:  getEnv("SURREALDB_DATABASE", "runs"),
		SurrealDBUser:      getEnv("SURREALDB_USER", "root"),
		SurrealDBPass:      getEnv("SURREALDB_PASS", "root"),
		SurrealDBAuthLevel: getEnv("SURREALDB_AUTH_LEVEL", "root"),

		LLMProvider:     getEnv("EXPERTMINER_LLM_PROVIDER", detectProvider()),
		LLMModel:        getEnv("EXPERTMINER_LLM_MODEL", "gpt-4o"),
		LLMFastModel:    getEnv("EXPERTMINER_LLM_FAST_MODEL", "gpt-4o-mini"),
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		OllamaHost:      getEnv("OLLAMA_HOST", "http://localhost:11434"),

		BrowserServiceURL: os.Getenv("EXPERTMINER_BROWSER_URL"),
		BrowserServiceKey: os.Getenv("EXPERTMINER_BROWSER_KEY"),

		SessionKey: os.Getenv("EXPERTMINER_SESSION_KEY"),

		ArtifactDir: getEnv("EXPERTMINER_ARTIFACT_DIR", "./artifacts"),

		LoginRetryDelay: getDuration("EXPERTMINER_LOGIN_RETRY_DELAY", 30*time.Second),
		MaxRunMinutes:   getInt("EXPERTMINER_MAX_RUN_MINUTES", 30),
		PollInterval:    getDuration("EXPERTMINER_POLL_INTERVAL", 2*time.Second),

		LogFile:  getEnv("EXPERTMINER_LOG_FILE", "/tmp/expertminer.log"),
		LogLevel: parseLogLevel(getEnv("EXPERTMINER_LOG_LEVEL", "INFO")),
	}
}

// ValidateWorker checks values the worker cannot run without.
// Called at process startup, before any job is dequeued.
func (c Config) ValidateWorker() error {
	if c.BrowserServiceURL == "" {
		return fmt.Errorf("EXPERTMINER_BROWSER_URL is required for the worker")
	}
	if c.SessionKey == "" {
		return fmt.Errorf("EXPERTMINER_SESSION_KEY is required for the worker")
	}
	key, err := base64.StdEncoding.DecodeString(c.SessionKey)
	if err != nil {
		return fmt.Errorf("EXPERTMINER_SESSION_KEY is not valid base64: %w", err)
	}
	if len(key) != 32 {
		return fmt.Errorf("EXPERTMINER_SESSION_KEY must decode to 32 bytes, got %d", len(key))
	}
	return nil
}

// SessionKeyBytes decodes the session encryption key.
func (c Config) SessionKeyBytes() ([]byte, error) {
	return base64.StdEncoding.DecodeString(c.SessionKey)
}

// HasLLMCredential reports whether an LLM provider is usable. Without one the
// analysis engine runs the deterministic keyword extractor instead.
func (c Config) HasLLMCredential() bool {
	switch c.LLMProvider {
	case ProviderOpenAI:
		return c.OpenAIAPIKey != ""
	case ProviderAnthropic:
		return c.AnthropicAPIKey != ""
	case ProviderOllama, ProviderBedrock:
		return true
	}
	return false
}

// detectProvider picks a provider from whichever credential is present.
func detectProvider() string {
	if os.Getenv("OPENAI_API_KEY") != "" {
		return ProviderOpenAI
	}
	if os.Getenv("ANTHROPIC_API_KEY") != "" {
		return ProviderAnthropic
	}
	return ProviderNone
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
