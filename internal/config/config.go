// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"PORT" envDefault:"8000"`

	// Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// Cache (Redis)
	RedisURL string `env:"REDIS_URL,required"`

	// Google Gemini API
	GoogleAPIKey   string `env:"GOOGLE_API_KEY,required"`
	EmbeddingModel string `env:"EMBEDDING_MODEL" envDefault:"embedding-001"`
	ChatModel      string `env:"CHAT_MODEL" envDefault:"gemini-2.5-flash"`

	// Outbound Gemini request rate (requests per second, 0 disables limiting)
	GeminiRPS int `env:"GEMINI_RPS" envDefault:"10"`

	// Document processing
	ChunkSize        int   `env:"CHUNK_SIZE" envDefault:"1000"`
	ChunkOverlap     int   `env:"CHUNK_OVERLAP" envDefault:"200"`
	MaxDocumentBytes int64 `env:"MAX_DOCUMENT_BYTES" envDefault:"52428800"`

	// Retrieval and answering
	RetrievalTopK     int `env:"RETRIEVAL_TOP_K" envDefault:"2"`
	QuestionBatchSize int `env:"QUESTION_BATCH_SIZE" envDefault:"50"`
	MaxQuestions      int `env:"MAX_QUESTIONS" envDefault:"200"`

	// In-memory index cache capacity (number of documents)
	IndexCacheSize int `env:"INDEX_CACHE_SIZE" envDefault:"32"`

	// Pre-warm document URL, ingested in the background at startup.
	// Empty disables pre-warming.
	PreWarmDocURL string `env:"PRE_WARM_DOC_URL" envDefault:""`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts. Answering a large question batch against a cold
	// document can legitimately take minutes.
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"5m"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Rate limiting
	RateLimitAPIEnabled bool `env:"RATE_LIMIT_API_ENABLED" envDefault:"true"`
	RateLimitIPEnabled  bool `env:"RATE_LIMIT_IP_ENABLED" envDefault:"true"`
	RateLimitIPRPS      int  `env:"RATE_LIMIT_IP_RPS" envDefault:"10"`
	RateLimitIPBurst    int  `env:"RATE_LIMIT_IP_BURST" envDefault:"20"`

	// CORS configuration
	// Comma-separated list of allowed origins (e.g., "https://example.com,https://app.example.com")
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:""`

	// Request body size limit in bytes (default 1MB)
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"1048576"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// GetCORSAllowedOrigins parses the comma-separated origins string into a slice.
func (c *Config) GetCORSAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}

	origins := strings.Split(c.CORSAllowedOrigins, ",")
	result := make([]string, 0, len(origins))

	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// Load parses environment variables and returns a Config.
// Returns an error if required variables are missing.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.ChunkOverlap >= cfg.ChunkSize {
		return nil, fmt.Errorf("CHUNK_OVERLAP (%d) must be smaller than CHUNK_SIZE (%d)", cfg.ChunkOverlap, cfg.ChunkSize)
	}
	return cfg, nil
}
