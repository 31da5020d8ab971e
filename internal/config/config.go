package config

import (
	"errors"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// DevSessionSecret is the SESSION_SECRET default. It is refused in production.
const DevSessionSecret = "facturaja-dev-secret-change-me"

// Config holds all application configuration.
// Values are loaded from environment variables with sensible defaults.
type Config struct {
	// Server
	Port           int           `envconfig:"PORT" default:"8080"`
	LogLevel       string        `envconfig:"LOG_LEVEL" default:"info"`
	Environment    string        `envconfig:"APP_ENV" default:"development"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"30s"`

	// Billing backend (Laravel API, also fronts the identity provider)
	BackendURL string `envconfig:"BACKEND_URL" default:"http://localhost:8000"`

	// HTTP client
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"10s"`

	// Resilience
	MaxRetries     int           `envconfig:"MAX_RETRIES" default:"3"`
	InitialBackoff time.Duration `envconfig:"INITIAL_BACKOFF" default:"100ms"`
	MaxConcurrency int           `envconfig:"MAX_CONCURRENCY" default:"50"`

	// Per-session list views
	CacheTTL time.Duration `envconfig:"CACHE_TTL" default:"5m"`

	// Observability. Empty endpoint keeps spans in-process.
	OTLPEndpoint string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`

	// Sessions
	SessionSecret string        `envconfig:"SESSION_SECRET" default:"facturaja-dev-secret-change-me"`
	SessionTTL    time.Duration `envconfig:"SESSION_TTL" default:"12h"`
	RedisAddr     string        `envconfig:"REDIS_ADDR"`

	// HTTP surface
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:5173"`
	AuthRateLimit  int      `envconfig:"AUTH_RATE_LIMIT" default:"10"`

	// DemoMode serves placeholder data to every request, session or not.
	DemoMode bool `envconfig:"DEMO_MODE" default:"false"`

	// Tables
	DefaultPageSize int `envconfig:"DEFAULT_PAGE_SIZE" default:"10"`
	AuditPageSize   int `envconfig:"AUDIT_PAGE_SIZE" default:"15"`
}

// Load reads configuration from environment variables with defaults.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.SessionSecret == "" {
		return nil, errors.New("session secret must be provided")
	}
	if cfg.IsProduction() && cfg.SessionSecret == DevSessionSecret {
		return nil, errors.New("SESSION_SECRET must be set in production")
	}
	if cfg.DefaultPageSize < 1 || cfg.AuditPageSize < 1 {
		return nil, errors.New("page sizes must be positive")
	}
	if cfg.CacheTTL <= 0 || cfg.SessionTTL <= 0 {
		return nil, errors.New("cache and session TTLs must be positive")
	}
	return &cfg, nil
}

// IsProduction reports whether the BFF runs behind HTTPS in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.Environment == "production"
}

// UseRedis reports whether sessions live in Redis instead of process memory.
func (c *Config) UseRedis() bool {
	return c != nil && c.RedisAddr != ""
}
