// Package config loads the service configuration from environment variables.
// Every setting has a default except the upstream API URL and credentials,
// and the whole struct is validated once on startup.
package config

import (
	"strconv"
	"time"
)

// Auth schemes understood by the upstream client factory.
const (
	AuthHeader = "header"
	AuthBearer = "bearer"
	AuthBasic  = "basic"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	API      APIConfig
	Import   ImportConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout bounds a whole request, including a bulk import run
	// (default: 15m).
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"15m"`
}

// APIConfig describes the upstream booking API.
type APIConfig struct {
	// BaseURL is the API root, e.g.
	// https://example.com/wp-admin/admin-ajax.php?action=wpamelia_api&call=/api/v1
	BaseURL string `env:"AMELIA_API_URL" envAlt:"API_BASE_URL" required:"true"`

	// AuthScheme selects which single header carries credentials:
	// header, bearer or basic (default: header)
	AuthScheme string `env:"AMELIA_AUTH_SCHEME" default:"header"`

	// KeyHeader is the header name used by the "header" scheme (default: Amelia)
	KeyHeader string `env:"AMELIA_API_KEY_HEADER" default:"Amelia"`

	APIKey   string `env:"AMELIA_API_KEY" envAlt:"API_KEY"`
	Token    string `env:"AMELIA_BEARER_TOKEN"`
	Username string `env:"AMELIA_USERNAME"`
	Password string `env:"AMELIA_PASSWORD"`

	// Timeout applies to every single upstream call (default: 30s)
	Timeout time.Duration `env:"AMELIA_API_TIMEOUT" default:"30s"`

	// ProfilePath points to an optional YAML file with resource overrides.
	ProfilePath string `env:"AMELIA_RESOURCE_PROFILE"`
}

// ImportConfig holds CSV import settings.
type ImportConfig struct {
	// MaxFileSize is the maximum accepted upload in bytes (default: 10MB)
	MaxFileSize int64 `env:"IMPORT_MAX_FILE_SIZE" default:"10485760"`

	// BatchSize is the number of rows submitted before pausing (default: 10)
	BatchSize int `env:"IMPORT_BATCH_SIZE" default:"10"`

	// BatchDelay is the pause between batches (default: 1s)
	BatchDelay time.Duration `env:"IMPORT_BATCH_DELAY" default:"1s"`

	// SkipErrors keeps importing after a failed row (default: true)
	SkipErrors bool `env:"IMPORT_SKIP_ERRORS" default:"true"`

	// MaxConcurrent is the number of imports the server runs at once (default: 2)
	MaxConcurrent int `env:"IMPORT_MAX_CONCURRENT" default:"2"`

	// MaxWaitTime is how long a request waits for an import slot (default: 10s)
	MaxWaitTime time.Duration `env:"IMPORT_MAX_WAIT_TIME" default:"10s"`

	// ReportTTL is how long finished reports stay downloadable (default: 30m)
	ReportTTL time.Duration `env:"IMPORT_REPORT_TTL" default:"30m"`
}

// RateLimitConfig holds per-IP rate limiting settings.
type RateLimitConfig struct {
	Enabled           bool `env:"RATE_LIMIT_ENABLED" default:"true"`
	RequestsPerMinute int  `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"120"`
	Burst             int  `env:"RATE_LIMIT_BURST" default:"20"`
}

// SecurityConfig holds inbound security settings.
type SecurityConfig struct {
	// RequireAPIKey enables X-API-Key validation on /api routes (default: false)
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`

	// APIKeys is a comma-separated list of accepted inbound keys
	APIKeys []string `env:"API_KEYS"`

	// AllowedOrigins is a comma-separated CORS origin list
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" default:"http://localhost:8501,http://localhost:5173"`

	// TrustedProxies lists CIDRs whose X-Real-IP / X-Forwarded-For headers
	// are believed (default: none)
	TrustedProxies []string `env:"TRUSTED_PROXIES"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
