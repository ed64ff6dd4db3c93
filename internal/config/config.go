// Package config provides centralized configuration management for the
// import service. Settings are read from environment variables with
// sensible defaults and validated on startup so misconfiguration fails
// fast, before the server accepts traffic.
package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Import   ImportConfig
	Geocoder GeocoderConfig
	Rate     RateLimitConfig
	CORS     CORSConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading the request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing the response.
	// Provider batches are paced at roughly one row per second, so the
	// default is generous (default: 30m).
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"30m"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string (required).
	// Supports both DATABASE_URL and DB_URL env vars for compatibility.
	URL string `env:"DATABASE_URL" envAlt:"DB_URL" required:"true"`

	// MaxConns is the maximum number of pooled connections (default: 20)
	MaxConns int `env:"DB_MAX_CONNS" default:"20"`

	// MinConns is the minimum number of connections to keep open (default: 4)
	MinConns int `env:"DB_MIN_CONNS" default:"4"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// MaxConnIdleTime is the maximum idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`

	// MigrationsDir is the directory of .up.sql files run at startup (default: migrations)
	MigrationsDir string `env:"DB_MIGRATIONS_DIR" default:"migrations"`
}

// ImportConfig holds bulk-import processing settings.
type ImportConfig struct {
	// MaxBatchRows caps the number of rows accepted per request (default: 5000)
	MaxBatchRows int `env:"IMPORT_MAX_BATCH_ROWS" default:"5000"`

	// ResultSampleSize is how many row results are returned to the client
	// and stored in the job summary (default: 100)
	ResultSampleSize int `env:"IMPORT_RESULT_SAMPLE_SIZE" default:"100"`

	// MaxErrorRecords caps per-row error rows persisted per job (default: 1000)
	MaxErrorRecords int `env:"IMPORT_MAX_ERROR_RECORDS" default:"1000"`

	// MaxFileSize is the maximum CSV/XLSX upload size in bytes (default: 25MB)
	MaxFileSize int64 `env:"IMPORT_MAX_FILE_SIZE" default:"26214400"`
}

// GeocoderConfig holds external geocoding API settings.
type GeocoderConfig struct {
	// BaseURL is the geocoding search endpoint (default: Nominatim)
	BaseURL string `env:"GEOCODER_BASE_URL" default:"https://nominatim.openstreetmap.org/search"`

	// UserAgent is sent on every external call; the public Nominatim
	// policy requires an identifying agent (default: EVALocal-Importer/1.0)
	UserAgent string `env:"GEOCODER_USER_AGENT" default:"EVALocal-Importer/1.0"`

	// Timeout is the per-request HTTP timeout (default: 10s)
	Timeout time.Duration `env:"GEOCODER_TIMEOUT" default:"10s"`

	// Pause is the minimum interval between external lookups; the public
	// Nominatim policy is one request per second (default: 1.1s)
	Pause time.Duration `env:"GEOCODER_PAUSE" default:"1.1s"`
}

// RateLimitConfig holds per-IP request throttling settings.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the per-IP limit across all routes (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`
}

// CORSConfig holds cross-origin settings for the admin frontend.
type CORSConfig struct {
	// AllowedOrigins is a comma-separated list of origins (default: http://localhost:3000)
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
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
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
