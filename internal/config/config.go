// Package config defines the global configuration structure for the Nimbus
// dashboard service. Configuration is loaded once at process startup and is
// immutable thereafter, following 12-Factor principles: values come from the
// OS environment, optionally seeded by a .env file for local development.
//
// Any missing required value or invalid format fails the process immediately
// on startup.
package config

import (
	"time"

	"nimbus/internal/types"
)

// SecretString is an alias for types.SecretString, the redacted secret type
// used throughout configuration to prevent accidental logging of sensitive
// values.
type SecretString = types.SecretString

// Config is the top-level configuration struct for the Nimbus service.
// It is populated once during process initialization and never modified.
// Sub-components receive only the specific config subsets they require.
type Config struct {
	// System Metadata
	Environment string `envconfig:"APP_ENV" validate:"required,oneof=local dev staging prod"`
	Service     string `envconfig:"SERVICE_NAME" default:"nimbus-api"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	// Domain Configurations
	Server        ServerConfig
	Database      DatabaseConfig
	AWS           AWSConfig
	Upstream      UpstreamConfig
	Observability ObservabilityConfig

	// Build Metadata (Injected via ldflags, not Env)
	Build BuildInfo
}

// ServerConfig holds HTTP server tuning parameters.
type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"30s"`
	RequestTimeout  time.Duration `envconfig:"SERVER_REQUEST_TIMEOUT" default:"25s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"15s"`
	// Comma-separated list of allowed CORS origins; "*" for any.
	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"*"`
}

// DatabaseConfig holds database connection and pool tuning parameters.
// The database backs the saved-locations store; the service runs without it
// when URL is empty, with recents persistence disabled.
type DatabaseConfig struct {
	URL SecretString `envconfig:"DATABASE_URL"`

	MaxConns          int           `envconfig:"DB_MAX_CONNS" default:"10"`
	MinConns          int           `envconfig:"DB_MIN_CONNS" default:"2"`
	MaxConnLifetime   time.Duration `envconfig:"DB_MAX_CONN_LIFETIME" default:"30m"`
	AcquireTimeout    time.Duration `envconfig:"DB_ACQUIRE_TIMEOUT" default:"2s"`
	HealthCheckPeriod time.Duration `envconfig:"DB_HEALTH_CHECK_PERIOD" default:"1m"`
}

// AWSConfig holds AWS resource identifiers and regional configuration.
type AWSConfig struct {
	Region string `envconfig:"AWS_REGION" default:"us-east-1"`

	// SnapshotBucket stores dashboard payload snapshots for replay and
	// debugging. Empty disables archiving.
	SnapshotBucket string `envconfig:"SNAPSHOT_BUCKET"`

	// LocalStack Support (Empty in Prod)
	EndpointURL string `envconfig:"AWS_ENDPOINT_URL"`
}

// UpstreamConfig holds base URLs and client tuning for the weather data
// providers. Base URLs are overridable to point integration tests and local
// stacks at fixtures.
type UpstreamConfig struct {
	ForecastBaseURL string `envconfig:"FORECAST_BASE_URL" default:"https://api.weather.gov" validate:"required,url"`
	// ArchiveBaseURL may be set empty to disable the historical endpoint.
	ArchiveBaseURL string `envconfig:"ARCHIVE_BASE_URL" default:"https://archive-api.open-meteo.com/v1/archive" validate:"omitempty,url"`
	RadarBaseURL    string `envconfig:"RADAR_BASE_URL" default:"https://api.rainviewer.com/public/weather-maps.json" validate:"required,url"`
	GeocoderBaseURL string `envconfig:"GEOCODER_BASE_URL" default:"https://nominatim.openstreetmap.org" validate:"required,url"`

	// UserAgent identifies the service to upstream APIs; the forecast
	// provider rejects anonymous clients.
	UserAgent string `envconfig:"UPSTREAM_USER_AGENT" default:"nimbus-dashboard/1.0 (contact@nimbus.dev)"`

	RequestTimeout time.Duration `envconfig:"UPSTREAM_TIMEOUT" default:"10s"`
	MaxRetries     int           `envconfig:"UPSTREAM_MAX_RETRIES" default:"3"`
}

// ObservabilityConfig holds metrics emission settings.
type ObservabilityConfig struct {
	// MetricsEnabled gates CloudWatch metric emission. Disabled by default
	// for local development.
	MetricsEnabled   bool   `envconfig:"METRICS_ENABLED" default:"false"`
	MetricsNamespace string `envconfig:"METRICS_NAMESPACE" default:"Nimbus"`
}

// BuildInfo holds build-time metadata injected via ldflags.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
}

// ConfigErrorType categorizes configuration loading failures to aid debugging.
type ConfigErrorType string

const (
	// ErrMissingEnv indicates a required environment variable was not found.
	ErrMissingEnv ConfigErrorType = "MISSING_ENV"
	// ErrValidation indicates the configuration failed struct validation rules.
	ErrValidation ConfigErrorType = "VALIDATION_FAILED"
	// ErrParsing indicates a failure when parsing environment variable values
	// into the Config struct.
	ErrParsing ConfigErrorType = "PARSING_FAILED"
)
