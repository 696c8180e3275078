package config

import (
	"time"
)

// Config is the root configuration for the gateway.
type Config struct {
	// Server configures the HTTP listener.
	Server ServerConfig `yaml:"server"`

	// Providers is the ordered list of upstream providers. Order is
	// preserved when initializing so that startup failures point at a
	// stable position in the file.
	Providers []ProviderConfig `yaml:"providers"`

	// Completion configures the retry behavior of the completion
	// orchestrator.
	Completion CompletionConfig `yaml:"completion"`

	// Stream configures emulated SSE streaming.
	Stream StreamConfig `yaml:"stream"`

	// Telemetry configures logging and metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Usage configures the SQLite usage ledger.
	Usage UsageConfig `yaml:"usage"`

	// Refresh configures scheduled model list refreshes.
	Refresh RefreshConfig `yaml:"refresh"`

	// Watch enables hot-reload of this file for provider changes.
	Watch bool `yaml:"watch"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	// ListenAddress is the host:port to bind, e.g. "0.0.0.0:8080".
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading a request.
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration for writing a response.
	// Zero disables it; streamed completions need an unbounded write
	// window because keepalives can run for minutes.
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the keep-alive idle limit for client connections.
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes limits request header size.
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// CORS configures cross-origin access.
	CORS CORSConfig `yaml:"cors"`
}

// CORSConfig configures cross-origin resource sharing.
type CORSConfig struct {
	Enabled          bool     `yaml:"enabled"`
	AllowedOrigins   []string `yaml:"allowed_origins"`
	AllowedMethods   []string `yaml:"allowed_methods"`
	AllowedHeaders   []string `yaml:"allowed_headers"`
	ExposedHeaders   []string `yaml:"exposed_headers"`
	MaxAge           int      `yaml:"max_age"`
	AllowCredentials bool     `yaml:"allow_credentials"`
}

// ProviderConfig declares one upstream provider.
type ProviderConfig struct {
	// Name is the unique provider name, used as the alias prefix.
	Name string `yaml:"name"`

	// Type selects the client implementation ("openai" or "generic").
	Type string `yaml:"type"`

	// Enabled defaults to true when omitted.
	Enabled *bool `yaml:"enabled"`

	// BaseURL is the provider's API root, e.g. "https://api.openai.com/v1".
	BaseURL string `yaml:"base_url"`

	// APIKey authenticates against the provider. May also be supplied via
	// GANYMEDE_PROVIDER_<NAME>_API_KEY.
	APIKey string `yaml:"api_key"`

	// Timeout is the per-request timeout for upstream calls.
	Timeout time.Duration `yaml:"timeout"`

	// MaxIdleConns and MaxIdleConnsPerHost tune the connection pool.
	MaxIdleConns        int `yaml:"max_idle_conns"`
	MaxIdleConnsPerHost int `yaml:"max_idle_conns_per_host"`

	// Filter restricts which upstream models become aliases.
	Filter FilterConfig `yaml:"filter"`
}

// IsEnabled reports whether the provider should be initialized. An omitted
// enabled flag means enabled.
func (p ProviderConfig) IsEnabled() bool {
	return p.Enabled == nil || *p.Enabled
}

// FilterConfig restricts the models exposed for a provider.
type FilterConfig struct {
	// Mode is "whitelist" or "blacklist". Empty disables filtering.
	Mode string `yaml:"mode"`

	// Models is the model ID list the mode applies to.
	Models []string `yaml:"models"`
}

// CompletionConfig configures the completion orchestrator.
type CompletionConfig struct {
	// MaxRetries is the total number of upstream attempts per request.
	// Retries are immediate; there is no backoff.
	MaxRetries int `yaml:"max_retries"`
}

// StreamConfig configures emulated SSE streaming.
type StreamConfig struct {
	// KeepaliveInterval is the cadence of empty delta frames while the
	// upstream completion is in flight.
	KeepaliveInterval time.Duration `yaml:"keepalive_interval"`
}

// TelemetryConfig configures logging and metrics.
type TelemetryConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	// Level is debug, info, warn, or error.
	Level string `yaml:"level"`

	// Format is json or text.
	Format string `yaml:"format"`

	// AddSource includes file:line in log records.
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	// Enabled controls whether /metrics is served.
	Enabled bool `yaml:"enabled"`

	// Namespace prefixes every metric name.
	Namespace string `yaml:"namespace"`

	// Path is the scrape endpoint path.
	Path string `yaml:"path"`
}

// UsageConfig configures the SQLite usage ledger.
type UsageConfig struct {
	// Enabled controls whether completions are recorded.
	Enabled bool `yaml:"enabled"`

	// Path is the SQLite database file. ":memory:" keeps the ledger
	// in-process.
	Path string `yaml:"path"`
}

// RefreshConfig configures scheduled model list refreshes.
type RefreshConfig struct {
	// Enabled controls whether the refresh scheduler runs.
	Enabled bool `yaml:"enabled"`

	// Schedule is a cron expression, e.g. "0 */6 * * *".
	Schedule string `yaml:"schedule"`

	// Timeout bounds one refresh pass across all providers.
	Timeout time.Duration `yaml:"timeout"`
}
