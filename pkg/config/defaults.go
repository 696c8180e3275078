package config

import "time"

// Default values applied to omitted fields.
const (
	DefaultListenAddress   = "0.0.0.0:8080"
	DefaultReadTimeout     = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 15 * time.Second
	DefaultMaxHeaderBytes  = 1 << 20 // 1 MB

	DefaultProviderTimeout = 120 * time.Second
	DefaultMaxIdleConns    = 100
	DefaultMaxIdlePerHost  = 10

	DefaultMaxRetries        = 3
	DefaultKeepaliveInterval = 10 * time.Second

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultMetricsNamespace = "ganymede"
	DefaultMetricsPath      = "/metrics"

	DefaultUsagePath = "ganymede-usage.db"

	DefaultRefreshSchedule = "0 * * * *" // hourly
	DefaultRefreshTimeout  = 2 * time.Minute
)

// ApplyDefaults fills in zero-valued fields with defaults. It is called by
// LoadConfig before validation.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	// WriteTimeout deliberately defaults to zero: a streamed completion
	// holds the response open for as long as the upstream call takes.
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.MaxHeaderBytes == 0 {
		cfg.Server.MaxHeaderBytes = DefaultMaxHeaderBytes
	}

	applyCORSDefaults(&cfg.Server.CORS)

	for i := range cfg.Providers {
		p := &cfg.Providers[i]
		if p.Timeout == 0 {
			p.Timeout = DefaultProviderTimeout
		}
		if p.MaxIdleConns == 0 {
			p.MaxIdleConns = DefaultMaxIdleConns
		}
		if p.MaxIdleConnsPerHost == 0 {
			p.MaxIdleConnsPerHost = DefaultMaxIdlePerHost
		}
	}

	if cfg.Completion.MaxRetries == 0 {
		cfg.Completion.MaxRetries = DefaultMaxRetries
	}
	if cfg.Stream.KeepaliveInterval == 0 {
		cfg.Stream.KeepaliveInterval = DefaultKeepaliveInterval
	}

	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLogLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLogFormat
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}

	if cfg.Usage.Path == "" {
		cfg.Usage.Path = DefaultUsagePath
	}

	if cfg.Refresh.Schedule == "" {
		cfg.Refresh.Schedule = DefaultRefreshSchedule
	}
	if cfg.Refresh.Timeout == 0 {
		cfg.Refresh.Timeout = DefaultRefreshTimeout
	}
}

func applyCORSDefaults(cors *CORSConfig) {
	if !cors.Enabled {
		return
	}
	if len(cors.AllowedOrigins) == 0 {
		cors.AllowedOrigins = []string{"*"}
	}
	if len(cors.AllowedMethods) == 0 {
		cors.AllowedMethods = []string{"GET", "POST", "OPTIONS"}
	}
	if len(cors.AllowedHeaders) == 0 {
		cors.AllowedHeaders = []string{"Authorization", "Content-Type", "X-Request-ID"}
	}
	if len(cors.ExposedHeaders) == 0 {
		cors.ExposedHeaders = []string{"X-Request-ID"}
	}
	if cors.MaxAge == 0 {
		cors.MaxAge = 3600
	}
}
