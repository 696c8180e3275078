package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/robfig/cron/v3"
)

// FieldError describes one invalid configuration field.
type FieldError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError aggregates all field errors found in one pass.
type ValidationError struct {
	Errors []FieldError
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		msgs = append(msgs, fe.Error())
	}
	return fmt.Sprintf("invalid configuration: %s", strings.Join(msgs, "; "))
}

// Known provider types and filter modes.
var (
	knownProviderTypes = map[string]bool{"openai": true, "generic": true}
	knownFilterModes   = map[string]bool{"": true, "whitelist": true, "blacklist": true}
)

// Validate checks the configuration for errors. All problems are collected
// and returned together so a broken file is fixed in one edit.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateProviders(cfg.Providers)...)
	errs = append(errs, validateCompletion(&cfg.Completion)...)
	errs = append(errs, validateStream(&cfg.Stream)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)
	errs = append(errs, validateRefresh(&cfg.Refresh)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func validateServer(cfg *ServerConfig) []FieldError {
	var errs []FieldError

	if cfg.ListenAddress == "" {
		errs = append(errs, FieldError{"server.listen_address", "must not be empty"})
	}
	if cfg.ReadTimeout < 0 {
		errs = append(errs, FieldError{"server.read_timeout", "must not be negative"})
	}
	if cfg.WriteTimeout < 0 {
		errs = append(errs, FieldError{"server.write_timeout", "must not be negative"})
	}
	if cfg.ShutdownTimeout <= 0 {
		errs = append(errs, FieldError{"server.shutdown_timeout", "must be positive"})
	}

	return errs
}

func validateProviders(providers []ProviderConfig) []FieldError {
	var errs []FieldError

	seen := make(map[string]bool, len(providers))
	for i, p := range providers {
		prefix := fmt.Sprintf("providers[%d]", i)

		if p.Name == "" {
			errs = append(errs, FieldError{prefix + ".name", "must not be empty"})
		} else {
			if strings.Contains(p.Name, "/") {
				errs = append(errs, FieldError{prefix + ".name", "must not contain '/'"})
			}
			if seen[p.Name] {
				errs = append(errs, FieldError{prefix + ".name", fmt.Sprintf("duplicate provider name %q", p.Name)})
			}
			seen[p.Name] = true
		}

		if !knownProviderTypes[p.Type] {
			errs = append(errs, FieldError{prefix + ".type", fmt.Sprintf("unknown provider type %q (expected openai or generic)", p.Type)})
		}

		if p.BaseURL == "" {
			errs = append(errs, FieldError{prefix + ".base_url", "must not be empty"})
		} else if u, err := url.Parse(p.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, FieldError{prefix + ".base_url", fmt.Sprintf("invalid URL %q", p.BaseURL)})
		}

		if p.Type == "openai" && p.APIKey == "" {
			errs = append(errs, FieldError{prefix + ".api_key", "required for openai providers"})
		}

		if p.Timeout < 0 {
			errs = append(errs, FieldError{prefix + ".timeout", "must not be negative"})
		}

		if !knownFilterModes[p.Filter.Mode] {
			errs = append(errs, FieldError{prefix + ".filter.mode", fmt.Sprintf("unknown filter mode %q (expected whitelist or blacklist)", p.Filter.Mode)})
		}
	}

	return errs
}

func validateCompletion(cfg *CompletionConfig) []FieldError {
	if cfg.MaxRetries < 1 {
		return []FieldError{{"completion.max_retries", "must be at least 1"}}
	}
	return nil
}

func validateStream(cfg *StreamConfig) []FieldError {
	if cfg.KeepaliveInterval <= 0 {
		return []FieldError{{"stream.keepalive_interval", "must be positive"}}
	}
	return nil
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	switch strings.ToLower(cfg.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, FieldError{"telemetry.logging.level", fmt.Sprintf("unknown level %q", cfg.Logging.Level)})
	}

	switch strings.ToLower(cfg.Logging.Format) {
	case "json", "text":
	default:
		errs = append(errs, FieldError{"telemetry.logging.format", fmt.Sprintf("unknown format %q", cfg.Logging.Format)})
	}

	if cfg.Metrics.Enabled && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		errs = append(errs, FieldError{"telemetry.metrics.path", "must start with '/'"})
	}

	return errs
}

func validateRefresh(cfg *RefreshConfig) []FieldError {
	if !cfg.Enabled {
		return nil
	}

	var errs []FieldError
	if _, err := cron.ParseStandard(cfg.Schedule); err != nil {
		errs = append(errs, FieldError{"refresh.schedule", fmt.Sprintf("invalid cron expression %q: %v", cfg.Schedule, err)})
	}
	if cfg.Timeout <= 0 {
		errs = append(errs, FieldError{"refresh.timeout", "must be positive"})
	}
	return errs
}
