package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

const minimalConfig = `
providers:
  - name: openai
    type: openai
    base_url: https://api.openai.com/v1
    api_key: sk-test
`

func TestLoadConfig_Minimal(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}

	if cfg.Server.ListenAddress != DefaultListenAddress {
		t.Errorf("ListenAddress = %q, want default", cfg.Server.ListenAddress)
	}
	if cfg.Server.WriteTimeout != 0 {
		t.Errorf("WriteTimeout = %v, must stay zero for streaming", cfg.Server.WriteTimeout)
	}
	if cfg.Completion.MaxRetries != DefaultMaxRetries {
		t.Errorf("MaxRetries = %d, want default %d", cfg.Completion.MaxRetries, DefaultMaxRetries)
	}
	if cfg.Stream.KeepaliveInterval != DefaultKeepaliveInterval {
		t.Errorf("KeepaliveInterval = %v, want default", cfg.Stream.KeepaliveInterval)
	}
	if cfg.Telemetry.Logging.Level != "info" || cfg.Telemetry.Logging.Format != "json" {
		t.Errorf("logging defaults = %+v", cfg.Telemetry.Logging)
	}

	if len(cfg.Providers) != 1 {
		t.Fatalf("expected 1 provider, got %d", len(cfg.Providers))
	}
	p := cfg.Providers[0]
	if !p.IsEnabled() {
		t.Error("provider without enabled field must default to enabled")
	}
	if p.Timeout != DefaultProviderTimeout {
		t.Errorf("provider timeout = %v, want default", p.Timeout)
	}
}

func TestLoadConfig_FullFile(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, `
server:
  listen_address: 127.0.0.1:9090
  shutdown_timeout: 5s

providers:
  - name: openai
    type: openai
    base_url: https://api.openai.com/v1
    api_key: sk-test
    filter:
      mode: whitelist
      models: [gpt-4o, gpt-4o-mini]
  - name: local
    type: generic
    base_url: http://localhost:8000/v1
    enabled: false

completion:
  max_retries: 5

stream:
  keepalive_interval: 3s

telemetry:
  logging:
    level: debug
    format: text
  metrics:
    enabled: true
    path: /metrics

usage:
  enabled: true
  path: /var/lib/ganymede/usage.db

refresh:
  enabled: true
  schedule: "*/30 * * * *"
  timeout: 1m
`))
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}

	if cfg.Server.ListenAddress != "127.0.0.1:9090" {
		t.Errorf("ListenAddress = %q", cfg.Server.ListenAddress)
	}
	if cfg.Server.ShutdownTimeout != 5*time.Second {
		t.Errorf("ShutdownTimeout = %v", cfg.Server.ShutdownTimeout)
	}
	if cfg.Completion.MaxRetries != 5 {
		t.Errorf("MaxRetries = %d", cfg.Completion.MaxRetries)
	}
	if cfg.Stream.KeepaliveInterval != 3*time.Second {
		t.Errorf("KeepaliveInterval = %v", cfg.Stream.KeepaliveInterval)
	}

	if cfg.Providers[0].Filter.Mode != "whitelist" || len(cfg.Providers[0].Filter.Models) != 2 {
		t.Errorf("filter = %+v", cfg.Providers[0].Filter)
	}
	if cfg.Providers[1].IsEnabled() {
		t.Error("explicitly disabled provider reported enabled")
	}

	if !cfg.Refresh.Enabled || cfg.Refresh.Schedule != "*/30 * * * *" || cfg.Refresh.Timeout != time.Minute {
		t.Errorf("refresh = %+v", cfg.Refresh)
	}
	if !cfg.Usage.Enabled || cfg.Usage.Path != "/var/lib/ganymede/usage.db" {
		t.Errorf("usage = %+v", cfg.Usage)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "providers: [\n"))
	if err == nil {
		t.Fatal("expected error for invalid YAML")
	}
	if !strings.Contains(err.Error(), "parse") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoadConfig_ValidationErrorsAggregate(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, `
providers:
  - name: bad/name
    type: mystery
    base_url: ""
  - name: openai
    type: openai
    base_url: https://api.openai.com/v1
`))
	if err == nil {
		t.Fatal("expected validation error")
	}

	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T: %v", err, err)
	}

	// One pass reports the slash in the name, the unknown type, the empty
	// base URL, and the missing openai api key.
	if len(verr.Errors) < 4 {
		t.Errorf("expected at least 4 field errors, got %d: %v", len(verr.Errors), verr)
	}

	fields := make(map[string]bool)
	for _, fe := range verr.Errors {
		fields[fe.Field] = true
	}
	for _, want := range []string{
		"providers[0].name",
		"providers[0].type",
		"providers[0].base_url",
		"providers[1].api_key",
	} {
		if !fields[want] {
			t.Errorf("missing field error for %s in %v", want, verr)
		}
	}
}

func TestLoadConfig_InvalidRefreshSchedule(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, minimalConfig+`
refresh:
  enabled: true
  schedule: "not a cron line"
`))
	if err == nil {
		t.Fatal("expected error for invalid cron expression")
	}
	if !strings.Contains(err.Error(), "refresh.schedule") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	t.Setenv("GANYMEDE_SERVER_LISTEN_ADDRESS", "127.0.0.1:7070")
	t.Setenv("GANYMEDE_COMPLETION_MAX_RETRIES", "7")
	t.Setenv("GANYMEDE_STREAM_KEEPALIVE_INTERVAL", "2s")
	t.Setenv("GANYMEDE_LOG_LEVEL", "debug")
	t.Setenv("GANYMEDE_PROVIDER_OPENAI_API_KEY", "sk-from-env")

	cfg, err := LoadConfigWithEnvOverrides(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides() failed: %v", err)
	}

	if cfg.Server.ListenAddress != "127.0.0.1:7070" {
		t.Errorf("ListenAddress = %q", cfg.Server.ListenAddress)
	}
	if cfg.Completion.MaxRetries != 7 {
		t.Errorf("MaxRetries = %d", cfg.Completion.MaxRetries)
	}
	if cfg.Stream.KeepaliveInterval != 2*time.Second {
		t.Errorf("KeepaliveInterval = %v", cfg.Stream.KeepaliveInterval)
	}
	if cfg.Telemetry.Logging.Level != "debug" {
		t.Errorf("log level = %q", cfg.Telemetry.Logging.Level)
	}
	if cfg.Providers[0].APIKey != "sk-from-env" {
		t.Errorf("api key override not applied: %q", cfg.Providers[0].APIKey)
	}
}

func TestLoadConfigWithEnvOverrides_DashedProviderName(t *testing.T) {
	t.Setenv("GANYMEDE_PROVIDER_MY_LOCAL_API_KEY", "secret")

	cfg, err := LoadConfigWithEnvOverrides(writeConfig(t, `
providers:
  - name: my-local
    type: generic
    base_url: http://localhost:8000/v1
`))
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides() failed: %v", err)
	}
	if cfg.Providers[0].APIKey != "secret" {
		t.Errorf("dashed provider name env mapping failed: %q", cfg.Providers[0].APIKey)
	}
}
