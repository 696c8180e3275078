// Package config defines, loads, and validates the gateway configuration.
//
// Configuration is a single YAML file. Loading applies defaults to omitted
// fields, optionally layers GANYMEDE_* environment variable overrides on
// top, and validates the result, collecting every field error into one
// ValidationError.
//
// # File layout
//
//	server:
//	  listen_address: "0.0.0.0:8080"
//	providers:
//	  - name: openai
//	    type: openai
//	    base_url: https://api.openai.com/v1
//	    api_key: sk-...
//	    filter:
//	      mode: whitelist
//	      models: [gpt-4o, gpt-4o-mini]
//	  - name: local
//	    type: generic
//	    base_url: http://localhost:11434/v1
//	completion:
//	  max_retries: 3
//	stream:
//	  keepalive_interval: 10s
//	telemetry:
//	  logging:
//	    level: info
//	    format: json
//	  metrics:
//	    enabled: true
//	usage:
//	  enabled: true
//	  path: ganymede-usage.db
//	refresh:
//	  enabled: true
//	  schedule: "0 * * * *"
//	watch: true
//
// # Environment overrides
//
// Scalar fields can be overridden with GANYMEDE_SECTION_FIELD variables,
// e.g. GANYMEDE_SERVER_LISTEN_ADDRESS or GANYMEDE_LOG_LEVEL. Provider API
// keys come from GANYMEDE_PROVIDER_<NAME>_API_KEY so secrets can stay out
// of the file.
//
// # Hot reload
//
// When watch is true, a fsnotify-based Watcher reloads the file on change.
// Only the provider set is applied at runtime; server and telemetry changes
// take effect on restart.
package config
