// Package logging configures structured logging for the gateway.
//
// The gateway logs through log/slog everywhere; this package owns the one
// place a handler is constructed. Setup parses the configured level and
// format, builds the handler, and installs it as the process default so that
// package-level slog calls inherit it.
//
// Example:
//
//	logger, err := logging.Setup(logging.Options{Level: "info", Format: "json"})
//	if err != nil {
//	    return err
//	}
//	logger.Info("gateway starting", "addr", cfg.Server.Addr())
//
// RedactSecret masks API keys before they reach a log line. Provider
// credentials must never be logged verbatim.
package logging
