// Package cli provides shared helpers for the ganymede command-line
// interface: typed command and configuration errors, and signal-aware
// context setup for graceful shutdown.
package cli
