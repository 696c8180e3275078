package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "ganymede",
	Short: "Ganymede - OpenAI-compatible chat completion gateway",
	Long: `Ganymede is an OpenAI-compatible gateway that routes chat completion
requests to multiple upstream LLM providers.

Clients address models through "<provider>/<model>" aliases built from each
provider's live model list. Streaming responses are emulated: the upstream
call is always non-streaming, keepalive frames hold the connection open,
and the final response is reframed as a short SSE chunk sequence.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
