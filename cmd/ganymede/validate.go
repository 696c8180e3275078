package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mercator-hq/ganymede/pkg/cli"
	"mercator-hq/ganymede/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file",
	Long: `Load and validate the configuration file without starting the gateway.

All field errors are reported together, so a broken file can be fixed in
one pass. Environment variable overrides (GANYMEDE_*) are applied before
validation, matching what "ganymede run" would see.

Examples:
  # Validate the default config file
  ganymede validate

  # Validate a specific file
  ganymede validate --config /etc/ganymede/config.yaml`,
	RunE: validateConfig,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func validateConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return cli.NewConfigError("", err.Error())
	}

	fmt.Printf("configuration valid: %s\n", cfgFile)
	fmt.Printf("  listen address: %s\n", cfg.Server.ListenAddress)
	fmt.Printf("  providers:      %d\n", len(cfg.Providers))
	for _, p := range cfg.Providers {
		state := "enabled"
		if !p.IsEnabled() {
			state = "disabled"
		}
		fmt.Printf("    - %s (%s, %s)\n", p.Name, p.Type, state)
	}
	fmt.Printf("  max retries:    %d\n", cfg.Completion.MaxRetries)
	fmt.Printf("  keepalive:      %s\n", cfg.Stream.KeepaliveInterval)
	return nil
}
