package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"mercator-hq/ganymede/pkg/cli"
	"mercator-hq/ganymede/pkg/config"
	"mercator-hq/ganymede/pkg/providerfactory"
	"mercator-hq/ganymede/pkg/providers"
	"mercator-hq/ganymede/pkg/providers/generic"
	"mercator-hq/ganymede/pkg/providers/openai"
	"mercator-hq/ganymede/pkg/proxy/handlers"
	"mercator-hq/ganymede/pkg/proxy/stream"
	"mercator-hq/ganymede/pkg/routing"
	"mercator-hq/ganymede/pkg/server"
	"mercator-hq/ganymede/pkg/telemetry/logging"
	"mercator-hq/ganymede/pkg/telemetry/metrics"
	"mercator-hq/ganymede/pkg/usage"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the Ganymede gateway",
	Long: `Start the gateway with the specified configuration.

All configured providers are initialized before the listener opens; a
provider that cannot be created aborts startup. A provider whose model list
cannot be fetched stays registered without aliases and can be recovered
later via the refresh endpoint.

Examples:
  # Start with default config
  ganymede run

  # Start with custom config
  ganymede run --config /etc/ganymede/config.yaml

  # Override listen address
  ganymede run --listen 0.0.0.0:8080

  # Validate config without starting the server
  ganymede run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting the server")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return cli.NewConfigError("", err.Error())
	}

	// Apply flag overrides
	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	if _, err := logging.Setup(logging.Options{
		Level:     cfg.Telemetry.Logging.Level,
		Format:    cfg.Telemetry.Logging.Format,
		AddSource: cfg.Telemetry.Logging.AddSource,
	}); err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}

	if runFlags.dryRun {
		fmt.Println("configuration valid")
		return nil
	}

	ctx := cli.SetupSignalHandler()

	// Provider registry and directory
	registry := providerfactory.NewRegistry()
	registry.Register("openai", func(cc providers.ClientConfig) (providers.Client, error) {
		return openai.NewClient(cc)
	})
	registry.Register("generic", func(cc providers.ClientConfig) (providers.Client, error) {
		return generic.NewClient(cc)
	})

	directory := providerfactory.NewDirectory(registry)
	defer directory.Close()

	specs := buildProviderSpecs(cfg)
	if len(specs) == 0 {
		slog.Warn("no providers configured")
	}
	if err := directory.InitializeAll(ctx, specs); err != nil {
		return cli.NewCommandError("run", fmt.Errorf("provider initialization failed: %w", err))
	}
	slog.Info("providers initialized",
		"providers", len(directory.Providers()),
		"aliases", len(directory.ListAliases()),
	)

	// Telemetry
	var collector *metrics.Collector
	if cfg.Telemetry.Metrics.Enabled {
		collector = metrics.NewCollector(cfg.Telemetry.Metrics.Namespace, nil)
		collector.UpdateAliasCounts(directory.AliasCounts())
	}

	// Usage ledger
	var store *usage.Store
	if cfg.Usage.Enabled {
		store, err = usage.Open(cfg.Usage.Path)
		if err != nil {
			return cli.NewCommandError("run", err)
		}
		defer store.Close()
		slog.Info("usage ledger opened", "path", cfg.Usage.Path)
	}

	// Routing and completion pipeline
	router := routing.NewRouter(directory)
	orchestrator := routing.NewOrchestrator(router, cfg.Completion.MaxRetries)
	if collector != nil {
		router.OnUpstream = collector.RecordUpstreamLatency
		orchestrator.OnRetry = collector.RecordRetry
	}
	recorder := handlers.NewRecorder(collector, store, directory.Resolve)
	emitter := stream.NewEmitter(recorder.WrapCompleter(orchestrator, true), cfg.Stream.KeepaliveInterval)

	h := server.Handlers{
		Chat:    handlers.NewChatHandler(recorder.WrapCompleter(orchestrator, false), emitter, collector),
		Models:  handlers.NewModelsHandler(router),
		Health:  handlers.NewHealthHandler(directory),
		Refresh: handlers.NewRefreshHandler(directory),
	}
	if store != nil {
		h.Usage = handlers.NewUsageHandler(store)
	}
	if collector != nil {
		h.Metrics = collector.Handler()
	}

	// Scheduled model refresh
	if cfg.Refresh.Enabled {
		scheduler, err := providerfactory.NewRefreshScheduler(directory, cfg.Refresh.Schedule, cfg.Refresh.Timeout)
		if err != nil {
			return cli.NewConfigError("refresh.schedule", err.Error())
		}
		if collector != nil {
			scheduler.OnPass = func() {
				collector.UpdateAliasCounts(directory.AliasCounts())
			}
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	// Configuration hot reload (provider set only)
	if cfg.Watch {
		var onDestroy func(string)
		if collector != nil {
			onDestroy = collector.RemoveProvider
		}
		watcher, err := config.NewWatcher(cfgFile, func(next *config.Config) {
			applyProviderChanges(directory, cfg.Providers, next.Providers, onDestroy)
			cfg.Providers = next.Providers
			if collector != nil {
				collector.UpdateAliasCounts(directory.AliasCounts())
			}
		})
		if err != nil {
			return cli.NewCommandError("run", err)
		}
		watcher.Start()
		defer watcher.Stop()
	}

	srv := server.NewServer(cfg, h)
	if err := srv.Start(ctx); err != nil {
		return cli.NewCommandError("run", err)
	}
	return nil
}

// buildProviderSpecs converts configuration entries into directory specs.
func buildProviderSpecs(cfg *config.Config) []providerfactory.ProviderSpec {
	specs := make([]providerfactory.ProviderSpec, 0, len(cfg.Providers))
	for _, p := range cfg.Providers {
		specs = append(specs, providerfactory.ProviderSpec{
			Name:    p.Name,
			Enabled: p.IsEnabled(),
			Config:  toClientConfig(p),
		})
	}
	return specs
}

func toClientConfig(p config.ProviderConfig) providers.ClientConfig {
	cc := providers.ClientConfig{
		Name:                p.Name,
		Type:                p.Type,
		Endpoint:            p.BaseURL,
		APIKey:              p.APIKey,
		Timeout:             p.Timeout,
		MaxIdleConns:        p.MaxIdleConns,
		MaxIdleConnsPerHost: p.MaxIdleConnsPerHost,
	}
	if p.Filter.Mode != "" {
		cc.Filter = &providers.Filter{
			Mode:   providers.FilterMode(p.Filter.Mode),
			Models: p.Filter.Models,
		}
	}
	return cc
}

// applyProviderChanges reconciles the live directory against an updated
// provider list: removed providers are destroyed, new or modified ones are
// (re)created. Unchanged providers are left alone so their aliases never
// flicker.
func applyProviderChanges(directory *providerfactory.Directory, old, next []config.ProviderConfig, onDestroy func(string)) {
	ctx := context.Background()

	prev := make(map[string]config.ProviderConfig, len(old))
	for _, p := range old {
		prev[p.Name] = p
	}
	seen := make(map[string]bool, len(next))

	for _, p := range next {
		seen[p.Name] = true

		before, existed := prev[p.Name]
		if existed && providerEqual(before, p) {
			continue
		}

		if !p.IsEnabled() {
			if existed {
				if err := directory.Destroy(p.Name); err != nil {
					slog.Warn("failed to remove disabled provider", "provider", p.Name, "error", err)
				} else if onDestroy != nil {
					onDestroy(p.Name)
				}
			}
			continue
		}

		spec := providerfactory.ProviderSpec{Name: p.Name, Enabled: true, Config: toClientConfig(p)}
		if err := directory.AddProvider(ctx, spec); err != nil {
			slog.Error("failed to apply provider change", "provider", p.Name, "error", err)
		} else {
			slog.Info("provider updated from config reload", "provider", p.Name)
		}
	}

	for name := range prev {
		if !seen[name] {
			if err := directory.Destroy(name); err != nil {
				slog.Warn("failed to remove deleted provider", "provider", name, "error", err)
			} else {
				if onDestroy != nil {
					onDestroy(name)
				}
				slog.Info("provider removed from config reload", "provider", name)
			}
		}
	}
}

// providerEqual reports whether two provider entries are equivalent for
// reload purposes.
func providerEqual(a, b config.ProviderConfig) bool {
	if a.Name != b.Name || a.Type != b.Type || a.BaseURL != b.BaseURL ||
		a.APIKey != b.APIKey || a.Timeout != b.Timeout ||
		a.IsEnabled() != b.IsEnabled() ||
		a.Filter.Mode != b.Filter.Mode || len(a.Filter.Models) != len(b.Filter.Models) {
		return false
	}
	for i := range a.Filter.Models {
		if a.Filter.Models[i] != b.Filter.Models[i] {
			return false
		}
	}
	return true
}
