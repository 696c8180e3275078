// Package providerfactory manages provider client lifecycle and the alias
// table that maps composite model aliases to providers.
//
// The Registry maps provider type tags to client factories; built-in types
// are registered by the caller at startup:
//
//	registry := providerfactory.NewRegistry()
//	registry.Register("openai", func(cfg providers.ClientConfig) (providers.Client, error) {
//	    return openai.NewClient(cfg)
//	})
//
// The Directory owns the live clients created through the registry and keeps
// the alias table consistent with them. Aliases have the form
// "<provider>/<model>" and are derived data: they are rebuilt from the
// upstream model list (after filter application) on every registration and
// refresh, and torn down atomically on destroy.
//
// The RefreshScheduler runs Directory.RefreshAll on a cron schedule.
package providerfactory
