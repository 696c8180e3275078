package providerfactory

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"mercator-hq/ganymede/pkg/providers"
)

// ProviderSpec describes one configured provider to the directory.
type ProviderSpec struct {
	// Name is the provider identifier, unique across the configuration.
	Name string

	// Enabled controls whether the provider participates at all.
	// Disabled providers are skipped (and logged) during initialization.
	Enabled bool

	// Config is the client configuration handed to the factory.
	Config providers.ClientConfig
}

// record pairs a live client with its registration-time filter.
// The name is immutable once created.
type record struct {
	name   string
	client providers.Client
	filter *providers.Filter
}

// Directory owns the set of live provider clients and the alias table that
// maps composite model aliases ("<provider>/<model>") to provider names.
//
// The alias table is derived data: entries for a provider are fully rebuilt
// whenever that provider's model list is (re)fetched, and all mutations of a
// provider's entries happen inside one uninterrupted critical section, so a
// concurrent reader sees either the old complete set or the new complete
// set, never a partial one. Network fetches never happen while the lock is
// held.
//
// Directory is thread-safe and can be used concurrently.
type Directory struct {
	registry *Registry

	mu      sync.RWMutex
	records map[string]*record
	aliases map[string]string // alias -> provider name
}

// NewDirectory creates an empty directory backed by the given registry.
func NewDirectory(registry *Registry) *Directory {
	return &Directory{
		registry: registry,
		records:  make(map[string]*record),
		aliases:  make(map[string]string),
	}
}

// MakeAlias builds the composite alias for a provider's model.
func MakeAlias(provider, model string) string {
	return provider + "/" + model
}

// InitializeAll creates, validates, and registers all configured providers
// in declaration order.
//
// Disabled providers are skipped and logged but do not fail initialization.
// The first provider whose validating Create fails aborts the whole
// initialization (fail-fast): every client created so far is closed, and the
// returned InitializationError names the failing provider.
//
// A provider whose Create succeeds but whose model fetch fails stays
// registered as a live client with zero aliases. This degraded state is
// deliberate: the provider is reachable, and a later refresh can restore
// its aliases.
func (d *Directory) InitializeAll(ctx context.Context, specs []ProviderSpec) error {
	for _, spec := range specs {
		if !spec.Enabled {
			slog.Info("skipping disabled provider", "provider", spec.Name)
			continue
		}

		if err := d.AddProvider(ctx, spec); err != nil {
			d.closeAll()
			return &InitializationError{Provider: spec.Name, Cause: err}
		}
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	slog.Info("provider directory initialized",
		"providers", len(d.records),
		"aliases", len(d.aliases),
	)
	return nil
}

// AddProvider creates and validates a single provider, then registers it and
// its filtered model aliases. If a provider with the same name already
// exists it is destroyed first.
//
// A model-fetch failure after successful validation is not fatal: the
// provider is registered with zero aliases and a warning is logged.
func (d *Directory) AddProvider(ctx context.Context, spec ProviderSpec) error {
	client, err := d.registry.CreateClient(spec.Name, spec.Config)
	if err != nil {
		return err
	}

	if err := client.Create(ctx); err != nil {
		client.Close()
		return err
	}

	models, err := client.Models(ctx)
	if err != nil {
		slog.Warn("provider validated but model fetch failed; registering with no aliases",
			"provider", spec.Name,
			"error", err,
		)
		models = nil
	}

	rec := &record{
		name:   spec.Name,
		client: client,
		filter: spec.Config.Filter,
	}
	filtered := rec.filter.Apply(models)

	d.mu.Lock()
	old, replaced := d.records[spec.Name]
	if replaced {
		d.removeAliasesLocked(spec.Name)
	}
	d.records[spec.Name] = rec
	d.registerAliasesLocked(spec.Name, filtered)
	d.mu.Unlock()

	if replaced {
		slog.Warn("replacing existing provider", "provider", spec.Name)
		if err := old.client.Close(); err != nil {
			slog.Error("error closing replaced provider", "provider", spec.Name, "error", err)
		}
	}

	slog.Info("provider registered",
		"provider", spec.Name,
		"type", client.GetType(),
		"aliases", len(filtered),
	)
	return nil
}

// Refresh refetches the model list for one provider and rebuilds its alias
// entries. The provider's existing aliases are removed before the fetch is
// issued; if the fetch fails, the provider is left with zero aliases until
// the next successful refresh. Model listing is never retried here.
func (d *Directory) Refresh(ctx context.Context, name string) error {
	d.mu.Lock()
	rec, ok := d.records[name]
	if !ok {
		d.mu.Unlock()
		return &ProviderNotFoundError{Name: name}
	}
	d.removeAliasesLocked(name)
	d.mu.Unlock()

	models, err := rec.client.RefreshModels(ctx)
	if err != nil {
		return fmt.Errorf("refresh of provider %q failed: %w", name, err)
	}

	filtered := rec.filter.Apply(models)

	d.mu.Lock()
	defer d.mu.Unlock()

	// The provider may have been destroyed while the fetch was in flight;
	// in that case the results are discarded.
	if _, live := d.records[name]; !live {
		return &ProviderNotFoundError{Name: name}
	}

	d.removeAliasesLocked(name)
	d.registerAliasesLocked(name, filtered)

	slog.Info("provider refreshed", "provider", name, "aliases", len(filtered))
	return nil
}

// RefreshAll refreshes every registered provider, continuing past individual
// failures. The last failure is returned so callers can surface it.
func (d *Directory) RefreshAll(ctx context.Context) error {
	var lastErr error
	for _, name := range d.Providers() {
		if err := d.Refresh(ctx, name); err != nil {
			slog.Error("provider refresh failed", "provider", name, "error", err)
			lastErr = err
		}
	}
	return lastErr
}

// Destroy removes the provider's alias entries and its client, then closes
// the client. Returns ProviderNotFoundError if the provider was never
// registered.
func (d *Directory) Destroy(name string) error {
	d.mu.Lock()
	rec, ok := d.records[name]
	if !ok {
		d.mu.Unlock()
		return &ProviderNotFoundError{Name: name}
	}
	d.removeAliasesLocked(name)
	delete(d.records, name)
	d.mu.Unlock()

	if err := rec.client.Close(); err != nil {
		slog.Error("error closing provider", "provider", name, "error", err)
	}

	slog.Info("provider destroyed", "provider", name)
	return nil
}

// Resolve looks up the provider name owning an alias.
func (d *Directory) Resolve(alias string) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	name, ok := d.aliases[alias]
	return name, ok
}

// GetClient returns the live client for a provider name.
func (d *Directory) GetClient(name string) (providers.Client, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	rec, ok := d.records[name]
	if !ok {
		return nil, false
	}
	return rec.client, true
}

// ListAliases returns all registered aliases in sorted order.
func (d *Directory) ListAliases() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	aliases := make([]string, 0, len(d.aliases))
	for alias := range d.aliases {
		aliases = append(aliases, alias)
	}
	sort.Strings(aliases)
	return aliases
}

// Providers returns the names of all registered providers in sorted order.
func (d *Directory) Providers() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	names := make([]string, 0, len(d.records))
	for name := range d.records {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AliasCounts returns the number of registered aliases per provider,
// including providers currently holding zero aliases. The health endpoint
// uses it to make the "live but alias-less" degraded state visible.
func (d *Directory) AliasCounts() map[string]int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	counts := make(map[string]int, len(d.records))
	for name := range d.records {
		counts[name] = 0
	}
	for _, provider := range d.aliases {
		counts[provider]++
	}
	return counts
}

// Close destroys all providers and clears the directory.
func (d *Directory) Close() error {
	d.closeAll()
	return nil
}

func (d *Directory) closeAll() {
	d.mu.Lock()
	records := d.records
	d.records = make(map[string]*record)
	d.aliases = make(map[string]string)
	d.mu.Unlock()

	for name, rec := range records {
		if err := rec.client.Close(); err != nil {
			slog.Error("error closing provider", "provider", name, "error", err)
		}
	}
}

// removeAliasesLocked deletes every alias owned by the provider.
// Callers must hold d.mu.
func (d *Directory) removeAliasesLocked(name string) {
	for alias, provider := range d.aliases {
		if provider == name {
			delete(d.aliases, alias)
		}
	}
}

// registerAliasesLocked inserts alias entries for the provider's models.
// Callers must hold d.mu.
func (d *Directory) registerAliasesLocked(name string, models []providers.ModelInfo) {
	for _, m := range models {
		d.aliases[MakeAlias(name, m.ID)] = name
	}
}
