package routing

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"mercator-hq/ganymede/pkg/providerfactory"
	"mercator-hq/ganymede/pkg/providers"
)

// Router is the stateless façade that translates a canonical request whose
// model field carries a composite alias ("<provider>/<model>") into a call
// against the owning provider client.
//
// Router is thread-safe; all mutable state lives in the Directory.
type Router struct {
	directory *providerfactory.Directory

	// OnUpstream, when set, is invoked after every upstream call with the
	// owning provider, the stripped model name, and the call latency.
	OnUpstream func(provider, model string, elapsed time.Duration)
}

// NewRouter creates a router over the directory.
func NewRouter(directory *providerfactory.Directory) *Router {
	return &Router{directory: directory}
}

// ListModels returns a model record for every currently resolvable alias,
// with the alias as the record id and the owning provider as owner.
// Records are sorted by id ascending.
func (r *Router) ListModels() []providers.ModelInfo {
	aliases := r.directory.ListAliases()

	models := make([]providers.ModelInfo, 0, len(aliases))
	for _, alias := range aliases {
		owner, _ := r.directory.Resolve(alias)
		models = append(models, providers.ModelInfo{
			ID:      alias,
			Object:  "model",
			OwnedBy: owner,
		})
	}
	return models
}

// Completion resolves the request's model alias and forwards the request to
// the owning provider client. The provider prefix is stripped from the model
// field before forwarding, and the forwarded request always has Stream set
// to false: the upstream is called non-streaming regardless of the caller's
// intent, and streaming emulation happens strictly on the client-facing
// side. The upstream response is returned verbatim.
//
// Returns AliasNotFoundError if the alias is unregistered, without
// contacting any client. Returns ClientNotFoundError if the provider was
// destroyed between alias resolution and client lookup.
func (r *Router) Completion(ctx context.Context, req *providers.ChatCompletionRequest) (*providers.ChatCompletionResponse, error) {
	providerName, ok := r.directory.Resolve(req.Model)
	if !ok {
		return nil, &AliasNotFoundError{Alias: req.Model}
	}

	client, ok := r.directory.GetClient(providerName)
	if !ok {
		return nil, &ClientNotFoundError{Provider: providerName}
	}

	upstream := req.Clone()
	upstream.Model = stripProviderPrefix(req.Model, providerName)
	upstream.Stream = false

	slog.Debug("forwarding completion",
		"provider", providerName,
		"alias", req.Model,
		"model", upstream.Model,
	)

	start := time.Now()
	resp, err := client.Completion(ctx, upstream)
	if r.OnUpstream != nil {
		r.OnUpstream(providerName, upstream.Model, time.Since(start))
	}
	return resp, err
}

// stripProviderPrefix removes the "<provider>/" prefix from an alias.
// If the alias does not start with that exact prefix the full alias is
// forwarded unchanged.
func stripProviderPrefix(alias, provider string) string {
	prefix := provider + "/"
	if strings.HasPrefix(alias, prefix) {
		return alias[len(prefix):]
	}
	return alias
}
