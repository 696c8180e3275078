package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"mercator-hq/ganymede/pkg/providerfactory"
	"mercator-hq/ganymede/pkg/proxy"
	"mercator-hq/ganymede/pkg/proxy/types"
	"mercator-hq/ganymede/pkg/usage"
)

// RefreshHandler serves POST /admin/providers/{name}/refresh.
//
// It re-fetches the named provider's model list and rebuilds its alias
// entries. While the refresh is in flight the provider's aliases are absent
// from the table, so concurrent completions against them return 404.
type RefreshHandler struct {
	directory DirectoryAdmin
}

// NewRefreshHandler creates the provider refresh handler.
func NewRefreshHandler(directory DirectoryAdmin) *RefreshHandler {
	return &RefreshHandler{directory: directory}
}

// refreshResponse is the refresh endpoint's response body.
type refreshResponse struct {
	Provider string `json:"provider"`
	Aliases  int    `json:"aliases"`
}

// ServeHTTP implements http.Handler.
func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		proxy.WriteErrorResponse(w, types.NewInvalidRequestError(
			"Method not allowed. Use POST.", "", types.CodeInvalidValue))
		return
	}

	name := r.PathValue("name")
	if name == "" {
		proxy.WriteErrorResponse(w, types.NewInvalidRequestError(
			"Provider name is required.", "name", types.CodeMissingField))
		return
	}

	if err := h.directory.Refresh(r.Context(), name); err != nil {
		if errors.Is(err, providerfactory.ErrProviderNotFound) {
			proxy.WriteErrorResponse(w, types.NewNotFoundError(
				"Provider '"+name+"' is not registered.", "name", types.CodeModelNotFound))
			return
		}

		slog.ErrorContext(r.Context(), "provider refresh failed",
			"provider", name,
			"error", err,
		)
		proxy.WriteErrorResponse(w, types.NewBadGatewayError(
			"Refreshing provider '"+name+"' failed: "+err.Error()))
		return
	}

	counts := h.directory.AliasCounts()
	proxy.WriteJSONResponse(w, http.StatusOK, refreshResponse{
		Provider: name,
		Aliases:  counts[name],
	})
}

// UsageHandler serves GET /admin/usage from the usage ledger.
type UsageHandler struct {
	store *usage.Store
}

// NewUsageHandler creates the usage reporting handler.
func NewUsageHandler(store *usage.Store) *UsageHandler {
	return &UsageHandler{store: store}
}

// usageResponse is the usage endpoint's response body.
type usageResponse struct {
	Entries []usage.Entry  `json:"entries"`
	Totals  map[string]int `json:"totals"`
}

// ServeHTTP implements http.Handler.
func (h *UsageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		proxy.WriteErrorResponse(w, types.NewInvalidRequestError(
			"Method not allowed. Use GET.", "", types.CodeInvalidValue))
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			proxy.WriteErrorResponse(w, types.NewInvalidRequestError(
				"limit must be a positive integer.", "limit", types.CodeInvalidValue))
			return
		}
		limit = n
	}

	entries, err := h.store.Recent(r.Context(), limit)
	if err != nil {
		slog.ErrorContext(r.Context(), "usage query failed", "error", err)
		proxy.WriteErrorResponse(w, types.NewServerError("Reading usage failed."))
		return
	}

	totals, err := h.store.TotalsByAlias(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "usage totals query failed", "error", err)
		proxy.WriteErrorResponse(w, types.NewServerError("Reading usage failed."))
		return
	}

	if entries == nil {
		entries = []usage.Entry{}
	}

	proxy.WriteJSONResponse(w, http.StatusOK, usageResponse{
		Entries: entries,
		Totals:  totals,
	})
}
