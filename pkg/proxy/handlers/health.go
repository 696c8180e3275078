package handlers

import (
	"net/http"
	"time"

	"mercator-hq/ganymede/pkg/proxy"
)

// HealthHandler serves GET /healthz.
//
// The gateway reports ok whenever the server is up; a provider with zero
// aliases (degraded registration) is visible in the per-provider counts but
// does not fail the probe.
type HealthHandler struct {
	directory DirectoryAdmin
}

// NewHealthHandler creates the health handler. directory may be nil, in
// which case provider details are omitted.
func NewHealthHandler(directory DirectoryAdmin) *HealthHandler {
	return &HealthHandler{directory: directory}
}

// healthResponse is the /healthz response body.
type healthResponse struct {
	Status    string         `json:"status"`
	Timestamp int64          `json:"timestamp"`
	Providers map[string]int `json:"providers,omitempty"`
}

// ServeHTTP implements http.Handler.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	resp := healthResponse{
		Status:    "ok",
		Timestamp: time.Now().Unix(),
	}
	if h.directory != nil {
		resp.Providers = h.directory.AliasCounts()
	}

	proxy.WriteJSONResponse(w, http.StatusOK, resp)
}
