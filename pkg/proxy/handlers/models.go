package handlers

import (
	"net/http"

	"mercator-hq/ganymede/pkg/proxy"
	"mercator-hq/ganymede/pkg/proxy/types"
)

// ModelsHandler serves GET /v1/models with the full alias table.
//
// Each entry's id is the routable alias ("<provider>/<model>"), not the
// upstream model name; the response is what clients should echo back in the
// model field of a completion request.
type ModelsHandler struct {
	lister ModelLister
}

// NewModelsHandler creates the model listing handler.
func NewModelsHandler(lister ModelLister) *ModelsHandler {
	return &ModelsHandler{lister: lister}
}

// ServeHTTP implements http.Handler.
func (h *ModelsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		proxy.WriteErrorResponse(w, types.NewInvalidRequestError(
			"Method not allowed. Use GET.", "", types.CodeInvalidValue))
		return
	}

	proxy.WriteJSONResponse(w, http.StatusOK, types.NewModelList(h.lister.ListModels()))
}
