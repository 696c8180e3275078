package types

import "mercator-hq/ganymede/pkg/providers"

// ModelList is the envelope for the model listing endpoint.
type ModelList struct {
	// Object is always "list".
	Object string `json:"object"`

	// Data contains one record per resolvable model alias, sorted by id.
	Data []providers.ModelInfo `json:"data"`
}

// NewModelList wraps model records in the list envelope.
func NewModelList(models []providers.ModelInfo) *ModelList {
	if models == nil {
		models = []providers.ModelInfo{}
	}
	return &ModelList{
		Object: "list",
		Data:   models,
	}
}
