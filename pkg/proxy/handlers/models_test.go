package handlers

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"mercator-hq/ganymede/pkg/providers"
)

type stubLister struct {
	models []providers.ModelInfo
}

func (s *stubLister) ListModels() []providers.ModelInfo {
	return s.models
}

func TestModelsHandler_List(t *testing.T) {
	handler := NewModelsHandler(&stubLister{models: []providers.ModelInfo{
		{ID: "openai/gpt-4o", Object: "model", OwnedBy: "openai"},
		{ID: "local/llama-3-8b", Object: "model", OwnedBy: "local"},
	}})

	r := httptest.NewRequest("GET", "/v1/models", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if w.Code != 200 {
		t.Fatalf("status = %d", w.Code)
	}

	var list struct {
		Object string                `json:"object"`
		Data   []providers.ModelInfo `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	if list.Object != "list" {
		t.Errorf("object = %q, want \"list\"", list.Object)
	}
	if len(list.Data) != 2 {
		t.Fatalf("expected 2 models, got %d", len(list.Data))
	}
	if list.Data[0].ID != "openai/gpt-4o" || list.Data[0].OwnedBy != "openai" {
		t.Errorf("unexpected first model: %+v", list.Data[0])
	}
}

func TestModelsHandler_EmptyList(t *testing.T) {
	handler := NewModelsHandler(&stubLister{})

	r := httptest.NewRequest("GET", "/v1/models", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if w.Code != 200 {
		t.Fatalf("status = %d", w.Code)
	}

	var list struct {
		Data []providers.ModelInfo `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	if len(list.Data) != 0 {
		t.Errorf("expected empty data, got %+v", list.Data)
	}
}

func TestModelsHandler_MethodNotAllowed(t *testing.T) {
	handler := NewModelsHandler(&stubLister{})

	r := httptest.NewRequest("POST", "/v1/models", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if w.Code != 400 {
		t.Errorf("status = %d, want 400", w.Code)
	}
}
