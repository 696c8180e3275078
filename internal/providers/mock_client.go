package providers

import (
	"context"
	"sync"

	"mercator-hq/ganymede/pkg/providers"
)

// MockClient is an in-memory providers.Client double for registry,
// directory, and routing tests.
type MockClient struct {
	Name string
	Type string

	// ModelList is returned by Models and RefreshModels.
	ModelList []providers.ModelInfo

	// CreateErr, ModelsErr, RefreshErr, and CompletionErr force the
	// corresponding method to fail.
	CreateErr     error
	ModelsErr     error
	RefreshErr    error
	CompletionErr error

	// CompletionResp is returned by Completion when CompletionErr is nil.
	CompletionResp *providers.ChatCompletionResponse

	// CompletionFunc, when set, overrides CompletionResp/CompletionErr.
	CompletionFunc func(ctx context.Context, req *providers.ChatCompletionRequest) (*providers.ChatCompletionResponse, error)

	mu              sync.Mutex
	completionCalls []*providers.ChatCompletionRequest
	refreshCalls    int
	closed          bool
}

// NewMockClient creates a mock with the given name, type, and model IDs.
func NewMockClient(name, providerType string, modelIDs ...string) *MockClient {
	models := make([]providers.ModelInfo, 0, len(modelIDs))
	for _, id := range modelIDs {
		models = append(models, providers.ModelInfo{ID: id, Object: "model", OwnedBy: name})
	}
	return &MockClient{
		Name:      name,
		Type:      providerType,
		ModelList: models,
	}
}

func (m *MockClient) GetName() string { return m.Name }
func (m *MockClient) GetType() string { return m.Type }

func (m *MockClient) Create(ctx context.Context) error {
	return m.CreateErr
}

func (m *MockClient) Completion(ctx context.Context, req *providers.ChatCompletionRequest) (*providers.ChatCompletionResponse, error) {
	m.mu.Lock()
	m.completionCalls = append(m.completionCalls, req)
	m.mu.Unlock()

	if m.CompletionFunc != nil {
		return m.CompletionFunc(ctx, req)
	}
	if m.CompletionErr != nil {
		return nil, m.CompletionErr
	}
	return m.CompletionResp, nil
}

func (m *MockClient) Models(ctx context.Context) ([]providers.ModelInfo, error) {
	if m.ModelsErr != nil {
		return nil, m.ModelsErr
	}
	return m.ModelList, nil
}

func (m *MockClient) RefreshModels(ctx context.Context) ([]providers.ModelInfo, error) {
	m.mu.Lock()
	m.refreshCalls++
	m.mu.Unlock()

	if m.RefreshErr != nil {
		return nil, m.RefreshErr
	}
	return m.ModelList, nil
}

func (m *MockClient) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// CompletionCalls returns a copy of the requests passed to Completion.
func (m *MockClient) CompletionCalls() []*providers.ChatCompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	calls := make([]*providers.ChatCompletionRequest, len(m.completionCalls))
	copy(calls, m.completionCalls)
	return calls
}

// RefreshCalls returns how many times RefreshModels ran.
func (m *MockClient) RefreshCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.refreshCalls
}

// Closed reports whether Close was called.
func (m *MockClient) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
