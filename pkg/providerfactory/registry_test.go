package providerfactory

import (
	"errors"
	"testing"

	internal "mercator-hq/ganymede/internal/providers"
	"mercator-hq/ganymede/pkg/providers"
)

func mockFactory(client providers.Client) Factory {
	return func(cc providers.ClientConfig) (providers.Client, error) {
		return client, nil
	}
}

func TestRegistry_RegisterAndCreate(t *testing.T) {
	registry := NewRegistry()
	registry.Register("mock", mockFactory(internal.NewMockClient("p1", "mock", "m1")))

	client, err := registry.CreateClient("p1", providers.ClientConfig{Name: "p1", Type: "mock"})
	if err != nil {
		t.Fatalf("CreateClient() failed: %v", err)
	}
	if client.GetName() != "p1" {
		t.Errorf("expected client p1, got %s", client.GetName())
	}
}

func TestRegistry_UnknownType(t *testing.T) {
	registry := NewRegistry()
	registry.Register("openai", mockFactory(internal.NewMockClient("p", "openai")))

	_, err := registry.CreateClient("p", providers.ClientConfig{Name: "p", Type: "anthropic"})
	if !errors.Is(err, ErrUnknownProviderType) {
		t.Fatalf("expected ErrUnknownProviderType, got %v", err)
	}

	var typeErr *UnknownProviderTypeError
	if !errors.As(err, &typeErr) {
		t.Fatalf("expected UnknownProviderTypeError, got %T", err)
	}
	if typeErr.Type != "anthropic" {
		t.Errorf("expected offending type anthropic, got %s", typeErr.Type)
	}
	if len(typeErr.RegisteredTypes) != 1 || typeErr.RegisteredTypes[0] != "openai" {
		t.Errorf("expected registered types [openai], got %v", typeErr.RegisteredTypes)
	}
}

func TestRegistry_LastRegistrationWins(t *testing.T) {
	first := internal.NewMockClient("first", "mock")
	second := internal.NewMockClient("second", "mock")

	registry := NewRegistry()
	registry.Register("mock", mockFactory(first))
	registry.Register("mock", mockFactory(second))

	client, err := registry.CreateClient("p", providers.ClientConfig{Name: "p", Type: "mock"})
	if err != nil {
		t.Fatalf("CreateClient() failed: %v", err)
	}
	if client.GetName() != "second" {
		t.Errorf("expected the later factory to win, got client %s", client.GetName())
	}
}

func TestRegistry_TypesSorted(t *testing.T) {
	registry := NewRegistry()
	registry.Register("generic", mockFactory(internal.NewMockClient("g", "generic")))
	registry.Register("openai", mockFactory(internal.NewMockClient("o", "openai")))
	registry.Register("azure", mockFactory(internal.NewMockClient("a", "azure")))

	types := registry.Types()
	want := []string{"azure", "generic", "openai"}
	if len(types) != len(want) {
		t.Fatalf("expected %d types, got %v", len(want), types)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Errorf("expected types %v, got %v", want, types)
			break
		}
	}
}
