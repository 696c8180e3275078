// Package generic implements a generic OpenAI-compatible provider adapter.
//
// This package provides an implementation of the providers.Client interface
// for any server that speaks the OpenAI API format, including:
//
//   - Ollama (http://localhost:11434/v1)
//   - LM Studio (http://localhost:1234/v1)
//   - vLLM (http://localhost:8000/v1)
//   - LocalAI (http://localhost:8080/v1)
//   - Custom OpenAI-compatible endpoints
//
// # Basic Usage
//
//	config := providers.ClientConfig{
//	    Name:     "ollama",
//	    Type:     "generic",
//	    Endpoint: "http://localhost:11434/v1",
//	    // API key is optional for local providers
//	}
//
//	client, err := generic.NewClient(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
// Servers without a /models endpoint still validate successfully; they just
// register no model aliases until the endpoint becomes available.
package generic
