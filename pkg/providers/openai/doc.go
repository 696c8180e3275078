// Package openai implements the OpenAI provider adapter.
//
// This package provides an implementation of the providers.Client interface
// for OpenAI's chat completions API and for hosted OpenAI-compatible
// services that require bearer authentication.
//
// # Basic Usage
//
//	config := providers.ClientConfig{
//	    Name:     "openai",
//	    Type:     "openai",
//	    Endpoint: "https://api.openai.com/v1",
//	    APIKey:   os.Getenv("OPENAI_API_KEY"),
//	}
//
//	client, err := openai.NewClient(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	if err := client.Create(context.Background()); err != nil {
//	    log.Fatal(err)
//	}
//
//	resp, err := client.Completion(context.Background(), &providers.ChatCompletionRequest{
//	    Model: "gpt-4",
//	    Messages: []providers.Message{
//	        {Role: "user", Content: "Hello!"},
//	    },
//	})
//
// The adapter issues only non-streaming upstream calls; client-facing
// streaming is emulated at the proxy layer.
package openai
