// Package llm sends word enrichment prompts to hosted language models.
//
// Every provider takes the same single-turn Request: a system prompt, one
// user prompt and an optional JSON schema the reply must satisfy. NewProvider
// stacks retry, request logging and reply checks on top of the SDK client.
package llm

import (
	"context"
	"encoding/json"
)

// Provider generates a reply for one prompt.
type Provider interface {
	Generate(ctx context.Context, req Request) (*Response, error)

	// Name is the provider family, e.g. "anthropic".
	Name() string

	// Model is the configured model ID.
	Model() string
}

// Request is a single-turn prompt.
type Request struct {
	System string
	Prompt string

	// Schema, when set, asks the provider for JSON output and the reply is
	// validated against it.
	Schema *Schema

	MaxTokens   int
	Temperature float64
}

// Schema is a named JSON Schema document.
type Schema struct {
	// Name is a kebab-case identifier, e.g. "word-enrichment".
	Name        string
	Description string
	Definition  map[string]any
}

// Response is a provider reply.
type Response struct {
	Content json.RawMessage
	Usage   Usage

	// Model is the model that served the request as reported by the API.
	Model string

	// Truncated is set when generation stopped at MaxTokens.
	Truncated bool
}

// Usage is the token count of one request.
type Usage struct {
	InputTokens  int
	OutputTokens int
}
