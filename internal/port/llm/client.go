// Package llm defines the large-language-model collaborator port.
package llm

import "context"

// Client is the port interface for a text-generation provider. Ask sends a
// single prompt and returns the raw model response. No streaming, no partial
// results, no guaranteed output schema — downstream formatting must be
// defensive about the returned text.
type Client interface {
	// Name returns the provider identifier (e.g. "gemini", "deepseek").
	Name() string

	// Ask sends promptText to the given model and returns the response text.
	Ask(ctx context.Context, model, promptText string) (string, error)
}
