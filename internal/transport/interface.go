package transport

import (
	"context"
)

// Upstream is an external service the agent depends on
// Implementations: Qdrant REST, Ollama native API, OpenAI-compatible API
type Upstream interface {
	// Ping checks that the service answers
	Ping(ctx context.Context) error

	// Close releases pooled connections
	Close() error
}
