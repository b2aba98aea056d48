// Package llm holds the clients used to embed texts and generate answers.
package llm

import (
	"context"
	"errors"

	"github.com/mehdiazizian/cluster-rag-agent/internal/transport"
)

// ErrEmptyEmbedding is returned when the server answers without a vector.
var ErrEmptyEmbedding = errors.New("Empty embedding returned")

// Embedder turns a text into a vector
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Generator completes a prompt
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Client is a full inference backend
type Client interface {
	transport.Upstream
	Embedder
	Generator
}

// Models names the models used for each operation.
type Models struct {
	Embedding  string
	Generation string
}
