package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	transporthttp "github.com/mehdiazizian/cluster-rag-agent/internal/transport/http"
)

// OllamaEndpoints are the native API URLs.
type OllamaEndpoints struct {
	// Generate is e.g. http://ollama:11434/api/generate
	Generate string
	// Embed is e.g. http://ollama:11434/api/embeddings
	Embed string
}

// OllamaClient talks to the native Ollama API.
type OllamaClient struct {
	http      *transporthttp.Client
	endpoints OllamaEndpoints
	models    Models
}

var _ Client = &OllamaClient{}

// NewOllamaClient creates a client for the given endpoints.
func NewOllamaClient(endpoints OllamaEndpoints, models Models, c *transporthttp.Client) *OllamaClient {
	return &OllamaClient{http: c, endpoints: endpoints, models: models}
}

type embedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type embedResponse struct {
	Embedding  []float64 `json:"embedding"`
	Embeddings []float64 `json:"embeddings"`
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// Embed returns the embedding of text.
func (o *OllamaClient) Embed(ctx context.Context, text string) ([]float64, error) {
	var resp embedResponse
	req := embedRequest{Model: o.models.Embedding, Prompt: text}
	if err := o.http.DoJSON(ctx, http.MethodPost, o.endpoints.Embed, req, &resp); err != nil {
		return nil, fmt.Errorf("failed to embed text: %w", err)
	}

	vector := resp.Embedding
	if len(vector) == 0 {
		vector = resp.Embeddings
	}
	if len(vector) == 0 {
		return nil, ErrEmptyEmbedding
	}
	return vector, nil
}

// Generate completes prompt without streaming.
func (o *OllamaClient) Generate(ctx context.Context, prompt string) (string, error) {
	var resp generateResponse
	req := generateRequest{Model: o.models.Generation, Prompt: prompt}
	if err := o.http.DoJSON(ctx, http.MethodPost, o.endpoints.Generate, req, &resp); err != nil {
		return "", fmt.Errorf("failed to generate response: %w", err)
	}
	return resp.Response, nil
}

// Ping lists the local models.
func (o *OllamaClient) Ping(ctx context.Context) error {
	tags, err := TagsURL(o.endpoints.Generate)
	if err != nil {
		return err
	}
	return o.http.Ping(ctx, tags)
}

// Close releases idle connections.
func (o *OllamaClient) Close() error {
	return o.http.Close()
}

// TagsURL derives the model listing URL from any API URL on the same server.
func TagsURL(apiURL string) (string, error) {
	u, err := url.Parse(apiURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse Ollama URL %q: %w", apiURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("failed to parse Ollama URL %q: missing scheme or host", apiURL)
	}
	return u.Scheme + "://" + u.Host + "/api/tags", nil
}
