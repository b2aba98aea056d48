package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"

	transporthttp "github.com/mehdiazizian/cluster-rag-agent/internal/transport/http"
)

// OpenAIClient uses the OpenAI-compatible endpoints Ollama serves under /v1.
type OpenAIClient struct {
	client  *openai.Client
	http    *transporthttp.Client
	baseURL string
	models  Models
}

var _ Client = &OpenAIClient{}

// NewOpenAIClient creates a client for baseURL, e.g. http://ollama:11434/v1.
// Requests go through c, so they share its timeout, tracing and breaker.
func NewOpenAIClient(baseURL, apiKey string, models Models, c *transporthttp.Client) *OpenAIClient {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL
	cfg.HTTPClient = c.HTTPClient()

	return &OpenAIClient{
		client:  openai.NewClientWithConfig(cfg),
		http:    c,
		baseURL: baseURL,
		models:  models,
	}
}

// Embed returns the embedding of text.
func (o *OpenAIClient) Embed(ctx context.Context, text string) ([]float64, error) {
	resp, err := o.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(o.models.Embedding),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to embed text: %w", describeAPIError(err))
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, ErrEmptyEmbedding
	}

	vector := make([]float64, len(resp.Data[0].Embedding))
	for i, v := range resp.Data[0].Embedding {
		vector[i] = float64(v)
	}
	return vector, nil
}

// Generate sends prompt as a single user message.
func (o *OpenAIClient) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.models.Generation,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate response: %w", describeAPIError(err))
	}

	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

// Ping lists the served models.
func (o *OpenAIClient) Ping(ctx context.Context) error {
	return o.http.Ping(ctx, transporthttp.JoinURL(o.baseURL, "models"))
}

// Close releases idle connections.
func (o *OpenAIClient) Close() error {
	return o.http.Close()
}

func describeAPIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("Ollama error: status %d: %w", apiErr.HTTPStatusCode, err)
	}
	return err
}
