// Package vectordb talks to a Qdrant server over its REST API.
package vectordb

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/mehdiazizian/cluster-rag-agent/internal/transport/dto"
	transporthttp "github.com/mehdiazizian/cluster-rag-agent/internal/transport/http"
)

// Distance names accepted by Qdrant.
const (
	DistanceCosine = "Cosine"
	DistanceDot    = "Dot"
	DistanceEuclid = "Euclid"
)

// QdrantClient is a minimal Qdrant REST client.
type QdrantClient struct {
	http    *transporthttp.Client
	baseURL string
}

// NewQdrantClient returns a client for the server at baseURL, e.g. http://qdrant:6333.
func NewQdrantClient(baseURL string, c *transporthttp.Client) *QdrantClient {
	return &QdrantClient{http: c, baseURL: baseURL}
}

type vectorParams struct {
	Size     int    `json:"size"`
	Distance string `json:"distance"`
}

type createCollectionRequest struct {
	Vectors vectorParams `json:"vectors"`
}

type upsertRequest struct {
	Points []dto.PointDTO `json:"points"`
}

type searchRequest struct {
	Vector      []float64 `json:"vector"`
	Limit       int       `json:"limit"`
	WithPayload bool      `json:"with_payload"`
}

type searchResponse struct {
	Result []dto.ScoredPointDTO `json:"result"`
}

// Ping lists collections, which succeeds once the server is up.
func (q *QdrantClient) Ping(ctx context.Context) error {
	return q.http.Ping(ctx, q.url("collections"))
}

// Close releases idle connections.
func (q *QdrantClient) Close() error {
	return q.http.Close()
}

// CollectionExists reports whether the collection is defined.
func (q *QdrantClient) CollectionExists(ctx context.Context, name string) (bool, error) {
	err := q.http.DoJSON(ctx, http.MethodGet, q.url("collections", name), nil, nil)
	switch {
	case err == nil:
		return true, nil
	case transporthttp.IsStatus(err, http.StatusNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("failed to get collection %s: %w", name, err)
	}
}

// CreateCollection defines a collection of vectors of the given size.
func (q *QdrantClient) CreateCollection(ctx context.Context, name string, size int, distance string) error {
	req := createCollectionRequest{Vectors: vectorParams{Size: size, Distance: distance}}
	if err := q.http.DoJSON(ctx, http.MethodPut, q.url("collections", name), req, nil); err != nil {
		return fmt.Errorf("failed to create collection %s: %w", name, err)
	}
	return nil
}

// Upsert inserts or replaces points.
func (q *QdrantClient) Upsert(ctx context.Context, collection string, points ...dto.PointDTO) error {
	req := upsertRequest{Points: points}
	if err := q.http.DoJSON(ctx, http.MethodPut, q.url("collections", collection, "points"), req, nil); err != nil {
		return fmt.Errorf("failed to upsert points: %w", err)
	}
	return nil
}

// Search returns the limit nearest points with their payloads.
func (q *QdrantClient) Search(ctx context.Context, collection string, vector []float64, limit int) ([]dto.ScoredPointDTO, error) {
	req := searchRequest{Vector: vector, Limit: limit, WithPayload: true}
	var resp searchResponse
	if err := q.http.DoJSON(ctx, http.MethodPost, q.url("collections", collection, "points", "search"), req, &resp); err != nil {
		return nil, fmt.Errorf("failed to search points: %w", err)
	}
	if resp.Result == nil {
		resp.Result = []dto.ScoredPointDTO{}
	}
	return resp.Result, nil
}

func (q *QdrantClient) url(segments ...string) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	return transporthttp.JoinURL(q.baseURL, strings.Join(escaped, "/"))
}
