// Package rag answers questions from stored documents and, on request,
// from the live state of the cluster.
package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/mehdiazizian/cluster-rag-agent/internal/llm"
	"github.com/mehdiazizian/cluster-rag-agent/internal/transport"
	"github.com/mehdiazizian/cluster-rag-agent/internal/transport/dto"
)

// ErrEmptyInput is returned when a document text or a prompt is blank.
var ErrEmptyInput = errors.New("empty input")

// Store persists and searches vectors.
type Store interface {
	transport.Upstream
	CollectionExists(ctx context.Context, name string) (bool, error)
	CreateCollection(ctx context.Context, name string, size int, distance string) error
	Upsert(ctx context.Context, collection string, points ...dto.PointDTO) error
	Search(ctx context.Context, collection string, vector []float64, limit int) ([]dto.ScoredPointDTO, error)
}

// Summarizer describes the live cluster state as text.
type Summarizer interface {
	Summarize(ctx context.Context) (string, error)
}

// Service ties the embedder, the vector store and the generator together.
type Service struct {
	Embedder   llm.Embedder
	Generator  llm.Generator
	Store      Store
	Collection string

	// Cluster is nil when Kubernetes access is disabled
	Cluster Summarizer
}

// Ingest embeds and stores one document under a fresh UUID.
func (s *Service) Ingest(ctx context.Context, doc *dto.DocumentDTO) (*dto.IngestResultDTO, error) {
	if strings.TrimSpace(doc.Text) == "" {
		return nil, fmt.Errorf("%w: text is required", ErrEmptyInput)
	}

	vector, err := s.Embedder.Embed(ctx, doc.Text)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	if err := s.Store.Upsert(ctx, s.Collection, dto.ToPointDTO(id, vector, doc)); err != nil {
		return nil, err
	}

	log.FromContext(ctx).WithName("rag").V(1).Info("Document ingested", "id", id, "collection", s.Collection)
	return &dto.IngestResultDTO{
		Message:    "Document ingested",
		ID:         id,
		TextLength: utf8.RuneCountInString(doc.Text),
	}, nil
}

// Query retrieves the closest documents and asks the generator to answer
// from them.
func (s *Service) Query(ctx context.Context, q *dto.QueryDTO) (*dto.QueryResultDTO, error) {
	matches, err := s.retrieve(ctx, q)
	if err != nil {
		return nil, err
	}

	answer, err := s.Generator.Generate(ctx, BuildPrompt(q.Prompt, matches))
	if err != nil {
		return nil, err
	}

	return &dto.QueryResultDTO{
		Query:    q.Prompt,
		Matches:  matches,
		Response: answer,
	}, nil
}

// ClusterQuery is Query with the live cluster state added to the context
// whenever the prompt mentions cluster resources.
func (s *Service) ClusterQuery(ctx context.Context, q *dto.QueryDTO) (*dto.ClusterQueryResultDTO, error) {
	logger := log.FromContext(ctx).WithName("rag")

	matches, err := s.retrieve(ctx, q)
	if err != nil {
		return nil, err
	}

	clusterAware := IsClusterQuery(q.Prompt)
	clusterContext := ""
	if clusterAware {
		clusterContext = s.clusterContext(ctx)
		logger.V(1).Info("Cluster context fetched", "included", clusterContext != ClusterUnavailable)
	}

	prompt := BuildClusterPrompt(q.Prompt, matches, clusterContext)
	answer, err := s.Generator.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	return &dto.ClusterQueryResultDTO{
		Query:                  q.Prompt,
		ClusterAware:           clusterAware,
		Context:                prompt,
		DocMatches:             len(matches),
		ClusterMetricsIncluded: clusterContext != "" && clusterContext != ClusterUnavailable,
		Response:               answer,
	}, nil
}

func (s *Service) retrieve(ctx context.Context, q *dto.QueryDTO) ([]dto.ScoredPointDTO, error) {
	if strings.TrimSpace(q.Prompt) == "" {
		return nil, fmt.Errorf("%w: prompt is required", ErrEmptyInput)
	}
	topK := q.TopK
	if topK <= 0 {
		topK = dto.DefaultTopK
	}

	vector, err := s.Embedder.Embed(ctx, q.Prompt)
	if err != nil {
		return nil, err
	}
	return s.Store.Search(ctx, s.Collection, vector, topK)
}

func (s *Service) clusterContext(ctx context.Context) string {
	if s.Cluster == nil {
		return ClusterUnavailable
	}
	summary, err := s.Cluster.Summarize(ctx)
	if err != nil {
		log.FromContext(ctx).WithName("rag").Info("Could not fetch cluster metrics", "error", err.Error())
		return ClusterUnavailable
	}
	return summary
}
