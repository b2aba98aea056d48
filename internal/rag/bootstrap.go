package rag

import (
	"context"
	"time"

	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/mehdiazizian/cluster-rag-agent/internal/transport"
	"github.com/mehdiazizian/cluster-rag-agent/internal/transport/dto"
	transporthttp "github.com/mehdiazizian/cluster-rag-agent/internal/transport/http"
)

// BootstrapOptions drives the startup initialization.
type BootstrapOptions struct {
	VectorSize int
	Distance   string

	// Attempts and Interval bound the wait for each upstream
	Attempts int
	Interval time.Duration

	// Documents are ingested into a newly created collection
	Documents []dto.DocumentDTO
}

// BootstrapReport summarizes what Bootstrap did.
type BootstrapReport struct {
	Ready             bool
	CollectionCreated bool
	Ingested          int
	Failed            int
}

// Bootstrap waits for the vector store and the inference server, then
// creates the collection and seeds it with documents when it does not exist
// yet. Failures are logged and stop the initialization; they never abort the
// process.
func (s *Service) Bootstrap(ctx context.Context, inference transport.Upstream, opts BootstrapOptions) *BootstrapReport {
	logger := log.FromContext(ctx).WithName("bootstrap")
	report := &BootstrapReport{}

	logger.Info("Starting initialization", "collection", s.Collection)

	if err := transporthttp.NewReadinessPoller("Qdrant", s.Store, opts.Attempts, opts.Interval).Wait(ctx); err != nil {
		logger.Info("Qdrant not ready, skipping initialization", "error", err.Error())
		return report
	}
	if err := transporthttp.NewReadinessPoller("Ollama", inference, opts.Attempts, opts.Interval).Wait(ctx); err != nil {
		logger.Info("Ollama not ready, skipping auto-ingestion", "error", err.Error())
		return report
	}
	report.Ready = true

	exists, err := s.Store.CollectionExists(ctx, s.Collection)
	if err != nil {
		logger.Info("Could not check collection, assuming it is missing", "collection", s.Collection, "error", err.Error())
		exists = false
	}
	if exists {
		logger.Info("Collection already exists", "collection", s.Collection)
		logger.Info("Startup complete")
		return report
	}

	logger.Info("Creating collection", "collection", s.Collection, "size", opts.VectorSize, "distance", opts.Distance)
	if err := s.Store.CreateCollection(ctx, s.Collection, opts.VectorSize, opts.Distance); err != nil {
		logger.Error(err, "Startup initialization failed")
		return report
	}
	report.CollectionCreated = true

	logger.Info("Ingesting sample documents", "count", len(opts.Documents))
	for i := range opts.Documents {
		if _, err := s.Ingest(ctx, &opts.Documents[i]); err != nil {
			report.Failed++
			logger.Info("Failed to ingest document", "index", i+1, "error", err.Error())
			continue
		}
		report.Ingested++
		logger.V(1).Info("Ingested document", "index", i+1, "total", len(opts.Documents))
	}

	logger.Info("Sample documents ingested",
		"succeeded", report.Ingested, "total", len(opts.Documents))
	logger.Info("Startup complete")
	return report
}
