// Package server exposes the retrieval and cluster operations over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"sigs.k8s.io/controller-runtime/pkg/healthz"

	"github.com/mehdiazizian/cluster-rag-agent/internal/cluster"
	"github.com/mehdiazizian/cluster-rag-agent/internal/metrics"
	"github.com/mehdiazizian/cluster-rag-agent/internal/transport"
	"github.com/mehdiazizian/cluster-rag-agent/internal/transport/dto"
)

// RAG is the retrieval-augmented generation service.
type RAG interface {
	Ingest(ctx context.Context, doc *dto.DocumentDTO) (*dto.IngestResultDTO, error)
	Query(ctx context.Context, q *dto.QueryDTO) (*dto.QueryResultDTO, error)
	ClusterQuery(ctx context.Context, q *dto.QueryDTO) (*dto.ClusterQueryResultDTO, error)
}

// Server holds the dependencies of the HTTP handlers.
type Server struct {
	RAG RAG

	// Cluster is nil when Kubernetes access is disabled
	Cluster cluster.Interface

	Store     transport.Upstream
	Inference transport.Upstream

	Recorder *metrics.Recorder
	Gatherer prometheus.Gatherer
	Logger   logr.Logger
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(
			next,
			"http.server",
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				return r.Method + " " + r.URL.Path
			}),
		)
	})
	r.Use(s.traceIDMiddleware)
	r.Use(s.requestLogMiddleware)

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)
	r.Mount("/healthz", http.StripPrefix("/healthz", &healthz.Handler{
		Checks: map[string]healthz.Checker{"ping": healthz.Ping},
	}))
	r.Mount("/readyz", http.StripPrefix("/readyz", &healthz.Handler{
		Checks: map[string]healthz.Checker{
			"qdrant": upstreamCheck(s.Store),
			"ollama": upstreamCheck(s.Inference),
		},
	}))
	if s.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Post("/ingest", s.handleIngest)
	r.Post("/query", s.handleQuery)
	r.Post("/query/cluster", s.handleClusterQuery)

	r.Route("/k8s", func(r chi.Router) {
		r.Use(s.requireCluster)
		r.Get("/cluster/cpu", s.handleClusterCPU)
		r.Get("/cluster/memory", s.handleClusterMemory)
		r.Get("/cluster/info", s.handleClusterInfo)
		r.Get("/nodes/metrics", s.handleNodeMetrics)
		r.Get("/pods", s.handlePods)
		r.Get("/pods/metrics", s.handlePodMetrics)
		r.Get("/namespaces", s.handleNamespaces)
	})

	return r
}

func upstreamCheck(u transport.Upstream) healthz.Checker {
	return func(req *http.Request) error {
		if u == nil {
			return errors.New("not configured")
		}
		return u.Ping(req.Context())
	}
}

// Run serves handler on addr until ctx is cancelled, then drains in-flight
// requests for at most shutdownTimeout.
func Run(ctx context.Context, addr string, handler http.Handler, shutdownTimeout time.Duration, logger logr.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "address", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("failed to serve HTTP on %s: %w", addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down HTTP server: %w", err)
	}
	logger.Info("HTTP server stopped")
	return nil
}
