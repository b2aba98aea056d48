package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"sigs.k8s.io/controller-runtime/pkg/log"
)

// TraceIDHeader carries the request's trace ID in both directions.
const TraceIDHeader = "X-Trace-ID"

// frontend labels HTTP requests in the request counter.
const frontend = "http"

// traceIDMiddleware reuses or generates a trace ID, echoes it back and binds
// it to the request's logger.
func (s *Server) traceIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get(TraceIDHeader)
		if traceID == "" {
			traceID = uuid.New().String()
		}
		w.Header().Set(TraceIDHeader, traceID)

		ctx := log.IntoContext(r.Context(), s.Logger.WithValues("traceID", traceID))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requestLogMiddleware logs and counts one line per request.
func (s *Server) requestLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		operation := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			operation = rctx.RoutePattern()
		}
		s.Recorder.RecordRequest(frontend, operation, strconv.Itoa(status))

		log.FromContext(r.Context()).WithName("http").Info("Request served",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"latencyMs", time.Since(start).Milliseconds(),
		)
	})
}

// requireCluster answers 503 while Kubernetes access is disabled.
func (s *Server) requireCluster(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.Cluster == nil {
			writeJSONError(w, http.StatusServiceUnavailable, "K8s client not available")
			return
		}
		next.ServeHTTP(w, r)
	})
}
