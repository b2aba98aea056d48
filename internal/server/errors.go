package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/mehdiazizian/cluster-rag-agent/internal/cluster"
	"github.com/mehdiazizian/cluster-rag-agent/internal/rag"
)

// errorBody is the error format clients of the agent already parse.
type errorBody struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorBody{Detail: detail})
}

// writeError maps a service error to its status code.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	detail := err.Error()

	switch {
	case errors.Is(err, cluster.ErrMetricsUnavailable):
		status = http.StatusNotFound
		detail = "Metrics server not available"
	case errors.Is(err, cluster.ErrInvalidSelector), errors.Is(err, rag.ErrEmptyInput):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		log.FromContext(r.Context()).WithName("http").Error(err, "Request failed", "path", r.URL.Path)
	}
	writeJSONError(w, status, detail)
}
