package server

import (
	"encoding/json"
	"net/http"

	"github.com/mehdiazizian/cluster-rag-agent/internal/transport/dto"
)

type healthResponse struct {
	Status     string `json:"status"`
	K8sEnabled bool   `json:"k8s_enabled"`
}

type readyResponse struct {
	Ready bool `json:"ready"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", K8sEnabled: s.Cluster != nil})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := upstreamCheck(s.Store)(r); err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, readyResponse{Ready: true})
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var doc dto.DocumentDTO
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	res, err := s.RAG.Ingest(r.Context(), &doc)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	q, ok := decodeQuery(w, r)
	if !ok {
		return
	}

	res, err := s.RAG.Query(r.Context(), q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleClusterQuery(w http.ResponseWriter, r *http.Request) {
	q, ok := decodeQuery(w, r)
	if !ok {
		return
	}

	res, err := s.RAG.ClusterQuery(r.Context(), q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func decodeQuery(w http.ResponseWriter, r *http.Request) (*dto.QueryDTO, bool) {
	var q dto.QueryDTO
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return nil, false
	}
	return &q, true
}
