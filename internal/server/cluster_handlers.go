package server

import (
	"net/http"
)

func queryParam(r *http.Request, key, def string) string {
	if v := r.URL.Query().Get(key); v != "" {
		return v
	}
	return def
}

func (s *Server) handleClusterCPU(w http.ResponseWriter, r *http.Request) {
	res, err := s.Cluster.ClusterCPU(r.Context())
	respond(w, r, res, err)
}

func (s *Server) handleClusterMemory(w http.ResponseWriter, r *http.Request) {
	res, err := s.Cluster.ClusterMemory(r.Context())
	respond(w, r, res, err)
}

func (s *Server) handleClusterInfo(w http.ResponseWriter, r *http.Request) {
	res, err := s.Cluster.Info(r.Context())
	respond(w, r, res, err)
}

func (s *Server) handleNodeMetrics(w http.ResponseWriter, r *http.Request) {
	res, err := s.Cluster.NodeMetrics(r.Context(), r.URL.Query().Get("node_name"))
	respond(w, r, res, err)
}

func (s *Server) handlePods(w http.ResponseWriter, r *http.Request) {
	res, err := s.Cluster.Pods(r.Context(),
		queryParam(r, "namespace", "all"),
		r.URL.Query().Get("label_selector"))
	respond(w, r, res, err)
}

func (s *Server) handlePodMetrics(w http.ResponseWriter, r *http.Request) {
	res, err := s.Cluster.PodMetrics(r.Context(),
		queryParam(r, "namespace", "all"),
		r.URL.Query().Get("pod_name"))
	respond(w, r, res, err)
}

func (s *Server) handleNamespaces(w http.ResponseWriter, r *http.Request) {
	res, err := s.Cluster.Namespaces(r.Context())
	respond(w, r, res, err)
}

func respond(w http.ResponseWriter, r *http.Request, v any, err error) {
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}
