package rag

import (
	"strings"

	"github.com/mehdiazizian/cluster-rag-agent/internal/transport/dto"
)

// ClusterUnavailable replaces the cluster block when it cannot be fetched.
const ClusterUnavailable = "Cluster metrics unavailable."

// clusterKeywords mark a prompt as being about the cluster.
var clusterKeywords = []string{"cpu", "memory", "pod", "node", "cluster", "resource", "usage"}

// IsClusterQuery reports whether prompt mentions a cluster resource.
// Matching is case-insensitive and on substrings, so "Pods" and "nodes" count.
func IsClusterQuery(prompt string) bool {
	lower := strings.ToLower(prompt)
	for _, kw := range clusterKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// BuildPrompt renders the retrieval prompt. Matches without text contribute
// an empty line.
func BuildPrompt(query string, matches []dto.ScoredPointDTO) string {
	texts := make([]string, 0, len(matches))
	for _, m := range matches {
		texts = append(texts, dto.MatchText(m))
	}

	var b strings.Builder
	b.WriteString("Use the context below to answer the user query.\n\n")
	b.WriteString("Context:\n")
	b.WriteString(strings.Join(texts, "\n"))
	b.WriteString("\n\nUser Query:\n")
	b.WriteString(query)
	b.WriteString("\n\nAnswer:")
	return b.String()
}

// BuildClusterPrompt renders the prompt combining documentation matches and
// the cluster block, which may be empty.
func BuildClusterPrompt(query string, matches []dto.ScoredPointDTO, clusterContext string) string {
	docs := make([]string, 0, len(matches))
	for _, m := range matches {
		docs = append(docs, "- "+dto.MatchText(m))
	}

	var b strings.Builder
	b.WriteString("\nYou are an intelligent assistant with access to both documentation and live cluster metrics.\n\n")
	b.WriteString("RELEVANT DOCUMENTATION:\n")
	b.WriteString(strings.Join(docs, "\n"))
	b.WriteString("\n\n")
	b.WriteString(clusterContext)
	b.WriteString("\n\nUSER QUERY:\n")
	b.WriteString(query)
	b.WriteString("\n\nPlease provide a comprehensive answer using both the documentation and cluster state.\n")
	return b.String()
}
