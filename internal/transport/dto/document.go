package dto

// DocumentDTO is a text to be embedded and stored, with free-form metadata
type DocumentDTO struct {
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// IngestResultDTO is returned once a document is stored
type IngestResultDTO struct {
	Message    string `json:"message"`
	ID         string `json:"id"`
	TextLength int    `json:"text_length"` // Unicode code points
}

// QueryDTO asks a question against the stored documents
type QueryDTO struct {
	Prompt string `json:"prompt"`
	TopK   int    `json:"top_k,omitempty"` // <= 0 means DefaultTopK
}

// DefaultTopK is the number of matches retrieved when a query does not say.
const DefaultTopK = 3

// QueryResultDTO carries the raw matches and the generated answer
type QueryResultDTO struct {
	Query    string           `json:"query"`
	Matches  []ScoredPointDTO `json:"matches"`
	Response string           `json:"response"`
}

// ClusterQueryResultDTO is the answer to a query enriched with live cluster state
type ClusterQueryResultDTO struct {
	Query                  string `json:"query"`
	ClusterAware           bool   `json:"cluster_aware"`
	Context                string `json:"context"`
	DocMatches             int    `json:"doc_matches"`
	ClusterMetricsIncluded bool   `json:"cluster_metrics_included"`
	Response               string `json:"response"`
}
