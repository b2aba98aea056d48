package dto

// PointDTO is one vector with its payload, as stored in a collection
type PointDTO struct {
	ID      string         `json:"id"`
	Vector  []float64      `json:"vector"`
	Payload map[string]any `json:"payload"`
}

// ScoredPointDTO is a search hit. ID is a UUID string or an unsigned integer,
// so it is kept as decoded.
type ScoredPointDTO struct {
	ID      any            `json:"id"`
	Version int64          `json:"version"`
	Score   float64        `json:"score"`
	Payload map[string]any `json:"payload,omitempty"`
}
