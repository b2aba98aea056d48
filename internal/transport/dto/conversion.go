package dto

// TextKey is the payload field holding a document's text.
const TextKey = "text"

// ToPointDTO builds the stored point for a document. Metadata keys are copied
// after the text, so a metadata "text" entry takes precedence.
func ToPointDTO(id string, vector []float64, doc *DocumentDTO) PointDTO {
	payload := make(map[string]any, len(doc.Metadata)+1)
	payload[TextKey] = doc.Text
	for k, v := range doc.Metadata {
		payload[k] = v
	}

	return PointDTO{
		ID:      id,
		Vector:  vector,
		Payload: payload,
	}
}

// MatchText returns the text stored with a hit, or "" when it has none.
func MatchText(p ScoredPointDTO) string {
	text, _ := p.Payload[TextKey].(string)
	return text
}
