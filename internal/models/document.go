package models

// Document represents normalized content from either remote service: a page,
// a page comment, an issue, or a search hit. Instances are built fresh per
// request, never mutated after construction, and never persisted.
type Document struct {
	PageContent string         `json:"content"`
	Metadata    map[string]any `json:"metadata"`
}

// NewDocument creates a Document, normalizing nil metadata to an empty map so
// serialized results always carry a metadata object.
func NewDocument(content string, metadata map[string]any) *Document {
	if metadata == nil {
		metadata = map[string]any{}
	}
	return &Document{PageContent: content, Metadata: metadata}
}
