package models

// Page is one page of extracted document text. Index is 0-based.
type Page struct {
	Index   int
	Content string
}

// Chunk represents a parsed chunk with provenance
type Chunk struct {
	Text    string `json:"text"`
	Source  string `json:"source"`
	Page    int    `json:"page"`
	ChunkID int    `json:"chunk"`
}

// Payload returns the metadata persisted next to the chunk's vector.
func (c Chunk) Payload() map[string]any {
	return map[string]any{
		PayloadTextKey:   c.Text,
		PayloadSourceKey: c.Source,
		PayloadPageKey:   c.Page,
		PayloadChunkKey:  c.ChunkID,
	}
}
