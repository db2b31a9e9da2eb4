package models

const (
	StatusSuccess = "success"
	StatusWarning = "warning"
)

type IngestResult struct {
	Status      string `json:"status"`
	Message     string `json:"message"`
	ChunksCount int    `json:"chunks_count,omitempty"`
}
