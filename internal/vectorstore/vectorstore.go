// Package vectorstore defines the contract shared by every vector database backend.
package vectorstore

import (
	"context"
	"fmt"
	"strconv"

	"health-rag/internal/models"
)

const DistanceCosine = "Cosine"

// Point is an embedding with its payload, keyed by a UUID string.
type Point struct {
	ID      string
	Vector  []float32
	Payload map[string]any
}

// ScoredPoint is a search hit; higher scores are closer.
type ScoredPoint struct {
	ID      string
	Score   float32
	Payload map[string]any
}

type Store interface {
	ListCollections(ctx context.Context) ([]string, error)
	CreateCollection(ctx context.Context, name string, size int, distance string) error
	Upsert(ctx context.Context, collection string, points []Point) error
	Search(ctx context.Context, collection string, vector []float32, limit int) ([]ScoredPoint, error)
}

// CollectionExists reports whether name is among the store's collections.
func CollectionExists(ctx context.Context, s Store, name string) (bool, error) {
	names, err := s.ListCollections(ctx)
	if err != nil {
		return false, fmt.Errorf("list collections: %w", err)
	}
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

// PayloadText returns the chunk text stored under the payload's text key.
func PayloadText(payload map[string]any) string {
	switch v := payload[models.PayloadTextKey].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// PayloadInt reads an integer payload field regardless of how the backend decoded it.
func PayloadInt(payload map[string]any, key string) (int, bool) {
	switch v := payload[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	case float32:
		return int(v), true
	case string:
		n, err := strconv.Atoi(v)
		return n, err == nil
	default:
		return 0, false
	}
}
