package chromemdb

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/philippgille/chromem-go"
	"github.com/rs/zerolog/log"

	"health-rag/internal/models"
	"health-rag/internal/vectorstore"
)

const (
	metaVectorSize = "vector_size"
	metaDistance   = "distance"
)

// Options configures where and how the chromem database is kept.
type Options struct {
	Path          string
	InMemory      bool
	Compress      bool
	EncryptionKey string
}

// Store is an embedded vector store backed by chromem-go. chromem only ranks
// by cosine similarity, so other distances are rejected.
type Store struct {
	db            *chromem.DB
	dbPath        string
	inMemory      bool
	compress      bool
	encryptionKey string
}

var _ vectorstore.Store = (*Store)(nil)

// NewStore opens a persistent database under opts.Path, or an in-memory one.
func NewStore(opts Options) (*Store, error) {
	var db *chromem.DB
	var err error
	if opts.InMemory {
		db = chromem.NewDB()
	} else {
		db, err = chromem.NewPersistentDB(opts.Path, opts.Compress)
		if err != nil {
			return nil, fmt.Errorf("failed to create database: %w", err)
		}
	}
	log.Info().Str("provider", "chromem").Str("path", opts.Path).Bool("in_memory", opts.InMemory).Msg("chromem vector store selected")

	return &Store{
		db:            db,
		dbPath:        opts.Path,
		inMemory:      opts.InMemory,
		compress:      opts.Compress,
		encryptionKey: opts.EncryptionKey,
	}, nil
}

func (s *Store) ListCollections(_ context.Context) ([]string, error) {
	collections := s.db.ListCollections()
	names := make([]string, 0, len(collections))
	for name := range collections {
		names = append(names, name)
	}
	return names, nil
}

func (s *Store) CreateCollection(_ context.Context, name string, size int, distance string) error {
	if distance == "" {
		distance = vectorstore.DistanceCosine
	}
	if !strings.EqualFold(distance, vectorstore.DistanceCosine) {
		return fmt.Errorf("chromem supports only %s distance, got %q", vectorstore.DistanceCosine, distance)
	}
	metadata := map[string]string{
		metaVectorSize: strconv.Itoa(size),
		metaDistance:   vectorstore.DistanceCosine,
	}
	if _, err := s.db.CreateCollection(name, metadata, nil); err != nil {
		return fmt.Errorf("failed to create collection %s: %w", name, err)
	}
	return nil
}

func (s *Store) Upsert(ctx context.Context, collection string, points []vectorstore.Point) error {
	if len(points) == 0 {
		return nil
	}
	c := s.db.GetCollection(collection, nil)
	if c == nil {
		return fmt.Errorf("collection %s not found", collection)
	}

	docs := make([]chromem.Document, 0, len(points))
	for _, p := range points {
		docs = append(docs, chromem.Document{
			ID:        p.ID,
			Content:   vectorstore.PayloadText(p.Payload),
			Metadata:  toMetadata(p.Payload),
			Embedding: p.Vector,
		})
	}
	if err := c.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("failed to add documents: %w", err)
	}

	if s.inMemory && s.encryptionKey != "" {
		return s.export(collection)
	}
	return nil
}

func (s *Store) Search(ctx context.Context, collection string, vector []float32, limit int) ([]vectorstore.ScoredPoint, error) {
	if vector == nil {
		return nil, fmt.Errorf("query embedding must be provided")
	}
	c := s.db.GetCollection(collection, nil)
	if c == nil {
		return nil, fmt.Errorf("collection %s not found", collection)
	}
	// chromem rejects nResults larger than the collection
	if n := c.Count(); limit > n {
		limit = n
	}
	if limit <= 0 {
		return []vectorstore.ScoredPoint{}, nil
	}

	results, err := c.QueryWithOptions(ctx, chromem.QueryOptions{
		QueryEmbedding: vector,
		NResults:       limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query by similarity: %w", err)
	}

	hits := make([]vectorstore.ScoredPoint, 0, len(results))
	for _, r := range results {
		hits = append(hits, vectorstore.ScoredPoint{
			ID:      r.ID,
			Score:   r.Similarity,
			Payload: fromMetadata(r.Content, r.Metadata),
		})
	}
	return hits, nil
}

// export writes the collection to <path>/<collection>.chromem, encrypted
func (s *Store) export(collection string) error {
	if s.dbPath == "" {
		return fmt.Errorf("db path is required")
	}
	filePath := filepath.Join(s.dbPath, collection+".chromem")
	log.Debug().Str("collection", collection).Str("file", filePath).Bool("compress", s.compress).Msg("Exporting collection")
	if err := s.db.ExportToFile(filePath, s.compress, s.encryptionKey, collection); err != nil {
		return fmt.Errorf("failed to export database: %w", err)
	}
	return nil
}

// toMetadata flattens a payload into chromem's string metadata; text is kept as content.
func toMetadata(payload map[string]any) map[string]string {
	meta := make(map[string]string, len(payload))
	for k, v := range payload {
		if k == models.PayloadTextKey {
			continue
		}
		switch val := v.(type) {
		case string:
			meta[k] = val
		case int:
			meta[k] = strconv.Itoa(val)
		default:
			meta[k] = fmt.Sprint(val)
		}
	}
	return meta
}

func fromMetadata(content string, meta map[string]string) map[string]any {
	payload := make(map[string]any, len(meta)+1)
	for k, v := range meta {
		payload[k] = v
		if k == models.PayloadPageKey || k == models.PayloadChunkKey {
			if n, err := strconv.Atoi(v); err == nil {
				payload[k] = n
			}
		}
	}
	payload[models.PayloadTextKey] = content
	return payload
}
