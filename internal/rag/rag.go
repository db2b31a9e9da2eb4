// Package rag wires loading, embedding, vector search and the LLM into the
// service's three operations: PDF ingestion, scheme search and diet planning.
package rag

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"health-rag/internal/config"
	"health-rag/internal/embedding"
	"health-rag/internal/llmservice"
	"health-rag/internal/parser"
	"health-rag/internal/vectorstore"
)

// ErrCollectionNotFound is returned when a search targets a missing collection.
var ErrCollectionNotFound = errors.New("collection does not exist")

type RAG struct {
	cfg      *config.Config
	store    vectorstore.Store
	encoder  embedding.Encoder
	llm      llmservice.Completer
	loader   parser.Loader
	splitter *parser.Splitter
}

func NewRAG(cfg *config.Config, store vectorstore.Store, encoder embedding.Encoder, llm llmservice.Completer, loader parser.Loader) *RAG {
	return &RAG{
		cfg:      cfg,
		store:    store,
		encoder:  encoder,
		llm:      llm,
		loader:   loader,
		splitter: parser.NewSplitter(cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap),
	}
}

func (r *RAG) requireCollection(ctx context.Context, name string) error {
	exists, err := vectorstore.CollectionExists(ctx, r.store, name)
	if err != nil {
		log.Error().Err(err).Str("collection", name).Msg("Error listing collections")
		return err
	}
	if !exists {
		log.Error().Str("collection", name).Msg("Collection does not exist")
		return fmt.Errorf("%w: %s", ErrCollectionNotFound, name)
	}
	return nil
}

func (r *RAG) embedQuery(ctx context.Context, query string) ([]float32, error) {
	vectors, err := r.encoder.Encode(ctx, []string{query}, r.cfg.EmbedLLM.BatchSize)
	if err != nil {
		log.Error().Err(err).Str("query", query).Msg("Error embedding query")
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, errors.New("embedding model returned no vector")
	}
	return vectors[0], nil
}

func (r *RAG) limitOrDefault(limit int) int {
	if limit <= 0 {
		return r.cfg.RAG.DefaultLimit
	}
	return limit
}
