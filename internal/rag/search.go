package rag

import (
	"context"

	"github.com/rs/zerolog/log"

	"health-rag/internal/models"
	"health-rag/internal/parser"
	"health-rag/internal/vectorstore"
)

// Search returns the closest chunks of collection, each parsed into a scheme record.
func (r *RAG) Search(ctx context.Context, query, collection string, limit int) (models.SearchResponse, error) {
	if collection == "" {
		collection = r.cfg.RAG.DefaultCollection
	}
	limit = r.limitOrDefault(limit)
	log.Info().Str("query", query).Str("collection", collection).Int("limit", limit).Msg("Performing semantic search")

	if err := r.cfg.ValidateVectorStore(); err != nil {
		log.Error().Err(err).Msg("Vector store is not configured")
		return models.SearchResponse{}, err
	}
	if err := r.requireCollection(ctx, collection); err != nil {
		return models.SearchResponse{}, err
	}

	vector, err := r.embedQuery(ctx, query)
	if err != nil {
		return models.SearchResponse{}, err
	}
	hits, err := r.store.Search(ctx, collection, vector, limit)
	if err != nil {
		log.Error().Err(err).Str("collection", collection).Msg("Error searching collection")
		return models.SearchResponse{}, err
	}
	log.Info().Int("results", len(hits)).Msg("Found results")

	results := make([]models.SchemeRecord, 0, len(hits))
	for i, hit := range hits {
		record := parser.ParseScheme(vectorstore.PayloadText(hit.Payload))
		record.ResultID = i + 1
		results = append(results, record)
	}
	return models.SearchResponse{Results: results}, nil
}
