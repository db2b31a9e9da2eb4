package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"health-rag/internal/models"
	"health-rag/internal/parser"
	"health-rag/internal/vectorstore"
)

// NutritionRecommendation builds a seven-day diet plan for the described
// pregnancy from the nutrition collection and the inference LLM.
func (r *RAG) NutritionRecommendation(ctx context.Context, query string, limit int) (models.NutritionResponse, error) {
	collection := r.cfg.RAG.NutritionCollection
	limit = r.limitOrDefault(limit)
	log.Info().Str("query", query).Int("limit", limit).Msg("Getting nutrition recommendation")

	if err := r.cfg.ValidateVectorStore(); err != nil {
		log.Error().Err(err).Msg("Missing required configuration")
		return models.NutritionResponse{}, err
	}
	if err := r.cfg.ValidateLLM(); err != nil {
		log.Error().Err(err).Msg("Missing required configuration")
		return models.NutritionResponse{}, err
	}
	if err := r.requireCollection(ctx, collection); err != nil {
		return models.NutritionResponse{}, err
	}

	vector, err := r.embedQuery(ctx, query)
	if err != nil {
		return models.NutritionResponse{}, err
	}
	hits, err := r.store.Search(ctx, collection, vector, limit)
	if err != nil {
		log.Error().Err(err).Str("collection", collection).Msg("Error searching collection")
		return models.NutritionResponse{}, err
	}

	snippets := make([]string, 0, len(hits))
	for _, hit := range hits {
		snippets = append(snippets, vectorstore.PayloadText(hit.Payload))
	}
	region := parser.ExtractRegion(query)
	prompt := fmt.Sprintf(models.NutritionPromptTemplate, query, strings.Join(snippets, "\n\n"), region)

	text, err := r.llm.Complete(ctx, prompt)
	if err != nil {
		log.Error().Err(err).Msg("Error generating diet recommendation")
		return models.NutritionResponse{}, err
	}

	resp := parser.ParseDietPlan(text, region)
	if resp.Note != "" {
		log.Warn().Str("region", region).Msg("Diet plan was not valid JSON, structured from text")
	}
	return resp, nil
}
