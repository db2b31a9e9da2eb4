package embedding

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"health-rag/internal/config"
)

// LangchainBackend adapts a sentence-level langchaingo embedder. Each
// sentence vector is reported as a single token so pooling leaves it intact.
type LangchainBackend struct {
	embedder embeddings.Embedder
}

func NewLangchainBackend(embedder embeddings.Embedder) *LangchainBackend {
	return &LangchainBackend{embedder: embedder}
}

func (b *LangchainBackend) EmbedTokens(ctx context.Context, texts []string) ([]TokenOutput, error) {
	vectors, err := b.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, err
	}
	outputs := make([]TokenOutput, len(vectors))
	for i, v := range vectors {
		outputs[i] = TokenOutput{Tokens: [][]float32{v}, Mask: []float32{1}}
	}
	return outputs, nil
}

// NewOpenAIEmbedder creates an embedder against an OpenAI-compatible endpoint
func NewOpenAIEmbedder(cfg config.LLMConfig) (*embeddings.EmbedderImpl, error) {
	log.Debug().Interface("config", map[string]string{
		"base_url":        cfg.BaseURL,
		"embedding_model": cfg.Model,
	}).Msg("Loaded embedding config")

	opts := []openai.Option{
		openai.WithToken(strings.TrimPrefix(cfg.Key, "Bearer ")),
		openai.WithEmbeddingModel(cfg.Model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	llm, err := openai.New(opts...)
	if err != nil {
		log.Error().Err(err).Msg("Error initializing embedding LLM")
		return nil, err
	}
	embedder, err := embeddings.NewEmbedder(llm, embeddings.WithBatchSize(batchSize(cfg)))
	if err != nil {
		log.Error().Err(err).Msg("Error creating embedder")
		return nil, err
	}
	return embedder, nil
}

// new ollama embedder
func NewOllamaEmbedder(cfg config.LLMConfig) (*embeddings.EmbedderImpl, error) {
	log.Debug().Interface("config", map[string]string{
		"base_url":        cfg.BaseURL,
		"embedding_model": cfg.Model,
	}).Msg("Loaded embedding config")

	opts := []ollama.Option{ollama.WithModel(cfg.Model)}
	if cfg.BaseURL != "" {
		opts = append(opts, ollama.WithServerURL(cfg.BaseURL))
	}
	llm, err := ollama.New(opts...)
	if err != nil {
		log.Error().Err(err).Msg("Error initializing embedding LLM")
		return nil, err
	}
	embedder, err := embeddings.NewEmbedder(llm, embeddings.WithBatchSize(batchSize(cfg)))
	if err != nil {
		log.Error().Err(err).Msg("Error creating embedder")
		return nil, err
	}
	return embedder, nil
}

func batchSize(cfg config.LLMConfig) int {
	if cfg.BatchSize > 0 {
		return cfg.BatchSize
	}
	return defaultBatchSize
}

// New builds the encoder for the configured provider.
func New(cfg config.LLMConfig) (*Model, error) {
	switch cfg.Provider {
	case config.EmbeddingTEI, "":
		return NewModel(NewTEIBackend(cfg.BaseURL, cfg.Key, 0)), nil
	case config.EmbeddingOllama:
		embedder, err := NewOllamaEmbedder(cfg)
		if err != nil {
			return nil, err
		}
		return NewModel(NewLangchainBackend(embedder)), nil
	case config.EmbeddingOpenAI:
		embedder, err := NewOpenAIEmbedder(cfg)
		if err != nil {
			return nil, err
		}
		return NewModel(NewLangchainBackend(embedder)), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
}
