package embedding

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	defaultBatchSize   = 32
	maxParallelBatches = 4
)

// Encoder turns texts into equal-length, L2-normalized vectors in input order.
type Encoder interface {
	Encode(ctx context.Context, texts []string, batchSize int) ([][]float32, error)
}

// TokenOutput holds one text's token representations and their attention mask.
// A nil Mask counts every token.
type TokenOutput struct {
	Tokens [][]float32
	Mask   []float32
}

// TokenBackend runs the embedding model for a single batch.
type TokenBackend interface {
	EmbedTokens(ctx context.Context, texts []string) ([]TokenOutput, error)
}

// Model mean-pools and normalizes backend output, batch by batch.
type Model struct {
	backend TokenBackend
}

func NewModel(backend TokenBackend) *Model {
	return &Model{backend: backend}
}

func (m *Model) Encode(ctx context.Context, texts []string, batchSize int) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	vectors := make([][]float32, len(texts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelBatches)
	for start := 0; start < len(texts); start += batchSize {
		end := min(start+batchSize, len(texts))
		g.Go(func() error {
			outputs, err := m.backend.EmbedTokens(gctx, texts[start:end])
			if err != nil {
				return fmt.Errorf("embed batch [%d:%d]: %w", start, end, err)
			}
			if len(outputs) != end-start {
				return fmt.Errorf("embed batch [%d:%d]: backend returned %d outputs", start, end, len(outputs))
			}
			for i, out := range outputs {
				pooled, err := MeanPool(out.Tokens, out.Mask)
				if err != nil {
					return fmt.Errorf("pool text %d: %w", start+i, err)
				}
				vectors[start+i] = L2Normalize(pooled)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Error().Err(err).Int("texts", len(texts)).Msg("Error generating embeddings")
		return nil, err
	}

	dim := len(vectors[0])
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("embedding %d has dimension %d, expected %d", i, len(v), dim)
		}
	}
	return vectors, nil
}
