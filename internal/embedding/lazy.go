package embedding

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
)

// Lazy builds its Encoder on first use and shares it afterwards.
// A failed build is retried on the next call.
type Lazy struct {
	mu      sync.Mutex
	build   func() (Encoder, error)
	encoder Encoder
}

func NewLazy(build func() (Encoder, error)) *Lazy {
	return &Lazy{build: build}
}

func (l *Lazy) get() (Encoder, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.encoder != nil {
		return l.encoder, nil
	}
	enc, err := l.build()
	if err != nil {
		log.Error().Err(err).Msg("Error initializing embedding model")
		return nil, err
	}
	log.Info().Msg("Embedding model initialized")
	l.encoder = enc
	return enc, nil
}

func (l *Lazy) Encode(ctx context.Context, texts []string, batchSize int) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	enc, err := l.get()
	if err != nil {
		return nil, err
	}
	return enc.Encode(ctx, texts, batchSize)
}
