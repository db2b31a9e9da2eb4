package rag

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"

	"health-rag/internal/helper"
	"health-rag/internal/models"
	"health-rag/internal/vectorstore"
)

// IngestUpload stores an uploaded PDF in a temporary file, removed on return,
// and ingests it under filename.
func (r *RAG) IngestUpload(ctx context.Context, upload io.Reader, filename, collection string) (models.IngestResult, error) {
	tmp, err := os.CreateTemp("", "upload-*.pdf")
	if err != nil {
		return models.IngestResult{}, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, upload); err != nil {
		tmp.Close()
		return models.IngestResult{}, fmt.Errorf("save upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return models.IngestResult{}, fmt.Errorf("save upload: %w", err)
	}
	log.Debug().Str("file", filename).Str("path", tmp.Name()).Msg("Temporary file saved")

	return r.IngestFile(ctx, tmp.Name(), filename, collection)
}

// IngestFile loads, chunks, embeds and upserts the PDF at path. source is the
// file name recorded in every chunk's payload.
func (r *RAG) IngestFile(ctx context.Context, path, source, collection string) (models.IngestResult, error) {
	if collection == "" {
		collection = r.cfg.RAG.DefaultCollection
	}
	log.Info().Str("file", source).Str("collection", collection).
		Int("chunk_size", r.cfg.RAG.ChunkSize).Int("chunk_overlap", r.cfg.RAG.ChunkOverlap).
		Msg("Processing PDF file")

	if err := r.cfg.ValidateVectorStore(); err != nil {
		log.Error().Err(err).Msg("Vector store is not configured")
		return models.IngestResult{}, err
	}

	pages, err := r.loader.Load(path)
	if err != nil {
		log.Error().Err(err).Str("file", source).Msg("Error loading PDF")
		return models.IngestResult{}, err
	}
	if len(pages) == 0 {
		log.Warn().Str("file", source).Msg("No content found")
		return models.IngestResult{
			Status:  models.StatusWarning,
			Message: fmt.Sprintf("No content found in %s.", source),
		}, nil
	}
	log.Info().Int("pages", len(pages)).Str("file", source).Msg("Loaded pages from PDF")

	chunks, err := r.splitter.ChunkPages(pages, source)
	if err != nil {
		log.Error().Err(err).Str("file", source).Msg("Error splitting text")
		return models.IngestResult{}, err
	}
	if len(chunks) == 0 {
		log.Warn().Str("file", source).Msg("No text chunks extracted")
		return models.IngestResult{
			Status:  models.StatusWarning,
			Message: fmt.Sprintf("No text chunks extracted from %s.", source),
		}, nil
	}
	log.Info().Int("chunks", len(chunks)).Msg("Created text chunks")

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	vectors, err := r.encoder.Encode(ctx, texts, r.cfg.EmbedLLM.BatchSize)
	if err != nil {
		log.Error().Err(err).Str("file", source).Msg("Error generating embeddings")
		return models.IngestResult{}, err
	}
	if len(vectors) != len(chunks) {
		return models.IngestResult{}, fmt.Errorf("got %d embeddings for %d chunks", len(vectors), len(chunks))
	}

	points := make([]vectorstore.Point, len(chunks))
	for i, c := range chunks {
		id, err := helper.GenerateUUID()
		if err != nil {
			return models.IngestResult{}, err
		}
		points[i] = vectorstore.Point{ID: id, Vector: vectors[i], Payload: c.Payload()}
	}

	if err := r.ensureCollection(ctx, collection); err != nil {
		return models.IngestResult{}, err
	}
	if err := r.store.Upsert(ctx, collection, points); err != nil {
		log.Error().Err(err).Str("collection", collection).Msg("Error upserting points")
		return models.IngestResult{}, err
	}
	log.Info().Int("points", len(points)).Str("collection", collection).Msg("Stored points")

	return models.IngestResult{
		Status:      models.StatusSuccess,
		Message:     fmt.Sprintf("Uploaded %d chunks from %s.", len(points), source),
		ChunksCount: len(points),
	}, nil
}

func (r *RAG) ensureCollection(ctx context.Context, name string) error {
	exists, err := vectorstore.CollectionExists(ctx, r.store, name)
	if err != nil {
		log.Error().Err(err).Str("collection", name).Msg("Error listing collections")
		return err
	}
	if exists {
		return nil
	}
	log.Info().Str("collection", name).Msg("Creating new collection")
	if err := r.store.CreateCollection(ctx, name, r.cfg.RAG.VectorSize, r.cfg.RAG.Distance); err != nil {
		log.Error().Err(err).Str("collection", name).Msg("Error creating collection")
		return err
	}
	return nil
}
