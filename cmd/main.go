package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"health-rag/internal/chromemdb"
	"health-rag/internal/config"
	"health-rag/internal/db"
	"health-rag/internal/embedding"
	"health-rag/internal/helper"
	"health-rag/internal/llmservice"
	"health-rag/internal/parser"
	"health-rag/internal/qdrant"
	"health-rag/internal/rag"
	"health-rag/internal/server"
	"health-rag/internal/vectorstore"
)

const configFilePath = "./configs/config.yaml"

func main() {
	configPath := flag.String("config", configFilePath, "Path to the YAML config file")
	filePath := flag.String("file", "", "Path to a PDF file to ingest")
	collection := flag.String("collection", "", "Collection to ingest into or search")
	query := flag.String("query", "", "Search query over health schemes")
	nutrition := flag.String("nutrition", "", "Describe the pregnant woman to get a diet plan")
	limit := flag.Int("limit", 0, "Number of results to retrieve")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "error loading .env: %v\n", err)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		os.Exit(1)
	}

	logCloser, err := helper.SetupLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error setting up logger: %v\n", err)
		os.Exit(1)
	}
	defer logCloser.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := newVectorStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Error creating vector store")
	}
	defer closeStore()

	encoder := embedding.NewLazy(func() (embedding.Encoder, error) {
		return embedding.New(cfg.EmbedLLM)
	})
	llm := llmservice.NewClient(cfg.InferenceLLM, cfg.Sampling)
	r := rag.NewRAG(cfg, store, encoder, llm, parser.NewPDFLoader())

	switch {
	case *filePath != "" && (*query != "" || *nutrition != ""):
		log.Fatal().Msg("Please provide either a document file using the -file flag or a query, but not both")
	case *filePath != "":
		res, err := r.IngestFile(ctx, *filePath, filepath.Base(*filePath), *collection)
		if err != nil {
			log.Fatal().Err(err).Msg("Error ingesting file")
		}
		helper.PrettyPrint(res)
	case *query != "":
		res, err := r.Search(ctx, *query, *collection, *limit)
		if err != nil {
			log.Fatal().Err(err).Msg("Error searching")
		}
		helper.PrettyPrint(res)
	case *nutrition != "":
		res, err := r.NutritionRecommendation(ctx, *nutrition, *limit)
		if err != nil {
			log.Fatal().Err(err).Msg("Error generating diet plan")
		}
		helper.PrettyPrint(res)
	default:
		h := server.NewHandler(r, cfg.RAG.DefaultCollection, cfg.Server.MaxUploadSize)
		if err := server.NewServer(cfg.Server.Addr, h).Run(ctx); err != nil {
			log.Fatal().Err(err).Msg("HTTP server stopped")
		}
	}
}

func newVectorStore(cfg *config.Config) (vectorstore.Store, func(), error) {
	noop := func() {}
	if err := cfg.ValidateVectorStore(); err != nil {
		return nil, noop, err
	}

	switch cfg.VectorDB.Provider {
	case config.ProviderChromem:
		if err := helper.CreateFolder(cfg.VectorDB.Path); err != nil {
			return nil, noop, err
		}
		store, err := chromemdb.NewStore(chromemdb.Options{
			Path:          cfg.VectorDB.Path,
			InMemory:      cfg.VectorDB.InMemory,
			Compress:      cfg.VectorDB.Compress,
			EncryptionKey: cfg.VectorDB.EncryptionKey,
		})
		return store, noop, err
	case config.ProviderPgvector:
		dbInstance := db.NewDB(db.ConnectDB(cfg.Database.DSN, cfg.Database.Password), cfg.Database.Debug)
		log.Info().Str("provider", "pgvector").Msg("pgvector store selected")
		return db.NewStore(dbInstance), func() { _ = dbInstance.Close() }, nil
	default:
		store, err := qdrant.NewStore(qdrant.Config{
			URL:     cfg.VectorDB.URL,
			APIKey:  cfg.VectorDB.APIKey,
			Timeout: time.Duration(cfg.VectorDB.TimeoutSecs) * time.Second,
		})
		return store, noop, err
	}
}
