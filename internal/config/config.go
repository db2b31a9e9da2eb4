package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	ProviderQdrant   = "qdrant"
	ProviderChromem  = "chromem"
	ProviderPgvector = "pgvector"

	EmbeddingTEI    = "tei"
	EmbeddingOllama = "ollama"
	EmbeddingOpenAI = "openai"
)

type Config struct {
	Server       ServerConfig   `yaml:"server"`
	Log          LogConfig      `yaml:"log"`
	VectorDB     VectorDBConfig `yaml:"vector_db"`
	Database     DatabaseConfig `yaml:"database"`
	EmbedLLM     LLMConfig      `yaml:"embed_llm"`
	InferenceLLM LLMConfig      `yaml:"inference_llm"`
	Sampling     SamplingConfig `yaml:"sampling"`
	RAG          RAGConfig      `yaml:"rag"`
}

type ServerConfig struct {
	Addr          string `yaml:"addr"`
	MaxUploadSize int64  `yaml:"max_upload_size"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	Dir   string `yaml:"dir"`
}

type VectorDBConfig struct {
	Provider      string `yaml:"provider"`
	URL           string `yaml:"url"`
	APIKey        string `yaml:"api_key"`
	TimeoutSecs   int    `yaml:"timeout_secs"`
	Path          string `yaml:"path"`
	InMemory      bool   `yaml:"in_memory"`
	Compress      bool   `yaml:"compress"`
	EncryptionKey string `yaml:"encryption_key"`
}

type DatabaseConfig struct {
	DSN      string `yaml:"dsn"`
	Password string `yaml:"password"`
	Debug    bool   `yaml:"debug"`
}

type LLMConfig struct {
	Provider  string `yaml:"provider"`
	BaseURL   string `yaml:"base_url"`
	Key       string `yaml:"key"`
	Model     string `yaml:"model"`
	BatchSize int    `yaml:"batch_size"`
}

type SamplingConfig struct {
	Temperature      float64 `yaml:"temperature"`
	MaxTokens        int     `yaml:"max_tokens"`
	TopP             float64 `yaml:"top_p"`
	FrequencyPenalty float64 `yaml:"frequency_penalty"`
	PresencePenalty  float64 `yaml:"presence_penalty"`
}

type RAGConfig struct {
	ChunkSize           int    `yaml:"chunk_size"`
	ChunkOverlap        int    `yaml:"chunk_overlap"`
	VectorSize          int    `yaml:"vector_size"`
	Distance            string `yaml:"distance"`
	DefaultCollection   string `yaml:"default_collection"`
	NutritionCollection string `yaml:"nutrition_collection"`
	DefaultLimit        int    `yaml:"default_limit"`
}

// LoadConfig reads the YAML file at path, applies environment overrides and
// fills defaults. A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	cfg := baseConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, err
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	return cfg, nil
}

// Default returns the configuration used when no file or environment is given.
func Default() *Config {
	cfg := baseConfig()
	applyDefaults(cfg)
	return cfg
}

// baseConfig holds the defaults where zero is a valid explicit setting, so
// they are set before the file and environment are read.
func baseConfig() *Config {
	cfg := &Config{}
	cfg.RAG.ChunkOverlap = 100
	cfg.Sampling = SamplingConfig{
		Temperature:      0.5,
		MaxTokens:        1024,
		TopP:             1,
		FrequencyPenalty: 0,
		PresencePenalty:  1,
	}
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8000"
	}
	if cfg.Server.MaxUploadSize <= 0 {
		cfg.Server.MaxUploadSize = 32 << 20
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.VectorDB.Provider == "" {
		cfg.VectorDB.Provider = ProviderQdrant
	}
	if cfg.VectorDB.TimeoutSecs <= 0 {
		cfg.VectorDB.TimeoutSecs = 30
	}
	if cfg.VectorDB.Path == "" {
		cfg.VectorDB.Path = "./chromemdb"
	}
	if cfg.EmbedLLM.Provider == "" {
		cfg.EmbedLLM.Provider = EmbeddingTEI
	}
	if cfg.EmbedLLM.BaseURL == "" && cfg.EmbedLLM.Provider == EmbeddingTEI {
		cfg.EmbedLLM.BaseURL = "http://localhost:8080"
	}
	if cfg.EmbedLLM.Model == "" {
		cfg.EmbedLLM.Model = "sentence-transformers/all-MiniLM-L6-v2"
	}
	if cfg.EmbedLLM.BatchSize <= 0 {
		cfg.EmbedLLM.BatchSize = 32
	}
	if cfg.InferenceLLM.Model == "" {
		cfg.InferenceLLM.Model = "llama3_2_3b_instruct"
	}
	if cfg.RAG.ChunkSize <= 0 {
		cfg.RAG.ChunkSize = 500
	}
	if cfg.RAG.ChunkOverlap < 0 {
		cfg.RAG.ChunkOverlap = 0
	}
	if cfg.RAG.VectorSize <= 0 {
		cfg.RAG.VectorSize = 384
	}
	if cfg.RAG.Distance == "" {
		cfg.RAG.Distance = "Cosine"
	}
	if cfg.RAG.DefaultCollection == "" {
		cfg.RAG.DefaultCollection = "health_schemes"
	}
	if cfg.RAG.NutritionCollection == "" {
		cfg.RAG.NutritionCollection = "nutrition_data"
	}
	if cfg.RAG.DefaultLimit <= 0 {
		cfg.RAG.DefaultLimit = 3
	}
}

func applyEnv(cfg *Config) error {
	setString(&cfg.VectorDB.URL, "QDRANT_URL")
	setString(&cfg.VectorDB.APIKey, "QDRANT_API_KEY")
	setString(&cfg.VectorDB.Provider, "VECTOR_DB_PROVIDER")
	setString(&cfg.Database.DSN, "DATABASE_URL")
	setString(&cfg.Database.Password, "DATABASE_PASSWORD")
	setString(&cfg.InferenceLLM.Key, "LLAMA_API_KEY")
	setString(&cfg.InferenceLLM.BaseURL, "E2E_NETWORKS_URL")
	setString(&cfg.InferenceLLM.Model, "LLM_MODEL")
	setString(&cfg.EmbedLLM.Provider, "EMBEDDING_PROVIDER")
	setString(&cfg.EmbedLLM.BaseURL, "EMBEDDING_URL")
	setString(&cfg.EmbedLLM.Model, "EMBEDDING_MODEL")
	setString(&cfg.EmbedLLM.Key, "EMBEDDING_API_KEY")
	setString(&cfg.Server.Addr, "SERVER_ADDR")
	setString(&cfg.Log.Level, "LOG_LEVEL")
	setString(&cfg.Log.Dir, "LOG_DIR")
	if err := setInt(&cfg.RAG.ChunkSize, "CHUNK_SIZE"); err != nil {
		return err
	}
	return setInt(&cfg.RAG.ChunkOverlap, "CHUNK_OVERLAP")
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return &ConfigError{Code: ErrorInvalidValue, Keys: []string{key}, Cause: err}
	}
	*dst = n
	return nil
}
