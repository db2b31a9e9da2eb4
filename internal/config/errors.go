package config

import (
	"fmt"
	"strings"
)

type ErrorCode string

const (
	ErrorMissingValue ErrorCode = "missing_value"
	ErrorInvalidValue ErrorCode = "invalid_value"
)

// ConfigError reports required settings that are absent or unusable.
type ConfigError struct {
	Code  ErrorCode
	Keys  []string
	Cause error
}

func (e *ConfigError) Error() string {
	if e == nil {
		return "invalid config"
	}
	switch e.Code {
	case ErrorMissingValue:
		return fmt.Sprintf("missing required environment variables: %s", strings.Join(e.Keys, ", "))
	case ErrorInvalidValue:
		if e.Cause != nil {
			return fmt.Sprintf("invalid value for %s: %v", strings.Join(e.Keys, ", "), e.Cause)
		}
		return fmt.Sprintf("invalid value for %s", strings.Join(e.Keys, ", "))
	default:
		return "invalid config"
	}
}

func (e *ConfigError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// ValidateVectorStore checks the settings the selected vector store needs
// before any call is made to it.
func (c *Config) ValidateVectorStore() error {
	var missing []string
	switch c.VectorDB.Provider {
	case ProviderQdrant:
		if c.VectorDB.URL == "" {
			missing = append(missing, "QDRANT_URL")
		}
		if c.VectorDB.APIKey == "" {
			missing = append(missing, "QDRANT_API_KEY")
		}
	case ProviderPgvector:
		if c.Database.DSN == "" {
			missing = append(missing, "DATABASE_URL")
		}
	case ProviderChromem:
	default:
		return &ConfigError{
			Code:  ErrorInvalidValue,
			Keys:  []string{"VECTOR_DB_PROVIDER"},
			Cause: fmt.Errorf("unknown provider %q", c.VectorDB.Provider),
		}
	}
	if len(missing) > 0 {
		return &ConfigError{Code: ErrorMissingValue, Keys: missing}
	}
	return nil
}

// ValidateLLM checks the chat-completion endpoint settings.
func (c *Config) ValidateLLM() error {
	var missing []string
	if c.InferenceLLM.Key == "" {
		missing = append(missing, "LLAMA_API_KEY")
	}
	if c.InferenceLLM.BaseURL == "" {
		missing = append(missing, "E2E_NETWORKS_URL")
	}
	if len(missing) > 0 {
		return &ConfigError{Code: ErrorMissingValue, Keys: missing}
	}
	return nil
}
