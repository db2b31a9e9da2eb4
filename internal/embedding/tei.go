package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const maxErrorBodyBytes = 1024

// TEIBackend calls a text-embeddings-inference server's /embed_all route,
// which returns the last hidden state of every token.
type TEIBackend struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewTEIBackend(baseURL, apiKey string, timeout time.Duration) *TEIBackend {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &TEIBackend{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

type embedAllRequest struct {
	Inputs   []string `json:"inputs"`
	Truncate bool     `json:"truncate"`
}

func (b *TEIBackend) EmbedTokens(ctx context.Context, texts []string) ([]TokenOutput, error) {
	body, err := json.Marshal(embedAllRequest{Inputs: texts, Truncate: true})
	if err != nil {
		return nil, fmt.Errorf("encode embed_all request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/embed_all", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build embed_all request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if b.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+strings.TrimPrefix(b.apiKey, "Bearer "))
	}

	resp, err := b.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embed_all request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return nil, fmt.Errorf("embed_all http status=%d body=%q", resp.StatusCode, string(raw))
	}

	var hidden [][][]float32
	if err := json.NewDecoder(resp.Body).Decode(&hidden); err != nil {
		return nil, fmt.Errorf("decode embed_all response: %w", err)
	}

	outputs := make([]TokenOutput, len(hidden))
	for i, tokens := range hidden {
		outputs[i] = TokenOutput{Tokens: tokens}
	}
	return outputs, nil
}
