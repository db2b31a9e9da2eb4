package llmservice

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"health-rag/internal/config"
)

// Completer answers a single user prompt with the model's text.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// ModelFactory builds the chat model used for one call.
type ModelFactory func(cfg config.LLMConfig) (llms.Model, error)

type Client struct {
	cfg      config.LLMConfig
	sampling config.SamplingConfig
	newModel ModelFactory
}

type Option func(*Client)

func WithModelFactory(f ModelFactory) Option {
	return func(c *Client) { c.newModel = f }
}

func NewClient(cfg config.LLMConfig, sampling config.SamplingConfig, opts ...Option) *Client {
	c := &Client{cfg: cfg, sampling: sampling, newModel: NewOpenAIModel}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewOpenAIModel connects to any OpenAI-compatible chat completion endpoint
func NewOpenAIModel(cfg config.LLMConfig) (llms.Model, error) {
	return openai.New(
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithToken(strings.TrimPrefix(cfg.Key, "Bearer ")),
		openai.WithModel(cfg.Model),
	)
}

func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	msgContent := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextContent{Text: prompt}},
		},
	}

	res, err := c.GenerateContent(ctx, msgContent)
	if err != nil {
		return "", err
	}
	if len(res.Choices) == 0 {
		return "", errors.New("llm returned no choices")
	}
	return res.Choices[0].Content, nil
}

// call llm
func (c *Client) GenerateContent(ctx context.Context, messages []llms.MessageContent) (*llms.ContentResponse, error) {
	log.Debug().Str("model", c.cfg.Model).Str("base_url", c.cfg.BaseURL).Msg("Generating content")
	llm, err := c.newModel(c.cfg)
	if err != nil {
		log.Error().Err(err).Msg("Error initializing LLM")
		return nil, err
	}

	res, err := llm.GenerateContent(ctx, messages, c.callOptions()...)
	if err != nil {
		log.Error().Err(err).Str("model", c.cfg.Model).Msg("LLM call failed")
		return nil, err
	}
	return res, nil
}

func (c *Client) callOptions() []llms.CallOption {
	return []llms.CallOption{
		llms.WithTemperature(c.sampling.Temperature),
		llms.WithMaxTokens(c.sampling.MaxTokens),
		llms.WithTopP(c.sampling.TopP),
		llms.WithFrequencyPenalty(c.sampling.FrequencyPenalty),
		llms.WithPresencePenalty(c.sampling.PresencePenalty),
	}
}
