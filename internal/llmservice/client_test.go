package llmservice

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/fake"

	"health-rag/internal/config"
)

type recordingModel struct {
	messages []llms.MessageContent
	opts     llms.CallOptions
	choices  []*llms.ContentChoice
	err      error
}

func (m *recordingModel) GenerateContent(_ context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	m.messages = messages
	for _, opt := range options {
		opt(&m.opts)
	}
	if m.err != nil {
		return nil, m.err
	}
	return &llms.ContentResponse{Choices: m.choices}, nil
}

func (m *recordingModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

func testSampling() config.SamplingConfig {
	return config.Default().Sampling
}

func TestComplete_SendsPromptWithSampling(t *testing.T) {
	model := &recordingModel{choices: []*llms.ContentChoice{{Content: `{"day1":{}}`}}}
	var gotCfg config.LLMConfig
	client := NewClient(
		config.LLMConfig{BaseURL: "https://infer.local/v1", Key: "Bearer k", Model: "llama3_2_3b_instruct"},
		testSampling(),
		WithModelFactory(func(cfg config.LLMConfig) (llms.Model, error) {
			gotCfg = cfg
			return model, nil
		}),
	)

	out, err := client.Complete(context.Background(), "plan my meals")
	require.NoError(t, err)
	assert.Equal(t, `{"day1":{}}`, out)
	assert.Equal(t, "llama3_2_3b_instruct", gotCfg.Model)

	require.Len(t, model.messages, 1)
	assert.Equal(t, llms.ChatMessageTypeHuman, model.messages[0].Role)
	assert.Equal(t, []llms.ContentPart{llms.TextContent{Text: "plan my meals"}}, model.messages[0].Parts)

	assert.Equal(t, 0.5, model.opts.Temperature)
	assert.Equal(t, 1024, model.opts.MaxTokens)
	assert.Equal(t, 1.0, model.opts.TopP)
	assert.Equal(t, 0.0, model.opts.FrequencyPenalty)
	assert.Equal(t, 1.0, model.opts.PresencePenalty)
}

func TestComplete_WithFakeLLM(t *testing.T) {
	client := NewClient(config.LLMConfig{}, testSampling(), WithModelFactory(func(config.LLMConfig) (llms.Model, error) {
		return fake.NewFakeLLM([]string{"Day 1: Breakfast: Poha"}), nil
	}))

	out, err := client.Complete(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "Day 1: Breakfast: Poha", out)
}

func TestComplete_Errors(t *testing.T) {
	boom := errors.New("upstream 503")

	client := NewClient(config.LLMConfig{}, testSampling(), WithModelFactory(func(config.LLMConfig) (llms.Model, error) {
		return nil, boom
	}))
	_, err := client.Complete(context.Background(), "x")
	assert.ErrorIs(t, err, boom)

	client = NewClient(config.LLMConfig{}, testSampling(), WithModelFactory(func(config.LLMConfig) (llms.Model, error) {
		return &recordingModel{err: boom}, nil
	}))
	_, err = client.Complete(context.Background(), "x")
	assert.ErrorIs(t, err, boom)

	client = NewClient(config.LLMConfig{}, testSampling(), WithModelFactory(func(config.LLMConfig) (llms.Model, error) {
		return &recordingModel{}, nil
	}))
	_, err = client.Complete(context.Background(), "x")
	assert.Error(t, err)
}
