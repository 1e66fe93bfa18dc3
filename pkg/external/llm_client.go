package external

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/medemi-triage-server/internal/domain"
)

// Defaults for a local Ollama server exposing its OpenAI-compatible API.
const (
	DefaultLLMBaseURL = "http://localhost:11434/v1"
	DefaultLLMModel   = "mistral:7b"
	// Ollama ignores the key but the client requires a non-empty token.
	defaultLLMAPIKey = "ollama"
)

// CompletionClient sends a single prompt and returns the raw model reply.
type CompletionClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// OpenAIClient calls any OpenAI-compatible chat completion endpoint.
type OpenAIClient struct {
	client      *openai.Client
	model       string
	temperature float32
}

// NewOpenAIClient constructs a client from the extractor configuration,
// falling back to the local Ollama defaults.
func NewOpenAIClient(cfg domain.ExtractorConfig) *OpenAIClient {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = defaultLLMAPIKey
	}
	clientCfg := openai.DefaultConfig(apiKey)
	clientCfg.BaseURL = strings.TrimRight(orDefault(cfg.BaseURL, DefaultLLMBaseURL), "/")

	return &OpenAIClient{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       orDefault(cfg.Model, DefaultLLMModel),
		temperature: cfg.Temperature,
	}
}

// Model returns the configured model name.
func (c *OpenAIClient) Model() string {
	return c.model
}

// Complete sends prompt as a single user message.
func (c *OpenAIClient) Complete(ctx context.Context, prompt string) (string, error) {
	if c.client == nil {
		return "", errors.New("openai client not initialized")
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: c.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
