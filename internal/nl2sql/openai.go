package nl2sql

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

type OpenAIConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// OpenAITranslator talks to any OpenAI-compatible chat-completions endpoint
// (OpenAI, Groq, and friends) through the go-openai client.
type OpenAITranslator struct {
	client      *openai.Client
	model       string
	temperature float64
	maxTokens   int
}

func NewOpenAITranslator(cfg OpenAIConfig) (*OpenAITranslator, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("api key is required")
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		return nil, fmt.Errorf("model is required")
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 300
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	clientConfig := openai.DefaultConfig(strings.TrimSpace(cfg.APIKey))
	if baseURL := strings.TrimSpace(cfg.BaseURL); baseURL != "" {
		clientConfig.BaseURL = strings.TrimRight(baseURL, "/")
	}
	clientConfig.HTTPClient = &http.Client{Timeout: timeout}

	return &OpenAITranslator{
		client:      openai.NewClientWithConfig(clientConfig),
		model:       model,
		temperature: cfg.Temperature,
		maxTokens:   maxTokens,
	}, nil
}

func (t *OpenAITranslator) Translate(ctx context.Context, req Request) (Result, error) {
	resp, err := t.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: t.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: buildPrompt(req)},
		},
		Temperature: requestTemperature(t.temperature),
		MaxTokens:   t.maxTokens,
	})
	if err != nil {
		return Result{}, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Result{}, fmt.Errorf("empty chat completion choices")
	}

	raw := resp.Choices[0].Message.Content
	sql := ExtractSQL(raw)
	if sql == ";" || sql == "" {
		return Result{}, fmt.Errorf("model returned no SQL")
	}
	return Result{
		SQL:      sql,
		Raw:      raw,
		Provider: "openai-compatible",
		Model:    t.model,
	}, nil
}

// requestTemperature maps a configured temperature of zero to the smallest
// positive float32: the wire field is omitempty, and a dropped field falls
// back to the provider default instead of deterministic sampling.
func requestTemperature(value float64) float32 {
	if value == 0 {
		return math.SmallestNonzeroFloat32
	}
	return float32(value)
}
