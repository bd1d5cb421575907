package nl2sql

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

type GeminiConfig struct {
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
}

type GeminiTranslator struct {
	client *genai.Client
	model  string
	config GeminiConfig
}

func NewGeminiTranslator(ctx context.Context, cfg GeminiConfig) (*GeminiTranslator, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("api key is required")
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		return nil, fmt.Errorf("model is required")
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 300
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(strings.TrimSpace(cfg.APIKey)))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiTranslator{client: client, model: model, config: cfg}, nil
}

func (t *GeminiTranslator) Translate(ctx context.Context, req Request) (Result, error) {
	model := t.client.GenerativeModel(t.model)
	model.SetTemperature(float32(t.config.Temperature))
	model.SetMaxOutputTokens(int32(t.config.MaxTokens))

	resp, err := model.GenerateContent(ctx, genai.Text(buildPrompt(req)))
	if err != nil {
		return Result{}, fmt.Errorf("generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return Result{}, fmt.Errorf("empty gemini candidates")
	}

	var raw strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			raw.WriteString(string(text))
		}
	}

	sql := ExtractSQL(raw.String())
	if sql == ";" || sql == "" {
		return Result{}, fmt.Errorf("model returned no SQL")
	}
	return Result{
		SQL:      sql,
		Raw:      raw.String(),
		Provider: "gemini",
		Model:    t.model,
	}, nil
}

func (t *GeminiTranslator) Close() error {
	return t.client.Close()
}
