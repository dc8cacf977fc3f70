// Package gemini implements the generation.Provider interface on
// Google's Gemini API via the genai SDK.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/phrazzld/dory-api/internal/config"
	"github.com/phrazzld/dory-api/internal/generation"
)

// Provider is a generation.Provider backed by the Gemini API.
type Provider struct {
	client      *genai.Client
	model       string
	maxTokens   int32
	temperature float32
	logger      *slog.Logger
}

// NewProvider creates a Gemini-backed provider from the LLM config.
func NewProvider(ctx context.Context, cfg config.LLMConfig, logger *slog.Logger) (*Provider, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.GeminiModel == "" {
		return nil, fmt.Errorf("%w: gemini model cannot be empty", generation.ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create gemini client: %v", generation.ErrInvalidConfig, err)
	}

	return &Provider{
		client:      client,
		model:       cfg.GeminiModel,
		maxTokens:   int32(cfg.MaxTokens),
		temperature: float32(cfg.Temperature),
		logger:      logger.With("component", "gemini_provider"),
	}, nil
}

// Name implements generation.Provider.
func (p *Provider) Name() string {
	return "gemini/" + p.model
}

// Complete implements generation.Provider. The system prompt travels as
// a system instruction rather than a chat turn.
func (p *Provider) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	genCfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		MaxOutputTokens:   p.maxTokens,
		Temperature:       genai.Ptr(p.temperature),
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(userPrompt), genCfg)
	if err != nil {
		return "", classifyError(err)
	}

	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no candidates in response", generation.ErrProviderVendor)
	}
	if resp.Candidates[0].FinishReason == genai.FinishReasonSafety {
		return "", fmt.Errorf("%w: content blocked by safety filters", generation.ErrProviderVendor)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: empty text in response", generation.ErrProviderVendor)
	}

	p.logger.Debug("gemini call completed", "model", p.model, "response_length", len(text))
	return text, nil
}

// classifyError maps SDK errors to the pipeline's error taxonomy using
// the embedded HTTP status when present. Transport failures with no
// status are treated as transient.
func classifyError(err error) error {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("%w: %v", generation.ErrProviderTransient, err)
	}

	switch {
	case apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusForbidden:
		return fmt.Errorf("%w: %v", generation.ErrProviderAuth, err)
	case apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= 500:
		return fmt.Errorf("%w: %v", generation.ErrProviderTransient, err)
	default:
		return fmt.Errorf("%w: %v", generation.ErrProviderVendor, err)
	}
}
