// Package openai implements the generation.Provider interface on any
// OpenAI-compatible chat-completions endpoint. The same client serves
// OpenAI itself and Groq, which differ only in base URL and model names.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/phrazzld/dory-api/internal/config"
	"github.com/phrazzld/dory-api/internal/generation"
)

// Vendor selects which chat-completions endpoint the client talks to.
type Vendor string

const (
	VendorOpenAI Vendor = "openai"
	VendorGroq   Vendor = "groq"
)

// Per-vendor chat-completions endpoints.
const (
	openAIBaseURL = "https://api.openai.com/v1"
	groqBaseURL   = "https://api.groq.com/openai/v1"

	defaultTimeout = 90 * time.Second
)

// Construction errors.
var (
	ErrMissingAPIKey = errors.New("API key is required")
	ErrMissingModel  = errors.New("model name is required")
	ErrUnknownVendor = errors.New("unknown vendor")
	ErrEmptyResponse = errors.New("model returned no choices")
)

// Client is a generation.Provider backed by a chat-completions API.
type Client struct {
	vendor      Vendor
	baseURL     string
	apiKey      string
	model       string
	maxTokens   int
	temperature float64
	httpClient  *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client, mainly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithBaseURL overrides the vendor's default endpoint.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(url, "/") }
}

// NewClient creates a chat-completions client for the given vendor using
// the credentials and tuning from the LLM config.
func NewClient(vendor Vendor, cfg config.LLMConfig, opts ...Option) (*Client, error) {
	c := &Client{
		vendor:      vendor,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		httpClient:  &http.Client{Timeout: defaultTimeout},
	}

	switch vendor {
	case VendorOpenAI:
		c.baseURL = openAIBaseURL
		c.apiKey = cfg.OpenAIAPIKey
		c.model = cfg.OpenAIModel
	case VendorGroq:
		c.baseURL = groqBaseURL
		c.apiKey = cfg.GroqAPIKey
		c.model = cfg.GroqModel
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownVendor, vendor)
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.apiKey == "" {
		return nil, fmt.Errorf("%w for vendor %s", ErrMissingAPIKey, vendor)
	}
	if c.model == "" {
		return nil, fmt.Errorf("%w for vendor %s", ErrMissingModel, vendor)
	}

	return c, nil
}

// Name implements generation.Provider.
func (c *Client) Name() string {
	return fmt.Sprintf("%s/%s", c.vendor, c.model)
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Complete implements generation.Provider. It sends a single
// system+user exchange and returns the raw text of the first choice;
// parsing is the caller's concern.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	payload := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("%w: failed to marshal request: %v", generation.ErrProviderVendor, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: failed to build request: %v", generation.ErrProviderVendor, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Network failures are worth one retry upstream.
		return "", fmt.Errorf("%w: %v", generation.ErrProviderTransient, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read response body: %v", generation.ErrProviderTransient, err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", c.classifyStatus(resp.StatusCode, data)
	}

	var parsed chatResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("%w: failed to decode response: %v", generation.ErrProviderVendor, err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("%w: %s", generation.ErrProviderVendor, parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("%w: %v", generation.ErrProviderVendor, ErrEmptyResponse)
	}

	return parsed.Choices[0].Message.Content, nil
}

// classifyStatus maps a non-200 response to the pipeline's error
// taxonomy: auth errors are fatal, rate limits and server errors are
// transient, everything else is a vendor error.
func (c *Client) classifyStatus(status int, body []byte) error {
	detail := apiErrorMessage(body)

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%w: HTTP %d: %s", generation.ErrProviderAuth, status, detail)
	case status == http.StatusTooManyRequests || status == http.StatusRequestTimeout || status >= 500:
		return fmt.Errorf("%w: HTTP %d: %s", generation.ErrProviderTransient, status, detail)
	default:
		return fmt.Errorf("%w: HTTP %d: %s", generation.ErrProviderVendor, status, detail)
	}
}

// apiErrorMessage extracts the API's error message from an error body,
// falling back to a trimmed raw body when it is not the usual shape.
func apiErrorMessage(body []byte) string {
	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error != nil && parsed.Error.Message != "" {
		return parsed.Error.Message
	}

	raw := strings.TrimSpace(string(body))
	if len(raw) > 200 {
		raw = raw[:200]
	}
	if raw == "" {
		raw = "no error detail"
	}
	return raw
}
