package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/phrazzld/dory-api/internal/config"
	"github.com/phrazzld/dory-api/internal/generation"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestNewProvider(t *testing.T) {
	t.Parallel()

	validConfig := config.LLMConfig{
		Provider:     "gemini",
		GeminiAPIKey: "test-key",
		GeminiModel:  "gemini-2.0-flash",
		MaxTokens:    1000,
		Temperature:  0.7,
	}

	t.Run("creates provider with valid config", func(t *testing.T) {
		provider, err := NewProvider(context.Background(), validConfig, testLogger())
		require.NoError(t, err)
		assert.Equal(t, "gemini/gemini-2.0-flash", provider.Name())
	})

	t.Run("rejects nil logger", func(t *testing.T) {
		_, err := NewProvider(context.Background(), validConfig, nil)
		assert.Error(t, err)
	})

	t.Run("rejects missing API key", func(t *testing.T) {
		cfg := validConfig
		cfg.GeminiAPIKey = ""
		_, err := NewProvider(context.Background(), cfg, testLogger())
		assert.ErrorIs(t, err, generation.ErrInvalidConfig)
	})

	t.Run("rejects missing model", func(t *testing.T) {
		cfg := validConfig
		cfg.GeminiModel = ""
		_, err := NewProvider(context.Background(), cfg, testLogger())
		assert.ErrorIs(t, err, generation.ErrInvalidConfig)
	})
}

func TestClassifyError(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want error
	}{
		{
			name: "401 is auth",
			err:  genai.APIError{Code: 401, Message: "API key not valid"},
			want: generation.ErrProviderAuth,
		},
		{
			name: "403 is auth",
			err:  genai.APIError{Code: 403, Message: "permission denied"},
			want: generation.ErrProviderAuth,
		},
		{
			name: "429 is transient",
			err:  genai.APIError{Code: 429, Message: "quota exceeded"},
			want: generation.ErrProviderTransient,
		},
		{
			name: "503 is transient",
			err:  genai.APIError{Code: 503, Message: "model overloaded"},
			want: generation.ErrProviderTransient,
		},
		{
			name: "400 is vendor",
			err:  genai.APIError{Code: 400, Message: "invalid argument"},
			want: generation.ErrProviderVendor,
		},
		{
			name: "plain transport error is transient",
			err:  errors.New("connection reset by peer"),
			want: generation.ErrProviderTransient,
		},
		{
			name: "wrapped API error is still classified",
			err:  fmt.Errorf("call failed: %w", genai.APIError{Code: 401}),
			want: generation.ErrProviderAuth,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, classifyError(tc.err), tc.want)
		})
	}
}
