package generation

import "context"

// Provider defines the interface for language-model vendors. This
// interface serves as the boundary between the pipeline and external
// LLM services: concrete adapters live under internal/platform and are
// selected once at startup from configuration.
//
// Implementations classify failures with the package error taxonomy
// (ErrProviderAuth, ErrProviderTransient, ErrProviderVendor) and must
// not retry internally; retry policy is centralized in the orchestrator.
// Version: 1.0
type Provider interface {
	// Complete sends one completion request and returns the first
	// completion's text. The context is passed to the underlying
	// transport, so cancelling it abandons the network call where the
	// transport supports that.
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)

	// Name returns a short vendor identifier for logging.
	Name() string
}
