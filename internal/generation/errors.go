package generation

import "errors"

// Error taxonomy for generation runs. The orchestrator surfaces exactly
// one of these kinds as the terminal outcome of a failed run so callers
// can give kind-appropriate messaging.
var (
	// ErrIngestion is returned when source content cannot be read or is
	// unusable (document unreadable, empty after extraction).
	ErrIngestion = errors.New("failed to ingest source content")

	// ErrProviderAuth is returned when the provider rejects the
	// configured credentials. Fatal for the run; never retried.
	ErrProviderAuth = errors.New("provider authentication failed")

	// ErrProviderTransient is returned for temporary provider failures
	// (timeout, rate limit) that might resolve on retry. The orchestrator
	// makes a single retry decision; adapters never retry themselves.
	ErrProviderTransient = errors.New("transient provider failure")

	// ErrProviderVendor is returned for vendor-side failures that are
	// neither an auth problem nor plausibly transient.
	ErrProviderVendor = errors.New("provider request failed")

	// ErrMalformedResponse is returned when the model output cannot be
	// parsed as a card array even after repair. The whole run fails;
	// there is no partial salvage across a parse failure.
	ErrMalformedResponse = errors.New("malformed model response")

	// ErrNoValidContent is returned when parsing succeeded but zero
	// candidates survived validation. Distinct from ErrMalformedResponse
	// so the caller can report it differently.
	ErrNoValidContent = errors.New("no valid content in model response")

	// ErrPersistence is returned when the card store fails. Cards already
	// persisted in the run are left in place.
	ErrPersistence = errors.New("failed to persist generated content")

	// ErrCancelled is returned when the run observes cancellation at a
	// checkpoint. Partially produced, unpersisted work is discarded.
	ErrCancelled = errors.New("generation cancelled")

	// ErrInvalidConfig is returned when the generation components are
	// constructed with unusable configuration.
	ErrInvalidConfig = errors.New("invalid generation configuration")
)
