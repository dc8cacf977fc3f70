package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/phrazzld/dory-api/internal/domain"
)

// HintStore persists per-card hint history and its usage counter.
//
// Append is append-only: implementations must not reorder or deduplicate
// existing entries. Deciding whether to reuse the most recent hint is
// the orchestrator's job, not the store's.
//
// The hint feature is best-effort. When the underlying storage is broken
// (for example the hint table is absent), implementations return
// ErrStoreUnavailable and log the condition instead of failing hard, so
// that card review keeps working.
// Version: 1.0
type HintStore interface {
	// History returns the card's hints ordered by creation time
	// ascending, together with the usage counter.
	History(ctx context.Context, cardID uuid.UUID) (*domain.HintHistory, error)

	// Append adds a new hint to the card's history and sets the usage
	// counter to the new history length.
	Append(ctx context.Context, hint *domain.Hint) error

	// UsageCount returns the card's hint usage counter.
	UsageCount(ctx context.Context, cardID uuid.UUID) (int, error)

	// RecordUsage increments the usage counter without appending. Used
	// when the most recent hint is reused instead of generating a new one.
	RecordUsage(ctx context.Context, cardID uuid.UUID) error

	// Reset clears the card's hint history and usage counter.
	Reset(ctx context.Context, cardID uuid.UUID) error
}
