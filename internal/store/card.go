package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/phrazzld/dory-api/internal/domain"
)

// CardHandle is a card under construction in the card store. Fields and
// tags are staged in memory; nothing is written until Commit.
// Version: 1.0
type CardHandle interface {
	// SetFields sets the front and back text of the card.
	SetFields(front, back string)

	// AddTags appends tags to the card's tag set.
	AddTags(tags ...string)

	// Commit writes the card. The pipeline calls this once per validated
	// card, in array order, and treats any error as fatal for the run.
	Commit(ctx context.Context) error
}

// CardStore is the external card/deck collaborator consumed by the
// generation pipeline.
// Version: 1.0
type CardStore interface {
	// NewCard starts a new card in the target deck.
	NewCard(ctx context.Context, deckID string) (CardHandle, error)

	// GetCard loads the reviewable content of an existing card for hint
	// generation. Returns ErrCardNotFound if the card does not exist.
	GetCard(ctx context.Context, cardID uuid.UUID) (*domain.CardContent, error)
}
