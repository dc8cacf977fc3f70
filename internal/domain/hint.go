package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Hint is a short text clue associated with one card. Hints are created
// on successful generation, appended to the card's history, and never
// mutated afterwards.
type Hint struct {
	CardID    uuid.UUID `json:"card_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// NewHint creates a Hint for the given card with the creation timestamp
// set to now. Returns an error if the text is empty after trimming.
func NewHint(cardID uuid.UUID, text string) (*Hint, error) {
	if cardID == uuid.Nil {
		return nil, ErrEmptyCardRef
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrHintTextEmpty
	}

	return &Hint{
		CardID:    cardID,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// HintHistory is the ordered hint sequence for one card plus its usage
// counter. It is loaded lazily per card and owned by the persistence
// layer; callers never hold one across runs.
type HintHistory struct {
	Hints     []Hint `json:"hints"`
	HintsUsed int    `json:"hints_used"`
}

// Latest returns the most recent hint, or nil if the history is empty.
// Hints are ordered by creation time ascending, so the latest is last.
func (h *HintHistory) Latest() *Hint {
	if len(h.Hints) == 0 {
		return nil
	}
	return &h.Hints[len(h.Hints)-1]
}
