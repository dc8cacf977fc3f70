package domain

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// Card-specific validation errors.
var (
	// ErrCardFrontInvalid is returned when a candidate card's front text
	// is empty or outside the configured length bounds.
	ErrCardFrontInvalid = errors.New("card front text outside configured bounds")

	// ErrCardBackInvalid is returned when a candidate card's back text
	// is empty or outside the configured length bounds.
	ErrCardBackInvalid = errors.New("card back text outside configured bounds")
)

// FieldBounds restricts the length of a card's front and back text,
// measured in runes after trimming surrounding whitespace.
type FieldBounds struct {
	Min int
	Max int
}

// CandidateCard is a question/answer pair produced by parsing a model
// response. Candidates that fail validation are dropped individually;
// survivors are handed to the card store in array order.
type CandidateCard struct {
	Front string   `json:"front"`
	Back  string   `json:"back"`
	Tags  []string `json:"tags,omitempty"`
}

// Validate checks the candidate against the configured field bounds.
// Front and back are trimmed before measuring.
func (c *CandidateCard) Validate(bounds FieldBounds) error {
	front := utf8.RuneCountInString(strings.TrimSpace(c.Front))
	if front < bounds.Min || front > bounds.Max {
		return ErrCardFrontInvalid
	}

	back := utf8.RuneCountInString(strings.TrimSpace(c.Back))
	if back < bounds.Min || back > bounds.Max {
		return ErrCardBackInvalid
	}

	return nil
}

// CardContent is the reviewable content of an existing card, as loaded
// from the card store for hint generation.
type CardContent struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}
