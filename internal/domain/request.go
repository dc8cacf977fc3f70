package domain

import (
	"strings"

	"github.com/google/uuid"
)

// SourceKind identifies where the raw content of a deck generation
// request comes from.
type SourceKind string

const (
	// SourceRawText means the request carries the source content inline.
	SourceRawText SourceKind = "raw_text"

	// SourceDocument means the source content must be extracted from a
	// document on disk, page by page.
	SourceDocument SourceKind = "document"
)

// CountBounds restricts how many cards a single request may ask for.
type CountBounds struct {
	Min int
	Max int
}

// GenerationRequest describes one deck generation run. It is constructed
// by the caller, validated once, and then owned exclusively by a single
// orchestrator run.
type GenerationRequest struct {
	SourceKind   SourceKind `json:"source_kind"`
	RawText      string     `json:"raw_text,omitempty"`
	DocumentPath string     `json:"document_path,omitempty"`

	DeckID     string `json:"deck_id"`
	Topic      string `json:"topic,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`
	NumCards   int    `json:"num_cards"`

	// Model optionally overrides the configured model name for this run.
	Model string `json:"model,omitempty"`
}

// Validate checks the request against the configured card count bounds.
// Document sources are only checked for a non-empty path here; whether the
// document is readable is an ingestion concern.
func (r *GenerationRequest) Validate(bounds CountBounds) error {
	if strings.TrimSpace(r.DeckID) == "" {
		return ErrEmptyDeckTarget
	}

	if r.NumCards < bounds.Min || r.NumCards > bounds.Max {
		return ErrCardCountOutOfRange
	}

	switch r.SourceKind {
	case SourceRawText:
		if strings.TrimSpace(r.RawText) == "" {
			return ErrEmptySource
		}
	case SourceDocument:
		if strings.TrimSpace(r.DocumentPath) == "" {
			return ErrEmptySource
		}
	default:
		return ErrEmptySource
	}

	return nil
}

// HintRequest describes one hint generation run for an existing card.
type HintRequest struct {
	CardID uuid.UUID `json:"card_id"`

	// Model optionally overrides the configured model name for this run.
	Model string `json:"model,omitempty"`
}

// Validate checks that the request references a card.
func (r *HintRequest) Validate() error {
	if r.CardID == uuid.Nil {
		return ErrEmptyCardRef
	}
	return nil
}
