package domain

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerationRequestValidate(t *testing.T) {
	t.Parallel()

	bounds := CountBounds{Min: 1, Max: 50}

	valid := GenerationRequest{
		SourceKind: SourceRawText,
		RawText:    "Mitochondria are the powerhouse of the cell.",
		DeckID:     "biology",
		NumCards:   5,
	}

	t.Run("accepts a valid raw text request", func(t *testing.T) {
		req := valid
		assert.NoError(t, req.Validate(bounds))
	})

	t.Run("accepts a valid document request", func(t *testing.T) {
		req := valid
		req.SourceKind = SourceDocument
		req.RawText = ""
		req.DocumentPath = "/tmp/notes.txt"
		assert.NoError(t, req.Validate(bounds))
	})

	t.Run("rejects empty deck target", func(t *testing.T) {
		req := valid
		req.DeckID = "  "
		assert.ErrorIs(t, req.Validate(bounds), ErrEmptyDeckTarget)
	})

	t.Run("rejects card count outside bounds", func(t *testing.T) {
		req := valid
		req.NumCards = 0
		assert.ErrorIs(t, req.Validate(bounds), ErrCardCountOutOfRange)

		req.NumCards = 51
		assert.ErrorIs(t, req.Validate(bounds), ErrCardCountOutOfRange)
	})

	t.Run("rejects whitespace-only raw text", func(t *testing.T) {
		req := valid
		req.RawText = "   \n\t"
		assert.ErrorIs(t, req.Validate(bounds), ErrEmptySource)
	})

	t.Run("rejects document source without a path", func(t *testing.T) {
		req := valid
		req.SourceKind = SourceDocument
		req.DocumentPath = ""
		assert.ErrorIs(t, req.Validate(bounds), ErrEmptySource)
	})

	t.Run("rejects unknown source kind", func(t *testing.T) {
		req := valid
		req.SourceKind = SourceKind("carrier_pigeon")
		assert.ErrorIs(t, req.Validate(bounds), ErrEmptySource)
	})
}

func TestCandidateCardValidate(t *testing.T) {
	t.Parallel()

	bounds := FieldBounds{Min: 10, Max: 200}

	t.Run("accepts card within bounds", func(t *testing.T) {
		card := CandidateCard{
			Front: "What is the function of mitochondria?",
			Back:  "They produce energy for the cell.",
		}
		assert.NoError(t, card.Validate(bounds))
	})

	t.Run("measures length after trimming", func(t *testing.T) {
		card := CandidateCard{
			Front: "   What is the function of mitochondria?   ",
			Back:  "\nThey produce energy for the cell.\n",
		}
		assert.NoError(t, card.Validate(bounds))
	})

	t.Run("rejects short front", func(t *testing.T) {
		card := CandidateCard{Front: "Why?", Back: "Because of the thing we discussed."}
		assert.ErrorIs(t, card.Validate(bounds), ErrCardFrontInvalid)
	})

	t.Run("measures length in runes, not bytes", func(t *testing.T) {
		// 15 runes each, 45 bytes. Within a 10..20 rune window despite
		// the byte length exceeding the maximum.
		card := CandidateCard{
			Front: "ミトコンドリアの機能は何ですか",
			Back:  "細胞のエネルギーを産生しますよ",
		}
		assert.NoError(t, card.Validate(FieldBounds{Min: 10, Max: 20}))
	})

	t.Run("rejects oversized back", func(t *testing.T) {
		card := CandidateCard{
			Front: "What is the function of mitochondria?",
			Back:  strings.Repeat("energy ", 50),
		}
		assert.ErrorIs(t, card.Validate(bounds), ErrCardBackInvalid)
	})
}

func TestNewHint(t *testing.T) {
	t.Parallel()

	t.Run("creates trimmed hint with timestamp", func(t *testing.T) {
		cardID := uuid.New()
		hint, err := NewHint(cardID, "  Think about cellular respiration.  ")
		require.NoError(t, err)
		assert.Equal(t, cardID, hint.CardID)
		assert.Equal(t, "Think about cellular respiration.", hint.Text)
		assert.False(t, hint.CreatedAt.IsZero())
	})

	t.Run("rejects empty text", func(t *testing.T) {
		_, err := NewHint(uuid.New(), "   ")
		assert.ErrorIs(t, err, ErrHintTextEmpty)
	})

	t.Run("rejects nil card id", func(t *testing.T) {
		_, err := NewHint(uuid.Nil, "a hint")
		assert.ErrorIs(t, err, ErrEmptyCardRef)
	})
}

func TestHintHistoryLatest(t *testing.T) {
	t.Parallel()

	t.Run("empty history has no latest", func(t *testing.T) {
		history := HintHistory{}
		assert.Nil(t, history.Latest())
	})

	t.Run("latest is the last appended hint", func(t *testing.T) {
		history := HintHistory{
			Hints: []Hint{
				{Text: "first"},
				{Text: "second"},
			},
		}
		require.NotNil(t, history.Latest())
		assert.Equal(t, "second", history.Latest().Text)
	})
}
