package generation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cleanArray = `[{"front":"What is the function of mitochondria?","back":"They produce energy for the cell."}]`

func TestRepairArrayPayload(t *testing.T) {
	t.Parallel()

	t.Run("clean array is a no-op", func(t *testing.T) {
		repaired, err := RepairArrayPayload(cleanArray)
		require.NoError(t, err)
		assert.Equal(t, cleanArray, repaired)
	})

	t.Run("repair is idempotent", func(t *testing.T) {
		once, err := RepairArrayPayload("Sure! Here are your cards:\n" + cleanArray + "\nLet me know if you need more.")
		require.NoError(t, err)

		twice, err := RepairArrayPayload(once)
		require.NoError(t, err)
		assert.Equal(t, once, twice)
		assert.Equal(t, cleanArray, twice)
	})

	t.Run("trims markdown fences", func(t *testing.T) {
		repaired, err := RepairArrayPayload("```json\n" + cleanArray + "\n```")
		require.NoError(t, err)
		assert.Equal(t, cleanArray, repaired)
	})

	t.Run("fails when no array is present", func(t *testing.T) {
		_, err := RepairArrayPayload("I could not generate any cards, sorry.")
		assert.ErrorIs(t, err, ErrMalformedResponse)
	})

	t.Run("fails on unterminated array", func(t *testing.T) {
		_, err := RepairArrayPayload(`[{"front":"q","back":"a"}`)
		assert.ErrorIs(t, err, ErrMalformedResponse)
	})
}

func TestParseCandidates(t *testing.T) {
	t.Parallel()

	t.Run("parses front/back fields", func(t *testing.T) {
		cards, err := ParseCandidates(cleanArray)
		require.NoError(t, err)
		require.Len(t, cards, 1)
		assert.Equal(t, "What is the function of mitochondria?", cards[0].Front)
		assert.Equal(t, "They produce energy for the cell.", cards[0].Back)
	})

	t.Run("accepts question/answer spelling", func(t *testing.T) {
		cards, err := ParseCandidates(`[{"question":"What is the function of mitochondria?","answer":"They produce energy for the cell.","tags":["biology"]}]`)
		require.NoError(t, err)
		require.Len(t, cards, 1)
		assert.Equal(t, "What is the function of mitochondria?", cards[0].Front)
		assert.Equal(t, "They produce energy for the cell.", cards[0].Back)
		assert.Equal(t, []string{"biology"}, cards[0].Tags)
	})

	t.Run("recovers array wrapped in commentary", func(t *testing.T) {
		cards, err := ParseCandidates("Here you go:\n" + cleanArray + "\nEnjoy!")
		require.NoError(t, err)
		assert.Len(t, cards, 1)
	})

	t.Run("hard parse failure after repair is malformed", func(t *testing.T) {
		_, err := ParseCandidates(`[{"front": "q", "back": }]`)
		assert.ErrorIs(t, err, ErrMalformedResponse)
	})

	t.Run("object instead of array is malformed", func(t *testing.T) {
		// The bracket trim finds the inner tags array, which then fails
		// to unmarshal as a card array.
		_, err := ParseCandidates(`{"front":"q","back":"a","tags":["x"]}`)
		assert.ErrorIs(t, err, ErrMalformedResponse)
	})

	t.Run("trims whitespace around fields", func(t *testing.T) {
		cards, err := ParseCandidates(`[{"front":"  spaced question  ","back":"  spaced answer  "}]`)
		require.NoError(t, err)
		require.Len(t, cards, 1)
		assert.Equal(t, "spaced question", cards[0].Front)
		assert.Equal(t, "spaced answer", cards[0].Back)
	})

	t.Run("keeps invalid items for the validator to drop", func(t *testing.T) {
		cards, err := ParseCandidates(`[{"front":"","back":""},{"front":"real question here","back":"real answer here"}]`)
		require.NoError(t, err)
		assert.Len(t, cards, 2)
	})
}
