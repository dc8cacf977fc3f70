package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/dory-api/internal/domain"
	"github.com/phrazzld/dory-api/internal/store"
	"github.com/phrazzld/dory-api/internal/task"
)

// unavailableHintStore simulates hint storage that is broken end to end,
// as when the hint tables have not been migrated yet.
type unavailableHintStore struct{}

func (unavailableHintStore) History(_ context.Context, _ uuid.UUID) (*domain.HintHistory, error) {
	return nil, store.ErrStoreUnavailable
}

func (unavailableHintStore) Append(_ context.Context, _ *domain.Hint) error {
	return store.ErrStoreUnavailable
}

func (unavailableHintStore) UsageCount(_ context.Context, _ uuid.UUID) (int, error) {
	return 0, store.ErrStoreUnavailable
}

func (unavailableHintStore) RecordUsage(_ context.Context, _ uuid.UUID) error {
	return store.ErrStoreUnavailable
}

func (unavailableHintStore) Reset(_ context.Context, _ uuid.UUID) error {
	return store.ErrStoreUnavailable
}

func seedHint(t *testing.T, hints *memHintStore, cardID uuid.UUID, text string) {
	t.Helper()
	hint, err := domain.NewHint(cardID, text)
	require.NoError(t, err)
	require.NoError(t, hints.Append(context.Background(), hint))
}

func TestGetHints(t *testing.T) {
	t.Parallel()

	t.Run("returns stored history with usage count", func(t *testing.T) {
		router, _, hints := testServerWithHints(t, newGateProvider("unused"))

		cardID := uuid.New()
		seedHint(t, hints, cardID, "Think about cellular respiration.")
		seedHint(t, hints, cardID, "It happens inside an organelle.")
		require.NoError(t, hints.RecordUsage(context.Background(), cardID))

		rec := doRequest(router, http.MethodGet, "/api/cards/"+cardID.String()+"/hints", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var history HintHistoryResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
		assert.Equal(t, cardID.String(), history.CardID)
		require.Len(t, history.Hints, 2)
		assert.Equal(t, "Think about cellular respiration.", history.Hints[0].Text)
		assert.Equal(t, "It happens inside an organelle.", history.Hints[1].Text)
		assert.Equal(t, 3, history.HintsUsed)
	})

	t.Run("card without hints has an empty history", func(t *testing.T) {
		router, _, _ := testServerWithHints(t, newGateProvider("unused"))

		rec := doRequest(router, http.MethodGet, "/api/cards/"+uuid.NewString()+"/hints", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var history HintHistoryResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
		assert.Empty(t, history.Hints)
		assert.Zero(t, history.HintsUsed)
	})

	t.Run("storage unavailable degrades to empty history", func(t *testing.T) {
		router, _ := buildServer(t, newGateProvider("unused"), unavailableHintStore{})

		rec := doRequest(router, http.MethodGet, "/api/cards/"+uuid.NewString()+"/hints", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var history HintHistoryResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
		assert.Empty(t, history.Hints)
		assert.Zero(t, history.HintsUsed)
	})

	t.Run("malformed card ID is 400", func(t *testing.T) {
		router, _ := testServer(t, newGateProvider("unused"))
		rec := doRequest(router, http.MethodGet, "/api/cards/not-a-uuid/hints", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestResetHints(t *testing.T) {
	t.Parallel()

	t.Run("clears history so the next run starts over", func(t *testing.T) {
		provider := newGateProvider("Think about where the cell gets its energy from.")
		router, runner, _ := testServerWithHints(t, provider)
		close(provider.release)

		cardID := uuid.NewString()
		startHintRun := func() RunStatusResponse {
			rec := doRequest(router, http.MethodPost, "/api/cards/"+cardID+"/hints", "")
			require.Equal(t, http.StatusAccepted, rec.Code)

			var run RunResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &run))
			waitForRun(t, runner, run.RunID)

			statusRec := doRequest(router, http.MethodGet, "/api/runs/"+run.RunID, "")
			var status RunStatusResponse
			require.NoError(t, json.Unmarshal(statusRec.Body.Bytes(), &status))
			require.Equal(t, string(task.RunStatusCompleted), status.Status)
			return status
		}

		first := startHintRun()
		require.NotNil(t, first.Hint)
		assert.Equal(t, 1, first.Hint.HintNumber)

		rec := doRequest(router, http.MethodDelete, "/api/cards/"+cardID+"/hints", "")
		assert.Equal(t, http.StatusNoContent, rec.Code)

		rec = doRequest(router, http.MethodGet, "/api/cards/"+cardID+"/hints", "")
		require.Equal(t, http.StatusOK, rec.Code)
		var history HintHistoryResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
		assert.Empty(t, history.Hints)

		// After a reset the next run generates a fresh first hint
		// instead of reusing the old one.
		second := startHintRun()
		require.NotNil(t, second.Hint)
		assert.Equal(t, 1, second.Hint.HintNumber)
		assert.False(t, second.Hint.Reused)
	})

	t.Run("storage unavailable still clears nothing quietly", func(t *testing.T) {
		router, _ := buildServer(t, newGateProvider("unused"), unavailableHintStore{})

		rec := doRequest(router, http.MethodDelete, "/api/cards/"+uuid.NewString()+"/hints", "")
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("malformed card ID is 400", func(t *testing.T) {
		router, _ := testServer(t, newGateProvider("unused"))
		rec := doRequest(router, http.MethodDelete, "/api/cards/not-a-uuid/hints", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
