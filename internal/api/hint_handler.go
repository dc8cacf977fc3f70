package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/phrazzld/dory-api/internal/api/shared"
	"github.com/phrazzld/dory-api/internal/domain"
	"github.com/phrazzld/dory-api/internal/store"
	"github.com/phrazzld/dory-api/internal/task"
)

// HintResponse represents a generated hint.
type HintResponse struct {
	CardID     string `json:"card_id"`
	Text       string `json:"text"`
	HintNumber int    `json:"hint_number"`
	Reused     bool   `json:"reused"`
}

// StoredHintResponse is one entry of a card's stored hint history.
type StoredHintResponse struct {
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// HintHistoryResponse is the full stored hint history for one card,
// together with its usage counter.
type HintHistoryResponse struct {
	CardID    string               `json:"card_id"`
	Hints     []StoredHintResponse `json:"hints"`
	HintsUsed int                  `json:"hints_used"`
}

// HintHandler handles hint generation and hint history HTTP requests
type HintHandler struct {
	runner *task.Runner
	hints  store.HintStore
}

// NewHintHandler creates a new HintHandler
func NewHintHandler(runner *task.Runner, hints store.HintStore) *HintHandler {
	return &HintHandler{runner: runner, hints: hints}
}

// CreateHintRun handles POST /api/cards/{cardID}/hints requests. Hint
// generation runs in the background like deck generation; a cached hint
// still goes through a run, it just finishes almost immediately.
func (h *HintHandler) CreateHintRun(w http.ResponseWriter, r *http.Request) {
	cardID, err := uuid.Parse(chi.URLParam(r, "cardID"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid card ID")
		return
	}

	handle, err := h.runner.StartHintRun(&domain.HintRequest{CardID: cardID})
	if err != nil {
		status, message := MapError(err)
		shared.RespondWithErrorAndLog(w, r, status, message, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, runToResponse(handle))
}

// GetHints handles GET /api/cards/{cardID}/hints requests, returning the
// card's stored hint history and usage counter. Broken hint storage
// degrades to an empty history rather than an error.
func (h *HintHandler) GetHints(w http.ResponseWriter, r *http.Request) {
	cardID, err := uuid.Parse(chi.URLParam(r, "cardID"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid card ID")
		return
	}

	history, err := h.hints.History(r.Context(), cardID)
	switch {
	case errors.Is(err, store.ErrStoreUnavailable):
		slog.WarnContext(r.Context(), "hint storage unavailable, returning empty history",
			"card_id", cardID, "error", err)
		history = &domain.HintHistory{}
	case err != nil:
		status, message := MapError(err)
		shared.RespondWithErrorAndLog(w, r, status, message, err)
		return
	}

	hints := make([]StoredHintResponse, 0, len(history.Hints))
	for _, hint := range history.Hints {
		hints = append(hints, StoredHintResponse{Text: hint.Text, CreatedAt: hint.CreatedAt})
	}

	shared.RespondWithJSON(w, r, http.StatusOK, HintHistoryResponse{
		CardID:    cardID.String(),
		Hints:     hints,
		HintsUsed: history.HintsUsed,
	})
}

// ResetHints handles DELETE /api/cards/{cardID}/hints requests, clearing
// the card's hint history and usage counter so the next run generates a
// fresh first hint.
func (h *HintHandler) ResetHints(w http.ResponseWriter, r *http.Request) {
	cardID, err := uuid.Parse(chi.URLParam(r, "cardID"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid card ID")
		return
	}

	if err := h.hints.Reset(r.Context(), cardID); err != nil {
		if errors.Is(err, store.ErrStoreUnavailable) {
			// Nothing stored means nothing to clear.
			w.WriteHeader(http.StatusNoContent)
			return
		}
		status, message := MapError(err)
		shared.RespondWithErrorAndLog(w, r, status, message, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
