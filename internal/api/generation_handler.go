package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/phrazzld/dory-api/internal/api/shared"
	"github.com/phrazzld/dory-api/internal/domain"
	"github.com/phrazzld/dory-api/internal/generation"
	"github.com/phrazzld/dory-api/internal/task"
)

// CreateDeckRunRequest represents the request body for starting a deck
// generation run.
type CreateDeckRunRequest struct {
	SourceKind   string `json:"source_kind"   validate:"required,oneof=raw_text document"`
	RawText      string `json:"raw_text"`
	DocumentPath string `json:"document_path"`
	DeckID       string `json:"deck_id"       validate:"required"`
	Topic        string `json:"topic"`
	Difficulty   string `json:"difficulty"`
	NumCards     int    `json:"num_cards"     validate:"required,gt=0"`
}

// RunResponse represents a freshly started run.
type RunResponse struct {
	RunID  string `json:"run_id"`
	Kind   string `json:"kind"`
	Target string `json:"target"`
	Status string `json:"status"`
}

// RunStatusResponse represents a run's current state, including the
// terminal outcome once the run has finished.
type RunStatusResponse struct {
	RunID  string `json:"run_id"`
	Kind   string `json:"kind"`
	Target string `json:"target"`
	Status string `json:"status"`

	Stage   string `json:"stage,omitempty"`
	Percent int    `json:"percent"`
	Message string `json:"message,omitempty"`

	CardsPersisted *int          `json:"cards_persisted,omitempty"`
	Hint           *HintResponse `json:"hint,omitempty"`
	Error          string        `json:"error,omitempty"`
}

// GenerationHandler handles deck generation run HTTP requests
type GenerationHandler struct {
	runner    *task.Runner
	validator *validator.Validate
}

// NewGenerationHandler creates a new GenerationHandler
func NewGenerationHandler(runner *task.Runner) *GenerationHandler {
	return &GenerationHandler{
		runner:    runner,
		validator: validator.New(),
	}
}

// CreateDeckRun handles POST /api/generations requests. Generation is
// asynchronous: the response is 202 Accepted with the run's ID, and the
// caller polls the run endpoint for progress.
func (h *GenerationHandler) CreateDeckRun(w http.ResponseWriter, r *http.Request) {
	var req CreateDeckRunRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	handle, err := h.runner.StartDeckRun(&domain.GenerationRequest{
		SourceKind:   domain.SourceKind(req.SourceKind),
		RawText:      req.RawText,
		DocumentPath: req.DocumentPath,
		DeckID:       req.DeckID,
		Topic:        req.Topic,
		Difficulty:   req.Difficulty,
		NumCards:     req.NumCards,
	})
	if err != nil {
		status, message := MapError(err)
		shared.RespondWithErrorAndLog(w, r, status, message, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, runToResponse(handle))
}

// GetRun handles GET /api/runs/{runID} requests.
func (h *GenerationHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	runID, err := uuid.Parse(chi.URLParam(r, "runID"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid run ID")
		return
	}

	handle, err := h.runner.Get(runID)
	if err != nil {
		status, message := MapError(err)
		shared.RespondWithErrorAndLog(w, r, status, message, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, snapshotToResponse(handle.Snapshot()))
}

// CancelRun handles POST /api/runs/{runID}/cancel requests. Cancellation
// is asynchronous: the run stops at its next checkpoint, so the response
// is 202 Accepted rather than a terminal state.
func (h *GenerationHandler) CancelRun(w http.ResponseWriter, r *http.Request) {
	runID, err := uuid.Parse(chi.URLParam(r, "runID"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid run ID")
		return
	}

	if err := h.runner.Cancel(runID); err != nil {
		status, message := MapError(err)
		shared.RespondWithErrorAndLog(w, r, status, message, err)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

// DeleteRun handles DELETE /api/runs/{runID} requests, dropping a
// terminal run from the registry.
func (h *GenerationHandler) DeleteRun(w http.ResponseWriter, r *http.Request) {
	runID, err := uuid.Parse(chi.URLParam(r, "runID"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid run ID")
		return
	}

	if err := h.runner.Forget(runID); err != nil {
		status, message := MapError(err)
		shared.RespondWithErrorAndLog(w, r, status, message, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// runToResponse converts a run handle to a RunResponse
func runToResponse(handle *task.RunHandle) RunResponse {
	return RunResponse{
		RunID:  handle.ID().String(),
		Kind:   handle.Kind(),
		Target: handle.Target(),
		Status: string(task.RunStatusRunning),
	}
}

// snapshotToResponse converts a run snapshot to a RunStatusResponse
func snapshotToResponse(s task.Snapshot) RunStatusResponse {
	resp := RunStatusResponse{
		RunID:   s.ID.String(),
		Kind:    s.Kind,
		Target:  s.Target,
		Status:  string(s.Status),
		Stage:   string(s.Progress.Stage),
		Percent: s.Progress.Percent,
		Message: s.Progress.Message,
	}

	if s.Outcome.Deck != nil {
		persisted := s.Outcome.Deck.CardsPersisted
		resp.CardsPersisted = &persisted
	}
	if s.Outcome.Hint != nil {
		resp.Hint = hintToResponse(s.Outcome.Hint)
	}
	if s.Outcome.Err != nil {
		_, message := MapError(s.Outcome.Err)
		resp.Error = message
	}

	return resp
}

// hintToResponse converts a hint result to a HintResponse
func hintToResponse(result *generation.HintResult) *HintResponse {
	return &HintResponse{
		CardID:     result.Hint.CardID.String(),
		Text:       result.Hint.Text,
		HintNumber: result.HintNumber,
		Reused:     result.Reused,
	}
}
