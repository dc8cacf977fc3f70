package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/phrazzld/dory-api/internal/domain"
	"github.com/phrazzld/dory-api/internal/generation"
)

// Runner errors.
var (
	// ErrRunInFlight is returned when a run is already active for the
	// same target. Callers should surface this as a conflict, not retry.
	ErrRunInFlight = errors.New("a run is already in flight for this target")

	// ErrRunNotFound is returned when no run exists for the given ID.
	ErrRunNotFound = errors.New("run not found")
)

// RunnerConfig holds configuration for the run manager.
type RunnerConfig struct {
	// ProgressBuffer is the per-run progress channel capacity. When a
	// consumer lags past it, older reports are dropped.
	ProgressBuffer int
}

// DefaultRunnerConfig returns a RunnerConfig with reasonable defaults.
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{ProgressBuffer: 16}
}

// Runner starts and tracks background generation runs. At most one run
// may be active per target (deck or card) at a time; a second request
// for the same target fails with ErrRunInFlight.
type Runner struct {
	orchestrator *generation.Orchestrator
	config       RunnerConfig
	logger       *slog.Logger

	mu       sync.Mutex
	inflight map[string]uuid.UUID
	runs     map[uuid.UUID]*run
	wg       sync.WaitGroup
}

type run struct {
	handle *RunHandle
	cancel context.CancelFunc
	key    string
}

// NewRunner creates a Runner around the generation orchestrator.
func NewRunner(orchestrator *generation.Orchestrator, config RunnerConfig, logger *slog.Logger) (*Runner, error) {
	if orchestrator == nil {
		return nil, errors.New("orchestrator cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if config.ProgressBuffer <= 0 {
		config.ProgressBuffer = DefaultRunnerConfig().ProgressBuffer
	}

	return &Runner{
		orchestrator: orchestrator,
		config:       config,
		logger:       logger.With("component", "run_manager"),
		inflight:     make(map[string]uuid.UUID),
		runs:         make(map[uuid.UUID]*run),
	}, nil
}

// StartDeckRun launches a deck generation run in the background and
// returns its handle. The run outlives the caller's request context;
// it stops only on Cancel or Stop.
func (r *Runner) StartDeckRun(req *domain.GenerationRequest) (*RunHandle, error) {
	key := RunKindDeck + ":" + req.DeckID
	return r.start(RunKindDeck, req.DeckID, key, func(ctx context.Context, handle *RunHandle) Outcome {
		result, err := r.orchestrator.GenerateDeck(ctx, req, handle.publish)
		return Outcome{Deck: result, Err: err}
	})
}

// StartHintRun launches a hint generation run in the background and
// returns its handle.
func (r *Runner) StartHintRun(req *domain.HintRequest) (*RunHandle, error) {
	key := RunKindHint + ":" + req.CardID.String()
	return r.start(RunKindHint, req.CardID.String(), key, func(ctx context.Context, handle *RunHandle) Outcome {
		result, err := r.orchestrator.GenerateHint(ctx, req, handle.publish)
		return Outcome{Hint: result, Err: err}
	})
}

func (r *Runner) start(kind, target, key string, execute func(context.Context, *RunHandle) Outcome) (*RunHandle, error) {
	r.mu.Lock()
	if active, ok := r.inflight[key]; ok {
		r.mu.Unlock()
		return nil, fmt.Errorf("%w: run %s", ErrRunInFlight, active)
	}

	handle := newRunHandle(kind, target, r.config.ProgressBuffer)
	ctx, cancel := context.WithCancel(context.Background())
	r.inflight[key] = handle.id
	r.runs[handle.id] = &run{handle: handle, cancel: cancel, key: key}
	r.wg.Add(1)
	r.mu.Unlock()

	logger := r.logger.With("run_id", handle.id, "run_kind", kind, "target", target)
	logger.Info("run started")

	go func() {
		defer r.wg.Done()
		defer cancel()

		outcome := execute(ctx, handle)
		status := statusFor(outcome.Err)

		r.mu.Lock()
		delete(r.inflight, key)
		r.mu.Unlock()

		handle.finish(status, outcome)

		switch status {
		case RunStatusCompleted:
			logger.Info("run completed")
		case RunStatusCancelled:
			logger.Info("run cancelled")
		default:
			logger.Error("run failed", "error", outcome.Err)
		}
	}()

	return handle, nil
}

// Cancel requests cancellation of the run with the given ID. The run
// stops at its next checkpoint; work already persisted stays in place.
func (r *Runner) Cancel(runID uuid.UUID) error {
	r.mu.Lock()
	active, ok := r.runs[runID]
	r.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}

	active.cancel()
	return nil
}

// Get returns the handle for the run with the given ID. Terminal runs
// stay retrievable until Forget.
func (r *Runner) Get(runID uuid.UUID) (*RunHandle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	active, ok := r.runs[runID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return active.handle, nil
}

// Forget drops a terminal run from the registry. Forgetting a run that
// is still in flight is not allowed.
func (r *Runner) Forget(runID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	active, ok := r.runs[runID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if active.handle.Snapshot().Status == RunStatusRunning {
		return fmt.Errorf("%w: run %s is still running", ErrRunInFlight, runID)
	}

	delete(r.runs, runID)
	return nil
}

// Stop cancels every active run and waits for their goroutines to exit.
func (r *Runner) Stop() {
	r.mu.Lock()
	for _, active := range r.runs {
		active.cancel()
	}
	r.mu.Unlock()

	r.wg.Wait()
}

// statusFor maps a run's terminal error to its status.
func statusFor(err error) RunStatus {
	switch {
	case err == nil:
		return RunStatusCompleted
	case errors.Is(err, generation.ErrCancelled):
		return RunStatusCancelled
	default:
		return RunStatusFailed
	}
}
