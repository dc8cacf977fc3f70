package task

import (
	"sync"

	"github.com/google/uuid"

	"github.com/phrazzld/dory-api/internal/generation"
)

// RunStatus represents the current state of a run
type RunStatus string

// Possible run status values
const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
	RunStatusCancelled RunStatus = "cancelled"
)

// Run kind constants
const (
	// RunKindDeck represents a deck generation run
	RunKindDeck = "deck_generation"

	// RunKindHint represents a hint generation run
	RunKindHint = "hint_generation"
)

// Outcome is the terminal result of a run. Exactly one of Deck or Hint
// is set depending on the run kind; Err is set for failed and cancelled
// runs (and may coexist with a partial Deck result).
type Outcome struct {
	Deck *generation.DeckResult
	Hint *generation.HintResult
	Err  error
}

// Snapshot is a point-in-time view of a run, safe to read while the run
// is still moving.
type Snapshot struct {
	ID       uuid.UUID
	Kind     string
	Target   string
	Status   RunStatus
	Progress generation.Progress
	Outcome  Outcome
}

// RunHandle is the caller's view of one background run. Progress is a
// buffered channel: when the consumer lags, older reports are dropped
// rather than blocking the pipeline, and Snapshot always has the
// latest. Done is closed exactly once, after the outcome is recorded.
type RunHandle struct {
	id     uuid.UUID
	kind   string
	target string

	progress chan generation.Progress
	done     chan struct{}

	mu      sync.Mutex
	status  RunStatus
	latest  generation.Progress
	outcome Outcome
}

func newRunHandle(kind, target string, buffer int) *RunHandle {
	return &RunHandle{
		id:       uuid.New(),
		kind:     kind,
		target:   target,
		progress: make(chan generation.Progress, buffer),
		done:     make(chan struct{}),
		status:   RunStatusRunning,
	}
}

// ID returns the run's unique identifier.
func (h *RunHandle) ID() uuid.UUID { return h.id }

// Kind returns the run kind identifier.
func (h *RunHandle) Kind() string { return h.kind }

// Target returns the run's target key (deck ID or card ID).
func (h *RunHandle) Target() string { return h.target }

// Progress returns the run's progress channel. It is closed when the
// run reaches a terminal state.
func (h *RunHandle) Progress() <-chan generation.Progress { return h.progress }

// Done returns a channel closed once the run reaches a terminal state.
func (h *RunHandle) Done() <-chan struct{} { return h.done }

// Snapshot returns the run's current status, latest progress, and, once
// terminal, the outcome.
func (h *RunHandle) Snapshot() Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return Snapshot{
		ID:       h.id,
		Kind:     h.kind,
		Target:   h.target,
		Status:   h.status,
		Progress: h.latest,
		Outcome:  h.outcome,
	}
}

// publish records the report and offers it to the consumer without
// blocking. The oldest buffered report is evicted when the buffer is
// full.
func (h *RunHandle) publish(p generation.Progress) {
	h.mu.Lock()
	h.latest = p
	h.mu.Unlock()

	for {
		select {
		case h.progress <- p:
			return
		default:
			select {
			case <-h.progress:
			default:
			}
		}
	}
}

// finish records the terminal outcome and closes both channels. It must
// be called exactly once.
func (h *RunHandle) finish(status RunStatus, outcome Outcome) {
	h.mu.Lock()
	h.status = status
	h.outcome = outcome
	h.mu.Unlock()

	close(h.progress)
	close(h.done)
}
