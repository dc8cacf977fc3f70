package generation

// Stage is a named phase of a run with a defined progress sub-range.
type Stage string

// Deck generation stages, in execution order.
const (
	StageIngest      Stage = "ingest"       // 0%
	StagePromptBuild Stage = "prompt_build" // 0-20%
	StageModelCall   Stage = "model_call"   // 20-60%
	StageParse       Stage = "parse"        // 60-80%
	StageValidate    Stage = "validate"     // 80-90%
	StagePersist     Stage = "persist"      // 90-100%
)

// Hint generation stages. history_check short-circuits the rest when a
// cached hint exists.
const (
	StageHistoryCheck Stage = "history_check"
)

// Progress is a point-in-time report emitted during a run. Percent is
// monotonically non-decreasing within one run and stages follow the
// fixed order above. Progress values are emitted repeatedly and never
// persisted.
type Progress struct {
	Stage   Stage  `json:"stage"`
	Percent int    `json:"percent"`
	Message string `json:"message"`
}

// ProgressFunc receives progress reports from a run. Implementations
// must not block; the execution boundary is responsible for marshalling
// reports back to the caller.
type ProgressFunc func(Progress)

// progressTracker clamps reported percents so they never decrease
// within a run, regardless of how stage sub-ranges interleave.
type progressTracker struct {
	report ProgressFunc
	last   int
}

func newProgressTracker(report ProgressFunc) *progressTracker {
	return &progressTracker{report: report}
}

func (p *progressTracker) emit(stage Stage, percent int, message string) {
	if percent < p.last {
		percent = p.last
	}
	if percent > 100 {
		percent = 100
	}
	p.last = percent

	if p.report != nil {
		p.report(Progress{Stage: stage, Percent: percent, Message: message})
	}
}
