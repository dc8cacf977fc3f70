package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/phrazzld/dory-api/internal/domain"
	"github.com/phrazzld/dory-api/internal/ingest"
	"github.com/phrazzld/dory-api/internal/store"
)

// Orchestrator construction errors.
var (
	ErrNilProvider  = errors.New("provider cannot be nil")
	ErrNilPrompts   = errors.New("prompt builder cannot be nil")
	ErrNilCardStore = errors.New("card store cannot be nil")
	ErrNilHintStore = errors.New("hint store cannot be nil")
	ErrNilExtractor = errors.New("document extractor cannot be nil")
	ErrNilLogger    = errors.New("logger cannot be nil")
)

// OrchestratorConfig carries the bounds and defaults applied to every run.
type OrchestratorConfig struct {
	CountBounds     domain.CountBounds
	FieldBounds     domain.FieldBounds
	DefaultTags     []string
	MaxSourceLength int
}

// Orchestrator drives the generation pipeline: ingest, prompt build,
// model call, parse, validate, persist. It is the only component aware
// of cancellation and progress; everything it calls is a stateless
// transform or pure storage.
type Orchestrator struct {
	provider  Provider
	prompts   *PromptBuilder
	cards     store.CardStore
	hints     store.HintStore
	extractor ingest.DocumentExtractor
	cfg       OrchestratorConfig
	logger    *slog.Logger
}

// NewOrchestrator creates an Orchestrator, validating all dependencies.
func NewOrchestrator(
	provider Provider,
	prompts *PromptBuilder,
	cards store.CardStore,
	hints store.HintStore,
	extractor ingest.DocumentExtractor,
	cfg OrchestratorConfig,
	logger *slog.Logger,
) (*Orchestrator, error) {
	if provider == nil {
		return nil, ErrNilProvider
	}
	if prompts == nil {
		return nil, ErrNilPrompts
	}
	if cards == nil {
		return nil, ErrNilCardStore
	}
	if hints == nil {
		return nil, ErrNilHintStore
	}
	if extractor == nil {
		return nil, ErrNilExtractor
	}
	if logger == nil {
		return nil, ErrNilLogger
	}

	return &Orchestrator{
		provider:  provider,
		prompts:   prompts,
		cards:     cards,
		hints:     hints,
		extractor: extractor,
		cfg:       cfg,
		logger:    logger.With("component", "orchestrator"),
	}, nil
}

// DeckResult is the terminal result of a deck generation run. On a
// persistence failure or cancellation mid-persist it is still returned
// alongside the error so the caller can see how many cards were already
// committed: earlier cards stay in place.
type DeckResult struct {
	DeckID         string                 `json:"deck_id"`
	Cards          []domain.CandidateCard `json:"cards"`
	CardsPersisted int                    `json:"cards_persisted"`
}

// HintResult is the terminal result of a hint generation run.
type HintResult struct {
	Hint       *domain.Hint `json:"hint"`
	HintNumber int          `json:"hint_number"`
	Reused     bool         `json:"reused"`
}

// checkpoint returns ErrCancelled once the context is done. It is
// polled at the start of every stage and inside every per-item loop.
func checkpoint(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrCancelled, err)
	}
	return nil
}

// GenerateDeck executes one deck generation run. Progress reports are
// delivered through report with non-decreasing percents; the caller owns
// marshalling them off this goroutine.
func (o *Orchestrator) GenerateDeck(
	ctx context.Context,
	req *domain.GenerationRequest,
	report ProgressFunc,
) (*DeckResult, error) {
	progress := newProgressTracker(report)
	logger := o.logger.With("deck_id", req.DeckID, "source_kind", string(req.SourceKind))

	if err := req.Validate(o.cfg.CountBounds); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIngestion, err)
	}

	// Stage: ingest
	if err := checkpoint(ctx); err != nil {
		return nil, err
	}
	progress.emit(StageIngest, 0, "Reading source content")

	sourceText, err := o.ingestSource(ctx, req, progress, logger)
	if err != nil {
		return nil, err
	}

	// Stage: prompt_build
	if err := checkpoint(ctx); err != nil {
		return nil, err
	}
	prompt, err := o.prompts.Render(TemplateCardGeneration, CardVars{
		Topic:      req.Topic,
		Difficulty: req.Difficulty,
		NumCards:   req.NumCards,
		SourceText: sourceText,
	})
	if err != nil {
		return nil, err
	}
	progress.emit(StagePromptBuild, 20, "Prompt prepared")

	// Stage: model_call
	raw, err := o.callProvider(ctx, SystemPrompt(TemplateCardGeneration), prompt, logger)
	if err != nil {
		return nil, err
	}
	progress.emit(StageModelCall, 60, "Model response received")

	// Stage: parse. A non-JSON or truncated response is the parser's
	// problem; it owns the decision of what is recoverable.
	if err := checkpoint(ctx); err != nil {
		return nil, err
	}
	candidates, err := ParseCandidates(raw)
	if err != nil {
		return nil, err
	}
	progress.emit(StageParse, 80, fmt.Sprintf("Parsed %d candidate cards", len(candidates)))

	// Stage: validate. Each invalid candidate is dropped individually;
	// one bad card does not abort the batch.
	valid := make([]domain.CandidateCard, 0, len(candidates))
	for i := range candidates {
		if err := checkpoint(ctx); err != nil {
			return nil, err
		}

		candidate := candidates[i]
		if err := candidate.Validate(o.cfg.FieldBounds); err != nil {
			logger.Debug("dropping invalid candidate card",
				"index", i,
				"reason", err,
				"front_length", len(candidate.Front),
				"back_length", len(candidate.Back))
			continue
		}
		candidate.Tags = mergeTags(o.cfg.DefaultTags, candidate.Tags)
		valid = append(valid, candidate)
	}

	if len(valid) == 0 {
		return nil, fmt.Errorf("%w: all %d candidates failed validation", ErrNoValidContent, len(candidates))
	}
	progress.emit(StageValidate, 90, fmt.Sprintf("%d of %d cards passed validation", len(valid), len(candidates)))

	// Stage: persist. Cards are handed to the card store one at a time
	// in array order. A failure on one card is fatal for the run; cards
	// already committed in this run stay in place.
	result := &DeckResult{DeckID: req.DeckID, Cards: valid}
	for i, card := range valid {
		if err := checkpoint(ctx); err != nil {
			return result, err
		}

		handle, err := o.cards.NewCard(ctx, req.DeckID)
		if err != nil {
			return result, fmt.Errorf("%w: card %d: %v", ErrPersistence, i, err)
		}
		handle.SetFields(card.Front, card.Back)
		handle.AddTags(card.Tags...)

		if err := handle.Commit(ctx); err != nil {
			return result, fmt.Errorf("%w: card %d: %v", ErrPersistence, i, err)
		}

		result.CardsPersisted++
		percent := 90 + (i+1)*10/len(valid)
		progress.emit(StagePersist, percent, fmt.Sprintf("Saved card %d/%d", i+1, len(valid)))
	}

	progress.emit(StagePersist, 100, fmt.Sprintf("Generated %d cards", result.CardsPersisted))
	logger.Info("deck generation completed", "cards_persisted", result.CardsPersisted)
	return result, nil
}

// GenerateHint executes one hint generation run. A non-empty history
// short-circuits the pipeline and returns the most recent hint without
// invoking the provider; this is a cost-control policy, not a
// correctness requirement.
func (o *Orchestrator) GenerateHint(
	ctx context.Context,
	req *domain.HintRequest,
	report ProgressFunc,
) (*HintResult, error) {
	progress := newProgressTracker(report)
	logger := o.logger.With("card_id", req.CardID)

	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIngestion, err)
	}

	// Stage: history_check
	if err := checkpoint(ctx); err != nil {
		return nil, err
	}
	progress.emit(StageHistoryCheck, 0, "Checking hint history")

	history := o.loadHistory(ctx, req.CardID, logger)
	if latest := history.Latest(); latest != nil {
		if err := o.hints.RecordUsage(ctx, req.CardID); err != nil {
			logger.Warn("failed to record hint usage", "error", err)
		}
		progress.emit(StagePersist, 100, "Reusing most recent hint")
		logger.Info("hint cache hit", "hint_count", len(history.Hints))
		return &HintResult{Hint: latest, HintNumber: len(history.Hints), Reused: true}, nil
	}

	// Stage: prompt_build
	if err := checkpoint(ctx); err != nil {
		return nil, err
	}
	content, err := o.cards.GetCard(ctx, req.CardID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load card content: %v", ErrIngestion, err)
	}

	previous := make([]string, 0, len(history.Hints))
	for _, h := range history.Hints {
		previous = append(previous, h.Text)
	}

	prompt, err := o.prompts.Render(TemplateHint, HintVars{
		Question:      content.Front,
		Answer:        content.Back,
		PreviousHints: previous,
	})
	if err != nil {
		return nil, err
	}
	progress.emit(StagePromptBuild, 20, "Prompt prepared")

	// Stage: model_call
	raw, err := o.callProvider(ctx, SystemPrompt(TemplateHint), prompt, logger)
	if err != nil {
		return nil, err
	}
	progress.emit(StageModelCall, 60, "Model response received")

	// Stage: parse
	text := strings.TrimSpace(raw)
	text = strings.Trim(text, `"`)
	hint, err := domain.NewHint(req.CardID, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoValidContent, err)
	}
	progress.emit(StageParse, 80, "Hint extracted")

	// Stage: persist. Hint storage is best-effort: a store failure is
	// logged and swallowed so the review flow still gets its hint.
	if err := o.hints.Append(ctx, hint); err != nil {
		logger.Warn("failed to persist hint, returning it unsaved", "error", err)
	}

	progress.emit(StagePersist, 100, "Hint generated")
	logger.Info("hint generated", "hint_number", len(history.Hints)+1)
	return &HintResult{Hint: hint, HintNumber: len(history.Hints) + 1, Reused: false}, nil
}

// ingestSource produces prompt-ready text for the request, reporting
// per-page progress for documents and silently truncating oversized
// input (a known lossy step).
func (o *Orchestrator) ingestSource(
	ctx context.Context,
	req *domain.GenerationRequest,
	progress *progressTracker,
	logger *slog.Logger,
) (string, error) {
	var text string

	switch req.SourceKind {
	case domain.SourceRawText:
		text = req.RawText

	case domain.SourceDocument:
		pageCount, err := o.extractor.PageCount(ctx, req.DocumentPath)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrIngestion, err)
		}

		var pages []string
		for i := 0; i < pageCount; i++ {
			if err := checkpoint(ctx); err != nil {
				return "", err
			}

			page, err := o.extractor.ExtractPage(ctx, req.DocumentPath, i)
			if err != nil {
				return "", fmt.Errorf("%w: page %d: %v", ErrIngestion, i+1, err)
			}
			pages = append(pages, page)

			percent := (i + 1) * 15 / pageCount
			progress.emit(StageIngest, percent,
				fmt.Sprintf("Extracting text from page %d/%d", i+1, pageCount))
		}
		text = strings.Join(pages, "\n")
	}

	truncated, cut := ingest.Truncate(text, o.cfg.MaxSourceLength)
	if cut {
		logger.Warn("source text truncated before prompting",
			"original_length", utf8.RuneCountInString(text),
			"truncated_length", o.cfg.MaxSourceLength)
	}

	if strings.TrimSpace(truncated) == "" {
		return "", fmt.Errorf("%w: source content empty after extraction", ErrIngestion)
	}

	return truncated, nil
}

// callProvider makes the run's single model invocation, retrying exactly
// once after a transient failure. Auth and vendor errors are fatal
// immediately.
func (o *Orchestrator) callProvider(
	ctx context.Context,
	systemPrompt, userPrompt string,
	logger *slog.Logger,
) (string, error) {
	if err := checkpoint(ctx); err != nil {
		return "", err
	}

	raw, err := o.provider.Complete(ctx, systemPrompt, userPrompt)
	if err == nil {
		return raw, nil
	}

	// A call abandoned by cancellation surfaces as a transport error;
	// classify it as cancelled, not transient.
	if ctx.Err() != nil {
		return "", fmt.Errorf("%w: %v", ErrCancelled, ctx.Err())
	}

	if !errors.Is(err, ErrProviderTransient) {
		return "", err
	}

	logger.Warn("transient provider failure, retrying once",
		"provider", o.provider.Name(),
		"error", err)

	if err := checkpoint(ctx); err != nil {
		return "", err
	}

	raw, retryErr := o.provider.Complete(ctx, systemPrompt, userPrompt)
	if retryErr != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("%w: %v", ErrCancelled, ctx.Err())
		}
		return "", retryErr
	}
	return raw, nil
}

// loadHistory fetches the card's hint history, degrading to an empty
// history when the store is unavailable so review never breaks.
func (o *Orchestrator) loadHistory(ctx context.Context, cardID uuid.UUID, logger *slog.Logger) *domain.HintHistory {
	history, err := o.hints.History(ctx, cardID)
	if err != nil {
		if errors.Is(err, store.ErrStoreUnavailable) {
			logger.Warn("hint store unavailable, treating history as empty")
		} else {
			logger.Warn("failed to load hint history, treating as empty", "error", err)
		}
		return &domain.HintHistory{}
	}
	return history
}

func mergeTags(defaults, extra []string) []string {
	seen := make(map[string]struct{}, len(defaults)+len(extra))
	merged := make([]string, 0, len(defaults)+len(extra))
	for _, tag := range append(append([]string{}, defaults...), extra...) {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		merged = append(merged, tag)
	}
	return merged
}
