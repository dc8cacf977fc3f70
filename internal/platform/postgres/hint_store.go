package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/phrazzld/dory-api/internal/domain"
	"github.com/phrazzld/dory-api/internal/store"
)

// PostgresHintStore implements the store.HintStore interface using a
// PostgreSQL database as the storage backend. All errors pass through
// MapError, so a missing hints schema surfaces as ErrStoreUnavailable
// and callers can degrade.
type PostgresHintStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresHintStore creates a new PostgreSQL implementation of the
// HintStore interface. If logger is nil, a default logger will be used.
func NewPostgresHintStore(db store.DBTX, logger *slog.Logger) *PostgresHintStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresHintStore{
		db:     db,
		logger: logger.With(slog.String("component", "hint_store")),
	}
}

// Ensure PostgresHintStore implements store.HintStore interface
var _ store.HintStore = (*PostgresHintStore)(nil)

// History implements store.HintStore.History, returning hints in
// creation order together with the usage counter.
func (s *PostgresHintStore) History(ctx context.Context, cardID uuid.UUID) (*domain.HintHistory, error) {
	query := `
		SELECT hint_text, created_at
		FROM hints
		WHERE card_id = $1
		ORDER BY created_at ASC`

	rows, err := s.db.QueryContext(ctx, query, cardID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	history := &domain.HintHistory{}
	for rows.Next() {
		hint := domain.Hint{CardID: cardID}
		if err := rows.Scan(&hint.Text, &hint.CreatedAt); err != nil {
			return nil, MapError(err)
		}
		history.Hints = append(history.Hints, hint)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	used, err := s.UsageCount(ctx, cardID)
	if err != nil {
		return nil, err
	}
	history.HintsUsed = used

	return history, nil
}

// Append implements store.HintStore.Append. The usage counter is set to
// the new history length so that the counter and the history never
// drift apart.
func (s *PostgresHintStore) Append(ctx context.Context, hint *domain.Hint) error {
	if hint == nil {
		return fmt.Errorf("%w: hint cannot be nil", store.ErrInvalidEntity)
	}

	insert := `
		INSERT INTO hints (id, card_id, hint_text, created_at)
		VALUES ($1, $2, $3, $4)`

	if _, err := s.db.ExecContext(ctx, insert,
		uuid.New(), hint.CardID, hint.Text, hint.CreatedAt); err != nil {
		return MapError(err)
	}

	sync := `
		INSERT INTO hint_usage (card_id, hints_used)
		VALUES ($1, (SELECT COUNT(*) FROM hints WHERE card_id = $1))
		ON CONFLICT (card_id)
		DO UPDATE SET hints_used = EXCLUDED.hints_used`

	if _, err := s.db.ExecContext(ctx, sync, hint.CardID); err != nil {
		return MapError(err)
	}

	s.logger.DebugContext(ctx, "hint appended",
		slog.String("card_id", hint.CardID.String()))
	return nil
}

// UsageCount implements store.HintStore.UsageCount. A card with no
// usage row has a count of zero.
func (s *PostgresHintStore) UsageCount(ctx context.Context, cardID uuid.UUID) (int, error) {
	query := `SELECT hints_used FROM hint_usage WHERE card_id = $1`

	var count int
	err := s.db.QueryRowContext(ctx, query, cardID).Scan(&count)
	if err != nil {
		mapped := MapError(err)
		if IsNotFoundError(mapped) {
			return 0, nil
		}
		return 0, mapped
	}

	return count, nil
}

// RecordUsage implements store.HintStore.RecordUsage, incrementing the
// counter without touching the history.
func (s *PostgresHintStore) RecordUsage(ctx context.Context, cardID uuid.UUID) error {
	query := `
		INSERT INTO hint_usage (card_id, hints_used)
		VALUES ($1, 1)
		ON CONFLICT (card_id)
		DO UPDATE SET hints_used = hint_usage.hints_used + 1`

	if _, err := s.db.ExecContext(ctx, query, cardID); err != nil {
		return MapError(err)
	}
	return nil
}

// Reset implements store.HintStore.Reset, clearing both the history and
// the usage counter for the card.
func (s *PostgresHintStore) Reset(ctx context.Context, cardID uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM hints WHERE card_id = $1`, cardID); err != nil {
		return MapError(err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM hint_usage WHERE card_id = $1`, cardID); err != nil {
		return MapError(err)
	}

	s.logger.DebugContext(ctx, "hint history reset",
		slog.String("card_id", cardID.String()))
	return nil
}
