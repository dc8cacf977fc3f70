package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/dory-api/internal/domain"
	"github.com/phrazzld/dory-api/internal/store"
)

// PostgresCardStore implements the store.CardStore interface
// using a PostgreSQL database as the storage backend.
type PostgresCardStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCardStore creates a new PostgreSQL implementation of the
// CardStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller. If logger is
// nil, a default logger will be used.
func NewPostgresCardStore(db store.DBTX, logger *slog.Logger) *PostgresCardStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresCardStore{
		db:     db,
		logger: logger.With(slog.String("component", "card_store")),
	}
}

// Ensure PostgresCardStore implements store.CardStore interface
var _ store.CardStore = (*PostgresCardStore)(nil)

// NewCard implements store.CardStore.NewCard. The returned handle
// stages fields in memory; nothing touches the database until Commit.
func (s *PostgresCardStore) NewCard(ctx context.Context, deckID string) (store.CardHandle, error) {
	if strings.TrimSpace(deckID) == "" {
		return nil, fmt.Errorf("%w: deck ID cannot be empty", store.ErrInvalidEntity)
	}

	return &cardHandle{
		store:  s,
		id:     uuid.New(),
		deckID: deckID,
	}, nil
}

// GetCard implements store.CardStore.GetCard.
// Returns store.ErrCardNotFound if the card does not exist.
func (s *PostgresCardStore) GetCard(ctx context.Context, cardID uuid.UUID) (*domain.CardContent, error) {
	query := `SELECT front, back FROM cards WHERE id = $1`

	var content domain.CardContent
	err := s.db.QueryRowContext(ctx, query, cardID).Scan(&content.Front, &content.Back)
	if err != nil {
		mapped := MapError(err)
		if IsNotFoundError(mapped) {
			return nil, fmt.Errorf("%w: %s", store.ErrCardNotFound, cardID)
		}
		return nil, mapped
	}

	return &content, nil
}

// cardHandle stages a single card until Commit writes it.
type cardHandle struct {
	store  *PostgresCardStore
	id     uuid.UUID
	deckID string
	front  string
	back   string
	tags   []string
}

// SetFields implements store.CardHandle.SetFields.
func (h *cardHandle) SetFields(front, back string) {
	h.front = front
	h.back = back
}

// AddTags implements store.CardHandle.AddTags.
func (h *cardHandle) AddTags(tags ...string) {
	h.tags = append(h.tags, tags...)
}

// Commit implements store.CardHandle.Commit. Tags are stored
// space-separated, matching how flashcard decks conventionally tag.
func (h *cardHandle) Commit(ctx context.Context) error {
	query := `
		INSERT INTO cards (id, deck_id, front, back, tags, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := h.store.db.ExecContext(ctx, query,
		h.id, h.deckID, h.front, h.back, strings.Join(h.tags, " "), time.Now().UTC())
	if err != nil {
		return MapError(err)
	}

	h.store.logger.DebugContext(ctx, "card committed",
		slog.String("card_id", h.id.String()),
		slog.String("deck_id", h.deckID))
	return nil
}
