package postgres

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/dory-api/internal/store"
)

// recordingDB captures ExecContext calls so staging behavior can be
// asserted without a live database.
type recordingDB struct {
	execQueries []string
	execArgs    [][]any
	execErr     error
}

func (db *recordingDB) ExecContext(_ context.Context, query string, args ...any) (sql.Result, error) {
	db.execQueries = append(db.execQueries, query)
	db.execArgs = append(db.execArgs, args)
	return nil, db.execErr
}

func (db *recordingDB) PrepareContext(context.Context, string) (*sql.Stmt, error) {
	return nil, nil
}

func (db *recordingDB) QueryContext(context.Context, string, ...any) (*sql.Rows, error) {
	return nil, sql.ErrNoRows
}

func (db *recordingDB) QueryRowContext(context.Context, string, ...any) *sql.Row {
	return nil
}

func TestNewPostgresCardStore(t *testing.T) {
	t.Parallel()

	t.Run("panics on nil db", func(t *testing.T) {
		assert.Panics(t, func() { NewPostgresCardStore(nil, nil) })
	})

	t.Run("nil logger falls back to default", func(t *testing.T) {
		assert.NotPanics(t, func() { NewPostgresCardStore(&recordingDB{}, nil) })
	})
}

func TestCardHandleStaging(t *testing.T) {
	t.Parallel()

	t.Run("rejects empty deck ID", func(t *testing.T) {
		cardStore := NewPostgresCardStore(&recordingDB{}, nil)
		_, err := cardStore.NewCard(context.Background(), "   ")
		assert.ErrorIs(t, err, store.ErrInvalidEntity)
	})

	t.Run("nothing is written before Commit", func(t *testing.T) {
		db := &recordingDB{}
		cardStore := NewPostgresCardStore(db, nil)

		handle, err := cardStore.NewCard(context.Background(), "biology")
		require.NoError(t, err)

		handle.SetFields("front text", "back text")
		handle.AddTags("dory", "ai-generated")
		assert.Empty(t, db.execQueries)
	})

	t.Run("Commit writes one insert with joined tags", func(t *testing.T) {
		db := &recordingDB{}
		cardStore := NewPostgresCardStore(db, nil)

		handle, err := cardStore.NewCard(context.Background(), "biology")
		require.NoError(t, err)
		handle.SetFields("front text", "back text")
		handle.AddTags("dory", "ai-generated")

		require.NoError(t, handle.Commit(context.Background()))
		require.Len(t, db.execQueries, 1)
		assert.Contains(t, db.execQueries[0], "INSERT INTO cards")

		args := db.execArgs[0]
		require.Len(t, args, 6)
		assert.Equal(t, "biology", args[1])
		assert.Equal(t, "front text", args[2])
		assert.Equal(t, "back text", args[3])
		assert.Equal(t, "dory ai-generated", args[4])
	})

	t.Run("Commit maps database errors", func(t *testing.T) {
		db := &recordingDB{execErr: sql.ErrConnDone}
		cardStore := NewPostgresCardStore(db, nil)

		handle, err := cardStore.NewCard(context.Background(), "biology")
		require.NoError(t, err)
		handle.SetFields("front text", "back text")

		assert.Error(t, handle.Commit(context.Background()))
	})
}
