package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/phrazzld/dory-api/internal/store"
)

// PostgreSQL error codes
const (
	// foreignKeyViolationCode is the error code for foreign key violations
	foreignKeyViolationCode = "23503"

	// checkViolationCode is the error code for check constraint violations
	checkViolationCode = "23514"

	// notNullViolationCode is the error code for not null violations
	notNullViolationCode = "23502"

	// undefinedTableCode is the error code for queries against a table
	// that does not exist
	undefinedTableCode = "42P01"
)

// MapError maps a database error to an appropriate store error.
// It wraps the original error to preserve context for debugging.
// All database operations in this package route their errors through it.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %v", store.ErrNotFound, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case undefinedTableCode:
			// A missing table means the schema for this feature is absent,
			// not that a record is missing. Callers of best-effort stores
			// degrade on this instead of failing.
			return fmt.Errorf("%w: relation %s does not exist: %v",
				store.ErrStoreUnavailable, pgErr.TableName, err)
		case foreignKeyViolationCode:
			return fmt.Errorf("%w: foreign key violation (%s): %v",
				store.ErrInvalidEntity, pgErr.ConstraintName, err)
		case checkViolationCode:
			return fmt.Errorf("%w: check constraint violation (%s): %v",
				store.ErrInvalidEntity, pgErr.ConstraintName, err)
		case notNullViolationCode:
			return fmt.Errorf("%w: not null violation (%s): %v",
				store.ErrInvalidEntity, pgErr.ColumnName, err)
		}
	}

	return err
}

// IsNotFoundError checks if the given error represents a "not found"
// scenario, handling both sql.ErrNoRows and wrapped store.ErrNotFound.
func IsNotFoundError(err error) bool {
	return errors.Is(err, sql.ErrNoRows) || errors.Is(err, store.ErrNotFound)
}

// IsStoreUnavailable checks whether the error indicates the backing
// schema is missing or broken rather than a record being absent.
func IsStoreUnavailable(err error) bool {
	return errors.Is(err, store.ErrStoreUnavailable)
}
