package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the store.
	ErrNotFound = errors.New("entity not found")

	// ErrCardNotFound indicates that the requested card does not exist in the store.
	ErrCardNotFound = fmt.Errorf("%w: card", ErrNotFound)

	// ErrStoreUnavailable is returned when the underlying storage for a
	// best-effort feature is missing or broken (for example the hint
	// table is absent). Callers distinguish this from "no data yet" and
	// degrade instead of failing: card review must never break because
	// the hint store is down.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored. Check the wrapped error for specific validation details.
	ErrInvalidEntity = errors.New("invalid entity")
)
