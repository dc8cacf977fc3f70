// Package store defines the persistence interfaces consumed by the
// generation pipeline and the errors shared by their implementations.
// Concrete backends live under internal/platform.
package store
