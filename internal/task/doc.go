// Package task manages background generation runs: it starts deck and
// hint runs on their own goroutines, enforces one run per target at a
// time, and exposes per-run handles for progress, cancellation, and the
// terminal outcome.
package task
