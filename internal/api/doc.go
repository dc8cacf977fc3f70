// Package api contains the HTTP handlers for starting, observing, and
// cancelling generation runs, plus the mapping from pipeline errors to
// HTTP status codes.
package api
