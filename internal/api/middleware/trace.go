// Package middleware contains HTTP middleware shared by all routes.
package middleware

import (
	"net/http"

	"github.com/phrazzld/dory-api/internal/api/shared"
)

// Trace attaches a trace ID to every request context so that error
// responses and log lines can be correlated.
func Trace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(shared.SetTraceID(r.Context())))
	})
}
