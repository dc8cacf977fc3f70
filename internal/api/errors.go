package api

import (
	"errors"
	"net/http"

	"github.com/phrazzld/dory-api/internal/domain"
	"github.com/phrazzld/dory-api/internal/generation"
	"github.com/phrazzld/dory-api/internal/store"
	"github.com/phrazzld/dory-api/internal/task"
)

// MapError maps pipeline and runner errors to an HTTP status code and a
// client-safe message. The raw error text stays in the logs.
func MapError(err error) (int, string) {
	switch {
	case err == nil:
		return http.StatusOK, ""
	case errors.Is(err, task.ErrRunInFlight):
		return http.StatusConflict, "a run is already in flight for this target"
	case errors.Is(err, task.ErrRunNotFound):
		return http.StatusNotFound, "run not found"
	case errors.Is(err, store.ErrCardNotFound):
		return http.StatusNotFound, "card not found"
	case errors.Is(err, domain.ErrValidation), errors.Is(err, generation.ErrIngestion):
		return http.StatusBadRequest, "invalid generation request"
	case errors.Is(err, generation.ErrCancelled):
		return http.StatusConflict, "run was cancelled"
	case errors.Is(err, generation.ErrProviderAuth):
		return http.StatusBadGateway, "model provider rejected our credentials"
	case errors.Is(err, generation.ErrProviderTransient):
		return http.StatusServiceUnavailable, "model provider is temporarily unavailable"
	case errors.Is(err, generation.ErrProviderVendor),
		errors.Is(err, generation.ErrMalformedResponse),
		errors.Is(err, generation.ErrNoValidContent):
		return http.StatusBadGateway, "model provider returned an unusable response"
	case errors.Is(err, generation.ErrPersistence):
		return http.StatusInternalServerError, "failed to save generated content"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}
