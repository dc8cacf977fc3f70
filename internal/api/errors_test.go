package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/phrazzld/dory-api/internal/generation"
	"github.com/phrazzld/dory-api/internal/store"
	"github.com/phrazzld/dory-api/internal/task"
)

func TestMapErrorStatuses(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"nil is OK", nil, http.StatusOK},
		{"run in flight is conflict", task.ErrRunInFlight, http.StatusConflict},
		{"run not found is 404", task.ErrRunNotFound, http.StatusNotFound},
		{"card not found is 404", store.ErrCardNotFound, http.StatusNotFound},
		{"ingestion failure is 400", generation.ErrIngestion, http.StatusBadRequest},
		{"cancellation is conflict", generation.ErrCancelled, http.StatusConflict},
		{"provider auth is bad gateway", generation.ErrProviderAuth, http.StatusBadGateway},
		{"provider transient is 503", generation.ErrProviderTransient, http.StatusServiceUnavailable},
		{"malformed response is bad gateway", generation.ErrMalformedResponse, http.StatusBadGateway},
		{"no valid content is bad gateway", generation.ErrNoValidContent, http.StatusBadGateway},
		{"persistence failure is 500", generation.ErrPersistence, http.StatusInternalServerError},
		{"unknown errors are 500", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, _ := MapError(tc.err)
			assert.Equal(t, tc.status, status)
		})
	}
}

func TestMapErrorUnwrapsChains(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("run failed: %w", fmt.Errorf("%w: rate limited", generation.ErrProviderTransient))
	status, message := MapError(wrapped)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.NotContains(t, message, "rate limited")
}
