package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/phrazzld/dory-api/internal/api"
	apiMiddleware "github.com/phrazzld/dory-api/internal/api/middleware"
	"github.com/phrazzld/dory-api/internal/config"
	"github.com/phrazzld/dory-api/internal/domain"
	"github.com/phrazzld/dory-api/internal/store"
	"github.com/phrazzld/dory-api/internal/task"
)

// newRouter creates the application router with all routes and
// middleware.
func newRouter(runner *task.Runner, hints store.HintStore, log *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.Trace)

	generationHandler := api.NewGenerationHandler(runner)
	hintHandler := api.NewHintHandler(runner, hints)

	r.Route("/api", func(r chi.Router) {
		// Deck generation runs
		r.Post("/generations", generationHandler.CreateDeckRun)

		// Run observation and control
		r.Get("/runs/{runID}", generationHandler.GetRun)
		r.Post("/runs/{runID}/cancel", generationHandler.CancelRun)
		r.Delete("/runs/{runID}", generationHandler.DeleteRun)

		// Hint generation runs and stored hint history
		r.Post("/cards/{cardID}/hints", hintHandler.CreateHintRun)
		r.Get("/cards/{cardID}/hints", hintHandler.GetHints)
		r.Delete("/cards/{cardID}/hints", hintHandler.ResetHints)
	})

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			log.Error("failed to write health check response", "error", err)
		}
	})

	return r
}

// domainCountBounds maps the generation config to card count bounds.
func domainCountBounds(cfg config.GenerationConfig) domain.CountBounds {
	return domain.CountBounds{Min: cfg.MinCards, Max: cfg.MaxCards}
}

// domainFieldBounds maps the generation config to card field bounds.
func domainFieldBounds(cfg config.GenerationConfig) domain.FieldBounds {
	return domain.FieldBounds{Min: cfg.MinFieldLength, Max: cfg.MaxFieldLength}
}
