// Command server runs the card generation API: it loads configuration,
// connects to PostgreSQL, selects the configured model provider, and
// serves the HTTP API until interrupted.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/phrazzld/dory-api/internal/config"
	"github.com/phrazzld/dory-api/internal/generation"
	"github.com/phrazzld/dory-api/internal/ingest"
	"github.com/phrazzld/dory-api/internal/platform/gemini"
	"github.com/phrazzld/dory-api/internal/platform/logger"
	"github.com/phrazzld/dory-api/internal/platform/openai"
	"github.com/phrazzld/dory-api/internal/platform/postgres"
	"github.com/phrazzld/dory-api/internal/task"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	migrateCmd := flag.String("migrate", "", "run database migrations (up, down, status) and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log := logger.Setup(cfg.Server)

	db, err := setupDatabase(cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if *migrateCmd != "" {
		log.Info("running migrations", "command", *migrateCmd)
		return postgres.RunMigrations(db, *migrateCmd)
	}

	ctx := context.Background()
	provider, err := newProvider(ctx, cfg.LLM, log)
	if err != nil {
		return fmt.Errorf("failed to create model provider: %w", err)
	}
	log.Info("model provider configured", "provider", provider.Name())

	prompts, err := generation.NewPromptBuilder(map[string]string{
		generation.TemplateHint:           cfg.Prompts.Hint,
		generation.TemplateCardGeneration: cfg.Prompts.CardGeneration,
	})
	if err != nil {
		return fmt.Errorf("failed to build prompt templates: %w", err)
	}

	cardStore := postgres.NewPostgresCardStore(db, log)
	hintStore := postgres.NewPostgresHintStore(db, log)

	orchestrator, err := generation.NewOrchestrator(
		provider, prompts, cardStore, hintStore, ingest.TextFileExtractor{},
		generation.OrchestratorConfig{
			CountBounds: domainCountBounds(cfg.Generation),
			FieldBounds: domainFieldBounds(cfg.Generation),
			DefaultTags: cfg.Generation.DefaultTags,

			MaxSourceLength: cfg.LLM.MaxSourceLength,
		},
		log,
	)
	if err != nil {
		return fmt.Errorf("failed to create orchestrator: %w", err)
	}

	runner, err := task.NewRunner(orchestrator, task.DefaultRunnerConfig(), log)
	if err != nil {
		return fmt.Errorf("failed to create run manager: %w", err)
	}

	return startHTTPServer(cfg, newRouter(runner, hintStore, log), runner, log)
}

// setupDatabase opens the connection pool and verifies connectivity.
func setupDatabase(cfg *config.Config, log *slog.Logger) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info("database connection established")
	return db, nil
}

// newProvider selects the model provider named in the configuration.
func newProvider(ctx context.Context, cfg config.LLMConfig, log *slog.Logger) (generation.Provider, error) {
	switch cfg.Provider {
	case "openai":
		return openai.NewClient(openai.VendorOpenAI, cfg)
	case "groq":
		return openai.NewClient(openai.VendorGroq, cfg)
	case "gemini":
		return gemini.NewProvider(ctx, cfg, log)
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", generation.ErrInvalidConfig, cfg.Provider)
	}
}

// startHTTPServer serves until SIGINT/SIGTERM, then shuts down
// gracefully and stops any in-flight runs.
func startHTTPServer(cfg *config.Config, handler http.Handler, runner *task.Runner, log *slog.Logger) error {
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case sig := <-shutdownCh:
		log.Info("shutting down server", "signal", sig.String())
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	// Active generation runs stop at their next checkpoint; work already
	// persisted stays in place.
	runner.Stop()

	log.Info("server shutdown completed")
	return nil
}
