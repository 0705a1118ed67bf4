package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonathan/smart-ats/internal/db"
	"github.com/jonathan/smart-ats/internal/evaluation"
	"github.com/jonathan/smart-ats/internal/observability"
	"github.com/jonathan/smart-ats/internal/server"
	"github.com/spf13/cobra"
)

var (
	servePort  int
	serveModel string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web UI and JSON API",
	Long: `Start an HTTP server with the evaluation form at / and the JSON API under /api.
Evaluations are stored when DATABASE_URL is set.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides PORT)")
	serveCmd.Flags().StringVar(&serveModel, "model", "", "Gemini model (overrides GEMINI_MODEL)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(serveModel)
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Port = servePort
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	logger := newLogger(os.Stderr, cfg)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := newLLMClient(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create model client: %w", err)
	}
	defer func() { _ = client.Close() }()

	var metrics *observability.Metrics
	evaluatorOpts := []evaluation.Option{evaluation.WithLogger(logger)}
	if cfg.MetricsEnabled {
		metrics = observability.NewMetrics()
		evaluatorOpts = append(evaluatorOpts, evaluation.WithRecorder(metrics))
	}

	deps := server.Deps{
		Evaluator: evaluation.NewEvaluator(client, evaluatorOpts...),
		Metrics:   metrics,
		Logger:    logger,
	}

	if cfg.HistoryEnabled() {
		database, err := connectHistory(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer database.Close()
		deps.Store = database
		logger.Info("evaluation history enabled")
	}

	srv, err := server.New(cfg, deps)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start(ctx)
}

func connectHistory(ctx context.Context, databaseURL string) (*db.DB, error) {
	database, err := db.Connect(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(ctx); err != nil {
		database.Close()
		return nil, err
	}
	return database, nil
}
