package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	httpadapter "github.com/prangggshu/legal-chatbot/internal/adapters/http"
	"github.com/prangggshu/legal-chatbot/internal/bootstrap"
	"github.com/prangggshu/legal-chatbot/internal/config"
	"github.com/prangggshu/legal-chatbot/internal/observability/logging"
	"github.com/prangggshu/legal-chatbot/internal/observability/metrics"
)

const serviceName = "legal-api"

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logger := logging.NewJSONLogger(serviceName, cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpMetrics := metrics.NewHTTPServerMetrics(serviceName)
	app, err := bootstrap.New(ctx, cfg, bootstrap.Options{
		ClientName: serviceName,
		Logger:     logger,
		Registerer: httpMetrics.Registerer(),
	})
	if err != nil {
		logger.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	if !app.Core.Engine.Bootstrap(ctx) {
		logger.Warn("index_unavailable", "seed_path", cfg.SeedPath, "index_dir", cfg.IndexDir)
	}

	go func() {
		err := app.Queue.SubscribeIndexUpdated(ctx, func(_ context.Context, documentID string) error {
			if err := app.Core.Engine.Reload(); err != nil {
				logger.Warn("index_reload_failed", "document_id", documentID, "error", err)
				return nil
			}
			logger.Info("index_reloaded", "document_id", documentID, "count", app.Core.Engine.Stats().Count)
			return nil
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("index_subscription_failed", "error", err)
		}
	}()

	router := httpadapter.NewRouter(cfg, httpadapter.Services{
		Ingestor:  app.IngestUC,
		Documents: app.IngestUC,
		Asker:     app.Core.AskUC,
		Retrieval: app.Core.Engine,
		Analyzer:  app.AnalyzeUC,
	}, httpMetrics, logger)

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("api_listening", "addr", server.Addr, "index_chunks", app.Core.Engine.Stats().Count)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("api_server_failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("api_shutdown_failed", "error", err)
	}
}
