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

	"github.com/prangggshu/legal-chatbot/internal/bootstrap"
	"github.com/prangggshu/legal-chatbot/internal/config"
	"github.com/prangggshu/legal-chatbot/internal/observability/logging"
	"github.com/prangggshu/legal-chatbot/internal/observability/metrics"
)

const (
	serviceName    = "legal-worker"
	processTimeout = 5 * time.Minute
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logger := logging.NewJSONLogger(serviceName, cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	workerMetrics := metrics.NewWorkerMetrics(serviceName)
	app, err := bootstrap.New(ctx, cfg, bootstrap.Options{
		ClientName: serviceName,
		Logger:     logger,
		Registerer: workerMetrics.Registerer(),
	})
	if err != nil {
		logger.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	// The worker extends the shared snapshot, so it starts from the same seed.
	app.Core.Engine.Bootstrap(ctx)

	metricsServer := &http.Server{
		Addr:              ":" + cfg.WorkerMetricsPort,
		Handler:           workerMetrics.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("worker_metrics_server_failed", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	logger.Info("worker_subscribed", "subject", cfg.NATSSubject)
	err = app.Queue.SubscribeDocumentIngested(ctx, func(handlerCtx context.Context, documentID string) error {
		processCtx, cancel := context.WithTimeout(handlerCtx, processTimeout)
		defer cancel()

		if doc, err := app.Repo.GetByID(processCtx, documentID); err == nil {
			workerMetrics.ObserveQueueLag(serviceName, time.Since(doc.CreatedAt))
		}

		done := workerMetrics.TrackDocument(serviceName)
		start := time.Now()
		err := app.ProcessUC.ProcessByID(processCtx, documentID)
		done(err)
		if err != nil {
			return err
		}

		if doc, err := app.Repo.GetByID(processCtx, documentID); err == nil {
			workerMetrics.RecordChunks(serviceName, doc.ChunksCreated, doc.ChunksAdded)
			logger.Info("document_processed",
				"document_id", documentID,
				"chunks_created", doc.ChunksCreated,
				"chunks_added", doc.ChunksAdded,
				"duration_ms", time.Since(start).Milliseconds(),
			)
		}
		return nil
	})
	if err != nil {
		logger.Error("worker_subscribe_failed", "error", err)
		os.Exit(1)
	}
}
