package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/prangggshu/legal-chatbot/internal/config"
	"github.com/prangggshu/legal-chatbot/internal/core/ports"
	"github.com/prangggshu/legal-chatbot/internal/core/usecase"
	"github.com/prangggshu/legal-chatbot/internal/infrastructure/chunking"
	"github.com/prangggshu/legal-chatbot/internal/infrastructure/extractor"
	"github.com/prangggshu/legal-chatbot/internal/infrastructure/queue/nats"
	"github.com/prangggshu/legal-chatbot/internal/infrastructure/repository/postgres"
	"github.com/prangggshu/legal-chatbot/internal/infrastructure/storage/localfs"
)

type App struct {
	Config config.Config
	Core   *Core

	Queue     ports.MessageQueue
	Repo      ports.DocumentRepository
	IngestUC  *usecase.IngestDocumentUseCase
	ProcessUC ports.DocumentProcessor
	AnalyzeUC ports.DocumentAnalyzer

	closeFn func()
}

type Options struct {
	ClientName string
	Logger     *slog.Logger
	Registerer prometheus.Registerer
}

func New(ctx context.Context, cfg config.Config, opts Options) (*App, error) {
	core, err := NewCore(cfg, CoreOptions{Logger: opts.Logger, Registerer: opts.Registerer})
	if err != nil {
		return nil, err
	}

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewDocumentRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		IndexUpdatedSubject: cfg.NATSIndexUpdatedSubject,
		ClientName:          opts.ClientName,
		ResilienceExecutor:  core.Executor,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	textExtractor := extractor.New(storage)
	legalChunker := chunking.NewLegalChunker().WithWindow(cfg.ChunkWindowWords, cfg.ChunkStepWords)

	ingestUC := usecase.NewIngestDocumentUseCase(repo, storage, queue, textExtractor)
	processUC := usecase.NewProcessDocumentUseCase(repo, textExtractor, legalChunker, core.Engine, queue)
	analyzeUC := usecase.NewAnalyzeDocumentUseCase(repo, textExtractor, legalChunker, core.Risk, core.Cloud)

	return &App{
		Config: cfg,
		Core:   core,
		Queue:  queue,
		Repo:   repo,

		IngestUC:  ingestUC,
		ProcessUC: processUC,
		AnalyzeUC: analyzeUC,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
