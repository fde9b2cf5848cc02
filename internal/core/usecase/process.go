package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/prangggshu/legal-chatbot/internal/core/domain"
	"github.com/prangggshu/legal-chatbot/internal/core/ports"
)

type ProcessDocumentUseCase struct {
	repo      ports.DocumentRepository
	extractor ports.TextExtractor
	chunker   ports.Chunker
	index     ports.ChunkIndexer
	queue     ports.MessageQueue
}

func NewProcessDocumentUseCase(
	repo ports.DocumentRepository,
	extractor ports.TextExtractor,
	chunker ports.Chunker,
	index ports.ChunkIndexer,
	queue ports.MessageQueue,
) *ProcessDocumentUseCase {
	return &ProcessDocumentUseCase{
		repo:      repo,
		extractor: extractor,
		chunker:   chunker,
		index:     index,
		queue:     queue,
	}
}

func (uc *ProcessDocumentUseCase) ProcessByID(ctx context.Context, documentID string) error {
	if err := uc.markStatus(ctx, documentID, domain.StatusProcessing, ""); err != nil {
		return fmt.Errorf("set status=processing: %w", err)
	}

	stats, err := uc.processPipeline(ctx, documentID)
	if err != nil {
		if failErr := uc.markFailed(ctx, documentID, err); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return err
	}

	if err := uc.repo.SaveIngestStats(ctx, documentID, stats); err != nil {
		err = fmt.Errorf("save ingest stats: %w", err)
		if failErr := uc.markFailed(ctx, documentID, err); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return err
	}

	if err := uc.markStatus(ctx, documentID, domain.StatusReady, ""); err != nil {
		return fmt.Errorf("set status=ready: %w", err)
	}

	if stats.ChunksAdded > 0 {
		if err := uc.queue.PublishIndexUpdated(ctx, documentID); err != nil {
			return fmt.Errorf("publish index update: %w", err)
		}
	}
	return nil
}

func (uc *ProcessDocumentUseCase) processPipeline(ctx context.Context, documentID string) (domain.IngestStats, error) {
	doc, err := uc.loadDocument(ctx, documentID)
	if err != nil {
		return domain.IngestStats{}, err
	}

	text, err := extractText(ctx, uc.extractor, doc)
	if err != nil {
		return domain.IngestStats{}, err
	}

	chunks, err := splitText(uc.chunker, text)
	if err != nil {
		return domain.IngestStats{}, err
	}

	added, err := uc.indexChunks(ctx, chunks)
	if err != nil {
		return domain.IngestStats{}, err
	}
	return domain.IngestStats{ChunksCreated: len(chunks), ChunksAdded: added}, nil
}

func (uc *ProcessDocumentUseCase) loadDocument(ctx context.Context, documentID string) (*domain.Document, error) {
	doc, err := uc.repo.GetByID(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("fetch document by id: %w", err)
	}
	return doc, nil
}

func (uc *ProcessDocumentUseCase) indexChunks(ctx context.Context, texts []string) (int, error) {
	chunks := make([]domain.Chunk, 0, len(texts))
	for _, text := range texts {
		chunks = append(chunks, domain.NewClauseChunk(text, domain.SourceUpload))
	}
	added, err := uc.index.Add(ctx, chunks, domain.SourceUpload)
	if err != nil {
		return 0, fmt.Errorf("index chunks: %w", err)
	}
	return added, nil
}

func (uc *ProcessDocumentUseCase) markStatus(ctx context.Context, documentID string, status domain.DocumentStatus, errMessage string) error {
	return uc.repo.UpdateStatus(ctx, documentID, status, errMessage)
}

func (uc *ProcessDocumentUseCase) markFailed(ctx context.Context, documentID string, processErr error) error {
	if processErr == nil {
		return nil
	}
	return uc.markStatus(ctx, documentID, domain.StatusFailed, processErr.Error())
}

func extractText(ctx context.Context, extractor ports.TextExtractor, doc *domain.Document) (string, error) {
	text, err := extractor.Extract(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("extract text: %w", err)
	}
	if text == "" {
		return "", domain.WrapError(domain.ErrInvalidInput, "extract text", errors.New("empty extracted text"))
	}
	return text, nil
}

func splitText(chunker ports.Chunker, text string) ([]string, error) {
	chunks := chunker.Split(text)
	if len(chunks) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "chunk document", errors.New("chunking produced zero chunks"))
	}
	return chunks, nil
}
