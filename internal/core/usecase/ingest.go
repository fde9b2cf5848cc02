package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/prangggshu/legal-chatbot/internal/core/domain"
	"github.com/prangggshu/legal-chatbot/internal/core/ports"
)

type IngestDocumentUseCase struct {
	repo      ports.DocumentRepository
	storage   ports.ObjectStorage
	queue     ports.MessageQueue
	extractor ports.TextExtractor
}

func NewIngestDocumentUseCase(
	repo ports.DocumentRepository,
	storage ports.ObjectStorage,
	queue ports.MessageQueue,
	extractor ports.TextExtractor,
) *IngestDocumentUseCase {
	return &IngestDocumentUseCase{
		repo:      repo,
		storage:   storage,
		queue:     queue,
		extractor: extractor,
	}
}

// Upload stores the file, records it as uploaded and hands it to the worker.
// A document whose event cannot be published is marked failed so it never
// sits in the uploaded state without a worker to pick it up.
func (uc *IngestDocumentUseCase) Upload(
	ctx context.Context,
	filename, mimeType string,
	body io.Reader,
) (*domain.Document, error) {
	if err := uc.validateUpload(filename, mimeType); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	doc := &domain.Document{
		ID:        uuid.NewString(),
		Filename:  filename,
		MimeType:  mimeType,
		Status:    domain.StatusUploaded,
		CreatedAt: now,
		UpdatedAt: now,
	}
	doc.StoragePath = doc.ID + "_" + sanitizeFilename(filename)

	if err := uc.storage.Save(ctx, doc.StoragePath, body); err != nil {
		return nil, fmt.Errorf("save to object storage: %w", err)
	}
	if err := uc.repo.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("create document metadata: %w", err)
	}

	if err := uc.queue.PublishDocumentIngested(ctx, doc.ID); err != nil {
		if statusErr := uc.repo.UpdateStatus(ctx, doc.ID, domain.StatusFailed, "queue unavailable: "+err.Error()); statusErr != nil {
			err = errors.Join(err, statusErr)
		}
		return nil, fmt.Errorf("publish ingestion event: %w", err)
	}
	return doc, nil
}

func (uc *IngestDocumentUseCase) validateUpload(filename, mimeType string) error {
	if strings.TrimSpace(filename) == "" {
		return domain.WrapError(domain.ErrInvalidInput, "upload document", errors.New("filename is required"))
	}
	if uc.extractor != nil && !uc.extractor.Supports(filename, mimeType) {
		return domain.WrapError(domain.ErrInvalidInput, "upload document",
			fmt.Errorf("unsupported document type %q: upload PDF, XLSX or plain text", filepath.Ext(filename)))
	}
	return nil
}

// GetByID serves document status reads for the api.
func (uc *IngestDocumentUseCase) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "get document", errors.New("document id is required"))
	}
	doc, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch document by id: %w", err)
	}
	return doc, nil
}

// sanitizeFilename keeps ASCII letters, digits, dot, dash and underscore.
func sanitizeFilename(name string) string {
	base := strings.Map(func(r rune) rune {
		if r < 128 && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.' || r == '-' || r == '_') {
			return r
		}
		return '_'
	}, filepath.Base(name))
	if base == "" || base == "." {
		return "document.bin"
	}
	return base
}
