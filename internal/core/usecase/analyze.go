package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/prangggshu/legal-chatbot/internal/core/domain"
	"github.com/prangggshu/legal-chatbot/internal/core/ports"
)

type AnalyzeDocumentUseCase struct {
	repo      ports.DocumentRepository
	extractor ports.TextExtractor
	chunker   ports.Chunker
	risk      ports.RiskDetector
	general   ports.GeneralGenerator
}

func NewAnalyzeDocumentUseCase(
	repo ports.DocumentRepository,
	extractor ports.TextExtractor,
	chunker ports.Chunker,
	risk ports.RiskDetector,
	general ports.GeneralGenerator,
) *AnalyzeDocumentUseCase {
	return &AnalyzeDocumentUseCase{
		repo:      repo,
		extractor: extractor,
		chunker:   chunker,
		risk:      risk,
		general:   general,
	}
}

// AnalyzeRisks chunks the stored document and reports every High or Medium section.
func (uc *AnalyzeDocumentUseCase) AnalyzeRisks(ctx context.Context, documentID string) (*domain.RiskReport, error) {
	doc, text, err := uc.load(ctx, documentID)
	if err != nil {
		return nil, err
	}
	chunks, err := splitText(uc.chunker, text)
	if err != nil {
		return nil, err
	}

	report := &domain.RiskReport{
		DocumentID: doc.ID,
		Filename:   doc.Filename,
		Summary:    domain.RiskSummary{TotalChunks: len(chunks)},
		Sections:   []domain.RiskSection{},
	}
	for i, chunk := range chunks {
		assessment := uc.risk.Detect(chunk)
		switch assessment.Level {
		case domain.RiskHigh:
			report.Summary.HighRisk++
		case domain.RiskMedium:
			report.Summary.MediumRisk++
		default:
			continue
		}
		report.Sections = append(report.Sections, domain.RiskSection{
			Index:  i + 1,
			Level:  assessment.Level,
			Reason: assessment.Reason,
			Text:   chunk,
		})
	}
	report.Summary.RiskSections = len(report.Sections)
	return report, nil
}

func (uc *AnalyzeDocumentUseCase) Summarize(ctx context.Context, documentID string) (*domain.DocumentSummary, error) {
	if uc.general == nil {
		return nil, domain.WrapError(domain.ErrTemporary, "summarize document", errors.New("summary generator is not configured"))
	}
	doc, text, err := uc.load(ctx, documentID)
	if err != nil {
		return nil, err
	}
	summary, err := uc.general.Summarize(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("generate summary: %w", err)
	}
	return &domain.DocumentSummary{
		DocumentID: doc.ID,
		Filename:   doc.Filename,
		Summary:    strings.TrimSpace(summary),
	}, nil
}

func (uc *AnalyzeDocumentUseCase) load(ctx context.Context, documentID string) (*domain.Document, string, error) {
	if strings.TrimSpace(documentID) == "" {
		return nil, "", domain.WrapError(domain.ErrInvalidInput, "load document", errors.New("document id is required"))
	}
	doc, err := uc.repo.GetByID(ctx, documentID)
	if err != nil {
		return nil, "", fmt.Errorf("fetch document by id: %w", err)
	}
	text, err := extractText(ctx, uc.extractor, doc)
	if err != nil {
		return nil, "", err
	}
	return doc, text, nil
}
