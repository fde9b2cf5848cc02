package extractor

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/prangggshu/legal-chatbot/internal/core/domain"
	"github.com/prangggshu/legal-chatbot/internal/core/ports"
)

const (
	mimePDF  = "application/pdf"
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Extractor reads a stored document and returns its text, choosing the
// decoder from the MIME type or file extension.
type Extractor struct {
	storage ports.ObjectStorage
}

func New(storage ports.ObjectStorage) *Extractor {
	return &Extractor{storage: storage}
}

func (e *Extractor) Extract(ctx context.Context, doc *domain.Document) (string, error) {
	reader, err := e.storage.Open(ctx, doc.StoragePath)
	if err != nil {
		return "", fmt.Errorf("open source document: %w", err)
	}
	defer reader.Close()

	raw, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("read source document: %w", err)
	}

	var text string
	switch formatOf(doc) {
	case "pdf":
		text, err = extractPDF(raw)
	case "xlsx":
		text, err = extractXLSX(raw)
	default:
		if !utf8.Valid(raw) {
			return "", domain.WrapError(domain.ErrInvalidInput, "extract text",
				fmt.Errorf("unsupported binary format: %s", doc.Filename))
		}
		text = string(raw)
	}
	if err != nil {
		return "", domain.WrapError(domain.ErrInvalidInput, "extract text", err)
	}
	return strings.TrimSpace(text), nil
}

func (e *Extractor) Supports(filename, mimeType string) bool {
	return Supported(filename, mimeType)
}

// Supported reports whether filename or mimeType names a format Extract can read.
func Supported(filename, mimeType string) bool {
	switch formatOf(&domain.Document{Filename: filename, MimeType: mimeType}) {
	case "pdf", "xlsx", "text":
		return true
	}
	return false
}

func formatOf(doc *domain.Document) string {
	mimeType := strings.ToLower(strings.TrimSpace(doc.MimeType))
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	switch mimeType {
	case mimePDF:
		return "pdf"
	case mimeXLSX:
		return "xlsx"
	}
	switch strings.ToLower(filepath.Ext(doc.Filename)) {
	case ".pdf":
		return "pdf"
	case ".xlsx":
		return "xlsx"
	case ".txt", ".md", ".text", "":
		return "text"
	}
	if strings.HasPrefix(mimeType, "text/") {
		return "text"
	}
	return "unknown"
}
