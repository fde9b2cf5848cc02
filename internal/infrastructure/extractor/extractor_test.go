package extractor

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/prangggshu/legal-chatbot/internal/core/domain"
)

type memoryStorage map[string][]byte

func (m memoryStorage) Save(_ context.Context, key string, data io.Reader) error {
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	m[key] = raw
	return nil
}

func (m memoryStorage) Open(_ context.Context, key string) (io.ReadCloser, error) {
	raw, ok := m[key]
	if !ok {
		return nil, domain.ErrDocumentNotFound
	}
	return io.NopCloser(bytes.NewReader(raw)), nil
}

func TestExtractPlainText(t *testing.T) {
	storage := memoryStorage{"doc.txt": []byte("  Section 1. The tenant shall pay rent.\n")}

	text, err := New(storage).Extract(context.Background(), &domain.Document{Filename: "lease.txt", StoragePath: "doc.txt"})

	require.NoError(t, err)
	assert.Equal(t, "Section 1. The tenant shall pay rent.", text)
}

func TestExtractRejectsUnknownBinary(t *testing.T) {
	storage := memoryStorage{"doc.bin": {0xff, 0xfe, 0x00, 0x01}}

	_, err := New(storage).Extract(context.Background(), &domain.Document{Filename: "blob.bin", StoragePath: "doc.bin"})

	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.ErrInvalidInput))
}

func TestExtractXLSXFlattensRows(t *testing.T) {
	book := excelize.NewFile()
	require.NoError(t, book.SetSheetRow("Sheet1", "A1", &[]any{"Clause", "Obligation"}))
	require.NoError(t, book.SetSheetRow("Sheet1", "A2", &[]any{"4.1", "Vendor must deliver within 30 days"}))
	var buf bytes.Buffer
	require.NoError(t, book.Write(&buf))
	storage := memoryStorage{"schedule": buf.Bytes()}

	text, err := New(storage).Extract(context.Background(), &domain.Document{
		Filename:    "schedule.xlsx",
		MimeType:    mimeXLSX,
		StoragePath: "schedule",
	})

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(text, "Sheet: Sheet1"))
	assert.Contains(t, text, "4.1\tVendor must deliver within 30 days")
}

func TestExtractCorruptPDF(t *testing.T) {
	storage := memoryStorage{"broken": []byte("not a pdf")}

	_, err := New(storage).Extract(context.Background(), &domain.Document{Filename: "broken.pdf", StoragePath: "broken"})

	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.ErrInvalidInput))
}

func TestSupported(t *testing.T) {
	assert.True(t, Supported("contract.pdf", ""))
	assert.True(t, Supported("annex", mimeXLSX))
	assert.True(t, Supported("notes.txt", "text/plain; charset=utf-8"))
	assert.False(t, Supported("image.png", "image/png"))
}
