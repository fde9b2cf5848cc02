package localfs

import (
	"context"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/prangggshu/legal-chatbot/internal/core/domain"
)

func TestSaveAndOpen(t *testing.T) {
	storage, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if err := storage.Save(context.Background(), "doc-1_lease.txt", strings.NewReader("rent clause")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	reader, err := storage.Open(context.Background(), "doc-1_lease.txt")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer reader.Close()
	raw, _ := io.ReadAll(reader)
	if string(raw) != "rent clause" {
		t.Fatalf("unexpected content %q", raw)
	}

	entries, _ := os.ReadDir(storage.basePath)
	if len(entries) != 1 {
		t.Fatalf("expected only the saved file, got %d entries", len(entries))
	}
}

func TestOpenMissingIsNotFound(t *testing.T) {
	storage, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	_, err = storage.Open(context.Background(), "missing.txt")
	if !domain.IsKind(err, domain.ErrDocumentNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRejectsPathTraversal(t *testing.T) {
	storage, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	err = storage.Save(context.Background(), "../escape.txt", strings.NewReader("x"))
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}
