package retrieval

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/prangggshu/legal-chatbot/internal/core/domain"
)

const SchemaVersion = 3

const (
	indexFileName    = "legal_qa.index"
	chunksFileName   = "legal_qa_chunks.json"
	sourcesFileName  = "legal_qa_sources.json"
	metadataFileName = "legal_qa_metadata.json"
)

type snapshotMetadata struct {
	SchemaVersion int       `json:"schema_version"`
	IndexKind     IndexKind `json:"index_kind"`
	Dimension     int       `json:"dimension"`
	Count         int       `json:"count"`
}

type seedEntry struct {
	Question string `json:"question"`
	Context  string `json:"context"`
}

// Save writes the index, chunk records, sources and metadata. Nothing is
// written when the store is empty or its parallel stores disagree.
func (s *Store) Save() error {
	if s.index == nil || s.index.Len() == 0 || len(s.chunks) == 0 {
		return domain.WrapError(domain.ErrEmptyIndex, "save snapshot", errors.New("nothing to persist"))
	}
	if !s.consistent() {
		return domain.WrapError(domain.ErrInconsistentStore, "save snapshot",
			fmt.Errorf("index=%d chunks=%d", s.index.Len(), len(s.chunks)))
	}
	if !s.Persistent() {
		return nil
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}

	var indexBuf bytes.Buffer
	if err := s.index.Export(&indexBuf); err != nil {
		return fmt.Errorf("export index: %w", err)
	}
	sources := make([]string, len(s.chunks))
	for i, c := range s.chunks {
		sources[i] = string(c.Source)
	}
	chunksJSON, err := json.Marshal(s.chunks)
	if err != nil {
		return fmt.Errorf("marshal chunks: %w", err)
	}
	sourcesJSON, err := json.Marshal(sources)
	if err != nil {
		return fmt.Errorf("marshal sources: %w", err)
	}
	metaJSON, err := json.Marshal(snapshotMetadata{
		SchemaVersion: SchemaVersion,
		IndexKind:     s.index.Kind(),
		Dimension:     s.index.Dim(),
		Count:         len(s.chunks),
	})
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	// Metadata is written last.
	files := []struct {
		name string
		data []byte
	}{
		{indexFileName, indexBuf.Bytes()},
		{chunksFileName, chunksJSON},
		{sourcesFileName, sourcesJSON},
		{metadataFileName, metaJSON},
	}
	for _, f := range files {
		if err := writeFileAtomic(filepath.Join(s.dir, f.name), f.data); err != nil {
			return err
		}
	}
	return nil
}

// Load replaces in-memory state with the persisted snapshot. On any error the
// current state is left untouched.
func (s *Store) Load() error {
	if !s.Persistent() {
		return domain.WrapError(domain.ErrSnapshotMissing, "load snapshot", errors.New("no snapshot directory"))
	}
	metaRaw, err := os.ReadFile(filepath.Join(s.dir, metadataFileName))
	if err != nil {
		return snapshotReadError("read metadata", err)
	}
	var meta snapshotMetadata
	if err := json.Unmarshal(metaRaw, &meta); err != nil {
		return domain.WrapError(domain.ErrSnapshotCorrupt, "load snapshot", fmt.Errorf("parse metadata: %w", err))
	}
	if meta.SchemaVersion != SchemaVersion {
		return domain.WrapError(domain.ErrSchemaMismatch, "load snapshot",
			fmt.Errorf("found version %d, expected %d", meta.SchemaVersion, SchemaVersion))
	}

	indexFile, err := os.Open(filepath.Join(s.dir, indexFileName))
	if err != nil {
		return snapshotReadError("open index", err)
	}
	defer indexFile.Close()
	kind := meta.IndexKind
	if kind == "" {
		kind = IndexFlat
	}
	index, err := importVectorIndex(kind, meta.Dimension, indexFile)
	if err != nil {
		return domain.WrapError(domain.ErrSnapshotCorrupt, "load snapshot", err)
	}

	chunksRaw, err := os.ReadFile(filepath.Join(s.dir, chunksFileName))
	if err != nil {
		return snapshotReadError("read chunks", err)
	}
	var chunks []domain.Chunk
	if err := json.Unmarshal(chunksRaw, &chunks); err != nil {
		return domain.WrapError(domain.ErrSnapshotCorrupt, "load snapshot", fmt.Errorf("parse chunks: %w", err))
	}

	sources, err := readSources(filepath.Join(s.dir, sourcesFileName), len(chunks))
	if err != nil {
		return err
	}

	switch {
	case len(chunks) == 0 || index.Len() == 0:
		return domain.WrapError(domain.ErrSnapshotCorrupt, "load snapshot", errors.New("snapshot is empty"))
	case index.Len() != len(chunks) || len(sources) != len(chunks):
		return domain.WrapError(domain.ErrSnapshotCorrupt, "load snapshot",
			fmt.Errorf("index=%d chunks=%d sources=%d", index.Len(), len(chunks), len(sources)))
	case meta.Count != 0 && meta.Count != len(chunks):
		return domain.WrapError(domain.ErrSnapshotCorrupt, "load snapshot",
			fmt.Errorf("metadata count %d, chunks %d", meta.Count, len(chunks)))
	}

	texts := make(map[string]struct{}, len(chunks))
	for i := range chunks {
		chunks[i].Source = domain.ParseSource(sources[i])
		if chunks[i].Kind == "" {
			chunks[i].Kind = domain.KindClause
		}
		texts[chunks[i].Text] = struct{}{}
	}
	s.index = index
	s.kind = index.Kind()
	s.chunks = chunks
	s.texts = texts
	return nil
}

// BootstrapFromSeed loads the persisted snapshot, or builds one from a seed
// file of question/context pairs and persists it.
func (s *Store) BootstrapFromSeed(ctx context.Context, path string) error {
	loadErr := s.Load()
	if loadErr == nil {
		return nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read seed file (snapshot: %v): %w", loadErr, err)
	}
	var entries []seedEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return domain.WrapError(domain.ErrInvalidInput, "parse seed file", err)
	}

	chunks := make([]domain.Chunk, 0, len(entries))
	for _, e := range entries {
		if strings.TrimSpace(e.Context) == "" {
			continue
		}
		if strings.TrimSpace(e.Question) == "" {
			chunks = append(chunks, domain.NewClauseChunk(e.Context, domain.SourceKnowledgeBase))
			continue
		}
		chunks = append(chunks, domain.NewQAChunk(e.Question, e.Context, domain.SourceKnowledgeBase))
	}
	if len(chunks) == 0 {
		return domain.WrapError(domain.ErrInvalidInput, "parse seed file", errors.New("seed has no usable entries"))
	}

	if err := s.Rebuild(ctx, chunks, domain.SourceKnowledgeBase); err != nil {
		return fmt.Errorf("build from seed: %w", err)
	}
	if err := s.Save(); err != nil {
		return fmt.Errorf("persist seeded index: %w", err)
	}
	return nil
}

func readSources(path string, count int) ([]string, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		sources := make([]string, count)
		for i := range sources {
			sources[i] = string(domain.SourceUnknown)
		}
		return sources, nil
	}
	if err != nil {
		return nil, snapshotReadError("read sources", err)
	}
	var sources []string
	if err := json.Unmarshal(raw, &sources); err != nil {
		return nil, domain.WrapError(domain.ErrSnapshotCorrupt, "load snapshot", fmt.Errorf("parse sources: %w", err))
	}
	return sources, nil
}

func snapshotReadError(op string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return domain.WrapError(domain.ErrSnapshotMissing, op, err)
	}
	return domain.WrapError(domain.ErrSnapshotCorrupt, op, err)
}

func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename %s: %w", filepath.Base(path), err)
	}
	return nil
}
