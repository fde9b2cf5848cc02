package retrieval

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/prangggshu/legal-chatbot/internal/core/domain"
	"github.com/prangggshu/legal-chatbot/internal/core/ports"
)

// Store keeps the vector index and its parallel chunk records. It has no lock
// of its own; Engine serializes access.
type Store struct {
	embedder ports.Embedder
	dir      string
	kind     IndexKind

	index  vectorIndex
	chunks []domain.Chunk
	texts  map[string]struct{}
}

// StoreOptions configures a Store. An empty Dir keeps the index in memory
// only: Save is a no-op and Load always reports a missing snapshot.
type StoreOptions struct {
	Dir  string
	Kind IndexKind
}

func NewStore(embedder ports.Embedder, opts StoreOptions) *Store {
	kind := opts.Kind
	if kind == "" {
		kind = IndexFlat
	}
	return &Store{
		embedder: embedder,
		dir:      opts.Dir,
		kind:     kind,
		texts:    make(map[string]struct{}),
	}
}

// Persistent reports whether the store has a snapshot directory.
func (s *Store) Persistent() bool { return s.dir != "" }

// Rebuild discards the current index and indexes chunks from scratch, tagging
// each with source. State is only replaced once every embedding succeeded.
func (s *Store) Rebuild(ctx context.Context, chunks []domain.Chunk, source domain.Source) error {
	cleaned := cleanChunks(chunks, source)
	if len(cleaned) == 0 {
		return domain.WrapError(domain.ErrInvalidInput, "rebuild index", errors.New("no non-empty chunks"))
	}

	vectors, err := s.embedChunks(ctx, cleaned)
	if err != nil {
		return fmt.Errorf("rebuild index: %w", err)
	}

	index := newVectorIndex(s.kind, len(vectors[0]))
	if err := index.Add(vectors); err != nil {
		return domain.WrapError(domain.ErrInvalidInput, "rebuild index", err)
	}

	texts := make(map[string]struct{}, len(cleaned))
	for _, c := range cleaned {
		texts[c.Text] = struct{}{}
	}
	s.index = index
	s.chunks = cleaned
	s.texts = texts
	return nil
}

// Add appends chunks not already stored and returns how many were added.
func (s *Store) Add(ctx context.Context, chunks []domain.Chunk, source domain.Source) (int, error) {
	cleaned := cleanChunks(chunks, source)
	if len(cleaned) == 0 {
		return 0, nil
	}
	if s.index == nil || s.index.Len() == 0 {
		if err := s.Rebuild(ctx, dedupeChunks(cleaned, nil), source); err != nil {
			return 0, err
		}
		return len(s.chunks), nil
	}

	fresh := dedupeChunks(cleaned, s.texts)
	if len(fresh) == 0 {
		return 0, nil
	}

	vectors, err := s.embedChunks(ctx, fresh)
	if err != nil {
		return 0, fmt.Errorf("add chunks: %w", err)
	}
	if err := s.index.Add(vectors); err != nil {
		return 0, domain.WrapError(domain.ErrInvalidInput, "add chunks", err)
	}
	for _, c := range fresh {
		s.chunks = append(s.chunks, c)
		s.texts[c.Text] = struct{}{}
	}
	return len(fresh), nil
}

// Search returns up to k nearest chunk positions for the query text.
func (s *Store) Search(ctx context.Context, query string, k int) ([]Neighbor, error) {
	if s.Len() == 0 {
		return nil, nil
	}
	vector, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if k > s.index.Len() {
		k = s.index.Len()
	}
	return s.index.Search(vector, k), nil
}

func (s *Store) Len() int {
	if s.index == nil {
		return 0
	}
	return s.index.Len()
}

// Chunks exposes stored records in position order. Callers must not mutate it.
func (s *Store) Chunks() []domain.Chunk {
	return s.chunks
}

func (s *Store) Chunk(pos int) (domain.Chunk, bool) {
	if pos < 0 || pos >= len(s.chunks) {
		return domain.Chunk{}, false
	}
	return s.chunks[pos], true
}

func (s *Store) Stats() domain.IndexStats {
	stats := domain.IndexStats{
		Kind:     string(s.kind),
		Count:    len(s.chunks),
		BySource: make(map[domain.Source]int),
	}
	if s.index != nil {
		stats.Dimension = s.index.Dim()
	}
	for _, c := range s.chunks {
		stats.BySource[c.Source]++
	}
	return stats
}

func (s *Store) consistent() bool {
	return s.index != nil && s.index.Len() == len(s.chunks)
}

func (s *Store) embedChunks(ctx context.Context, chunks []domain.Chunk) ([][]float32, error) {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	vectors, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(texts) {
		return nil, domain.WrapError(
			domain.ErrInvalidInput,
			"embed chunks",
			fmt.Errorf("vectors/chunks mismatch: %d/%d", len(vectors), len(texts)),
		)
	}
	if len(vectors[0]) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "embed chunks", errors.New("zero-dimension embedding"))
	}
	return vectors, nil
}

func cleanChunks(chunks []domain.Chunk, source domain.Source) []domain.Chunk {
	out := make([]domain.Chunk, 0, len(chunks))
	for _, c := range chunks {
		c.Text = strings.TrimSpace(c.Text)
		if c.Text == "" {
			continue
		}
		c.Body = strings.TrimSpace(c.Body)
		if c.Body == "" {
			c.Body = c.Text
		}
		if c.Kind == "" {
			c.Kind = domain.KindClause
		}
		c.Source = source
		out = append(out, c)
	}
	return out
}

func dedupeChunks(chunks []domain.Chunk, existing map[string]struct{}) []domain.Chunk {
	seen := make(map[string]struct{}, len(chunks))
	out := make([]domain.Chunk, 0, len(chunks))
	for _, c := range chunks {
		if _, dup := existing[c.Text]; dup {
			continue
		}
		if _, dup := seen[c.Text]; dup {
			continue
		}
		seen[c.Text] = struct{}{}
		out = append(out, c)
	}
	return out
}
