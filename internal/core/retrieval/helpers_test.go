package retrieval

import (
	"context"
	"hash/fnv"
	"strings"
	"sync"

	"github.com/prangggshu/legal-chatbot/internal/core/domain"
)

type mapEmbedder struct {
	mu      sync.Mutex
	dim     int
	vectors map[string][]float32
	err     error
	calls   int
}

func newMapEmbedder(dim int) *mapEmbedder {
	return &mapEmbedder{dim: dim, vectors: make(map[string][]float32)}
}

func (m *mapEmbedder) set(text string, vector ...float32) *mapEmbedder {
	m.vectors[text] = vector
	return m
}

func (m *mapEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.calls++
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = m.vector(text)
	}
	return out, nil
}

func (m *mapEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.vector(text), nil
}

func (m *mapEmbedder) embedCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *mapEmbedder) vector(text string) []float32 {
	if v, ok := m.vectors[text]; ok {
		return v
	}
	v := make([]float32, m.dim)
	for _, token := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(token))
		v[h.Sum32()%uint32(m.dim)]++
	}
	return v
}

func clauseChunks(texts ...string) []domain.Chunk {
	out := make([]domain.Chunk, len(texts))
	for i, t := range texts {
		out[i] = domain.NewClauseChunk(t, domain.SourceUnknown)
	}
	return out
}
