package embedcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"slices"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/prangggshu/legal-chatbot/internal/core/ports"
)

const DefaultSize = 1000

// Embedder caches query vectors in an LRU keyed by model and text. Batch
// document embeddings pass through; they are embedded once per ingest.
type Embedder struct {
	inner ports.Embedder
	model string
	cache *lru.Cache[string, []float32]
}

func New(inner ports.Embedder, model string, size int) *Embedder {
	if size <= 0 {
		size = DefaultSize
	}
	cache, _ := lru.New[string, []float32](size)
	return &Embedder{inner: inner, model: model, cache: cache}
}

func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return e.inner.Embed(ctx, texts)
}

func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	key := e.key(text)
	if vector, ok := e.cache.Get(key); ok {
		return slices.Clone(vector), nil
	}
	vector, err := e.inner.EmbedQuery(ctx, text)
	if err != nil {
		return nil, err
	}
	e.cache.Add(key, slices.Clone(vector))
	return vector, nil
}

func (e *Embedder) Len() int {
	return e.cache.Len()
}

func (e *Embedder) key(text string) string {
	sum := sha256.Sum256([]byte(e.model + "\x00" + text))
	return hex.EncodeToString(sum[:])
}
