package retrieval

import (
	"bufio"
	"encoding/gob"
	"fmt"
	"io"
	"slices"

	"github.com/coder/hnsw"
)

type IndexKind string

const (
	IndexFlat IndexKind = "flat"
	IndexHNSW IndexKind = "hnsw"
)

func ParseIndexKind(raw string) IndexKind {
	if IndexKind(raw) == IndexHNSW {
		return IndexHNSW
	}
	return IndexFlat
}

// Neighbor is one search hit: squared Euclidean distance and chunk position.
type Neighbor struct {
	Distance float64
	Position int
}

type vectorIndex interface {
	Kind() IndexKind
	Dim() int
	Len() int
	Add(vectors [][]float32) error
	Search(query []float32, k int) []Neighbor
	Export(w io.Writer) error
}

func newVectorIndex(kind IndexKind, dim int) vectorIndex {
	if kind == IndexHNSW {
		return newHNSWIndex(dim)
	}
	return &flatIndex{dim: dim}
}

func importVectorIndex(kind IndexKind, dim int, r io.Reader) (vectorIndex, error) {
	idx := newVectorIndex(kind, dim)
	switch v := idx.(type) {
	case *flatIndex:
		if err := v.importFrom(r); err != nil {
			return nil, err
		}
	case *hnswIndex:
		if err := v.importFrom(r); err != nil {
			return nil, err
		}
	}
	return idx, nil
}

func squaredL2(a, b []float32) float64 {
	d := float64(hnsw.EuclideanDistance(a, b))
	return d * d
}

func checkDims(dim int, vectors [][]float32) error {
	for i, v := range vectors {
		if len(v) != dim {
			return fmt.Errorf("vector %d has dimension %d, index expects %d", i, len(v), dim)
		}
	}
	return nil
}

func sortNeighbors(hits []Neighbor) {
	slices.SortStableFunc(hits, func(a, b Neighbor) int {
		switch {
		case a.Distance < b.Distance:
			return -1
		case a.Distance > b.Distance:
			return 1
		default:
			return a.Position - b.Position
		}
	})
}

// flatIndex is an exact linear-scan index.
type flatIndex struct {
	dim     int
	vectors [][]float32
}

type flatSnapshot struct {
	Dim     int
	Vectors [][]float32
}

func (f *flatIndex) Kind() IndexKind { return IndexFlat }
func (f *flatIndex) Dim() int        { return f.dim }
func (f *flatIndex) Len() int        { return len(f.vectors) }

func (f *flatIndex) Add(vectors [][]float32) error {
	if err := checkDims(f.dim, vectors); err != nil {
		return err
	}
	for _, v := range vectors {
		f.vectors = append(f.vectors, slices.Clone(v))
	}
	return nil
}

func (f *flatIndex) Search(query []float32, k int) []Neighbor {
	if k <= 0 || len(f.vectors) == 0 || len(query) != f.dim {
		return nil
	}
	hits := make([]Neighbor, len(f.vectors))
	for pos, v := range f.vectors {
		hits[pos] = Neighbor{Distance: squaredL2(query, v), Position: pos}
	}
	sortNeighbors(hits)
	if k < len(hits) {
		hits = hits[:k]
	}
	return hits
}

func (f *flatIndex) Export(w io.Writer) error {
	return gob.NewEncoder(w).Encode(flatSnapshot{Dim: f.dim, Vectors: f.vectors})
}

func (f *flatIndex) importFrom(r io.Reader) error {
	var snap flatSnapshot
	if err := gob.NewDecoder(r).Decode(&snap); err != nil {
		return fmt.Errorf("decode flat index: %w", err)
	}
	if snap.Dim != f.dim {
		return fmt.Errorf("flat index dimension %d, metadata says %d", snap.Dim, f.dim)
	}
	if err := checkDims(snap.Dim, snap.Vectors); err != nil {
		return err
	}
	f.vectors = snap.Vectors
	return nil
}

// hnswIndex is an approximate graph index for corpora too large to scan.
type hnswIndex struct {
	dim   int
	graph *hnsw.Graph[uint64]
}

func newHNSWIndex(dim int) *hnswIndex {
	graph := hnsw.NewGraph[uint64]()
	graph.Distance = hnsw.EuclideanDistance
	graph.M = 16
	graph.EfSearch = 64
	graph.Ml = 0.25
	return &hnswIndex{dim: dim, graph: graph}
}

func (h *hnswIndex) Kind() IndexKind { return IndexHNSW }
func (h *hnswIndex) Dim() int        { return h.dim }
func (h *hnswIndex) Len() int        { return h.graph.Len() }

func (h *hnswIndex) Add(vectors [][]float32) error {
	if err := checkDims(h.dim, vectors); err != nil {
		return err
	}
	next := uint64(h.graph.Len())
	for i, v := range vectors {
		h.graph.Add(hnsw.MakeNode(next+uint64(i), slices.Clone(v)))
	}
	return nil
}

func (h *hnswIndex) Search(query []float32, k int) []Neighbor {
	if k <= 0 || h.graph.Len() == 0 || len(query) != h.dim {
		return nil
	}
	nodes := h.graph.Search(query, k)
	hits := make([]Neighbor, 0, len(nodes))
	for _, node := range nodes {
		hits = append(hits, Neighbor{Distance: squaredL2(query, node.Value), Position: int(node.Key)})
	}
	sortNeighbors(hits)
	return hits
}

func (h *hnswIndex) Export(w io.Writer) error {
	return h.graph.Export(w)
}

func (h *hnswIndex) importFrom(r io.Reader) error {
	if err := h.graph.Import(bufio.NewReader(r)); err != nil {
		return fmt.Errorf("import hnsw graph: %w", err)
	}
	if dims := h.graph.Dims(); h.graph.Len() > 0 && dims != h.dim {
		return fmt.Errorf("hnsw graph dimension %d, metadata says %d", dims, h.dim)
	}
	return nil
}
