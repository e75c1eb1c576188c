package index

import (
	"fmt"
	"slices"
)

// Hit is a single nearest-neighbor result: the position of the matched
// vector in build order and its inner-product score.
type Hit struct {
	Position int
	Score    float32
}

// Flat is an exact inner-product nearest-neighbor index over a fixed,
// ordered vector sequence. Queries scan every stored vector; there is no
// approximation, so rankings are fully deterministic. Corpora here are
// thousands of chunks, not millions, and citation fidelity depends on
// stable ranks, which rules out approximate methods.
//
// A Flat index is immutable after construction and safe for concurrent
// queries.
type Flat struct {
	dim     int
	vectors [][]float32
}

// BuildFlat constructs an index over the given ordered vectors.
// All vectors must share the same dimensionality. The index takes
// ownership of the vectors; callers must not mutate them afterwards.
func BuildFlat(vectors [][]float32) (*Flat, error) {
	f := &Flat{vectors: slices.Clone(vectors)}

	for i, v := range vectors {
		if len(v) == 0 {
			return nil, fmt.Errorf("%w: vector at position %d", ErrEmptyVector, i)
		}
		if f.dim == 0 {
			f.dim = len(v)
			continue
		}
		if len(v) != f.dim {
			return nil, fmt.Errorf("%w: position %d has dimension %d, want %d",
				ErrDimensionMismatch, i, len(v), f.dim)
		}
	}

	return f, nil
}

// Len returns the number of stored vectors.
func (f *Flat) Len() int {
	return len(f.vectors)
}

// Dim returns the dimensionality of the stored vectors, or 0 if empty.
func (f *Flat) Dim() int {
	return f.dim
}

// Query returns the topK stored vectors with the highest inner product
// against the query vector, sorted by score descending. Ties are broken by
// position ascending so repeated queries return identical orderings.
// If topK exceeds the number of stored vectors, all of them are returned.
// An empty index yields an empty result, not an error.
func (f *Flat) Query(vector []float32, topK int) ([]Hit, error) {
	if len(f.vectors) == 0 || topK <= 0 {
		return nil, nil
	}
	if len(vector) != f.dim {
		return nil, fmt.Errorf("%w: query has dimension %d, want %d",
			ErrDimensionMismatch, len(vector), f.dim)
	}

	hits := make([]Hit, len(f.vectors))
	for i, stored := range f.vectors {
		hits[i] = Hit{Position: i, Score: Dot(vector, stored)}
	}

	slices.SortFunc(hits, func(a, b Hit) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return a.Position - b.Position
	})

	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}
