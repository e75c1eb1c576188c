// Copyright 2025 Evidentia Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package index

import (
	"fmt"
	"slices"
	"sync/atomic"

	"github.com/evidentia/docsynth/core"
)

// Snapshot is an immutable corpus index: the ordered chunk sequence plus
// one flat index per ensemble model, all built over the identical chunk
// ordering. Position p in any of the indices resolves to the same chunk.
//
// A Snapshot is never mutated after construction; rebuilding the corpus
// produces a fresh Snapshot that replaces the old one wholesale.
type Snapshot struct {
	chunks  []*core.Chunk
	indices map[string]*Flat
}

// NewSnapshot assembles a snapshot and verifies the lockstep invariant:
// every index must hold exactly one vector per chunk.
func NewSnapshot(chunks []*core.Chunk, indices map[string]*Flat) (*Snapshot, error) {
	if len(indices) == 0 {
		return nil, ErrNoIndices
	}
	for model, idx := range indices {
		if idx == nil {
			return nil, fmt.Errorf("%w: model %q", ErrNoIndices, model)
		}
		if idx.Len() != len(chunks) {
			return nil, fmt.Errorf("%w: model %q holds %d vectors for %d chunks",
				ErrIndexOutOfStep, model, idx.Len(), len(chunks))
		}
	}

	return &Snapshot{
		chunks:  slices.Clone(chunks),
		indices: indices,
	}, nil
}

// BuildSnapshot builds the per-model indices from the chunks' stored
// vectors and assembles a snapshot. Every chunk must carry a vector for
// every listed model; vectors are normalized to unit length so inner
// product equals cosine similarity.
func BuildSnapshot(chunks []*core.Chunk, models []string) (*Snapshot, error) {
	indices := make(map[string]*Flat, len(models))

	for _, model := range models {
		vectors := make([][]float32, len(chunks))
		for i, chunk := range chunks {
			v, ok := chunk.Vectors[model]
			if !ok || len(v) == 0 {
				return nil, fmt.Errorf("%w: chunk %d has no vector for model %q",
					ErrIndexOutOfStep, chunk.Id, model)
			}
			vectors[i] = Normalize(slices.Clone(v))
		}

		idx, err := BuildFlat(vectors)
		if err != nil {
			return nil, err
		}
		indices[model] = idx
	}

	return NewSnapshot(chunks, indices)
}

// Len returns the number of chunks in the snapshot.
func (s *Snapshot) Len() int {
	return len(s.chunks)
}

// Chunk returns the chunk at the given index position.
func (s *Snapshot) Chunk(position int) *core.Chunk {
	return s.chunks[position]
}

// Index returns the flat index for the given model id.
func (s *Snapshot) Index(model string) (*Flat, bool) {
	idx, ok := s.indices[model]
	return idx, ok
}

// Models returns the sorted model ids the snapshot carries indices for.
func (s *Snapshot) Models() []string {
	models := make([]string, 0, len(s.indices))
	for model := range s.indices {
		models = append(models, model)
	}
	slices.Sort(models)
	return models
}

// Holder publishes the current corpus snapshot to concurrent readers.
// Rebuilding the corpus swaps the snapshot atomically; a reader either
// sees the previous complete snapshot or the new complete snapshot, never
// a half-built index.
type Holder struct {
	current atomic.Pointer[Snapshot]
}

// NewHolder creates a holder with no snapshot published yet.
func NewHolder() *Holder {
	return &Holder{}
}

// Load returns the current snapshot, or nil if no corpus has been built.
func (h *Holder) Load() *Snapshot {
	return h.current.Load()
}

// Swap atomically publishes a new snapshot.
func (h *Holder) Swap(s *Snapshot) {
	h.current.Store(s)
}
