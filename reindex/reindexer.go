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


package reindex

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/evidentia/docsynth/core"
	"github.com/evidentia/docsynth/index"
	"github.com/evidentia/docsynth/ingestion"
	"github.com/evidentia/docsynth/storage"
)

// Config holds configuration for the re-indexing operation.
type Config struct {
	// BatchSize is the number of chunks to process in each batch
	BatchSize int

	// ReportInterval is how often to report progress (number of chunks)
	ReportInterval int

	// MaxRetries is the maximum number of retry attempts for failed embedding calls
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      100,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Reindexer re-embeds every stored chunk with the configured ensemble
// models and publishes a fresh corpus snapshot. Run it after changing
// embedding models, or to compact the index after document deletions.
type Reindexer struct {
	repo     storage.ChunkRepository
	models   []ingestion.Model
	holder   *index.Holder
	config   *Config
	progress io.Writer
}

// NewReindexer creates a new reindexer.
// holder may be nil when only the stored vectors need refreshing;
// progress is where progress output is written (typically os.Stderr).
func NewReindexer(repo storage.ChunkRepository, models []ingestion.Model, holder *index.Holder, config *Config, progress io.Writer) (*Reindexer, error) {
	if repo == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if len(models) == 0 {
		return nil, ErrNoModels
	}
	if config == nil {
		config = DefaultConfig()
	}
	if progress == nil {
		progress = io.Discard
	}

	return &Reindexer{
		repo:     repo,
		models:   models,
		holder:   holder,
		config:   config,
		progress: progress,
	}, nil
}

// Run executes the re-indexing operation over every stored chunk.
// Progress is reported to the configured writer; when a snapshot holder
// was provided, the rebuilt snapshot is swapped in at the end.
func (r *Reindexer) Run(ctx context.Context) error {
	chunks, err := r.repo.ListChunks(ctx)
	if err != nil {
		return fmt.Errorf("failed to list chunks: %w", err)
	}

	total := len(chunks)
	if total == 0 {
		fmt.Fprintf(r.progress, "No chunks found in storage (0 chunks)\n")
		return nil
	}

	fmt.Fprintf(r.progress, "Starting re-indexing of %d chunks (batch size: %d, models: %d)\n",
		total, r.config.BatchSize, len(r.models))

	tracker := newProgressTracker(r.progress, total, r.config.ReportInterval)
	processed := 0

	for start := 0; start < total; start += r.config.BatchSize {
		if err := ctx.Err(); err != nil {
			return err
		}

		end := min(start+r.config.BatchSize, total)
		batch := chunks[start:end]

		if err := r.processBatch(ctx, batch); err != nil {
			return fmt.Errorf("failed to process batch: %w", err)
		}

		processed += len(batch)
		tracker.update(processed)
	}

	tracker.finish()

	if r.holder != nil {
		names := make([]string, len(r.models))
		for i, model := range r.models {
			names[i] = model.Name
		}
		snapshot, err := index.BuildSnapshot(chunks, names)
		if err != nil {
			return fmt.Errorf("failed to rebuild snapshot: %w", err)
		}
		r.holder.Swap(snapshot)
	}

	elapsed := tracker.elapsed()
	fmt.Fprintf(r.progress, "Re-indexing complete. Processed %d chunks in %v (%.1f chunks/sec)\n",
		total, elapsed.Round(time.Second), float64(total)/elapsed.Seconds())

	return nil
}

// processBatch re-embeds one batch of chunks with every model and
// persists the refreshed vectors.
func (r *Reindexer) processBatch(ctx context.Context, chunks []*core.Chunk) error {
	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	for _, chunk := range chunks {
		chunk.Vectors = make(map[string][]float32, len(r.models))
	}

	for _, model := range r.models {
		var embeddings [][]float32
		err := retryWithBackoff(ctx, func() error {
			var err error
			embeddings, err = model.Embedder.EmbedTexts(ctx, texts)
			return err
		}, r.config.MaxRetries, r.config.RetryDelay)
		if err != nil {
			return fmt.Errorf("failed to generate %s embeddings after %d attempts: %w",
				model.Name, r.config.MaxRetries, err)
		}

		if len(embeddings) != len(chunks) {
			return fmt.Errorf("embedding count mismatch: expected %d, got %d",
				len(chunks), len(embeddings))
		}

		for i, vector := range embeddings {
			chunks[i].Vectors[model.Name] = index.Normalize(vector)
		}
	}

	if _, err := r.repo.UpdateChunks(ctx, chunks...); err != nil {
		return fmt.Errorf("failed to update chunks: %w", err)
	}

	return nil
}
