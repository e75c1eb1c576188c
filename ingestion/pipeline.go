package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/evidentia/docsynth/ai"
	"github.com/evidentia/docsynth/chunker"
	"github.com/evidentia/docsynth/core"
	"github.com/evidentia/docsynth/index"
	"github.com/evidentia/docsynth/storage"
	"github.com/panjf2000/ants/v2"
)

// defaultBatchSize is how many chunk texts go into one embedding call.
const defaultBatchSize = 32

// Model pairs an embedding model name with its embedder. The name keys
// the per-model vectors on stored chunks and must match the scorer ids
// used at retrieval time.
type Model struct {
	Name     string
	Embedder ai.Embedder
}

// Pipeline orchestrates document ingestion: chunking, ensemble embedding,
// storage, and corpus snapshot rebuild. Embedding batches for all models
// run concurrently on a worker pool.
type Pipeline struct {
	chunkRepository storage.ChunkRepository
	chunker         *chunker.Chunker
	models          []Model
	holder          *index.Holder
	pool            *ants.Pool
	batchSize       int
	logger          *slog.Logger

	// Serializes ingest and rebuild so the snapshot never skips a
	// concurrently stored document.
	mu sync.Mutex
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent embedding.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.pool != nil {
			p.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithBatchSize sets how many chunks are embedded per model call.
// Default is 32.
func WithBatchSize(size int) Option {
	return func(p *Pipeline) error {
		if size > 0 {
			p.batchSize = size
		}
		return nil
	}
}

// WithChunker sets a custom chunker.
func WithChunker(c *chunker.Chunker) Option {
	return func(p *Pipeline) error {
		if c != nil {
			p.chunker = c
		}
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	chunkRepository storage.ChunkRepository,
	holder *index.Holder,
	models []Model,
	opts ...Option,
) (*Pipeline, error) {
	if chunkRepository == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if holder == nil {
		return nil, ErrHolderRequired
	}
	if len(models) == 0 {
		return nil, ErrNoModels
	}
	seen := make(map[string]bool, len(models))
	for _, model := range models {
		if seen[model.Name] {
			return nil, ErrDuplicateModel
		}
		seen[model.Name] = true
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		chunkRepository: chunkRepository,
		chunker:         chunker.New(),
		models:          models,
		holder:          holder,
		pool:            pool,
		batchSize:       defaultBatchSize,
		logger:          slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(p); err != nil {
			p.Release()
			return nil, err
		}
	}

	return p, nil
}

// Release releases the embedding worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}

// Result summarizes one document ingestion.
type Result struct {
	DocumentId    core.ID
	ChunksAdded   int
	ChunksRemoved int // Chunks of a previous version of the same document
	CorpusSize    int // Snapshot size after the rebuild
}

// IngestDocument chunks the document, embeds every chunk with each
// ensemble model, stores the result, and rebuilds the corpus snapshot.
// Re-ingesting a document replaces its previous chunks; the fingerprint
// is derived from the source name, so a revised version supersedes the
// old one rather than accumulating next to it.
// Returns ErrEmptyDocument when the text yields no chunks.
func (p *Pipeline) IngestDocument(ctx context.Context, sourceDocument, theme, text string) (*Result, error) {
	chunks := p.chunker.Chunk(sourceDocument, theme, text)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyDocument, sourceDocument)
	}

	if err := p.embedChunks(ctx, chunks); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	documentId := chunks[0].DocumentId
	removed, err := p.chunkRepository.DeleteDocument(ctx, documentId)
	if err != nil {
		return nil, err
	}
	if removed > 0 {
		p.logger.Info("replacing previous document version",
			"document", sourceDocument, "chunks", removed)
	}

	added, err := p.chunkRepository.AddChunks(ctx, chunks...)
	if err != nil {
		return nil, err
	}

	snapshot, err := p.rebuild(ctx)
	if err != nil {
		return nil, err
	}

	p.logger.Info("document ingested",
		"document", sourceDocument, "theme", theme,
		"chunks", len(added), "corpus", snapshot.Len())

	return &Result{
		DocumentId:    documentId,
		ChunksAdded:   len(added),
		ChunksRemoved: removed,
		CorpusSize:    snapshot.Len(),
	}, nil
}

// DeleteDocument removes every chunk of the named document and rebuilds
// the corpus snapshot. Returns the number of chunks removed; an unknown
// document removes nothing and is not an error.
func (p *Pipeline) DeleteDocument(ctx context.Context, sourceDocument string) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	removed, err := p.chunkRepository.DeleteDocument(ctx, core.IDFromContent(sourceDocument))
	if err != nil {
		return 0, err
	}
	if removed == 0 {
		return 0, nil
	}

	snapshot, err := p.rebuild(ctx)
	if err != nil {
		return removed, err
	}

	p.logger.Info("document deleted",
		"document", sourceDocument, "chunks", removed, "corpus", snapshot.Len())
	return removed, nil
}

// RebuildIndex rebuilds the corpus snapshot from storage and publishes
// it. Call at startup to restore the index from persisted chunks.
func (p *Pipeline) RebuildIndex(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	_, err := p.rebuild(ctx)
	return err
}

// rebuild loads all chunks, builds a fresh snapshot over them, and swaps
// it in. Callers hold p.mu.
func (p *Pipeline) rebuild(ctx context.Context) (*index.Snapshot, error) {
	chunks, err := p.chunkRepository.ListChunks(ctx)
	if err != nil {
		return nil, err
	}

	names := make([]string, len(p.models))
	for i, model := range p.models {
		names[i] = model.Name
	}

	snapshot, err := index.BuildSnapshot(chunks, names)
	if err != nil {
		return nil, err
	}

	p.holder.Swap(snapshot)
	return snapshot, nil
}

// embedChunks fills in every chunk's per-model vectors. Batches across
// all models are submitted to the worker pool and run concurrently.
func (p *Pipeline) embedChunks(ctx context.Context, chunks []*core.Chunk) error {
	for _, chunk := range chunks {
		chunk.Vectors = make(map[string][]float32, len(p.models))
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	type batchJob struct {
		model Model
		start int
		end   int
	}

	var jobs []batchJob
	for _, model := range p.models {
		for start := 0; start < len(chunks); start += p.batchSize {
			end := min(start+p.batchSize, len(chunks))
			jobs = append(jobs, batchJob{model: model, start: start, end: end})
		}
	}

	errs := make([]error, len(jobs))
	// Chunk vector maps are written from multiple workers; each worker
	// owns a distinct (model, range) slice so writes never collide on a
	// map key, but map access itself needs the lock.
	var vecMu sync.Mutex
	var wg sync.WaitGroup

	for i, job := range jobs {
		wg.Add(1)
		i, job := i, job

		if err := p.pool.Submit(func() {
			defer wg.Done()

			embeddings, err := job.model.Embedder.EmbedTexts(ctx, texts[job.start:job.end])
			if err != nil {
				errs[i] = err
				return
			}
			if len(embeddings) != job.end-job.start {
				errs[i] = fmt.Errorf("embedding result mismatch. expected %d, received %d",
					job.end-job.start, len(embeddings))
				return
			}

			vecMu.Lock()
			for j, vector := range embeddings {
				chunks[job.start+j].Vectors[job.model.Name] = index.Normalize(vector)
			}
			vecMu.Unlock()
		}); err != nil {
			errs[i] = err
			wg.Done()
		}
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			p.logger.Error("embedding batch failed", "model", jobs[i].model.Name, "err", err)
			return err
		}
	}
	return nil
}
