package ingestion

import (
	"context"
	"errors"
	"testing"

	"github.com/evidentia/docsynth/ai/mock"
	"github.com/evidentia/docsynth/index"
	"github.com/evidentia/docsynth/storage"
	storagebadger "github.com/evidentia/docsynth/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testPrimaryModel   = "all-mpnet-base-v2"
	testSecondaryModel = "multi-qa-mpnet-base-dot-v1"
)

func newTestPipeline(t *testing.T) (*Pipeline, storage.ChunkRepository, *index.Holder) {
	t.Helper()

	chunkRepo, backend, err := storagebadger.NewMemoryRepository()
	require.NoError(t, err)
	t.Cleanup(func() {
		chunkRepo.Close()
		backend.Close()
	})

	holder := index.NewHolder()
	models := []Model{
		{Name: testPrimaryModel, Embedder: mock.NewMockEmbedderWithSalt("primary")},
		{Name: testSecondaryModel, Embedder: mock.NewMockEmbedderWithSalt("secondary")},
	}

	pipeline, err := NewPipeline(chunkRepo, holder, models, WithPoolSize(2), WithBatchSize(4))
	require.NoError(t, err)
	t.Cleanup(pipeline.Release)

	return pipeline, chunkRepo, holder
}

func TestNewPipeline(t *testing.T) {
	chunkRepo, backend, err := storagebadger.NewMemoryRepository()
	require.NoError(t, err)
	defer func() { chunkRepo.Close(); backend.Close() }()

	holder := index.NewHolder()
	models := []Model{{Name: "m", Embedder: mock.NewMockEmbedder()}}

	t.Run("valid configuration", func(t *testing.T) {
		p, err := NewPipeline(chunkRepo, holder, models)
		require.NoError(t, err)
		defer p.Release()
		assert.NotNil(t, p)
	})

	t.Run("nil repository", func(t *testing.T) {
		_, err := NewPipeline(nil, holder, models)
		assert.Equal(t, ErrChunkRepositoryRequired, err)
	})

	t.Run("nil holder", func(t *testing.T) {
		_, err := NewPipeline(chunkRepo, nil, models)
		assert.Equal(t, ErrHolderRequired, err)
	})

	t.Run("no models", func(t *testing.T) {
		_, err := NewPipeline(chunkRepo, holder, nil)
		assert.Equal(t, ErrNoModels, err)
	})

	t.Run("duplicate model name", func(t *testing.T) {
		dup := []Model{
			{Name: "m", Embedder: mock.NewMockEmbedder()},
			{Name: "m", Embedder: mock.NewMockEmbedder()},
		}
		_, err := NewPipeline(chunkRepo, holder, dup)
		assert.Equal(t, ErrDuplicateModel, err)
	})
}

func TestIngestDocument(t *testing.T) {
	pipeline, chunkRepo, holder := newTestPipeline(t)
	ctx := context.Background()

	text := "Maternal mortality declined by 38% since 2000. Skilled birth attendance " +
		"reached 82% of deliveries in 2023. Rural clinics remain understaffed. " +
		"Immunization coverage for measles stands at 74%."

	result, err := pipeline.IngestDocument(ctx, "health_report.pdf", "health", text)
	require.NoError(t, err)

	assert.NotZero(t, result.DocumentId)
	assert.Greater(t, result.ChunksAdded, 0)
	assert.Equal(t, 0, result.ChunksRemoved)
	assert.Equal(t, result.ChunksAdded, result.CorpusSize)

	// Chunks are persisted with vectors for both models
	stored, err := chunkRepo.ListChunks(ctx)
	require.NoError(t, err)
	require.Len(t, stored, result.ChunksAdded)
	for _, chunk := range stored {
		require.Len(t, chunk.Vectors, 2)
		assert.True(t, index.IsNormalized(chunk.Vectors[testPrimaryModel]))
		assert.True(t, index.IsNormalized(chunk.Vectors[testSecondaryModel]))
	}

	// The snapshot is published and covers every stored chunk
	snapshot := holder.Load()
	require.NotNil(t, snapshot)
	assert.Equal(t, len(stored), snapshot.Len())

	_, ok := snapshot.Index(testPrimaryModel)
	assert.True(t, ok)
	_, ok = snapshot.Index(testSecondaryModel)
	assert.True(t, ok)
}

func TestIngestDocumentEmpty(t *testing.T) {
	pipeline, _, _ := newTestPipeline(t)

	_, err := pipeline.IngestDocument(context.Background(), "empty.pdf", "health", "   \n\t ")
	assert.ErrorIs(t, err, ErrEmptyDocument)
}

func TestReingestReplacesDocument(t *testing.T) {
	pipeline, chunkRepo, holder := newTestPipeline(t)
	ctx := context.Background()

	first, err := pipeline.IngestDocument(ctx, "report.pdf", "health",
		"Original content about clinics. More original content here.")
	require.NoError(t, err)

	// Revised text, same source name
	second, err := pipeline.IngestDocument(ctx, "report.pdf", "health",
		"Completely revised content about hospitals.")
	require.NoError(t, err)

	assert.Equal(t, first.DocumentId, second.DocumentId)
	assert.Equal(t, first.ChunksAdded, second.ChunksRemoved)

	// Only the new version remains, in storage and in the snapshot
	count, err := chunkRepo.CountChunks(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ChunksAdded, count)
	assert.Equal(t, second.ChunksAdded, holder.Load().Len())

	remaining, err := chunkRepo.ListChunks(ctx)
	require.NoError(t, err)
	for _, chunk := range remaining {
		assert.Contains(t, chunk.Text, "revised")
	}
}

func TestDeleteDocument(t *testing.T) {
	pipeline, chunkRepo, holder := newTestPipeline(t)
	ctx := context.Background()

	_, err := pipeline.IngestDocument(ctx, "keep.pdf", "health",
		"Immunization coverage rose to 74% in 2023.")
	require.NoError(t, err)
	result, err := pipeline.IngestDocument(ctx, "drop.pdf", "health",
		"Clinic staffing levels fell sharply in rural districts.")
	require.NoError(t, err)

	removed, err := pipeline.DeleteDocument(ctx, "drop.pdf")
	require.NoError(t, err)
	assert.Equal(t, result.ChunksAdded, removed)

	// Deleted chunks leave both storage and the published snapshot
	remaining, err := chunkRepo.ListChunks(ctx)
	require.NoError(t, err)
	for _, chunk := range remaining {
		assert.Equal(t, "keep.pdf", chunk.SourceDocument)
	}
	assert.Equal(t, len(remaining), holder.Load().Len())

	// Unknown document is a no-op
	removed, err = pipeline.DeleteDocument(ctx, "never-ingested.pdf")
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestIngestMultipleDocuments(t *testing.T) {
	pipeline, _, holder := newTestPipeline(t)
	ctx := context.Background()

	docs := map[string]string{
		"health.pdf":    "Immunization coverage rose to 74% in 2023.",
		"education.pdf": "Primary school enrollment reached 91% of eligible children.",
		"water.pdf":     "Safe water access covers 68% of rural households.",
	}

	total := 0
	for name, text := range docs {
		result, err := pipeline.IngestDocument(ctx, name, "general", text)
		require.NoError(t, err)
		total += result.ChunksAdded
	}

	assert.Equal(t, total, holder.Load().Len())
}

func TestRebuildIndexFromStorage(t *testing.T) {
	pipeline, chunkRepo, _ := newTestPipeline(t)
	ctx := context.Background()

	result, err := pipeline.IngestDocument(ctx, "report.pdf", "health",
		"Immunization coverage rose to 74% in 2023.")
	require.NoError(t, err)

	// A fresh holder, as after process restart
	freshHolder := index.NewHolder()
	models := []Model{
		{Name: testPrimaryModel, Embedder: mock.NewMockEmbedderWithSalt("primary")},
		{Name: testSecondaryModel, Embedder: mock.NewMockEmbedderWithSalt("secondary")},
	}
	restored, err := NewPipeline(chunkRepo, freshHolder, models)
	require.NoError(t, err)
	defer restored.Release()

	require.Nil(t, freshHolder.Load())
	require.NoError(t, restored.RebuildIndex(ctx))

	snapshot := freshHolder.Load()
	require.NotNil(t, snapshot)
	assert.Equal(t, result.ChunksAdded, snapshot.Len())
}

func TestIngestEmbeddingFailure(t *testing.T) {
	chunkRepo, backend, err := storagebadger.NewMemoryRepository()
	require.NoError(t, err)
	defer func() { chunkRepo.Close(); backend.Close() }()

	failing := mock.NewMockEmbedder()
	failing.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("embedding host down")
	}

	holder := index.NewHolder()
	pipeline, err := NewPipeline(chunkRepo, holder, []Model{{Name: "m", Embedder: failing}})
	require.NoError(t, err)
	defer pipeline.Release()

	ctx := context.Background()
	_, err = pipeline.IngestDocument(ctx, "report.pdf", "health", "Some text to ingest.")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "embedding host down")

	// Nothing was stored and no snapshot was published
	count, err := chunkRepo.CountChunks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.Nil(t, holder.Load())
}
