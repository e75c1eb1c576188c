package reindex

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/evidentia/docsynth/ai/mock"
	"github.com/evidentia/docsynth/core"
	"github.com/evidentia/docsynth/index"
	"github.com/evidentia/docsynth/ingestion"
	"github.com/evidentia/docsynth/storage"
	storagebadger "github.com/evidentia/docsynth/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedChunks(t *testing.T, repo storage.ChunkRepository, n int) {
	t.Helper()
	ctx := context.Background()
	for i := 0; i < n; i++ {
		_, err := repo.AddChunks(ctx, &core.Chunk{
			DocumentId:     core.IDFromContent("seed.txt"),
			SourceDocument: "seed.txt",
			Theme:          "health",
			Text:           "Immunization coverage is tracked here.",
			Position:       i,
			WordCount:      5,
		})
		require.NoError(t, err)
	}
}

func TestNewReindexer(t *testing.T) {
	repo, backend, err := storagebadger.NewMemoryRepository()
	require.NoError(t, err)
	defer func() { repo.Close(); backend.Close() }()

	models := []ingestion.Model{{Name: "m", Embedder: mock.NewMockEmbedder()}}

	t.Run("valid configuration", func(t *testing.T) {
		r, err := NewReindexer(repo, models, nil, nil, nil)
		require.NoError(t, err)
		assert.NotNil(t, r)
	})

	t.Run("nil repository", func(t *testing.T) {
		_, err := NewReindexer(nil, models, nil, nil, nil)
		assert.Equal(t, ErrChunkRepositoryRequired, err)
	})

	t.Run("no models", func(t *testing.T) {
		_, err := NewReindexer(repo, nil, nil, nil, nil)
		assert.Equal(t, ErrNoModels, err)
	})
}

func TestReindexEmptyStorage(t *testing.T) {
	repo, backend, err := storagebadger.NewMemoryRepository()
	require.NoError(t, err)
	defer func() { repo.Close(); backend.Close() }()

	var out bytes.Buffer
	r, err := NewReindexer(repo, []ingestion.Model{{Name: "m", Embedder: mock.NewMockEmbedder()}}, nil, nil, &out)
	require.NoError(t, err)

	require.NoError(t, r.Run(context.Background()))
	assert.Contains(t, out.String(), "No chunks found")
}

func TestReindexRefreshesVectors(t *testing.T) {
	repo, backend, err := storagebadger.NewMemoryRepository()
	require.NoError(t, err)
	defer func() { repo.Close(); backend.Close() }()

	seedChunks(t, repo, 7)

	holder := index.NewHolder()
	models := []ingestion.Model{
		{Name: "primary", Embedder: mock.NewMockEmbedderWithSalt("primary")},
		{Name: "secondary", Embedder: mock.NewMockEmbedderWithSalt("secondary")},
	}

	var out bytes.Buffer
	config := &Config{BatchSize: 3, ReportInterval: 3, MaxRetries: 2, RetryDelay: time.Millisecond}
	r, err := NewReindexer(repo, models, holder, config, &out)
	require.NoError(t, err)

	require.NoError(t, r.Run(context.Background()))

	// Every chunk now carries normalized vectors for both models
	ctx := context.Background()
	chunks, err := repo.ListChunks(ctx)
	require.NoError(t, err)
	require.Len(t, chunks, 7)
	for _, chunk := range chunks {
		require.Len(t, chunk.Vectors, 2)
		assert.True(t, index.IsNormalized(chunk.Vectors["primary"]))
		assert.True(t, index.IsNormalized(chunk.Vectors["secondary"]))
	}

	// A fresh snapshot was published
	snapshot := holder.Load()
	require.NotNil(t, snapshot)
	assert.Equal(t, 7, snapshot.Len())

	assert.Contains(t, out.String(), "Re-indexing complete")
}

func TestReindexRetriesTransientFailures(t *testing.T) {
	repo, backend, err := storagebadger.NewMemoryRepository()
	require.NoError(t, err)
	defer func() { repo.Close(); backend.Close() }()

	seedChunks(t, repo, 2)

	attempts := 0
	flaky := mock.NewMockEmbedder()
	flaky.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		attempts++
		if attempts == 1 {
			return nil, errors.New("transient embedding failure")
		}
		out := make([][]float32, len(texts))
		for i := range out {
			out[i] = []float32{1, 0}
		}
		return out, nil
	}

	config := &Config{BatchSize: 10, ReportInterval: 10, MaxRetries: 3, RetryDelay: time.Millisecond}
	r, err := NewReindexer(repo, []ingestion.Model{{Name: "m", Embedder: flaky}}, nil, config, nil)
	require.NoError(t, err)

	require.NoError(t, r.Run(context.Background()))
	assert.Equal(t, 2, attempts)
}

func TestReindexExhaustedRetries(t *testing.T) {
	repo, backend, err := storagebadger.NewMemoryRepository()
	require.NoError(t, err)
	defer func() { repo.Close(); backend.Close() }()

	seedChunks(t, repo, 1)

	broken := mock.NewMockEmbedder()
	broken.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("embedding host down")
	}

	config := &Config{BatchSize: 10, ReportInterval: 10, MaxRetries: 2, RetryDelay: time.Millisecond}
	r, err := NewReindexer(repo, []ingestion.Model{{Name: "m", Embedder: broken}}, nil, config, nil)
	require.NoError(t, err)

	err = r.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "embedding host down")
}

func TestRetryWithBackoff(t *testing.T) {
	ctx := context.Background()

	t.Run("invalid max attempts", func(t *testing.T) {
		err := retryWithBackoff(ctx, func() error { return nil }, 0, time.Millisecond)
		assert.Equal(t, ErrInvalidMaxAttempts, err)
	})

	t.Run("succeeds first try", func(t *testing.T) {
		calls := 0
		err := retryWithBackoff(ctx, func() error { calls++; return nil }, 3, time.Millisecond)
		require.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("returns last error when exhausted", func(t *testing.T) {
		calls := 0
		err := retryWithBackoff(ctx, func() error {
			calls++
			return errors.New("still failing")
		}, 3, time.Millisecond)
		require.Error(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("honors cancellation between attempts", func(t *testing.T) {
		cancelCtx, cancel := context.WithCancel(ctx)
		calls := 0
		err := retryWithBackoff(cancelCtx, func() error {
			calls++
			cancel()
			return errors.New("fail")
		}, 5, 10*time.Millisecond)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, calls)
	})
}
