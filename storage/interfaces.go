package storage

import (
	"context"

	"github.com/evidentia/docsynth/core"
)

// Repository provides common storage operations shared across repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// ChunkRepository provides operations for managing corpus chunks.
// It is the durable side of the corpus index: chunks are persisted here
// with their per-model embedding vectors, and the in-memory snapshot is
// rebuilt from this store at process start or after re-indexing.
type ChunkRepository interface {
	Repository

	// AddChunks adds one or more chunks to storage.
	// Generates new IDs from the sequence (insertion order) and sets
	// InsertedAt if not already set.
	// Returns the chunks with generated IDs and timestamps populated.
	AddChunks(ctx context.Context, chunks ...*core.Chunk) ([]*core.Chunk, error)

	// UpdateChunks updates existing chunks, typically to attach embedding
	// vectors after an embedding pass.
	// Returns ErrNotFound if any chunk doesn't exist.
	UpdateChunks(ctx context.Context, chunks ...*core.Chunk) ([]*core.Chunk, error)

	// DeleteChunks removes chunks by their IDs.
	// Also removes associated document index entries.
	// Returns ErrNotFound if any chunk doesn't exist.
	DeleteChunks(ctx context.Context, ids ...core.ID) error

	// GetChunk retrieves a single chunk by ID.
	// Returns ErrNotFound if the chunk doesn't exist.
	GetChunk(ctx context.Context, id core.ID) (*core.Chunk, error)

	// GetChunks retrieves multiple chunks by their IDs.
	// Returns only the chunks that exist (no error for missing chunks).
	GetChunks(ctx context.Context, ids ...core.ID) ([]*core.Chunk, error)

	// ListChunks retrieves all chunks ordered by ID ascending.
	// This is the canonical build order for the corpus snapshot: both
	// vector indices are built over exactly this sequence.
	ListChunks(ctx context.Context) ([]*core.Chunk, error)

	// GetChunksByDocument retrieves IDs of chunks belonging to a document
	// fingerprint. Returns only chunk IDs, not full chunks.
	GetChunksByDocument(ctx context.Context, documentId core.ID) ([]core.ID, error)

	// DeleteDocument removes all chunks of a document fingerprint.
	// Returns the number of chunks removed; removing an unknown document
	// is not an error.
	DeleteDocument(ctx context.Context, documentId core.ID) (int, error)

	// CountChunks returns the number of stored chunks.
	CountChunks(ctx context.Context) (int, error)
}
