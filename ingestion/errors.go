package ingestion

import "errors"

var (
	// ErrChunkRepositoryRequired is returned when a chunk repository is not provided.
	ErrChunkRepositoryRequired = errors.New("chunk repository required")

	// ErrHolderRequired is returned when a snapshot holder is not provided.
	ErrHolderRequired = errors.New("snapshot holder required")

	// ErrNoModels is returned when no embedding models are provided.
	ErrNoModels = errors.New("at least one embedding model required")

	// ErrDuplicateModel is returned when two models share a name.
	ErrDuplicateModel = errors.New("duplicate model name")

	// ErrEmptyDocument is returned when a document yields no chunks.
	ErrEmptyDocument = errors.New("document yields no chunks")
)
