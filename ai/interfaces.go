package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be deterministic (the same text always yields the same
// vector) and thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector represents the semantic meaning of the text.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// Batch processing is more efficient than calling EmbedText multiple times.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Generator produces free text from a fully assembled prompt.
// The caller owns prompt construction and output handling; implementations
// pass the model response through without parsing it.
// Implementations must be thread-safe for concurrent use.
type Generator interface {
	// Generate issues a single generation call and returns the model's text.
	// Callers are expected to bound the call with a context timeout since
	// generation can take tens of seconds.
	Generate(ctx context.Context, prompt string) (string, error)
}

// AIProvider aggregates AI services for convenient initialization and
// lifecycle management. A provider owns both ensemble embedders and the
// generation model, ensuring they share configuration.
type AIProvider interface {
	// PrimaryEmbedder returns the ensemble's primary embedding model,
	// tuned for longer-form institutional text.
	PrimaryEmbedder() Embedder

	// SecondaryEmbedder returns the ensemble's secondary embedding model,
	// tuned for question/answer matching.
	SecondaryEmbedder() Embedder

	// Generator returns the text generation service.
	Generator() Generator

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
