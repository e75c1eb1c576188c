package mock

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"sync/atomic"
)

// embeddingDim is the dimensionality of mock embedding vectors.
const embeddingDim = 128

// MockEmbedder is a test double for ai.Embedder.
// It allows custom behavior injection via function fields.
//
// The default behavior hashes each token of the input into a fixed-size
// bag-of-words vector and normalizes it. This keeps embeddings fully
// deterministic while still giving texts that share vocabulary a higher
// inner product than unrelated texts, which is enough for ranking tests.
type MockEmbedder struct {
	// Salt distinguishes independent mock models: two embedders with
	// different salts produce different vectors for the same text.
	Salt string

	// EmbedTextFunc is called by EmbedText if set.
	// If nil, uses default deterministic behavior.
	EmbedTextFunc func(ctx context.Context, text string) ([]float32, error)

	// EmbedTextsFunc is called by EmbedTexts if set.
	// If nil, uses default deterministic behavior.
	EmbedTextsFunc func(ctx context.Context, texts []string) ([][]float32, error)

	callCount atomic.Int64
}

// NewMockEmbedder creates a mock embedder with default deterministic behavior.
// Note: Returns concrete type to allow test assertions and behavior injection.
func NewMockEmbedder() *MockEmbedder {
	return &MockEmbedder{}
}

// NewMockEmbedderWithSalt creates a mock embedder representing a distinct
// model identity.
func NewMockEmbedderWithSalt(salt string) *MockEmbedder {
	return &MockEmbedder{Salt: salt}
}

// EmbedText generates a deterministic embedding from the text's tokens.
func (m *MockEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	m.callCount.Add(1)

	if m.EmbedTextFunc != nil {
		return m.EmbedTextFunc(ctx, text)
	}

	return bagOfWordsVector(text, m.Salt), nil
}

// EmbedTexts generates deterministic embeddings for multiple texts.
func (m *MockEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	m.callCount.Add(1)

	if m.EmbedTextsFunc != nil {
		return m.EmbedTextsFunc(ctx, texts)
	}

	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		embeddings[i] = bagOfWordsVector(text, m.Salt)
	}
	return embeddings, nil
}

// CallCount returns the number of times any method was called.
func (m *MockEmbedder) CallCount() int {
	return int(m.callCount.Load())
}

// Reset clears the call count and injected behavior.
func (m *MockEmbedder) Reset() {
	m.callCount.Store(0)
	m.EmbedTextFunc = nil
	m.EmbedTextsFunc = nil
}

// bagOfWordsVector hashes lowercased tokens into a fixed-size vector and
// normalizes it to unit length. The salt shifts every token's bucket so
// different mock models disagree on unrelated texts but still agree that a
// text is most similar to itself.
func bagOfWordsVector(text, salt string) []float32 {
	vector := make([]float32, embeddingDim)

	for _, token := range strings.Fields(strings.ToLower(text)) {
		token = strings.Trim(token, ".,!?;:'\"()[]{}")
		if token == "" {
			continue
		}
		h := fnv.New32a()
		h.Write([]byte(salt))
		h.Write([]byte(token))
		vector[h.Sum32()%embeddingDim] += 1
	}

	var sumSquares float64
	for _, v := range vector {
		sumSquares += float64(v) * float64(v)
	}
	if sumSquares > 0 {
		norm := float32(1.0 / math.Sqrt(sumSquares))
		for i := range vector {
			vector[i] *= norm
		}
	}

	return vector
}
