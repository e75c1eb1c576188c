package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing or database sequences.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs. It is used for
// document fingerprints so that re-ingesting the same document replaces its
// chunks instead of duplicating them.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// ContentFlags records lightweight lexical signals detected in a chunk.
// They are computed once at chunking time and never change afterwards.
type ContentFlags struct {
	HasNumbers     bool `json:"has_numbers"`
	HasPercentages bool `json:"has_percentages"`
	HasYears       bool `json:"has_years"`
	HasSDGKeywords bool `json:"has_sdg_keywords"`
}

// Chunk is a bounded text unit extracted from a source document.
// It is the unit of retrieval: immutable once created, removed only by
// full re-indexing or deletion of its source document.
type Chunk struct {
	Id             ID                   `json:"id"`
	DocumentId     ID                   `json:"document_id"` // Fingerprint of the source document (IDFromContent)
	SourceDocument string               `json:"source_document"`
	Theme          string               `json:"theme"`
	Text           string               `json:"text"`
	Position       int                  `json:"position"` // Ordinal of the chunk within its document
	WordCount      int                  `json:"word_count"`
	Flags          ContentFlags         `json:"flags"`
	InsertedAt     time.Time            `json:"inserted_at"`
	Vectors        map[string][]float32 `json:"vectors,omitempty"` // Per-model embedding vectors (populated at index build)
}

// ScoredChunk is a ranked retrieval hit. Scores holds the inner-product
// score contributed by each scorer that surfaced the chunk, keyed by
// scorer id. Combined is the weighted sum used for ranking.
type ScoredChunk struct {
	Chunk    *Chunk
	Scores   map[string]float32
	Combined float32
}

// SourceRef maps a citation number back to source chunk metadata.
type SourceRef struct {
	Ref            int
	SourceDocument string
	Theme          string
}

// PolicyBrief is the structured output of a synthesis request.
// Text is the generation model's output passed through unparsed; Sources
// maps the [n] citation markers embedded in the prompt back to chunk
// metadata. The content is advisory and not verified against the evidence.
type PolicyBrief struct {
	Topic       string
	Text        string
	Sources     []SourceRef
	GeneratedAt time.Time
}

// SourcesCount returns the number of evidence chunks behind the brief.
func (b *PolicyBrief) SourcesCount() int {
	return len(b.Sources)
}

// Indicator is a heuristically extracted indicator candidate with
// placeholder metadata. Candidates require human validation before use
// in a monitoring framework.
type Indicator struct {
	Name         string
	Purpose      string
	DataSources  string
	Frequency    string
	SDGRelevance string
}

// TopicStatus marks the outcome of one topic in a batch request.
type TopicStatus string

const (
	// TopicStatusSuccess indicates the topic was synthesized successfully.
	TopicStatusSuccess TopicStatus = "success"
	// TopicStatusError indicates synthesis failed for the topic.
	TopicStatusError TopicStatus = "error"
)

// TopicResult carries the outcome of synthesizing a single topic within a
// batch. A failed topic holds the error message; partial batches are never
// discarded.
type TopicResult struct {
	Topic      string
	Status     TopicStatus
	Error      string
	Brief      *PolicyBrief
	Indicators []Indicator
}
