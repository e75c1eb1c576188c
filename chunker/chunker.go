package chunker

import (
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/evidentia/docsynth/core"
)

const (
	// DefaultMaxWords is the default word budget per chunk.
	DefaultMaxWords = 300
	// DefaultOverlapSentences is the default number of sentences shared
	// between consecutive chunks.
	DefaultOverlapSentences = 2
)

// sentenceSplitter matches sentence-like units ending in terminal punctuation.
var sentenceSplitter = regexp.MustCompile(`[^.!?]+[.!?]+`)

// Chunker splits cleaned document text into overlapping sentence-bounded
// chunks tagged with content flags. Splitting never occurs mid-sentence
// unless a single sentence exceeds the word budget on its own.
type Chunker struct {
	maxWords         int
	overlapSentences int
	logger           *slog.Logger
}

// Option configures a Chunker.
type Option func(*Chunker)

// WithMaxWords sets the word budget per chunk.
// Values below 1 fall back to the default.
func WithMaxWords(maxWords int) Option {
	return func(c *Chunker) {
		if maxWords < 1 {
			maxWords = DefaultMaxWords
		}
		c.maxWords = maxWords
	}
}

// WithOverlapSentences sets the number of trailing sentences carried into
// the next chunk. Negative values are clamped to zero.
func WithOverlapSentences(overlap int) Option {
	return func(c *Chunker) {
		if overlap < 0 {
			overlap = 0
		}
		c.overlapSentences = overlap
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Chunker) {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
	}
}

// New creates a Chunker with the default word budget and overlap.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		maxWords:         DefaultMaxWords,
		overlapSentences: DefaultOverlapSentences,
		logger:           slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Chunk splits document text into an ordered chunk sequence.
// Empty or whitespace-only input yields an empty sequence, not an error;
// the ingestion caller decides whether zero chunks is acceptable.
// Chunk IDs are left unset; the repository assigns them from its sequence.
func (c *Chunker) Chunk(sourceDocument, theme, text string) []*core.Chunk {
	cleaned := CleanText(text)
	if cleaned == "" {
		return nil
	}

	sentences := splitSentences(cleaned, c.maxWords)
	// Fingerprint by source name: re-ingesting a document, changed or
	// not, maps to the same DocumentId so it replaces the old version.
	documentId := core.IDFromContent(sourceDocument)
	now := time.Now().UTC()

	var chunks []*core.Chunk
	var window []string
	windowWords := 0

	emit := func() {
		chunkText := strings.Join(window, " ")
		chunks = append(chunks, &core.Chunk{
			DocumentId:     documentId,
			SourceDocument: sourceDocument,
			Theme:          theme,
			Text:           chunkText,
			Position:       len(chunks),
			WordCount:      windowWords,
			Flags:          DetectFlags(chunkText),
			InsertedAt:     now,
		})
	}

	for _, sentence := range sentences {
		words := wordCount(sentence)
		if windowWords+words > c.maxWords && len(window) > 0 {
			emit()

			// Carry trailing sentences into the next chunk, shrinking the
			// overlap if it would blow the word budget.
			keep := window
			if len(keep) > c.overlapSentences {
				keep = keep[len(keep)-c.overlapSentences:]
			}
			keepWords := 0
			for _, s := range keep {
				keepWords += wordCount(s)
			}
			for len(keep) > 0 && keepWords+words > c.maxWords {
				keepWords -= wordCount(keep[0])
				keep = keep[1:]
			}

			window = append(append([]string(nil), keep...), sentence)
			windowWords = keepWords + words
			continue
		}
		window = append(window, sentence)
		windowWords += words
	}

	if len(window) > 0 {
		emit()
	}

	c.logger.Debug("chunked document",
		"source", sourceDocument,
		"sentences", len(sentences),
		"chunks", len(chunks))

	return chunks
}

// splitSentences breaks text at sentence boundaries. Sentences longer than
// maxWords are hard-split into word windows so no chunk can exceed the
// budget.
func splitSentences(text string, maxWords int) []string {
	spans := sentenceSplitter.FindAllStringIndex(text, -1)

	matches := make([]string, 0, len(spans)+1)
	end := 0
	for _, span := range spans {
		matches = append(matches, text[span[0]:span[1]])
		end = span[1]
	}
	// Pick up a trailing fragment without terminal punctuation. The tail
	// starts at the last match's end offset; matches need not begin at
	// offset zero, so summed match lengths would mis-slice it.
	if rest := strings.TrimSpace(text[end:]); rest != "" {
		matches = append(matches, rest)
	}

	sentences := make([]string, 0, len(matches))
	for _, m := range matches {
		m = strings.TrimSpace(m)
		if m == "" {
			continue
		}
		words := strings.Fields(m)
		if len(words) <= maxWords {
			sentences = append(sentences, m)
			continue
		}
		for start := 0; start < len(words); start += maxWords {
			end := start + maxWords
			if end > len(words) {
				end = len(words)
			}
			sentences = append(sentences, strings.Join(words[start:end], " "))
		}
	}
	return sentences
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}
