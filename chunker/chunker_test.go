package chunker

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunk_Empty(t *testing.T) {
	c := New()

	t.Run("empty input", func(t *testing.T) {
		chunks := c.Chunk("doc.pdf", "health", "")
		assert.Empty(t, chunks)
	})

	t.Run("whitespace only", func(t *testing.T) {
		chunks := c.Chunk("doc.pdf", "health", "   \n\t  ")
		assert.Empty(t, chunks)
	})
}

func TestChunk_SingleSentence(t *testing.T) {
	c := New()
	chunks := c.Chunk("doc.pdf", "health", "Maternal mortality declined in 2024.")
	require.Len(t, chunks, 1)

	chunk := chunks[0]
	assert.Equal(t, "doc.pdf", chunk.SourceDocument)
	assert.Equal(t, "health", chunk.Theme)
	assert.Equal(t, 0, chunk.Position)
	assert.Equal(t, 5, chunk.WordCount)
	assert.True(t, chunk.Flags.HasYears)
}

func TestChunk_WordBudgetNeverExceeded(t *testing.T) {
	// Build a document of 100 ten-word sentences.
	var sb strings.Builder
	for i := 0; i < 100; i++ {
		fmt.Fprintf(&sb, "Sentence number %d has exactly ten words in it total. ", i)
	}

	c := New(WithMaxWords(50), WithOverlapSentences(2))
	chunks := c.Chunk("big.pdf", "education", sb.String())
	require.NotEmpty(t, chunks)

	for i, chunk := range chunks {
		words := len(strings.Fields(chunk.Text))
		assert.LessOrEqual(t, words, 50, "chunk %d exceeds word budget", i)
		assert.Equal(t, words, chunk.WordCount)
		assert.Equal(t, i, chunk.Position)
	}
}

func TestChunk_OverlapBetweenConsecutiveChunks(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 20; i++ {
		fmt.Fprintf(&sb, "Sentence number %d has exactly ten words in it total. ", i)
	}

	c := New(WithMaxWords(50), WithOverlapSentences(2))
	chunks := c.Chunk("doc.pdf", "health", sb.String())
	require.Greater(t, len(chunks), 1)

	for i := 1; i < len(chunks); i++ {
		prev := splitSentences(chunks[i-1].Text, 50)
		curr := splitSentences(chunks[i].Text, 50)
		require.GreaterOrEqual(t, len(prev), 2)

		// The last two sentences of the previous chunk open the next one.
		assert.Equal(t, prev[len(prev)-2], curr[0], "chunk %d missing first overlap sentence", i)
		assert.Equal(t, prev[len(prev)-1], curr[1], "chunk %d missing second overlap sentence", i)
	}
}

func TestChunk_OversizedSentenceIsHardSplit(t *testing.T) {
	words := make([]string, 120)
	for i := range words {
		words[i] = "term"
	}
	text := strings.Join(words, " ") + "."

	c := New(WithMaxWords(50))
	chunks := c.Chunk("doc.pdf", "health", text)
	require.NotEmpty(t, chunks)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len(strings.Fields(chunk.Text)), 50)
	}
}

func TestChunk_NoTerminalPunctuation(t *testing.T) {
	c := New()
	chunks := c.Chunk("doc.pdf", "health", "a trailing fragment without punctuation")
	require.Len(t, chunks, 1)
	assert.Equal(t, "a trailing fragment without punctuation", chunks[0].Text)
}

func TestChunk_LeadingPunctuation(t *testing.T) {
	c := New()

	// PDF extraction often leaves stray terminal punctuation at the
	// start of the text; it must not shift the trailing-fragment slice.
	chunks := c.Chunk("doc.pdf", "health", ". Hello world. Goodbye now.")
	require.Len(t, chunks, 1)
	assert.Equal(t, "Hello world. Goodbye now.", chunks[0].Text)

	chunks = c.Chunk("doc.pdf", "health", "!? Coverage improved. No trailing stop")
	require.Len(t, chunks, 1)
	assert.Equal(t, "Coverage improved. No trailing stop", chunks[0].Text)
}

func TestChunk_DeterministicDocumentId(t *testing.T) {
	c := New()
	a := c.Chunk("doc.pdf", "health", "First sentence here. Second sentence here.")
	b := c.Chunk("doc.pdf", "health", "First sentence here. Second sentence here.")
	require.NotEmpty(t, a)
	require.NotEmpty(t, b)
	assert.Equal(t, a[0].DocumentId, b[0].DocumentId)

	other := c.Chunk("other.pdf", "health", "First sentence here. Second sentence here.")
	require.NotEmpty(t, other)
	assert.NotEqual(t, a[0].DocumentId, other[0].DocumentId)

	// A revised version of the same document keeps its fingerprint
	revised := c.Chunk("doc.pdf", "health", "Entirely new text now.")
	require.NotEmpty(t, revised)
	assert.Equal(t, a[0].DocumentId, revised[0].DocumentId)
}

func TestDetectFlags(t *testing.T) {
	t.Run("numbers", func(t *testing.T) {
		flags := DetectFlags("enrollment reached 45 thousand")
		assert.True(t, flags.HasNumbers)
		assert.False(t, flags.HasPercentages)
		assert.False(t, flags.HasYears)
	})

	t.Run("percentages", func(t *testing.T) {
		flags := DetectFlags("unemployment increased by 5%")
		assert.True(t, flags.HasPercentages)
		assert.True(t, flags.HasNumbers)
	})

	t.Run("years", func(t *testing.T) {
		flags := DetectFlags("the 2024 census")
		assert.True(t, flags.HasYears)
	})

	t.Run("not a year", func(t *testing.T) {
		flags := DetectFlags("sample of 1250 households from 3000")
		assert.False(t, flags.HasYears)
	})

	t.Run("sdg keywords", func(t *testing.T) {
		flags := DetectFlags("access to clean Water and Sanitation")
		assert.True(t, flags.HasSDGKeywords)
	})

	t.Run("no signals", func(t *testing.T) {
		flags := DetectFlags("plain descriptive prose")
		assert.False(t, flags.HasNumbers)
		assert.False(t, flags.HasPercentages)
		assert.False(t, flags.HasYears)
		assert.False(t, flags.HasSDGKeywords)
	})
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "a b c", CleanText("  a\n\nb\tc  "))
	assert.Equal(t, `"quoted" and 'single'`, CleanText("“quoted” and ‘single’"))
	assert.Equal(t, "", CleanText(""))
}
