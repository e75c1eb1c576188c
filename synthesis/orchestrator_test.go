package synthesis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/evidentia/docsynth/ai/mock"
	"github.com/evidentia/docsynth/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubRetriever returns canned evidence and records the requested depth.
type stubRetriever struct {
	chunks []*core.ScoredChunk
	err    error

	mu    sync.Mutex
	lastK int
	calls int
}

func (s *stubRetriever) Search(ctx context.Context, query string, k int) ([]*core.ScoredChunk, error) {
	s.mu.Lock()
	s.lastK = k
	s.calls++
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return s.chunks, nil
}

func (s *stubRetriever) requestedK() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastK
}

func (s *stubRetriever) searchCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func evidenceChunks(n int) []*core.ScoredChunk {
	chunks := make([]*core.ScoredChunk, n)
	for i := range chunks {
		chunks[i] = &core.ScoredChunk{
			Chunk: &core.Chunk{
				Id:             core.ID(i + 1),
				SourceDocument: fmt.Sprintf("doc_%d.pdf", i+1),
				Theme:          "health",
				Text:           fmt.Sprintf("The immunization coverage reached %d%% in district %d.", 60+i, i+1),
				WordCount:      8,
			},
			Combined: 0.9,
		}
	}
	return chunks
}

func TestNewOrchestrator(t *testing.T) {
	retriever := &stubRetriever{chunks: evidenceChunks(2)}
	generator := mock.NewMockGenerator()

	t.Run("valid configuration", func(t *testing.T) {
		o, err := NewOrchestrator(retriever, generator)
		require.NoError(t, err)
		defer o.Release()
		assert.NotNil(t, o)
	})

	t.Run("nil retriever", func(t *testing.T) {
		_, err := NewOrchestrator(nil, generator)
		assert.Equal(t, ErrRetrieverRequired, err)
	})

	t.Run("nil generator", func(t *testing.T) {
		_, err := NewOrchestrator(retriever, nil)
		assert.Equal(t, ErrGeneratorRequired, err)
	})

	t.Run("with pool size", func(t *testing.T) {
		o, err := NewOrchestrator(retriever, generator, WithPoolSize(2))
		require.NoError(t, err)
		defer o.Release()
		assert.NotNil(t, o)
	})
}

func TestSummarize(t *testing.T) {
	ctx := context.Background()

	t.Run("produces a brief with numbered sources", func(t *testing.T) {
		retriever := &stubRetriever{chunks: evidenceChunks(3)}
		generator := mock.NewMockGenerator()

		o, err := NewOrchestrator(retriever, generator)
		require.NoError(t, err)
		defer o.Release()

		brief, err := o.Summarize(ctx, "child immunization", 10)
		require.NoError(t, err)

		assert.Equal(t, "child immunization", brief.Topic)
		assert.NotEmpty(t, brief.Text)
		assert.False(t, brief.GeneratedAt.IsZero())
		assert.Equal(t, 3, brief.SourcesCount())

		// Citation numbers are positional, starting at 1
		for i, ref := range brief.Sources {
			assert.Equal(t, i+1, ref.Ref)
		}
		assert.Equal(t, "doc_1.pdf", brief.Sources[0].SourceDocument)
		assert.Equal(t, "health", brief.Sources[0].Theme)

		// The prompt carries the evidence with matching markers
		prompt := generator.LastPrompt()
		assert.Contains(t, prompt, "[1] The immunization coverage reached 60%")
		assert.Contains(t, prompt, "(Source: doc_1.pdf)")
		assert.Contains(t, prompt, "[3]")
		assert.Contains(t, prompt, "expert policy analyst")
	})

	t.Run("empty topic", func(t *testing.T) {
		o, err := NewOrchestrator(&stubRetriever{}, mock.NewMockGenerator())
		require.NoError(t, err)
		defer o.Release()

		_, err = o.Summarize(ctx, "  ", 10)
		assert.Equal(t, ErrEmptyTopic, err)
	})

	t.Run("no evidence", func(t *testing.T) {
		o, err := NewOrchestrator(&stubRetriever{}, mock.NewMockGenerator())
		require.NoError(t, err)
		defer o.Release()

		_, err = o.Summarize(ctx, "unindexed topic", 10)
		assert.ErrorIs(t, err, ErrNoEvidence)
	})

	t.Run("default and capped evidence depth", func(t *testing.T) {
		retriever := &stubRetriever{chunks: evidenceChunks(1)}
		o, err := NewOrchestrator(retriever, mock.NewMockGenerator())
		require.NoError(t, err)
		defer o.Release()

		_, err = o.Summarize(ctx, "topic", 0)
		require.NoError(t, err)
		assert.Equal(t, defaultSummaryK, retriever.requestedK())

		_, err = o.Summarize(ctx, "topic", 500)
		require.NoError(t, err)
		assert.Equal(t, maxSummaryK, retriever.requestedK())
	})

	t.Run("generation failure", func(t *testing.T) {
		generator := mock.NewMockGenerator()
		generator.GenerateFunc = func(ctx context.Context, prompt string) (string, error) {
			return "", errors.New("model overloaded")
		}

		o, err := NewOrchestrator(&stubRetriever{chunks: evidenceChunks(1)}, generator)
		require.NoError(t, err)
		defer o.Release()

		_, err = o.Summarize(ctx, "topic", 5)
		assert.ErrorIs(t, err, ErrGenerationFailed)
		assert.Contains(t, err.Error(), "model overloaded")
	})

	t.Run("retrieval failure", func(t *testing.T) {
		o, err := NewOrchestrator(&stubRetriever{err: errors.New("index gone")}, mock.NewMockGenerator())
		require.NoError(t, err)
		defer o.Release()

		_, err = o.Summarize(ctx, "topic", 5)
		assert.Contains(t, err.Error(), "index gone")
	})
}

func TestExtractIndicators(t *testing.T) {
	ctx := context.Background()

	t.Run("derives indicators from evidence", func(t *testing.T) {
		o, err := NewOrchestrator(&stubRetriever{chunks: evidenceChunks(3)}, mock.NewMockGenerator())
		require.NoError(t, err)
		defer o.Release()

		indicators, err := o.ExtractIndicators(ctx, "child immunization", 0, 0)
		require.NoError(t, err)
		require.NotEmpty(t, indicators)
		assert.LessOrEqual(t, len(indicators), defaultIndicatorTopK)

		assert.Contains(t, indicators[0].Name, "Immunization Coverage")
		assert.Contains(t, indicators[0].Purpose, "child immunization")
		assert.Equal(t, "Annual", indicators[0].Frequency)
	})

	t.Run("fallback names when evidence has no candidates", func(t *testing.T) {
		chunks := []*core.ScoredChunk{
			{Chunk: &core.Chunk{Id: 1, SourceDocument: "a.pdf", Text: "Nothing measurable here.", WordCount: 3}},
		}
		o, err := NewOrchestrator(&stubRetriever{chunks: chunks}, mock.NewMockGenerator())
		require.NoError(t, err)
		defer o.Release()

		indicators, err := o.ExtractIndicators(ctx, "Water Access", 0, 3)
		require.NoError(t, err)
		require.Len(t, indicators, 3)
		assert.Equal(t, "Water Access Indicator 1", indicators[0].Name)
	})

	t.Run("empty topic", func(t *testing.T) {
		o, err := NewOrchestrator(&stubRetriever{}, mock.NewMockGenerator())
		require.NoError(t, err)
		defer o.Release()

		_, err = o.ExtractIndicators(ctx, "", 0, 0)
		assert.Equal(t, ErrEmptyTopic, err)
	})

	t.Run("no evidence", func(t *testing.T) {
		o, err := NewOrchestrator(&stubRetriever{}, mock.NewMockGenerator())
		require.NoError(t, err)
		defer o.Release()

		_, err = o.ExtractIndicators(ctx, "unindexed topic", 0, 0)
		assert.ErrorIs(t, err, ErrNoEvidence)
	})
}

func TestProcessBatch(t *testing.T) {
	ctx := context.Background()

	t.Run("empty batch", func(t *testing.T) {
		o, err := NewOrchestrator(&stubRetriever{}, mock.NewMockGenerator())
		require.NoError(t, err)
		defer o.Release()

		_, err = o.ProcessBatch(ctx, nil, 0)
		assert.Equal(t, ErrNoTopics, err)
	})

	t.Run("results in input order", func(t *testing.T) {
		o, err := NewOrchestrator(&stubRetriever{chunks: evidenceChunks(2)}, mock.NewMockGenerator(), WithPoolSize(4))
		require.NoError(t, err)
		defer o.Release()

		topics := []string{"health coverage", "school enrollment", "water access"}
		results, err := o.ProcessBatch(ctx, topics, 0)
		require.NoError(t, err)
		require.Len(t, results, 3)

		for i, result := range results {
			assert.Equal(t, topics[i], result.Topic)
			assert.Equal(t, core.TopicStatusSuccess, result.Status)
			require.NotNil(t, result.Brief)
			assert.NotEmpty(t, result.Indicators)
		}
	})

	t.Run("one retrieval per topic feeds brief and indicators", func(t *testing.T) {
		retriever := &stubRetriever{chunks: evidenceChunks(2)}
		o, err := NewOrchestrator(retriever, mock.NewMockGenerator())
		require.NoError(t, err)
		defer o.Release()

		results, err := o.ProcessBatch(ctx, []string{"immunization coverage"}, 25)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, core.TopicStatusSuccess, results[0].Status)
		assert.NotEmpty(t, results[0].Indicators)

		// Indicators come from the same evidence set as the brief,
		// retrieved once at the batch depth.
		assert.Equal(t, 1, retriever.searchCalls())
		assert.Equal(t, 25, retriever.requestedK())
	})

	t.Run("failed topic does not sink the batch", func(t *testing.T) {
		generator := mock.NewMockGenerator()
		generator.GenerateFunc = func(ctx context.Context, prompt string) (string, error) {
			if strings.Contains(prompt, "broken topic marker") {
				return "", errors.New("model refused")
			}
			return "TITLE\nA brief.", nil
		}

		// The middle topic's evidence carries the marker that trips the generator
		retriever := &topicAwareRetriever{}
		o, err := NewOrchestrator(retriever, generator)
		require.NoError(t, err)
		defer o.Release()

		topics := []string{"health", "broken", "education"}
		results, err := o.ProcessBatch(ctx, topics, 0)
		require.NoError(t, err)
		require.Len(t, results, 3)

		assert.Equal(t, core.TopicStatusSuccess, results[0].Status)
		assert.Equal(t, core.TopicStatusError, results[1].Status)
		assert.Contains(t, results[1].Error, "model refused")
		assert.Nil(t, results[1].Brief)
		assert.Equal(t, core.TopicStatusSuccess, results[2].Status)
	})
}

// topicAwareRetriever returns evidence whose text embeds the query so the
// generator stub can fail selectively.
type topicAwareRetriever struct{}

func (r *topicAwareRetriever) Search(ctx context.Context, query string, k int) ([]*core.ScoredChunk, error) {
	text := "Coverage rate improved."
	if query == "broken" {
		text = "broken topic marker"
	}
	return []*core.ScoredChunk{
		{Chunk: &core.Chunk{Id: 1, SourceDocument: "a.pdf", Theme: "t", Text: text, WordCount: 3}},
	}, nil
}
