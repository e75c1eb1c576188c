package synthesis

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/evidentia/docsynth/ai"
	"github.com/evidentia/docsynth/core"
	"github.com/panjf2000/ants/v2"
)

const (
	// defaultSummaryK is the evidence depth for policy brief synthesis.
	defaultSummaryK = 30

	// maxSummaryK bounds the evidence depth so the assembled prompt
	// stays within generation model context limits.
	maxSummaryK = 50

	// defaultIndicatorK is the evidence depth for indicator extraction.
	defaultIndicatorK = 20

	// defaultIndicatorTopK is how many indicator candidates to keep.
	defaultIndicatorTopK = 5

	// defaultGenerationTimeout bounds a single generation call.
	defaultGenerationTimeout = 120 * time.Second
)

// Retriever supplies ranked evidence for a topic.
// *search.Searcher satisfies this.
type Retriever interface {
	Search(ctx context.Context, query string, k int) ([]*core.ScoredChunk, error)
}

// Orchestrator drives evidence retrieval and synthesis: policy briefs,
// indicator matrices, and batch processing over multiple topics.
type Orchestrator struct {
	retriever Retriever
	generator ai.Generator
	extractor IndicatorExtractor
	pool      *ants.Pool
	timeout   time.Duration
	logger    *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator) error

// WithPoolSize sets the worker pool size for batch processing.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(o *Orchestrator) error {
		if size < 1 {
			size = 1
		}

		if o.pool != nil {
			o.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		o.pool = pool
		return nil
	}
}

// WithGenerationTimeout bounds each generation call.
// Default is 120 seconds.
func WithGenerationTimeout(timeout time.Duration) Option {
	return func(o *Orchestrator) error {
		if timeout > 0 {
			o.timeout = timeout
		}
		return nil
	}
}

// WithExtractor sets a custom indicator extractor.
// Default is the pattern-based extractor.
func WithExtractor(extractor IndicatorExtractor) Option {
	return func(o *Orchestrator) error {
		if extractor != nil {
			o.extractor = extractor
		}
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) error {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger
		return nil
	}
}

// NewOrchestrator creates a new synthesis orchestrator.
func NewOrchestrator(retriever Retriever, generator ai.Generator, opts ...Option) (*Orchestrator, error) {
	if retriever == nil {
		return nil, ErrRetrieverRequired
	}
	if generator == nil {
		return nil, ErrGeneratorRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	o := &Orchestrator{
		retriever: retriever,
		generator: generator,
		extractor: NewPatternExtractor(),
		pool:      pool,
		timeout:   defaultGenerationTimeout,
		logger:    slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(o); err != nil {
			o.Release()
			return nil, err
		}
	}

	return o, nil
}

// Release releases the batch worker pool.
// The orchestrator should not be used after calling Release.
func (o *Orchestrator) Release() {
	if o.pool != nil {
		o.pool.Release()
	}
}

// Summarize retrieves evidence for the topic and generates a policy brief.
// k is the evidence depth; zero or negative selects the default, and any
// value is capped so the prompt stays inside model context limits.
// Returns ErrNoEvidence when retrieval finds nothing for the topic.
func (o *Orchestrator) Summarize(ctx context.Context, topic string, k int) (*core.PolicyBrief, error) {
	if strings.TrimSpace(topic) == "" {
		return nil, ErrEmptyTopic
	}
	if k <= 0 {
		k = defaultSummaryK
	}
	if k > maxSummaryK {
		k = maxSummaryK
	}

	chunks, err := o.retriever.Search(ctx, topic, k)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoEvidence, topic)
	}

	return o.synthesizeBrief(ctx, topic, chunks)
}

// synthesizeBrief generates a policy brief from already-retrieved evidence.
func (o *Orchestrator) synthesizeBrief(ctx context.Context, topic string, chunks []*core.ScoredChunk) (*core.PolicyBrief, error) {
	o.logger.Debug("synthesizing brief", "topic", topic, "evidence", len(chunks))

	genCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	text, err := o.generator.Generate(genCtx, buildBriefPrompt(chunks))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	return &core.PolicyBrief{
		Topic:       topic,
		Text:        text,
		Sources:     sourceRefs(chunks),
		GeneratedAt: time.Now().UTC(),
	}, nil
}

// ExtractIndicators retrieves evidence for the topic and derives an
// indicator matrix from it. k is the evidence depth, topK the number of
// candidates to keep; zero or negative values select defaults. When the
// evidence yields no candidates, numbered fallback indicators are
// generated from the topic.
// Returns ErrNoEvidence when retrieval finds nothing for the topic.
func (o *Orchestrator) ExtractIndicators(ctx context.Context, topic string, k, topK int) ([]core.Indicator, error) {
	if strings.TrimSpace(topic) == "" {
		return nil, ErrEmptyTopic
	}
	if k <= 0 {
		k = defaultIndicatorK
	}
	if topK <= 0 {
		topK = defaultIndicatorTopK
	}

	chunks, err := o.retriever.Search(ctx, topic, k)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoEvidence, topic)
	}

	return o.indicatorsFrom(topic, chunks, topK), nil
}

// indicatorsFrom derives an indicator matrix from already-retrieved
// evidence.
func (o *Orchestrator) indicatorsFrom(topic string, chunks []*core.ScoredChunk, topK int) []core.Indicator {
	texts := make([]string, len(chunks))
	for i, scored := range chunks {
		texts[i] = scored.Chunk.Text
	}

	candidates := o.extractor.Extract(strings.Join(texts, " "), topK)
	return buildIndicators(topic, candidates, topK)
}

// ProcessBatch synthesizes a brief and indicator matrix for each topic.
// Topics run concurrently on the worker pool; results come back in the
// input order. A topic that fails is reported in its result with status
// error, and the rest of the batch still completes.
func (o *Orchestrator) ProcessBatch(ctx context.Context, topics []string, k int) ([]core.TopicResult, error) {
	if len(topics) == 0 {
		return nil, ErrNoTopics
	}

	results := make([]core.TopicResult, len(topics))

	var wg sync.WaitGroup
	for i, topic := range topics {
		wg.Add(1)
		i, topic := i, topic

		err := o.pool.Submit(func() {
			defer wg.Done()
			results[i] = o.processTopic(ctx, topic, k)
		})
		if err != nil {
			results[i] = core.TopicResult{
				Topic:  topic,
				Status: core.TopicStatusError,
				Error:  err.Error(),
			}
			wg.Done()
		}
	}
	wg.Wait()

	return results, nil
}

// processTopic runs full synthesis for one batch topic. The topic's
// evidence is retrieved once and feeds both the brief and the indicator
// matrix.
func (o *Orchestrator) processTopic(ctx context.Context, topic string, k int) core.TopicResult {
	fail := func(err error) core.TopicResult {
		o.logger.Warn("batch topic failed", "topic", topic, "err", err)
		return core.TopicResult{Topic: topic, Status: core.TopicStatusError, Error: err.Error()}
	}

	if strings.TrimSpace(topic) == "" {
		return fail(ErrEmptyTopic)
	}
	if k <= 0 {
		k = defaultSummaryK
	}
	if k > maxSummaryK {
		k = maxSummaryK
	}

	chunks, err := o.retriever.Search(ctx, topic, k)
	if err != nil {
		return fail(err)
	}
	if len(chunks) == 0 {
		return fail(fmt.Errorf("%w: %q", ErrNoEvidence, topic))
	}

	brief, err := o.synthesizeBrief(ctx, topic, chunks)
	if err != nil {
		return fail(err)
	}

	return core.TopicResult{
		Topic:      topic,
		Status:     core.TopicStatusSuccess,
		Brief:      brief,
		Indicators: o.indicatorsFrom(topic, chunks, defaultIndicatorTopK),
	}
}
