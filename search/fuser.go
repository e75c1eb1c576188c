package search

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/evidentia/docsynth/ai"
	"github.com/evidentia/docsynth/core"
	"github.com/evidentia/docsynth/index"
)

// overfetchFactor is how many candidates each scorer retrieves per
// requested result. Fusion needs headroom because the scorers disagree
// near the cutoff; a hit ranked outside k by one model can still land
// inside k once the other model's score is folded in.
const overfetchFactor = 3

// Scorer is one member of the retrieval ensemble: an embedding model
// plus the weight its scores carry in the fused ranking.
type Scorer struct {
	// ID names the scorer. It must match the model name the corpus
	// snapshot was built with, and it keys the per-scorer entries in
	// ScoredChunk.Scores.
	ID string

	// Weight scales this scorer's contribution to the combined score.
	// Weights are used as given; they are not renormalized.
	Weight float32

	// Embedder produces query vectors for this scorer's model.
	Embedder ai.Embedder
}

// Searcher runs ensemble retrieval over the current corpus snapshot.
// Each scorer embeds the query with its own model and ranks against its
// own index; the per-scorer rankings are fused by weighted score sum.
type Searcher struct {
	scorers []Scorer
	holder  *index.Holder
	logger  *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewSearcher creates a new ensemble searcher over the given snapshot holder.
func NewSearcher(holder *index.Holder, scorers []Scorer, opts ...Option) (*Searcher, error) {
	if holder == nil {
		return nil, ErrHolderRequired
	}
	if len(scorers) == 0 {
		return nil, ErrNoScorers
	}

	seen := make(map[string]bool, len(scorers))
	for _, scorer := range scorers {
		if scorer.Weight <= 0 {
			return nil, ErrInvalidWeight
		}
		if seen[scorer.ID] {
			return nil, ErrDuplicateScorer
		}
		seen[scorer.ID] = true
	}

	s := &Searcher{
		scorers: scorers,
		holder:  holder,
		logger:  slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Search retrieves the k chunks most relevant to the query.
// Returns up to k results ranked by fused score, descending. Ties are
// broken by chunk ID ascending so a repeated query over an unchanged
// snapshot always returns the same ordering.
func (s *Searcher) Search(ctx context.Context, query string, k int) ([]*core.ScoredChunk, error) {
	return s.SearchWithMonitor(ctx, query, k, nil)
}

// scorerHits is one scorer's ranked candidate list.
type scorerHits struct {
	scorerID string
	weight   float32
	hits     []index.Hit
}

// SearchWithMonitor retrieves like Search while reporting each retrieval
// stage to the monitor.
func (s *Searcher) SearchWithMonitor(ctx context.Context, query string, k int, monitor RetrievalMonitor) ([]*core.ScoredChunk, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	if k <= 0 {
		return nil, ErrInvalidLimit
	}

	snapshot := s.holder.Load()
	if snapshot == nil {
		return nil, ErrIndexUnavailable
	}

	monitor.Start(query, k)

	// An empty corpus has a valid snapshot with nothing to rank.
	if snapshot.Len() == 0 {
		monitor.Finish(nil)
		return []*core.ScoredChunk{}, nil
	}

	// Fan out: each scorer embeds the query with its own model and
	// ranks against its own index in parallel.
	fetchK := k * overfetchFactor
	results := make([]scorerHits, len(s.scorers))
	errs := make([]error, len(s.scorers))

	var wg sync.WaitGroup
	for i, scorer := range s.scorers {
		wg.Add(1)
		go func(i int, scorer Scorer) {
			defer wg.Done()

			flat, ok := snapshot.Index(scorer.ID)
			if !ok {
				errs[i] = ErrIndexUnavailable
				return
			}

			vector, err := scorer.Embedder.EmbedText(ctx, query)
			if err != nil {
				errs[i] = err
				return
			}
			index.Normalize(vector)

			hits, err := flat.Query(vector, fetchK)
			if err != nil {
				errs[i] = err
				return
			}

			results[i] = scorerHits{scorerID: scorer.ID, weight: scorer.Weight, hits: hits}
		}(i, scorer)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			s.logger.Error("scorer failed", "scorer", s.scorers[i].ID, "err", err)
			return nil, err
		}
	}

	for _, r := range results {
		monitor.AfterScorerQuery(r.scorerID, r.hits)
	}

	fused := fuse(snapshot, results)
	monitor.AfterFusion(fused)

	if len(fused) > k {
		fused = fused[:k]
	}
	monitor.Finish(fused)

	return fused, nil
}

// fuse merges per-scorer rankings into a single list ordered by weighted
// score sum. A chunk surfaced by only some scorers gets the minimum
// observed score of each absent scorer, so partial coverage dampens a
// hit instead of zeroing it out.
func fuse(snapshot *index.Snapshot, results []scorerHits) []*core.ScoredChunk {
	merged := make(map[core.ID]*core.ScoredChunk)

	for _, r := range results {
		for _, hit := range r.hits {
			chunk := snapshot.Chunk(hit.Position)
			scored, ok := merged[chunk.Id]
			if !ok {
				scored = &core.ScoredChunk{
					Chunk:  chunk,
					Scores: make(map[string]float32, len(results)),
				}
				merged[chunk.Id] = scored
			}
			scored.Scores[r.scorerID] = hit.Score
		}
	}

	if len(merged) == 0 {
		return nil
	}

	// Floor score per scorer: lowest score that scorer actually
	// assigned among the candidates.
	floors := make(map[string]float32, len(results))
	for _, r := range results {
		if len(r.hits) == 0 {
			continue
		}
		floor := r.hits[0].Score
		for _, hit := range r.hits[1:] {
			if hit.Score < floor {
				floor = hit.Score
			}
		}
		floors[r.scorerID] = floor
	}

	fused := make([]*core.ScoredChunk, 0, len(merged))
	for _, scored := range merged {
		var combined float32
		for _, r := range results {
			score, ok := scored.Scores[r.scorerID]
			if !ok {
				score = floors[r.scorerID]
			}
			combined += r.weight * score
		}
		scored.Combined = combined
		fused = append(fused, scored)
	}

	slices.SortFunc(fused, func(a, b *core.ScoredChunk) int {
		if a.Combined != b.Combined {
			if a.Combined > b.Combined {
				return -1
			}
			return 1
		}
		if a.Chunk.Id < b.Chunk.Id {
			return -1
		}
		if a.Chunk.Id > b.Chunk.Id {
			return 1
		}
		return 0
	})

	return fused
}
