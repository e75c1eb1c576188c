package search

import (
	"github.com/evidentia/docsynth/core"
	"github.com/evidentia/docsynth/index"
)

// RetrievalMonitor provides hooks to observe the retrieval process.
// Implement this interface to track intermediate steps and results during search.
type RetrievalMonitor interface {
	Start(query string, k int)
	AfterScorerQuery(scorerID string, hits []index.Hit)
	AfterFusion(candidates []*core.ScoredChunk)
	Finish(results []*core.ScoredChunk)
}

// noopMonitor is a no-op implementation of RetrievalMonitor
type noopMonitor struct{}

var _ RetrievalMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string, _ int)                   {}
func (n *noopMonitor) AfterScorerQuery(_ string, _ []index.Hit) {}
func (n *noopMonitor) AfterFusion(_ []*core.ScoredChunk)       {}
func (n *noopMonitor) Finish(_ []*core.ScoredChunk)            {}
