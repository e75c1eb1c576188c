// Package reindex provides full re-indexing of the stored corpus:
// re-embedding every chunk with the configured ensemble models and
// rebuilding the published snapshot.
//
// Re-indexing is the only path that shrinks the corpus index after
// document deletions, and the required path after switching embedding
// models. The package supports batch processing, progress reporting,
// and retry with exponential backoff for embedding calls.
package reindex
