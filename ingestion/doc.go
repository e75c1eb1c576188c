// Package ingestion provides pipeline orchestration for document ingestion.
//
// The Pipeline type manages the ingestion workflow for documents, including:
//   - Splitting text into sentence-bounded chunks
//   - Embedding every chunk with each ensemble model
//   - Persisting chunks with their vectors
//   - Rebuilding and publishing the corpus snapshot
//
// Embedding batches run concurrently on a worker pool. Re-ingesting a
// document replaces its previous chunks, keyed by the document fingerprint.
package ingestion
