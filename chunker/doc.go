// Package chunker splits extracted document text into retrieval units.
//
// The Chunker type produces sentence-bounded chunks with a fixed word
// budget and a configurable sentence overlap between consecutive chunks,
// preserving context across chunk boundaries. Each chunk is tagged with
// lexical content flags (numbers, percentages, years, SDG keywords) that
// downstream synthesis uses to prioritize evidence-bearing text.
package chunker
