// Package mock provides test doubles for the ai package interfaces.
//
// The mock embedders are deterministic and vocabulary-sensitive: texts that
// share tokens score higher against each other than unrelated texts, which
// lets retrieval tests assert rankings without a live embedding service.
package mock
