// Package index provides exact nearest-neighbor search over embedding
// vectors and the immutable corpus snapshot served to retrieval.
//
// A Flat index performs brute-force inner-product search: exact by design,
// since ranking determinism matters for citation fidelity and corpora stay
// small. A Snapshot bundles the ordered chunk sequence with one Flat index
// per ensemble model, kept in lockstep, and a Holder swaps snapshots
// atomically when the corpus is rebuilt.
package index
