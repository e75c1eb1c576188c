package index

import "errors"

var (
	// ErrDimensionMismatch indicates vectors of different dimensionality.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrEmptyVector indicates a zero-length vector was supplied.
	ErrEmptyVector = errors.New("empty vector")

	// ErrNoIndices indicates a snapshot was assembled without any index.
	ErrNoIndices = errors.New("no indices provided")

	// ErrIndexOutOfStep indicates the per-model indices do not cover the
	// chunk sequence one-to-one.
	ErrIndexOutOfStep = errors.New("index out of step with chunk sequence")
)
