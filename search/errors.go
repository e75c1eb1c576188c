// Copyright 2025 Evidentia Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package search

import "errors"

var (
	// ErrEmptyQuery is returned when the search query is empty or whitespace.
	ErrEmptyQuery = errors.New("query must not be empty")

	// ErrInvalidLimit is returned when the result limit is not positive.
	ErrInvalidLimit = errors.New("result limit must be positive")

	// ErrIndexUnavailable is returned when no corpus snapshot has been built yet.
	ErrIndexUnavailable = errors.New("corpus index not available")

	// ErrNoScorers is returned when a searcher is constructed without scorers.
	ErrNoScorers = errors.New("at least one scorer required")

	// ErrInvalidWeight is returned when a scorer weight is not positive.
	ErrInvalidWeight = errors.New("scorer weight must be positive")

	// ErrDuplicateScorer is returned when two scorers share an id.
	ErrDuplicateScorer = errors.New("duplicate scorer id")

	// ErrHolderRequired is returned when a snapshot holder is not provided.
	ErrHolderRequired = errors.New("snapshot holder required")
)
