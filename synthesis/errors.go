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


package synthesis

import "errors"

var (
	// ErrRetrieverRequired is returned when a retriever is not provided.
	ErrRetrieverRequired = errors.New("retriever required")

	// ErrGeneratorRequired is returned when a generator is not provided.
	ErrGeneratorRequired = errors.New("generator required")

	// ErrEmptyTopic is returned when the synthesis topic is empty or whitespace.
	ErrEmptyTopic = errors.New("topic must not be empty")

	// ErrNoTopics is returned when a batch request carries no topics.
	ErrNoTopics = errors.New("at least one topic required")

	// ErrNoEvidence is returned when retrieval finds no chunks for a topic.
	ErrNoEvidence = errors.New("no evidence retrieved for topic")

	// ErrGenerationFailed wraps generation model failures.
	ErrGenerationFailed = errors.New("generation failed")
)
