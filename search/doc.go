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


// Package search provides ensemble semantic retrieval over the corpus index.
//
// The Searcher type runs the same query through multiple embedding models
// in parallel, ranks each model's candidates against its own vector index,
// and fuses the rankings by weighted score sum. Chunks surfaced by only
// part of the ensemble are dampened rather than dropped, and ties are
// broken by chunk ID so retrieval is deterministic over an unchanged
// snapshot.
package search
