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


// Package synthesis turns retrieved evidence into analytical outputs.
//
// The Orchestrator retrieves ranked evidence for a topic and drives the
// generation model to produce policy briefs with numbered citations,
// derives indicator matrices by keyword extraction over the evidence,
// and processes batches of topics concurrently with per-topic failure
// isolation.
//
// Generated briefs are advisory: the model's output is passed through
// unparsed and is not verified against the evidence it cites.
package synthesis
