// Copyright 2026 Veridia Labs
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


// Package engine answers free-form questions from the trained knowledge base.
//
// The Engine type implements a single-query retrieval algorithm:
//   - Embed the query with the configured embedder
//   - Search the vector index for the top-k most similar trained questions
//   - Accept the best candidate when its cosine similarity reaches the
//     confidence threshold, otherwise return a fixed fallback answer
//
// Matching is purely representation-based. The language hint never filters
// candidates; it only selects the fallback answer's language.
package engine
