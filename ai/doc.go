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


// Package ai defines the embedding abstraction used by answerit.
//
// The retrieval and training layers depend only on the Embedder interface,
// never on a concrete implementation.
//
// # Implementation Packages
//
//   - ai/openai: production implementation backed by any OpenAI-compatible
//     embedding API (OpenAI, Ollama, LocalAI, vLLM)
//   - ai/mock: deterministic test double requiring no external service
//
// # Constructor Return Type Pattern
//
// Production constructors (openai.NewEmbedder) return the ai.Embedder
// INTERFACE to enforce abstraction. Test constructors (mock.NewEmbedder)
// return the CONCRETE type so tests can inject behavior and assert on call
// counts.
//
// # Model Versions
//
// Embedder.Model() is the version tag recorded in persisted index snapshots.
// Vectors from different model versions must never be mixed in one index;
// a version change invalidates the whole index and forces a rebuild from the
// knowledge store.
package ai
