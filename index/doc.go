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


// Package index provides the in-memory vector index used for nearest-neighbor
// search over question embeddings.
//
// # Similarity Metric
//
// The index reports cosine similarity, computed as the dot product of
// unit-length vectors, in [-1, 1] with higher meaning more similar. This
// scale is what the retrieval threshold is calibrated against, so it is part
// of the contract, not an implementation detail.
//
// # Consistency
//
// The index never owns records: it holds (id, vector) copies whose id set
// must mirror the knowledge store exactly whenever the system is queryable.
// When they diverge (crash between store and index writes, model version
// change), the index is rebuilt wholesale from the store; Rebuild installs
// the replacement atomically.
package index
