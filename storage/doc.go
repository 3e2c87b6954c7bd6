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


// Package storage provides the persistence abstraction layer for answerit.
//
// Two concerns are kept deliberately separate:
//
//   - KnowledgeStore: the authoritative, durable record of question-answer
//     pairs. Implemented by storage/jsonfile over the JSON knowledge-base
//     interchange format.
//   - SnapshotStore: a rebuildable cache of the vector index (dimension,
//     model version and (id, vector) entries). Implemented by
//     storage/badgercache on BadgerDB. Losing it costs a re-embedding pass,
//     never data.
//
// # Constructor Return Type Pattern
//
// Public constructors return the interface types to enforce abstraction and
// keep backends swappable:
//
//	store, err := jsonfile.NewStore(path)        // returns storage.KnowledgeStore
//	cache, err := badgercache.Open(dir, false)   // returns storage.SnapshotStore
//
// # Serialization
//
// Snapshot payloads use the MUS binary format via hand-written serializers
// in this package (IndexEntryMUS, SnapshotMetaMUS). The knowledge store uses
// JSON because its format is an external interchange contract, not a cache.
//
// # Thread Safety
//
// All implementations must be thread-safe and support concurrent access from
// multiple goroutines.
package storage
