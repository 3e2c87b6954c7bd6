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


package storage

import (
	"context"

	"github.com/veridia/answerit/core"
)

// KnowledgeStore is the durable, authoritative record of all question-answer
// pairs. It exclusively owns core.QARecord instances; the vector index only
// mirrors (id, vector) pairs derived from them.
//
// Implementations must be thread-safe: any number of concurrent readers, and
// writes that readers observe either fully or not at all.
type KnowledgeStore interface {
	// Load reads all records from durable storage. A missing backing file is
	// an empty store, not an error; an unreadable one fails with
	// ErrCorruptStore and must never be silently dropped or truncated.
	Load(ctx context.Context) ([]*core.QARecord, error)

	// Save writes the full record set durably, atomically from the caller's
	// perspective: a crash mid-write must not leave a partially-written,
	// unreadable store.
	Save(ctx context.Context, records []*core.QARecord) error

	// Append adds new records, assigns fresh ids (never reused) and persists.
	// Returns the records with ids populated.
	Append(ctx context.Context, records ...*core.QARecord) ([]*core.QARecord, error)

	// Get retrieves a single record by id. Returns ErrNotFound if absent.
	Get(ctx context.Context, id core.ID) (*core.QARecord, error)

	// All returns the in-memory record set in id order.
	All(ctx context.Context) ([]*core.QARecord, error)

	// Count returns the number of records.
	Count(ctx context.Context) (int, error)

	// Close releases resources held by the store.
	Close() error
}

// SnapshotStore persists vector-index snapshots: a cache sufficient to
// reconstruct the index without re-embedding. Snapshots carry the embedding
// model version and an integrity fingerprint; a stale or damaged snapshot is
// discarded in favor of a rebuild, never trusted.
type SnapshotStore interface {
	// LoadSnapshot reads the persisted snapshot. Returns ErrSnapshotNotFound
	// if none has been saved.
	LoadSnapshot(ctx context.Context) (*core.IndexSnapshot, error)

	// SaveSnapshot replaces the persisted snapshot atomically.
	SaveSnapshot(ctx context.Context, snapshot *core.IndexSnapshot) error

	// Close releases resources held by the snapshot store.
	Close() error
}
