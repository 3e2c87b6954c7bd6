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

import "errors"

var (
	// ErrCorruptStore indicates persisted knowledge data is unreadable.
	// Fatal to the operation and surfaced to the operator; stores must never
	// auto-delete or silently reset user data to recover from it.
	ErrCorruptStore = errors.New("knowledge store is corrupt")

	// ErrNotFound indicates the requested record was not found.
	ErrNotFound = errors.New("record not found")

	// ErrSnapshotNotFound indicates no index snapshot has been persisted yet.
	// Benign: the caller rebuilds the index from the store.
	ErrSnapshotNotFound = errors.New("index snapshot not found")

	// ErrSnapshotInvalid indicates a persisted snapshot failed its integrity
	// checks (fingerprint or entry count). The snapshot is a cache, so the
	// caller recovers by rebuilding from the knowledge store.
	ErrSnapshotInvalid = errors.New("index snapshot invalid")

	// ErrSerializationFailed indicates a serialization/deserialization failure.
	ErrSerializationFailed = errors.New("serialization failed")

	// ErrStorageClosed indicates that the storage backend is closed.
	ErrStorageClosed = errors.New("storage is closed")
)
