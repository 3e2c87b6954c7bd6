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


package index

import "errors"

var (
	// ErrDimensionMismatch indicates a vector whose length differs from the
	// index's established dimension. It usually means the embedding model
	// changed without an index rebuild; callers resolve it by rebuilding,
	// never by surfacing it to end users.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrNotFound indicates a removal of an id that is not in the index.
	// Recoverable and benign.
	ErrNotFound = errors.New("id not found in index")

	// ErrDuplicateId indicates an insertion with an id already present.
	// Ids are assigned fresh by the knowledge store, so a duplicate insert
	// is a caller bug rather than a data condition.
	ErrDuplicateId = errors.New("id already in index")

	// ErrEmptyVector indicates an attempt to insert a zero-length vector.
	ErrEmptyVector = errors.New("vector cannot be empty")
)
