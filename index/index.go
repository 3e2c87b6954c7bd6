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

import (
	"fmt"
	"sort"
	"sync"

	"github.com/veridia/answerit/core"
)

// Match is one search hit: a record id and its cosine similarity to the query.
type Match struct {
	Id    core.ID
	Score float32
}

// Index is an in-memory vector index over (id, embedding) entries.
//
// Search is an exact brute-force scan, which for corpora of tens to low
// thousands of records is both fast enough and simpler to reason about than
// an approximate structure.
//
// Vectors are normalized to unit length on insertion and queries are
// normalized on search, so the similarity reported everywhere is cosine
// similarity, in [-1, 1] ("higher is better"). All entries in a live index
// share one dimension and one embedding model version; the first insertion
// after creation or rebuild establishes the dimension.
//
// Safe for concurrent use: any number of readers, writers exclusive.
type Index struct {
	mu        sync.RWMutex
	dimension int
	entries   []core.IndexEntry // insertion order, vectors unit-length
	positions map[core.ID]int
}

// New creates an empty index. Its dimension is established by the first
// insertion.
func New() *Index {
	return &Index{
		positions: make(map[core.ID]int),
	}
}

// Dimension returns the established vector dimension, or 0 for an empty index.
func (x *Index) Dimension() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.dimension
}

// Len returns the number of entries.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.entries)
}

// Ids returns the ids of all entries in insertion order.
func (x *Index) Ids() []core.ID {
	x.mu.RLock()
	defer x.mu.RUnlock()

	ids := make([]core.ID, len(x.entries))
	for i, entry := range x.entries {
		ids[i] = entry.Id
	}
	return ids
}

// Entries returns a copy of all entries in insertion order, with the stored
// unit-length vectors. Used to persist snapshots.
func (x *Index) Entries() []core.IndexEntry {
	x.mu.RLock()
	defer x.mu.RUnlock()

	entries := make([]core.IndexEntry, len(x.entries))
	for i, entry := range x.entries {
		vector := make([]float32, len(entry.Vector))
		copy(vector, entry.Vector)
		entries[i] = core.IndexEntry{Id: entry.Id, Vector: vector}
	}
	return entries
}

// Insert adds an (id, vector) entry. The first insertion establishes the
// index dimension; later vectors of a different length fail with
// ErrDimensionMismatch. Inserting an id that is already present fails with
// ErrDuplicateId.
func (x *Index) Insert(id core.ID, vector []float32) error {
	if len(vector) == 0 {
		return ErrEmptyVector
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	if x.dimension == 0 {
		x.dimension = len(vector)
	} else if len(vector) != x.dimension {
		return fmt.Errorf("%w: got %d, index has %d", ErrDimensionMismatch, len(vector), x.dimension)
	}

	if _, exists := x.positions[id]; exists {
		return fmt.Errorf("%w: %d", ErrDuplicateId, id)
	}

	x.positions[id] = len(x.entries)
	x.entries = append(x.entries, core.IndexEntry{Id: id, Vector: Normalize(vector)})
	return nil
}

// Remove deletes the entry with the given id. Fails with ErrNotFound if the
// id is absent. The training flow never issues removals, but the operation
// keeps the index usable for corrective maintenance.
func (x *Index) Remove(id core.ID) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	pos, exists := x.positions[id]
	if !exists {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}

	x.entries = append(x.entries[:pos], x.entries[pos+1:]...)
	delete(x.positions, id)
	for i := pos; i < len(x.entries); i++ {
		x.positions[x.entries[i].Id] = i
	}

	if len(x.entries) == 0 {
		x.dimension = 0
	}
	return nil
}

// Search returns up to k matches ordered by descending cosine similarity,
// ties broken by insertion order (earliest inserted wins). An empty index
// yields an empty result, not an error. A query of the wrong dimension fails
// with ErrDimensionMismatch.
func (x *Index) Search(query []float32, k int) ([]Match, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d", k)
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	if len(x.entries) == 0 {
		return []Match{}, nil
	}
	if len(query) != x.dimension {
		return nil, fmt.Errorf("%w: query has %d, index has %d", ErrDimensionMismatch, len(query), x.dimension)
	}

	unit := Normalize(query)

	matches := make([]Match, len(x.entries))
	for i, entry := range x.entries {
		matches[i] = Match{Id: entry.Id, Score: Dot(unit, entry.Vector)}
	}

	// Stable sort keeps insertion order among equal scores.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

// Rebuild replaces the entire index content atomically: concurrent searches
// observe either the old content or the new, never a partial state. All new
// entries must share one dimension; on any validation error the old content
// is left untouched. An empty entries slice resets the index.
func (x *Index) Rebuild(entries []core.IndexEntry) error {
	// Validate and stage off-lock so searches keep running during the build.
	var dimension int
	staged := make([]core.IndexEntry, len(entries))
	positions := make(map[core.ID]int, len(entries))

	for i, entry := range entries {
		if len(entry.Vector) == 0 {
			return fmt.Errorf("%w: id %d", ErrEmptyVector, entry.Id)
		}
		if dimension == 0 {
			dimension = len(entry.Vector)
		} else if len(entry.Vector) != dimension {
			return fmt.Errorf("%w: id %d has %d, expected %d",
				ErrDimensionMismatch, entry.Id, len(entry.Vector), dimension)
		}
		if _, exists := positions[entry.Id]; exists {
			return fmt.Errorf("%w: %d", ErrDuplicateId, entry.Id)
		}
		positions[entry.Id] = i
		staged[i] = core.IndexEntry{Id: entry.Id, Vector: Normalize(entry.Vector)}
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	x.dimension = dimension
	x.entries = staged
	x.positions = positions
	return nil
}
