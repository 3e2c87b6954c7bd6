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


// Package convlog keeps the in-memory conversation history: one turn per
// query, appended by the caller-facing layer, never persisted. Retrieval
// does not consult it; it exists for post-hoc analytics.
package convlog

import (
	"sync"
	"time"

	"github.com/veridia/answerit/core"
)

// Log is an append-only, unbounded, in-memory sequence of conversation
// turns. Its lifecycle ends with the process. Safe for concurrent use.
type Log struct {
	mu    sync.RWMutex
	turns []core.ConversationTurn
}

// New creates an empty conversation log.
func New() *Log {
	return &Log{}
}

// Record appends a turn for the given query and result, stamped with the
// current time, and returns the stored turn.
func (l *Log) Record(query, language string, result core.RetrievalResult) core.ConversationTurn {
	turn := core.ConversationTurn{
		Timestamp: time.Now().UTC(),
		Query:     query,
		Language:  language,
		Result:    result,
	}

	l.mu.Lock()
	l.turns = append(l.turns, turn)
	l.mu.Unlock()

	return turn
}

// Len returns the number of recorded turns.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.turns)
}

// All returns a copy of every turn in append order.
func (l *Log) All() []core.ConversationTurn {
	l.mu.RLock()
	defer l.mu.RUnlock()

	turns := make([]core.ConversationTurn, len(l.turns))
	copy(turns, l.turns)
	return turns
}

// Recent returns a copy of the most recent n turns in append order.
// Returns fewer when the log is shorter.
func (l *Log) Recent(n int) []core.ConversationTurn {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if n > len(l.turns) {
		n = len(l.turns)
	}
	if n <= 0 {
		return []core.ConversationTurn{}
	}

	turns := make([]core.ConversationTurn, n)
	copy(turns, l.turns[len(l.turns)-n:])
	return turns
}
