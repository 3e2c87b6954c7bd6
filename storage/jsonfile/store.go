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


package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/veridia/answerit/core"
	"github.com/veridia/answerit/storage"
)

// qaPair is the wire form of one record in the knowledge-base file.
// Ids are preserved when the file carries them and assigned on load when it
// doesn't, so hand-edited files without ids stay valid.
type qaPair struct {
	Id       core.ID `json:"id,omitempty"`
	Question string  `json:"question"`
	Answer   string  `json:"answer"`
	Language string  `json:"language"`
	Category string  `json:"category"`
}

// qaDatabase is the top-level document: a single "qa_pairs" key holding an
// ordered sequence of records.
type qaDatabase struct {
	QAPairs []qaPair `json:"qa_pairs"`
}

// Store is a KnowledgeStore backed by a single JSON file. The full record
// set is kept in memory; every mutation persists the whole set by writing a
// temporary file and renaming it over the old one, so a crash mid-write
// never leaves an unreadable store.
type Store struct {
	mu      sync.RWMutex
	path    string
	records []*core.QARecord // id order
	byId    map[core.ID]*core.QARecord
	nextId  core.ID
	closed  bool
	logger  *slog.Logger
}

var _ storage.KnowledgeStore = (*Store)(nil)

// NewStore opens the knowledge-base file at path and loads it into memory.
// A missing file yields an empty store; an unreadable one fails with
// storage.ErrCorruptStore.
//
// Returns storage.KnowledgeStore interface to enforce abstraction.
func NewStore(path string) (storage.KnowledgeStore, error) {
	return newStore(path)
}

func newStore(path string) (*Store, error) {
	s := &Store{
		path:   path,
		byId:   make(map[core.ID]*core.QARecord),
		nextId: 1,
		logger: slog.Default().With("component", "jsonfile-store"),
	}
	if err := s.loadFile(); err != nil {
		return nil, err
	}
	return s, nil
}

// loadFile reads and validates the backing file into memory.
func (s *Store) loadFile() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Warn("knowledge base not found, starting empty", "path", s.path)
			return nil
		}
		return fmt.Errorf("reading %s: %w", s.path, err)
	}

	var db qaDatabase
	if err := json.Unmarshal(data, &db); err != nil {
		return fmt.Errorf("%w: %s: %w", storage.ErrCorruptStore, s.path, err)
	}

	records := make([]*core.QARecord, 0, len(db.QAPairs))
	byId := make(map[core.ID]*core.QARecord, len(db.QAPairs))
	var maxId core.ID

	// First pass keeps ids the file already carries.
	for _, pair := range db.QAPairs {
		p := core.QAPair{
			Question: pair.Question,
			Answer:   pair.Answer,
			Language: pair.Language,
			Category: pair.Category,
		}
		if err := core.ValidateQAPair(&p); err != nil {
			return fmt.Errorf("%w: %s: %w", storage.ErrCorruptStore, s.path, err)
		}
		if pair.Id != 0 {
			if _, dup := byId[pair.Id]; dup {
				return fmt.Errorf("%w: %s: duplicate id %d", storage.ErrCorruptStore, s.path, pair.Id)
			}
			if pair.Id > maxId {
				maxId = pair.Id
			}
		}
		record := &core.QARecord{
			Id:       pair.Id,
			Question: pair.Question,
			Answer:   pair.Answer,
			Language: pair.Language,
			Category: pair.Category,
		}
		records = append(records, record)
		if pair.Id != 0 {
			byId[pair.Id] = record
		}
	}

	// Second pass assigns ids to records the file didn't number.
	for _, record := range records {
		if record.Id == 0 {
			maxId++
			record.Id = maxId
			byId[record.Id] = record
		}
	}

	s.records = records
	s.byId = byId
	s.nextId = maxId + 1
	s.logger.Info("loaded knowledge base", "path", s.path, "records", len(records))
	return nil
}

// persistLocked writes the current record set to disk atomically.
// Callers must hold the write lock.
func (s *Store) persistLocked() error {
	db := qaDatabase{QAPairs: make([]qaPair, len(s.records))}
	for i, record := range s.records {
		db.QAPairs[i] = qaPair{
			Id:       record.Id,
			Question: record.Question,
			Answer:   record.Answer,
			Language: record.Language,
			Category: record.Category,
		}
	}

	data, err := json.MarshalIndent(&db, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %w", storage.ErrSerializationFailed, err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing %s: %w", s.path, err)
	}
	return nil
}

// Load returns all records from the store.
func (s *Store) Load(ctx context.Context) ([]*core.QARecord, error) {
	return s.All(ctx)
}

// All returns the in-memory record set in id order.
func (s *Store) All(_ context.Context) ([]*core.QARecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, storage.ErrStorageClosed
	}

	records := make([]*core.QARecord, len(s.records))
	copy(records, s.records)
	return records, nil
}

// Save replaces the full record set and persists it atomically.
// Records without ids get fresh ones assigned.
func (s *Store) Save(_ context.Context, records []*core.QARecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return storage.ErrStorageClosed
	}

	byId := make(map[core.ID]*core.QARecord, len(records))
	nextId := s.nextId
	for _, record := range records {
		pair := record.Pair()
		if err := core.ValidateQAPair(&pair); err != nil {
			return err
		}
		if record.Id == 0 {
			record.Id = nextId
			nextId++
		} else if record.Id >= nextId {
			nextId = record.Id + 1
		}
		if _, dup := byId[record.Id]; dup {
			return fmt.Errorf("duplicate id %d", record.Id)
		}
		byId[record.Id] = record
	}

	prevRecords, prevById, prevNextId := s.records, s.byId, s.nextId
	s.records = append([]*core.QARecord(nil), records...)
	s.byId = byId
	s.nextId = nextId

	if err := s.persistLocked(); err != nil {
		s.records, s.byId, s.nextId = prevRecords, prevById, prevNextId
		return err
	}
	return nil
}

// Append adds new records, assigns fresh ids and persists. On a persistence
// failure nothing is appended and the error propagates: training data is
// never silently lost.
func (s *Store) Append(_ context.Context, records ...*core.QARecord) ([]*core.QARecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, storage.ErrStorageClosed
	}

	for _, record := range records {
		pair := record.Pair()
		if err := core.ValidateQAPair(&pair); err != nil {
			return nil, err
		}
	}

	prevLen := len(s.records)
	prevNextId := s.nextId
	for _, record := range records {
		record.Id = s.nextId
		s.nextId++
		s.records = append(s.records, record)
		s.byId[record.Id] = record
	}

	if err := s.persistLocked(); err != nil {
		for _, record := range s.records[prevLen:] {
			delete(s.byId, record.Id)
			record.Id = 0
		}
		s.records = s.records[:prevLen]
		s.nextId = prevNextId
		return nil, err
	}

	return records, nil
}

// Get retrieves a single record by id.
func (s *Store) Get(_ context.Context, id core.ID) (*core.QARecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, storage.ErrStorageClosed
	}

	record, ok := s.byId[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", storage.ErrNotFound, id)
	}
	return record, nil
}

// Count returns the number of records.
func (s *Store) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, storage.ErrStorageClosed
	}
	return len(s.records), nil
}

// Close marks the store closed. Further operations fail with ErrStorageClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
