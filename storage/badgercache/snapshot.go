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


package badgercache

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"
	"os"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/veridia/answerit/core"
	"github.com/veridia/answerit/storage"
)

const (
	snapshotMetaKey     = "vecsnap:meta"
	snapshotEntryPrefix = "vecsnap:ent:"
)

// makeEntryKey generates the key for one snapshot entry. Ids are written in
// BigEndian order so lexicographic iteration returns entries in ascending id
// order, which equals insertion order because the store assigns ids
// monotonically.
func makeEntryKey(id core.ID) []byte {
	prefix := []byte(snapshotEntryPrefix)
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// Cache persists vector-index snapshots in a BadgerDB database. A snapshot
// is written in a single transaction: the previous snapshot is dropped and
// the new meta and entries installed together, so readers never observe a
// half-replaced snapshot.
type Cache struct {
	db     *badger.DB
	logger *slog.Logger
}

var _ storage.SnapshotStore = (*Cache)(nil)

// badgerLoggerAdapter adapts slog.Logger to badger.Logger interface.
type badgerLoggerAdapter struct {
	logger *slog.Logger
}

var _ badger.Logger = (*badgerLoggerAdapter)(nil)

func (bl *badgerLoggerAdapter) Errorf(msg string, items ...any) {
	bl.logger.Error(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Warningf(msg string, items ...any) {
	bl.logger.Warn(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Infof(msg string, items ...any) {
	bl.logger.Info(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Debugf(msg string, items ...any) {
	bl.logger.Debug(fmt.Sprintf(msg, items...))
}

// Open opens (or creates) a snapshot cache at the given directory. With
// inMemory set, the cache lives only as long as the process; used in tests.
//
// Returns storage.SnapshotStore interface to enforce abstraction.
func Open(dirPath string, inMemory bool) (storage.SnapshotStore, error) {
	return open(dirPath, inMemory)
}

func open(dirPath string, inMemory bool) (*Cache, error) {
	var opts badger.Options

	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		info, err := os.Stat(dirPath)
		if err != nil {
			if os.IsNotExist(err) {
				if err := os.MkdirAll(dirPath, 0755); err != nil {
					return nil, err
				}
				info, err = os.Stat(dirPath)
				if err != nil {
					return nil, err
				}
			} else {
				return nil, err
			}
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%s is not a directory", dirPath)
		}
		opts = badger.DefaultOptions(dirPath)
	}

	opts.Logger = &badgerLoggerAdapter{logger: slog.Default()}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &Cache{
		db:     db,
		logger: slog.Default().With("component", "snapshot-cache"),
	}, nil
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// SaveSnapshot replaces the persisted snapshot atomically.
func (c *Cache) SaveSnapshot(_ context.Context, snapshot *core.IndexSnapshot) error {
	if c.db.IsClosed() {
		return storage.ErrStorageClosed
	}

	meta := storage.SnapshotMeta{
		Dimension:    snapshot.Dimension,
		ModelVersion: snapshot.ModelVersion,
		Fingerprint:  snapshot.Fingerprint,
		Count:        len(snapshot.Entries),
	}

	err := c.db.Update(func(tx *badger.Txn) error {
		// Drop the previous snapshot's entries first; ids no longer present
		// must not survive the replace.
		it := tx.NewIterator(badger.IteratorOptions{Prefix: []byte(snapshotEntryPrefix)})
		var stale [][]byte
		for it.Rewind(); it.Valid(); it.Next() {
			stale = append(stale, it.Item().KeyCopy(nil))
		}
		it.Close()
		for _, key := range stale {
			if err := tx.Delete(key); err != nil {
				return err
			}
		}

		if err := tx.Set([]byte(snapshotMetaKey), storage.MarshalSnapshotMeta(meta)); err != nil {
			return err
		}
		for _, entry := range snapshot.Entries {
			if err := tx.Set(makeEntryKey(entry.Id), storage.MarshalIndexEntry(entry)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	c.logger.Debug("saved index snapshot",
		"entries", len(snapshot.Entries),
		"dimension", snapshot.Dimension,
		"model", snapshot.ModelVersion)
	return nil
}

// LoadSnapshot reads the persisted snapshot and verifies its integrity.
// Returns storage.ErrSnapshotNotFound when nothing has been saved yet and
// storage.ErrSnapshotInvalid when the stored data fails verification.
func (c *Cache) LoadSnapshot(_ context.Context) (*core.IndexSnapshot, error) {
	if c.db.IsClosed() {
		return nil, storage.ErrStorageClosed
	}

	var snapshot *core.IndexSnapshot

	err := c.db.View(func(tx *badger.Txn) error {
		item, err := tx.Get([]byte(snapshotMetaKey))
		if err == badger.ErrKeyNotFound {
			return storage.ErrSnapshotNotFound
		}
		if err != nil {
			return err
		}

		var meta storage.SnapshotMeta
		err = item.Value(func(val []byte) error {
			var err error
			meta, err = storage.UnmarshalSnapshotMeta(val)
			return err
		})
		if err != nil {
			return fmt.Errorf("%w: meta: %w", storage.ErrSnapshotInvalid, err)
		}

		entries := make([]core.IndexEntry, 0, meta.Count)
		it := tx.NewIterator(badger.IteratorOptions{Prefix: []byte(snapshotEntryPrefix)})
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			var entry core.IndexEntry
			err := it.Item().Value(func(val []byte) error {
				var err error
				entry, err = storage.UnmarshalIndexEntry(val)
				return err
			})
			if err != nil {
				return fmt.Errorf("%w: entry: %w", storage.ErrSnapshotInvalid, err)
			}
			entries = append(entries, entry)
		}

		if len(entries) != meta.Count {
			return fmt.Errorf("%w: expected %d entries, found %d",
				storage.ErrSnapshotInvalid, meta.Count, len(entries))
		}

		ids := make([]core.ID, len(entries))
		for i, entry := range entries {
			ids[i] = entry.Id
		}
		fingerprint := core.SnapshotFingerprint(meta.ModelVersion, meta.Dimension, ids)
		if !bytes.Equal(fingerprint, meta.Fingerprint) {
			return fmt.Errorf("%w: fingerprint mismatch", storage.ErrSnapshotInvalid)
		}

		snapshot = &core.IndexSnapshot{
			Dimension:    meta.Dimension,
			ModelVersion: meta.ModelVersion,
			Fingerprint:  meta.Fingerprint,
			Entries:      entries,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return snapshot, nil
}
