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


// Package answerit is a semantic question-answer retrieval system. Train it
// with question-answer pairs, then ask free-form questions: the question is
// embedded, matched against trained questions by cosine similarity, and the
// best answer above a confidence threshold is returned. Below the threshold
// the caller gets a fixed fallback answer, never a wrong guess.
package answerit

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/veridia/answerit/ai"
	"github.com/veridia/answerit/ai/openai"
	"github.com/veridia/answerit/convlog"
	"github.com/veridia/answerit/core"
	"github.com/veridia/answerit/engine"
	"github.com/veridia/answerit/index"
	"github.com/veridia/answerit/storage"
	"github.com/veridia/answerit/storage/badgercache"
	"github.com/veridia/answerit/storage/jsonfile"
	"github.com/veridia/answerit/training"
)

// rebuildBatchSize is how many questions are embedded per call when the
// index must be rebuilt from the store at startup.
const rebuildBatchSize = 32

// KnowledgeBase ties the knowledge store, vector index, embedder, retrieval
// engine and training pipeline together behind a single handle.
type KnowledgeBase struct {
	store     storage.KnowledgeStore
	snapshots storage.SnapshotStore
	index     *index.Index
	embedder  ai.Embedder
	engine    *engine.Engine
	pipeline  *training.Pipeline
	history   *convlog.Log
	logger    *slog.Logger
}

// KnowledgeBaseOption configures a KnowledgeBase.
type KnowledgeBaseOption func(*knowledgeBaseOptions)

type knowledgeBaseOptions struct {
	aiConfig     *ai.Config
	embedder     ai.Embedder
	snapshots    storage.SnapshotStore
	engineOpts   []engine.Option
	trainingOpts []training.Option
	logger       *slog.Logger
}

// WithAIConfig sets the embedding backend configuration.
func WithAIConfig(config *ai.Config) KnowledgeBaseOption {
	return func(o *knowledgeBaseOptions) {
		o.aiConfig = config
	}
}

// WithEmbedder injects an embedder directly, bypassing the AI config.
func WithEmbedder(embedder ai.Embedder) KnowledgeBaseOption {
	return func(o *knowledgeBaseOptions) {
		o.embedder = embedder
	}
}

// WithSnapshotStore injects a snapshot store, bypassing the cache path.
func WithSnapshotStore(snapshots storage.SnapshotStore) KnowledgeBaseOption {
	return func(o *knowledgeBaseOptions) {
		o.snapshots = snapshots
	}
}

// WithThreshold sets the minimum cosine similarity for a match.
func WithThreshold(threshold float32) KnowledgeBaseOption {
	return func(o *knowledgeBaseOptions) {
		o.engineOpts = append(o.engineOpts, engine.WithThreshold(threshold))
	}
}

// WithTopK sets how many candidates each retrieval considers.
func WithTopK(k int) KnowledgeBaseOption {
	return func(o *knowledgeBaseOptions) {
		o.engineOpts = append(o.engineOpts, engine.WithTopK(k))
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) KnowledgeBaseOption {
	return func(o *knowledgeBaseOptions) {
		o.logger = logger
	}
}

// Open loads the knowledge store at storePath and the index snapshot cache
// at cachePath, verifies they agree, and returns a ready KnowledgeBase.
//
// The snapshot is only trusted when its model version matches the embedder,
// its id set matches the store and its fingerprint checks out. On any
// mismatch the index is rebuilt by re-embedding every stored question before
// Open returns, so a serving KnowledgeBase never answers from a stale index.
func Open(ctx context.Context, storePath, cachePath string, opts ...KnowledgeBaseOption) (*KnowledgeBase, error) {
	options := &knowledgeBaseOptions{}
	for _, opt := range opts {
		opt(options)
	}

	logger := options.logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "knowledgebase")

	embedder := options.embedder
	if embedder == nil {
		config := options.aiConfig
		if config == nil {
			config = ai.DefaultConfig()
		}
		var err error
		embedder, err = openai.NewEmbedder(config)
		if err != nil {
			return nil, err
		}
	}

	store, err := jsonfile.NewStore(storePath)
	if err != nil {
		return nil, err
	}

	snapshots := options.snapshots
	if snapshots == nil {
		snapshots, err = badgercache.Open(cachePath, false)
		if err != nil {
			store.Close()
			return nil, err
		}
	}

	kb := &KnowledgeBase{
		store:     store,
		snapshots: snapshots,
		index:     index.New(),
		embedder:  embedder,
		history:   convlog.New(),
		logger:    logger,
	}

	if err := kb.restoreIndex(ctx); err != nil {
		kb.closeStorage()
		return nil, err
	}

	kb.engine, err = engine.New(store, kb.index, embedder, append(options.engineOpts, engine.WithLogger(logger))...)
	if err != nil {
		kb.closeStorage()
		return nil, err
	}

	kb.pipeline, err = training.NewPipeline(store, kb.index, embedder, append(options.trainingOpts, training.WithLogger(logger))...)
	if err != nil {
		kb.closeStorage()
		return nil, err
	}

	return kb, nil
}

// restoreIndex fills the index from the snapshot cache when the snapshot is
// still valid for the current store and model, and rebuilds it otherwise.
func (kb *KnowledgeBase) restoreIndex(ctx context.Context) error {
	records, err := kb.store.All(ctx)
	if err != nil {
		return err
	}

	snapshot, err := kb.snapshots.LoadSnapshot(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrSnapshotNotFound) || errors.Is(err, storage.ErrSnapshotInvalid) {
			kb.logger.Info("no usable index snapshot, rebuilding", "reason", err)
			return kb.rebuildIndex(ctx, records)
		}
		return err
	}

	if reason := kb.snapshotMismatch(snapshot, records); reason != "" {
		kb.logger.Warn("index snapshot out of date, rebuilding", "reason", reason)
		return kb.rebuildIndex(ctx, records)
	}

	if err := kb.index.Rebuild(snapshot.Entries); err != nil {
		kb.logger.Warn("index snapshot rejected by index, rebuilding", "err", err)
		return kb.rebuildIndex(ctx, records)
	}

	kb.logger.Info("index restored from snapshot", "records", len(records), "model", snapshot.ModelVersion)
	return nil
}

// snapshotMismatch reports why a snapshot cannot serve the current store,
// or "" when it can.
func (kb *KnowledgeBase) snapshotMismatch(snapshot *core.IndexSnapshot, records []*core.QARecord) string {
	if snapshot.ModelVersion != kb.embedder.Model() {
		return fmt.Sprintf("model changed from %q to %q", snapshot.ModelVersion, kb.embedder.Model())
	}
	if len(snapshot.Entries) != len(records) {
		return fmt.Sprintf("snapshot has %d entries, store has %d records", len(snapshot.Entries), len(records))
	}

	ids := make(map[core.ID]bool, len(records))
	for _, record := range records {
		ids[record.Id] = true
	}
	for _, entry := range snapshot.Entries {
		if !ids[entry.Id] {
			return fmt.Sprintf("snapshot entry %d missing from store", entry.Id)
		}
	}

	storeIds := make([]core.ID, 0, len(records))
	for _, record := range records {
		storeIds = append(storeIds, record.Id)
	}
	expected := core.SnapshotFingerprint(snapshot.ModelVersion, snapshot.Dimension, storeIds)
	if !bytes.Equal(snapshot.Fingerprint, expected) {
		return "fingerprint mismatch"
	}
	return ""
}

// rebuildIndex re-embeds every stored question and replaces both the live
// index and the persisted snapshot.
func (kb *KnowledgeBase) rebuildIndex(ctx context.Context, records []*core.QARecord) error {
	entries := make([]core.IndexEntry, 0, len(records))

	for start := 0; start < len(records); start += rebuildBatchSize {
		end := start + rebuildBatchSize
		if end > len(records) {
			end = len(records)
		}
		batch := records[start:end]

		texts := make([]string, len(batch))
		for i, record := range batch {
			texts[i] = record.Question
		}

		vectors, err := kb.embedder.EmbedTexts(ctx, texts)
		if err != nil {
			return fmt.Errorf("rebuilding index: %w", err)
		}
		if len(vectors) != len(batch) {
			return fmt.Errorf("rebuilding index: %w: expected %d, got %d", ai.ErrBatchSizeMismatch, len(batch), len(vectors))
		}

		for i, record := range batch {
			record.Vector = vectors[i]
			entries = append(entries, core.IndexEntry{Id: record.Id, Vector: vectors[i]})
		}
	}

	if err := kb.index.Rebuild(entries); err != nil {
		return fmt.Errorf("rebuilding index: %w", err)
	}

	if err := kb.saveSnapshot(ctx); err != nil {
		return err
	}

	kb.logger.Info("index rebuilt from store", "records", len(records), "model", kb.embedder.Model())
	return nil
}

func (kb *KnowledgeBase) saveSnapshot(ctx context.Context) error {
	entries := kb.index.Entries()
	ids := make([]core.ID, len(entries))
	for i, entry := range entries {
		ids[i] = entry.Id
	}

	snapshot := &core.IndexSnapshot{
		Dimension:    kb.index.Dimension(),
		ModelVersion: kb.embedder.Model(),
		Fingerprint:  core.SnapshotFingerprint(kb.embedder.Model(), kb.index.Dimension(), ids),
		Entries:      entries,
	}
	if err := kb.snapshots.SaveSnapshot(ctx, snapshot); err != nil {
		return fmt.Errorf("saving index snapshot: %w", err)
	}
	return nil
}

// Ask retrieves the best answer for a question. The language hint selects
// the fallback answer's language and is recorded with the turn; it never
// restricts which records can match. Every completed retrieval, matched or
// not, is appended to the conversation history.
func (kb *KnowledgeBase) Ask(ctx context.Context, question, languageHint string) (core.RetrievalResult, error) {
	result, err := kb.engine.Retrieve(ctx, question, languageHint)
	if err != nil {
		return core.RetrievalResult{}, err
	}
	kb.history.Record(question, languageHint, result)
	return result, nil
}

// Train ingests question-answer pairs and persists the updated index
// snapshot. Per-pair failures are reported in the outcomes; the snapshot is
// refreshed whenever at least one pair was accepted.
func (kb *KnowledgeBase) Train(ctx context.Context, pairs []core.QAPair) ([]training.Outcome, error) {
	outcomes, err := kb.pipeline.Train(ctx, pairs)
	if err != nil {
		return nil, err
	}

	accepted := 0
	for _, outcome := range outcomes {
		if outcome.Accepted {
			accepted++
		}
	}
	if accepted > 0 {
		if err := kb.saveSnapshot(ctx); err != nil {
			// Records are durable; the snapshot is only a cache, and the
			// mismatch forces a rebuild on next open.
			kb.logger.Error("error saving index snapshot after training", "err", err)
		}
	}
	return outcomes, nil
}

// RebuildIndex forces a full re-embedding of the store, replacing the live
// index and the persisted snapshot.
func (kb *KnowledgeBase) RebuildIndex(ctx context.Context) error {
	records, err := kb.store.All(ctx)
	if err != nil {
		return err
	}
	return kb.rebuildIndex(ctx, records)
}

// History returns the conversation log.
func (kb *KnowledgeBase) History() *convlog.Log {
	return kb.history
}

// Store returns the knowledge store.
func (kb *KnowledgeBase) Store() storage.KnowledgeStore {
	return kb.store
}

// Count returns the number of trained records.
func (kb *KnowledgeBase) Count(ctx context.Context) (int, error) {
	return kb.store.Count(ctx)
}

// Threshold returns the engine's match threshold.
func (kb *KnowledgeBase) Threshold() float32 {
	return kb.engine.Threshold()
}

// Close releases the pipeline, snapshot cache and store.
func (kb *KnowledgeBase) Close() error {
	if kb.pipeline != nil {
		kb.pipeline.Release()
	}
	return kb.closeStorage()
}

func (kb *KnowledgeBase) closeStorage() error {
	var firstErr error
	if err := kb.snapshots.Close(); err != nil {
		kb.logger.Error("error closing snapshot cache", "err", err)
		firstErr = err
	}
	if err := kb.store.Close(); err != nil {
		kb.logger.Error("error closing knowledge store", "err", err)
		if firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
