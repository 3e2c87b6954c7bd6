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


package training

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/veridia/answerit/ai"
	"github.com/veridia/answerit/core"
	"github.com/veridia/answerit/index"
	"github.com/veridia/answerit/storage"
)

const (
	// DefaultBatchSize is the number of questions embedded per call to the
	// embedding backend.
	DefaultBatchSize = 16

	// DefaultMaxRetries is the number of attempts for each embedding call.
	DefaultMaxRetries = 3

	// DefaultRetryBaseDelay is the initial backoff between embedding retries.
	DefaultRetryBaseDelay = 500 * time.Millisecond
)

// Outcome reports what happened to a single question-answer pair during
// training. Outcomes are returned in the same order the pairs were given.
type Outcome struct {
	Pair     core.QAPair
	Id       core.ID // assigned by the store when Accepted
	Accepted bool
	Err      error
}

// Pipeline validates, embeds and persists question-answer pairs.
// Train calls are serialized; embedding happens concurrently inside a call.
type Pipeline struct {
	store          storage.KnowledgeStore
	index          *index.Index
	embedder       ai.Embedder
	pool           *ants.Pool
	batchSize      int
	maxRetries     int
	retryBaseDelay time.Duration
	logger         *slog.Logger

	mu       sync.Mutex
	released bool
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent embedding.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.pool != nil {
			p.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithBatchSize sets how many questions are embedded per backend call.
func WithBatchSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			return fmt.Errorf("batch size must be greater than zero, got %d", size)
		}
		p.batchSize = size
		return nil
	}
}

// WithRetry configures retry behavior for embedding calls.
func WithRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(p *Pipeline) error {
		if maxAttempts <= 0 {
			return ErrInvalidMaxAttempts
		}
		p.maxRetries = maxAttempts
		p.retryBaseDelay = baseDelay
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new training pipeline.
func NewPipeline(store storage.KnowledgeStore, idx *index.Index, embedder ai.Embedder, opts ...Option) (*Pipeline, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if idx == nil {
		return nil, ErrIndexRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		store:          store,
		index:          idx,
		embedder:       embedder,
		pool:           pool,
		batchSize:      DefaultBatchSize,
		maxRetries:     DefaultMaxRetries,
		retryBaseDelay: DefaultRetryBaseDelay,
		logger:         slog.Default().With("component", "training"),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// Train ingests a batch of question-answer pairs. Each pair is validated,
// its question embedded, and the pair persisted and indexed. A failing pair
// is reported in its Outcome and never blocks the rest of the batch.
//
// Records reach the store before the index, so the index never holds an id
// the store cannot resolve, even if training is interrupted.
//
// Duplicates are accepted: training the same pair twice produces two records
// with distinct ids.
func (p *Pipeline) Train(ctx context.Context, pairs []core.QAPair) ([]Outcome, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.released {
		return nil, ErrPipelineReleased
	}

	outcomes := make([]Outcome, len(pairs))
	var valid []int
	for i, pair := range pairs {
		outcomes[i].Pair = pair
		if err := core.ValidateQAPair(&pair); err != nil {
			outcomes[i].Err = err
			continue
		}
		valid = append(valid, i)
	}

	vectors := make([][]float32, len(pairs))
	p.embedBatches(ctx, pairs, valid, outcomes, vectors)

	var accepted []int
	for _, i := range valid {
		if outcomes[i].Err == nil && vectors[i] != nil {
			accepted = append(accepted, i)
		}
	}
	if len(accepted) == 0 {
		p.logTrained(pairs, outcomes)
		return outcomes, nil
	}

	records := make([]*core.QARecord, len(accepted))
	for j, i := range accepted {
		pair := pairs[i]
		records[j] = &core.QARecord{
			Question: pair.Question,
			Answer:   pair.Answer,
			Language: pair.Language,
			Category: pair.Category,
			Vector:   vectors[i],
		}
	}

	added, err := p.store.Append(ctx, records...)
	if err != nil {
		p.logger.Error("error appending records to store", "count", len(records), "err", err)
		for _, i := range accepted {
			outcomes[i].Err = fmt.Errorf("persisting record: %w", err)
		}
		p.logTrained(pairs, outcomes)
		return outcomes, nil
	}

	for j, record := range added {
		i := accepted[j]
		if insertErr := p.index.Insert(record.Id, record.Vector); insertErr != nil {
			p.logger.Error("error inserting record into index", "recordId", record.Id, "err", insertErr)
			outcomes[i].Err = fmt.Errorf("indexing record %d: %w", record.Id, insertErr)
			continue
		}
		outcomes[i].Id = record.Id
		outcomes[i].Accepted = true
	}

	p.logTrained(pairs, outcomes)
	return outcomes, nil
}

// embedBatches fans batches of questions over the worker pool. Each batch
// writes only its own positions in outcomes and vectors, so no extra locking
// is needed.
func (p *Pipeline) embedBatches(ctx context.Context, pairs []core.QAPair, valid []int, outcomes []Outcome, vectors [][]float32) {
	var wg sync.WaitGroup
	for start := 0; start < len(valid); start += p.batchSize {
		end := start + p.batchSize
		if end > len(valid) {
			end = len(valid)
		}
		batch := valid[start:end]

		wg.Add(1)
		task := func() {
			defer wg.Done()
			p.embedBatch(ctx, pairs, batch, outcomes, vectors)
		}
		if err := p.pool.Submit(task); err != nil {
			// Pool unavailable, run inline rather than dropping the batch.
			task()
		}
	}
	wg.Wait()
}

func (p *Pipeline) embedBatch(ctx context.Context, pairs []core.QAPair, batch []int, outcomes []Outcome, vectors [][]float32) {
	texts := make([]string, len(batch))
	for j, i := range batch {
		texts[j] = pairs[i].Question
	}

	var embeddings [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var embedErr error
		embeddings, embedErr = p.embedder.EmbedTexts(ctx, texts)
		return embedErr
	}, p.maxRetries, p.retryBaseDelay)
	if err == nil && len(embeddings) != len(texts) {
		err = fmt.Errorf("%w: expected %d, got %d", ai.ErrBatchSizeMismatch, len(texts), len(embeddings))
	}
	if err != nil {
		p.logger.Error("error embedding batch", "size", len(batch), "err", err)
		for _, i := range batch {
			outcomes[i].Err = fmt.Errorf("embedding question: %w", err)
		}
		return
	}

	for j, i := range batch {
		vectors[i] = embeddings[j]
	}
}

func (p *Pipeline) logTrained(pairs []core.QAPair, outcomes []Outcome) {
	acceptedCount := 0
	for _, outcome := range outcomes {
		if outcome.Accepted {
			acceptedCount++
		}
	}
	p.logger.Info("training batch finished", "total", len(pairs), "accepted", acceptedCount, "rejected", len(pairs)-acceptedCount)
}

// Release releases the worker pool. The pipeline must not be used after
// calling Release.
func (p *Pipeline) Release() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.released {
		return
	}
	p.released = true
	if p.pool != nil {
		p.pool.Release()
	}
}
