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


package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/veridia/answerit/ai"
	"github.com/veridia/answerit/core"
	"github.com/veridia/answerit/index"
	"github.com/veridia/answerit/storage"
)

const (
	// DefaultThreshold is the minimum cosine similarity for a confident
	// match. It is the sole knob trading precision against recall.
	DefaultThreshold = 0.70

	// DefaultTopK is how many candidates a search considers.
	DefaultTopK = 3
)

// fallbackAnswers invite the user to rephrase when no stored question is
// confidently similar to the query.
var fallbackAnswers = map[string]string{
	core.LanguageEnglish: "I apologize, but I don't have an answer to that question. Could you please rephrase or ask something else?",
	core.LanguageArabic:  "أعتذر، لكن ليس لدي إجابة على هذا السؤال. هل يمكنك إعادة صياغته أو طرح سؤال آخر؟",
}

// FallbackAnswer returns the fixed fallback response for a language,
// defaulting to English for unknown tags.
func FallbackAnswer(language string) string {
	if answer, ok := fallbackAnswers[language]; ok {
		return answer
	}
	return fallbackAnswers[core.LanguageEnglish]
}

// Engine answers free-form queries by nearest-neighbor search over the
// vector index. It only ever reads the index and the store; all mutation
// belongs to the training pipeline.
type Engine struct {
	store     storage.KnowledgeStore
	index     *index.Index
	embedder  ai.Embedder
	threshold float32
	topK      int
	logger    *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine) error

// WithThreshold sets the similarity threshold. A best candidate scoring at
// or above it is a confident match; strictly below falls back.
// Must be within the cosine range [-1, 1]. Default is DefaultThreshold.
func WithThreshold(threshold float32) Option {
	return func(e *Engine) error {
		if threshold < -1 || threshold > 1 {
			return fmt.Errorf("threshold %v outside cosine range [-1, 1]", threshold)
		}
		e.threshold = threshold
		return nil
	}
}

// WithTopK sets how many candidates each search considers.
// Default is DefaultTopK.
func WithTopK(k int) Option {
	return func(e *Engine) error {
		if k < 1 {
			return fmt.Errorf("topK must be at least 1, got %d", k)
		}
		e.topK = k
		return nil
	}
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// New creates a retrieval engine over the given store, index and embedder.
func New(store storage.KnowledgeStore, idx *index.Index, embedder ai.Embedder, opts ...Option) (*Engine, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if idx == nil {
		return nil, ErrIndexRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	e := &Engine{
		store:     store,
		index:     idx,
		embedder:  embedder,
		threshold: DefaultThreshold,
		topK:      DefaultTopK,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}

	return e, nil
}

// Threshold returns the configured similarity threshold.
func (e *Engine) Threshold() float32 {
	return e.threshold
}

// TopK returns the configured candidate count.
func (e *Engine) TopK() int {
	return e.topK
}

// Retrieve answers a single query.
//
// The query is embedded, the index searched for the topK nearest stored
// questions, and the best candidate accepted iff its cosine similarity is at
// or above the threshold. Below the threshold, or with an empty index, the
// result is the fixed fallback answer with Matched false, never an error,
// so an unmatched query stays a graceful interaction for the end user.
//
// The language hint never filters candidates: the embedding space is shared
// across languages and cross-language matches are legitimate. It only picks
// the fallback answer's language. A matched result carries the record's own
// language.
//
// Errors are reserved for infrastructure: invalid input, embedding failure
// (including ai.ErrTimeout) or a store/index inconsistency, which earlier
// startup checks make unreachable in normal operation.
func (e *Engine) Retrieve(ctx context.Context, query, languageHint string) (core.RetrievalResult, error) {
	if err := core.ValidateQuery(query); err != nil {
		return core.RetrievalResult{}, err
	}

	vector, err := e.embedder.EmbedText(ctx, query)
	if err != nil {
		e.logger.Error("error generating embedding for query", "err", err)
		return core.RetrievalResult{}, err
	}

	matches, err := e.index.Search(vector, e.topK)
	if err != nil {
		e.logger.Error("error searching index", "err", err)
		return core.RetrievalResult{}, err
	}

	if len(matches) == 0 {
		e.logger.Debug("index empty, returning fallback", "language", languageHint)
		return e.fallback(languageHint, 0), nil
	}

	best := matches[0]
	if best.Score < e.threshold {
		e.logger.Debug("best candidate below threshold",
			"score", best.Score, "threshold", e.threshold, "recordId", best.Id)
		return e.fallback(languageHint, best.Score), nil
	}

	record, err := e.store.Get(ctx, best.Id)
	if err != nil {
		// The index answered with an id the store doesn't know: the
		// store/index invariant is broken and needs a rebuild.
		e.logger.Error("index returned id missing from store", "recordId", best.Id, "err", err)
		return core.RetrievalResult{}, fmt.Errorf("store/index inconsistency: %w", err)
	}

	return core.RetrievalResult{
		Matched:    true,
		RecordId:   record.Id,
		Answer:     record.Answer,
		Confidence: best.Score,
		Language:   record.Language,
	}, nil
}

func (e *Engine) fallback(languageHint string, confidence float32) core.RetrievalResult {
	return core.RetrievalResult{
		Matched:    false,
		Answer:     FallbackAnswer(languageHint),
		Confidence: confidence,
		Language:   languageHint,
	}
}
