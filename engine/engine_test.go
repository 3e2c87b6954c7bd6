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
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veridia/answerit/ai"
	"github.com/veridia/answerit/ai/mock"
	"github.com/veridia/answerit/core"
	"github.com/veridia/answerit/index"
	"github.com/veridia/answerit/storage"
	"github.com/veridia/answerit/storage/jsonfile"
)

// phraseEmbedder returns a mock embedder that maps known phrases to fixed
// vectors, so tests control similarity geometry exactly.
func phraseEmbedder(phrases map[string][]float32) *mock.Embedder {
	embedder := mock.NewEmbedder()
	lookup := func(text string) ([]float32, error) {
		if vector, ok := phrases[text]; ok {
			return vector, nil
		}
		return nil, fmt.Errorf("no vector defined for %q", text)
	}
	embedder.EmbedTextFunc = func(_ context.Context, text string) ([]float32, error) {
		return lookup(text)
	}
	embedder.EmbedTextsFunc = func(_ context.Context, texts []string) ([][]float32, error) {
		vectors := make([][]float32, len(texts))
		for i, text := range texts {
			vector, err := lookup(text)
			if err != nil {
				return nil, err
			}
			vectors[i] = vector
		}
		return vectors, nil
	}
	return embedder
}

// newEngineWith builds a store and index preloaded with records, using the
// phrase vectors as question embeddings.
func newEngineWith(t *testing.T, phrases map[string][]float32, records []*core.QARecord, opts ...Option) *Engine {
	t.Helper()
	ctx := context.Background()

	store, err := jsonStore(t)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	idx := index.New()
	if len(records) > 0 {
		added, err := store.Append(ctx, records...)
		require.NoError(t, err)
		for _, record := range added {
			vector, ok := phrases[record.Question]
			require.True(t, ok, "no phrase vector for %q", record.Question)
			require.NoError(t, idx.Insert(record.Id, vector))
		}
	}

	eng, err := New(store, idx, phraseEmbedder(phrases), opts...)
	require.NoError(t, err)
	return eng
}

func jsonStore(t *testing.T) (storage.KnowledgeStore, error) {
	t.Helper()
	return jsonfile.NewStore(filepath.Join(t.TempDir(), "qa.json"))
}

func TestRetrieve_RefundScenario(t *testing.T) {
	phrases := map[string][]float32{
		"What is your refund policy?":   {1, 0, 0},
		"How do I get my money back?":   {0.9, 0.44, 0},
		"What is the meaning of life?":  {0, 0, 1},
		"ما هي سياسة الاسترداد لديكم؟":  {0.97, 0.24, 0},
	}
	eng := newEngineWith(t, phrases, []*core.QARecord{
		{
			Question: "What is your refund policy?",
			Answer:   "We refund within 30 days.",
			Language: core.LanguageEnglish,
			Category: "post_sales",
		},
	})

	result, err := eng.Retrieve(context.Background(), "How do I get my money back?", core.LanguageEnglish)
	require.NoError(t, err)

	assert.True(t, result.Matched)
	assert.Equal(t, "We refund within 30 days.", result.Answer)
	assert.Equal(t, core.LanguageEnglish, result.Language)
	assert.GreaterOrEqual(t, result.Confidence, eng.Threshold())
	assert.NotZero(t, result.RecordId)
}

func TestRetrieve_UnrelatedQueryFallsBack(t *testing.T) {
	phrases := map[string][]float32{
		"What is your refund policy?":  {1, 0, 0},
		"What is the meaning of life?": {0, 0, 1},
	}
	eng := newEngineWith(t, phrases, []*core.QARecord{
		{
			Question: "What is your refund policy?",
			Answer:   "We refund within 30 days.",
			Language: core.LanguageEnglish,
			Category: "post_sales",
		},
	})

	result, err := eng.Retrieve(context.Background(), "What is the meaning of life?", core.LanguageEnglish)
	require.NoError(t, err)

	assert.False(t, result.Matched)
	assert.Equal(t, FallbackAnswer(core.LanguageEnglish), result.Answer)
	assert.Less(t, result.Confidence, eng.Threshold())
	assert.Zero(t, result.RecordId)
}

func TestRetrieve_ExactQuestionMatches(t *testing.T) {
	phrases := map[string][]float32{
		"What are your hours?": {0.2, 0.5, -0.3},
	}
	eng := newEngineWith(t, phrases, []*core.QARecord{
		{
			Question: "What are your hours?",
			Answer:   "We are open 9 to 5.",
			Language: core.LanguageEnglish,
			Category: "general",
		},
	})

	result, err := eng.Retrieve(context.Background(), "What are your hours?", core.LanguageEnglish)
	require.NoError(t, err)

	assert.True(t, result.Matched)
	assert.Equal(t, "We are open 9 to 5.", result.Answer)
	assert.InDelta(t, 1.0, float64(result.Confidence), 1e-5)
}

func TestRetrieve_ThresholdBoundary(t *testing.T) {
	phrases := map[string][]float32{
		"What is your refund policy?": {1, 0},
		"near miss":                   {0.8, 0.6},
	}
	records := []*core.QARecord{
		{
			Question: "What is your refund policy?",
			Answer:   "We refund within 30 days.",
			Language: core.LanguageEnglish,
			Category: "post_sales",
		},
	}

	// Measure the actual score the index reports for this query, then pin
	// the threshold exactly on it and one ulp above it.
	probe := newEngineWith(t, phrases, records)
	result, err := probe.Retrieve(context.Background(), "near miss", core.LanguageEnglish)
	require.NoError(t, err)
	score := result.Confidence

	atThreshold := newEngineWith(t, phrases, records, WithThreshold(score))
	result, err = atThreshold.Retrieve(context.Background(), "near miss", core.LanguageEnglish)
	require.NoError(t, err)
	assert.True(t, result.Matched, "score exactly at threshold must match")
	assert.Equal(t, score, result.Confidence)

	justAbove := math.Nextafter32(score, 2)
	aboveThreshold := newEngineWith(t, phrases, records, WithThreshold(justAbove))
	result, err = aboveThreshold.Retrieve(context.Background(), "near miss", core.LanguageEnglish)
	require.NoError(t, err)
	assert.False(t, result.Matched, "score below threshold must not match")
}

func TestRetrieve_EmptyIndexFallsBack(t *testing.T) {
	eng := newEngineWith(t, map[string][]float32{"anything?": {1, 0}}, nil)

	result, err := eng.Retrieve(context.Background(), "anything?", core.LanguageArabic)
	require.NoError(t, err)

	assert.False(t, result.Matched)
	assert.Equal(t, FallbackAnswer(core.LanguageArabic), result.Answer)
	assert.Equal(t, core.LanguageArabic, result.Language)
	assert.Zero(t, result.Confidence)
}

func TestRetrieve_CrossLanguageMatchKeepsRecordLanguage(t *testing.T) {
	phrases := map[string][]float32{
		"What is your refund policy?":  {1, 0, 0},
		"ما هي سياسة الاسترداد لديكم؟": {0.97, 0.24, 0},
	}
	eng := newEngineWith(t, phrases, []*core.QARecord{
		{
			Question: "What is your refund policy?",
			Answer:   "We refund within 30 days.",
			Language: core.LanguageEnglish,
			Category: "post_sales",
		},
	})

	// Arabic query, English record: the hint never filters candidates.
	result, err := eng.Retrieve(context.Background(), "ما هي سياسة الاسترداد لديكم؟", core.LanguageArabic)
	require.NoError(t, err)

	assert.True(t, result.Matched)
	assert.Equal(t, core.LanguageEnglish, result.Language)
}

func TestRetrieve_EmptyQueryRejected(t *testing.T) {
	eng := newEngineWith(t, map[string][]float32{}, nil)

	for _, query := range []string{"", "   "} {
		_, err := eng.Retrieve(context.Background(), query, core.LanguageEnglish)
		assert.ErrorIs(t, err, core.ErrInvalidInput)
		assert.ErrorIs(t, err, core.ErrEmptyQuery)
	}
}

func TestRetrieve_TimeoutPropagates(t *testing.T) {
	embedder := mock.NewEmbedder()
	embedder.EmbedTextFunc = func(context.Context, string) ([]float32, error) {
		return nil, fmt.Errorf("%w: deadline exceeded", ai.ErrTimeout)
	}

	store, err := jsonStore(t)
	require.NoError(t, err)
	defer store.Close()

	eng, err := New(store, index.New(), embedder)
	require.NoError(t, err)

	// A timeout is an error, never a silent fallback: the caller must be
	// able to tell "no answer" from "could not attempt".
	_, err = eng.Retrieve(context.Background(), "a question?", core.LanguageEnglish)
	assert.ErrorIs(t, err, ai.ErrTimeout)
}

func TestRetrieve_UnknownHintGetsEnglishFallback(t *testing.T) {
	eng := newEngineWith(t, map[string][]float32{"anything?": {1, 0}}, nil)

	result, err := eng.Retrieve(context.Background(), "anything?", "de")
	require.NoError(t, err)

	assert.False(t, result.Matched)
	assert.Equal(t, FallbackAnswer(core.LanguageEnglish), result.Answer)
	assert.Equal(t, "de", result.Language)
}

func TestRetrieve_InconsistentIndexIsAnError(t *testing.T) {
	store, err := jsonStore(t)
	require.NoError(t, err)
	defer store.Close()

	idx := index.New()
	require.NoError(t, idx.Insert(99, []float32{1, 0}))

	embedder := mock.NewEmbedder()
	embedder.EmbedTextFunc = func(context.Context, string) ([]float32, error) {
		return []float32{1, 0}, nil
	}

	eng, err := New(store, idx, embedder)
	require.NoError(t, err)

	_, err = eng.Retrieve(context.Background(), "a question?", core.LanguageEnglish)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestNew_Validation(t *testing.T) {
	store, err := jsonStore(t)
	require.NoError(t, err)
	defer store.Close()
	idx := index.New()
	embedder := mock.NewEmbedder()

	_, err = New(nil, idx, embedder)
	assert.ErrorIs(t, err, ErrStoreRequired)
	_, err = New(store, nil, embedder)
	assert.ErrorIs(t, err, ErrIndexRequired)
	_, err = New(store, idx, nil)
	assert.ErrorIs(t, err, ErrEmbedderRequired)

	_, err = New(store, idx, embedder, WithThreshold(1.5))
	assert.Error(t, err)
	_, err = New(store, idx, embedder, WithTopK(0))
	assert.Error(t, err)
}
