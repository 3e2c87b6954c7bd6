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


package answerit

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veridia/answerit/ai/mock"
	"github.com/veridia/answerit/core"
	"github.com/veridia/answerit/engine"
	"github.com/veridia/answerit/storage"
)

func testPaths(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	return filepath.Join(dir, "qa.json"), filepath.Join(dir, "cache")
}

func openTestBase(t *testing.T, storePath, cachePath string, embedder *mock.Embedder) *KnowledgeBase {
	t.Helper()
	kb, err := Open(context.Background(), storePath, cachePath, WithEmbedder(embedder))
	require.NoError(t, err)
	return kb
}

func TestKnowledgeBase_TrainThenAsk(t *testing.T) {
	storePath, cachePath := testPaths(t)
	ctx := context.Background()

	kb := openTestBase(t, storePath, cachePath, mock.NewEmbedder())
	defer kb.Close()

	outcomes, err := kb.Train(ctx, []core.QAPair{
		{Question: "What is your refund policy?", Answer: "We refund within 30 days.", Language: core.LanguageEnglish, Category: "post_sales"},
		{Question: "What are your hours?", Answer: "We are open 9 to 5.", Language: core.LanguageEnglish, Category: "general"},
	})
	require.NoError(t, err)
	require.Len(t, outcomes, 2)
	for _, outcome := range outcomes {
		require.True(t, outcome.Accepted)
	}

	// Identical question text embeds to the identical vector, a guaranteed
	// match at any threshold.
	result, err := kb.Ask(ctx, "What is your refund policy?", core.LanguageEnglish)
	require.NoError(t, err)
	assert.True(t, result.Matched)
	assert.Equal(t, "We refund within 30 days.", result.Answer)
	assert.Equal(t, outcomes[0].Id, result.RecordId)

	count, err := kb.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestKnowledgeBase_EmptyBaseFallsBack(t *testing.T) {
	storePath, cachePath := testPaths(t)
	ctx := context.Background()

	kb := openTestBase(t, storePath, cachePath, mock.NewEmbedder())
	defer kb.Close()

	result, err := kb.Ask(ctx, "Anyone home?", core.LanguageArabic)
	require.NoError(t, err)
	assert.False(t, result.Matched)
	assert.Equal(t, engine.FallbackAnswer(core.LanguageArabic), result.Answer)
}

func TestKnowledgeBase_AskRecordsHistory(t *testing.T) {
	storePath, cachePath := testPaths(t)
	ctx := context.Background()

	kb := openTestBase(t, storePath, cachePath, mock.NewEmbedder())
	defer kb.Close()

	_, err := kb.Ask(ctx, "First question?", core.LanguageEnglish)
	require.NoError(t, err)
	_, err = kb.Ask(ctx, "Second question?", core.LanguageEnglish)
	require.NoError(t, err)

	// Failed retrievals are not turns.
	_, err = kb.Ask(ctx, "   ", core.LanguageEnglish)
	require.ErrorIs(t, err, core.ErrInvalidInput)

	turns := kb.History().All()
	require.Len(t, turns, 2)
	assert.Equal(t, "First question?", turns[0].Query)
	assert.Equal(t, "Second question?", turns[1].Query)
}

func TestKnowledgeBase_ReopenServesFromSnapshot(t *testing.T) {
	storePath, cachePath := testPaths(t)
	ctx := context.Background()

	kb := openTestBase(t, storePath, cachePath, mock.NewEmbedder())
	_, err := kb.Train(ctx, []core.QAPair{
		{Question: "What is your refund policy?", Answer: "We refund within 30 days.", Language: core.LanguageEnglish},
	})
	require.NoError(t, err)
	require.NoError(t, kb.Close())

	embedder := mock.NewEmbedder()
	kb = openTestBase(t, storePath, cachePath, embedder)
	defer kb.Close()

	// A valid snapshot means startup embeds nothing.
	assert.Zero(t, embedder.CallCount())

	result, err := kb.Ask(ctx, "What is your refund policy?", core.LanguageEnglish)
	require.NoError(t, err)
	assert.True(t, result.Matched)
	assert.Equal(t, "We refund within 30 days.", result.Answer)
	assert.Equal(t, 1, embedder.CallCount())
}

func TestKnowledgeBase_ModelChangeTriggersRebuild(t *testing.T) {
	storePath, cachePath := testPaths(t)
	ctx := context.Background()

	// Model A embeds everything along the first axis.
	modelA := mock.NewEmbedder()
	modelA.ModelName = "model-a"
	modelA.EmbedTextFunc = func(context.Context, string) ([]float32, error) {
		return []float32{1, 0}, nil
	}
	modelA.EmbedTextsFunc = func(_ context.Context, texts []string) ([][]float32, error) {
		vectors := make([][]float32, len(texts))
		for i := range texts {
			vectors[i] = []float32{1, 0}
		}
		return vectors, nil
	}

	kb := openTestBase(t, storePath, cachePath, modelA)
	_, err := kb.Train(ctx, []core.QAPair{
		{Question: "What is your refund policy?", Answer: "We refund within 30 days.", Language: core.LanguageEnglish},
	})
	require.NoError(t, err)
	require.NoError(t, kb.Close())

	// Model B embeds everything along the second axis. Without a rebuild
	// the snapshot vector [1,0] would score 0 against a model B query and
	// every question would fall back.
	modelB := mock.NewEmbedder()
	modelB.ModelName = "model-b"
	modelB.EmbedTextFunc = func(context.Context, string) ([]float32, error) {
		return []float32{0, 1}, nil
	}
	modelB.EmbedTextsFunc = func(_ context.Context, texts []string) ([][]float32, error) {
		vectors := make([][]float32, len(texts))
		for i := range texts {
			vectors[i] = []float32{0, 1}
		}
		return vectors, nil
	}

	kb = openTestBase(t, storePath, cachePath, modelB)
	defer kb.Close()

	// Startup re-embedded the store with model B.
	assert.NotZero(t, modelB.CallCount())

	result, err := kb.Ask(ctx, "What is your refund policy?", core.LanguageEnglish)
	require.NoError(t, err)
	assert.True(t, result.Matched)
	assert.Equal(t, "We refund within 30 days.", result.Answer)
}

func TestKnowledgeBase_MissingSnapshotRebuilds(t *testing.T) {
	storePath, cachePath := testPaths(t)
	ctx := context.Background()

	kb := openTestBase(t, storePath, cachePath, mock.NewEmbedder())
	_, err := kb.Train(ctx, []core.QAPair{
		{Question: "What is your refund policy?", Answer: "We refund within 30 days.", Language: core.LanguageEnglish},
	})
	require.NoError(t, err)
	require.NoError(t, kb.Close())

	// Lose the cache, keep the store.
	require.NoError(t, os.RemoveAll(cachePath))

	embedder := mock.NewEmbedder()
	kb = openTestBase(t, storePath, filepath.Join(filepath.Dir(cachePath), "cache2"), embedder)
	defer kb.Close()

	assert.NotZero(t, embedder.CallCount(), "startup must re-embed without a snapshot")

	result, err := kb.Ask(ctx, "What is your refund policy?", core.LanguageEnglish)
	require.NoError(t, err)
	assert.True(t, result.Matched)
}

func TestKnowledgeBase_ConcurrentAskDuringTrain(t *testing.T) {
	storePath, cachePath := testPaths(t)
	ctx := context.Background()

	kb := openTestBase(t, storePath, cachePath, mock.NewEmbedder())
	defer kb.Close()

	_, err := kb.Train(ctx, []core.QAPair{
		{Question: "What is your refund policy?", Answer: "We refund within 30 days.", Language: core.LanguageEnglish},
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		pairs := make([]core.QAPair, 50)
		for i := range pairs {
			pairs[i] = core.QAPair{
				Question: fmt.Sprintf("Question number %d?", i),
				Answer:   "An answer.",
				Language: core.LanguageEnglish,
			}
		}
		if _, err := kb.Train(ctx, pairs); err != nil {
			t.Error(err)
		}
	}()

	// Every result returned while training runs must resolve: either a
	// fallback or a matched record the store knows.
	for i := 0; i < 100; i++ {
		result, err := kb.Ask(ctx, "What is your refund policy?", core.LanguageEnglish)
		require.NoError(t, err)
		if result.Matched {
			_, err := kb.Store().Get(ctx, result.RecordId)
			require.NoError(t, err, "matched id %d must exist in store", result.RecordId)
		}
	}
	wg.Wait()
}

func TestOpen_CorruptStoreFails(t *testing.T) {
	storePath, cachePath := testPaths(t)
	require.NoError(t, os.WriteFile(storePath, []byte("{not json"), 0o644))

	_, err := Open(context.Background(), storePath, cachePath, WithEmbedder(mock.NewEmbedder()))
	require.ErrorIs(t, err, storage.ErrCorruptStore)
}

func TestKnowledgeBase_RebuildIndex(t *testing.T) {
	storePath, cachePath := testPaths(t)
	ctx := context.Background()

	embedder := mock.NewEmbedder()
	kb := openTestBase(t, storePath, cachePath, embedder)
	defer kb.Close()

	_, err := kb.Train(ctx, []core.QAPair{
		{Question: "What is your refund policy?", Answer: "We refund within 30 days.", Language: core.LanguageEnglish},
		{Question: "What are your hours?", Answer: "We are open 9 to 5.", Language: core.LanguageEnglish},
	})
	require.NoError(t, err)

	require.NoError(t, kb.RebuildIndex(ctx))

	result, err := kb.Ask(ctx, "What are your hours?", core.LanguageEnglish)
	require.NoError(t, err)
	assert.True(t, result.Matched)
	assert.Equal(t, "We are open 9 to 5.", result.Answer)
}
