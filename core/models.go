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


package core

import (
	"encoding/binary"
	"sort"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for knowledge records.
// IDs are assigned sequentially by the knowledge store and never reused.
type ID uint64

// Language codes supported by the knowledge base.
// The embedding model is multilingual, so the language is metadata carried
// alongside a record rather than an input to the embedding itself.
const (
	LanguageEnglish = "en"
	LanguageArabic  = "ar"
)

// supportedLanguages is the closed set of language tags accepted at the
// training and query boundaries.
var supportedLanguages = map[string]struct{}{
	LanguageEnglish: {},
	LanguageArabic:  {},
}

// IsSupportedLanguage reports whether lang is one of the supported language tags.
func IsSupportedLanguage(lang string) bool {
	_, ok := supportedLanguages[lang]
	return ok
}

// SupportedLanguages returns the supported language tags in sorted order.
func SupportedLanguages() []string {
	langs := make([]string, 0, len(supportedLanguages))
	for lang := range supportedLanguages {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

// QAPair is a trainable question-answer pair as received at the training
// boundary, before an ID or embedding has been assigned.
type QAPair struct {
	Question string
	Answer   string
	Language string
	Category string
}

// QARecord is one trained unit of knowledge. The store exclusively owns
// QARecord instances; the vector index only holds (Id, Vector) copies.
type QARecord struct {
	Id       ID
	Question string
	Answer   string
	Language string
	Category string
	// Vector is the embedding of Question under the active embedding model.
	// It is recomputed whenever the model version changes.
	Vector []float32
}

// Pair returns the record's trainable fields without ID or embedding.
func (r *QARecord) Pair() QAPair {
	return QAPair{
		Question: r.Question,
		Answer:   r.Answer,
		Language: r.Language,
		Category: r.Category,
	}
}

// RetrievalResult is the outcome of a single query. It is ephemeral and
// never persisted.
//
// Confidence is the cosine similarity of the best candidate, in [-1, 1]
// (in practice [0, 1] for text embeddings). When no candidate exists at all
// (empty index), Confidence is 0 and Matched is false.
type RetrievalResult struct {
	Matched    bool
	RecordId   ID // zero when Matched is false
	Answer     string
	Confidence float32
	Language   string
}

// ConversationTurn is one query/result interaction, recorded in the
// in-memory conversation log. Turns live only as long as the process.
type ConversationTurn struct {
	Timestamp time.Time
	Query     string
	Language  string
	Result    RetrievalResult
}

// IndexEntry is one (id, vector) pair held by the vector index and by
// persisted index snapshots.
type IndexEntry struct {
	Id     ID
	Vector []float32
}

// IndexSnapshot is a persisted cache of the vector index: enough to
// reconstruct the index without re-embedding, as long as the model version
// and id set still match the knowledge store.
type IndexSnapshot struct {
	Dimension    int
	ModelVersion string
	// Fingerprint is a BLAKE2b digest over (model version, dimension, id set).
	// A mismatch on load means the snapshot is stale or damaged and the index
	// must be rebuilt from the store.
	Fingerprint []byte
	Entries     []IndexEntry
}

// SnapshotFingerprint computes the integrity digest stored in an
// IndexSnapshot. The id set is hashed order-insensitively (sorted) so that
// two snapshots over the same records always agree.
func SnapshotFingerprint(modelVersion string, dimension int, ids []ID) []byte {
	sorted := make([]ID, len(ids))
	copy(sorted, ids)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	h, _ := blake2b.New(16, nil)
	h.Write([]byte(modelVersion))
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(dimension))
	h.Write(buf[:])
	for _, id := range sorted {
		binary.LittleEndian.PutUint64(buf[:], uint64(id))
		h.Write(buf[:])
	}
	return h.Sum(nil)
}
