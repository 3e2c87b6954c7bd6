package ai

import "context"

// Embedder maps text to fixed-dimension vectors for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
//
// Embeddings are deterministic for a fixed model version; a model version
// change invalidates every previously computed vector, never individual ones.
// The embedder is multilingual: there is no per-language code path, and the
// language tag of a record is metadata carried alongside the vector.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// Empty or whitespace-only text is rejected with core.ErrEmptyText.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates embeddings for multiple texts in a batch.
	// Results are in input order and identical to calling EmbedText on each
	// text individually. Returns an error if any text is empty or any
	// embedding fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)

	// Model returns the identifier of the active embedding model. It is the
	// version tag recorded in index snapshots: a snapshot whose tag differs
	// from the current Model() is stale and triggers a rebuild.
	Model() string
}
