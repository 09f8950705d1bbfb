package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity
// search. Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector represents the semantic meaning of the text.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a
	// batch. The returned slice contains embeddings in the same order as the
	// input texts. Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Answerer produces a natural-language answer to a question, grounded on the
// retrieved context passages. Implementations must be thread-safe for
// concurrent use.
type Answerer interface {
	// Answer generates an answer to the question conditioned on the given
	// context passages. An empty contexts slice is valid: the model answers
	// from its own knowledge and the prompt instructs it to say so.
	Answer(ctx context.Context, question string, contexts []string) (string, error)
}

// Provider aggregates AI services for convenient initialization and lifecycle
// management. A provider creates and manages Embedder and Answerer instances,
// ensuring they share configuration and resources appropriately.
type Provider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// Answerer returns the question answering service.
	// The returned Answerer is safe for concurrent use.
	Answerer() Answerer

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
