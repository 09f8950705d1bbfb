package answer

import (
	"context"
	"log/slog"
	"strings"

	"github.com/arcova/docrag/ai"
	"github.com/arcova/docrag/storage"
)

const (
	// defaultMaxHits bounds the number of chunks fed to the answerer.
	defaultMaxHits = 5

	// similarityThreshold filters out weakly related chunks.
	similarityThreshold = 0.60
)

// Responder answers questions using retrieval-augmented generation.
type Responder struct {
	repository storage.ChunkRepository
	embedder   ai.Embedder
	answerer   ai.Answerer
	maxHits    int
	logger     *slog.Logger
}

// Option configures a Responder.
type Option func(*Responder) error

// WithMaxHits sets the maximum number of retrieved chunks used as context.
// Default is 5.
func WithMaxHits(maxHits int) Option {
	return func(r *Responder) error {
		if maxHits < 1 {
			maxHits = 1
		}
		r.maxHits = maxHits
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Responder) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger.With("component", "responder")
		return nil
	}
}

// NewResponder creates a new responder.
func NewResponder(repository storage.ChunkRepository, provider ai.Provider, opts ...Option) (*Responder, error) {
	if repository == nil {
		return nil, ErrRepositoryRequired
	}
	if provider == nil {
		return nil, ErrProviderRequired
	}

	r := &Responder{
		repository: repository,
		embedder:   provider.Embedder(),
		answerer:   provider.Answerer(),
		maxHits:    defaultMaxHits,
		logger:     slog.Default().With("component", "responder"),
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Answer embeds the question, retrieves similar chunks, and generates a
// grounded answer. With no sufficiently similar chunks the answerer is still
// called with an empty context set; the prompt makes the model say so before
// answering from general knowledge.
func (r *Responder) Answer(ctx context.Context, question string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", ErrEmptyQuestion
	}

	embedding, err := r.embedder.EmbedText(ctx, question)
	if err != nil {
		r.logger.Error("error embedding question", "err", err)
		return "", err
	}

	matches, err := r.repository.FindSimilar(ctx, embedding, similarityThreshold, r.maxHits)
	if err != nil {
		r.logger.Error("error querying for similar chunks", "err", err)
		return "", err
	}

	contexts := make([]string, 0, len(matches))
	for _, match := range matches {
		contexts = append(contexts, match.Chunk.Content)
	}

	r.logger.Debug("retrieved context", "question_length", len(question), "hits", len(contexts))

	return r.answerer.Answer(ctx, question, contexts)
}
