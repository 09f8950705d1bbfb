package answer

import (
	"context"
	"errors"
	"testing"

	"github.com/arcova/docrag/ai/mock"
	"github.com/arcova/docrag/core"
	"github.com/arcova/docrag/storage"
	"github.com/arcova/docrag/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T) storage.ChunkRepository {
	t.Helper()

	repo, backend, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })
	return repo
}

// seedEmbeddedChunk stores a chunk and attaches the given vector.
func seedEmbeddedChunk(t *testing.T, repo storage.ChunkRepository, content string, vector []float32) *core.Chunk {
	t.Helper()

	added, err := repo.AddChunks(context.Background(), &core.Chunk{Title: "doc", Content: content})
	require.NoError(t, err)
	require.Len(t, added, 1)

	added[0].Vector = vector
	_, err = repo.UpdateChunks(context.Background(), added[0])
	require.NoError(t, err)
	return added[0]
}

func TestNewResponder_Validation(t *testing.T) {
	repo := newTestRepository(t)
	provider := mock.NewMockProvider()

	_, err := NewResponder(nil, provider)
	assert.ErrorIs(t, err, ErrRepositoryRequired)

	_, err = NewResponder(repo, nil)
	assert.ErrorIs(t, err, ErrProviderRequired)

	r, err := NewResponder(repo, provider)
	require.NoError(t, err)
	assert.NotNil(t, r)
}

func TestResponder_EmptyQuestion(t *testing.T) {
	repo := newTestRepository(t)
	r, err := NewResponder(repo, mock.NewMockProvider())
	require.NoError(t, err)

	_, err = r.Answer(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyQuestion)
}

func TestResponder_GroundsAnswerInRetrievedChunks(t *testing.T) {
	repo := newTestRepository(t)
	seedEmbeddedChunk(t, repo, "indexes speed up queries", []float32{1, 0, 0})
	seedEmbeddedChunk(t, repo, "replica sets provide redundancy", []float32{0, 1, 0})
	seedEmbeddedChunk(t, repo, "weakly related aside", []float32{0.5, 0.5, 0})

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 0, 0}, nil
	}

	var gotQuestion string
	var gotContexts []string
	answerer := mock.NewMockAnswerer()
	answerer.AnswerFunc = func(ctx context.Context, question string, contexts []string) (string, error) {
		gotQuestion = question
		gotContexts = contexts
		return "grounded answer", nil
	}

	r, err := NewResponder(repo, mock.NewMockProviderWithServices(embedder, answerer))
	require.NoError(t, err)

	got, err := r.Answer(context.Background(), "how do indexes work?")
	require.NoError(t, err)
	assert.Equal(t, "grounded answer", got)
	assert.Equal(t, "how do indexes work?", gotQuestion)

	// Only chunks above the 0.60 similarity threshold are used as context
	require.Len(t, gotContexts, 1)
	assert.Equal(t, "indexes speed up queries", gotContexts[0])
}

func TestResponder_NoMatchesStillAnswers(t *testing.T) {
	repo := newTestRepository(t)

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 0, 0}, nil
	}

	called := false
	answerer := mock.NewMockAnswerer()
	answerer.AnswerFunc = func(ctx context.Context, question string, contexts []string) (string, error) {
		called = true
		assert.Empty(t, contexts)
		return "best effort answer", nil
	}

	r, err := NewResponder(repo, mock.NewMockProviderWithServices(embedder, answerer))
	require.NoError(t, err)

	got, err := r.Answer(context.Background(), "unknown topic?")
	require.NoError(t, err)
	assert.True(t, called, "answerer must be called even with no context")
	assert.Equal(t, "best effort answer", got)
}

func TestResponder_MaxHitsLimit(t *testing.T) {
	repo := newTestRepository(t)
	seedEmbeddedChunk(t, repo, "first", []float32{1, 0})
	seedEmbeddedChunk(t, repo, "second", []float32{0.9, 0})
	seedEmbeddedChunk(t, repo, "third", []float32{0.8, 0})

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 0}, nil
	}

	var gotContexts []string
	answerer := mock.NewMockAnswerer()
	answerer.AnswerFunc = func(ctx context.Context, question string, contexts []string) (string, error) {
		gotContexts = contexts
		return "ok", nil
	}

	r, err := NewResponder(repo, mock.NewMockProviderWithServices(embedder, answerer), WithMaxHits(2))
	require.NoError(t, err)

	_, err = r.Answer(context.Background(), "question")
	require.NoError(t, err)

	// Best two matches, in score order
	require.Len(t, gotContexts, 2)
	assert.Equal(t, "first", gotContexts[0])
	assert.Equal(t, "second", gotContexts[1])
}

func TestResponder_EmbedderFailurePropagates(t *testing.T) {
	repo := newTestRepository(t)

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, errors.New("embedding service down")
	}

	r, err := NewResponder(repo, mock.NewMockProviderWithServices(embedder, mock.NewMockAnswerer()))
	require.NoError(t, err)

	_, err = r.Answer(context.Background(), "question")
	assert.Error(t, err)
}
