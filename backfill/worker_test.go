package backfill

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

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

func fastConfig() *Config {
	return &Config{
		ReportInterval: 1,
		MaxRetries:     2,
		RetryDelay:     time.Millisecond,
	}
}

func seedPendingChunks(t *testing.T, repo storage.ChunkRepository, contents ...string) []*core.Chunk {
	t.Helper()

	chunks := make([]*core.Chunk, len(contents))
	for i, content := range contents {
		chunks[i] = &core.Chunk{Title: "doc", Content: content}
	}
	added, err := repo.AddChunks(context.Background(), chunks...)
	require.NoError(t, err)
	require.Len(t, added, len(contents))
	return added
}

func TestNewBackfiller_Validation(t *testing.T) {
	repo := newTestRepository(t)
	embedder := mock.NewMockEmbedder()

	_, err := NewBackfiller(nil, embedder, nil, nil)
	assert.ErrorIs(t, err, ErrRepositoryRequired)

	_, err = NewBackfiller(repo, nil, nil, nil)
	assert.ErrorIs(t, err, ErrEmbedderRequired)

	b, err := NewBackfiller(repo, embedder, nil, nil)
	require.NoError(t, err)
	assert.NotNil(t, b)
}

func TestBackfiller_EmbedsAllPending(t *testing.T) {
	repo := newTestRepository(t)
	embedder := mock.NewMockEmbedder()
	seedPendingChunks(t, repo, "first chunk", "second chunk", "third chunk")

	var progress bytes.Buffer
	b, err := NewBackfiller(repo, embedder, fastConfig(), &progress)
	require.NoError(t, err)

	require.NoError(t, b.Run(context.Background()))

	pending, err := repo.GetChunksWithoutVector(context.Background())
	require.NoError(t, err)
	assert.Empty(t, pending)

	total, stillPending, err := repo.CountChunks(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Zero(t, stillPending)
	assert.Contains(t, progress.String(), "Backfill complete")
}

func TestBackfiller_VectorLengthMatchesEmbedder(t *testing.T) {
	repo := newTestRepository(t)
	embedder := mock.NewMockEmbedder()
	added := seedPendingChunks(t, repo, "content to embed")

	b, err := NewBackfiller(repo, embedder, fastConfig(), nil)
	require.NoError(t, err)
	require.NoError(t, b.Run(context.Background()))

	chunk, err := repo.GetChunk(context.Background(), added[0].Id)
	require.NoError(t, err)
	assert.Len(t, chunk.Vector, 384)
}

func TestBackfiller_SecondRunIsNoOp(t *testing.T) {
	repo := newTestRepository(t)
	embedder := mock.NewMockEmbedder()
	seedPendingChunks(t, repo, "one", "two")

	b, err := NewBackfiller(repo, embedder, fastConfig(), nil)
	require.NoError(t, err)

	require.NoError(t, b.Run(context.Background()))
	firstRunCalls := embedder.CallCount()
	assert.Positive(t, firstRunCalls)

	require.NoError(t, b.Run(context.Background()))
	assert.Equal(t, firstRunCalls, embedder.CallCount(), "second run must embed nothing")
}

func TestBackfiller_EmptyStoreIsNoOp(t *testing.T) {
	repo := newTestRepository(t)
	embedder := mock.NewMockEmbedder()

	var progress bytes.Buffer
	b, err := NewBackfiller(repo, embedder, fastConfig(), &progress)
	require.NoError(t, err)

	require.NoError(t, b.Run(context.Background()))
	assert.Zero(t, embedder.CallCount())
	assert.Contains(t, progress.String(), "0 pending")
}

func TestBackfiller_FailureHaltsButKeepsEarlierProgress(t *testing.T) {
	repo := newTestRepository(t)
	seedPendingChunks(t, repo, "good first", "poison", "never reached")

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		if text == "poison" {
			return nil, errors.New("model unavailable")
		}
		return []float32{0.1, 0.2, 0.3}, nil
	}

	b, err := NewBackfiller(repo, embedder, fastConfig(), nil)
	require.NoError(t, err)

	err = b.Run(context.Background())
	require.Error(t, err)

	// The chunk before the failure stays embedded; the rest stay pending
	total, pending, err := repo.CountChunks(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Equal(t, 2, pending)
}

func TestBackfiller_ResumesAfterFailure(t *testing.T) {
	repo := newTestRepository(t)
	seedPendingChunks(t, repo, "alpha", "poison", "gamma")

	failing := true
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		if failing && text == "poison" {
			return nil, errors.New("model unavailable")
		}
		return []float32{0.5, 0.5}, nil
	}

	b, err := NewBackfiller(repo, embedder, fastConfig(), nil)
	require.NoError(t, err)

	require.Error(t, b.Run(context.Background()))

	failing = false
	require.NoError(t, b.Run(context.Background()))

	_, pending, err := repo.CountChunks(context.Background())
	require.NoError(t, err)
	assert.Zero(t, pending)
}

func TestBackfiller_CancelledContext(t *testing.T) {
	repo := newTestRepository(t)
	embedder := mock.NewMockEmbedder()
	seedPendingChunks(t, repo, "content")

	b, err := NewBackfiller(repo, embedder, fastConfig(), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, b.Run(ctx), context.Canceled)
}
