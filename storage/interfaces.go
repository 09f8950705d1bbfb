package storage

import (
	"context"

	"github.com/arcova/docrag/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// FindSimilar finds chunks similar to the given vector.
	// Chunks without an embedding are never returned. Returns chunks with
	// similarity >= minSimilarity, up to limit results, ordered by
	// similarity score (highest first).
	FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.SearchResult, error)

	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// ChunkRepository provides operations for managing persisted document chunks.
type ChunkRepository interface {
	Repository

	// AddChunks bulk-inserts chunks in a single transaction. IDs are
	// generated from a sequence and InsertedAt/UpdatedAt timestamps are set.
	// Chunks whose content fingerprint already exists in the store are
	// skipped, so re-ingesting the same feed does not duplicate. Returns the
	// chunks actually inserted, with IDs populated.
	AddChunks(ctx context.Context, chunks ...*core.Chunk) ([]*core.Chunk, error)

	// UpdateChunks updates existing chunks, refreshing UpdatedAt.
	// Returns ErrNotFound if any chunk does not exist.
	UpdateChunks(ctx context.Context, chunks ...*core.Chunk) ([]*core.Chunk, error)

	// DeleteChunks removes chunks and their index entries by ID.
	// Returns ErrNotFound if any chunk does not exist.
	DeleteChunks(ctx context.Context, ids ...core.ID) error

	// GetChunk retrieves a single chunk by ID.
	// Returns ErrNotFound if the chunk does not exist.
	GetChunk(ctx context.Context, id core.ID) (*core.Chunk, error)

	// GetChunks retrieves multiple chunks by their IDs.
	// Returns only the chunks that exist (no error for missing IDs).
	GetChunks(ctx context.Context, ids ...core.ID) ([]*core.Chunk, error)

	// GetChunksWithoutVector returns all chunks that do not yet have an
	// embedding, in insertion order. This is the backfill work queue and is
	// served from a dedicated index, not a full scan.
	GetChunksWithoutVector(ctx context.Context) ([]*core.Chunk, error)

	// GetChunksBySource retrieves all chunks produced from source records
	// with the given sourceName.
	GetChunksBySource(ctx context.Context, sourceName string) ([]*core.Chunk, error)

	// CountChunks returns the total number of chunks and the number still
	// awaiting an embedding.
	CountChunks(ctx context.Context) (total, pending int, err error)
}
