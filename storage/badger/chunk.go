package badger

import (
	"context"
	"errors"
	"time"

	"github.com/arcova/docrag/core"
	"github.com/arcova/docrag/storage"
	"github.com/dgraph-io/badger/v4"
)

// ChunkRepository implements storage.ChunkRepository for BadgerDB.
type ChunkRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.ChunkRepository = (*ChunkRepository)(nil)

// NewChunkRepository creates a new ChunkRepository.
func NewChunkRepository(backend *Backend) (*ChunkRepository, error) {
	idSeq, err := backend.GetSequence(chunkIDSeq)
	if err != nil {
		return nil, err
	}

	return &ChunkRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *ChunkRepository) Close() error {
	return r.idSeq.Release()
}

// FindSimilar delegates to the backend.
func (r *ChunkRepository) FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.SearchResult, error) {
	return r.backend.FindSimilar(ctx, vector, minSimilarity, limit)
}

// WithTransaction delegates to the backend.
func (r *ChunkRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddChunks bulk-inserts chunks in a single transaction. Chunks whose content
// fingerprint is already stored are skipped, so repeated ingestion of the
// same feed does not duplicate.
func (r *ChunkRepository) AddChunks(ctx context.Context, chunks ...*core.Chunk) ([]*core.Chunk, error) {
	var inserted []*core.Chunk

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		inserted = inserted[:0]
		seen := make(map[core.ID]bool, len(chunks))

		for _, chunk := range chunks {
			fp := chunk.Fingerprint()
			fpKey := makeFingerprintKey(fp)
			if seen[fp] {
				continue
			}
			if _, err := tx.Get(fpKey); err == nil {
				continue
			} else if !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
			seen[fp] = true

			nextID, err := r.idSeq.Next()
			if err != nil {
				return err
			}
			// BadgerDB sequences can return 0 on first call, so we skip it
			if nextID == 0 {
				nextID, err = r.idSeq.Next()
				if err != nil {
					return err
				}
			}
			chunk.Id = core.ID(nextID)

			chunk.InsertedAt = time.Now().UTC()
			chunk.UpdatedAt = chunk.InsertedAt

			if err := tx.Set(makeChunkKey(chunk.Id), storage.MarshalChunk(chunk)); err != nil {
				return err
			}

			if err := tx.Set(fpKey, storage.MarshalID(chunk.Id)); err != nil {
				return err
			}

			// A freshly ingested chunk joins the backfill queue until it
			// receives a vector.
			if chunk.Pending() {
				if err := tx.Set(makePendingKey(chunk.Id), storage.MarshalID(chunk.Id)); err != nil {
					return err
				}
			}

			if chunk.Metadata.SourceName != "" {
				if err := tx.Set(makeSourceKey(chunk.Metadata.SourceName, chunk.Id), storage.MarshalID(chunk.Id)); err != nil {
					return err
				}
			}

			inserted = append(inserted, chunk)
		}
		return tx.Commit()
	}, true)

	if err != nil {
		return nil, err
	}
	return inserted, nil
}

// UpdateChunks updates existing chunks.
func (r *ChunkRepository) UpdateChunks(ctx context.Context, chunks ...*core.Chunk) ([]*core.Chunk, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, chunk := range chunks {
			key := makeChunkKey(chunk.Id)

			old, err := r.readChunk(tx, key)
			if err != nil {
				return err
			}
			if old == nil {
				return storage.ErrNotFound
			}

			chunk.UpdatedAt = time.Now().UTC()

			if err := tx.Set(key, storage.MarshalChunk(chunk)); err != nil {
				return err
			}

			// Leave the backfill queue once a vector is attached.
			if old.Pending() && !chunk.Pending() {
				if err := tx.Delete(makePendingKey(chunk.Id)); err != nil {
					return err
				}
			}

			if old.Metadata.SourceName != chunk.Metadata.SourceName {
				if old.Metadata.SourceName != "" {
					if err := tx.Delete(makeSourceKey(old.Metadata.SourceName, old.Id)); err != nil {
						return err
					}
				}
				if chunk.Metadata.SourceName != "" {
					if err := tx.Set(makeSourceKey(chunk.Metadata.SourceName, chunk.Id), storage.MarshalID(chunk.Id)); err != nil {
						return err
					}
				}
			}

			if oldFp, newFp := old.Fingerprint(), chunk.Fingerprint(); oldFp != newFp {
				if err := tx.Delete(makeFingerprintKey(oldFp)); err != nil {
					return err
				}
				if err := tx.Set(makeFingerprintKey(newFp), storage.MarshalID(chunk.Id)); err != nil {
					return err
				}
			}
		}
		return tx.Commit()
	}, true)

	if err != nil {
		return nil, err
	}
	return chunks, nil
}

// DeleteChunks removes chunks and their index entries by ID.
func (r *ChunkRepository) DeleteChunks(ctx context.Context, ids ...core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeChunkKey(id)

			chunk, err := r.readChunk(tx, key)
			if err != nil {
				return err
			}
			if chunk == nil {
				return storage.ErrNotFound
			}

			if chunk.Pending() {
				if err := tx.Delete(makePendingKey(id)); err != nil {
					return err
				}
			}
			if chunk.Metadata.SourceName != "" {
				if err := tx.Delete(makeSourceKey(chunk.Metadata.SourceName, id)); err != nil {
					return err
				}
			}
			if err := tx.Delete(makeFingerprintKey(chunk.Fingerprint())); err != nil {
				return err
			}
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetChunk retrieves a single chunk by ID.
func (r *ChunkRepository) GetChunk(ctx context.Context, id core.ID) (*core.Chunk, error) {
	var result *core.Chunk
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = r.readChunk(tx, makeChunkKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetChunks retrieves multiple chunks by their IDs.
func (r *ChunkRepository) GetChunks(ctx context.Context, ids ...core.ID) ([]*core.Chunk, error) {
	var result []*core.Chunk
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			chunk, err := r.readChunk(tx, makeChunkKey(id))
			if err != nil {
				return err
			}
			if chunk != nil {
				result = append(result, chunk)
			}
		}
		return nil
	}, false)
	return result, err
}

// GetChunksWithoutVector returns all chunks awaiting an embedding, in
// insertion order. Served from the pending index, not a scan of the records.
func (r *ChunkRepository) GetChunksWithoutVector(ctx context.Context) ([]*core.Chunk, error) {
	var results []*core.Chunk
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(chunkPendPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var id core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				id, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			chunk, err := r.readChunk(tx, makeChunkKey(id))
			if err != nil {
				return err
			}
			if chunk != nil {
				results = append(results, chunk)
			}
		}
		return nil
	}, false)

	return results, err
}

// GetChunksBySource retrieves all chunks with the given sourceName.
func (r *ChunkRepository) GetChunksBySource(ctx context.Context, sourceName string) ([]*core.Chunk, error) {
	var results []*core.Chunk
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialSourceKey(sourceName)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var id core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				id, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			chunk, err := r.readChunk(tx, makeChunkKey(id))
			if err != nil {
				return err
			}
			if chunk != nil {
				results = append(results, chunk)
			}
		}
		return nil
	}, false)

	return results, err
}

// CountChunks returns the total number of chunks and the number still
// awaiting an embedding.
func (r *ChunkRepository) CountChunks(ctx context.Context) (total, pending int, err error) {
	err = r.backend.WithTx(func(tx *badger.Txn) error {
		total = countKeys(tx, []byte(chunkRecordPrefix+":"))
		pending = countKeys(tx, []byte(chunkPendPrefix+":"))
		return nil
	}, false)
	return total, pending, err
}

func countKeys(tx *badger.Txn, prefix []byte) int {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	opts.PrefetchValues = false
	iter := tx.NewIterator(opts)
	defer iter.Close()

	count := 0
	for iter.Rewind(); iter.Valid(); iter.Next() {
		count++
	}
	return count
}

// readChunk reads and deserializes a chunk by key.
// Returns nil (not an error) if the key does not exist.
func (r *ChunkRepository) readChunk(tx *badger.Txn, key []byte) (*core.Chunk, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var chunk *core.Chunk
	err = item.Value(func(val []byte) error {
		var err error
		chunk, err = storage.UnmarshalChunk(val)
		return err
	})
	if err != nil {
		return nil, err
	}
	return chunk, nil
}
