package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/arcova/docrag/core"
)

// Key prefixes for the chunk record and its secondary indexes.
const (
	chunkRecordPrefix = "chkrec"  // primary record, keyed by ID
	chunkPendPrefix   = "chkpend" // chunks awaiting an embedding
	chunkSourcePrefix = "chksrc"  // sourceName lookup
	chunkFpPrefix     = "chkfp"   // content fingerprint, for duplicate detection
	chunkIDSeq        = "chkseq"  // ID sequence
)

// makeChunkKey generates the primary key for a chunk by ID.
func makeChunkKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", chunkRecordPrefix, id))
}

// makePendingKey generates a key in the pending-embedding index.
// The ID is written BigEndian so lexicographic iteration yields insertion
// order.
func makePendingKey(id core.ID) []byte {
	prefix := chunkPendPrefix + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makeSourceKey generates a composite key for the sourceName index.
// Format: prefix:sourceName\x00id
func makeSourceKey(sourceName string, id core.ID) []byte {
	prefix := chunkSourcePrefix + ":"
	buf := make([]byte, len(prefix)+len(sourceName)+1+8)
	offset := copy(buf, prefix)
	offset += copy(buf[offset:], sourceName)
	buf[offset] = 0
	offset++
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialSourceKey generates the iteration prefix for a sourceName.
func makePartialSourceKey(sourceName string) []byte {
	prefix := chunkSourcePrefix + ":"
	buf := make([]byte, len(prefix)+len(sourceName)+1)
	offset := copy(buf, prefix)
	offset += copy(buf[offset:], sourceName)
	buf[offset] = 0
	return buf
}

// makeFingerprintKey generates a key in the content-fingerprint index.
func makeFingerprintKey(fp core.ID) []byte {
	prefix := chunkFpPrefix + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(fp))
	return buf
}
