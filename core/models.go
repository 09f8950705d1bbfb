package core

import (
	"encoding/binary"
	"strconv"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for persisted chunks.
// It is assigned from a database sequence when a chunk is first stored.
type ID uint64

// String returns the decimal form of the ID, the representation used on the
// wire and in log output.
func (id ID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// IDFromContent generates a deterministic 64-bit fingerprint from text using
// BLAKE2b hashing. Identical content always produces the same fingerprint.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Metadata carries the source-document fields denormalized onto every chunk
// produced from that document.
type Metadata struct {
	Format          string
	PageDescription string
	Action          string
	SourceName      string
	ContentType     string
	Updated         time.Time // parsed from the source record's updated field; zero when absent
	URL             string
	Tags            []string
}

// Chunk is one token-bounded slice of a source document's body. It is the
// atomic unit that receives an embedding vector.
type Chunk struct {
	Id         ID
	Title      string // copied from the owning source record, shared by all of its chunks
	Content    string
	Metadata   Metadata
	Vector     []float32 // embedding for semantic search, empty until backfilled
	InsertedAt time.Time // when the chunk was inserted into the database
	UpdatedAt  time.Time // when the chunk was last updated
}

// Fingerprint returns the content-identity fingerprint used to detect
// duplicate chunks across ingestion runs.
func (c *Chunk) Fingerprint() ID {
	return IDFromContent(c.Title + "\x1f" + c.Content)
}

// Pending reports whether the chunk still lacks an embedding and therefore
// belongs to the backfill queue.
func (c *Chunk) Pending() bool {
	return len(c.Vector) == 0
}

// SearchResult is a chunk match from vector similarity search.
type SearchResult struct {
	Chunk *Chunk
	Score float32
}
