package core

import (
	"math"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// MUS serializers for the domain types persisted to the store. Hand-written
// rather than generated: the schema is two small, stable structs.
var (
	IDMUS       = idMUS{}
	MetadataMUS = metadataMUS{}
	ChunkMUS    = chunkMUS{}

	timeMicroMUS = timeMUS{}
	strSliceMUS  = ord.NewSliceSer[string](ord.String)
	vectorMUS    = ord.NewSliceSer[float32](raw.Float32)
)

type idMUS struct{}

func (idMUS) Marshal(id ID, bs []byte) int {
	return varint.Uint64.Marshal(uint64(id), bs)
}

func (idMUS) Unmarshal(bs []byte) (ID, int, error) {
	v, n, err := varint.Uint64.Unmarshal(bs)
	return ID(v), n, err
}

func (idMUS) Size(id ID) int {
	return varint.Uint64.Size(uint64(id))
}

// timeMUS encodes timestamps as Unix microseconds. The zero time is mapped to
// a sentinel so it survives a round trip.
type timeMUS struct{}

const zeroTimeSentinel = math.MinInt64

func (timeMUS) Marshal(t time.Time, bs []byte) int {
	return varint.Int64.Marshal(timeToMicro(t), bs)
}

func (timeMUS) Unmarshal(bs []byte) (time.Time, int, error) {
	v, n, err := varint.Int64.Unmarshal(bs)
	return microToTime(v), n, err
}

func (timeMUS) Size(t time.Time) int {
	return varint.Int64.Size(timeToMicro(t))
}

func timeToMicro(t time.Time) int64 {
	if t.IsZero() {
		return zeroTimeSentinel
	}
	return t.UnixMicro()
}

func microToTime(v int64) time.Time {
	if v == zeroTimeSentinel {
		return time.Time{}
	}
	return time.UnixMicro(v).UTC()
}

type metadataMUS struct{}

func (metadataMUS) Marshal(m Metadata, bs []byte) (n int) {
	n = ord.String.Marshal(m.Format, bs)
	n += ord.String.Marshal(m.PageDescription, bs[n:])
	n += ord.String.Marshal(m.Action, bs[n:])
	n += ord.String.Marshal(m.SourceName, bs[n:])
	n += ord.String.Marshal(m.ContentType, bs[n:])
	n += timeMicroMUS.Marshal(m.Updated, bs[n:])
	n += ord.String.Marshal(m.URL, bs[n:])
	n += strSliceMUS.Marshal(m.Tags, bs[n:])
	return n
}

func (metadataMUS) Unmarshal(bs []byte) (m Metadata, n int, err error) {
	var n1 int
	if m.Format, n, err = ord.String.Unmarshal(bs); err != nil {
		return
	}
	if m.PageDescription, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return m, n + n1, err
	}
	n += n1
	if m.Action, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return m, n + n1, err
	}
	n += n1
	if m.SourceName, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return m, n + n1, err
	}
	n += n1
	if m.ContentType, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return m, n + n1, err
	}
	n += n1
	if m.Updated, n1, err = timeMicroMUS.Unmarshal(bs[n:]); err != nil {
		return m, n + n1, err
	}
	n += n1
	if m.URL, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return m, n + n1, err
	}
	n += n1
	m.Tags, n1, err = strSliceMUS.Unmarshal(bs[n:])
	return m, n + n1, err
}

func (metadataMUS) Size(m Metadata) (size int) {
	size = ord.String.Size(m.Format)
	size += ord.String.Size(m.PageDescription)
	size += ord.String.Size(m.Action)
	size += ord.String.Size(m.SourceName)
	size += ord.String.Size(m.ContentType)
	size += timeMicroMUS.Size(m.Updated)
	size += ord.String.Size(m.URL)
	size += strSliceMUS.Size(m.Tags)
	return size
}

type chunkMUS struct{}

func (chunkMUS) Marshal(c Chunk, bs []byte) (n int) {
	n = IDMUS.Marshal(c.Id, bs)
	n += ord.String.Marshal(c.Title, bs[n:])
	n += ord.String.Marshal(c.Content, bs[n:])
	n += MetadataMUS.Marshal(c.Metadata, bs[n:])
	n += vectorMUS.Marshal(c.Vector, bs[n:])
	n += timeMicroMUS.Marshal(c.InsertedAt, bs[n:])
	n += timeMicroMUS.Marshal(c.UpdatedAt, bs[n:])
	return n
}

func (chunkMUS) Unmarshal(bs []byte) (c Chunk, n int, err error) {
	var n1 int
	if c.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	if c.Title, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.Content, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.Metadata, n1, err = MetadataMUS.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.Vector, n1, err = vectorMUS.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.InsertedAt, n1, err = timeMicroMUS.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	c.UpdatedAt, n1, err = timeMicroMUS.Unmarshal(bs[n:])
	return c, n + n1, err
}

func (chunkMUS) Size(c Chunk) (size int) {
	size = IDMUS.Size(c.Id)
	size += ord.String.Size(c.Title)
	size += ord.String.Size(c.Content)
	size += MetadataMUS.Size(c.Metadata)
	size += vectorMUS.Size(c.Vector)
	size += timeMicroMUS.Size(c.InsertedAt)
	size += timeMicroMUS.Size(c.UpdatedAt)
	return size
}
