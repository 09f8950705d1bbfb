package ingest

import (
	"fmt"
	"time"

	"github.com/arcova/docrag/core"
)

// Normalize maps one source record plus one chunk of its body into a chunk
// entity ready for storage. The chunk carries no vector; embeddings are
// attached later by the backfill worker.
//
// The record's updated field, when present, must parse as an RFC 3339
// date-time. An unparseable value returns an error wrapping
// ErrInvalidUpdatedTimestamp, which aborts the whole ingestion run.
func Normalize(rec *SourceRecord, chunkText string) (*core.Chunk, error) {
	var updated time.Time
	if rec.Updated != "" {
		parsed, err := time.Parse(time.RFC3339, rec.Updated)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidUpdatedTimestamp, rec.Updated, err)
		}
		updated = parsed.UTC()
	}

	return &core.Chunk{
		Title:   rec.Title,
		Content: chunkText,
		Metadata: core.Metadata{
			Format:          rec.Format,
			PageDescription: rec.PageDescription,
			Action:          rec.Action,
			SourceName:      rec.SourceName,
			ContentType:     rec.ContentType,
			Updated:         updated,
			URL:             rec.URL,
			Tags:            rec.Tags,
		},
	}, nil
}
