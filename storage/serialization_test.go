package storage

import (
	"testing"
	"time"

	"github.com/arcova/docrag/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalID(t *testing.T) {
	tests := []struct {
		name string
		id   core.ID
	}{
		{"zero ID", core.ID(0)},
		{"small ID", core.ID(42)},
		{"large ID", core.ID(18446744073709551615)}, // max uint64
		{"content-based ID", core.IDFromContent("test content")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalID(tt.id)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalID(data)
			require.NoError(t, err)
			assert.Equal(t, tt.id, decoded)
		})
	}
}

func TestUnmarshalID_Empty(t *testing.T) {
	_, err := UnmarshalID([]byte{})
	assert.Error(t, err)
}

func TestMarshalUnmarshalChunk(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	tests := []struct {
		name  string
		chunk *core.Chunk
	}{
		{
			name: "minimal chunk",
			chunk: &core.Chunk{
				Id:         core.ID(1),
				Title:      "Intro",
				Content:    "Hello world",
				InsertedAt: now,
				UpdatedAt:  now,
			},
		},
		{
			name: "chunk with full metadata",
			chunk: &core.Chunk{
				Id:      core.ID(2),
				Title:   "Time series",
				Content: "Analyzing time-series data step by step.",
				Metadata: core.Metadata{
					Format:          "md",
					PageDescription: "How to analyze time-series data",
					Action:          "created",
					SourceName:      "devcenter",
					ContentType:     "article",
					Updated:         now.Add(-24 * time.Hour),
					URL:             "https://example.com/time-series",
					Tags:            []string{"python", "timeseries"},
				},
				InsertedAt: now,
				UpdatedAt:  now,
			},
		},
		{
			name: "chunk with embedding vector",
			chunk: &core.Chunk{
				Id:         core.ID(3),
				Title:      "Embedded",
				Content:    "Already embedded content",
				Vector:     []float32{0.25, -0.5, 1.0, 0.125},
				InsertedAt: now,
				UpdatedAt:  now,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalChunk(tt.chunk)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalChunk(data)
			require.NoError(t, err)

			assert.Equal(t, tt.chunk.Id, decoded.Id)
			assert.Equal(t, tt.chunk.Title, decoded.Title)
			assert.Equal(t, tt.chunk.Content, decoded.Content)
			assert.Equal(t, tt.chunk.Vector, decoded.Vector)
			assert.True(t, tt.chunk.InsertedAt.Equal(decoded.InsertedAt))
			assert.True(t, tt.chunk.UpdatedAt.Equal(decoded.UpdatedAt))

			assert.Equal(t, tt.chunk.Metadata.Format, decoded.Metadata.Format)
			assert.Equal(t, tt.chunk.Metadata.SourceName, decoded.Metadata.SourceName)
			assert.Equal(t, tt.chunk.Metadata.URL, decoded.Metadata.URL)
			assert.Equal(t, tt.chunk.Metadata.Tags, decoded.Metadata.Tags)
			assert.True(t, tt.chunk.Metadata.Updated.Equal(decoded.Metadata.Updated))
		})
	}
}

func TestMarshalUnmarshalChunk_ZeroUpdated(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	// A record without an updated field keeps a zero timestamp through the
	// round trip instead of decaying to some arbitrary instant.
	chunk := &core.Chunk{
		Id:         core.ID(7),
		Title:      "No updated field",
		Content:    "text",
		InsertedAt: now,
		UpdatedAt:  now,
	}

	decoded, err := UnmarshalChunk(MarshalChunk(chunk))
	require.NoError(t, err)
	assert.True(t, decoded.Metadata.Updated.IsZero())
}

func TestUnmarshalChunk_Truncated(t *testing.T) {
	chunk := &core.Chunk{Id: core.ID(9), Title: "T", Content: "some content"}
	data := MarshalChunk(chunk)

	_, err := UnmarshalChunk(data[:len(data)/2])
	assert.Error(t, err)
}
