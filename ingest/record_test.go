package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordFromMap_AllFields(t *testing.T) {
	rec := RecordFromMap(map[string]any{
		"body":       "some long body",
		"title":      "Creating Indexes",
		"sourceName": "docs-manual",
		"url":        "https://docs.example.com/indexes",
		"action":     "updated",
		"format":     "markdown",
		"updated":    "2024-05-20T10:00:00Z",
		"metadata": map[string]any{
			"tags":            []any{"indexes", "performance"},
			"pageDescription": "How to create indexes",
			"contentType":     "tutorial",
		},
	})

	assert.Equal(t, "some long body", rec.Body)
	assert.Equal(t, "Creating Indexes", rec.Title)
	assert.Equal(t, "docs-manual", rec.SourceName)
	assert.Equal(t, "https://docs.example.com/indexes", rec.URL)
	assert.Equal(t, "updated", rec.Action)
	assert.Equal(t, "markdown", rec.Format)
	assert.Equal(t, "2024-05-20T10:00:00Z", rec.Updated)
	assert.Equal(t, []string{"indexes", "performance"}, rec.Tags)
	assert.Equal(t, "How to create indexes", rec.PageDescription)
	assert.Equal(t, "tutorial", rec.ContentType)
}

func TestRecordFromMap_TotalMapping(t *testing.T) {
	tests := []struct {
		name string
		doc  map[string]any
	}{
		{"empty document", map[string]any{}},
		{"mistyped fields", map[string]any{
			"body":     42,
			"title":    []any{"not", "a", "string"},
			"updated":  false,
			"metadata": "not a map",
		}},
		{"mistyped tags", map[string]any{
			"metadata": map[string]any{"tags": "not an array"},
		}},
		{"non-string tag entries", map[string]any{
			"metadata": map[string]any{"tags": []any{1, true}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := RecordFromMap(tt.doc)
			require.NotNil(t, rec)
			assert.Empty(t, rec.Body)
			assert.Empty(t, rec.Title)
			assert.Empty(t, rec.Updated)
			assert.Nil(t, rec.Tags)
		})
	}
}
