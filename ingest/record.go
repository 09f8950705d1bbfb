package ingest

// SourceRecord is one entry of the bulk source feed, decoded from a single
// newline-delimited JSON line. All fields are optional in the feed; absent or
// mistyped values decode to zero values.
type SourceRecord struct {
	Body            string
	Title           string
	SourceName      string
	URL             string
	Action          string
	Format          string
	Updated         string // raw RFC 3339 string, parsed by the normalizer
	Tags            []string
	PageDescription string
	ContentType     string
}

// RecordFromMap builds a SourceRecord from an untyped feed document.
// The mapping is total: missing keys and values of the wrong type map to zero
// values, never to an error.
func RecordFromMap(doc map[string]any) *SourceRecord {
	rec := &SourceRecord{
		Body:       stringField(doc, "body"),
		Title:      stringField(doc, "title"),
		SourceName: stringField(doc, "sourceName"),
		URL:        stringField(doc, "url"),
		Action:     stringField(doc, "action"),
		Format:     stringField(doc, "format"),
		Updated:    stringField(doc, "updated"),
	}

	if meta, ok := doc["metadata"].(map[string]any); ok {
		rec.PageDescription = stringField(meta, "pageDescription")
		rec.ContentType = stringField(meta, "contentType")
		rec.Tags = stringSliceField(meta, "tags")
	}

	return rec
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func stringSliceField(m map[string]any, key string) []string {
	raw, ok := m[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
