// Copyright 2025 Arcova Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ingest

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/arcova/docrag/core"
	"github.com/arcova/docrag/storage"
)

// feedScanBufferSize bounds a single feed line. Long-form document bodies
// arrive as one line each, so the default bufio limit is far too small.
const feedScanBufferSize = 4 * 1024 * 1024

// Pipeline orchestrates the ingestion of a source feed into chunk storage.
// It drives the splitter and normalizer per record and writes the resulting
// chunks in bulk.
type Pipeline struct {
	repository storage.ChunkRepository
	maxTokens  int
	batchSize  int
	logger     *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithMaxTokens sets the token budget per chunk.
// Default is DefaultMaxTokens.
func WithMaxTokens(maxTokens int) Option {
	return func(p *Pipeline) error {
		if maxTokens < 1 {
			return fmt.Errorf("max tokens must be positive, got %d", maxTokens)
		}
		p.maxTokens = maxTokens
		return nil
	}
}

// WithBatchSize enables streaming writes: accumulated chunks are flushed to
// storage every size chunks instead of in one bulk write at the end.
//
// The default of 0 keeps all-or-nothing semantics: nothing is written until
// the entire feed has been read, so a failure anywhere leaves the store
// untouched. A positive size bounds memory and preserves partial progress on
// failure, at the cost of that guarantee.
func WithBatchSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 0 {
			return fmt.Errorf("batch size must not be negative, got %d", size)
		}
		p.batchSize = size
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger.With("component", "ingest-pipeline")
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline writing to the given repository.
func NewPipeline(repository storage.ChunkRepository, opts ...Option) (*Pipeline, error) {
	if repository == nil {
		return nil, ErrRepositoryRequired
	}

	p := &Pipeline{
		repository: repository,
		maxTokens:  DefaultMaxTokens,
		logger:     slog.Default().With("component", "ingest-pipeline"),
	}

	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// Run ingests the whole feed and returns the number of chunks written.
//
// The feed is newline-delimited JSON, one source record per line; blank lines
// are skipped. A malformed line or an unparseable updated timestamp aborts
// the run. In the default all-or-nothing mode an aborted run writes nothing;
// with a positive batch size, batches flushed before the failure remain
// persisted.
func (p *Pipeline) Run(ctx context.Context, feed io.Reader) (int, error) {
	scanner := bufio.NewScanner(feed)
	scanner.Buffer(make([]byte, 64*1024), feedScanBufferSize)

	var pending []*core.Chunk
	written := 0
	lineNo := 0

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return written, err
		}

		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var doc map[string]any
		if err := json.Unmarshal(line, &doc); err != nil {
			return written, fmt.Errorf("%w: line %d: %v", ErrMalformedFeedLine, lineNo, err)
		}

		record := RecordFromMap(doc)
		for _, chunkText := range SplitChunks(record.Body, p.maxTokens) {
			chunk, err := Normalize(record, chunkText)
			if err != nil {
				return written, fmt.Errorf("line %d: %w", lineNo, err)
			}
			pending = append(pending, chunk)
		}

		if p.batchSize > 0 && len(pending) >= p.batchSize {
			n, err := p.flush(ctx, pending)
			written += n
			if err != nil {
				return written, err
			}
			pending = pending[:0]
		}
	}

	if err := scanner.Err(); err != nil {
		return written, fmt.Errorf("reading feed: %w", err)
	}

	n, err := p.flush(ctx, pending)
	written += n
	if err != nil {
		return written, err
	}

	p.logger.Info("ingestion complete", "lines", lineNo, "chunks", written)
	return written, nil
}

func (p *Pipeline) flush(ctx context.Context, chunks []*core.Chunk) (int, error) {
	if len(chunks) == 0 {
		return 0, nil
	}

	added, err := p.repository.AddChunks(ctx, chunks...)
	if err != nil {
		return 0, fmt.Errorf("writing chunks: %w", err)
	}

	if len(added) < len(chunks) {
		p.logger.Debug("skipped duplicate chunks", "submitted", len(chunks), "inserted", len(added))
	}
	return len(added), nil
}
