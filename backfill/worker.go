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


package backfill

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/arcova/docrag/ai"
	"github.com/arcova/docrag/storage"
)

// Config holds configuration for the backfill operation.
type Config struct {
	// ReportInterval is how often to report progress (number of chunks)
	ReportInterval int

	// MaxRetries is the maximum number of retry attempts for failed operations
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		ReportInterval: 25,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Backfiller embeds all stored chunks that currently lack a vector.
type Backfiller struct {
	repo     storage.ChunkRepository
	embedder ai.Embedder
	config   *Config
	progress io.Writer
	logger   *slog.Logger
}

// NewBackfiller creates a new backfiller.
// progress: where to write progress output (typically os.Stderr)
func NewBackfiller(repo storage.ChunkRepository, embedder ai.Embedder, config *Config, progress io.Writer) (*Backfiller, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if config == nil {
		config = DefaultConfig()
	}
	if progress == nil {
		progress = io.Discard
	}

	return &Backfiller{
		repo:     repo,
		embedder: embedder,
		config:   config,
		progress: progress,
		logger:   slog.Default().With("component", "backfiller"),
	}, nil
}

// Run embeds every pending chunk, one write per chunk.
//
// A chunk whose embedding or write still fails after the configured retries
// halts the run; chunks completed earlier stay embedded, so rerunning picks
// up where the failed run stopped. Running against a store with no pending
// chunks is a no-op.
func (b *Backfiller) Run(ctx context.Context) error {
	pending, err := b.repo.GetChunksWithoutVector(ctx)
	if err != nil {
		return fmt.Errorf("querying pending chunks: %w", err)
	}

	if len(pending) == 0 {
		fmt.Fprintf(b.progress, "No chunks awaiting embeddings (0 pending)\n")
		return nil
	}

	fmt.Fprintf(b.progress, "Starting embedding backfill of %d chunks\n", len(pending))

	tracker := NewProgressTracker(b.progress, len(pending), b.config.ReportInterval)
	tracker.Start()

	for _, chunk := range pending {
		if err := ctx.Err(); err != nil {
			return err
		}

		var vector []float32
		err := RetryWithBackoff(ctx, func() error {
			var embedErr error
			vector, embedErr = b.embedder.EmbedText(ctx, chunk.Content)
			if embedErr != nil {
				return embedErr
			}
			if len(vector) == 0 {
				return ErrEmptyEmbedding
			}
			return nil
		}, b.config.MaxRetries, b.config.RetryDelay)
		if err != nil {
			return fmt.Errorf("embedding chunk %s: %w", chunk.Id, err)
		}

		chunk.Vector = vector

		// One write per chunk keeps resumability at chunk granularity
		err = RetryWithBackoff(ctx, func() error {
			_, updateErr := b.repo.UpdateChunks(ctx, chunk)
			return updateErr
		}, b.config.MaxRetries, b.config.RetryDelay)
		if err != nil {
			return fmt.Errorf("persisting chunk %s: %w", chunk.Id, err)
		}

		tracker.Increment(1)
	}

	tracker.Finish()

	elapsed := tracker.Elapsed()
	rate := float64(len(pending)) / elapsed.Seconds()
	fmt.Fprintf(b.progress, "Backfill complete. Embedded %d chunks in %v (%.1f chunks/sec)\n",
		len(pending), elapsed.Round(time.Second), rate)
	b.logger.Info("backfill complete", "chunks", len(pending))

	return nil
}
