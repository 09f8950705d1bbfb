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


package docrag

import (
	"io"
	"log/slog"

	"github.com/arcova/docrag/ai"
	"github.com/arcova/docrag/ai/openai"
	"github.com/arcova/docrag/answer"
	"github.com/arcova/docrag/backfill"
	"github.com/arcova/docrag/ingest"
	"github.com/arcova/docrag/storage"
	"github.com/arcova/docrag/storage/badger"
)

// Database wires the storage backend, chunk repository, and AI provider
// together and hands out the pipeline components built on top of them.
type Database struct {
	backend   *badger.Backend
	chunkRepo storage.ChunkRepository
	provider  ai.Provider
	logger    *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig *ai.Config
	inMemory bool
}

// WithAIConfig sets the AI service configuration.
// Default is ai.DefaultConfig().
func WithAIConfig(config *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// WithInMemoryStorage opens the store in memory, discarding all data on
// close. Intended for tests and experiments.
func WithInMemoryStorage() DatabaseOption {
	return func(o *databaseOptions) {
		o.inMemory = true
	}
}

func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	// Apply options
	options := &databaseOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	// Open backend
	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	// Create chunk repository
	chunkRepo, err := badger.NewChunkRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	// Create AI provider with configured settings
	provider, err := openai.NewProvider(options.aiConfig)
	if err != nil {
		chunkRepo.Close()
		backend.Close()
		return nil, err
	}

	return &Database{
		backend:   backend,
		chunkRepo: chunkRepo,
		provider:  provider,
		logger:    slog.Default(),
	}, nil
}

func (db *Database) Close() error {
	// Close AI provider first
	if err := db.provider.Close(); err != nil {
		db.logger.Error("error closing AI provider", "err", err)
	}

	// Close repository
	if err := db.chunkRepo.Close(); err != nil {
		db.logger.Error("error closing chunk repository", "err", err)
		return err
	}

	// Close backend
	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (db *Database) ChunkRepository() storage.ChunkRepository {
	return db.chunkRepo
}

func (db *Database) Provider() ai.Provider {
	return db.provider
}

func (db *Database) NewIngestionPipeline(opts ...ingest.Option) (*ingest.Pipeline, error) {
	return ingest.NewPipeline(db.chunkRepo, opts...)
}

func (db *Database) NewBackfiller(config *backfill.Config, progress io.Writer) (*backfill.Backfiller, error) {
	return backfill.NewBackfiller(db.chunkRepo, db.provider.Embedder(), config, progress)
}

func (db *Database) NewResponder(opts ...answer.Option) (*answer.Responder, error) {
	return answer.NewResponder(db.chunkRepo, db.provider, opts...)
}
