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


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/arcova/docrag"
	"github.com/arcova/docrag/ai"
	"github.com/arcova/docrag/ai/openai"
	answerpkg "github.com/arcova/docrag/answer"
	"github.com/arcova/docrag/backfill"
	"github.com/arcova/docrag/ingest"
	"github.com/arcova/docrag/server"
	"github.com/arcova/docrag/storage/badger"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "docrag",
		Usage: "Documentation ingestion and retrieval-augmented FAQ service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Serve the ingestion, backfill, and FAQ endpoints over HTTP",
				Action: serveCommand,
				Flags: append(databaseFlags(), append(aiFlags(),
					&cli.StringFlag{
						Name:     "feed",
						Aliases:  []string{"f"},
						Usage:    "Path to newline-delimited JSON source feed",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "listen",
						Usage: "Listen address",
						Value: ":8080",
					},
					&cli.IntFlag{
						Name:  "max-tokens",
						Usage: "Token budget per chunk",
						Value: ingest.DefaultMaxTokens,
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Flush chunks to storage every N chunks (0 = single bulk write)",
						Value: 0,
					},
				)...),
			},
			{
				Name:   "load",
				Usage:  "Ingest a source feed into chunk storage",
				Action: loadCommand,
				Flags: append(databaseFlags(),
					&cli.StringFlag{
						Name:     "feed",
						Aliases:  []string{"f"},
						Usage:    "Path to newline-delimited JSON source feed",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "max-tokens",
						Usage: "Token budget per chunk",
						Value: ingest.DefaultMaxTokens,
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Flush chunks to storage every N chunks (0 = single bulk write)",
						Value: 0,
					},
				),
			},
			{
				Name:   "backfill",
				Usage:  "Compute embeddings for chunks that lack one",
				Action: backfillCommand,
				Flags: append(databaseFlags(),
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:     "embedding-model",
						Usage:    "Embedding model name",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N chunks",
						Value: 25,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				),
			},
			{
				Name:      "ask",
				Usage:     "Answer a question using the stored chunks",
				ArgsUsage: "<question>",
				Action:    askCommand,
				Flags: append(databaseFlags(), append(aiFlags(),
					&cli.IntFlag{
						Name:  "max-hits",
						Usage: "Maximum retrieved chunks used as context",
						Value: 5,
					},
				)...),
			},
			{
				Name:   "stats",
				Usage:  "Show total and pending chunk counts",
				Action: statsCommand,
				Flags:  databaseFlags(),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func databaseFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "db",
			Aliases:  []string{"d"},
			Usage:    "Path to BadgerDB database directory",
			Required: true,
		},
	}
}

func aiFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "embedding-host",
			Usage: "Embedding service host URL",
			Value: "http://localhost:11434/v1",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name",
			Value: "embeddinggemma",
		},
		&cli.StringFlag{
			Name:  "chat-host",
			Usage: "Chat service host URL",
			Value: "http://localhost:11434/v1",
		},
		&cli.StringFlag{
			Name:  "chat-model",
			Usage: "Chat model name",
			Value: "qwen2.5:3b",
		},
	}
}

func aiConfigFromFlags(c *cli.Context) *ai.Config {
	config := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithChatHost(c.String("chat-host")),
		ai.WithChatModel(c.String("chat-model")),
	)
	config.Normalize()
	return config
}

func serveCommand(c *cli.Context) error {
	aiConfig := aiConfigFromFlags(c)
	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	db, err := docrag.NewDatabase(c.String("db"), docrag.WithAIConfig(aiConfig))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	pipelineOpts := []ingest.Option{ingest.WithMaxTokens(c.Int("max-tokens"))}
	if c.Int("batch-size") > 0 {
		pipelineOpts = append(pipelineOpts, ingest.WithBatchSize(c.Int("batch-size")))
	}
	pipeline, err := db.NewIngestionPipeline(pipelineOpts...)
	if err != nil {
		return fmt.Errorf("failed to create ingestion pipeline: %w", err)
	}

	backfiller, err := db.NewBackfiller(nil, os.Stderr)
	if err != nil {
		return fmt.Errorf("failed to create backfiller: %w", err)
	}

	responder, err := db.NewResponder()
	if err != nil {
		return fmt.Errorf("failed to create responder: %w", err)
	}

	srv, err := server.NewServer(db.ChunkRepository(), pipeline, backfiller, responder, c.String("feed"))
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	defer srv.Release()

	slog.Info("listening", "addr", c.String("listen"), "feed", c.String("feed"))
	return http.ListenAndServe(c.String("listen"), srv.Handler())
}

func loadCommand(c *cli.Context) error {
	ctx := context.Background()

	backend, err := badger.OpenBackend(c.String("db"), false)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer backend.Close()

	repo, err := badger.NewChunkRepository(backend)
	if err != nil {
		return fmt.Errorf("failed to create repository: %w", err)
	}
	defer repo.Close()

	opts := []ingest.Option{ingest.WithMaxTokens(c.Int("max-tokens"))}
	if c.Int("batch-size") > 0 {
		opts = append(opts, ingest.WithBatchSize(c.Int("batch-size")))
	}
	pipeline, err := ingest.NewPipeline(repo, opts...)
	if err != nil {
		return fmt.Errorf("failed to create ingestion pipeline: %w", err)
	}

	feed, err := os.Open(c.String("feed"))
	if err != nil {
		return fmt.Errorf("failed to open feed: %w", err)
	}
	defer feed.Close()

	written, err := pipeline.Run(ctx, feed)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Ingested %d chunks from %s\n", written, c.String("feed"))
	return nil
}

func backfillCommand(c *cli.Context) error {
	ctx := context.Background()

	backend, err := badger.OpenBackend(c.String("db"), false)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer backend.Close()

	repo, err := badger.NewChunkRepository(backend)
	if err != nil {
		return fmt.Errorf("failed to create repository: %w", err)
	}
	defer repo.Close()

	// Chat settings are not needed for backfill; reuse the embedding host
	// with a placeholder model to satisfy validation.
	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithChatHost(c.String("embedding-host")),
		ai.WithChatModel("unused"),
	)
	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	embedder, err := openai.NewEmbedder(aiConfig)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	config := &backfill.Config{
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}
	if config.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if config.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	backfiller, err := backfill.NewBackfiller(repo, embedder, config, os.Stderr)
	if err != nil {
		return fmt.Errorf("failed to create backfiller: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Database: %s\n", c.String("db"))
	fmt.Fprintf(os.Stderr, "Embedding host: %s\n", c.String("embedding-host"))
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", c.String("embedding-model"))
	fmt.Fprintln(os.Stderr)

	if err := backfiller.Run(ctx); err != nil {
		return fmt.Errorf("backfill failed: %w", err)
	}
	return nil
}

func askCommand(c *cli.Context) error {
	question := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if question == "" {
		return fmt.Errorf("a question argument is required")
	}

	aiConfig := aiConfigFromFlags(c)
	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	db, err := docrag.NewDatabase(c.String("db"), docrag.WithAIConfig(aiConfig))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	responder, err := db.NewResponder(answerpkg.WithMaxHits(c.Int("max-hits")))
	if err != nil {
		return fmt.Errorf("failed to create responder: %w", err)
	}

	text, err := responder.Answer(context.Background(), question)
	if err != nil {
		return fmt.Errorf("failed to answer: %w", err)
	}

	fmt.Println(text)
	return nil
}

func statsCommand(c *cli.Context) error {
	backend, err := badger.OpenBackend(c.String("db"), false)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer backend.Close()

	repo, err := badger.NewChunkRepository(backend)
	if err != nil {
		return fmt.Errorf("failed to create repository: %w", err)
	}
	defer repo.Close()

	total, pending, err := repo.CountChunks(context.Background())
	if err != nil {
		return fmt.Errorf("failed to count chunks: %w", err)
	}

	fmt.Printf("chunks: %d\npending: %d\nembedded: %d\n", total, pending, total-pending)
	return nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
