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


package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/arcova/docrag/answer"
	"github.com/arcova/docrag/backfill"
	"github.com/arcova/docrag/ingest"
	"github.com/arcova/docrag/storage"
	"github.com/panjf2000/ants/v2"
)

// defaultQuestion is answered when the faq endpoint is called without a
// message parameter.
const defaultQuestion = "How to analyze time-series data with Python and MongoDB? Explain all the steps."

const (
	loadSuccessBody   = "All documents added successfully!"
	loadFailurePrefix = "An error occurred while adding documents: "
)

// Server serves the ingestion, backfill, and FAQ operations over HTTP.
type Server struct {
	repository      storage.ChunkRepository
	pipeline        *ingest.Pipeline
	backfiller      *backfill.Backfiller
	responder       *answer.Responder
	feedPath        string
	defaultQuestion string
	writers         *ants.Pool
	logger          *slog.Logger
}

// Option configures a Server.
type Option func(*Server) error

// WithDefaultQuestion sets the question answered when the faq endpoint is
// called without a message parameter.
func WithDefaultQuestion(question string) Option {
	return func(s *Server) error {
		if question != "" {
			s.defaultQuestion = question
		}
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger.With("component", "server")
		return nil
	}
}

// NewServer creates a new server. feedPath is the newline-delimited JSON
// source feed read on each load request.
func NewServer(
	repository storage.ChunkRepository,
	pipeline *ingest.Pipeline,
	backfiller *backfill.Backfiller,
	responder *answer.Responder,
	feedPath string,
	opts ...Option,
) (*Server, error) {
	if repository == nil {
		return nil, ErrRepositoryRequired
	}
	if pipeline == nil {
		return nil, ErrPipelineRequired
	}
	if backfiller == nil {
		return nil, ErrBackfillerRequired
	}
	if responder == nil {
		return nil, ErrResponderRequired
	}

	// Single worker: ingestion and backfill both write to the store, so
	// concurrent triggers are serialized rather than coordinated ad hoc.
	writers, err := ants.NewPool(1)
	if err != nil {
		return nil, err
	}

	s := &Server{
		repository:      repository,
		pipeline:        pipeline,
		backfiller:      backfiller,
		responder:       responder,
		feedPath:        feedPath,
		defaultQuestion: defaultQuestion,
		writers:         writers,
		logger:          slog.Default().With("component", "server"),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			writers.Release()
			return nil, err
		}
	}

	return s, nil
}

// Handler returns the HTTP handler for all endpoints.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/docs/load", s.handleLoad)
	mux.HandleFunc("GET /api/docs/embeddings", s.handleEmbeddings)
	mux.HandleFunc("GET /api/docs/stats", s.handleStats)
	mux.HandleFunc("GET /faq", s.handleFaq)
	return mux
}

// Release releases the writer pool.
// The server should not be used after calling Release.
func (s *Server) Release() {
	s.writers.Release()
}

// runExclusive executes fn on the single-worker pool and waits for it.
// At most one writer pipeline runs at any time; callers queue in order.
func (s *Server) runExclusive(fn func() error) error {
	done := make(chan error, 1)
	if err := s.writers.Submit(func() { done <- fn() }); err != nil {
		return err
	}
	return <-done
}

// handleLoad runs ingestion over the configured feed. Failures are converted
// to a descriptive status string, never surfaced as an HTTP error.
func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	err := s.runExclusive(func() error {
		feed, err := os.Open(s.feedPath)
		if err != nil {
			return err
		}
		defer feed.Close()

		_, err = s.pipeline.Run(r.Context(), feed)
		return err
	})

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err != nil {
		s.logger.Error("ingestion failed", "err", err)
		fmt.Fprint(w, loadFailurePrefix+err.Error())
		return
	}
	fmt.Fprint(w, loadSuccessBody)
}

// handleEmbeddings runs the embedding backfill. Unlike load, failures are not
// masked: the error text is returned with a 500 status.
func (s *Server) handleEmbeddings(w http.ResponseWriter, r *http.Request) {
	err := s.runExclusive(func() error {
		return s.backfiller.Run(r.Context())
	})
	if err != nil {
		s.logger.Error("backfill failed", "err", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	total, pending, err := s.repository.CountChunks(r.Context())
	if err != nil {
		s.logger.Error("stats query failed", "err", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int{
		"chunks":  total,
		"pending": pending,
	})
}

func (s *Server) handleFaq(w http.ResponseWriter, r *http.Request) {
	question := r.URL.Query().Get("message")
	if question == "" {
		question = s.defaultQuestion
	}

	text, err := s.responder.Answer(r.Context(), question)
	if err != nil {
		s.logger.Error("answer failed", "err", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, text)
}
