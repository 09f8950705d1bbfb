// Package server exposes the ingestion, backfill, and FAQ operations over
// HTTP.
//
// Endpoints:
//
//	GET /api/docs/load        run ingestion from the configured feed, returns a status string
//	GET /api/docs/embeddings  run embedding backfill, empty body on success
//	GET /api/docs/stats       total and pending chunk counts as JSON
//	GET /faq?message=...      retrieval-augmented answer text
//
// Ingestion and backfill share the store as writers, so the server serializes
// them through a single-worker pool: concurrent triggers queue up and run one
// at a time. The FAQ path only reads the vector index and is not serialized.
package server
