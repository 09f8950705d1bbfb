// Package ingest provides the document ingestion pipeline.
//
// The Pipeline type reads a newline-delimited JSON source feed, splits each
// record's body into token-bounded chunks, normalizes every chunk into a
// core.Chunk with denormalized source metadata, and writes the results to
// storage in bulk. Chunks are stored without vectors; the backfill package
// attaches embeddings in a separate pass.
//
// Splitting is budget-approximate: word token costs are estimated as character
// length divided by four, and a chunk may exceed the budget by at most one
// oversized word. Words are never split.
package ingest
