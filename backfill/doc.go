// Package backfill computes embeddings for stored chunks that lack one.
//
// The Backfiller queries storage for pending chunks, embeds each chunk's
// content, and writes the updated chunk back one at a time. The per-chunk
// write gives crash-safety granularity of a single chunk: a failed run keeps
// every embedding completed before the failure, and a subsequent run resumes
// with only the remaining pending chunks.
//
// Embedding and store calls are wrapped in retry logic with exponential
// backoff; a chunk that still fails after all attempts halts the run.
package backfill
