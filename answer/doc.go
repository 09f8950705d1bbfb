// Package answer provides retrieval-augmented question answering over stored
// chunks.
//
// The Responder embeds an incoming question, retrieves the most similar
// embedded chunks from storage, and hands their contents to a generative
// answerer as grounding context. Retrieval reads only the vector index; it is
// independent of any ingestion or backfill run in flight.
package answer
