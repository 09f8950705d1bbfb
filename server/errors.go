package server

import "errors"

var (
	// ErrPipelineRequired is returned when an ingestion pipeline is not provided.
	ErrPipelineRequired = errors.New("ingestion pipeline required")

	// ErrBackfillerRequired is returned when a backfiller is not provided.
	ErrBackfillerRequired = errors.New("backfiller required")

	// ErrResponderRequired is returned when a responder is not provided.
	ErrResponderRequired = errors.New("responder required")

	// ErrRepositoryRequired is returned when a chunk repository is not provided.
	ErrRepositoryRequired = errors.New("chunk repository required")
)
