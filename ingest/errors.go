package ingest

import "errors"

var (
	// ErrRepositoryRequired is returned when a chunk repository is not provided.
	ErrRepositoryRequired = errors.New("chunk repository required")

	// ErrMalformedFeedLine is returned when a feed line cannot be parsed as JSON.
	ErrMalformedFeedLine = errors.New("malformed feed line")

	// ErrInvalidUpdatedTimestamp is returned when a record carries an updated
	// field that is not a valid RFC 3339 date-time.
	ErrInvalidUpdatedTimestamp = errors.New("invalid updated timestamp")
)
