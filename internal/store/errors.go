package store

import "errors"

// Common store errors.
var (
	// ErrDocumentMissing is returned when the persisted document does not
	// exist yet. Loading treats this as an empty collection, not a crash.
	ErrDocumentMissing = errors.New("homework document does not exist")

	// ErrDocumentMalformed is returned when the document exists but cannot
	// be decoded as either supported shape.
	ErrDocumentMalformed = errors.New("homework document is malformed")
)
