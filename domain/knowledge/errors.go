package knowledge

import "errors"

// Domain errors for knowledge storage.
var (
	// ErrNotFound indicates the requested document was not found.
	ErrNotFound = errors.New("document not found")

	// ErrInvalidID indicates the document ID is empty or invalid.
	ErrInvalidID = errors.New("invalid document ID")

	// ErrInvalidEmbedding indicates the embedding is empty or invalid.
	ErrInvalidEmbedding = errors.New("invalid embedding")

	// ErrDimensionMismatch indicates the embedding dimension does not match the store.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrStoreEmpty indicates a search against a store with no documents.
	ErrStoreEmpty = errors.New("knowledge store is empty")
)
