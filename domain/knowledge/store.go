// Package knowledge provides domain models for the local knowledge base.
// Documents are chunked text with embeddings; retrieval is cosine
// similarity over those embeddings.
package knowledge

import (
	"context"
	"time"
)

// Document is a single embedded chunk of knowledge.
type Document struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Source    string    `json:"source,omitempty"`
	Title     string    `json:"title,omitempty"`
	Embedding []float32 `json:"embedding"`
	CreatedAt time.Time `json:"created_at"`
}

// SearchResult is a similarity search hit.
type SearchResult struct {
	ID     string  `json:"id"`
	Text   string  `json:"text"`
	Score  float32 `json:"score"` // Cosine similarity [0,1]
	Source string  `json:"source,omitempty"`
	Title  string  `json:"title,omitempty"`
}

// Store defines the interface for document storage and retrieval.
type Store interface {
	// Upsert stores or updates a document.
	Upsert(ctx context.Context, doc *Document) error

	// UpsertBatch stores or updates multiple documents.
	UpsertBatch(ctx context.Context, docs []*Document) error

	// Search finds similar documents by embedding using cosine similarity.
	// Results are sorted by similarity score, highest first.
	Search(ctx context.Context, embedding []float32, topK int) ([]SearchResult, error)

	// Get retrieves a document by ID.
	Get(ctx context.Context, id string) (*Document, error)

	// Delete removes a document by ID.
	Delete(ctx context.Context, id string) error

	// Count returns the total number of documents in the store.
	Count(ctx context.Context) (int64, error)

	// Clear removes all documents.
	Clear(ctx context.Context) error
}

// Stats provides statistics about the store.
type Stats struct {
	DocumentCount int64 `json:"document_count"`
	Dimension     int   `json:"dimension"`
}

// StatsProvider is an optional interface for stores that can provide statistics.
type StatsProvider interface {
	Stats(ctx context.Context) (Stats, error)
}

// Embedder produces embeddings for documents and queries. Document and
// query embedding are separate operations because some backends optimize
// them differently.
type Embedder interface {
	// EmbedDocuments embeds a batch of document texts.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedQuery embeds a single search query.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)

	// Dimension returns the embedding dimensionality.
	Dimension() int
}
