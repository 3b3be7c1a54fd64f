package memory

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/felixgeelhaar/orchestra-go/domain/knowledge"
)

// KnowledgeStore is an in-memory document store with cosine similarity
// search. It backs tests and small corpora; persistent corpora use the
// sqlite store.
type KnowledgeStore struct {
	docs      map[string]*knowledge.Document
	dimension int // 0 = auto-detect from first document
	mu        sync.RWMutex
}

// NewKnowledgeStore creates a new in-memory knowledge store. If dimension
// is 0, it is auto-detected from the first upserted document.
func NewKnowledgeStore(dimension int) *KnowledgeStore {
	return &KnowledgeStore{
		docs:      make(map[string]*knowledge.Document),
		dimension: dimension,
	}
}

// Upsert stores or updates a document.
func (s *KnowledgeStore) Upsert(ctx context.Context, doc *knowledge.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if doc.ID == "" {
		return knowledge.ErrInvalidID
	}
	if len(doc.Embedding) == 0 {
		return knowledge.ErrInvalidEmbedding
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dimension == 0 {
		s.dimension = len(doc.Embedding)
	} else if len(doc.Embedding) != s.dimension {
		return knowledge.ErrDimensionMismatch
	}

	stored := copyDocument(doc)
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}

	s.docs[doc.ID] = stored
	return nil
}

// UpsertBatch stores or updates multiple documents.
func (s *KnowledgeStore) UpsertBatch(ctx context.Context, docs []*knowledge.Document) error {
	for _, doc := range docs {
		if err := s.Upsert(ctx, doc); err != nil {
			return err
		}
	}
	return nil
}

// Search finds similar documents by cosine similarity, highest first.
func (s *KnowledgeStore) Search(ctx context.Context, embedding []float32, topK int) ([]knowledge.SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(embedding) == 0 {
		return nil, knowledge.ErrInvalidEmbedding
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.docs) == 0 {
		return nil, knowledge.ErrStoreEmpty
	}
	if s.dimension > 0 && len(embedding) != s.dimension {
		return nil, knowledge.ErrDimensionMismatch
	}

	results := make([]knowledge.SearchResult, 0, len(s.docs))
	for _, doc := range s.docs {
		results = append(results, knowledge.SearchResult{
			ID:     doc.ID,
			Text:   doc.Text,
			Score:  cosineSimilarity(embedding, doc.Embedding),
			Source: doc.Source,
			Title:  doc.Title,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if topK > 0 && topK < len(results) {
		results = results[:topK]
	}
	return results, nil
}

// Get retrieves a document by ID.
func (s *KnowledgeStore) Get(ctx context.Context, id string) (*knowledge.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, knowledge.ErrInvalidID
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[id]
	if !ok {
		return nil, knowledge.ErrNotFound
	}
	return copyDocument(doc), nil
}

// Delete removes a document by ID.
func (s *KnowledgeStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if id == "" {
		return knowledge.ErrInvalidID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[id]; !ok {
		return knowledge.ErrNotFound
	}
	delete(s.docs, id)
	return nil
}

// Count returns the total number of documents in the store.
func (s *KnowledgeStore) Count(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.docs)), nil
}

// Clear removes all documents.
func (s *KnowledgeStore) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = make(map[string]*knowledge.Document)
	return nil
}

// Stats implements knowledge.StatsProvider.
func (s *KnowledgeStore) Stats(ctx context.Context) (knowledge.Stats, error) {
	if err := ctx.Err(); err != nil {
		return knowledge.Stats{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return knowledge.Stats{
		DocumentCount: int64(len(s.docs)),
		Dimension:     s.dimension,
	}, nil
}

// cosineSimilarity calculates the cosine similarity between two vectors.
// Returns a value between -1 and 1, where 1 means identical direction.
func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}

func copyDocument(doc *knowledge.Document) *knowledge.Document {
	c := &knowledge.Document{
		ID:        doc.ID,
		Text:      doc.Text,
		Source:    doc.Source,
		Title:     doc.Title,
		Embedding: make([]float32, len(doc.Embedding)),
		CreatedAt: doc.CreatedAt,
	}
	copy(c.Embedding, doc.Embedding)
	return c
}

var (
	_ knowledge.Store         = (*KnowledgeStore)(nil)
	_ knowledge.StatsProvider = (*KnowledgeStore)(nil)
)
