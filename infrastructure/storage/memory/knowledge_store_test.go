package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/felixgeelhaar/orchestra-go/domain/knowledge"
	"github.com/felixgeelhaar/orchestra-go/infrastructure/storage/memory"
)

func doc(id string, embedding []float32) *knowledge.Document {
	return &knowledge.Document{
		ID:        id,
		Text:      "text for " + id,
		Source:    "test.md",
		Embedding: embedding,
	}
}

func TestKnowledgeStoreUpsertAndGet(t *testing.T) {
	store := memory.NewKnowledgeStore(3)
	ctx := context.Background()

	if err := store.Upsert(ctx, doc("a", []float32{1, 0, 0})); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	got, err := store.Get(ctx, "a")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Text != "text for a" {
		t.Errorf("text = %q", got.Text)
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set on upsert")
	}

	// Mutating the returned document must not affect the store.
	got.Embedding[0] = 99
	again, _ := store.Get(ctx, "a")
	if again.Embedding[0] != 1 {
		t.Error("store should hold its own copy of embeddings")
	}
}

func TestKnowledgeStoreSearchOrdering(t *testing.T) {
	store := memory.NewKnowledgeStore(0)
	ctx := context.Background()

	if err := store.UpsertBatch(ctx, []*knowledge.Document{
		doc("aligned", []float32{1, 0, 0}),
		doc("orthogonal", []float32{0, 1, 0}),
		doc("close", []float32{0.9, 0.1, 0}),
	}); err != nil {
		t.Fatalf("UpsertBatch: %v", err)
	}

	results, err := store.Search(ctx, []float32{1, 0, 0}, 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].ID != "aligned" {
		t.Errorf("top hit = %q, want aligned", results[0].ID)
	}
	if results[1].ID != "close" {
		t.Errorf("second hit = %q, want close", results[1].ID)
	}
	if results[0].Score <= results[1].Score {
		t.Error("results should be sorted by score descending")
	}
}

func TestKnowledgeStoreEmptySearch(t *testing.T) {
	store := memory.NewKnowledgeStore(3)

	_, err := store.Search(context.Background(), []float32{1, 0, 0}, 5)
	if !errors.Is(err, knowledge.ErrStoreEmpty) {
		t.Errorf("err = %v, want ErrStoreEmpty", err)
	}
}

func TestKnowledgeStoreDimensionMismatch(t *testing.T) {
	store := memory.NewKnowledgeStore(0)
	ctx := context.Background()

	_ = store.Upsert(ctx, doc("a", []float32{1, 0, 0}))

	if err := store.Upsert(ctx, doc("b", []float32{1, 0})); !errors.Is(err, knowledge.ErrDimensionMismatch) {
		t.Errorf("Upsert err = %v, want ErrDimensionMismatch", err)
	}
	if _, err := store.Search(ctx, []float32{1, 0}, 1); !errors.Is(err, knowledge.ErrDimensionMismatch) {
		t.Errorf("Search err = %v, want ErrDimensionMismatch", err)
	}
}

func TestKnowledgeStoreValidation(t *testing.T) {
	store := memory.NewKnowledgeStore(3)
	ctx := context.Background()

	if err := store.Upsert(ctx, doc("", []float32{1, 0, 0})); !errors.Is(err, knowledge.ErrInvalidID) {
		t.Errorf("empty ID err = %v", err)
	}
	if err := store.Upsert(ctx, doc("a", nil)); !errors.Is(err, knowledge.ErrInvalidEmbedding) {
		t.Errorf("empty embedding err = %v", err)
	}
	if _, err := store.Get(ctx, "missing"); !errors.Is(err, knowledge.ErrNotFound) {
		t.Errorf("missing Get err = %v", err)
	}
	if err := store.Delete(ctx, "missing"); !errors.Is(err, knowledge.ErrNotFound) {
		t.Errorf("missing Delete err = %v", err)
	}
}

func TestKnowledgeStoreCountAndClear(t *testing.T) {
	store := memory.NewKnowledgeStore(3)
	ctx := context.Background()

	_ = store.Upsert(ctx, doc("a", []float32{1, 0, 0}))
	_ = store.Upsert(ctx, doc("b", []float32{0, 1, 0}))

	count, err := store.Count(ctx)
	if err != nil || count != 2 {
		t.Fatalf("Count = %d, %v; want 2", count, err)
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.DocumentCount != 2 || stats.Dimension != 3 {
		t.Errorf("stats = %+v", stats)
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	count, _ = store.Count(ctx)
	if count != 0 {
		t.Errorf("count after clear = %d", count)
	}
}
