package sqlite_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/felixgeelhaar/orchestra-go/domain/knowledge"
	"github.com/felixgeelhaar/orchestra-go/infrastructure/storage/sqlite"
)

func testStore(t *testing.T) *sqlite.KnowledgeStore {
	t.Helper()

	cfg := sqlite.DefaultConfig()
	cfg.Path = filepath.Join(t.TempDir(), "knowledge.db")

	store, err := sqlite.NewKnowledgeStore(cfg)
	if err != nil {
		t.Fatalf("NewKnowledgeStore: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func doc(id string, embedding []float32) *knowledge.Document {
	return &knowledge.Document{
		ID:        id,
		Text:      "text for " + id,
		Source:    "corpus/" + id + ".md",
		Title:     "Title " + id,
		Embedding: embedding,
	}
}

func TestKnowledgeStoreRoundTrip(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	original := doc("a", []float32{0.25, -1.5, 3})
	if err := store.Upsert(ctx, original); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	got, err := store.Get(ctx, "a")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Text != original.Text || got.Source != original.Source || got.Title != original.Title {
		t.Errorf("got %+v", got)
	}
	if len(got.Embedding) != 3 {
		t.Fatalf("embedding length = %d", len(got.Embedding))
	}
	for i, v := range original.Embedding {
		if got.Embedding[i] != v {
			t.Errorf("embedding[%d] = %f, want %f", i, got.Embedding[i], v)
		}
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt should be persisted")
	}
}

func TestKnowledgeStoreUpsertReplaces(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	_ = store.Upsert(ctx, doc("a", []float32{1, 0, 0}))

	updated := doc("a", []float32{0, 1, 0})
	updated.Text = "updated text"
	if err := store.Upsert(ctx, updated); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	got, _ := store.Get(ctx, "a")
	if got.Text != "updated text" {
		t.Errorf("text = %q", got.Text)
	}

	count, _ := store.Count(ctx)
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}

func TestKnowledgeStoreSearch(t *testing.T) {
	store := testStore(t)
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
		t.Fatalf("got %d results", len(results))
	}
	if results[0].ID != "aligned" || results[1].ID != "close" {
		t.Errorf("order = %s, %s", results[0].ID, results[1].ID)
	}
	if results[0].Source == "" || results[0].Title == "" {
		t.Error("search results should carry source and title")
	}
}

func TestKnowledgeStoreSearchEmpty(t *testing.T) {
	store := testStore(t)

	_, err := store.Search(context.Background(), []float32{1, 0, 0}, 5)
	if !errors.Is(err, knowledge.ErrStoreEmpty) {
		t.Errorf("err = %v, want ErrStoreEmpty", err)
	}
}

func TestKnowledgeStoreSearchDimensionMismatch(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	_ = store.Upsert(ctx, doc("a", []float32{1, 0, 0}))

	_, err := store.Search(ctx, []float32{1, 0}, 5)
	if !errors.Is(err, knowledge.ErrDimensionMismatch) {
		t.Errorf("err = %v, want ErrDimensionMismatch", err)
	}
}

func TestKnowledgeStoreDelete(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	_ = store.Upsert(ctx, doc("a", []float32{1, 0, 0}))

	if err := store.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := store.Delete(ctx, "a"); !errors.Is(err, knowledge.ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
	if _, err := store.Get(ctx, "a"); !errors.Is(err, knowledge.ErrNotFound) {
		t.Errorf("Get err = %v, want ErrNotFound", err)
	}
}

func TestKnowledgeStoreStatsAndClear(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	_ = store.UpsertBatch(ctx, []*knowledge.Document{
		doc("a", []float32{1, 0, 0, 0}),
		doc("b", []float32{0, 1, 0, 0}),
	})

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.DocumentCount != 2 {
		t.Errorf("document count = %d", stats.DocumentCount)
	}
	if stats.Dimension != 4 {
		t.Errorf("dimension = %d, want 4", stats.Dimension)
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	count, _ := store.Count(ctx)
	if count != 0 {
		t.Errorf("count after clear = %d", count)
	}
}

func TestKnowledgeStoreValidation(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	if err := store.Upsert(ctx, doc("", []float32{1})); !errors.Is(err, knowledge.ErrInvalidID) {
		t.Errorf("empty ID err = %v", err)
	}
	if err := store.Upsert(ctx, doc("a", nil)); !errors.Is(err, knowledge.ErrInvalidEmbedding) {
		t.Errorf("empty embedding err = %v", err)
	}
}
