package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"math"
	"sort"
	"time"

	"github.com/felixgeelhaar/orchestra-go/domain/knowledge"
)

// KnowledgeStore is a SQLite-backed implementation of knowledge.Store.
// Embeddings are stored as little-endian float32 BLOBs; similarity search
// scans all rows and ranks by cosine similarity in Go. That is fine for
// the corpus sizes a local knowledge base holds.
type KnowledgeStore struct {
	db *sql.DB
}

// NewKnowledgeStore creates a SQLite knowledge store with the given
// configuration.
func NewKnowledgeStore(cfg Config, opts ...Option) (*KnowledgeStore, error) {
	for _, opt := range opts {
		opt(&cfg)
	}

	db, err := openDB(cfg)
	if err != nil {
		return nil, err
	}

	s := &KnowledgeStore{db: db}
	if cfg.AutoMigrate {
		if err := s.migrate(); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return s, nil
}

// NewKnowledgeStoreFromDB creates a knowledge store from an existing
// database connection.
func NewKnowledgeStoreFromDB(db *sql.DB) (*KnowledgeStore, error) {
	s := &KnowledgeStore{db: db}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *KnowledgeStore) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS documents (
			id TEXT PRIMARY KEY,
			text TEXT NOT NULL,
			source TEXT,
			title TEXT,
			embedding BLOB NOT NULL,
			created_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_documents_source ON documents(source);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return errors.Join(ErrMigrationFailed, err)
	}
	return nil
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

	createdAt := doc.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (id, text, source, title, embedding, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   text = excluded.text,
		   source = excluded.source,
		   title = excluded.title,
		   embedding = excluded.embedding`,
		doc.ID, doc.Text, doc.Source, doc.Title,
		encodeEmbedding(doc.Embedding), createdAt.Unix(),
	)
	return err
}

// UpsertBatch stores or updates multiple documents in one transaction.
func (s *KnowledgeStore) UpsertBatch(ctx context.Context, docs []*knowledge.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO documents (id, text, source, title, embedding, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   text = excluded.text,
		   source = excluded.source,
		   title = excluded.title,
		   embedding = excluded.embedding`)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for _, doc := range docs {
		if doc.ID == "" {
			return knowledge.ErrInvalidID
		}
		if len(doc.Embedding) == 0 {
			return knowledge.ErrInvalidEmbedding
		}
		createdAt := doc.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now()
		}
		if _, err := stmt.ExecContext(ctx,
			doc.ID, doc.Text, doc.Source, doc.Title,
			encodeEmbedding(doc.Embedding), createdAt.Unix(),
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Search finds similar documents by cosine similarity, highest first.
func (s *KnowledgeStore) Search(ctx context.Context, embedding []float32, topK int) ([]knowledge.SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(embedding) == 0 {
		return nil, knowledge.ErrInvalidEmbedding
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, text, source, title, embedding FROM documents`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var results []knowledge.SearchResult
	for rows.Next() {
		var (
			id, text string
			source   sql.NullString
			title    sql.NullString
			blob     []byte
		)
		if err := rows.Scan(&id, &text, &source, &title, &blob); err != nil {
			return nil, err
		}

		stored, err := decodeEmbedding(blob)
		if err != nil {
			return nil, err
		}
		if len(stored) != len(embedding) {
			return nil, knowledge.ErrDimensionMismatch
		}

		results = append(results, knowledge.SearchResult{
			ID:     id,
			Text:   text,
			Score:  cosine(embedding, stored),
			Source: source.String,
			Title:  title.String,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(results) == 0 {
		return nil, knowledge.ErrStoreEmpty
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

	var (
		doc       knowledge.Document
		source    sql.NullString
		title     sql.NullString
		blob      []byte
		createdAt int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, text, source, title, embedding, created_at FROM documents WHERE id = ?`, id,
	).Scan(&doc.ID, &doc.Text, &source, &title, &blob, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, knowledge.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	doc.Source = source.String
	doc.Title = title.String
	doc.CreatedAt = time.Unix(createdAt, 0)
	if doc.Embedding, err = decodeEmbedding(blob); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Delete removes a document by ID.
func (s *KnowledgeStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if id == "" {
		return knowledge.ErrInvalidID
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return knowledge.ErrNotFound
	}
	return nil
}

// Count returns the total number of documents in the store.
func (s *KnowledgeStore) Count(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&count)
	return count, err
}

// Clear removes all documents.
func (s *KnowledgeStore) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `DELETE FROM documents`)
	return err
}

// Stats implements knowledge.StatsProvider. Dimension is read from an
// arbitrary stored embedding.
func (s *KnowledgeStore) Stats(ctx context.Context) (knowledge.Stats, error) {
	count, err := s.Count(ctx)
	if err != nil {
		return knowledge.Stats{}, err
	}

	stats := knowledge.Stats{DocumentCount: count}
	if count > 0 {
		var blob []byte
		if err := s.db.QueryRowContext(ctx,
			`SELECT embedding FROM documents LIMIT 1`).Scan(&blob); err != nil {
			return knowledge.Stats{}, err
		}
		stats.Dimension = len(blob) / 4
	}
	return stats, nil
}

// Close closes the database connection.
func (s *KnowledgeStore) Close() error {
	return s.db.Close()
}

// encodeEmbedding packs a vector as little-endian float32 bytes.
func encodeEmbedding(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// decodeEmbedding unpacks a little-endian float32 BLOB.
func decodeEmbedding(buf []byte) ([]float32, error) {
	if len(buf)%4 != 0 {
		return nil, knowledge.ErrInvalidEmbedding
	}
	v := make([]float32, len(buf)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return v, nil
}

func cosine(a, b []float32) float32 {
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

var (
	_ knowledge.Store         = (*KnowledgeStore)(nil)
	_ knowledge.StatsProvider = (*KnowledgeStore)(nil)
)
