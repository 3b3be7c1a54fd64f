package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/orchestra-go/domain/capability"
	"github.com/felixgeelhaar/orchestra-go/domain/knowledge"
)

// LocalResult is one row of a local_search response.
type LocalResult struct {
	ID      string  `json:"id"`
	Content string  `json:"content"`
	Score   float32 `json:"score"`
	Source  string  `json:"source"`
	Title   string  `json:"title"`
}

// NewLocalSearch creates the local_search capability: RAG over the
// knowledge store. The query is embedded with the retrieval-query task
// type; documents were embedded at ingest time.
func NewLocalSearch(store knowledge.Store, embedder knowledge.Embedder) capability.Capability {
	return capability.NewBuilder("local_search").
		WithDescription(
			"Searches the local knowledge base (RAG) for information. "+
				"Use for company documents, internal knowledge, or when privacy is required.").
		WithParameter("query", "string", "The search query to find relevant documents", true).
		WithParameter("top_k", "integer", "Number of results to return (default: 3)", false).
		WithEstimatedLatency(200 * time.Millisecond).
		Local().
		Idempotent().
		Cacheable().
		WithHandler(func(ctx context.Context, params map[string]any) (capability.Result, error) {
			return localSearch(ctx, store, embedder, params), nil
		}).
		MustBuild()
}

func localSearch(ctx context.Context, store knowledge.Store, embedder knowledge.Embedder, params map[string]any) capability.Result {
	query, _ := params["query"].(string)
	topK := intParam(params, "top_k", 3)
	if topK < 1 {
		topK = 1
	}

	vector, err := embedder.EmbedQuery(ctx, query)
	if err != nil {
		return capability.NewErrorResult(fmt.Sprintf("Query embedding failed: %v", err))
	}

	hits, err := store.Search(ctx, vector, topK)
	if err != nil {
		if errors.Is(err, knowledge.ErrStoreEmpty) {
			return capability.NewErrorResult("Knowledge base is empty. Run 'orchestra ingest' to index documents.")
		}
		return capability.NewErrorResult(fmt.Sprintf("Knowledge base search failed: %v", err))
	}

	results := make([]LocalResult, 0, len(hits))
	for _, h := range hits {
		results = append(results, LocalResult{
			ID:      h.ID,
			Content: h.Text,
			Score:   h.Score,
			Source:  h.Source,
			Title:   h.Title,
		})
	}

	return capability.NewResult(map[string]any{
		"query":         query,
		"results":       results,
		"total_results": len(results),
	})
}
