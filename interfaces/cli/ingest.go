package cli

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/orchestra-go/domain/knowledge"
	"github.com/felixgeelhaar/orchestra-go/infrastructure/config"
)

// ingestExtensions are the file types the ingest walk picks up.
var ingestExtensions = map[string]bool{
	".txt":  true,
	".md":   true,
	".json": true,
	".go":   true,
	".py":   true,
	".yaml": true,
	".yml":  true,
}

// embedBatchSize caps texts per embedding request.
const embedBatchSize = 100

// newIngestCmd creates the knowledge ingestion command.
func (a *App) newIngestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest <dir>",
		Short: "Chunk, embed, and index documents into the knowledge base",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			assembly, err := config.NewBuilder(cfg).Build()
			if err != nil {
				return err
			}
			defer assembly.Close(cmd.Context())

			if assembly.Embedder == nil {
				return fmt.Errorf("ingestion requires an embedding provider: set models.gemini_api_key")
			}

			var files, chunks int
			err = filepath.WalkDir(args[0], func(path string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if d.IsDir() || !ingestExtensions[filepath.Ext(path)] {
					return nil
				}

				n, err := a.ingestFile(cmd, assembly, cfg, path)
				if err != nil {
					return fmt.Errorf("ingesting %s: %w", path, err)
				}
				files++
				chunks += n
				return nil
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(a.stdout, "Indexed %d chunks from %d files.\n", chunks, files)
			return nil
		},
	}
}

func (a *App) ingestFile(cmd *cobra.Command, assembly *config.Assembly, cfg *config.Config, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	texts := knowledge.Chunk(string(data), cfg.VectorStore.ChunkSize, cfg.VectorStore.ChunkOverlap)
	if len(texts) == 0 {
		return 0, nil
	}

	title := filepath.Base(path)
	indexed := 0
	for start := 0; start < len(texts); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch := texts[start:end]

		vectors, err := assembly.Embedder.EmbedDocuments(cmd.Context(), batch)
		if err != nil {
			return indexed, err
		}

		docs := make([]*knowledge.Document, len(batch))
		for i, text := range batch {
			docs[i] = &knowledge.Document{
				ID:        chunkID(path, start+i),
				Text:      text,
				Source:    path,
				Title:     title,
				Embedding: vectors[i],
				CreatedAt: time.Now(),
			}
		}
		if err := assembly.Store.UpsertBatch(cmd.Context(), docs); err != nil {
			return indexed, err
		}
		indexed += len(docs)
	}

	fmt.Fprintf(a.stdout, "  %s: %d chunks\n", path, indexed)
	return indexed, nil
}

// chunkID derives a stable document ID so re-ingesting a file updates
// its chunks instead of duplicating them.
func chunkID(path string, index int) string {
	sum := sha256.Sum256(fmt.Appendf(nil, "%s#%d", path, index))
	return hex.EncodeToString(sum[:16])
}
