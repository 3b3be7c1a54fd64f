package knowledge

import "strings"

const (
	// DefaultChunkSize is the default chunk length in characters.
	DefaultChunkSize = 500

	// DefaultChunkOverlap is the default overlap between adjacent chunks.
	DefaultChunkOverlap = 50
)

// Chunk splits text into overlapping windows for embedding. Text at or
// under the chunk size is returned whole. Chunks are trimmed; empty
// chunks are dropped.
func Chunk(text string, size, overlap int) []string {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}
	step := size - overlap
	if step <= 0 {
		step = size
	}

	if len(text) <= size {
		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			return nil
		}
		return []string{trimmed}
	}

	var chunks []string
	for start := 0; start < len(text); start += step {
		end := start + size
		if end > len(text) {
			end = len(text)
		}
		chunk := strings.TrimSpace(text[start:end])
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		if end == len(text) {
			break
		}
	}
	return chunks
}
