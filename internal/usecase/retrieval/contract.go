package retrieval

import (
	"context"

	"github.com/soff-cloud/playkb/internal/domain"
	"github.com/soff-cloud/playkb/internal/domain/answer"
	"github.com/soff-cloud/playkb/internal/domain/match"
)

// Embedder vectorizes the question text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Index is the vector index query contract. Candidates come back ordered
// by descending similarity and may legitimately be empty.
type Index interface {
	Query(ctx context.Context, vector []float32, limit int) ([]match.Candidate, error)
}

// Assembler builds one bounded answer string from ranked chunks.
type Assembler interface {
	Assemble(chunks []answer.Chunk, maxChars, maxChunks int) string
}
