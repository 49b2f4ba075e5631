package contract

import (
	"context"

	"legal-qa-be/internal/entity"
	"legal-qa-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ScoredPassage wraps a passage with the score earned in one retrieval leg.
type ScoredPassage struct {
	Passage *entity.Passage
	Score   float64
}

type PassageRepository interface {
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Passage, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Passage, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// SearchLexical runs full-text search ranked by ts_rank. Ordering is
	// deterministic: equal scores fall back to passage id.
	SearchLexical(ctx context.Context, query string, limit int, workspaceId uuid.UUID) ([]*ScoredPassage, error)
	// SearchSimilarWithScore runs dense search over pgvector, returning
	// cosine similarity per passage with the same deterministic ordering.
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, workspaceId uuid.UUID) ([]*ScoredPassage, error)
}
