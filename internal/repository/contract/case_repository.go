package contract

import (
	"context"

	"legal-qa-be/internal/entity"
	"legal-qa-be/internal/repository/specification"

	"github.com/google/uuid"
)

type CaseRepository interface {
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Case, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Case, error)
	// FindByIds resolves case metadata for citation rendering in one query.
	FindByIds(ctx context.Context, ids []uuid.UUID) ([]*entity.Case, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
