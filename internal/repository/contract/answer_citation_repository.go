package contract

import (
	"context"

	"legal-qa-be/internal/entity"
	"legal-qa-be/internal/repository/specification"

	"github.com/google/uuid"
)

type AnswerCitationRepository interface {
	CreateBulk(ctx context.Context, citations []*entity.AnswerCitation) error
	DeleteByAnswerId(ctx context.Context, answerId uuid.UUID) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.AnswerCitation, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
