package contract

import (
	"context"

	"legal-qa-be/internal/entity"
	"legal-qa-be/internal/repository/specification"

	"github.com/google/uuid"
)

type AnswerRepository interface {
	Create(ctx context.Context, answer *entity.Answer) error
	// DeleteBySessionId clears the previous answer of a session so a re-run
	// can overwrite it inside the same transaction.
	DeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Answer, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
