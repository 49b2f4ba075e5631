package contract

import (
	"context"

	"legal-qa-be/internal/entity"
	"legal-qa-be/internal/repository/specification"

	"github.com/google/uuid"
)

type QASessionRepository interface {
	Create(ctx context.Context, session *entity.QASession) error
	Update(ctx context.Context, session *entity.QASession) error
	// UpdateStatus writes only the status column; the session row itself is
	// immutable after creation.
	UpdateStatus(ctx context.Context, id uuid.UUID, status entity.SessionStatus) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.QASession, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.QASession, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
