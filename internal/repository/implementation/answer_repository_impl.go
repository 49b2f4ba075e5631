package implementation

import (
	"context"
	"errors"

	"legal-qa-be/internal/entity"
	"legal-qa-be/internal/mapper"
	"legal-qa-be/internal/model"
	"legal-qa-be/internal/repository/contract"
	"legal-qa-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AnswerRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.QAMapper
}

func NewAnswerRepository(db *gorm.DB) contract.AnswerRepository {
	return &AnswerRepositoryImpl{
		db:     db,
		mapper: mapper.NewQAMapper(),
	}
}

func (r *AnswerRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *AnswerRepositoryImpl) Create(ctx context.Context, answer *entity.Answer) error {
	m := r.mapper.AnswerToModel(answer)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*answer = *r.mapper.AnswerToEntity(m)
	return nil
}

func (r *AnswerRepositoryImpl) DeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("session_id = ?", sessionId).Delete(&model.Answer{}).Error
}

func (r *AnswerRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Answer, error) {
	var m model.Answer
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.AnswerToEntity(&m), nil
}

func (r *AnswerRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Answer{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
