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

type QASessionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.QAMapper
}

func NewQASessionRepository(db *gorm.DB) contract.QASessionRepository {
	return &QASessionRepositoryImpl{
		db:     db,
		mapper: mapper.NewQAMapper(),
	}
}

func (r *QASessionRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *QASessionRepositoryImpl) Create(ctx context.Context, session *entity.QASession) error {
	m := r.mapper.SessionToModel(session)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*session = *r.mapper.SessionToEntity(m)
	return nil
}

func (r *QASessionRepositoryImpl) Update(ctx context.Context, session *entity.QASession) error {
	m := r.mapper.SessionToModel(session)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*session = *r.mapper.SessionToEntity(m)
	return nil
}

func (r *QASessionRepositoryImpl) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.SessionStatus) error {
	return r.db.WithContext(ctx).
		Model(&model.QASession{}).
		Where("id = ?", id).
		Update("status", string(status)).Error
}

func (r *QASessionRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.QASession, error) {
	var m model.QASession
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.SessionToEntity(&m), nil
}

func (r *QASessionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.QASession, error) {
	var models []*model.QASession
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.QASession, len(models))
	for i, m := range models {
		entities[i] = r.mapper.SessionToEntity(m)
	}
	return entities, nil
}

func (r *QASessionRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.QASession{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
