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

type CaseRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.CaseMapper
}

func NewCaseRepository(db *gorm.DB) contract.CaseRepository {
	return &CaseRepositoryImpl{
		db:     db,
		mapper: mapper.NewCaseMapper(),
	}
}

func (r *CaseRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *CaseRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Case, error) {
	var m model.Case
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *CaseRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Case, error) {
	var models []*model.Case
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.Case, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *CaseRepositoryImpl) FindByIds(ctx context.Context, ids []uuid.UUID) ([]*entity.Case, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.FindAll(ctx, specification.ByIDs{IDs: ids})
}

func (r *CaseRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Case{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
