package implementation

import (
	"context"

	"legal-qa-be/internal/entity"
	"legal-qa-be/internal/mapper"
	"legal-qa-be/internal/model"
	"legal-qa-be/internal/repository/contract"
	"legal-qa-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AnswerCitationRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.QAMapper
}

func NewAnswerCitationRepository(db *gorm.DB) contract.AnswerCitationRepository {
	return &AnswerCitationRepositoryImpl{
		db:     db,
		mapper: mapper.NewQAMapper(),
	}
}

func (r *AnswerCitationRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *AnswerCitationRepositoryImpl) CreateBulk(ctx context.Context, citations []*entity.AnswerCitation) error {
	if len(citations) == 0 {
		return nil
	}
	models := make([]*model.AnswerCitation, len(citations))
	for i, c := range citations {
		models[i] = r.mapper.CitationToModel(c)
	}
	if err := r.db.WithContext(ctx).Create(models).Error; err != nil {
		return err
	}
	for i, m := range models {
		*citations[i] = *r.mapper.CitationToEntity(m)
	}
	return nil
}

func (r *AnswerCitationRepositoryImpl) DeleteByAnswerId(ctx context.Context, answerId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("answer_id = ?", answerId).Delete(&model.AnswerCitation{}).Error
}

func (r *AnswerCitationRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.AnswerCitation, error) {
	var models []model.AnswerCitation
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.AnswerCitation, len(models))
	for i := range models {
		entities[i] = r.mapper.CitationToEntity(&models[i])
	}
	return entities, nil
}

func (r *AnswerCitationRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.AnswerCitation{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
