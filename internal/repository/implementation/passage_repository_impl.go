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
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type PassageRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.CaseMapper
}

func NewPassageRepository(db *gorm.DB) contract.PassageRepository {
	return &PassageRepositoryImpl{
		db:     db,
		mapper: mapper.NewCaseMapper(),
	}
}

func (r *PassageRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *PassageRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Passage, error) {
	var m model.CasePassage
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.PassageToEntity(&m), nil
}

func (r *PassageRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Passage, error) {
	var models []*model.CasePassage
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.Passage, len(models))
	for i, m := range models {
		entities[i] = r.mapper.PassageToEntity(m)
	}
	return entities, nil
}

func (r *PassageRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.CasePassage{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SearchLexical ranks passages by ts_rank over an english tsvector of the
// content. Ties break on passage id so two runs of the same query return
// the same order.
func (r *PassageRepositoryImpl) SearchLexical(ctx context.Context, query string, limit int, workspaceId uuid.UUID) ([]*contract.ScoredPassage, error) {
	if limit <= 0 {
		limit = 10
	}

	type result struct {
		model.CasePassage
		Rank float64
	}
	var results []result

	err := r.db.WithContext(ctx).
		Table("case_passages").
		Select("case_passages.*, ts_rank(to_tsvector('english', content), plainto_tsquery('english', ?)) as rank", query).
		Where("workspace_id = ?", workspaceId).
		Where("to_tsvector('english', content) @@ plainto_tsquery('english', ?)", query).
		Order("rank DESC, id ASC").
		Limit(limit).
		Scan(&results).Error

	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredPassage, len(results))
	for i, res := range results {
		scored[i] = &contract.ScoredPassage{
			Passage: r.mapper.PassageToEntity(&res.CasePassage),
			Score:   res.Rank,
		}
	}
	return scored, nil
}

// SearchSimilarWithScore returns passages with cosine similarity computed as
// 1 - (embedding <=> query_vector). Ties break on passage id.
func (r *PassageRepositoryImpl) SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, workspaceId uuid.UUID) ([]*contract.ScoredPassage, error) {
	if limit <= 0 {
		limit = 10
	}

	type result struct {
		model.CasePassage
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	err := r.db.WithContext(ctx).
		Table("case_passages").
		Select("case_passages.*, 1 - (embedding <=> ?) as similarity", queryVector).
		Where("workspace_id = ?", workspaceId).
		Where("embedding IS NOT NULL").
		Order("similarity DESC, id ASC").
		Limit(limit).
		Scan(&results).Error

	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredPassage, len(results))
	for i, res := range results {
		scored[i] = &contract.ScoredPassage{
			Passage: r.mapper.PassageToEntity(&res.CasePassage),
			Score:   res.Similarity,
		}
	}
	return scored, nil
}
