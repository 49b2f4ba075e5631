package mapper

import (
	"legal-qa-be/internal/entity"
	"legal-qa-be/internal/model"
)

type CaseMapper struct{}

func NewCaseMapper() *CaseMapper {
	return &CaseMapper{}
}

func (m *CaseMapper) ToEntity(mod *model.Case) *entity.Case {
	if mod == nil {
		return nil
	}
	return &entity.Case{
		Id:          mod.Id,
		WorkspaceId: mod.WorkspaceId,
		Caption:     mod.Caption,
		Citation:    mod.Citation,
		Court:       mod.Court,
		DecidedAt:   mod.DecidedAt,
		CreatedAt:   mod.CreatedAt,
	}
}

func (m *CaseMapper) PassageToEntity(mod *model.CasePassage) *entity.Passage {
	if mod == nil {
		return nil
	}
	return &entity.Passage{
		Id:          mod.Id,
		CaseId:      mod.CaseId,
		WorkspaceId: mod.WorkspaceId,
		Section:     entity.PassageSection(mod.Section),
		Ordinal:     mod.Ordinal,
		Content:     mod.Content,
	}
}

func (m *CaseMapper) PassagesToEntities(models []model.CasePassage) []entity.Passage {
	entities := make([]entity.Passage, 0, len(models))
	for i := range models {
		entities = append(entities, *m.PassageToEntity(&models[i]))
	}
	return entities
}
