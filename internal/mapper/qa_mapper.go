package mapper

import (
	"encoding/json"

	"legal-qa-be/internal/entity"
	"legal-qa-be/internal/model"
)

type QAMapper struct{}

func NewQAMapper() *QAMapper {
	return &QAMapper{}
}

func (m *QAMapper) SessionToEntity(mod *model.QASession) *entity.QASession {
	if mod == nil {
		return nil
	}
	updatedAt := mod.UpdatedAt
	return &entity.QASession{
		Id:          mod.Id,
		WorkspaceId: mod.WorkspaceId,
		Question:    mod.Question,
		Status:      entity.SessionStatus(mod.Status),
		CreatedAt:   mod.CreatedAt,
		UpdatedAt:   &updatedAt,
	}
}

func (m *QAMapper) SessionToModel(e *entity.QASession) *model.QASession {
	if e == nil {
		return nil
	}
	mod := &model.QASession{
		Id:          e.Id,
		WorkspaceId: e.WorkspaceId,
		Question:    e.Question,
		Status:      string(e.Status),
		CreatedAt:   e.CreatedAt,
	}
	if e.UpdatedAt != nil {
		mod.UpdatedAt = *e.UpdatedAt
	}
	return mod
}

func (m *QAMapper) AnswerToEntity(mod *model.Answer) *entity.Answer {
	if mod == nil {
		return nil
	}
	var metadata map[string]interface{}
	if len(mod.Metadata) > 0 {
		// best effort: malformed metadata never blocks a read
		_ = json.Unmarshal(mod.Metadata, &metadata)
	}
	return &entity.Answer{
		Id:         mod.Id,
		SessionId:  mod.SessionId,
		AnswerText: mod.AnswerText,
		Reasoning:  mod.Reasoning,
		Confidence: mod.Confidence,
		Metadata:   metadata,
		CreatedAt:  mod.CreatedAt,
	}
}

func (m *QAMapper) AnswerToModel(e *entity.Answer) *model.Answer {
	if e == nil {
		return nil
	}
	mod := &model.Answer{
		Id:         e.Id,
		SessionId:  e.SessionId,
		AnswerText: e.AnswerText,
		Reasoning:  e.Reasoning,
		Confidence: e.Confidence,
		CreatedAt:  e.CreatedAt,
	}
	if e.Metadata != nil {
		if raw, err := json.Marshal(e.Metadata); err == nil {
			mod.Metadata = raw
		}
	}
	return mod
}

func (m *QAMapper) CitationToEntity(mod *model.AnswerCitation) *entity.AnswerCitation {
	if mod == nil {
		return nil
	}
	return &entity.AnswerCitation{
		Id:             mod.Id,
		AnswerId:       mod.AnswerId,
		CaseId:         mod.CaseId,
		PassageId:      mod.PassageId,
		CitationText:   mod.CitationText,
		RelevanceScore: mod.RelevanceScore,
	}
}

func (m *QAMapper) CitationToModel(e *entity.AnswerCitation) *model.AnswerCitation {
	if e == nil {
		return nil
	}
	return &model.AnswerCitation{
		Id:             e.Id,
		AnswerId:       e.AnswerId,
		CaseId:         e.CaseId,
		PassageId:      e.PassageId,
		CitationText:   e.CitationText,
		RelevanceScore: e.RelevanceScore,
	}
}

func (m *QAMapper) CitationsToEntities(models []model.AnswerCitation) []entity.AnswerCitation {
	entities := make([]entity.AnswerCitation, 0, len(models))
	for i := range models {
		entities = append(entities, *m.CitationToEntity(&models[i]))
	}
	return entities
}
