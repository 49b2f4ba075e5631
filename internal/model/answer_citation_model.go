package model

import (
	"time"

	"github.com/google/uuid"
)

type AnswerCitation struct {
	Id             uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	AnswerId       uuid.UUID  `gorm:"type:uuid;not null;index"`
	CaseId         uuid.UUID  `gorm:"type:uuid;not null;index"`
	PassageId      *uuid.UUID `gorm:"type:uuid;index"` // nullable: whole-case citations
	CitationText   string     `gorm:"type:text;not null"`
	RelevanceScore float64    `gorm:"not null;default:0"`
	CreatedAt      time.Time  `gorm:"autoCreateTime"`

	Answer *Answer `gorm:"foreignKey:AnswerId;references:Id;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Case   *Case   `gorm:"foreignKey:CaseId;references:Id;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

func (AnswerCitation) TableName() string {
	return "answer_citations"
}
