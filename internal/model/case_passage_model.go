package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

type CasePassage struct {
	Id          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CaseId      uuid.UUID       `gorm:"type:uuid;not null;index"`
	WorkspaceId uuid.UUID       `gorm:"type:uuid;not null;index"` // denormalized for workspace-scoped search
	Section     string          `gorm:"type:text;not null;default:'other'"`
	Ordinal     int             `gorm:"default:0"` // 0-based position within the opinion
	Content     string          `gorm:"type:text;not null"`
	Embedding   pgvector.Vector `gorm:"type:vector(768)"` // 768 dims across the supported embedding providers
	CreatedAt   time.Time       `gorm:"autoCreateTime"`

	Case *Case `gorm:"foreignKey:CaseId;references:Id;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

func (CasePassage) TableName() string {
	return "case_passages"
}
