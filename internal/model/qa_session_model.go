package model

import (
	"time"

	"github.com/google/uuid"
)

type QASession struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	WorkspaceId uuid.UUID `gorm:"type:uuid;not null;index"` // workspace scoping for data isolation
	Question    string    `gorm:"type:text;not null"`
	Status      string    `gorm:"type:text;not null;default:'pending';index"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

func (QASession) TableName() string {
	return "qa_sessions"
}
