package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Answer struct {
	Id         uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionId  uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex"` // one answer per session
	AnswerText string         `gorm:"type:text;not null"`
	Reasoning  string         `gorm:"type:text"`
	Confidence float64        `gorm:"not null;default:0"`
	Metadata   datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt  time.Time      `gorm:"autoCreateTime"`

	Session *QASession `gorm:"foreignKey:SessionId;references:Id;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

func (Answer) TableName() string {
	return "answers"
}
