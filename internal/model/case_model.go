package model

import (
	"time"

	"github.com/google/uuid"
)

type Case struct {
	Id          uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	WorkspaceId uuid.UUID  `gorm:"type:uuid;not null;index"`
	Caption     string     `gorm:"type:text;not null"`
	Citation    string     `gorm:"type:text"`
	Court       string     `gorm:"type:text"`
	DecidedAt   *time.Time `gorm:"type:date"`
	CreatedAt   time.Time  `gorm:"autoCreateTime"`
}

func (Case) TableName() string {
	return "cases"
}
