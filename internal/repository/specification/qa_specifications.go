package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OwnedByWorkspace scopes a query to one workspace. Every read path in the
// worker must carry this spec.
type OwnedByWorkspace struct {
	WorkspaceId uuid.UUID
}

func (s OwnedByWorkspace) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("workspace_id = ?", s.WorkspaceId)
}

// BySessionID filters answer rows by their owning session
type BySessionID struct {
	SessionId uuid.UUID
}

func (s BySessionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("session_id = ?", s.SessionId)
}

// ByAnswerID filters citation rows by their owning answer
type ByAnswerID struct {
	AnswerId uuid.UUID
}

func (s ByAnswerID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("answer_id = ?", s.AnswerId)
}

// ByCaseID filters passage rows by their owning case
type ByCaseID struct {
	CaseId uuid.UUID
}

func (s ByCaseID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("case_id = ?", s.CaseId)
}

// ByStatus filters sessions by lifecycle status
type ByStatus struct {
	Status string
}

func (s ByStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}
