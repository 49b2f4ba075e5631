package entity

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus tracks the lifecycle of a question-answering request.
// Transitions are monotonic: pending -> processing -> completed | failed.
type SessionStatus string

const (
	SessionStatusPending    SessionStatus = "pending"
	SessionStatusProcessing SessionStatus = "processing"
	SessionStatusCompleted  SessionStatus = "completed"
	SessionStatusFailed     SessionStatus = "failed"
)

// Terminal reports whether the status may not change anymore.
func (s SessionStatus) Terminal() bool {
	return s == SessionStatusCompleted || s == SessionStatusFailed
}

// CanTransitionTo enforces the monotonic state machine.
func (s SessionStatus) CanTransitionTo(next SessionStatus) bool {
	switch s {
	case SessionStatusPending:
		return next == SessionStatusProcessing
	case SessionStatusProcessing:
		return next == SessionStatusCompleted || next == SessionStatusFailed
	default:
		return false
	}
}

type QASession struct {
	Id          uuid.UUID
	WorkspaceId uuid.UUID
	Question    string
	Status      SessionStatus
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}
