package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeQAAsk       = "ask"
	EventTypeQACompleted = "completed"
)

// NewQAAskEvent requests a pipeline run for a session. SessionId may be the
// zero string when the producer wants a fresh session.
func NewQAAskEvent(sessionId string, workspaceId uuid.UUID, question string) Event {
	return BaseEvent{
		Type: EventTypeQAAsk,
		Data: map[string]interface{}{
			"session_id":   sessionId,
			"workspace_id": workspaceId.String(),
			"question":     question,
		},
		OccurredAt: time.Now(),
	}
}

// NewQACompletedEvent announces the terminal outcome of a session. Status is
// "success" or "error"; error runs still carry the fallback answer text.
func NewQACompletedEvent(sessionId, answerId uuid.UUID, status, answerText string, citationsCount int, confidence float64) Event {
	return BaseEvent{
		Type: EventTypeQACompleted,
		Data: map[string]interface{}{
			"session_id":      sessionId.String(),
			"answer_id":       answerId.String(),
			"status":          status,
			"answer_text":     answerText,
			"citations_count": citationsCount,
			"confidence":      confidence,
		},
		OccurredAt: time.Now(),
	}
}
