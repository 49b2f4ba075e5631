package dto

import (
	"time"

	"github.com/google/uuid"
)

// AskRequest starts (or replays) a question-answering session. SessionId is
// optional: when empty a new session is created, when set the run is an
// idempotent re-execution of that session.
type AskRequest struct {
	SessionId   string `json:"session_id"`
	WorkspaceId string `json:"workspace_id" validate:"required,uuid4"`
	Question    string `json:"question" validate:"required,min=3"`
}

// AskAcceptedResponse is returned by the async ask endpoint.
type AskAcceptedResponse struct {
	SessionId uuid.UUID `json:"session_id"`
	Status    string    `json:"status"`
}

// QAResult mirrors the completion event published after a run. Status is
// "success" or "error"; an error run still carries the fallback answer text.
type QAResult struct {
	SessionId      uuid.UUID `json:"session_id"`
	AnswerId       uuid.UUID `json:"answer_id"`
	Status         string    `json:"status"`
	AnswerText     string    `json:"answer_text"`
	CitationsCount int       `json:"citations_count"`
	Confidence     float64   `json:"confidence"`
}

type CitationResponse struct {
	CaseId         uuid.UUID  `json:"case_id"`
	PassageId      *uuid.UUID `json:"passage_id,omitempty"`
	CitationText   string     `json:"citation_text"`
	RelevanceScore float64    `json:"relevance_score"`
}

type AnswerResponse struct {
	AnswerId   uuid.UUID              `json:"answer_id"`
	AnswerText string                 `json:"answer_text"`
	Reasoning  string                 `json:"reasoning,omitempty"`
	Confidence float64                `json:"confidence"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	Citations  []CitationResponse     `json:"citations"`
}

// SessionDetailResponse is the full read model of a session. Answer is nil
// until the session reaches a terminal state.
type SessionDetailResponse struct {
	SessionId   uuid.UUID       `json:"session_id"`
	WorkspaceId uuid.UUID       `json:"workspace_id"`
	Question    string          `json:"question"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   *time.Time      `json:"updated_at,omitempty"`
	Answer      *AnswerResponse `json:"answer,omitempty"`
}
