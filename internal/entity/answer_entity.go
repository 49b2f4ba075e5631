package entity

import (
	"time"

	"github.com/google/uuid"
)

// Answer is the terminal result of a session. Created exactly once per
// session (upsert semantics on redelivery), immutable thereafter.
type Answer struct {
	Id         uuid.UUID
	SessionId  uuid.UUID
	AnswerText string
	Reasoning  string
	Confidence float64
	Metadata   map[string]interface{} // pipeline trace: claim counts, stage stats
	CreatedAt  time.Time
}

// AnswerCitation links an answer to the evidence backing one of its claims.
// PassageId is nil when the citation resolves to a whole case.
type AnswerCitation struct {
	Id             uuid.UUID
	AnswerId       uuid.UUID
	CaseId         uuid.UUID
	PassageId      *uuid.UUID
	CitationText   string
	RelevanceScore float64
}
