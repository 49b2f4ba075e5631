package entity

import (
	"time"

	"github.com/google/uuid"
)

// Case is the read-only metadata of a decision in the corpus. Populated by
// the ingest collaborators, never written by this worker.
type Case struct {
	Id          uuid.UUID
	WorkspaceId uuid.UUID
	Caption     string // e.g. "Celotex Corp. v. Catrett"
	Citation    string // e.g. "477 U.S. 317 (1986)"
	Court       string
	DecidedAt   *time.Time
	CreatedAt   time.Time
}

// PassageSection classifies where in the opinion a passage sits.
type PassageSection string

const (
	SectionHolding    PassageSection = "holding"
	SectionReasoning  PassageSection = "reasoning"
	SectionDicta      PassageSection = "dicta"
	SectionProcedural PassageSection = "procedural"
	SectionOther      PassageSection = "other"
)

// Passage is an immutable classified excerpt of case text. Read-only input
// to the answering pipeline.
type Passage struct {
	Id          uuid.UUID
	CaseId      uuid.UUID
	WorkspaceId uuid.UUID
	Section     PassageSection
	Ordinal     int
	Content     string
}
