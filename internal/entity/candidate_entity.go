package entity

import "github.com/google/uuid"

// RetrievalCandidate is a passage with the scores it earned during hybrid
// retrieval. Exists only within one pipeline run.
type RetrievalCandidate struct {
	Passage      Passage
	LexicalScore float64 // ts_rank score, 0 when absent from the lexical list
	VectorScore  float64 // cosine similarity, 0 when absent from the dense list
	LexicalRank  int     // 1-based rank in the lexical list, 0 when absent
	VectorRank   int     // 1-based rank in the dense list, 0 when absent
	FusedScore   float64 // reciprocal-rank fusion of the two lists
}

// RerankedCandidate adds the cross-relevance score from the second pass.
// Its ordering decides what the planner may cite.
type RerankedCandidate struct {
	RetrievalCandidate
	RelevanceScore float64
	FusedRank      int // 1-based rank before reranking, used to break ties
}

// ClaimPlanItem is one sub-claim of the planned answer together with the
// passages that must back it. Never persisted; its effect is visible only
// through the final answer and citations.
type ClaimPlanItem struct {
	Position   int
	Text       string
	PassageIds []uuid.UUID
	Supported  bool
}

// GenerationResult is the output of citations-first generation.
type GenerationResult struct {
	AnswerText      string
	Reasoning       string
	Citations       []AnswerCitation // AnswerId unset until persisted
	Confidence      float64
	ClaimsTotal     int
	ClaimsSupported int
}
