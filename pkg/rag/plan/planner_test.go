package plan

import (
	"testing"

	"legal-qa-be/internal/entity"

	"github.com/google/uuid"
)

func reranked(section entity.PassageSection, content string, relevance float64, fusedRank int) entity.RerankedCandidate {
	return entity.RerankedCandidate{
		RetrievalCandidate: entity.RetrievalCandidate{
			Passage: entity.Passage{Id: uuid.New(), Section: section, Content: content},
		},
		RelevanceScore: relevance,
		FusedRank:      fusedRank,
	}
}

func TestSplitClaims(t *testing.T) {
	tests := []struct {
		name     string
		question string
		want     []string
	}{
		{
			name:     "single question",
			question: "Is a verbal contract enforceable?",
			want:     []string{"Is a verbal contract enforceable?"},
		},
		{
			name:     "two sentences",
			question: "Is a verbal contract enforceable? What damages are available?",
			want:     []string{"Is a verbal contract enforceable?", "What damages are available?"},
		},
		{
			name:     "semicolon separated",
			question: "Define consideration; explain its exceptions",
			want:     []string{"Define consideration;", "explain its exceptions"},
		},
		{
			name:     "no terminal punctuation",
			question: "enforceability of verbal contracts",
			want:     []string{"enforceability of verbal contracts"},
		},
		{
			name:     "whitespace only",
			question: "   ",
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitClaims(tt.question)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d claims %v, want %d", len(got), got, len(tt.want))
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("claim %d: got %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestPlanPrefersStrongerSections(t *testing.T) {
	planner := NewPlanner(Config{SupportThreshold: 0.3, MaxPassagesPerClaim: 2})

	dicta := reranked(entity.SectionDicta, "contract enforceable remark", 0.95, 1)
	holding := reranked(entity.SectionHolding, "contract enforceable holding", 0.6, 2)
	reasoning := reranked(entity.SectionReasoning, "contract enforceable reasoning", 0.9, 3)

	items := planner.Plan("Is the contract enforceable?", []entity.RerankedCandidate{dicta, holding, reasoning})
	if len(items) != 1 {
		t.Fatalf("got %d claims, want 1", len(items))
	}

	item := items[0]
	if !item.Supported {
		t.Fatal("claim should be supported")
	}
	if len(item.PassageIds) != 2 {
		t.Fatalf("got %d passages, want 2", len(item.PassageIds))
	}
	if item.PassageIds[0] != holding.Passage.Id {
		t.Errorf("holding should rank first despite lower rerank score")
	}
	if item.PassageIds[1] != reasoning.Passage.Id {
		t.Errorf("reasoning should rank second, dicta excluded by the passage cap")
	}
}

func TestPlanMarksUnsupportedClaims(t *testing.T) {
	planner := NewPlanner(Config{SupportThreshold: 0.5, MaxPassagesPerClaim: 2})

	weak := reranked(entity.SectionHolding, "unrelated doctrine", 0.2, 1)

	items := planner.Plan("Is adverse possession available?", []entity.RerankedCandidate{weak})
	if len(items) != 1 {
		t.Fatalf("got %d claims, want 1", len(items))
	}
	if items[0].Supported {
		t.Error("claim below the support threshold must be unsupported")
	}
	if len(items[0].PassageIds) != 0 {
		t.Errorf("unsupported claim carries %d passages, want 0", len(items[0].PassageIds))
	}
}

func TestPlanRespectsPassageCap(t *testing.T) {
	planner := NewPlanner(Config{SupportThreshold: 0.1, MaxPassagesPerClaim: 1})

	candidates := []entity.RerankedCandidate{
		reranked(entity.SectionHolding, "first holding", 0.9, 1),
		reranked(entity.SectionHolding, "second holding", 0.8, 2),
	}

	items := planner.Plan("What is the rule?", candidates)
	if len(items[0].PassageIds) != 1 {
		t.Errorf("got %d passages, want the cap of 1", len(items[0].PassageIds))
	}
}

func TestPlanPrefersCaseDiversity(t *testing.T) {
	planner := NewPlanner(Config{SupportThreshold: 0.1, MaxPassagesPerClaim: 2})

	caseA, caseB := uuid.New(), uuid.New()
	first := reranked(entity.SectionHolding, "estoppel bars the claim", 0.9, 1)
	second := reranked(entity.SectionHolding, "estoppel bars the claim", 0.8, 2)
	third := reranked(entity.SectionHolding, "estoppel bars the claim", 0.7, 3)
	first.Passage.CaseId = caseA
	second.Passage.CaseId = caseA
	third.Passage.CaseId = caseB

	items := planner.Plan("Does estoppel bar the claim?", []entity.RerankedCandidate{first, second, third})
	if len(items[0].PassageIds) != 2 {
		t.Fatalf("got %d passages, want 2", len(items[0].PassageIds))
	}
	if items[0].PassageIds[0] != first.Passage.Id {
		t.Error("best passage should still come first")
	}
	if items[0].PassageIds[1] != third.Passage.Id {
		t.Error("second slot should go to the other case, not a duplicate of the first")
	}
}

func TestPlanPositionsFollowClaimOrder(t *testing.T) {
	planner := NewPlanner(Config{SupportThreshold: 0.1, MaxPassagesPerClaim: 2})

	items := planner.Plan("First question? Second question?", nil)
	if len(items) != 2 {
		t.Fatalf("got %d claims, want 2", len(items))
	}
	for i, item := range items {
		if item.Position != i {
			t.Errorf("claim %d has position %d", i, item.Position)
		}
		if item.Supported {
			t.Errorf("claim %d supported without candidates", i)
		}
	}
}
