package generate

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"legal-qa-be/internal/entity"
	"legal-qa-be/pkg/llm"

	"github.com/google/uuid"
)

type fakeLLM struct {
	response string
	err      error
	prompts  []string
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return f.response, f.err
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.response, f.err
}

func fixture() (entity.ClaimPlanItem, entity.RerankedCandidate, map[uuid.UUID]*entity.Case) {
	caseId := uuid.New()
	passageId := uuid.New()

	candidate := entity.RerankedCandidate{
		RetrievalCandidate: entity.RetrievalCandidate{
			Passage: entity.Passage{
				Id:      passageId,
				CaseId:  caseId,
				Section: entity.SectionHolding,
				Ordinal: 2,
				Content: "A verbal contract is enforceable when supported by consideration.",
			},
		},
		RelevanceScore: 0.8,
		FusedRank:      1,
	}

	claim := entity.ClaimPlanItem{
		Position:   0,
		Text:       "Is a verbal contract enforceable?",
		PassageIds: []uuid.UUID{passageId},
		Supported:  true,
	}

	cases := map[uuid.UUID]*entity.Case{
		caseId: {
			Id:       caseId,
			Caption:  "Smith v. Jones",
			Citation: "123 F.3d 456 (9th Cir. 1997)",
		},
	}
	return claim, candidate, cases
}

func TestGenerateGroundedClaim(t *testing.T) {
	claim, candidate, cases := fixture()
	provider := &fakeLLM{response: "A verbal contract is enforceable with consideration [1]."}
	g := NewGenerator(provider)

	result, err := g.Generate(context.Background(), claim.Text,
		[]entity.ClaimPlanItem{claim}, []entity.RerankedCandidate{candidate}, cases)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.ClaimsSupported != 1 || result.ClaimsTotal != 1 {
		t.Errorf("claims: supported %d total %d, want 1/1", result.ClaimsSupported, result.ClaimsTotal)
	}
	if len(result.Citations) != 1 {
		t.Fatalf("got %d citations, want 1", len(result.Citations))
	}

	citation := result.Citations[0]
	if citation.CaseId != candidate.Passage.CaseId {
		t.Error("citation points at wrong case")
	}
	if citation.PassageId == nil || *citation.PassageId != candidate.Passage.Id {
		t.Error("citation points at wrong passage")
	}
	if !strings.Contains(citation.CitationText, "Smith v. Jones") {
		t.Errorf("citation text %q missing caption", citation.CitationText)
	}
	if !strings.Contains(citation.CitationText, "passage 3") {
		t.Errorf("citation text %q missing 1-based passage number", citation.CitationText)
	}
	if citation.RelevanceScore != 0.8 {
		t.Errorf("citation relevance %v, want 0.8", citation.RelevanceScore)
	}

	if !strings.Contains(result.AnswerText, "[1]") {
		t.Errorf("answer %q lost its citation marker", result.AnswerText)
	}
	if result.Confidence <= 0 {
		t.Errorf("grounded answer has confidence %v", result.Confidence)
	}
}

func TestGenerateHedgesUnsupportedClaim(t *testing.T) {
	claim, candidate, cases := fixture()
	claim.Supported = false
	claim.PassageIds = nil

	provider := &fakeLLM{response: "should never be called"}
	g := NewGenerator(provider)

	result, err := g.Generate(context.Background(), claim.Text,
		[]entity.ClaimPlanItem{claim}, []entity.RerankedCandidate{candidate}, cases)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(provider.prompts) != 0 {
		t.Error("unsupported claim must not reach the model")
	}
	if len(result.Citations) != 0 {
		t.Errorf("got %d citations, want 0", len(result.Citations))
	}
	if result.Confidence != 0 {
		t.Errorf("confidence %v, want 0 without citations", result.Confidence)
	}
	if !strings.Contains(result.AnswerText, claim.Text) {
		t.Error("hedge should restate the claim")
	}
}

func TestGenerateTreatsInsufficientAsUnsupported(t *testing.T) {
	claim, candidate, cases := fixture()
	provider := &fakeLLM{response: "INSUFFICIENT"}
	g := NewGenerator(provider)

	result, err := g.Generate(context.Background(), claim.Text,
		[]entity.ClaimPlanItem{claim}, []entity.RerankedCandidate{candidate}, cases)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.ClaimsSupported != 0 {
		t.Errorf("supported %d, want 0", result.ClaimsSupported)
	}
	if len(result.Citations) != 0 {
		t.Errorf("got %d citations, want 0", len(result.Citations))
	}
}

func TestGenerateDropsResponsesWithoutMarkers(t *testing.T) {
	claim, candidate, cases := fixture()
	provider := &fakeLLM{response: "A confident but uncited assertion."}
	g := NewGenerator(provider)

	result, err := g.Generate(context.Background(), claim.Text,
		[]entity.ClaimPlanItem{claim}, []entity.RerankedCandidate{candidate}, cases)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.ClaimsSupported != 0 {
		t.Error("uncited response must not count as supported")
	}
	if strings.Contains(result.AnswerText, "confident but uncited") {
		t.Error("uncited model text leaked into the answer")
	}
}

func TestGeneratePropagatesModelFailure(t *testing.T) {
	claim, candidate, cases := fixture()
	provider := &fakeLLM{err: errors.New("model offline")}
	g := NewGenerator(provider)

	_, err := g.Generate(context.Background(), claim.Text,
		[]entity.ClaimPlanItem{claim}, []entity.RerankedCandidate{candidate}, cases)
	if err == nil {
		t.Fatal("expected error when the model fails")
	}
}

func TestConfidence(t *testing.T) {
	tests := []struct {
		name        string
		supported   int
		total       int
		citedScores []float64
		want        float64
	}{
		{
			name: "no citations scores zero",
			want: 0,
		},
		{
			name:        "fully supported",
			supported:   2,
			total:       2,
			citedScores: []float64{0.8, 0.6},
			want:        0.6*1 + 0.4*0.7,
		},
		{
			name:        "partially supported pays the penalty",
			supported:   1,
			total:       2,
			citedScores: []float64{0.5},
			want:        0.6*0.5 + 0.4*0.5 - 0.05,
		},
		{
			name:        "clamped at zero",
			supported:   1,
			total:       21,
			citedScores: []float64{0.01},
			want:        0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Confidence(tt.supported, tt.total, tt.citedScores)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("got %v, want %v", got, tt.want)
			}
			if got < 0 || got > 1 {
				t.Errorf("confidence %v outside [0, 1]", got)
			}
		})
	}
}
