package rerank

import (
	"context"
	"testing"

	"legal-qa-be/internal/entity"

	"github.com/google/uuid"
)

func candidate(content string, fusedScore float64) entity.RetrievalCandidate {
	return entity.RetrievalCandidate{
		Passage:    entity.Passage{Id: uuid.New(), Content: content},
		FusedScore: fusedScore,
	}
}

func TestLocalRerankOrdersByOverlap(t *testing.T) {
	reranker := NewLocalReranker()

	candidates := []entity.RetrievalCandidate{
		candidate("contract law requires consideration between parties", 0.5),
		candidate("the weather was sunny that afternoon", 0.4),
		candidate("consideration and offer form a valid contract", 0.3),
	}

	got, err := reranker.Rerank(context.Background(), "what consideration does contract law require", candidates, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d candidates, want 3", len(got))
	}

	if got[len(got)-1].Passage.Content != "the weather was sunny that afternoon" {
		t.Errorf("irrelevant passage should rank last, got order ending with %q", got[len(got)-1].Passage.Content)
	}
	for i := 1; i < len(got); i++ {
		if got[i].RelevanceScore > got[i-1].RelevanceScore {
			t.Errorf("ordering broken at %d: %v > %v", i, got[i].RelevanceScore, got[i-1].RelevanceScore)
		}
	}
}

func TestLocalRerankTiesKeepFusedOrder(t *testing.T) {
	reranker := NewLocalReranker()

	// Identical content scores identically, fused order must survive
	candidates := []entity.RetrievalCandidate{
		candidate("severance doctrine explained", 0.9),
		candidate("severance doctrine explained", 0.8),
		candidate("severance doctrine explained", 0.7),
	}

	got, err := reranker.Rerank(context.Background(), "severance doctrine", candidates, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i, c := range got {
		if c.FusedRank != i+1 {
			t.Errorf("position %d holds fused rank %d, tie should keep first-pass order", i, c.FusedRank)
		}
	}
}

func TestLocalRerankTruncatesToTopN(t *testing.T) {
	reranker := NewLocalReranker()

	var candidates []entity.RetrievalCandidate
	for i := 0; i < 20; i++ {
		candidates = append(candidates, candidate("habeas corpus petition standard", float64(20-i)))
	}

	got, err := reranker.Rerank(context.Background(), "habeas corpus", candidates, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 10 {
		t.Errorf("got %d candidates, want 10", len(got))
	}
}

func TestLocalRerankEmptyInput(t *testing.T) {
	reranker := NewLocalReranker()

	got, err := reranker.Rerank(context.Background(), "anything", nil, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d candidates, want 0", len(got))
	}
}
