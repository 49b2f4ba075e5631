package rerank

import (
	"context"
	"sort"

	"legal-qa-be/internal/entity"
)

// Reranker scores retrieval candidates against the question with a second,
// more expensive pass. Implementations must be deterministic for identical
// inputs: equal relevance scores keep the fused ordering.
type Reranker interface {
	Rerank(ctx context.Context, query string, candidates []entity.RetrievalCandidate, topN int) ([]entity.RerankedCandidate, error)
}

// wrap attaches the 1-based fused rank before scoring so ties can fall back
// to the first-pass ordering.
func wrap(candidates []entity.RetrievalCandidate) []entity.RerankedCandidate {
	out := make([]entity.RerankedCandidate, len(candidates))
	for i, c := range candidates {
		out[i] = entity.RerankedCandidate{
			RetrievalCandidate: c,
			FusedRank:          i + 1,
		}
	}
	return out
}

// order sorts by relevance descending, fused rank ascending on ties, and
// truncates to topN.
func order(candidates []entity.RerankedCandidate, topN int) []entity.RerankedCandidate {
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].RelevanceScore != candidates[j].RelevanceScore {
			return candidates[i].RelevanceScore > candidates[j].RelevanceScore
		}
		return candidates[i].FusedRank < candidates[j].FusedRank
	})
	if topN > 0 && len(candidates) > topN {
		candidates = candidates[:topN]
	}
	return candidates
}
