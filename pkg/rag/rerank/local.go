package rerank

import (
	"context"
	"strings"

	"legal-qa-be/internal/entity"
)

// LocalReranker scores candidates by token overlap with the query. It exists
// so the pipeline runs without an external rerank API; scores are weaker
// than a cross-encoder but the contract (determinism, ordering, topN) is
// identical.
type LocalReranker struct{}

func NewLocalReranker() *LocalReranker {
	return &LocalReranker{}
}

func (r *LocalReranker) Rerank(ctx context.Context, query string, candidates []entity.RetrievalCandidate, topN int) ([]entity.RerankedCandidate, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	queryTokens := tokenize(query)

	reranked := wrap(candidates)
	for i := range reranked {
		reranked[i].RelevanceScore = overlapScore(queryTokens, tokenize(reranked[i].Passage.Content))
	}

	return order(reranked, topN), nil
}

func tokenize(text string) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, field := range strings.Fields(strings.ToLower(text)) {
		token := strings.Trim(field, ".,;:!?()[]\"'")
		if len(token) < 3 {
			continue
		}
		tokens[token] = struct{}{}
	}
	return tokens
}

// overlapScore is the fraction of query tokens present in the passage.
func overlapScore(query, passage map[string]struct{}) float64 {
	if len(query) == 0 {
		return 0
	}
	var hits int
	for token := range query {
		if _, ok := passage[token]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(query))
}
