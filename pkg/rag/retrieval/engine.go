package retrieval

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"legal-qa-be/internal/entity"
	"legal-qa-be/internal/repository/contract"
	"legal-qa-be/pkg/embedding"

	"github.com/google/uuid"
)

// Config holds the retrieval tunables.
type Config struct {
	TopK       int     // candidates returned after fusion
	FusionK    float64 // reciprocal-rank fusion dampening constant
	FusedFloor float64 // minimum fused score to keep a candidate
}

// Engine runs hybrid retrieval: a lexical full-text leg and a dense vector
// leg over the same passage corpus, merged by reciprocal-rank fusion.
type Engine struct {
	passages contract.PassageRepository
	embedder embedding.EmbeddingProvider
	cfg      Config
}

func NewEngine(passages contract.PassageRepository, embedder embedding.EmbeddingProvider, cfg Config) *Engine {
	if cfg.TopK <= 0 {
		cfg.TopK = 20
	}
	if cfg.FusionK <= 0 {
		cfg.FusionK = 60
	}
	return &Engine{
		passages: passages,
		embedder: embedder,
		cfg:      cfg,
	}
}

// Retrieve runs both legs and fuses their rankings. One failing leg degrades
// to single-leg retrieval; both failing is an error. An empty result is not
// an error, it means the corpus holds no relevant precedent.
func (e *Engine) Retrieve(ctx context.Context, workspaceId uuid.UUID, question string) ([]entity.RetrievalCandidate, error) {
	lexical, lexErr := e.passages.SearchLexical(ctx, question, e.cfg.TopK, workspaceId)

	var dense []*contract.ScoredPassage
	var denseErr error
	embedded, denseErr := e.embedder.Generate(question, embedding.TaskRetrievalQuery)
	if denseErr == nil {
		dense, denseErr = e.passages.SearchSimilarWithScore(ctx, embedded.Embedding.Values, e.cfg.TopK, workspaceId)
	}

	if lexErr != nil && denseErr != nil {
		return nil, fmt.Errorf("both retrieval legs failed: lexical: %v, dense: %w", lexErr, denseErr)
	}
	if lexErr != nil {
		lexical = nil
	}
	if denseErr != nil {
		dense = nil
	}

	fused := Fuse(lexical, dense, e.cfg.FusionK, e.cfg.FusedFloor, e.cfg.TopK)
	return fused, nil
}

// Fuse merges the two ranked lists with reciprocal-rank fusion:
// score(p) = sum over lists of 1/(k + rank(p)). A passage missing from a
// list contributes nothing for it. Ordering is fused score descending with
// passage id ascending as the tie break, so fusion is deterministic for a
// fixed pair of inputs.
func Fuse(lexical, dense []*contract.ScoredPassage, k, floor float64, limit int) []entity.RetrievalCandidate {
	byId := make(map[uuid.UUID]*entity.RetrievalCandidate)

	for i, sp := range lexical {
		rank := i + 1
		byId[sp.Passage.Id] = &entity.RetrievalCandidate{
			Passage:      *sp.Passage,
			LexicalScore: sp.Score,
			LexicalRank:  rank,
			FusedScore:   1 / (k + float64(rank)),
		}
	}

	for i, sp := range dense {
		rank := i + 1
		if c, ok := byId[sp.Passage.Id]; ok {
			c.VectorScore = sp.Score
			c.VectorRank = rank
			c.FusedScore += 1 / (k + float64(rank))
			continue
		}
		byId[sp.Passage.Id] = &entity.RetrievalCandidate{
			Passage:     *sp.Passage,
			VectorScore: sp.Score,
			VectorRank:  rank,
			FusedScore:  1 / (k + float64(rank)),
		}
	}

	candidates := make([]entity.RetrievalCandidate, 0, len(byId))
	for _, c := range byId {
		if c.FusedScore < floor {
			continue
		}
		candidates = append(candidates, *c)
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].FusedScore != candidates[j].FusedScore {
			return candidates[i].FusedScore > candidates[j].FusedScore
		}
		return strings.Compare(candidates[i].Passage.Id.String(), candidates[j].Passage.Id.String()) < 0
	})

	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates
}
