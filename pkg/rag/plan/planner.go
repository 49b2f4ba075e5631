package plan

import (
	"sort"
	"strings"

	"legal-qa-be/internal/entity"

	"github.com/google/uuid"
)

// Config holds the planning tunables.
type Config struct {
	SupportThreshold    float64 // minimum rerank score for a passage to support a claim
	MaxPassagesPerClaim int
}

// Planner decomposes the question into sub-claims and assigns each the
// evidence that must back it. A claim with no passage above the support
// threshold is marked unsupported; the generator hedges it instead of
// asserting it.
type Planner struct {
	cfg Config
}

func NewPlanner(cfg Config) *Planner {
	if cfg.MaxPassagesPerClaim <= 0 {
		cfg.MaxPassagesPerClaim = 2
	}
	return &Planner{cfg: cfg}
}

// sectionPriority orders evidence quality: holdings bind, reasoning
// persuades, procedural context and the rest inform, dicta comes last.
func sectionPriority(s entity.PassageSection) int {
	switch s {
	case entity.SectionHolding:
		return 0
	case entity.SectionReasoning:
		return 1
	case entity.SectionProcedural, entity.SectionOther:
		return 2
	case entity.SectionDicta:
		return 3
	default:
		return 2
	}
}

// Plan builds the claim list for a question over the reranked candidates.
// The output is deterministic for identical inputs.
func (p *Planner) Plan(question string, candidates []entity.RerankedCandidate) []entity.ClaimPlanItem {
	claims := SplitClaims(question)

	items := make([]entity.ClaimPlanItem, 0, len(claims))
	for i, claim := range claims {
		supporting := p.selectSupport(claim, candidates)

		item := entity.ClaimPlanItem{
			Position:  i,
			Text:      claim,
			Supported: len(supporting) > 0,
		}
		for _, c := range supporting {
			item.PassageIds = append(item.PassageIds, c.Passage.Id)
		}
		items = append(items, item)
	}
	return items
}

// selectSupport picks up to MaxPassagesPerClaim passages above the support
// threshold, preferring stronger sections, then closeness to the claim text,
// then the rerank score.
func (p *Planner) selectSupport(claim string, candidates []entity.RerankedCandidate) []entity.RerankedCandidate {
	eligible := make([]entity.RerankedCandidate, 0, len(candidates))
	overlaps := make(map[int]float64, len(candidates))
	for _, c := range candidates {
		if c.RelevanceScore >= p.cfg.SupportThreshold {
			eligible = append(eligible, c)
			overlaps[c.FusedRank] = claimOverlap(claim, c.Passage.Content)
		}
	}

	sort.Slice(eligible, func(i, j int) bool {
		pi, pj := sectionPriority(eligible[i].Passage.Section), sectionPriority(eligible[j].Passage.Section)
		if pi != pj {
			return pi < pj
		}
		oi, oj := overlaps[eligible[i].FusedRank], overlaps[eligible[j].FusedRank]
		if oi != oj {
			return oi > oj
		}
		if eligible[i].RelevanceScore != eligible[j].RelevanceScore {
			return eligible[i].RelevanceScore > eligible[j].RelevanceScore
		}
		return eligible[i].FusedRank < eligible[j].FusedRank
	})

	if len(eligible) > p.cfg.MaxPassagesPerClaim {
		eligible = capWithCaseDiversity(eligible, p.cfg.MaxPassagesPerClaim)
	}
	return eligible
}

// capWithCaseDiversity trims to the cap, preferring one passage per case
// before taking a second from a case already selected.
func capWithCaseDiversity(ranked []entity.RerankedCandidate, limit int) []entity.RerankedCandidate {
	selected := make([]entity.RerankedCandidate, 0, limit)
	seen := make(map[uuid.UUID]struct{}, limit)
	var skipped []entity.RerankedCandidate

	for _, c := range ranked {
		if len(selected) == limit {
			break
		}
		if _, ok := seen[c.Passage.CaseId]; ok {
			skipped = append(skipped, c)
			continue
		}
		seen[c.Passage.CaseId] = struct{}{}
		selected = append(selected, c)
	}
	for _, c := range skipped {
		if len(selected) == limit {
			break
		}
		selected = append(selected, c)
	}
	return selected
}

// claimOverlap is the fraction of claim tokens appearing in the passage.
func claimOverlap(claim, passage string) float64 {
	claimTokens := tokenize(claim)
	if len(claimTokens) == 0 {
		return 0
	}
	passageTokens := tokenize(passage)
	var hits int
	for token := range claimTokens {
		if _, ok := passageTokens[token]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(claimTokens))
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

// SplitClaims segments a question into sub-claims on sentence boundaries.
// A question that does not segment yields itself as the single claim.
func SplitClaims(question string) []string {
	var claims []string
	var current strings.Builder

	flush := func() {
		text := strings.TrimSpace(current.String())
		current.Reset()
		if text != "" {
			claims = append(claims, text)
		}
	}

	for _, r := range question {
		current.WriteRune(r)
		if r == '.' || r == '?' || r == '!' || r == ';' {
			flush()
		}
	}
	flush()

	if len(claims) == 0 {
		trimmed := strings.TrimSpace(question)
		if trimmed != "" {
			claims = append(claims, trimmed)
		}
	}
	return claims
}
