package generate

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"legal-qa-be/internal/entity"
	"legal-qa-be/pkg/llm"

	"github.com/google/uuid"
)

// markerPattern matches inline citation markers like [1] or [12].
var markerPattern = regexp.MustCompile(`\[(\d+)\]`)

// insufficientToken is what the model must reply when the sources do not
// answer the sub-question.
const insufficientToken = "INSUFFICIENT"

// Generator produces the grounded answer, citations first: each sub-claim is
// generated against only its planned passages and must carry inline markers.
// Text the model cannot ground is hedged, never asserted.
type Generator struct {
	provider llm.LLMProvider
}

func NewGenerator(provider llm.LLMProvider) *Generator {
	return &Generator{provider: provider}
}

// Generate renders the final answer for the planned claims. The cases map
// resolves case metadata for citation text; missing entries degrade to a
// passage-only citation. An LLM failure is returned as an error so the
// caller can fall back to its canned answer.
func (g *Generator) Generate(
	ctx context.Context,
	question string,
	claims []entity.ClaimPlanItem,
	candidates []entity.RerankedCandidate,
	cases map[uuid.UUID]*entity.Case,
) (*entity.GenerationResult, error) {
	byPassage := make(map[uuid.UUID]entity.RerankedCandidate, len(candidates))
	for _, c := range candidates {
		byPassage[c.Passage.Id] = c
	}

	var paragraphs []string
	var citations []entity.AnswerCitation
	globalIndex := make(map[uuid.UUID]int) // passage id -> 1-based citation number
	var citedScores []float64
	supported := 0

	for _, claim := range claims {
		if !claim.Supported || len(claim.PassageIds) == 0 {
			paragraphs = append(paragraphs, hedgeClaim(claim.Text))
			continue
		}

		sources := make([]entity.RerankedCandidate, 0, len(claim.PassageIds))
		for _, id := range claim.PassageIds {
			if c, ok := byPassage[id]; ok {
				sources = append(sources, c)
			}
		}
		if len(sources) == 0 {
			paragraphs = append(paragraphs, hedgeClaim(claim.Text))
			continue
		}

		response, err := g.provider.Generate(ctx, buildClaimPrompt(claim.Text, sources),
			llm.WithTemperature(0.1),
			llm.WithMaxTokens(300),
		)
		if err != nil {
			return nil, fmt.Errorf("claim generation failed: %w", err)
		}

		response = strings.TrimSpace(response)
		cited := citedSources(response, len(sources))
		if strings.EqualFold(response, insufficientToken) || len(cited) == 0 {
			// The model could not ground the claim, treat it as unsupported
			paragraphs = append(paragraphs, hedgeClaim(claim.Text))
			continue
		}

		// Remap local markers to the global citation numbering
		remap := make(map[int]int, len(cited))
		for _, local := range cited {
			passage := sources[local-1]
			if _, ok := globalIndex[passage.Passage.Id]; !ok {
				globalIndex[passage.Passage.Id] = len(citations) + 1
				citations = append(citations, buildCitation(passage, cases))
				citedScores = append(citedScores, passage.RelevanceScore)
			}
			remap[local] = globalIndex[passage.Passage.Id]
		}
		paragraphs = append(paragraphs, renumberMarkers(response, remap))
		supported++
	}

	confidence := Confidence(supported, len(claims), citedScores)

	return &entity.GenerationResult{
		AnswerText:      strings.Join(paragraphs, "\n\n"),
		Reasoning:       buildReasoning(supported, len(claims), len(citations)),
		Citations:       citations,
		Confidence:      confidence,
		ClaimsTotal:     len(claims),
		ClaimsSupported: supported,
	}, nil
}

func buildClaimPrompt(claim string, sources []entity.RerankedCandidate) string {
	var b strings.Builder
	b.WriteString("You are a legal research assistant. Answer the sub-question using only the numbered sources below. ")
	b.WriteString("Every sentence must cite at least one source with its marker, for example [1]. ")
	b.WriteString("If the sources do not answer the sub-question, reply with exactly " + insufficientToken + ".\n\nSources:\n")
	for i, s := range sources {
		fmt.Fprintf(&b, "[%d] (%s) %s\n", i+1, s.Passage.Section, s.Passage.Content)
	}
	b.WriteString("\nSub-question: ")
	b.WriteString(claim)
	return b.String()
}

func hedgeClaim(claim string) string {
	return fmt.Sprintf("The available precedent does not squarely address this point, so no authority can be cited for it: %s", claim)
}

// citedSources extracts the distinct valid marker numbers from the response,
// in ascending order.
func citedSources(response string, sourceCount int) []int {
	seen := make(map[int]struct{})
	for _, match := range markerPattern.FindAllStringSubmatch(response, -1) {
		n, err := strconv.Atoi(match[1])
		if err != nil || n < 1 || n > sourceCount {
			continue
		}
		seen[n] = struct{}{}
	}
	cited := make([]int, 0, len(seen))
	for n := range seen {
		cited = append(cited, n)
	}
	sort.Ints(cited)
	return cited
}

func renumberMarkers(response string, remap map[int]int) string {
	return markerPattern.ReplaceAllStringFunc(response, func(marker string) string {
		n, err := strconv.Atoi(strings.Trim(marker, "[]"))
		if err != nil {
			return marker
		}
		if global, ok := remap[n]; ok {
			return fmt.Sprintf("[%d]", global)
		}
		return marker
	})
}

func buildCitation(c entity.RerankedCandidate, cases map[uuid.UUID]*entity.Case) entity.AnswerCitation {
	passageId := c.Passage.Id
	citation := entity.AnswerCitation{
		CaseId:         c.Passage.CaseId,
		PassageId:      &passageId,
		RelevanceScore: c.RelevanceScore,
	}

	if kase, ok := cases[c.Passage.CaseId]; ok && kase != nil {
		text := kase.Caption
		if kase.Citation != "" {
			text = fmt.Sprintf("%s, %s", kase.Caption, kase.Citation)
		}
		citation.CitationText = fmt.Sprintf("%s (passage %d)", text, c.Passage.Ordinal+1)
	} else {
		citation.CitationText = fmt.Sprintf("passage %d of case %s", c.Passage.Ordinal+1, c.Passage.CaseId)
	}
	return citation
}

func buildReasoning(supported, total, citationCount int) string {
	return fmt.Sprintf("Grounded %d of %d sub-claims in %d cited passages", supported, total, citationCount)
}

// Confidence scores the answer from how much of it is grounded: 60% weight
// on the supported fraction, 40% on the mean rerank score of the cited
// passages, minus a 0.05 penalty per unsupported claim, clamped to [0, 1].
// An answer with no citations scores zero.
func Confidence(supported, total int, citedScores []float64) float64 {
	if len(citedScores) == 0 || total == 0 {
		return 0
	}

	var sum float64
	for _, s := range citedScores {
		sum += s
	}
	meanCited := sum / float64(len(citedScores))
	supportedFraction := float64(supported) / float64(total)
	unsupported := total - supported

	confidence := 0.6*supportedFraction + 0.4*meanCited - 0.05*float64(unsupported)
	if confidence < 0 {
		return 0
	}
	if confidence > 1 {
		return 1
	}
	return confidence
}
