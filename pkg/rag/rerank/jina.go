package rerank

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"legal-qa-be/internal/entity"
)

// JinaReranker calls the Jina rerank API. All candidates go out in a single
// batched request.
type JinaReranker struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

type rerankRequest struct {
	Model     string   `json:"model"`
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
	TopN      int      `json:"top_n,omitempty"`
}

type rerankResponse struct {
	Results []struct {
		Index          int     `json:"index"`
		RelevanceScore float64 `json:"relevance_score"`
	} `json:"results"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func NewJinaReranker(apiKey, model string) *JinaReranker {
	if model == "" {
		model = "jina-reranker-v2-base-multilingual"
	}
	return &JinaReranker{
		apiKey:  apiKey,
		baseURL: "https://api.jina.ai/v1/rerank",
		model:   model,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

func (r *JinaReranker) Rerank(ctx context.Context, query string, candidates []entity.RetrievalCandidate, topN int) ([]entity.RerankedCandidate, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	documents := make([]string, len(candidates))
	for i, c := range candidates {
		documents[i] = c.Passage.Content
	}

	reqBody := rerankRequest{
		Model:     r.model,
		Query:     query,
		Documents: documents,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", r.baseURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", r.apiKey))

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("jina rerank error (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	var rerankResp rerankResponse
	if err := json.Unmarshal(bodyBytes, &rerankResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if rerankResp.Error != nil {
		return nil, fmt.Errorf("jina rerank returned error: %s", rerankResp.Error.Message)
	}

	reranked := wrap(candidates)
	for _, res := range rerankResp.Results {
		if res.Index < 0 || res.Index >= len(reranked) {
			continue
		}
		reranked[res.Index].RelevanceScore = res.RelevanceScore
	}

	return order(reranked, topN), nil
}
