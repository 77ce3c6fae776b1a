package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/custodia-labs/wayfarer-core/internal/core/domain"
	"github.com/custodia-labs/wayfarer-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.SearchIndex = (*Index)(nil)

// Index implements driven.SearchIndex against an Elasticsearch cluster.
// Both search branches return scores normalized to 0..1; the hybrid
// engine fuses them without knowing which backend produced them.
type Index struct {
	baseURL    string
	indexName  string
	httpClient *http.Client
}

// Config holds Elasticsearch connection configuration
type Config struct {
	// BaseURL is the cluster endpoint (e.g., http://localhost:9200)
	BaseURL string

	// IndexName is the index holding leaf chunk embeddings
	IndexName string

	// Timeout for HTTP requests
	Timeout time.Duration
}

// DefaultConfig returns sensible defaults
func DefaultConfig(baseURL, indexName string) Config {
	return Config{
		BaseURL:   baseURL,
		IndexName: indexName,
		Timeout:   30 * time.Second,
	}
}

// NewIndex creates a new Elasticsearch-backed SearchIndex
func NewIndex(cfg Config) *Index {
	return &Index{
		baseURL:   strings.TrimSuffix(cfg.BaseURL, "/"),
		indexName: cfg.IndexName,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

type searchRequest struct {
	Size  int            `json:"size"`
	Query map[string]any `json:"query"`
}

type searchResponse struct {
	Hits struct {
		Hits []rawHit `json:"hits"`
	} `json:"hits"`
}

type rawHit struct {
	ID    string  `json:"_id"`
	Score float64 `json:"_score"`
}

// KNNSearch runs a script_score cosine-similarity query over the dense
// embedding field. Elasticsearch's cosineSimilarity returns -1..1, so the
// script shifts it by +1 and the adapter halves the result back to 0..1.
func (i *Index) KNNSearch(ctx context.Context, vector []float32, filters domain.IndexFilters, k int) ([]domain.IndexHit, error) {
	if len(vector) == 0 {
		return nil, fmt.Errorf("%w: empty query vector", domain.ErrInvalidInput)
	}

	query := map[string]any{
		"script_score": map[string]any{
			"query": filterQuery(filters),
			"script": map[string]any{
				"source": "cosineSimilarity(params.query_vector, 'embedding') + 1.0",
				"params": map[string]any{
					"query_vector": vector,
				},
			},
		},
	}

	hits, err := i.search(ctx, searchRequest{Size: k, Query: query})
	if err != nil {
		return nil, err
	}

	results := make([]domain.IndexHit, 0, len(hits))
	for _, h := range hits {
		results = append(results, domain.IndexHit{
			ChunkID: h.ID,
			Score:   clamp01(h.Score / 2.0),
		})
	}
	return results, nil
}

// BM25Search runs a multi_match keyword query over the chunk text and its
// parent window. BM25 scores are unbounded, so they are squashed with
// min(score/100, 1) to line up with the dense branch.
func (i *Index) BM25Search(ctx context.Context, text string, filters domain.IndexFilters, k int) ([]domain.IndexHit, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: empty query text", domain.ErrInvalidInput)
	}

	match := map[string]any{
		"multi_match": map[string]any{
			"query":     text,
			"fields":    []string{"text^2", "parent_window"},
			"fuzziness": "AUTO",
		},
	}

	query := map[string]any{
		"bool": map[string]any{
			"must":   []any{match},
			"filter": termFilters(filters),
		},
	}

	hits, err := i.search(ctx, searchRequest{Size: k, Query: query})
	if err != nil {
		return nil, err
	}

	results := make([]domain.IndexHit, 0, len(hits))
	for _, h := range hits {
		results = append(results, domain.IndexHit{
			ChunkID: h.ID,
			Score:   clamp01(h.Score / 100.0),
		})
	}
	return results, nil
}

// HealthCheck verifies the cluster is reachable
func (i *Index) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, i.baseURL+"/_cluster/health", nil)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrIndexUnavailable, err)
	}

	resp, err := i.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrIndexUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: cluster health returned %s", domain.ErrIndexUnavailable, resp.Status)
	}
	return nil
}

func (i *Index) search(ctx context.Context, request searchRequest) ([]rawHit, error) {
	body, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("marshal search request: %w", err)
	}

	var parsed searchResponse
	backoff := retry.WithMaxRetries(2, retry.NewExponential(200*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		parsed = searchResponse{}
		return i.doSearch(ctx, body, &parsed)
	})
	if err != nil {
		return nil, err
	}
	return parsed.Hits.Hits, nil
}

func (i *Index) doSearch(ctx context.Context, body []byte, out *searchResponse) error {
	url := fmt.Sprintf("%s/%s/_search", i.baseURL, i.indexName)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrIndexUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := i.httpClient.Do(req)
	if err != nil {
		return retry.RetryableError(fmt.Errorf("%w: %v", domain.ErrIndexUnavailable, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		respBody, _ := io.ReadAll(resp.Body)
		return retry.RetryableError(fmt.Errorf("%w: search failed: %s - %s", domain.ErrIndexUnavailable, resp.Status, string(respBody)))
	}
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: search failed: %s - %s", domain.ErrIndexUnavailable, resp.Status, string(respBody))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode search response: %v", domain.ErrIndexUnavailable, err)
	}
	return nil
}

// filterQuery wraps the conjunctive filters for use inside script_score,
// falling back to match_all when no filters are set.
func filterQuery(filters domain.IndexFilters) map[string]any {
	terms := termFilters(filters)
	if len(terms) == 0 {
		return map[string]any{"match_all": map[string]any{}}
	}
	return map[string]any{
		"bool": map[string]any{
			"filter": terms,
		},
	}
}

func termFilters(filters domain.IndexFilters) []any {
	var terms []any
	if filters.DocumentID != "" {
		terms = append(terms, term("document_id", filters.DocumentID))
	}
	if filters.Level != nil {
		terms = append(terms, term("level", *filters.Level))
	}
	if filters.Part != nil {
		terms = append(terms, term("part", *filters.Part))
	}
	if filters.Chapter != nil {
		terms = append(terms, term("chapter", *filters.Chapter))
	}
	return terms
}

func term(field string, value any) map[string]any {
	return map[string]any{
		"term": map[string]any{field: value},
	}
}

func clamp01(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
