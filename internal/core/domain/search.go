package domain

import (
	"fmt"
	"math"
	"time"
)

// ScoreSource tags which retrieval branch produced a result's score
type ScoreSource string

const (
	ScoreSourceDense ScoreSource = "dense" // vector branch only
	ScoreSourceBM25  ScoreSource = "bm25"  // keyword branch only
	ScoreSourceFused ScoreSource = "fused" // present in both branches
)

// SearchQuery configures one hybrid search request
type SearchQuery struct {
	Query       string `json:"query"`
	TopK        int    `json:"top_k"`
	Rerank      bool   `json:"rerank"`
	Compression bool   `json:"compression"`

	// Optional conjunctive filters
	DocumentID string `json:"document_id,omitempty"`
	Level      *int   `json:"level,omitempty"`
	Part       *int   `json:"part,omitempty"`
	Chapter    *int   `json:"chapter,omitempty"`
}

// DefaultSearchQuery returns sensible defaults for a query string
func DefaultSearchQuery(query string) SearchQuery {
	return SearchQuery{
		Query:       query,
		TopK:        10,
		Rerank:      true,
		Compression: true,
	}
}

// Validate checks the query is executable
func (q SearchQuery) Validate() error {
	if q.Query == "" {
		return fmt.Errorf("%w: query text is required", ErrInvalidInput)
	}
	if q.TopK <= 0 {
		return fmt.Errorf("%w: top_k must be positive, got %d", ErrInvalidInput, q.TopK)
	}
	return nil
}

// Filters extracts the index-level filters from the query
func (q SearchQuery) Filters() IndexFilters {
	return IndexFilters{
		DocumentID: q.DocumentID,
		Level:      q.Level,
		Part:       q.Part,
		Chapter:    q.Chapter,
	}
}

// IndexFilters are conjunctive term filters applied by both search branches
type IndexFilters struct {
	DocumentID string
	Level      *int
	Part       *int
	Chapter    *int
}

// IndexHit is a raw (chunk_id, score) pair returned by the index
type IndexHit struct {
	ChunkID string
	Score   float64 // normalized to 0..1 by the adapter
}

// SearchResult is a scored chunk reference produced by the hybrid engine
type SearchResult struct {
	ChunkID      string      `json:"chunk_id"`
	DocumentID   string      `json:"document_id"`
	Text         string      `json:"text"`
	TokenCount   int         `json:"token_count"`
	Score        float64     `json:"score"` // normalized 0..1
	Source       ScoreSource `json:"source"`
	Rank         int         `json:"rank"`
	ParentWindow string      `json:"parent_window,omitempty"`
	Section      string      `json:"section,omitempty"`
	Chapter      int         `json:"chapter,omitempty"`
	Part         int         `json:"part,omitempty"`
}

// SearchResultSet is the ordered output of one hybrid search
type SearchResultSet struct {
	Query    string          `json:"query"`
	Results  []*SearchResult `json:"results"`
	Degraded bool            `json:"degraded"` // one branch failed or hits were unresolvable
	Took     time.Duration   `json:"took" swaggertype:"integer" example:"1500000"`
	APICalls int             `json:"api_calls"` // external calls issued: embed, knn, bm25
}

// weightSumTolerance absorbs float rounding when validating weight pairs
const weightSumTolerance = 1e-9

// FusionConfig holds the weighted reciprocal rank fusion parameters.
// Weights must sum to 1.0; configuration is rejected before any query runs.
type FusionConfig struct {
	DenseWeight float64
	BM25Weight  float64
	InitialTopK int // per-branch candidate cap before fusion
}

// DefaultFusionConfig returns the standard 0.6/0.4 split
func DefaultFusionConfig() FusionConfig {
	return FusionConfig{
		DenseWeight: 0.6,
		BM25Weight:  0.4,
		InitialTopK: 20,
	}
}

// Validate rejects weight pairs that do not sum to 1.0
func (c FusionConfig) Validate() error {
	if c.DenseWeight < 0 || c.BM25Weight < 0 {
		return fmt.Errorf("%w: fusion weights must be non-negative", ErrInvalidInput)
	}
	if math.Abs(c.DenseWeight+c.BM25Weight-1.0) > weightSumTolerance {
		return fmt.Errorf("%w: dense_weight %.3f + bm25_weight %.3f must sum to 1.0",
			ErrInvalidInput, c.DenseWeight, c.BM25Weight)
	}
	if c.InitialTopK <= 0 {
		return fmt.Errorf("%w: initial_top_k must be positive, got %d", ErrInvalidInput, c.InitialTopK)
	}
	return nil
}

// RerankConfig holds the rerank/compression parameters.
// FusedWeight and OverlapWeight must sum to 1.0.
type RerankConfig struct {
	FusedWeight   float64
	OverlapWeight float64
	MaxTokens     int // compression token budget
}

// DefaultRerankConfig returns the standard 0.7/0.3 split with a 1500 token budget
func DefaultRerankConfig() RerankConfig {
	return RerankConfig{
		FusedWeight:   0.7,
		OverlapWeight: 0.3,
		MaxTokens:     1500,
	}
}

// Validate rejects weight pairs that do not sum to 1.0
func (c RerankConfig) Validate() error {
	if c.FusedWeight < 0 || c.OverlapWeight < 0 {
		return fmt.Errorf("%w: rerank weights must be non-negative", ErrInvalidInput)
	}
	if math.Abs(c.FusedWeight+c.OverlapWeight-1.0) > weightSumTolerance {
		return fmt.Errorf("%w: fused_weight %.3f + overlap_weight %.3f must sum to 1.0",
			ErrInvalidInput, c.FusedWeight, c.OverlapWeight)
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("%w: max_tokens must be positive, got %d", ErrInvalidInput, c.MaxTokens)
	}
	return nil
}
