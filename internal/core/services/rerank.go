package services

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/wayfarer-core/internal/core/domain"
	"github.com/custodia-labs/wayfarer-core/internal/tokens"
)

// ContextBuilder turns a fused result list into a token-bounded context
// string. Reranking rescores candidates by lexical overlap with the query;
// compression greedily selects whole candidates until the token budget is
// reached. Both stages are optional per query flags.
type ContextBuilder struct {
	cfg     domain.RerankConfig
	counter *tokens.Counter
}

// NewContextBuilder creates a ContextBuilder.
// The rerank configuration is validated here, before any query executes.
func NewContextBuilder(cfg domain.RerankConfig, counter *tokens.Counter) (*ContextBuilder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("rerank config: %w", err)
	}
	if counter == nil {
		counter = tokens.NewEstimateCounter()
	}

	return &ContextBuilder{cfg: cfg, counter: counter}, nil
}

// Build applies the optional rerank and compression stages and returns the
// concatenated context plus the retained results for provenance.
// With compression disabled the full list is concatenated untruncated.
func (b *ContextBuilder) Build(query string, results []*domain.SearchResult, rerank, compression bool) (string, []*domain.SearchResult) {
	list := results
	if rerank {
		list = b.Rerank(query, list)
	}
	if compression {
		return b.Compress(list)
	}
	return renderContext(list), list
}

// Rerank rescores candidates as a weighted mix of the fused score and the
// query-term overlap ratio, then re-sorts with the standard tie-break.
// The input slice is not modified; ranks are reassigned from 1.
func (b *ContextBuilder) Rerank(query string, results []*domain.SearchResult) []*domain.SearchResult {
	queryTerms := termSet(query)

	reranked := make([]*domain.SearchResult, len(results))
	for i, r := range results {
		clone := *r
		overlap := overlapScore(queryTerms, r.Text)
		clone.Score = b.cfg.FusedWeight*r.Score + b.cfg.OverlapWeight*overlap
		reranked[i] = &clone
	}

	sortResults(reranked)
	for i, r := range reranked {
		r.Rank = i + 1
	}
	return reranked
}

// Compress greedily includes top-ranked candidates until the token budget
// is reached. A candidate is included whole or not at all; the first
// overflow stops selection.
func (b *ContextBuilder) Compress(results []*domain.SearchResult) (string, []*domain.SearchResult) {
	kept := make([]*domain.SearchResult, 0, len(results))
	used := 0
	for _, r := range results {
		cost := b.counter.Count(candidateText(r))
		if used+cost > b.cfg.MaxTokens {
			break
		}
		used += cost
		kept = append(kept, r)
	}

	return renderContext(kept), kept
}

// candidateText prefers the precomputed parent window for context expansion
func candidateText(r *domain.SearchResult) string {
	if r.ParentWindow != "" {
		return r.ParentWindow
	}
	return r.Text
}

// renderContext concatenates candidates in rank order with provenance
// headers, matching the format consumed by answer generation.
func renderContext(results []*domain.SearchResult) string {
	if len(results) == 0 {
		return ""
	}

	sections := make([]string, 0, len(results))
	for i, r := range results {
		var sb strings.Builder
		fmt.Fprintf(&sb, "--- Source %d (Relevance: %.2f) ---\n", i+1, r.Score)
		if r.Section != "" {
			fmt.Fprintf(&sb, "[Section: %s] ", r.Section)
		}
		if r.Chapter > 0 {
			fmt.Fprintf(&sb, "[Chapter: %d] ", r.Chapter)
		}
		if r.Part > 0 {
			fmt.Fprintf(&sb, "[Part: %d] ", r.Part)
		}
		if r.Section != "" || r.Chapter > 0 || r.Part > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(candidateText(r))
		sections = append(sections, sb.String())
	}

	return strings.Join(sections, "\n\n")
}

// termSet lowercases and splits text into a set of terms
func termSet(text string) map[string]struct{} {
	terms := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(text)) {
		w = strings.Trim(w, ".,!?;:\"'()[]")
		if w != "" {
			terms[w] = struct{}{}
		}
	}
	return terms
}

// overlapScore is the fraction of query terms present in the text, capped
// at 1.0
func overlapScore(queryTerms map[string]struct{}, text string) float64 {
	if len(queryTerms) == 0 {
		return 0
	}

	textTerms := termSet(text)
	matched := 0
	for t := range queryTerms {
		if _, ok := textTerms[t]; ok {
			matched++
		}
	}

	score := float64(matched) / float64(len(queryTerms))
	if score > 1.0 {
		score = 1.0
	}
	return score
}
