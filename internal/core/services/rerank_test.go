package services

import (
	"strings"
	"testing"

	"github.com/custodia-labs/wayfarer-core/internal/core/domain"
)

func newTestContextBuilder(t *testing.T, cfg domain.RerankConfig) *ContextBuilder {
	t.Helper()
	b, err := NewContextBuilder(cfg, nil)
	if err != nil {
		t.Fatalf("failed to create context builder: %v", err)
	}
	return b
}

func result(id, text string, score float64) *domain.SearchResult {
	return &domain.SearchResult{ChunkID: id, Text: text, Score: score}
}

func TestRerank_BoostsOverlappingCandidates(t *testing.T) {
	b := newTestContextBuilder(t, domain.DefaultRerankConfig())

	results := []*domain.SearchResult{
		result("c1", "nothing relevant here at all", 0.60),
		result("c2", "the mississippi river steamboat pilot", 0.55),
	}

	reranked := b.Rerank("mississippi river pilot", results)

	// c1: 0.7*0.60 + 0.3*0 = 0.42; c2: 0.7*0.55 + 0.3*1.0 = 0.685
	if reranked[0].ChunkID != "c2" {
		t.Errorf("expected overlapping candidate first, got %s", reranked[0].ChunkID)
	}
	if got := reranked[0].Score; got < 0.684 || got > 0.686 {
		t.Errorf("unexpected combined score %f", got)
	}
	for i, r := range reranked {
		if r.Rank != i+1 {
			t.Errorf("expected rank %d, got %d", i+1, r.Rank)
		}
	}

	// Input must be untouched
	if results[0].ChunkID != "c1" || results[0].Score != 0.60 {
		t.Error("rerank mutated its input")
	}
}

func TestRerank_EmptyQueryContributesNoOverlap(t *testing.T) {
	b := newTestContextBuilder(t, domain.DefaultRerankConfig())

	reranked := b.Rerank("", []*domain.SearchResult{result("c1", "anything", 0.5)})
	if got := reranked[0].Score; got < 0.349 || got > 0.351 {
		t.Errorf("expected pure fused contribution 0.35, got %f", got)
	}
}

func TestCompress_StopsAtBudget(t *testing.T) {
	cfg := domain.DefaultRerankConfig()
	cfg.MaxTokens = 20 // estimate counter: len/4, so 80 chars
	b := newTestContextBuilder(t, cfg)

	long := strings.Repeat("a", 60) // 15 tokens
	results := []*domain.SearchResult{
		result("c1", long, 0.9),
		result("c2", long, 0.8), // would overflow
		result("c3", "tiny", 0.7),
	}

	text, kept := b.Compress(results)
	if len(kept) != 1 || kept[0].ChunkID != "c1" {
		t.Fatalf("expected selection to stop at the first overflow, kept %d", len(kept))
	}
	if strings.Contains(text, "c2") {
		t.Error("overflowing candidate leaked into the context")
	}
	// Whole-candidate inclusion: the kept text is never cut mid-chunk
	if !strings.Contains(text, long) {
		t.Error("kept candidate was truncated")
	}
}

func TestCompress_PrefersParentWindow(t *testing.T) {
	b := newTestContextBuilder(t, domain.DefaultRerankConfig())

	r := result("c1", "child text", 0.9)
	r.ParentWindow = "parent window with more surrounding context"

	text, _ := b.Compress([]*domain.SearchResult{r})
	if !strings.Contains(text, r.ParentWindow) {
		t.Error("expected context to use the parent window text")
	}
}

func TestBuild_DisabledStagesPassThrough(t *testing.T) {
	cfg := domain.DefaultRerankConfig()
	cfg.MaxTokens = 1 // would exclude everything if compression ran
	b := newTestContextBuilder(t, cfg)

	results := []*domain.SearchResult{
		result("c1", "first candidate text", 0.9),
		result("c2", "second candidate text", 0.8),
	}

	text, kept := b.Build("query", results, false, false)
	if len(kept) != 2 {
		t.Errorf("expected all candidates kept with compression off, got %d", len(kept))
	}
	if !strings.Contains(text, "first candidate text") || !strings.Contains(text, "second candidate text") {
		t.Error("expected full untruncated context with compression off")
	}
}

func TestRenderContext_Provenance(t *testing.T) {
	b := newTestContextBuilder(t, domain.DefaultRerankConfig())

	r := result("c1", "body", 0.87)
	r.Section = "Old Times"
	r.Chapter = 4
	r.Part = 1

	text, _ := b.Build("q", []*domain.SearchResult{r}, false, false)
	for _, want := range []string{
		"--- Source 1 (Relevance: 0.87) ---",
		"[Section: Old Times]",
		"[Chapter: 4]",
		"[Part: 1]",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("context missing %q:\n%s", want, text)
		}
	}
}

func TestNewContextBuilder_RejectsBadConfig(t *testing.T) {
	cfg := domain.RerankConfig{FusedWeight: 0.5, OverlapWeight: 0.6, MaxTokens: 100}
	if _, err := NewContextBuilder(cfg, nil); err == nil {
		t.Error("expected weight validation to fail")
	}
}
