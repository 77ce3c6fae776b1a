package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/wayfarer-core/internal/core/domain"
	"github.com/custodia-labs/wayfarer-core/internal/core/ports/driven"
	"github.com/custodia-labs/wayfarer-core/internal/core/ports/driving"
	"github.com/custodia-labs/wayfarer-core/internal/runtime"
)

// Ensure hybridSearchService implements SearchService
var _ driving.SearchService = (*hybridSearchService)(nil)

// hybridSearchService runs the dense and keyword branches against the
// external index and fuses their results with weighted reciprocal rank
// fusion. The branches execute concurrently and fail independently.
type hybridSearchService struct {
	index      driven.SearchIndex
	chunkStore driven.ChunkStore
	services   *runtime.Services // dynamic embedding capability
	fusion     domain.FusionConfig
	builder    *ContextBuilder // optional rerank/compression stages
	logger     *slog.Logger
}

// NewHybridSearchService creates a new hybrid SearchService.
// The fusion configuration is validated here, before any query executes.
// A nil builder gets the standard rerank/compression configuration.
func NewHybridSearchService(
	index driven.SearchIndex,
	chunkStore driven.ChunkStore,
	services *runtime.Services,
	fusion domain.FusionConfig,
	builder *ContextBuilder,
	logger *slog.Logger,
) (driving.SearchService, error) {
	if err := fusion.Validate(); err != nil {
		return nil, fmt.Errorf("fusion config: %w", err)
	}
	if builder == nil {
		var err error
		builder, err = NewContextBuilder(domain.DefaultRerankConfig(), nil)
		if err != nil {
			return nil, err
		}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &hybridSearchService{
		index:      index,
		chunkStore: chunkStore,
		services:   services,
		fusion:     fusion,
		builder:    builder,
		logger:     logger,
	}, nil
}

// Search executes both retrieval branches, fuses their results, and
// applies the optional rerank and compression stages per the query flags
func (s *hybridSearchService) Search(ctx context.Context, query domain.SearchQuery) (*domain.SearchResultSet, error) {
	start := time.Now()

	if err := query.Validate(); err != nil {
		return nil, err
	}

	filters := query.Filters()
	k := s.fusion.InitialTopK
	if k < query.TopK {
		k = query.TopK
	}

	var (
		wg         sync.WaitGroup
		denseHits  []domain.IndexHit
		bm25Hits   []domain.IndexHit
		denseErr   error
		bm25Err    error
		denseCalls int
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		denseHits, denseCalls, denseErr = s.denseSearch(ctx, query.Query, filters, k)
	}()
	go func() {
		defer wg.Done()
		bm25Hits, bm25Err = s.index.BM25Search(ctx, query.Query, filters, k)
	}()
	wg.Wait()

	// the keyword request is always issued, even when it fails
	apiCalls := denseCalls + 1

	if denseErr != nil && bm25Err != nil {
		return nil, fmt.Errorf("dense branch: %v; keyword branch: %v: %w",
			denseErr, bm25Err, domain.ErrRetrievalUnavailable)
	}

	degraded := false
	if denseErr != nil {
		s.logger.Warn("dense branch failed, continuing with keyword results", "error", denseErr)
		degraded = true
	}
	if bm25Err != nil {
		s.logger.Warn("keyword branch failed, continuing with dense results", "error", bm25Err)
		degraded = true
	}

	fused := fuseHits(denseHits, bm25Hits, s.fusion)
	if len(fused) > query.TopK {
		fused = fused[:query.TopK]
	}

	results, missing, err := s.resolve(ctx, fused)
	if err != nil {
		return nil, err
	}
	if missing > 0 {
		// The index returned ids the store no longer knows; likely a
		// compaction race after a document deletion.
		s.logger.Warn("dropped unresolvable hits", "count", missing)
		degraded = true
	}

	if query.Rerank {
		results = s.builder.Rerank(query.Query, results)
	}
	if query.Compression {
		_, results = s.builder.Compress(results)
	}

	for i, r := range results {
		r.Rank = i + 1
	}

	return &domain.SearchResultSet{
		Query:    query.Query,
		Results:  results,
		Degraded: degraded,
		Took:     time.Since(start),
		APICalls: apiCalls,
	}, nil
}

// denseSearch embeds the query and runs the k-nearest-neighbors branch.
// The second return value counts the external calls actually issued; an
// unconfigured embedder fails the branch without making any.
func (s *hybridSearchService) denseSearch(ctx context.Context, query string, filters domain.IndexFilters, k int) ([]domain.IndexHit, int, error) {
	embedder := s.services.EmbeddingService()
	if embedder == nil || !s.services.Config().CanDoDenseSearch() {
		return nil, 0, domain.ErrEmbeddingUnavailable
	}

	vector, err := embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, 1, fmt.Errorf("%w: %v", domain.ErrEmbeddingUnavailable, err)
	}

	hits, err := s.index.KNNSearch(ctx, vector, filters, k)
	return hits, 2, err
}

// resolve fills in chunk text and metadata for the fused hits.
// Hits whose chunk is unknown to the store are dropped and counted.
func (s *hybridSearchService) resolve(ctx context.Context, fused []*domain.SearchResult) ([]*domain.SearchResult, int, error) {
	if len(fused) == 0 {
		return []*domain.SearchResult{}, 0, nil
	}

	ids := make([]string, len(fused))
	for i, r := range fused {
		ids[i] = r.ChunkID
	}

	chunks, err := s.chunkStore.GetMany(ctx, ids)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to resolve chunks: %w", err)
	}

	byID := make(map[string]*domain.Chunk, len(chunks))
	for _, c := range chunks {
		byID[c.ID] = c
	}

	resolved := make([]*domain.SearchResult, 0, len(fused))
	missing := 0
	for _, r := range fused {
		chunk, ok := byID[r.ChunkID]
		if !ok {
			missing++
			continue
		}
		r.DocumentID = chunk.DocumentID
		r.Text = chunk.Text
		r.TokenCount = chunk.TokenCount
		r.ParentWindow = chunk.ParentWindow
		r.Section = chunk.Section
		r.Chapter = chunk.Chapter
		r.Part = chunk.Part
		resolved = append(resolved, r)
	}

	return resolved, missing, nil
}

// fuseHits combines both ranked lists with weighted score fusion.
// A chunk present in only one branch receives 0 for the missing branch's
// component; it is never disqualified. Equal fused scores order by
// chunk_id ascending so results are reproducible.
func fuseHits(denseHits, bm25Hits []domain.IndexHit, cfg domain.FusionConfig) []*domain.SearchResult {
	type entry struct {
		dense   float64
		bm25    float64
		inDense bool
		inBM25  bool
	}

	entries := make(map[string]*entry, len(denseHits)+len(bm25Hits))
	for _, h := range denseHits {
		e, ok := entries[h.ChunkID]
		if !ok {
			e = &entry{}
			entries[h.ChunkID] = e
		}
		// Deduplicate within a branch keeping the highest score
		if !e.inDense || h.Score > e.dense {
			e.dense = h.Score
		}
		e.inDense = true
	}
	for _, h := range bm25Hits {
		e, ok := entries[h.ChunkID]
		if !ok {
			e = &entry{}
			entries[h.ChunkID] = e
		}
		if !e.inBM25 || h.Score > e.bm25 {
			e.bm25 = h.Score
		}
		e.inBM25 = true
	}

	results := make([]*domain.SearchResult, 0, len(entries))
	for id, e := range entries {
		source := domain.ScoreSourceFused
		if !e.inBM25 {
			source = domain.ScoreSourceDense
		} else if !e.inDense {
			source = domain.ScoreSourceBM25
		}
		results = append(results, &domain.SearchResult{
			ChunkID: id,
			Score:   cfg.DenseWeight*e.dense + cfg.BM25Weight*e.bm25,
			Source:  source,
		})
	}

	sortResults(results)
	return results
}

// sortResults orders by score descending, chunk_id ascending on ties
func sortResults(results []*domain.SearchResult) {
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ChunkID < results[j].ChunkID
	})
}
