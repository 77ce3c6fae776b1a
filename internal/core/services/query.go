package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/wayfarer-core/internal/core/domain"
	"github.com/custodia-labs/wayfarer-core/internal/core/ports/driven"
	"github.com/custodia-labs/wayfarer-core/internal/core/ports/driving"
)

// Ensure queryService implements QueryService
var _ driving.QueryService = (*queryService)(nil)

// QueryServiceConfig holds the query service's collaborators
type QueryServiceConfig struct {
	Router    *Router
	Assembler *Assembler
	Cache     driven.AnswerCache // optional, nil disables caching
	CacheTTL  time.Duration
	Logger    *slog.Logger
}

// queryService is the processQuery entry point. It owns the per-query
// trace id and metrics, consults the optional answer cache, and always
// returns a populated answer.
type queryService struct {
	router    *Router
	assembler *Assembler
	cache     driven.AnswerCache
	cacheTTL  time.Duration
	logger    *slog.Logger
}

// NewQueryService creates a new QueryService
func NewQueryService(cfg QueryServiceConfig) driving.QueryService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	cacheTTL := cfg.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = 15 * time.Minute
	}

	return &queryService{
		router:    cfg.Router,
		assembler: cfg.Assembler,
		cache:     cfg.Cache,
		cacheTTL:  cacheTTL,
		logger:    logger,
	}
}

// ProcessQuery runs the full workflow for one query.
// All failure modes resolve into the answer's degraded/timeout indicators;
// this method never returns an error.
func (s *queryService) ProcessQuery(ctx context.Context, query string, opts domain.QueryOptions) *domain.Answer {
	opts = normalizeOptions(opts)

	traceID := uuid.NewString()
	m := newMetricsTracker(traceID)
	logger := s.logger.With("trace_id", traceID)

	key := cacheKey(query, opts)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, key); err == nil {
			logger.Info("answer served from cache")
			return cached
		}
	}

	out := s.router.Run(ctx, query, opts, m)
	answer := s.assembler.Assemble(ctx, query, out, m)

	finalState := StateDone
	if out.Failed {
		finalState = StateFailed
	}
	logger.Info("query processed",
		"state", finalState,
		"route", answer.Route,
		"degraded", answer.Degraded,
		"timed_out", answer.TimedOut,
		"duration_ms", answer.Metrics.DurationMS,
		"api_calls", answer.Metrics.APICalls)

	// Only clean answers are worth replaying
	if s.cache != nil && !answer.Degraded && !answer.TimedOut && !out.Failed {
		if err := s.cache.Set(ctx, key, answer, s.cacheTTL); err != nil {
			logger.Warn("failed to cache answer", "error", err)
		}
	}

	return answer
}

// normalizeOptions applies defaults for unset fields
func normalizeOptions(opts domain.QueryOptions) domain.QueryOptions {
	defaults := domain.DefaultQueryOptions()
	if opts.Deadline <= 0 {
		opts.Deadline = defaults.Deadline
	}
	if opts.TopK <= 0 {
		opts.TopK = defaults.TopK
	}
	return opts
}

// cacheKey hashes the normalized query and the options that change the
// answer
func cacheKey(query string, opts domain.QueryOptions) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%d|%t|%t",
		strings.ToLower(strings.TrimSpace(query)), opts.TopK, opts.Rerank, opts.Compression)
	return "answer:" + hex.EncodeToString(h.Sum(nil))
}
