package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/wayfarer-core/internal/core/domain"
	"github.com/custodia-labs/wayfarer-core/internal/core/ports/driving"
	"github.com/custodia-labs/wayfarer-core/internal/runtime"
)

// State is one node of the per-query workflow state machine
type State string

const (
	StateStart          State = "start"
	StateClassified     State = "classified"
	StateDocumentBranch State = "document_branch"
	StateWeatherBranch  State = "weather_branch"
	StateBothBranches   State = "both_branches"
	StateGuardrail      State = "guardrail"
	StateAssembled      State = "assembled"
	StateDone           State = "done"
	StateFailed         State = "failed"
)

// maxConcurrentWeatherLookups caps parallel provider calls when a query
// mentions several places
const maxConcurrentWeatherLookups = 4

// RouterConfig holds the router's collaborators and policy knobs
type RouterConfig struct {
	Search         driving.SearchService
	ContextBuilder *ContextBuilder
	Services       *runtime.Services

	// MinRouteConfidence downgrades valid routes classified below this
	// confidence to out_of_scope. 0 disables the threshold and always
	// trusts the label.
	MinRouteConfidence float64

	Logger *slog.Logger
}

// Router drives the query workflow: classify, dispatch the retrieval
// branches, join them under the per-query deadline. All capability
// handles come in via construction; the router holds no mutable state
// across queries.
type Router struct {
	search         driving.SearchService
	contextBuilder *ContextBuilder
	services       *runtime.Services
	minConfidence  float64
	logger         *slog.Logger
}

// NewRouter creates a new Router
func NewRouter(cfg RouterConfig) *Router {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Router{
		search:         cfg.Search,
		contextBuilder: cfg.ContextBuilder,
		services:       cfg.Services,
		minConfidence:  cfg.MinRouteConfidence,
		logger:         logger,
	}
}

// routeOutcome carries the joined branch outputs into assembly
type routeOutcome struct {
	State      State
	Route      domain.Route
	Confidence float64
	Reasoning  string

	DocContext string
	DocSources []*domain.SearchResult
	DocErr     error

	Weather    []*domain.WeatherReport
	WeatherErr error

	Guardrail bool
	Degraded  bool
	TimedOut  bool
	Failed    bool
}

// branchResults collects branch outputs under a mutex. Only branches
// marked done are merged; an abandoned branch's partial data is discarded.
type branchResults struct {
	mu sync.Mutex

	docDone     bool
	docContext  string
	docSources  []*domain.SearchResult
	docDegraded bool
	docErr      error

	weatherDone     bool
	weather         []*domain.WeatherReport
	weatherDegraded bool
	weatherErr      error
}

// Run executes the state machine for one query. The context carries the
// caller's cancellation; the per-query deadline bounds the branch join.
func (r *Router) Run(ctx context.Context, query string, opts domain.QueryOptions, m *metricsTracker) *routeOutcome {
	out := &routeOutcome{State: StateStart}

	decision := r.classify(ctx, query, m)
	out.State = StateClassified
	out.Route = decision.Route
	out.Confidence = decision.Confidence
	out.Reasoning = decision.Reasoning
	r.logger.Info("query classified",
		"route", decision.Route, "confidence", decision.Confidence)

	if decision.Route == domain.RouteOutOfScope {
		out.State = StateGuardrail
		out.Guardrail = true
		return out
	}

	switch {
	case decision.Route == domain.RouteCombined:
		out.State = StateBothBranches
	case decision.Route.NeedsDocuments():
		out.State = StateDocumentBranch
	default:
		out.State = StateWeatherBranch
	}

	bctx, cancel := context.WithTimeout(ctx, opts.Deadline)
	defer cancel()

	res := &branchResults{}
	var wg sync.WaitGroup
	if decision.Route.NeedsDocuments() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.runDocumentBranch(bctx, query, opts, res, m)
		}()
	}
	if decision.Route.NeedsWeather() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.runWeatherBranch(bctx, query, res, m)
		}()
	}

	joined := make(chan struct{})
	go func() {
		wg.Wait()
		close(joined)
	}()

	select {
	case <-joined:
	case <-bctx.Done():
		// Outstanding branches are abandoned; their goroutines unwind on
		// their own once the capability calls observe the cancellation.
		out.TimedOut = true
		r.logger.Warn("query deadline exceeded, assembling partial results",
			"deadline", opts.Deadline)
	}

	r.collect(decision.Route, res, out)
	return out
}

// classify maps the query onto a route, recovering every failure into the
// out_of_scope fallback. Classification errors never surface to callers.
func (r *Router) classify(ctx context.Context, query string, m *metricsTracker) *domain.RouteDecision {
	finish := m.step("classify_query")

	if strings.TrimSpace(query) == "" {
		finish(true)
		return domain.OutOfScopeDecision("Empty query")
	}

	classifier := r.services.Classifier()
	if classifier == nil || !r.services.Config().CanClassify() {
		finish(false)
		return domain.OutOfScopeDecision("classification unavailable: no classifier configured")
	}

	m.addAPICall()
	decision, err := classifier.Classify(ctx, query)
	if err != nil {
		finish(false)
		r.logger.Warn("classification failed, falling back to out_of_scope", "error", err)
		return domain.OutOfScopeDecision(fmt.Sprintf("classification unavailable: %v", err))
	}

	if decision == nil || !decision.Route.Valid() {
		finish(true)
		return domain.OutOfScopeDecision("Invalid classification result")
	}

	if decision.Confidence < 0 {
		decision.Confidence = 0
	}
	if decision.Confidence > 1 {
		decision.Confidence = 1
	}

	if r.minConfidence > 0 && decision.Confidence < r.minConfidence {
		finish(true)
		return domain.OutOfScopeDecision(fmt.Sprintf(
			"confidence %.2f below threshold %.2f", decision.Confidence, r.minConfidence))
	}

	finish(true)
	return decision
}

// runDocumentBranch executes hybrid retrieval plus rerank/compression
func (r *Router) runDocumentBranch(ctx context.Context, query string, opts domain.QueryOptions, res *branchResults, m *metricsTracker) {
	finish := m.step("document_retrieval")

	// The branch requests the raw fused set and runs rerank/compression
	// itself, so it can render the answer context from the kept candidates.
	set, err := r.search.Search(ctx, domain.SearchQuery{
		Query: query,
		TopK:  opts.TopK,
	})

	res.mu.Lock()
	defer res.mu.Unlock()
	res.docDone = true

	if err != nil {
		res.docErr = err
		finish(false)
		r.logger.Warn("document branch failed", "error", err)
		return
	}
	m.addAPICalls(set.APICalls)

	docContext, kept := r.contextBuilder.Build(query, set.Results, opts.Rerank, opts.Compression)
	res.docContext = docContext
	res.docSources = kept
	res.docDegraded = set.Degraded
	finish(true)
}

// runWeatherBranch extracts places from the query and fetches their
// current conditions concurrently
func (r *Router) runWeatherBranch(ctx context.Context, query string, res *branchResults, m *metricsTracker) {
	finish := m.step("weather_lookup")

	reports, degraded, err := r.fetchWeather(ctx, query, m)

	res.mu.Lock()
	defer res.mu.Unlock()
	res.weatherDone = true
	res.weather = reports
	res.weatherDegraded = degraded
	res.weatherErr = err
	finish(err == nil)
	if err != nil {
		r.logger.Warn("weather branch failed", "error", err)
	}
}

func (r *Router) fetchWeather(ctx context.Context, query string, m *metricsTracker) ([]*domain.WeatherReport, bool, error) {
	weather := r.services.WeatherService()
	if weather == nil || !r.services.Config().WeatherAvailable() {
		return nil, false, fmt.Errorf("no weather provider configured: %w", domain.ErrWeatherUnavailable)
	}

	places, err := r.extractPlaces(ctx, query, m)
	if err != nil {
		return nil, false, err
	}
	if len(places) == 0 {
		return nil, false, fmt.Errorf("no place mentioned in query: %w", domain.ErrLocationUnresolved)
	}

	reports := make([]*domain.WeatherReport, len(places))
	errs := make([]error, len(places))

	var g errgroup.Group
	g.SetLimit(maxConcurrentWeatherLookups)
	for i, place := range places {
		g.Go(func() error {
			m.addAPICall()
			report, err := weather.Current(ctx, place)
			if err != nil {
				errs[i] = err
				return nil // tolerate per-place failures
			}
			reports[i] = report
			return nil
		})
	}
	_ = g.Wait()

	fetched := make([]*domain.WeatherReport, 0, len(places))
	var lastErr error
	for i, report := range reports {
		if report != nil {
			fetched = append(fetched, report)
		} else if errs[i] != nil {
			lastErr = errs[i]
		}
	}

	if len(fetched) == 0 {
		return nil, false, fmt.Errorf("all weather lookups failed: %w", lastErr)
	}
	return fetched, lastErr != nil, nil
}

// extractPlaces asks the classifier for place names, falling back to a
// naive capitalized-word scan when no classifier is available
func (r *Router) extractPlaces(ctx context.Context, query string, m *metricsTracker) ([]string, error) {
	classifier := r.services.Classifier()
	if classifier == nil || !r.services.Config().CanClassify() {
		return guessPlaces(query), nil
	}

	m.addAPICall()
	places, err := classifier.ExtractPlaces(ctx, query)
	if err != nil {
		r.logger.Warn("place extraction failed, using fallback scan", "error", err)
		return guessPlaces(query), nil
	}
	return places, nil
}

// guessPlaces picks capitalized words that are not sentence-initial.
// A crude stand-in for real NER, good enough as a last resort.
func guessPlaces(query string) []string {
	words := strings.Fields(query)
	var places []string
	for i, w := range words {
		trimmed := strings.Trim(w, ".,!?;:\"'")
		if i == 0 || trimmed == "" {
			continue
		}
		if trimmed[0] >= 'A' && trimmed[0] <= 'Z' {
			places = append(places, trimmed)
		}
	}
	return places
}

// collect merges completed branch outputs into the outcome and decides
// the terminal state. Abandoned branches contribute nothing.
func (r *Router) collect(route domain.Route, res *branchResults, out *routeOutcome) {
	res.mu.Lock()
	defer res.mu.Unlock()

	docRequired := route.NeedsDocuments()
	weatherRequired := route.NeedsWeather()

	docOK := false
	if docRequired && res.docDone {
		out.DocContext = res.docContext
		out.DocSources = res.docSources
		out.DocErr = res.docErr
		docOK = res.docErr == nil
		if res.docDegraded {
			out.Degraded = true
		}
	}

	weatherOK := false
	if weatherRequired && res.weatherDone {
		out.Weather = res.weather
		out.WeatherErr = res.weatherErr
		weatherOK = res.weatherErr == nil
		if res.weatherDegraded {
			out.Degraded = true
		}
	}

	if out.TimedOut {
		out.Degraded = true
	}

	failedBranches := 0
	requiredBranches := 0
	if docRequired {
		requiredBranches++
		if !docOK {
			failedBranches++
			out.Degraded = true
		}
	}
	if weatherRequired {
		requiredBranches++
		if !weatherOK {
			failedBranches++
			out.Degraded = true
		}
	}

	if failedBranches == requiredBranches {
		out.State = StateFailed
		out.Failed = true
		return
	}
	out.State = StateAssembled
}

// IsConsistencyFailure reports whether a branch error was a chunk-graph
// integrity violation rather than a capability outage
func IsConsistencyFailure(err error) bool {
	return errors.Is(err, domain.ErrConsistency)
}
