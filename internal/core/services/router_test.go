package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/custodia-labs/wayfarer-core/internal/core/domain"
	"github.com/custodia-labs/wayfarer-core/internal/core/ports/driven/mocks"
	"github.com/custodia-labs/wayfarer-core/internal/runtime"
)

// routerFixture bundles a router with the mocks behind it
type routerFixture struct {
	router     *Router
	services   *runtime.Services
	index      *mocks.MockSearchIndex
	store      *mocks.MockChunkStore
	embedding  *mocks.MockEmbeddingService
	classifier *mocks.MockClassifier
	weather    *mocks.MockWeatherService
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()

	index := mocks.NewMockSearchIndex()
	store := mocks.NewMockChunkStore()
	embedding := mocks.NewMockEmbeddingService()
	classifier := mocks.NewMockClassifier()
	weather := mocks.NewMockWeatherService()

	services := runtime.NewServices(domain.NewRuntimeConfig("none"))
	services.SetEmbeddingService(embedding)
	services.SetChatServices(classifier, mocks.NewMockGenerator())
	services.SetWeatherService(weather)

	search, err := NewHybridSearchService(index, store, services, domain.DefaultFusionConfig(), nil, nil)
	if err != nil {
		t.Fatalf("search service: %v", err)
	}
	builder, err := NewContextBuilder(domain.DefaultRerankConfig(), nil)
	if err != nil {
		t.Fatalf("context builder: %v", err)
	}

	return &routerFixture{
		router: NewRouter(RouterConfig{
			Search:         search,
			ContextBuilder: builder,
			Services:       services,
		}),
		services:   services,
		index:      index,
		store:      store,
		embedding:  embedding,
		classifier: classifier,
		weather:    weather,
	}
}

func (f *routerFixture) seedDocs(t *testing.T, ids ...string) {
	t.Helper()
	var hits []domain.IndexHit
	for i, id := range ids {
		hits = append(hits, domain.IndexHit{ChunkID: id, Score: 0.9 - float64(i)*0.1})
	}
	f.index.SetDenseHits(hits)
	seedChunks(f.store, ids...)
}

func (f *routerFixture) run(query string) (*routeOutcome, *metricsTracker) {
	m := newMetricsTracker("test-trace")
	out := f.router.Run(context.Background(), query, domain.DefaultQueryOptions(), m)
	return out, m
}

func TestRouter_DocumentOnly(t *testing.T) {
	f := newRouterFixture(t)
	f.seedDocs(t, "c1", "c2")
	f.classifier.SetDecision(&domain.RouteDecision{
		Route: domain.RouteDocumentOnly, Confidence: 0.9, Reasoning: "book question",
	})

	out, _ := f.run("who taught the narrator to pilot?")
	if out.State != StateAssembled {
		t.Fatalf("expected assembled state, got %s", out.State)
	}
	if out.Route != domain.RouteDocumentOnly {
		t.Errorf("unexpected route %s", out.Route)
	}
	if len(out.DocSources) != 2 {
		t.Errorf("expected 2 document sources, got %d", len(out.DocSources))
	}
	if out.DocContext == "" {
		t.Error("expected a non-empty document context")
	}
	if len(out.Weather) != 0 {
		t.Error("weather branch must not run for document_only")
	}
	if f.weather.Calls() != 0 {
		t.Errorf("weather provider called %d times", f.weather.Calls())
	}
}

func TestRouter_WeatherOnly(t *testing.T) {
	f := newRouterFixture(t)
	f.classifier.SetDecision(&domain.RouteDecision{
		Route: domain.RouteWeatherOnly, Confidence: 0.95,
	})
	f.classifier.SetPlaces([]string{"Rome"})
	f.weather.SetReport("Rome", mocks.DefaultReport("Rome"))

	out, _ := f.run("what's the weather in Rome?")
	if out.State != StateAssembled {
		t.Fatalf("expected assembled state, got %s", out.State)
	}
	if len(out.Weather) != 1 || out.Weather[0].City != "Rome" {
		t.Fatalf("expected one Rome report, got %+v", out.Weather)
	}
	knn, bm25 := f.index.Calls()
	if knn != 0 || bm25 != 0 {
		t.Error("document branch must not run for weather_only")
	}
}

func TestRouter_Combined_WeatherFailureDegrades(t *testing.T) {
	f := newRouterFixture(t)
	f.seedDocs(t, "c1", "c2", "c3")
	f.classifier.SetDecision(&domain.RouteDecision{
		Route: domain.RouteCombined, Confidence: 0.85,
	})
	f.classifier.SetPlaces([]string{"Hannibal"})
	f.weather.SetFail(true)

	out, _ := f.run("compare river life with today's weather in Hannibal")
	if out.State != StateAssembled {
		t.Fatalf("surviving document branch should assemble, got %s", out.State)
	}
	if !out.Degraded {
		t.Error("expected degraded marker after weather failure")
	}
	if len(out.DocSources) != 3 {
		t.Errorf("expected 3 document sources, got %d", len(out.DocSources))
	}
	if out.WeatherErr == nil {
		t.Error("expected the weather error to be recorded")
	}
}

func TestRouter_WeatherCapabilityFlagDisablesBranch(t *testing.T) {
	f := newRouterFixture(t)
	f.seedDocs(t, "c1")
	f.classifier.SetDecision(&domain.RouteDecision{
		Route: domain.RouteCombined, Confidence: 0.85,
	})
	f.classifier.SetPlaces([]string{"Hannibal"})

	// Provider still registered, capability flagged off
	f.services.Config().SetWeatherAvailable(false)

	out, _ := f.run("river life and the weather in Hannibal")
	if out.State != StateAssembled {
		t.Fatalf("surviving document branch should assemble, got %s", out.State)
	}
	if !out.Degraded {
		t.Error("expected degraded marker when the weather capability is off")
	}
	if f.weather.Calls() != 0 {
		t.Errorf("disabled capability must not be called, got %d calls", f.weather.Calls())
	}
}

func TestRouter_Combined_BothFail(t *testing.T) {
	f := newRouterFixture(t)
	f.index.SetFailDense(true)
	f.index.SetFailBM25(true)
	f.weather.SetFail(true)
	f.classifier.SetDecision(&domain.RouteDecision{
		Route: domain.RouteCombined, Confidence: 0.85,
	})
	f.classifier.SetPlaces([]string{"Cairo"})

	out, _ := f.run("river lore and Cairo weather")
	if out.State != StateFailed || !out.Failed {
		t.Errorf("expected failed state when every required branch fails, got %s", out.State)
	}
}

func TestRouter_Guardrail(t *testing.T) {
	f := newRouterFixture(t)
	f.classifier.SetDecision(&domain.RouteDecision{
		Route: domain.RouteOutOfScope, Confidence: 0.1, Reasoning: "unrelated",
	})

	out, m := f.run("xyzzy plugh")
	if out.State != StateGuardrail || !out.Guardrail {
		t.Fatalf("expected guardrail state, got %s", out.State)
	}

	// Only the classification call itself may hit a provider
	metrics := m.finalize()
	if metrics.APICalls != 1 {
		t.Errorf("guardrail queries must stop after classification, got %d API calls", metrics.APICalls)
	}
	knn, bm25 := f.index.Calls()
	if knn != 0 || bm25 != 0 || f.weather.Calls() != 0 {
		t.Error("no retrieval work may run for a guardrail query")
	}
}

func TestRouter_EmptyQuery(t *testing.T) {
	f := newRouterFixture(t)

	out, m := f.run("   ")
	if out.State != StateGuardrail {
		t.Fatalf("expected guardrail state for empty query, got %s", out.State)
	}
	if out.Reasoning != "Empty query" {
		t.Errorf("unexpected reasoning %q", out.Reasoning)
	}
	if out.Confidence != 0 {
		t.Errorf("expected confidence 0, got %f", out.Confidence)
	}
	if m.finalize().APICalls != 0 {
		t.Error("empty queries must not reach the classifier")
	}
	classifyCalls, _ := f.classifier.Calls()
	if classifyCalls != 0 {
		t.Error("classifier called for empty query")
	}
}

func TestRouter_ClassifierFailureFallsBack(t *testing.T) {
	f := newRouterFixture(t)
	f.classifier.SetFailClassify(true)

	out, _ := f.run("anything")
	if out.Route != domain.RouteOutOfScope || out.Confidence != 0 {
		t.Errorf("expected out_of_scope fallback, got %s/%f", out.Route, out.Confidence)
	}
}

func TestRouter_InvalidClassificationFallsBack(t *testing.T) {
	f := newRouterFixture(t)
	f.classifier.SetDecision(&domain.RouteDecision{Route: "sports", Confidence: 0.9})

	out, _ := f.run("who won the game?")
	if out.Route != domain.RouteOutOfScope {
		t.Errorf("expected out_of_scope for unknown label, got %s", out.Route)
	}
	if out.Confidence != 0 {
		t.Errorf("expected confidence 0, got %f", out.Confidence)
	}
}

func TestRouter_ConfidenceThreshold(t *testing.T) {
	f := newRouterFixture(t)
	f.router.minConfidence = 0.5
	f.classifier.SetDecision(&domain.RouteDecision{
		Route: domain.RouteDocumentOnly, Confidence: 0.3,
	})

	out, _ := f.run("vague question")
	if out.Route != domain.RouteOutOfScope {
		t.Errorf("expected low-confidence downgrade, got %s", out.Route)
	}
}

func TestRouter_WeatherNoPlace(t *testing.T) {
	f := newRouterFixture(t)
	f.classifier.SetDecision(&domain.RouteDecision{
		Route: domain.RouteWeatherOnly, Confidence: 0.9,
	})
	f.classifier.SetPlaces(nil)

	out, _ := f.run("what's the weather like?")
	if out.State != StateFailed {
		t.Fatalf("expected failed state without a resolvable place, got %s", out.State)
	}
	if !errors.Is(out.WeatherErr, domain.ErrLocationUnresolved) {
		t.Errorf("expected ErrLocationUnresolved, got %v", out.WeatherErr)
	}
}

func TestRouter_WeatherMultiplePlaces(t *testing.T) {
	f := newRouterFixture(t)
	f.classifier.SetDecision(&domain.RouteDecision{
		Route: domain.RouteWeatherOnly, Confidence: 0.9,
	})
	f.classifier.SetPlaces([]string{"Rome", "Paris", "Atlantis"})
	f.weather.SetReport("Rome", mocks.DefaultReport("Rome"))
	f.weather.SetReport("Paris", mocks.DefaultReport("Paris"))
	// Atlantis stays unknown and resolves to ErrLocationUnresolved

	out, _ := f.run("weather in Rome, Paris and Atlantis")
	if out.State != StateAssembled {
		t.Fatalf("expected partial success to assemble, got %s", out.State)
	}
	if len(out.Weather) != 2 {
		t.Errorf("expected 2 reports, got %d", len(out.Weather))
	}
	if !out.Degraded {
		t.Error("expected degraded marker for the failed lookup")
	}
}

func TestRouter_DeadlineExceeded(t *testing.T) {
	f := newRouterFixture(t)
	f.classifier.SetDecision(&domain.RouteDecision{
		Route: domain.RouteWeatherOnly, Confidence: 0.9,
	})
	f.classifier.SetPlaces([]string{"Rome"})
	f.weather.SetDelay(200 * time.Millisecond)
	f.weather.SetReport("Rome", mocks.DefaultReport("Rome"))

	opts := domain.DefaultQueryOptions()
	opts.Deadline = 20 * time.Millisecond

	m := newMetricsTracker("test-trace")
	out := f.router.Run(context.Background(), "weather in Rome", opts, m)
	if !out.TimedOut {
		t.Fatal("expected the deadline to be reported")
	}
	if !out.Degraded {
		t.Error("timed-out queries are degraded")
	}
	if len(out.Weather) != 0 {
		t.Error("abandoned branch data must be discarded")
	}
}

func TestRouter_PlaceExtractionFallback(t *testing.T) {
	f := newRouterFixture(t)
	f.classifier.SetDecision(&domain.RouteDecision{
		Route: domain.RouteWeatherOnly, Confidence: 0.9,
	})
	f.classifier.SetFailExtract(true)
	f.weather.SetReport("Rome", mocks.DefaultReport("Rome"))

	out, _ := f.run("how warm is Rome today?")
	if out.State != StateAssembled {
		t.Fatalf("expected capitalized-word fallback to find Rome, got %s", out.State)
	}
	if len(out.Weather) != 1 || out.Weather[0].City != "Rome" {
		t.Errorf("expected the fallback scan to resolve Rome, got %+v", out.Weather)
	}
}
