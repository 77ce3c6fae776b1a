package domain

import "strings"

// Route is the classified intent category for a query.
// It determines which retrieval branches execute.
type Route string

const (
	RouteWeatherOnly  Route = "weather_only"
	RouteDocumentOnly Route = "document_only"
	RouteCombined     Route = "combined"
	RouteOutOfScope   Route = "out_of_scope"
)

// Valid reports whether the route is one of the enumerated values
func (r Route) Valid() bool {
	switch r {
	case RouteWeatherOnly, RouteDocumentOnly, RouteCombined, RouteOutOfScope:
		return true
	}
	return false
}

// NeedsDocuments reports whether the document branch executes for this route
func (r Route) NeedsDocuments() bool {
	return r == RouteDocumentOnly || r == RouteCombined
}

// NeedsWeather reports whether the weather branch executes for this route
func (r Route) NeedsWeather() bool {
	return r == RouteWeatherOnly || r == RouteCombined
}

// RouteDecision is the outcome of query classification
type RouteDecision struct {
	Route      Route   `json:"route"`
	Confidence float64 `json:"confidence"` // 0..1
	Reasoning  string  `json:"reasoning"`
}

// OutOfScopeDecision is the safe fallback used when classification fails
// or returns a value outside the enumerated routes.
func OutOfScopeDecision(reasoning string) *RouteDecision {
	return &RouteDecision{
		Route:      RouteOutOfScope,
		Confidence: 0,
		Reasoning:  reasoning,
	}
}

// MapClassification maps a raw classifier label onto a route.
// Exact labels map directly; anything else falls back to keyword matching,
// and unrecognised labels land on out_of_scope.
func MapClassification(label string) Route {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "weather", string(RouteWeatherOnly):
		return RouteWeatherOnly
	case "document", string(RouteDocumentOnly):
		return RouteDocumentOnly
	case string(RouteCombined):
		return RouteCombined
	case "guardrails", string(RouteOutOfScope):
		return RouteOutOfScope
	}

	lower := strings.ToLower(label)
	hasWeather := strings.Contains(lower, "weather")
	hasDocument := strings.Contains(lower, "document")
	switch {
	case hasWeather && hasDocument:
		return RouteCombined
	case hasWeather:
		return RouteWeatherOnly
	case hasDocument:
		return RouteDocumentOnly
	}
	return RouteOutOfScope
}

// GuardrailMessage is the fixed response for out-of-scope queries
const GuardrailMessage = "I can help with questions about the indexed travel literature " +
	"and with weather lookups for places mentioned in your question. " +
	"This question falls outside of that scope, so I have to pass on it."
