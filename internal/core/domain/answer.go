package domain

import "time"

// SourceType tags where a provenance entry came from
type SourceType string

const (
	SourceTypeDocument SourceType = "document"
	SourceTypeWeather  SourceType = "weather"
)

// Source is one provenance entry in an answer.
// Document sources keep their rerank order; weather sources follow.
type Source struct {
	Type    SourceType `json:"type"`
	Ref     string     `json:"ref"`   // chunk id or place name
	Score   float64    `json:"score"` // relevance for documents, 1.0 for weather
	Section string     `json:"section,omitempty"`
	Chapter int        `json:"chapter,omitempty"`
	Part    int        `json:"part,omitempty"`
}

// StepMetric records one workflow step's latency and outcome
type StepMetric struct {
	Name       string `json:"name"`
	DurationMS int64  `json:"duration_ms"`
	Success    bool   `json:"success"`
}

// WorkflowMetrics accumulates per-query observability data.
// Created fresh for every query, never shared across requests.
type WorkflowMetrics struct {
	TraceID     string       `json:"trace_id"`
	DurationMS  int64        `json:"duration_ms"`
	APICalls    int          `json:"api_calls"` // external capability calls
	Steps       []StepMetric `json:"steps"`
	SuccessRate float64      `json:"success_rate"` // successful steps / total steps
}

// QueryOptions configures one processQuery invocation
type QueryOptions struct {
	Deadline    time.Duration `json:"-"` // per-query budget, 0 means the default
	TopK        int           `json:"top_k,omitempty"`
	Rerank      bool          `json:"rerank"`
	Compression bool          `json:"compression"`
}

// DefaultQueryOptions returns the standard per-query settings
func DefaultQueryOptions() QueryOptions {
	return QueryOptions{
		Deadline:    30 * time.Second,
		TopK:        10,
		Rerank:      true,
		Compression: true,
	}
}

// Answer is the structured result of processQuery. It is always populated:
// failures are reported through Degraded/TimedOut and Reasoning, never as
// errors to the caller.
type Answer struct {
	Query      string           `json:"query"`
	Text       string           `json:"text"`
	Route      Route            `json:"route"`
	Confidence float64          `json:"confidence"`
	Reasoning  string           `json:"reasoning"`
	Sources    []Source         `json:"sources"`
	Weather    []*WeatherReport `json:"weather,omitempty"`
	Degraded   bool             `json:"degraded"`
	TimedOut   bool             `json:"timed_out"`
	Metrics    WorkflowMetrics  `json:"metrics"`
}
