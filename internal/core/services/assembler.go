package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/custodia-labs/wayfarer-core/internal/core/domain"
	"github.com/custodia-labs/wayfarer-core/internal/runtime"
)

// clarifyLocationMessage answers weather queries that name no place
const clarifyLocationMessage = "I couldn't tell which place you're asking about. " +
	"Could you mention the city or location you want the weather for?"

// Assembler merges branch outputs into the final answer: text, provenance
// sources in rank order, and workflow metrics. Document sources keep the
// order the reranker produced; weather sources follow.
type Assembler struct {
	services *runtime.Services
	logger   *slog.Logger
}

// NewAssembler creates a new Assembler
func NewAssembler(services *runtime.Services, logger *slog.Logger) *Assembler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Assembler{services: services, logger: logger}
}

// Assemble builds the answer for a completed workflow run.
// It always returns a populated answer.
func (a *Assembler) Assemble(ctx context.Context, query string, out *routeOutcome, m *metricsTracker) *domain.Answer {
	answer := &domain.Answer{
		Query:      query,
		Route:      out.Route,
		Confidence: out.Confidence,
		Reasoning:  out.Reasoning,
		Sources:    a.buildSources(out),
		Weather:    out.Weather,
		Degraded:   out.Degraded,
		TimedOut:   out.TimedOut,
	}

	switch {
	case out.Guardrail:
		answer.Text = domain.GuardrailMessage

	case out.Failed:
		answer.Text = a.failureText(out)
		answer.Degraded = true

	default:
		text, generationDegraded := a.generateText(ctx, query, out, m)
		answer.Text = text
		if generationDegraded {
			answer.Degraded = true
		}
	}

	answer.Metrics = m.finalize()
	return answer
}

// buildSources orders provenance: document sources first, preserving the
// reranker's order, then one weather source per fetched place
func (a *Assembler) buildSources(out *routeOutcome) []domain.Source {
	sources := make([]domain.Source, 0, len(out.DocSources)+len(out.Weather))

	for _, r := range out.DocSources {
		sources = append(sources, domain.Source{
			Type:    domain.SourceTypeDocument,
			Ref:     r.ChunkID,
			Score:   r.Score,
			Section: r.Section,
			Chapter: r.Chapter,
			Part:    r.Part,
		})
	}
	for _, w := range out.Weather {
		sources = append(sources, domain.Source{
			Type:  domain.SourceTypeWeather,
			Ref:   w.City,
			Score: 1.0,
		})
	}

	return sources
}

// generateText produces the answer text via the generation capability,
// falling back to a plain assembly of the retrieved context when the
// generator is missing or fails. The second return reports whether the
// fallback was needed.
func (a *Assembler) generateText(ctx context.Context, query string, out *routeOutcome, m *metricsTracker) (string, bool) {
	weatherContext := renderWeatherContext(out.Weather)

	generator := a.services.Generator()
	if generator == nil {
		return a.fallbackText(out, weatherContext), true
	}

	finish := m.step("generate_answer")
	m.addAPICall()
	text, err := generator.GenerateAnswer(ctx, domain.GenerationRequest{
		Query:           query,
		Route:           out.Route,
		DocumentContext: out.DocContext,
		WeatherContext:  weatherContext,
	})
	if err != nil {
		finish(false)
		a.logger.Warn("answer generation failed, using fallback text", "error", err)
		return a.fallbackText(out, weatherContext), true
	}

	finish(true)
	return text, false
}

// failureText explains a terminal branch failure without raising it
func (a *Assembler) failureText(out *routeOutcome) string {
	if out.Route.NeedsWeather() && errors.Is(out.WeatherErr, domain.ErrLocationUnresolved) &&
		!out.Route.NeedsDocuments() {
		return clarifyLocationMessage
	}
	if out.TimedOut {
		return "I ran out of time answering that. Please try again, or narrow the question."
	}
	return "I couldn't retrieve anything to answer that right now. Please try again shortly."
}

// fallbackText assembles a readable answer directly from branch outputs
func (a *Assembler) fallbackText(out *routeOutcome, weatherContext string) string {
	var parts []string
	if weatherContext != "" {
		parts = append(parts, "Current conditions:\n"+weatherContext)
	}
	if out.DocContext != "" {
		parts = append(parts, "From the documents:\n\n"+out.DocContext)
	}
	if len(parts) == 0 {
		return "I couldn't retrieve anything to answer that right now. Please try again shortly."
	}
	return strings.Join(parts, "\n\n")
}

// renderWeatherContext renders fetched reports as generation context
func renderWeatherContext(reports []*domain.WeatherReport) string {
	if len(reports) == 0 {
		return ""
	}

	lines := make([]string, len(reports))
	for i, r := range reports {
		lines[i] = fmt.Sprintf("- %s", r.Summary())
	}
	return strings.Join(lines, "\n")
}
