package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/wayfarer-core/internal/core/domain"
	"github.com/custodia-labs/wayfarer-core/internal/core/ports/driven"
)

// Ensure OpenAIChat implements both chat-backed ports
var (
	_ driven.Classifier = (*OpenAIChat)(nil)
	_ driven.Generator  = (*OpenAIChat)(nil)
)

// classificationConfidence is reported for successful classifications.
// The chat API returns a bare label, not a calibrated probability.
const classificationConfidence = 0.8

const classifySystemPrompt = `You are a query router for a retrieval system over travel literature
with an additional live weather capability. Classify the user's query into exactly one label:

weather   - the query only asks about current weather conditions somewhere
document  - the query only asks about the indexed literature
combined  - the query asks about the literature AND current weather
guardrails - anything else (off-topic, nonsense, unsafe)

Respond with the single label and nothing else.`

const extractPlacesSystemPrompt = `Extract the place names (cities, towns, regions) mentioned in the text.
Respond with a comma-separated list of place names, or an empty response if none are mentioned.
Do not add any other text.`

// OpenAIChat implements the Classifier and Generator ports over OpenAI's
// chat completions API
type OpenAIChat struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewOpenAIChat creates a new OpenAI chat service
func NewOpenAIChat(apiKey, model, baseURL string) (*OpenAIChat, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	if model == "" {
		model = "gpt-4o-mini"
	}

	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}

	return &OpenAIChat{
		apiKey:  apiKey,
		model:   model,
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}, nil
}

// chatMessage is one message in a chat completion request
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatRequest is the request body for the chat completions API
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

// chatResponse is the response from the chat completions API
type chatResponse struct {
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error,omitempty"`
}

// Classify determines the query's intent
func (c *OpenAIChat) Classify(ctx context.Context, query string) (*domain.RouteDecision, error) {
	label, err := c.complete(ctx, classifySystemPrompt, query, 10)
	if err != nil {
		return nil, fmt.Errorf("classify: %w: %v", domain.ErrClassificationUnavailable, err)
	}

	return &domain.RouteDecision{
		Route:      domain.MapClassification(label),
		Confidence: classificationConfidence,
		Reasoning:  fmt.Sprintf("classified as %q", strings.TrimSpace(label)),
	}, nil
}

// ExtractPlaces pulls place names out of free text
func (c *OpenAIChat) ExtractPlaces(ctx context.Context, text string) ([]string, error) {
	raw, err := c.complete(ctx, extractPlacesSystemPrompt, text, 100)
	if err != nil {
		return nil, fmt.Errorf("extract places: %w: %v", domain.ErrClassificationUnavailable, err)
	}

	var places []string
	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		if p != "" && !strings.EqualFold(p, "none") {
			places = append(places, p)
		}
	}
	return places, nil
}

// GenerateAnswer produces the answer text for the assembled context
func (c *OpenAIChat) GenerateAnswer(ctx context.Context, req domain.GenerationRequest) (string, error) {
	prompt := buildGenerationPrompt(req)

	text, err := c.complete(ctx, generationSystemPrompt(req.Route), prompt, 0)
	if err != nil {
		return "", fmt.Errorf("generate answer: %w: %v", domain.ErrServiceUnavailable, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("generate answer: empty completion: %w", domain.ErrServiceUnavailable)
	}
	return text, nil
}

// Model returns the model name being used
func (c *OpenAIChat) Model() string {
	return c.model
}

// Ping verifies the chat service is available
func (c *OpenAIChat) Ping(ctx context.Context) error {
	_, err := c.complete(ctx, "Reply with the single word: ok", "ping", 5)
	return err
}

// Close releases resources held by the service
func (c *OpenAIChat) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

// generationSystemPrompt varies the system prompt by route
func generationSystemPrompt(route domain.Route) string {
	switch route {
	case domain.RouteWeatherOnly:
		return "You are a helpful assistant reporting current weather conditions. " +
			"Answer using only the weather data provided. Be concise."
	case domain.RouteCombined:
		return "You are a helpful assistant answering questions about travel literature, " +
			"enriched with current weather data. Ground every literary claim in the provided " +
			"sources and weave in the weather where it is relevant."
	default:
		return "You are a helpful assistant answering questions about travel literature. " +
			"Answer using only the provided sources. If the sources do not cover the " +
			"question, say so."
	}
}

// buildGenerationPrompt assembles the user message from the branch contexts
func buildGenerationPrompt(req domain.GenerationRequest) string {
	var sb strings.Builder
	if req.DocumentContext != "" {
		sb.WriteString("Sources:\n")
		sb.WriteString(req.DocumentContext)
		sb.WriteString("\n\n")
	}
	if req.WeatherContext != "" {
		sb.WriteString("Current weather:\n")
		sb.WriteString(req.WeatherContext)
		sb.WriteString("\n\n")
	}
	sb.WriteString("Question: ")
	sb.WriteString(req.Query)
	return sb.String()
}

// complete makes a single chat completion call and returns the first
// choice's content
func (c *OpenAIChat) complete(ctx context.Context, system, user string, maxTokens int) (string, error) {
	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: 0,
		MaxTokens:   maxTokens,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if chatResp.Error != nil {
		return "", fmt.Errorf("OpenAI API error: %s (type: %s, code: %s)",
			chatResp.Error.Message, chatResp.Error.Type, chatResp.Error.Code)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("OpenAI API returned status %d", resp.StatusCode)
	}

	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("no completion choices returned")
	}

	return chatResp.Choices[0].Message.Content, nil
}
