package internal

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// SummaryTask tags summary requests in the cache key
const SummaryTask = "summary"

// DefaultTemperature keeps summaries close to deterministic
const DefaultTemperature = 0.3

const summarySystemPrompt = "You are a UX analyst who writes clear, concise summaries of recorded user sessions. " +
	"Describe what the user set out to do and how they did it, in plain language."

// SummaryRequest is the canonical request hashed into the cache key
type SummaryRequest struct {
	Task         string        `json:"task"`
	FlowName     string        `json:"flow_name"`
	Interactions []Interaction `json:"interactions"`
}

// Summary is the natural-language description of a flow
type Summary struct {
	Text     string `json:"text" yaml:"text"`
	CacheKey string `json:"cache_key" yaml:"cache_key"`
	Cached   bool   `json:"cached" yaml:"cached"`
}

// Summarizer produces flow summaries, consulting the cache before the
// completion service
type Summarizer struct {
	cache       *CacheManager
	completer   Completer
	model       string
	temperature float64
}

// NewSummarizer creates a Summarizer
func NewSummarizer(cache *CacheManager, completer Completer, model string, temperature float64) *Summarizer {
	return &Summarizer{
		cache:       cache,
		completer:   completer,
		model:       model,
		temperature: temperature,
	}
}

// NewSummaryRequest builds the canonical request for a flow
func NewSummaryRequest(flow *Flow, interactions []Interaction) SummaryRequest {
	if interactions == nil {
		interactions = []Interaction{}
	}
	return SummaryRequest{
		Task:         SummaryTask,
		FlowName:     flow.Name,
		Interactions: interactions,
	}
}

// Summarize returns the cached summary for the request or, on a miss, asks
// the completion service exactly once and caches the answer.
func (s *Summarizer) Summarize(ctx context.Context, flow *Flow, interactions []Interaction) (*Summary, error) {
	req := NewSummaryRequest(flow, interactions)
	key, err := CacheKey(req)
	if err != nil {
		return nil, err
	}

	entry, ok, err := s.cache.Load(key)
	if err != nil {
		var cacheErr *CacheError
		if !errors.As(err, &cacheErr) || cacheErr.Op != "parse" {
			return nil, err
		}
		LogWarn("Ignoring corrupt cache entry: %v", err)
	} else if ok {
		LogInfo("Using cached summary %s", key)
		return &Summary{Text: entry.Summary, CacheKey: key, Cached: true}, nil
	}

	LogDebug("Cache miss for %s, requesting summary", key)
	text, err := s.completer.Complete(ctx, CompletionRequest{
		SystemPrompt: summarySystemPrompt,
		UserPrompt:   BuildSummaryPrompt(flow.DisplayName(), interactions),
		Model:        s.model,
		Temperature:  s.temperature,
	})
	if err != nil {
		return nil, &ExternalServiceError{Service: ServiceName(s.completer), Err: err}
	}

	if err := s.cache.Save(key, &CacheEntry{Summary: text}); err != nil {
		return nil, fmt.Errorf("failed to cache summary: %w", err)
	}

	return &Summary{Text: text, CacheKey: key}, nil
}

// BuildSummaryPrompt renders the user prompt: the flow name followed by a
// numbered list of interaction actions
func BuildSummaryPrompt(flowName string, interactions []Interaction) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Here is a recorded user flow named %q.\n\n", flowName)
	sb.WriteString("The user performed these interactions, in order:\n")
	if len(interactions) == 0 {
		sb.WriteString("(no interactions were recorded)\n")
	}
	for i, interaction := range interactions {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, interaction.Action)
	}
	sb.WriteString("\nWrite a short, human-friendly summary (2-3 paragraphs) of what the user was trying to accomplish and the key steps they took. ")
	sb.WriteString("Do not repeat the list verbatim.")
	return sb.String()
}
