package internal

import (
	"context"
	"sync"
)

// CreateTestFlow creates a flow with one step of each kind and a few
// captured events
func CreateTestFlow(name string) *Flow {
	return &Flow{
		Name:    name,
		UseCase: "Checkout",
		Steps: []Step{
			{Type: StepTypeChapter, Title: "Getting Started"},
			{
				Type:        StepTypeImage,
				Hotspots:    []Hotspot{{Label: "*Buy Now*"}},
				PageContext: &PageContext{URL: "https://shop.example.com/item"},
			},
			{Type: StepTypeVideo},
			{Type: StepTypeChapter, Title: "Thank You!"},
		},
		CapturedEvents: []CapturedEvent{
			{Type: "typing"},
			{Type: "scrolling"},
		},
	}
}

// CreateTestReport creates a report for CreateTestFlow, optionally with a
// summary attached
func CreateTestReport(name string, summary string) *Report {
	flow := CreateTestFlow(name)
	report := &Report{
		Source:       "flow.json",
		Statistics:   flow.Statistics(),
		Interactions: ExtractInteractions(flow),
		flow:         flow,
	}
	if summary != "" {
		report.Summary = &Summary{Text: summary, CacheKey: "0123456789abcdef0123456789abcdef"}
	}
	return report
}

// StaticCompleter is a Completer returning a fixed answer and counting calls
type StaticCompleter struct {
	Text string
	Err  error

	mu       sync.Mutex
	calls    int
	requests []CompletionRequest
}

// Complete records the request and returns the configured answer
func (c *StaticCompleter) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	c.requests = append(c.requests, req)
	if c.Err != nil {
		return "", c.Err
	}
	return c.Text, nil
}

// Calls returns how many times Complete was invoked
func (c *StaticCompleter) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// LastRequest returns the most recent request, if any
func (c *StaticCompleter) LastRequest() (CompletionRequest, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.requests) == 0 {
		return CompletionRequest{}, false
	}
	return c.requests[len(c.requests)-1], true
}
