package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
)

// Step types with dedicated extraction rules
const (
	StepTypeChapter = "CHAPTER"
	StepTypeImage   = "IMAGE"
	StepTypeVideo   = "VIDEO"
	StepTypeUnknown = "UNKNOWN"
)

const (
	defaultFlowName = "Unknown Flow"
	defaultUseCase  = "Unknown"
)

// Flow represents a recorded session loaded from flow.json
type Flow struct {
	Name           string          `json:"name,omitempty"`
	UseCase        string          `json:"useCase,omitempty"`
	Steps          []Step          `json:"steps"`
	CapturedEvents []CapturedEvent `json:"capturedEvents"`
}

// Step is a single recorded unit of a flow. Type discriminates the variant;
// every other field is optional and left at its zero value when absent or
// of an unexpected shape.
type Step struct {
	Type         string        `json:"type,omitempty"`
	Title        string        `json:"title,omitempty"`
	Subtitle     string        `json:"subtitle,omitempty"`
	Hotspots     []Hotspot     `json:"hotspots,omitempty"`
	ClickContext *ClickContext `json:"clickContext,omitempty"`
	PageContext  *PageContext  `json:"pageContext,omitempty"`
}

// Hotspot is a clickable region on an IMAGE step
type Hotspot struct {
	Label       string       `json:"label,omitempty"`
	PageContext *PageContext `json:"pageContext,omitempty"`
}

// ClickContext describes the element clicked on an IMAGE step
type ClickContext struct {
	Text        string       `json:"text,omitempty"`
	ElementType string       `json:"elementType,omitempty"`
	PageContext *PageContext `json:"pageContext,omitempty"`
}

// PageContext carries the page the step was recorded on
type PageContext struct {
	URL string `json:"url,omitempty"`
}

// CapturedEvent is a low-level interaction signal. Only the type tag is read.
type CapturedEvent struct {
	Type string `json:"type,omitempty"`
}

// Statistics holds aggregate counts for a flow
type Statistics struct {
	Name           string         `json:"name" yaml:"name"`
	TotalSteps     int            `json:"total_steps" yaml:"total_steps"`
	CapturedEvents int            `json:"captured_events" yaml:"captured_events"`
	StepTypes      map[string]int `json:"step_types" yaml:"step_types"`
	UseCase        string         `json:"use_case" yaml:"use_case"`

	order []string
}

// StepTypeCount is one row of the step type breakdown
type StepTypeCount struct {
	Type  string
	Count int
}

// LoadFlow reads and parses a flow document
func LoadFlow(path string) (*Flow, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &NotFoundError{Path: path}
		}
		return nil, &NotFoundError{Path: path, Op: "stat", Err: err}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &NotFoundError{Path: path, Op: "read", Err: err}
	}

	flow, err := ParseFlow(data)
	if err != nil {
		return nil, &MalformedInputError{Path: path, Err: err}
	}

	LogDebug("Loaded flow %q: %d step(s), %d captured event(s)", flow.Name, len(flow.Steps), len(flow.CapturedEvents))
	return flow, nil
}

// ParseFlow parses a flow document from raw JSON
func ParseFlow(data []byte) (*Flow, error) {
	var flow Flow
	if err := json.Unmarshal(data, &flow); err != nil {
		return nil, err
	}
	return &flow, nil
}

// UnmarshalJSON requires a JSON object but tolerates missing or oddly typed
// members, which decode to their zero value.
func (f *Flow) UnmarshalJSON(data []byte) error {
	fields, err := decodeObject(data)
	if err != nil {
		return err
	}
	if fields == nil {
		return fmt.Errorf("flow document must be a JSON object")
	}

	*f = Flow{
		Name:    rawString(fields["name"]),
		UseCase: rawString(fields["useCase"]),
	}

	for _, raw := range rawArray(fields["steps"]) {
		var step Step
		_ = step.UnmarshalJSON(raw)
		f.Steps = append(f.Steps, step)
	}

	for _, raw := range rawArray(fields["capturedEvents"]) {
		var event CapturedEvent
		_ = event.UnmarshalJSON(raw)
		f.CapturedEvents = append(f.CapturedEvents, event)
	}

	return nil
}

// UnmarshalJSON decodes a step leniently; it never returns an error
func (s *Step) UnmarshalJSON(data []byte) error {
	*s = Step{}
	fields, err := decodeObject(data)
	if err != nil || fields == nil {
		return nil
	}

	s.Type = rawString(fields["type"])
	s.Title = rawString(fields["title"])
	s.Subtitle = rawString(fields["subtitle"])
	s.PageContext = rawPageContext(fields["pageContext"])

	for _, raw := range rawArray(fields["hotspots"]) {
		hotspot := Hotspot{}
		if hf, err := decodeObject(raw); err == nil && hf != nil {
			hotspot.Label = rawString(hf["label"])
			hotspot.PageContext = rawPageContext(hf["pageContext"])
		}
		s.Hotspots = append(s.Hotspots, hotspot)
	}

	if cf, err := decodeObject(fields["clickContext"]); err == nil && cf != nil {
		s.ClickContext = &ClickContext{
			Text:        rawString(cf["text"]),
			ElementType: rawString(cf["elementType"]),
			PageContext: rawPageContext(cf["pageContext"]),
		}
	}

	return nil
}

// UnmarshalJSON decodes the event type tag and ignores the payload
func (e *CapturedEvent) UnmarshalJSON(data []byte) error {
	*e = CapturedEvent{}
	fields, err := decodeObject(data)
	if err != nil || fields == nil {
		return nil
	}
	e.Type = rawString(fields["type"])
	return nil
}

// TypeLabel returns the step type, or UNKNOWN when the step has none
func (s Step) TypeLabel() string {
	if s.Type == "" {
		return StepTypeUnknown
	}
	return s.Type
}

// FirstHotspotLabel returns the label of the first hotspot, if any
func (s Step) FirstHotspotLabel() string {
	if len(s.Hotspots) == 0 {
		return ""
	}
	return s.Hotspots[0].Label
}

// PageURL returns the page URL recorded for the step. The step-level page
// context wins, then the click context, then the first hotspot.
func (s Step) PageURL() string {
	if s.PageContext != nil && s.PageContext.URL != "" {
		return s.PageContext.URL
	}
	if s.ClickContext != nil && s.ClickContext.PageContext != nil && s.ClickContext.PageContext.URL != "" {
		return s.ClickContext.PageContext.URL
	}
	if len(s.Hotspots) > 0 && s.Hotspots[0].PageContext != nil {
		return s.Hotspots[0].PageContext.URL
	}
	return ""
}

// ClickText returns the clicked element's text, if recorded
func (s Step) ClickText() string {
	if s.ClickContext == nil {
		return ""
	}
	return s.ClickContext.Text
}

// ClickElementType returns the clicked element's type, if recorded
func (s Step) ClickElementType() string {
	if s.ClickContext == nil {
		return ""
	}
	return s.ClickContext.ElementType
}

// DisplayName returns the flow name or a placeholder
func (f *Flow) DisplayName() string {
	if f.Name == "" {
		return defaultFlowName
	}
	return f.Name
}

// Statistics aggregates step and event counts
func (f *Flow) Statistics() Statistics {
	stats := Statistics{
		Name:           f.DisplayName(),
		TotalSteps:     len(f.Steps),
		CapturedEvents: len(f.CapturedEvents),
		StepTypes:      make(map[string]int),
		UseCase:        f.UseCase,
	}
	if stats.UseCase == "" {
		stats.UseCase = defaultUseCase
	}

	for _, step := range f.Steps {
		label := step.TypeLabel()
		if _, seen := stats.StepTypes[label]; !seen {
			stats.order = append(stats.order, label)
		}
		stats.StepTypes[label]++
	}

	return stats
}

// StepTypeCounts returns the step type breakdown in order of first
// appearance. Statistics decoded from JSON or YAML have no recorded order
// and fall back to alphabetical.
func (s Statistics) StepTypeCounts() []StepTypeCount {
	order := s.order
	if len(order) != len(s.StepTypes) {
		order = make([]string, 0, len(s.StepTypes))
		for stepType := range s.StepTypes {
			order = append(order, stepType)
		}
		sort.Strings(order)
	}

	counts := make([]StepTypeCount, 0, len(order))
	for _, stepType := range order {
		counts = append(counts, StepTypeCount{Type: stepType, Count: s.StepTypes[stepType]})
	}
	return counts
}

// decodeObject returns the members of a JSON object, nil for JSON null or an
// absent value, and an error for anything else.
func decodeObject(data json.RawMessage) (map[string]json.RawMessage, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

func rawString(data json.RawMessage) string {
	if len(data) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return ""
	}
	return s
}

func rawArray(data json.RawMessage) []json.RawMessage {
	if len(data) == 0 {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil
	}
	return items
}

func rawPageContext(data json.RawMessage) *PageContext {
	fields, err := decodeObject(data)
	if err != nil || fields == nil {
		return nil
	}
	return &PageContext{URL: rawString(fields["url"])}
}
