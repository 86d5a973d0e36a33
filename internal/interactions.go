package internal

import (
	"fmt"
	"strings"
)

// Interaction is a normalized, human-readable description of one step or
// captured event
type Interaction struct {
	Type    string `json:"type" yaml:"type"`
	Action  string `json:"action" yaml:"action"`
	Details string `json:"details,omitempty" yaml:"details,omitempty"`
	URL     string `json:"url,omitempty" yaml:"url,omitempty"`
}

// eventInteractions maps captured event types to their canned interaction.
// The event payload is never inspected.
var eventInteractions = map[string]Interaction{
	"typing": {
		Type:    "typing",
		Action:  "Typed search query",
		Details: "User entered text into a search or input field",
	},
	"scrolling": {
		Type:    "scrolling",
		Action:  "Scrolled through page",
		Details: "User scrolled to browse content",
	},
	"dragging": {
		Type:    "dragging",
		Action:  "Dragged element",
		Details: "User dragged an element on the page",
	},
	"click": {
		Type:    "click",
		Action:  "Clicked element",
		Details: "User clicked on a page element",
	},
}

// Extractor converts flow steps and captured events into interactions
type Extractor struct{}

// NewExtractor creates a new Extractor
func NewExtractor() *Extractor {
	return &Extractor{}
}

// ExtractInteractions is a shorthand for NewExtractor().Extract(flow)
func ExtractInteractions(flow *Flow) []Interaction {
	return NewExtractor().Extract(flow)
}

// Extract returns the interactions for every step, in order, followed by the
// interactions for every captured event, in order. Events are appended after
// the steps rather than merged by time.
func (e *Extractor) Extract(flow *Flow) []Interaction {
	interactions := make([]Interaction, 0)
	if flow == nil {
		return interactions
	}

	for _, step := range flow.Steps {
		if interaction, ok := e.extractStep(step); ok {
			interactions = append(interactions, interaction)
		}
	}

	for _, event := range flow.CapturedEvents {
		if interaction, ok := e.extractEvent(event); ok {
			interactions = append(interactions, interaction)
		}
	}

	LogDebug("Extracted %d interaction(s) from %d step(s) and %d event(s)", len(interactions), len(flow.Steps), len(flow.CapturedEvents))
	return interactions
}

// extractStep applies the rule for the step's type
func (e *Extractor) extractStep(step Step) (Interaction, bool) {
	switch step.Type {
	case StepTypeChapter:
		return e.extractChapter(step)
	case StepTypeImage:
		return e.extractImage(step)
	case StepTypeVideo:
		// Motion is described by the captured events instead.
		return Interaction{}, false
	default:
		return e.extractGeneric(step)
	}
}

func (e *Extractor) extractChapter(step Step) (Interaction, bool) {
	if step.Title == "" || strings.Contains(strings.ToLower(step.Title), "thank you") {
		return Interaction{}, false
	}
	return Interaction{
		Type:    "chapter",
		Action:  fmt.Sprintf("Started section: %s", step.Title),
		Details: step.Subtitle,
	}, true
}

func (e *Extractor) extractImage(step Step) (Interaction, bool) {
	if label := step.FirstHotspotLabel(); label != "" {
		return Interaction{
			Type:   "click",
			Action: cleanLabel(label),
			URL:    step.PageURL(),
		}, true
	}

	text := step.ClickText()
	elementType := step.ClickElementType()
	if text == "" && elementType == "" {
		return Interaction{}, false
	}

	action := fmt.Sprintf("Clicked %s", elementType)
	if text != "" {
		action = fmt.Sprintf("Clicked %s: %s", elementType, text)
	}

	return Interaction{
		Type:   "click",
		Action: strings.TrimSpace(action),
		URL:    step.PageURL(),
	}, true
}

func (e *Extractor) extractGeneric(step Step) (Interaction, bool) {
	if step.Title == "" {
		return Interaction{}, false
	}
	stepType := step.TypeLabel()
	return Interaction{
		Type:    strings.ToLower(stepType),
		Action:  fmt.Sprintf("Interacted with %s: %s", stepType, step.Title),
		Details: step.Subtitle,
	}, true
}

func (e *Extractor) extractEvent(event CapturedEvent) (Interaction, bool) {
	interaction, ok := eventInteractions[event.Type]
	return interaction, ok
}

// cleanLabel strips markdown emphasis from a hotspot label
func cleanLabel(label string) string {
	return strings.TrimSpace(strings.ReplaceAll(label, "*", ""))
}
