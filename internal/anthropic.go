package internal

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const anthropicMaxTokens = 1024

// MessageService is the subset of the Anthropic SDK used here
type MessageService interface {
	New(ctx context.Context, body anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

// AnthropicCompleter calls the Anthropic messages API
type AnthropicCompleter struct {
	messages MessageService
}

// NewAnthropicCompleter creates a completer authenticated with apiKey. Like
// the OpenAI completer, SDK retries are disabled.
func NewAnthropicCompleter(apiKey string, opts ...CompleterOption) (*AnthropicCompleter, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic API key is required")
	}

	options := &completerOptions{}
	for _, opt := range opts {
		opt(options)
	}

	clientOptions := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if options.baseURL != "" {
		clientOptions = append(clientOptions, option.WithBaseURL(options.baseURL))
	}

	client := anthropic.NewClient(clientOptions...)
	return &AnthropicCompleter{messages: &client.Messages}, nil
}

// NewAnthropicCompleterWithService creates a completer on top of an existing
// message service
func NewAnthropicCompleterWithService(service MessageService) *AnthropicCompleter {
	return &AnthropicCompleter{messages: service}
}

// ServiceName identifies the provider in errors
func (c *AnthropicCompleter) ServiceName() string {
	return ProviderAnthropic
}

// Complete issues one messages request and joins the returned text blocks
func (c *AnthropicCompleter) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	if req.Model == "" {
		return "", fmt.Errorf("model is required")
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(req.Model),
		MaxTokens: anthropicMaxTokens,
		System: []anthropic.TextBlockParam{
			{Text: req.SystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.UserPrompt)),
		},
		Temperature: anthropic.Float(req.Temperature),
	}

	LogDebug("Requesting message from %s (temperature %.2f)", req.Model, req.Temperature)
	msg, err := c.messages.New(ctx, params)
	if err != nil {
		return "", err
	}
	if msg == nil {
		return "", errors.New("completion returned no content")
	}

	var parts []string
	for _, block := range msg.Content {
		if block.Type == "text" && block.Text != "" {
			parts = append(parts, block.Text)
		}
	}
	if len(parts) == 0 {
		return "", errors.New("completion returned no content")
	}

	return strings.TrimSpace(strings.Join(parts, "\n")), nil
}
