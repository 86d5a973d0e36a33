package internal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// CompletionRequest is a single system + user prompt completion
type CompletionRequest struct {
	SystemPrompt string
	UserPrompt   string
	Model        string
	Temperature  float64
}

// Completer returns text for a prompt. Any completion-capable service
// satisfies it.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// serviceNamer is implemented by completers that know their provider
type serviceNamer interface {
	ServiceName() string
}

// ServiceName returns the provider behind c, "completion" when unknown
func ServiceName(c Completer) string {
	if n, ok := c.(serviceNamer); ok {
		return n.ServiceName()
	}
	return "completion"
}

// ChatCompletionService is the subset of the OpenAI SDK used here
type ChatCompletionService interface {
	New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// OpenAICompleter calls the OpenAI chat completions API
type OpenAICompleter struct {
	chatService ChatCompletionService
}

type completerOptions struct {
	baseURL string
}

// CompleterOption configures an OpenAICompleter
type CompleterOption func(*completerOptions)

// WithBaseURL points the client at an OpenAI-compatible endpoint
func WithBaseURL(url string) CompleterOption {
	return func(o *completerOptions) {
		o.baseURL = url
	}
}

// NewOpenAICompleter creates a completer authenticated with apiKey. The SDK's
// own retries are disabled; use NewRetryingCompleter to opt in.
func NewOpenAICompleter(apiKey string, opts ...CompleterOption) (*OpenAICompleter, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai API key is required")
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

	client := openai.NewClient(clientOptions...)
	return &OpenAICompleter{chatService: &client.Chat.Completions}, nil
}

// NewOpenAICompleterWithService creates a completer on top of an existing
// chat completion service
func NewOpenAICompleterWithService(service ChatCompletionService) *OpenAICompleter {
	return &OpenAICompleter{chatService: service}
}

// ServiceName identifies the provider in errors
func (c *OpenAICompleter) ServiceName() string {
	return ProviderOpenAI
}

// Complete issues one chat completion request
func (c *OpenAICompleter) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	if req.Model == "" {
		return "", fmt.Errorf("model is required")
	}

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(req.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.SystemPrompt),
			openai.UserMessage(req.UserPrompt),
		},
		Temperature: openai.Float(req.Temperature),
	}

	LogDebug("Requesting completion from %s (temperature %.2f)", req.Model, req.Temperature)
	resp, err := c.chatService.New(ctx, params)
	if err != nil {
		return "", err
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", errors.New("completion returned no choices")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// RetryingCompleter retries a Completer with exponential backoff
type RetryingCompleter struct {
	next            Completer
	maxTries        uint
	initialInterval time.Duration
}

// NewRetryingCompleter wraps next so that a failed call is attempted up to
// retries more times
func NewRetryingCompleter(next Completer, retries int) *RetryingCompleter {
	if retries < 0 {
		retries = 0
	}
	return &RetryingCompleter{
		next:            next,
		maxTries:        uint(retries) + 1,
		initialInterval: 500 * time.Millisecond,
	}
}

// ServiceName reports the wrapped completer's provider
func (r *RetryingCompleter) ServiceName() string {
	return ServiceName(r.next)
}

// Complete calls the wrapped completer until it succeeds or runs out of tries
func (r *RetryingCompleter) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.initialInterval

	attempt := 0
	operation := func() (string, error) {
		attempt++
		text, err := r.next.Complete(ctx, req)
		if err != nil {
			if ctx.Err() != nil {
				return "", backoff.Permanent(err)
			}
			LogWarn("Completion attempt %d/%d failed: %v", attempt, r.maxTries, err)
			return "", err
		}
		return text, nil
	}

	return backoff.Retry[string](ctx, operation,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(r.maxTries),
	)
}

// NewCompleterFromConfig builds the completer described by cfg
func NewCompleterFromConfig(cfg *Config) (Completer, error) {
	if err := cfg.RequireCredential(); err != nil {
		return nil, err
	}

	var (
		completer Completer
		err       error
	)
	switch cfg.ProviderName() {
	case ProviderAnthropic:
		var opts []CompleterOption
		if cfg.AnthropicBaseURL != "" {
			opts = append(opts, WithBaseURL(cfg.AnthropicBaseURL))
		}
		completer, err = NewAnthropicCompleter(cfg.AnthropicAPIKey, opts...)
	case ProviderOpenAI:
		var opts []CompleterOption
		if cfg.OpenAIBaseURL != "" {
			opts = append(opts, WithBaseURL(cfg.OpenAIBaseURL))
		}
		completer, err = NewOpenAICompleter(cfg.OpenAIAPIKey, opts...)
	default:
		return nil, &ConfigurationError{
			Key:   "FLOW_ANALYZER_PROVIDER",
			Value: cfg.Provider,
			Hint:  "Use openai or anthropic.",
		}
	}
	if err != nil {
		return nil, err
	}

	if cfg.Retries > 0 {
		LogDebug("Completion retries enabled: %d", cfg.Retries)
		return NewRetryingCompleter(completer, cfg.Retries), nil
	}
	return completer, nil
}
