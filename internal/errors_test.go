package internal

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestConfigurationError(t *testing.T) {
	err := &ConfigurationError{
		Key:  "OPENAI_API_KEY",
		Hint: "Create a .env file with your API key.",
	}

	errorMsg := err.Error()
	if !strings.Contains(errorMsg, "OPENAI_API_KEY not found") {
		t.Errorf("ConfigurationError.Error() should name the key, got: %q", errorMsg)
	}
	if !strings.Contains(errorMsg, ".env") {
		t.Errorf("ConfigurationError.Error() should contain hint, got: %q", errorMsg)
	}

	invalid := &ConfigurationError{Key: "FLOW_ANALYZER_PROVIDER", Value: "cohere", Hint: "Use openai or anthropic."}
	if got := invalid.Error(); !strings.Contains(got, `invalid FLOW_ANALYZER_PROVIDER "cohere"`) {
		t.Errorf("ConfigurationError.Error() for an invalid value = %q", got)
	}
}

func TestNotFoundError(t *testing.T) {
	originalErr := errors.New("no such file or directory")
	err := &NotFoundError{
		Path: "/test/flow.json",
		Op:   "stat",
		Err:  originalErr,
	}

	errorMsg := err.Error()
	if !strings.Contains(errorMsg, "file not found") {
		t.Errorf("NotFoundError.Error() should contain 'file not found', got: %q", errorMsg)
	}
	if !strings.Contains(errorMsg, "/test/flow.json") {
		t.Errorf("NotFoundError.Error() should contain path, got: %q", errorMsg)
	}

	if !errors.Is(err, originalErr) {
		t.Error("NotFoundError.Unwrap() should return original error")
	}

	bare := &NotFoundError{Path: "flow.json"}
	if got := bare.Error(); got != "file not found: flow.json" {
		t.Errorf("NotFoundError.Error() without cause = %q", got)
	}
}

func TestMalformedInputError(t *testing.T) {
	originalErr := errors.New("unexpected end of JSON input")
	err := &MalformedInputError{
		Path: "flow.json",
		Err:  originalErr,
	}

	errorMsg := err.Error()
	if !strings.Contains(errorMsg, "malformed input") {
		t.Errorf("MalformedInputError.Error() should contain 'malformed input', got: %q", errorMsg)
	}

	if !errors.Is(err, originalErr) {
		t.Error("MalformedInputError.Unwrap() should return original error")
	}
}

func TestExternalServiceError(t *testing.T) {
	originalErr := errors.New("401 Unauthorized")
	err := &ExternalServiceError{
		Service: "openai",
		Err:     originalErr,
	}

	errorMsg := err.Error()
	if !strings.Contains(errorMsg, "external service error") {
		t.Errorf("ExternalServiceError.Error() should contain 'external service error', got: %q", errorMsg)
	}
	if !strings.Contains(errorMsg, "openai") {
		t.Errorf("ExternalServiceError.Error() should contain service, got: %q", errorMsg)
	}

	if !errors.Is(err, originalErr) {
		t.Error("ExternalServiceError.Unwrap() should return original error")
	}
}

func TestCacheError(t *testing.T) {
	originalErr := errors.New("permission denied")
	err := &CacheError{
		Key: "abc123",
		Op:  "write",
		Err: originalErr,
	}

	errorMsg := err.Error()
	if !strings.Contains(errorMsg, "cache error") {
		t.Errorf("CacheError.Error() should contain 'cache error', got: %q", errorMsg)
	}
	if !strings.Contains(errorMsg, "abc123") {
		t.Errorf("CacheError.Error() should contain key, got: %q", errorMsg)
	}

	if !errors.Is(err, originalErr) {
		t.Error("CacheError.Unwrap() should return original error")
	}
}

func TestExportError(t *testing.T) {
	originalErr := errors.New("write failed")
	err := &ExportError{
		Format: "jsonl",
		Path:   "/output/file.jsonl",
		Err:    originalErr,
	}

	errorMsg := err.Error()
	if !strings.Contains(errorMsg, "export error") {
		t.Errorf("ExportError.Error() should contain 'export error', got: %q", errorMsg)
	}
	if !strings.Contains(errorMsg, "jsonl") {
		t.Errorf("ExportError.Error() should contain format, got: %q", errorMsg)
	}

	if !errors.Is(err, originalErr) {
		t.Error("ExportError.Unwrap() should return original error")
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: 0},
		{name: "configuration", err: &ConfigurationError{Key: "OPENAI_API_KEY"}, want: ExitCodeConfiguration},
		{name: "not found", err: &NotFoundError{Path: "flow.json"}, want: ExitCodeNotFound},
		{name: "malformed", err: &MalformedInputError{Path: "flow.json", Err: errors.New("bad")}, want: ExitCodeMalformed},
		{name: "external", err: &ExternalServiceError{Service: "openai", Err: errors.New("timeout")}, want: ExitCodeExternal},
		{
			name: "wrapped external",
			err:  fmt.Errorf("failed to summarize: %w", &ExternalServiceError{Service: "openai", Err: errors.New("timeout")}),
			want: ExitCodeExternal,
		},
		{name: "unexpected", err: errors.New("boom"), want: ExitCodeFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestErrorChain(t *testing.T) {
	root := errors.New("connection reset")
	err := fmt.Errorf("failed to summarize: %w", &ExternalServiceError{Service: "openai", Err: root})

	chain := ErrorChain(err)
	if len(chain) != 3 {
		t.Fatalf("ErrorChain() returned %d entries, want 3: %v", len(chain), chain)
	}
	if chain[2] != "connection reset" {
		t.Errorf("ErrorChain() innermost = %q, want %q", chain[2], "connection reset")
	}

	if got := ErrorChain(nil); len(got) != 0 {
		t.Errorf("ErrorChain(nil) = %v, want empty", got)
	}
}
