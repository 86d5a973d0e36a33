package internal

import (
	"errors"
	"fmt"
)

// Exit codes returned by the CLI for each error category
const (
	ExitCodeFailure       = 1
	ExitCodeConfiguration = 2
	ExitCodeNotFound      = 3
	ExitCodeMalformed     = 4
	ExitCodeExternal      = 5
)

// ConfigurationError represents a missing or invalid configuration value
type ConfigurationError struct {
	Key   string
	Value string // set when the key is present but invalid
	Hint  string
}

func (e *ConfigurationError) Error() string {
	msg := fmt.Sprintf("configuration error: %s not found", e.Key)
	if e.Value != "" {
		msg = fmt.Sprintf("configuration error: invalid %s %q", e.Key, e.Value)
	}
	if e.Hint != "" {
		msg += ". " + e.Hint
	}
	return msg
}

// NotFoundError represents a flow file that does not exist or cannot be read
type NotFoundError struct {
	Path string
	Op   string // "stat", "read"
	Err  error
}

func (e *NotFoundError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("file not found: %s", e.Path)
	}
	return fmt.Sprintf("file not found: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *NotFoundError) Unwrap() error {
	return e.Err
}

// MalformedInputError represents a flow document that is not valid JSON
type MalformedInputError struct {
	Path string
	Err  error
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("malformed input %s: %v", e.Path, e.Err)
}

func (e *MalformedInputError) Unwrap() error {
	return e.Err
}

// ExternalServiceError represents a failure of the remote completion service
type ExternalServiceError struct {
	Service string
	Err     error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("external service error [%s]: %v", e.Service, e.Err)
}

func (e *ExternalServiceError) Unwrap() error {
	return e.Err
}

// CacheError represents errors reading or writing summary cache entries
type CacheError struct {
	Key string
	Op  string // "read", "parse", "write"
	Err error
}

func (e *CacheError) Error() string {
	return fmt.Sprintf("cache error: %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *CacheError) Unwrap() error {
	return e.Err
}

// ExportError represents errors during export
type ExportError struct {
	Format string
	Path   string
	Err    error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export error [%s] %s: %v", e.Format, e.Path, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

// ExitCode maps an error to the process exit status
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	var cfgErr *ConfigurationError
	var notFound *NotFoundError
	var malformed *MalformedInputError
	var external *ExternalServiceError

	switch {
	case errors.As(err, &cfgErr):
		return ExitCodeConfiguration
	case errors.As(err, &notFound):
		return ExitCodeNotFound
	case errors.As(err, &malformed):
		return ExitCodeMalformed
	case errors.As(err, &external):
		return ExitCodeExternal
	default:
		return ExitCodeFailure
	}
}

// ErrorChain returns the message of err followed by the message of every
// error it wraps, outermost first.
func ErrorChain(err error) []string {
	var chain []string
	for err != nil {
		chain = append(chain, err.Error())
		err = errors.Unwrap(err)
	}
	return chain
}
