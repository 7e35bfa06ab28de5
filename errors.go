package finsight

import (
	"errors"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

var (
	ErrInvalidTask     = errors.New("invalid task")
	ErrEmptyPlan       = errors.New("empty plan")
	ErrInvalidConfig   = errors.New("invalid configuration")
	ErrNoCollaborator  = errors.New("missing collaborator")
	ErrMalformedOutput = errors.New("malformed oracle output")
)

// ErrorKind classifies a failure that crosses a stage boundary.
// The set is closed; consumers can rely on exhaustive matching.
type ErrorKind string

const (
	ErrorKindConfig       ErrorKind = "config"
	ErrorKindLLMService   ErrorKind = "llm_service"
	ErrorKindLLMAuth      ErrorKind = "llm_auth"
	ErrorKindLLMTimeout   ErrorKind = "llm_timeout"
	ErrorKindLLMUnknown   ErrorKind = "llm_unknown"
	ErrorKindDataProvider ErrorKind = "data_provider"
	ErrorKindValidation   ErrorKind = "validation"
	ErrorKindQuery        ErrorKind = "query"
	ErrorKindUnknown      ErrorKind = "unknown"
)

// Error is a classified failure with a human message, an optional
// remediation suggestion, and optional debug detail. Debug detail holds the
// raw underlying cause and is for diagnostics only; it is never part of the
// default user-facing rendering.
type Error struct {
	Kind       ErrorKind
	Message    string
	Suggestion string
	Debug      string

	cause error
}

// NewError creates a classified error of the given kind.
func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// WithSuggestion attaches a remediation hint for the user.
func (e *Error) WithSuggestion(suggestion string) *Error {
	e.Suggestion = suggestion
	return e
}

// WithDebug attaches raw diagnostic detail.
func (e *Error) WithDebug(debug string) *Error {
	e.Debug = debug
	return e
}

// WithCause attaches the underlying error. The cause is also recorded as
// debug detail when none was set explicitly.
func (e *Error) WithCause(cause error) *Error {
	e.cause = cause
	if e.Debug == "" && cause != nil {
		e.Debug = cause.Error()
	}
	return e
}

// AsError extracts a classified *Error from err's chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the ErrorKind of err, or ErrorKindUnknown when err carries
// no classification.
func KindOf(err error) ErrorKind {
	if e, ok := AsError(err); ok {
		return e.Kind
	}
	return ErrorKindUnknown
}

// synthesisRule maps a message signature to a classified synthesis failure.
type synthesisRule struct {
	match func(msg string) bool
	build func(cause error) *Error
}

func containsAny(msg string, signatures ...string) bool {
	for _, s := range signatures {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

// synthesisRules is evaluated top to bottom against the lower-cased message
// of a synthesis failure: service unavailability first, then authorization,
// then timeout. The signatures mirror the upstream providers' unstructured
// error text and are best-effort only; this is not an error-code contract.
var synthesisRules = []synthesisRule{
	{
		match: func(msg string) bool { return containsAny(msg, "524", "provider returned error") },
		build: func(cause error) *Error {
			return NewError(ErrorKindLLMService, "LLM service error: temporary upstream failure").
				WithSuggestion("The model endpoint is rate limited or overloaded. Try again in a moment.").
				WithCause(cause)
		},
	},
	{
		match: func(msg string) bool { return containsAny(msg, "401", "unauthorized") },
		build: func(cause error) *Error {
			return NewError(ErrorKindLLMAuth, "LLM authentication failed").
				WithSuggestion("Verify the LLM API key in your configuration.").
				WithCause(cause)
		},
	},
	{
		match: func(msg string) bool { return containsAny(msg, "timeout") },
		build: func(cause error) *Error {
			return NewError(ErrorKindLLMTimeout, "LLM request timed out").
				WithSuggestion("Try again. Slow generations need a longer transport timeout.").
				WithCause(cause)
		},
	},
}

// ClassifySynthesisError assigns an ErrorKind to a failure raised by the
// synthesis oracle by inspecting its message text case-insensitively.
// Failures matching no known signature are classified as llm_unknown.
func ClassifySynthesisError(err error) *Error {
	if e, ok := AsError(err); ok {
		return e
	}

	msg := strings.ToLower(err.Error())
	for _, rule := range synthesisRules {
		if rule.match(msg) {
			return rule.build(err)
		}
	}

	return NewError(ErrorKindLLMUnknown, fmt.Sprintf("answer synthesis failed: %v", err)).
		WithCause(goerr.Wrap(err, "unclassified synthesis failure"))
}
