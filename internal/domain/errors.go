package domain

import (
	"errors"
	"fmt"
)

type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindAuth
	KindRateLimit
	KindConfig
	KindUpstream
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindRateLimit:
		return "rate_limit"
	case KindConfig:
		return "config"
	case KindUpstream:
		return "upstream"
	default:
		return "unknown"
	}
}

// Error is the expected-failure type of the auth core. Message is safe to
// show to the caller; Err carries internals and is only logged.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func ValidationError(msg string) error {
	return &Error{Kind: KindValidation, Message: msg}
}

func AuthError(msg string) error {
	return &Error{Kind: KindAuth, Message: msg}
}

func RateLimitError(msg string) error {
	return &Error{Kind: KindRateLimit, Message: msg}
}

func ConfigError(msg string) error {
	return &Error{Kind: KindConfig, Message: msg}
}

// UpstreamError wraps a store failure behind a generic message.
func UpstreamError(err error) error {
	return &Error{Kind: KindUpstream, Message: "service temporarily unavailable", Err: err}
}

// KindOf returns the kind of err, or 0 when err is not an *Error.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return 0
}
