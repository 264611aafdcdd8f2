package llm

import (
	"context"
	"errors"
	"net"
)

// Provider failure codes.
const (
	ErrCodeHTTPStatus     = "http_status"
	ErrCodeTimeout        = "timeout"
	ErrCodeTransport      = "transport"
	ErrCodeNoCandidates   = "no_candidates"
	ErrCodeNoText         = "no_text"
	ErrCodeInvalidRequest = "invalid_request"
)

// ProviderError is the single error kind surfaced by an LLM call. Code
// tells the sub-cause apart; StatusCode and Body are set for non-2xx
// responses.
type ProviderError struct {
	Code       string
	Message    string
	StatusCode int
	Body       string
	Err        error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *ProviderError) Unwrap() error { return e.Err }

func NewProviderError(code, message string, err error) *ProviderError {
	return &ProviderError{Code: code, Message: message, Err: err}
}

func IsProviderError(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe)
}

func IsTimeout(err error) bool {
	return hasCode(err, ErrCodeTimeout)
}

func hasCode(err error, code string) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && pe.Code == code
}

// transportError classifies a failed round trip as timeout or transport.
func transportError(prefix string, err error) *ProviderError {
	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		return NewProviderError(ErrCodeTimeout, prefix+" timeout", err)
	}
	return NewProviderError(ErrCodeTransport, prefix+" request failed", err)
}
