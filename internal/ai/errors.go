package ai

import "errors"

// Sentinel errors surfaced by the generative client. Retry classification is
// internal to the client; callers only ever see these.
var (
	// ErrAIServiceUnavailable means every attempt failed with a retryable
	// condition (overload, timeout, empty response).
	ErrAIServiceUnavailable = errors.New("AI service unavailable")

	// ErrInvalidRequest means the vendor rejected the request outright
	// (HTTP 400). Never retried.
	ErrInvalidRequest = errors.New("invalid AI request")

	// ErrAuthorizationDenied means the vendor refused the credentials
	// (HTTP 403). Never retried.
	ErrAuthorizationDenied = errors.New("AI authorization denied")
)
