package llm

import (
	"errors"
	"fmt"
	"time"
)

// ErrorKind classifies an inference failure.
type ErrorKind string

const (
	// KindTimeout — the call exceeded the client timeout or the context
	// deadline while waiting for the endpoint.
	KindTimeout ErrorKind = "timeout"

	// KindUnreachable — connection-level failure (DNS, refused, reset).
	KindUnreachable ErrorKind = "unreachable"

	// KindBadStatus — the endpoint answered with a non-2xx status.
	KindBadStatus ErrorKind = "bad_status"

	// KindMalformedBody — the endpoint answered 2xx but the body does not
	// carry the expected chat-completion shape. Never retried: a contract
	// violation does not fix itself on the next attempt.
	KindMalformedBody ErrorKind = "malformed_body"

	// KindRateLimited — the endpoint returned 429. The SDK-backed providers
	// surface this so the retry layer can honor Retry-After.
	KindRateLimited ErrorKind = "rate_limited"
)

// Error is an inference failure. Attempts is filled in by the retry layer
// with the total number of calls made before giving up.
type Error struct {
	Kind     ErrorKind
	Status   int // HTTP status for KindBadStatus, zero otherwise
	Attempts int
	// RetryAfter is the server-requested wait for KindRateLimited.
	RetryAfter time.Duration
	Err        error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("inference %s", e.Kind)
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Status)
	}
	if e.Attempts > 0 {
		msg = fmt.Sprintf("%s after %d attempt(s)", msg, e.Attempts)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Retryable reports whether another attempt could plausibly succeed.
// Timeouts, transport failures, rate limits and server-side statuses are
// transient; client errors and malformed bodies are not.
func (e *Error) Retryable() bool {
	switch e.Kind {
	case KindTimeout, KindUnreachable, KindRateLimited:
		return true
	case KindBadStatus:
		return e.Status >= 500
	default:
		return false
	}
}

// AsError extracts an *Error from err, or nil.
func AsError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}
