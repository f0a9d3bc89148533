package llm

import (
	"context"
	"errors"
	"math"
	"time"
)

// RetryProvider decorates a Provider with bounded exponential backoff.
// Only transient failures are retried (see Error.Retryable); schema
// violations and malformed bodies surface immediately. The final error
// carries the total attempt count.
type RetryProvider struct {
	inner  Provider
	config RetryConfig
}

// WithRetry wraps a Provider with retry logic.
func WithRetry(p Provider, cfg RetryConfig) Provider {
	return &RetryProvider{inner: p, config: cfg}
}

func (r *RetryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	var lastErr error

	for attempt := range r.config.MaxAttempts {
		resp, err := r.inner.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		infErr := AsError(err)
		if infErr == nil || !infErr.Retryable() {
			return nil, stampAttempts(err, attempt+1)
		}

		// Last attempt: report, don't sleep.
		if attempt == r.config.MaxAttempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(r.backoff(attempt, infErr)):
		}
	}

	return nil, stampAttempts(lastErr, r.config.MaxAttempts)
}

func (r *RetryProvider) ModelID() string {
	return r.inner.ModelID()
}

// backoff computes the wait before the next attempt: initial * multiplier^n,
// capped at MaxWait. Rate-limit responses that name a wait get that wait.
func (r *RetryProvider) backoff(attempt int, infErr *Error) time.Duration {
	if infErr.Kind == KindRateLimited && infErr.RetryAfter > 0 {
		return infErr.RetryAfter
	}

	wait := float64(r.config.InitialWait) * math.Pow(r.config.Multiplier, float64(attempt))
	if r.config.MaxWait > 0 && wait > float64(r.config.MaxWait) {
		wait = float64(r.config.MaxWait)
	}
	return time.Duration(wait)
}

// stampAttempts records how many calls were made on the inference error.
// Non-inference errors (context cancellation, request marshaling) pass
// through untouched.
func stampAttempts(err error, attempts int) error {
	var infErr *Error
	if errors.As(err, &infErr) {
		infErr.Attempts = attempts
	}
	return err
}
