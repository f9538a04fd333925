package client

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
)

// RetryPolicy bounds how transient transport failures are retried. HTTP
// responses are never retried, whatever their status: a status means the
// server made a decision. Cancellation is never retried either.
type RetryPolicy struct {
	// MaxRetries is the number of additional attempts after the first.
	MaxRetries int
	// BaseDelay precedes the first retry and doubles for each one after.
	BaseDelay time.Duration
}

// DefaultRetryPolicy retries twice, waiting 500ms then 1s.
var DefaultRetryPolicy = RetryPolicy{MaxRetries: 2, BaseDelay: 500 * time.Millisecond}

func (p RetryPolicy) withDefaults() RetryPolicy {
	if p.MaxRetries < 0 {
		p.MaxRetries = 0
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = DefaultRetryPolicy.BaseDelay
	}
	return p
}

// Do runs fn until it succeeds, fails with a non-transient error, or the
// attempt budget runs out. The last error is returned as-is.
func (p RetryPolicy) Do(ctx context.Context, fn func() error) error {
	p = p.withDefaults()
	maxAttempts := p.MaxRetries + 1
	delay := p.BaseDelay

	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err = fn()
		if err == nil || !isTransient(err) || attempt == maxAttempts {
			return err
		}
		log.Warn().Err(err).Int("attempt", attempt).Int("max_attempts", maxAttempts).Msg("Request failed, retrying...")
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		delay *= 2
	}
	return err
}

// isTransient reports whether an error is worth retrying. Only transport
// failures qualify; cancelled calls and already-normalized errors do not.
// A timeout counts as a transport failure.
func isTransient(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return false
	}
	return true
}
