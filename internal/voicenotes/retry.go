package voicenotes

import (
	"context"
	"strconv"
	"time"
)

// RetryPolicy controls how the client reacts to 429 responses. It is an
// explicit injectable value so tests can drive rate-limit sequences
// deterministically. MaxAttempts counts the initial request; the observed
// upstream behavior was an unbounded loop, capped here.
type RetryPolicy struct {
	MaxAttempts  int
	DefaultDelay time.Duration
	// Sleep waits for d or until the context is cancelled. Nil means a
	// real clock.
	Sleep func(ctx context.Context, d time.Duration) error
}

// DefaultRetryPolicy returns the production policy: five attempts, 5s
// fallback delay when the server omits Retry-After.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 5, DefaultDelay: 5 * time.Second}
}

func (p RetryPolicy) sleep(ctx context.Context, d time.Duration) error {
	if p.Sleep != nil {
		return p.Sleep(ctx, d)
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// retryDelay interprets a Retry-After header value in seconds, falling back
// to the policy default.
func (p RetryPolicy) retryDelay(header string) time.Duration {
	if header != "" {
		if secs, err := strconv.Atoi(header); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return p.DefaultDelay
}
