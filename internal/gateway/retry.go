package gateway

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// NewBackoff returns a fresh exponential backoff that gives up after
// maxElapsed. BackOff values are stateful; never share one between calls.
func NewBackoff(maxElapsed time.Duration) backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 200 * time.Millisecond
	bo.MaxElapsedTime = maxElapsed
	return bo
}

// RetryTransient runs op and retries it with bo while it fails with a
// transient error. Other errors stop immediately and are returned as is.
func RetryTransient(ctx context.Context, bo backoff.BackOff, op func() error) error {
	return backoff.Retry(func() error {
		err := op()
		if err != nil && !Transient(err) {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(bo, ctx))
}
