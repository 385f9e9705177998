package kgerr

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryStore retries fn up to maxAttempts times with exponential backoff,
// for StoreError-class failures (default 3 attempts per the store retry
// policy). fn should return a *Error built by StoreErr; any other error is
// returned immediately without retrying.
func RetryStore(ctx context.Context, maxAttempts int, fn func() error) error {
	policy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(maxAttempts-1))
	return backoff.Retry(func() error {
		err := fn()
		if err == nil {
			return nil
		}
		if !Is(err, StoreError) {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(policy, ctx))
}

// RetryIpfs retries fn for IpfsUnavailable-class failures, capping backoff
// at maxWait (default 30s) and making at most maxAttempts attempts in total
// (default 5).
func RetryIpfs(ctx context.Context, maxAttempts int, maxWait time.Duration, fn func() error) error {
	exp := backoff.NewExponentialBackOff()
	exp.MaxInterval = maxWait
	policy := backoff.WithMaxRetries(exp, uint64(maxAttempts-1))
	return backoff.Retry(func() error {
		err := fn()
		if err == nil {
			return nil
		}
		if !Is(err, IpfsUnavailable) {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(policy, ctx))
}
