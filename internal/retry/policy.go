// Package retry holds the bounded retry policy used for outbound calls.
package retry

import (
	"context"
	"time"

	retrygo "github.com/avast/retry-go/v4"
)

// Policy describes how a call is retried: how many attempts in total, how
// long each attempt may run, how long to wait between attempts and which
// errors are worth another try.
type Policy struct {
	MaxAttempts    uint
	AttemptTimeout time.Duration
	Delay          time.Duration
	Retryable      func(error) bool
	// OnRetry is called after a failed attempt that will be retried.
	OnRetry func(attempt uint, err error)
}

// Default is one attempt plus three retries, 30s each, 2s apart.
func Default(retryable func(error) bool) Policy {
	return Policy{
		MaxAttempts:    4,
		AttemptTimeout: 30 * time.Second,
		Delay:          2 * time.Second,
		Retryable:      retryable,
	}
}

func (p Policy) options(ctx context.Context) []retrygo.Option {
	attempts := p.MaxAttempts
	if attempts == 0 {
		attempts = 1
	}
	retryable := p.Retryable
	if retryable == nil {
		retryable = func(error) bool { return false }
	}

	opts := []retrygo.Option{
		retrygo.Context(ctx),
		retrygo.Attempts(attempts),
		retrygo.Delay(p.Delay),
		retrygo.DelayType(retrygo.FixedDelay),
		retrygo.RetryIf(retryable),
		retrygo.LastErrorOnly(true),
	}
	if p.OnRetry != nil {
		opts = append(opts, retrygo.OnRetry(p.OnRetry))
	}
	return opts
}

// Do runs callback until it succeeds, returns a non-retryable error, the
// attempts run out or ctx is done. Each attempt gets its own deadline
// derived from ctx, so cancelling ctx abandons the whole sequence.
func Do[T any](ctx context.Context, p Policy, callback func(ctx context.Context) (T, error)) (T, error) {
	return retrygo.DoWithData(func() (T, error) {
		actx := ctx
		if p.AttemptTimeout > 0 {
			var cancel context.CancelFunc
			actx, cancel = context.WithTimeout(ctx, p.AttemptTimeout)
			defer cancel()
		}
		return callback(actx)
	}, p.options(ctx)...)
}
