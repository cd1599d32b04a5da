package retry

import (
	"context"
	"time"

	"cardvault/core/errs"

	"github.com/cenkalti/backoff/v4"
	"gorm.io/gorm"
)

// Policy parameterizes a retry loop: how many attempts and how the wait
// between them grows.
type Policy struct {
	// MaxAttempts is the total number of tries, including the first.
	MaxAttempts int
	// InitialInterval is the wait before the first retry.
	InitialInterval time.Duration
	// MaxInterval caps the exponential growth of the wait.
	MaxInterval time.Duration
}

// DefaultPolicy suits short store writes contending on the SQLite lock.
var DefaultPolicy = Policy{
	MaxAttempts:     5,
	InitialInterval: 50 * time.Millisecond,
	MaxInterval:     2 * time.Second,
}

func (p Policy) newBackOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialInterval
	b.MaxInterval = p.MaxInterval
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(attempts-1)), ctx)
}

// Do runs op, retrying with exponential backoff as long as the returned
// error is retryable per errs.Retryable. Non-retryable errors abort
// immediately.
func Do(ctx context.Context, policy Policy, op func() error) error {
	wrapped := func() error {
		err := op()
		if err == nil {
			return nil
		}
		if !errs.Retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	return backoff.Retry(wrapped, policy.newBackOff(ctx))
}

// Transaction runs fn inside a database transaction, retrying the whole
// transaction on retryable failures. Each attempt sees a fresh transaction;
// a failed attempt is fully rolled back before the next begins.
func Transaction(ctx context.Context, db *gorm.DB, policy Policy, fn func(tx *gorm.DB) error) error {
	return Do(ctx, policy, func() error {
		return db.WithContext(ctx).Transaction(fn)
	})
}
