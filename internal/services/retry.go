package services

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/patientportal/backend/internal/models"
	"go.uber.org/zap"
)

// maxRetryDelay caps the exponential backoff between store attempts
const maxRetryDelay = 2 * time.Second

// RetryPolicy controls how failed store operations are retried
type RetryPolicy struct {
	// Attempts is the total number of tries, including the first one
	Attempts  int
	BaseDelay time.Duration
}

type retrier struct {
	policy  RetryPolicy
	logger  *zap.Logger
	onRetry func(operation string)
}

// newBackOff starts at BaseDelay and doubles after every failure up to maxRetryDelay
func (r retrier) newBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.policy.BaseDelay
	b.RandomizationFactor = 0
	b.Multiplier = 2
	b.MaxInterval = maxRetryDelay
	return b
}

// retryValue runs fn until it succeeds, returns a permanent error, or the attempts are used up
func retryValue[T any](ctx context.Context, r retrier, operation string, fn func(ctx context.Context) (T, error)) (T, error) {
	attempts := max(r.policy.Attempts, 1)
	attempt := 0

	out, err := backoff.Retry(ctx,
		func() (T, error) {
			attempt++
			v, err := fn(ctx)
			if err != nil && !isRetryable(err) {
				return v, backoff.Permanent(err)
			}
			return v, err
		},
		backoff.WithBackOff(r.newBackOff()),
		backoff.WithMaxTries(uint(attempts)),
		backoff.WithNotify(func(err error, delay time.Duration) {
			r.logger.Warn("store operation failed, retrying",
				zap.String("operation", operation),
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", attempts),
				zap.Duration("delay", delay),
				zap.Error(err),
			)
			if r.onRetry != nil {
				r.onRetry(operation)
			}
		}),
	)

	// the last try is returned as is, even when it was marked permanent
	var permanent *backoff.PermanentError
	if errors.As(err, &permanent) {
		err = permanent.Unwrap()
	}

	return out, err
}

// isRetryable reports whether err may go away on a later attempt
func isRetryable(err error) bool {
	if models.IsNotFound(err) {
		return false
	}
	var validationErr *models.ValidationError
	if errors.As(err, &validationErr) {
		return false
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}
