package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/patientportal/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestRetryValue_Attempts(t *testing.T) {
	transient := errors.New("bad connection")

	tests := []struct {
		name          string
		attempts      int
		errs          []error
		expectedCalls int
		expectedError error
		wantErr       bool
	}{
		{
			name:          "success on first try",
			attempts:      3,
			expectedCalls: 1,
		},
		{
			name:          "success after transient failures",
			attempts:      3,
			errs:          []error{transient, transient},
			expectedCalls: 3,
		},
		{
			name:          "attempts exhausted",
			attempts:      2,
			errs:          []error{transient, transient, transient},
			expectedCalls: 2,
			expectedError: transient,
			wantErr:       true,
		},
		{
			name:          "not found is permanent",
			attempts:      3,
			errs:          []error{models.ErrVideoNotFound},
			expectedCalls: 1,
			expectedError: models.ErrVideoNotFound,
			wantErr:       true,
		},
		{
			name:          "validation error is permanent",
			attempts:      3,
			errs:          []error{&models.ValidationError{Fields: []string{"bad"}}},
			expectedCalls: 1,
			wantErr:       true,
		},
		{
			name:          "zero attempts still tries once",
			attempts:      0,
			errs:          []error{transient},
			expectedCalls: 1,
			expectedError: transient,
			wantErr:       true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var retried []string
			r := retrier{
				policy:  RetryPolicy{Attempts: tt.attempts, BaseDelay: time.Millisecond},
				logger:  zap.NewNop(),
				onRetry: func(op string) { retried = append(retried, op) },
			}

			calls := 0
			_, err := retryValue(context.Background(), r, "op", func(ctx context.Context) (struct{}, error) {
				calls++
				if calls <= len(tt.errs) {
					return struct{}{}, tt.errs[calls-1]
				}
				return struct{}{}, nil
			})

			assert.Equal(t, tt.expectedCalls, calls)
			assert.Len(t, retried, tt.expectedCalls-1)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
			}
		})
	}
}

func TestRetrier_StopsWhenContextCancelled(t *testing.T) {
	r := retrier{
		policy: RetryPolicy{Attempts: 5, BaseDelay: time.Hour},
		logger: zap.NewNop(),
	}

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	done := make(chan error, 1)
	go func() {
		_, err := retryValue(ctx, r, "op", func(ctx context.Context) (int, error) {
			calls++
			return 0, errors.New("timeout")
		})
		done <- err
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, calls)
	case <-time.After(time.Second):
		t.Fatal("retry did not stop after cancellation")
	}
}

func TestRetryValue(t *testing.T) {
	r := retrier{policy: RetryPolicy{Attempts: 2, BaseDelay: time.Millisecond}, logger: zap.NewNop()}

	calls := 0
	v, err := retryValue(context.Background(), r, "op", func(ctx context.Context) (int, error) {
		calls++
		if calls == 1 {
			return 0, errors.New("transient")
		}
		return 42, nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, 2, calls)
}

func TestRetrier_BackOffSchedule(t *testing.T) {
	r := retrier{policy: RetryPolicy{Attempts: 5, BaseDelay: 500 * time.Millisecond}, logger: zap.NewNop()}

	b := r.newBackOff()
	var delays []time.Duration
	for range 4 {
		delays = append(delays, b.NextBackOff())
	}

	assert.Equal(t, []time.Duration{
		500 * time.Millisecond,
		time.Second,
		2 * time.Second,
		2 * time.Second,
	}, delays)
}

func TestRetryValue_UnwrapsPermanentError(t *testing.T) {
	r := retrier{policy: RetryPolicy{Attempts: 1, BaseDelay: time.Millisecond}, logger: zap.NewNop()}

	_, err := retryValue(context.Background(), r, "op", func(ctx context.Context) (int, error) {
		return 0, models.ErrProgramNotFound
	})

	assert.Equal(t, models.ErrProgramNotFound, err)
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, isRetryable(errors.New("connection reset")))
	assert.False(t, isRetryable(models.ErrProgramNotFound))
	assert.False(t, isRetryable(context.Canceled))
	assert.False(t, isRetryable(context.DeadlineExceeded))
	assert.False(t, isRetryable(&models.ValidationError{}))
}
