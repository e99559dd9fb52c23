package borg

import (
	"context"
	"time"
)

const DefaultLockRetryDelay = 5 * time.Second

// RetryPolicy controls how a locked repository is retried. MaxAttempts
// counts invocations, not retries; zero means retry until the context is
// done.
type RetryPolicy struct {
	Delay       time.Duration
	MaxAttempts int

	// Sleep waits between attempts. Nil uses a timer bound to ctx.
	Sleep func(ctx context.Context, d time.Duration) error
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Delay:       DefaultLockRetryDelay,
		MaxAttempts: 0,
	}
}

// allows reports whether another invocation may follow attempt (1-based).
func (p RetryPolicy) allows(attempt int) bool {
	return p.MaxAttempts <= 0 || attempt < p.MaxAttempts
}

func (p RetryPolicy) wait(ctx context.Context) error {
	if p.Sleep != nil {
		return p.Sleep(ctx, p.Delay)
	}
	return sleepContext(ctx, p.Delay)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
