package borg

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"time"

	"github.com/MrSnakeDoc/borg-exporter/internal/errs"
	"github.com/MrSnakeDoc/borg-exporter/internal/logger"
	"github.com/MrSnakeDoc/borg-exporter/internal/runner"
)

const (
	DefaultBinary = "borg"

	// LockMarker prefixes borg's stderr when another process holds the
	// repository lock.
	LockMarker = "Failed to create/acquire the lock"
)

// Observer receives per-invocation events. Implemented by telemetry.
type Observer interface {
	ObserveQuery(repository string, d time.Duration, err error)
	ObserveLockRetry(repository string)
}

type Querier struct {
	Binary   string
	Timeout  time.Duration
	Retry    RetryPolicy
	Runner   runner.CommandRunner
	Observer Observer
}

func NewQuerier(binary string, r runner.CommandRunner, retry RetryPolicy) *Querier {
	if r == nil {
		r = &runner.ExecRunner{}
	}
	if binary == "" {
		binary = DefaultBinary
	}
	return &Querier{
		Binary: binary,
		Retry:  retry,
		Runner: r,
	}
}

// Query runs `borg info --json repo` and returns its stdout untouched.
// Lock conflicts are retried according to q.Retry and never returned
// unless the policy is bounded and exhausted.
func (q *Querier) Query(ctx context.Context, repo string) ([]byte, error) {
	for attempt := 1; ; attempt++ {
		start := time.Now()
		out, err := q.Runner.Run(ctx, q.Timeout, q.Binary, "info", "--json", repo)
		q.observeQuery(repo, time.Since(start), err)

		if err == nil {
			logger.Debug("`%s info` returned successfully for %s: %s", q.Binary, repo, out)
			return out, nil
		}

		var exitErr *runner.ExitError
		if !errors.As(err, &exitErr) {
			return nil, errs.New(errs.Spawn, repo, err)
		}

		if !bytes.HasPrefix(exitErr.Stderr, []byte(LockMarker)) {
			return nil, errs.Newf(errs.Command, repo, "%s info failed: %s",
				q.Binary, strings.TrimSpace(string(exitErr.Stderr)))
		}

		if !q.Retry.allows(attempt) {
			return nil, errs.Newf(errs.LockConflict, repo, "gave up after %d attempts", attempt)
		}

		logger.Warn("The repo %s is busy. Retrying in %s", repo, q.Retry.Delay)
		q.observeLockRetry(repo)

		if err := q.Retry.wait(ctx); err != nil {
			return nil, errs.New(errs.LockConflict, repo, err)
		}
	}
}

func (q *Querier) observeQuery(repo string, d time.Duration, err error) {
	if q.Observer != nil {
		q.Observer.ObserveQuery(repo, d, err)
	}
}

func (q *Querier) observeLockRetry(repo string) {
	if q.Observer != nil {
		q.Observer.ObserveLockRetry(repo)
	}
}
