package config

import (
	"time"

	"github.com/MrSnakeDoc/borg-exporter/internal/borg"
)

const (
	DefaultPort    uint16 = 9002
	DefaultAddress        = "127.0.0.1"
)

// Default is the configuration written when no config file exists. Only
// the required keys are set so the generated file stays minimal.
func Default() *Config {
	return &Config{
		Port:         DefaultPort,
		Repositories: []string{},
	}
}

func (c *Config) ListenAddress() string {
	if c.Address == "" {
		return DefaultAddress
	}
	return c.Address
}

func (c *Config) Binary() string {
	if c.BorgBinary == "" {
		return borg.DefaultBinary
	}
	return c.BorgBinary
}

// RetryPolicy returns the lock retry policy, defaulting to a fixed 5s delay
// with no attempt limit.
func (c *Config) RetryPolicy() borg.RetryPolicy {
	policy := borg.DefaultRetryPolicy()
	if c.LockRetry == nil {
		return policy
	}
	if c.LockRetry.Delay > 0 {
		policy.Delay = c.LockRetry.Delay
	}
	policy.MaxAttempts = c.LockRetry.MaxAttempts
	return policy
}

func (c *Config) Timeout() time.Duration {
	return c.CommandTimeout
}
