package config

import (
	"fmt"
	"time"

	"github.com/MrSnakeDoc/borg-exporter/internal/errs"
	"github.com/MrSnakeDoc/borg-exporter/internal/logger"
	"github.com/MrSnakeDoc/borg-exporter/internal/utils"
	"github.com/MrSnakeDoc/borg-exporter/internal/utils/pathutils"
)

// Config is loaded once at startup and never mutated afterwards.
type Config struct {
	Port         uint16   `yaml:"port"`
	Repositories []string `yaml:"repositories"`

	Address        string        `yaml:"address,omitempty"`
	BorgBinary     string        `yaml:"borg_binary,omitempty"`
	LockRetry      *LockRetry    `yaml:"lock_retry,omitempty"`
	CommandTimeout time.Duration `yaml:"command_timeout,omitempty"`
	SelfMetrics    bool          `yaml:"self_metrics,omitempty"`
}

type LockRetry struct {
	Delay       time.Duration `yaml:"delay,omitempty"`
	MaxAttempts int           `yaml:"max_attempts,omitempty"`
}

const configFileRights = 0o644

// OpenOrCreate loads the YAML config at path, writing the defaults there
// first if the file does not exist.
func OpenOrCreate(path string) (*Config, error) {
	path, err := pathutils.ToAbsolutePath(path)
	if err != nil {
		return nil, errs.New(errs.Config, "", err)
	}

	logger.Debug("Opening config file %s", path)

	exists, err := utils.FileExists(path)
	if err != nil {
		return nil, errs.New(errs.Config, "", err)
	}
	if !exists {
		logger.Warn("Config file %s not found. Creating a default one.", path)
		if err := utils.CreateFile(path, Default(), utils.FileTypeYAML, configFileRights); err != nil {
			return nil, errs.New(errs.Config, "", err)
		}
	}

	return Load(path)
}

// Load reads and validates an existing config file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if err := utils.FileReader(path, utils.FileTypeYAML, cfg); err != nil {
		return nil, errs.New(errs.Config, "", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, errs.New(errs.Config, "", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, errs.New(errs.Config, "", err)
	}

	if len(cfg.Repositories) == 0 {
		logger.Warn("The config file does not define any repositories. " +
			"This program will do nothing if no repositories are defined")
	}
	return cfg, nil
}

func (c *Config) normalize() error {
	for i, repo := range c.Repositories {
		abs, err := pathutils.ToAbsolutePath(repo)
		if err != nil {
			return fmt.Errorf("repository %q: %w", repo, err)
		}
		c.Repositories[i] = abs
	}
	return nil
}

func (c *Config) Validate() error {
	if c.CommandTimeout < 0 {
		return fmt.Errorf("command_timeout must not be negative")
	}
	if c.LockRetry != nil {
		if c.LockRetry.Delay < 0 {
			return fmt.Errorf("lock_retry.delay must not be negative")
		}
		if c.LockRetry.MaxAttempts < 0 {
			return fmt.Errorf("lock_retry.max_attempts must not be negative")
		}
	}
	return nil
}
