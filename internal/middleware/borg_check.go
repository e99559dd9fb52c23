package middleware

import (
	"os/exec"

	"github.com/MrSnakeDoc/borg-exporter/internal/config"
	"github.com/MrSnakeDoc/borg-exporter/internal/logger"
	"github.com/spf13/cobra"
)

var lookPath = exec.LookPath

// CheckBorgBinary warns when the configured borg binary cannot be found.
// Startup continues: every scrape will fail until it is installed.
// Must run after LoadConfig.
func CheckBorgBinary(cmd *cobra.Command, args []string, next func(cmd *cobra.Command, args []string) error) error {
	cfg, err := Get[*config.Config](cmd, CtxKeyConfig)
	if err != nil {
		return err
	}

	if path, err := lookPath(cfg.Binary()); err != nil {
		logger.Warn("%s not found (%v). Scrapes will fail until borg is installed.", cfg.Binary(), err)
	} else {
		logger.Debug("Using %s", path)
	}

	return next(cmd, args)
}
