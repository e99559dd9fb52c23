package middleware

import (
	"context"
	"fmt"

	"github.com/MrSnakeDoc/borg-exporter/internal/config"
	"github.com/spf13/cobra"
)

// LoadConfig opens (or creates) the config file named by the first
// positional argument and stores it in the command context under
// CtxKeyConfig.
func LoadConfig(cmd *cobra.Command, args []string, next func(cmd *cobra.Command, args []string) error) error {
	if len(args) == 0 {
		return fmt.Errorf("missing config file argument")
	}

	cfg, err := config.OpenOrCreate(args[0])
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, CtxKeyConfig, cfg))

	return next(cmd, args)
}
