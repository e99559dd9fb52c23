package internal

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/MrSnakeDoc/borg-exporter/internal/borg"
	"github.com/MrSnakeDoc/borg-exporter/internal/config"
	"github.com/MrSnakeDoc/borg-exporter/internal/logger"
	"github.com/MrSnakeDoc/borg-exporter/internal/middleware"
	"github.com/MrSnakeDoc/borg-exporter/internal/runner"
	"github.com/MrSnakeDoc/borg-exporter/internal/scrape"
	"github.com/MrSnakeDoc/borg-exporter/internal/server"
	"github.com/MrSnakeDoc/borg-exporter/internal/telemetry"

	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	return middleware.UseMiddlewareChain(
		middleware.LoadConfig,
		middleware.CheckBorgBinary,
	)(newRootCmd)()
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "borg-exporter <config-file>",
		Short: "Prometheus exporter for BorgBackup repositories",
		Long: `borg-exporter serves statistics of BorgBackup repositories on /metrics.
Every scrape runs "borg info --json" on each configured repository.

The config file is YAML and is created with defaults when missing:

    port: 9002
    repositories:
      - /data/backups/myrepo`,
		Example: `borg-exporter /etc/borg-exporter.yml`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := middleware.Get[*config.Config](cmd, middleware.CtxKeyConfig)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg, &runner.ExecRunner{})
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetContext(context.Background())
	return cmd
}

// newApp wires the scrape pipeline and HTTP server for cfg.
func newApp(cfg *config.Config, r runner.CommandRunner) *server.Server {
	metrics := telemetry.New()

	querier := borg.NewQuerier(cfg.Binary(), r, cfg.RetryPolicy())
	querier.Timeout = cfg.Timeout()
	querier.Observer = metrics

	aggregator := scrape.New(cfg.Repositories, querier, scrape.WithObserver(metrics))

	srvCfg := server.Config{
		Address: cfg.ListenAddress(),
		Port:    cfg.Port,
		Metrics: aggregator,
	}
	if cfg.SelfMetrics {
		srvCfg.ExporterMetrics = metrics.Handler()
	}
	return server.New(srvCfg)
}

func run(parent context.Context, cfg *config.Config, r runner.CommandRunner) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	printRepositories(cfg.Repositories)

	srv := newApp(cfg, r)
	logger.Info("Starting borg-exporter on %s", logger.Highlight(srv.Addr()))
	return srv.Run(ctx)
}

func printRepositories(repos []string) {
	if len(repos) == 0 {
		return
	}

	logger.Info("Configured repositories:")
	table := logger.CreateTable([]string{"Label", "Path"})
	for _, repo := range repos {
		label, err := borg.Label(repo)
		if err != nil {
			logger.Warn("%v", err)
			label = "(invalid)"
		}
		if err := table.Append([]string{label, repo}); err != nil {
			logger.LogError("Error appending to table: %v", err)
			return
		}
	}
	if err := table.Render(); err != nil {
		logger.LogError("Error rendering table: %v", err)
	}
}

func Execute() error {
	logger.ConfigureFromEnv()
	defer logger.Sync()

	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			return fmt.Errorf("borg-exporter: %w", err)
		}
	}
	return nil
}
