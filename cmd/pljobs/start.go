package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/pljobs/internal/model"
	"github.com/amishk599/pljobs/internal/scheduler"
	"github.com/amishk599/pljobs/internal/telemetry"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the scheduling daemon",
	Long:  "Runs a batch now and then on the configured cron schedule; blocks until SIGINT/SIGTERM.",
	RunE:  runStart,
}

func init() {
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, logger := bootstrap()

	logger.Info("config loaded",
		"schedule", cfg.Schedule,
		"storage", cfg.Storage.Driver,
		"translate", cfg.Translate.Enabled,
		"notification", cfg.Notification.Type,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdown, err := telemetry.InitTracer(ctx, version, cfg.Telemetry.Endpoint)
	if err != nil {
		logger.Warn("tracing disabled", "error", err)
	} else {
		defer shutdown(context.Background())
	}

	st, err := openStore(ctx, cfg, logger)
	if err != nil {
		logFailure(logger, "failed to open store", err)
		return model.NewPipelineError(model.ErrKindStorage, "open", err)
	}
	defer st.Close()

	n, closeNotifier, err := setupNotifier(cfg, logger)
	if err != nil {
		logFailure(logger, "failed to set up notifier", err)
		return model.NewPipelineError(model.ErrKindConfig, "notifier", err)
	}
	defer closeNotifier()

	p, closeTranslator, err := buildPipeline(cfg, st, n, false, logger)
	if err != nil {
		logFailure(logger, "failed to build pipeline", err)
		return err
	}
	defer closeTranslator()

	sched := scheduler.NewScheduler(p, cfg.Schedule, logger)
	if err := sched.Run(ctx); err != nil {
		logger.Error("scheduler error", "error", err)
		return err
	}

	logger.Info("goodbye")
	return nil
}
