package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/pljobs/internal/model"
	"github.com/amishk599/pljobs/internal/telemetry"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Normalize the staged batch once",
	Long:  "Runs one batch: reads jobs_upload, normalizes new postings and inserts them into jobs in one transaction.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBatch(false)
	},
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Dry run: normalize the staged batch without writing",
	Long:  "Performs every stage of a run and reports the summary, but writes nothing to storage.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBatch(true)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(checkCmd)
}

func runBatch(dryRun bool) error {
	cfg, logger := bootstrap()

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

	p, closeTranslator, err := buildPipeline(cfg, st, n, dryRun, logger)
	if err != nil {
		logFailure(logger, "failed to build pipeline", err)
		return err
	}
	defer closeTranslator()

	summary, err := p.Run(ctx)
	if err != nil {
		logFailure(logger, "run failed", err)
		return err
	}

	logger.Info("run complete", "run_id", summary.RunID, "inserted", summary.Inserted, "dry_run", dryRun)
	return nil
}
