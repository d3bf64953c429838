package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/amishk599/pljobs/internal/model"
	"github.com/amishk599/pljobs/internal/notifier"
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Notification subcommands",
}

var notifyTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Send a test run summary",
	Long:  "Sends a dummy run summary through the configured notifier (log, slack or nats).",
	RunE:  runNotifyTest,
}

func init() {
	rootCmd.AddCommand(notifyCmd)
	notifyCmd.AddCommand(notifyTestCmd)
}

func runNotifyTest(cmd *cobra.Command, args []string) error {
	cfg, logger := bootstrap()

	n, closeNotifier, err := setupNotifier(cfg, logger)
	if err != nil {
		logFailure(logger, "failed to set up notifier", err)
		return model.NewPipelineError(model.ErrKindConfig, "notifier", err)
	}
	defer closeNotifier()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := notifier.SendTestMessage(ctx, n); err != nil {
		logger.Error("test notification failed", "type", cfg.Notification.Type, "error", err)
		return err
	}
	logger.Info("test notification sent successfully", "type", cfg.Notification.Type)
	return nil
}
