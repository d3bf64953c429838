package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/amishk599/pljobs/internal/model"
)

// Runner executes one pipeline batch.
type Runner interface {
	Run(ctx context.Context) (*model.RunSummary, error)
}

// Scheduler runs the pipeline on a cron schedule.
type Scheduler struct {
	runner Runner
	spec   string
	logger *slog.Logger
}

func NewScheduler(runner Runner, spec string, logger *slog.Logger) *Scheduler {
	return &Scheduler{runner: runner, spec: spec, logger: logger}
}

// ValidateSpec reports whether spec is a standard five-field cron expression
// or descriptor ("@daily", "@every 6h").
func ValidateSpec(spec string) error {
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return nil
}

// Run does one immediate batch, then runs on the schedule. A tick that fires
// while the previous batch is still running is skipped. It returns nil when
// ctx is cancelled, after the running batch finishes.
func (s *Scheduler) Run(ctx context.Context) error {
	logger := cronLogger{s.logger}
	c := cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	if _, err := c.AddFunc(s.spec, func() { s.runOnce(ctx) }); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", s.spec, err)
	}

	s.logger.Info("starting scheduler", "schedule", s.spec)
	s.runOnce(ctx)

	c.Start()
	<-ctx.Done()
	s.logger.Info("shutting down scheduler")
	<-c.Stop().Done()
	return nil
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	summary, err := s.runner.Run(ctx)
	if err != nil {
		s.logger.Error("pipeline run failed", "error", err)
		return
	}
	s.logger.Info("pipeline run finished", "run_id", summary.RunID, "inserted", summary.Inserted)
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
