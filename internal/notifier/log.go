package notifier

import (
	"context"
	"log/slog"

	"github.com/amishk599/pljobs/internal/model"
)

// Ensure LogNotifier implements model.Notifier.
var _ model.Notifier = (*LogNotifier)(nil)

// LogNotifier writes run summaries to the given logger as structured messages.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs the counts and the top roles and cities. It never fails.
func (n *LogNotifier) Notify(_ context.Context, s *model.RunSummary) error {
	n.logger.Info("pipeline run",
		"run_id", s.RunID,
		"dry_run", s.DryRun,
		"staged", s.Staged,
		"dropped_bad_expiration", s.BadDate,
		"dropped_batch_duplicates", s.BatchDupes,
		"dropped_already_stored", s.Stored,
		"normalized", s.Normalized(),
		"inserted", s.Inserted,
		"salary_count", s.Salary.Count,
		"salary_mean_mid", s.Salary.MeanMid,
	)
	for _, r := range s.TopRoles {
		n.logger.Debug("top role", "run_id", s.RunID, "role", r.Name, "count", r.Count)
	}
	for _, c := range s.TopCities {
		n.logger.Debug("top city", "run_id", s.RunID, "city", c.Name, "count", c.Count)
	}
	return nil
}
