// Package pipeline turns one batch of staged postings into normalized rows:
// locate, date-filter, dedup, translate, classify, consolidate employers,
// tag technologies, then insert in a single transaction.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/amishk599/pljobs/internal/dates"
	"github.com/amishk599/pljobs/internal/location"
	"github.com/amishk599/pljobs/internal/model"
	"github.com/amishk599/pljobs/internal/reference"
	"github.com/amishk599/pljobs/internal/role"
	"github.com/amishk599/pljobs/internal/salary"
	"github.com/amishk599/pljobs/internal/tagging"
	"github.com/amishk599/pljobs/internal/telemetry"
	"github.com/amishk599/pljobs/internal/translate"
)

// Components are the normalizers shared by every row of a batch. They are
// built once per process from the reference data.
type Components struct {
	Resolver   *location.Resolver
	Dates      *dates.Parser
	Salary     salary.Normalizer
	Roles      *role.Classifier
	Tagger     tagging.Tagger
	Translator *translate.Service
	TechAllow  []string
	TechStop   []string
}

// NewComponents builds the normalizers. now drives relative expiration
// dates.
func NewComponents(ref *reference.Data, sal salary.Normalizer, roleThreshold float64, tr *translate.Service, now func() time.Time) *Components {
	return &Components{
		Resolver:   location.NewResolver(ref.Places),
		Dates:      dates.NewParser(ref.PolishMonths, now),
		Salary:     sal,
		Roles:      role.NewClassifier(ref.ProfessionTitles, ref.ExperienceTerms, roleThreshold),
		Tagger:     ref.Tagger,
		Translator: tr,
		TechAllow:  ref.TechAllow,
		TechStop:   ref.TechStop,
	}
}

// Pipeline owns one batch run: source -> stages -> store -> notifier.
type Pipeline struct {
	source     model.PostingSource
	store      model.PostingStore
	notifier   model.Notifier
	components *Components
	dryRun     bool
	logger     *slog.Logger
	tracer     trace.Tracer
	now        func() time.Time
}

// New creates a pipeline. In dry-run mode store should discard writes
// (store.NopStore); the summary is marked accordingly.
func New(
	source model.PostingSource,
	store model.PostingStore,
	notifier model.Notifier,
	components *Components,
	dryRun bool,
	logger *slog.Logger,
) *Pipeline {
	return &Pipeline{
		source:     source,
		store:      store,
		notifier:   notifier,
		components: components,
		dryRun:     dryRun,
		logger:     logger,
		tracer:     telemetry.Tracer("pljobs/pipeline"),
		now:        time.Now,
	}
}

// Run processes every staged row. Fatal failures are returned as
// *model.PipelineError and leave storage untouched.
func (p *Pipeline) Run(ctx context.Context) (*model.RunSummary, error) {
	ctx, span := p.tracer.Start(ctx, "pipeline.run")
	defer span.End()

	summary := &model.RunSummary{
		RunID:     uuid.NewString(),
		StartedAt: p.now().UTC(),
		DryRun:    p.dryRun,
	}
	span.SetAttributes(telemetry.String("run_id", summary.RunID))
	logger := p.logger.With("run_id", summary.RunID)

	fail := func(kind model.ErrorKind, stage string, err error) (*model.RunSummary, error) {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			kind = model.ErrKindCancelled
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, stage)
		return nil, model.NewPipelineError(kind, stage, err)
	}

	staged, err := p.source.LoadStaged(ctx)
	if err != nil {
		return fail(model.ErrKindSource, "load", fmt.Errorf("loading staged postings: %w", err))
	}
	summary.Staged = len(staged)

	existing, err := p.store.ExistingPostings(ctx)
	if err != nil {
		return fail(model.ErrKindStorage, "existing", fmt.Errorf("loading existing postings: %w", err))
	}
	storedIDs := make(map[string]bool, len(existing))
	for _, e := range existing {
		storedIDs[e.ID] = true
	}
	logger.Info("loaded batch", "staged", len(staged), "stored", len(existing))

	c := p.components

	_, stage := p.tracer.Start(ctx, "pipeline.locate")
	located, badDate := locate(staged, c.Resolver, c.Dates, logger)
	stage.SetAttributes(telemetry.Int("rows", len(located)), telemetry.Int("dropped", badDate))
	stage.End()
	summary.BadDate = badDate
	logger.Info("stage done", "stage", "locate", "rows", len(located), "dropped", badDate)

	_, stage = p.tracer.Start(ctx, "pipeline.dedupe")
	unique, batchDupes, alreadyStored := dedupe(located, storedIDs)
	stage.SetAttributes(telemetry.Int("rows", len(unique)), telemetry.Int("batch_duplicates", batchDupes), telemetry.Int("already_stored", alreadyStored))
	stage.End()
	summary.BatchDupes, summary.Stored = batchDupes, alreadyStored
	logger.Info("stage done", "stage", "dedupe", "rows", len(unique), "batch_duplicates", batchDupes, "already_stored", alreadyStored)

	tctx, stage := p.tracer.Start(ctx, "pipeline.translate")
	translated, err := translateRows(tctx, unique, c.Translator)
	stage.End()
	if err != nil {
		return fail(model.ErrKindCancelled, "translate", err)
	}
	logger.Info("stage done", "stage", "translate", "rows", len(translated))

	_, stage = p.tracer.Start(ctx, "pipeline.classify")
	postings := classify(translated, c)
	consolidateEmployers(postings)
	tagTechnologies(postings, translated, existing, c)
	stage.SetAttributes(telemetry.Int("rows", len(postings)))
	stage.End()
	logger.Info("stage done", "stage", "classify", "rows", len(postings))

	if err := ctx.Err(); err != nil {
		return fail(model.ErrKindCancelled, "insert", err)
	}

	ictx, stage := p.tracer.Start(ctx, "pipeline.insert")
	inserted, err := p.store.InsertPostings(ictx, postings)
	stage.SetAttributes(telemetry.Int("rows", inserted))
	stage.End()
	if err != nil {
		return fail(model.ErrKindStorage, "insert", fmt.Errorf("inserting postings: %w", err))
	}
	summary.Inserted = inserted

	summarize(summary, postings)
	summary.FinishedAt = p.now().UTC()

	if err := p.store.RecordRun(ctx, summary); err != nil {
		logger.Error("recording run summary failed", "error", err)
	}
	if p.notifier != nil {
		if err := p.notifier.Notify(ctx, summary); err != nil {
			logger.Warn("reporting run summary failed", "error", err)
		}
	}

	logger.Info("run complete",
		"staged", summary.Staged,
		"inserted", summary.Inserted,
		"dry_run", summary.DryRun,
		"elapsed", summary.FinishedAt.Sub(summary.StartedAt),
	)
	return summary, nil
}
