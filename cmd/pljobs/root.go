package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/amishk599/pljobs/internal/config"
	"github.com/amishk599/pljobs/internal/model"
	"github.com/amishk599/pljobs/internal/notifier"
	"github.com/amishk599/pljobs/internal/pipeline"
	"github.com/amishk599/pljobs/internal/ratelimit"
	"github.com/amishk599/pljobs/internal/reference"
	"github.com/amishk599/pljobs/internal/retry"
	"github.com/amishk599/pljobs/internal/salary"
	"github.com/amishk599/pljobs/internal/store"
	"github.com/amishk599/pljobs/internal/translate"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "pljobs",
	Short: "Polish IT job postings normalizer",
	Long: "pljobs folds scraped Polish IT job postings into a canonical jobs table: " +
		"locations, salaries, tags, employers, technologies and roles.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: PLJOBS_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig resolves the config path and parses it. A .env file in the
// working directory is loaded first so the config can reference its values.
// Priority: explicit path arg > PLJOBS_CONFIG env var > "./config.yaml"
func loadConfig(path string) (*config.Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if path == "" {
		if env := os.Getenv("PLJOBS_CONFIG"); env != "" {
			path = env
		} else {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

func setupLogger(dbg bool, format string) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: logLevel}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

// bootstrap loads config and returns a logger in the configured format.
// Config errors end the process.
func bootstrap() (*config.Config, *slog.Logger) {
	logger := setupLogger(debug, "text")
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(exitCode(model.NewPipelineError(model.ErrKindConfig, "config", err)))
	}
	return cfg, setupLogger(debug, cfg.Log.Format)
}

// backend is what every command needs from a storage driver.
type backend interface {
	model.PostingSource
	model.PostingStore
	model.PostingReader
	ReplaceStaged(ctx context.Context, rows []model.RawPosting) (int, error)
	RecentRuns(ctx context.Context, limit int) ([]model.RunSummary, error)
	Close() error
}

var (
	_ backend = (*store.SQLiteStore)(nil)
	_ backend = (*store.ClickHouseStore)(nil)
)

func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (backend, error) {
	switch cfg.Storage.Driver {
	case "clickhouse":
		ch := cfg.Storage.ClickHouse
		logger.Info("using clickhouse store", "addr", ch.Addr, "database", ch.Database)
		st, err := store.NewClickHouseStore(ctx, store.ClickHouseOptions{
			Addr:     ch.Addr,
			Database: ch.Database,
			Username: ch.Username,
			Password: ch.Password,
		}, logger)
		if err != nil {
			return nil, err
		}
		return st, nil
	default:
		logger.Debug("using sqlite store", "path", cfg.Storage.Path)
		st, err := store.NewSQLiteStore(cfg.Storage.Path)
		if err != nil {
			return nil, err
		}
		return st, nil
	}
}

// setupTranslator builds the translation chain: HTTP client, per-host rate
// limit, retry, then cache. With translation disabled only the word
// dictionary runs. The returned func releases the cache connection.
func setupTranslator(cfg *config.Config, words map[string]string, logger *slog.Logger) (*translate.Service, func() error) {
	closeFn := func() error { return nil }
	t := cfg.Translate
	if !t.Enabled {
		return translate.NewService(nil, words, t.Workers, logger), closeFn
	}

	client := translate.NewLibreClient(t.BaseURL, t.APIKey, &http.Client{Timeout: t.Timeout})
	limiter := ratelimit.NewHostLimiter(t.MinDelay)

	var tr model.Translator = ratelimit.NewTranslator(client, limiter, client.Host())
	tr = retry.NewTranslator(tr, t.MaxRetries, t.RetryDelay, logger)

	switch t.Cache.Type {
	case "redis":
		cache := translate.NewRedisCache(t.Cache.Addr, t.Cache.Password, t.Cache.DB)
		tr = translate.NewCachedTranslator(tr, cache, t.Cache.TTL, logger)
		closeFn = cache.Close
		logger.Info("translation cache", "type", "redis", "addr", t.Cache.Addr)
	case "memory":
		tr = translate.NewCachedTranslator(tr, translate.NewMemoryCache(), t.Cache.TTL, logger)
	}

	logger.Info("machine translation enabled",
		"base_url", t.BaseURL,
		"workers", t.Workers,
		"min_delay", t.MinDelay.String(),
		"max_retries", t.MaxRetries,
	)
	return translate.NewService(tr, words, t.Workers, logger), closeFn
}

func setupNotifier(cfg *config.Config, logger *slog.Logger) (model.Notifier, func() error, error) {
	noClose := func() error { return nil }
	switch cfg.Notification.Type {
	case "slack":
		logger.Info("using slack notifier")
		httpClient := &http.Client{Timeout: 30 * time.Second}
		return notifier.NewSlackNotifier(cfg.Notification.WebhookURL, httpClient, logger), noClose, nil
	case "nats":
		n, err := notifier.NewNATSNotifier(cfg.Notification.NATSURL, cfg.Notification.Subject, logger)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("using nats notifier", "subject", cfg.Notification.Subject)
		return n, n.Close, nil
	default:
		return notifier.NewLogNotifier(logger), noClose, nil
	}
}

// buildPipeline wires reference data, normalizers and the translation chain
// around st. In dry-run mode writes go to a NopStore.
func buildPipeline(cfg *config.Config, st backend, n model.Notifier, dryRun bool, logger *slog.Logger) (*pipeline.Pipeline, func() error, error) {
	ref, err := reference.Load(cfg.Reference.Dir)
	if err != nil {
		return nil, nil, model.NewPipelineError(model.ErrKindConfig, "reference", err)
	}
	logger.Info("reference data loaded",
		"cities", len(ref.Places),
		"profession_titles", len(ref.ProfessionTitles),
		"dictionary_words", len(ref.Translation),
	)

	svc, closeTr := setupTranslator(cfg, ref.Translation, logger)
	sal := salary.Normalizer{
		TaxRate:         cfg.Salary.TaxRate,
		HoursPerMonth:   cfg.Salary.HoursPerMonth,
		HourlyThreshold: cfg.Salary.HourlyThreshold,
	}
	components := pipeline.NewComponents(ref, sal, cfg.Role.Threshold, svc, time.Now)

	var sink model.PostingStore = st
	if dryRun {
		logger.Info("dry-run mode: nothing will be written")
		sink = store.NewNopStore(st)
	}
	return pipeline.New(st, sink, n, components, dryRun, logger), closeTr, nil
}

// logFailure logs a fatal error, with the stack trace at debug level.
func logFailure(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, "error", err)
	var perr *model.PipelineError
	if errors.As(err, &perr) {
		logger.Debug("stack trace", "kind", string(perr.Kind), "stage", perr.Stage, "stack", string(perr.StackTrace()))
	}
}
