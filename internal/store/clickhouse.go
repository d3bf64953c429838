package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"

	"github.com/amishk599/pljobs/internal/model"
)

// Ensure ClickHouseStore implements the storage interfaces.
var (
	_ model.PostingSource = (*ClickHouseStore)(nil)
	_ model.PostingStore  = (*ClickHouseStore)(nil)
	_ model.PostingReader = (*ClickHouseStore)(nil)
)

// ClickHouseOptions configures the analytics backend.
type ClickHouseOptions struct {
	Addr     string
	Database string
	Username string
	Password string
}

// ClickHouseStore is the analytics backend. jobs is a ReplacingMergeTree
// ordered by id, so a replayed insert cannot leave two live rows per id.
type ClickHouseStore struct {
	conn   clickhouse.Conn
	logger *slog.Logger
}

// NewClickHouseStore connects, pings and applies pending migrations.
func NewClickHouseStore(ctx context.Context, opts ClickHouseOptions, logger *slog.Logger) (*ClickHouseStore, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Protocol: clickhouse.Native,
		Addr:     []string{opts.Addr},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		Auth: clickhouse.Auth{
			Database: opts.Database,
			Username: opts.Username,
			Password: opts.Password,
		},
		DialTimeout: 30 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("opening clickhouse connection: %w", err)
	}
	if err := conn.Ping(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("pinging clickhouse: %w", err)
	}

	s := &ClickHouseStore{conn: conn, logger: logger}
	if err := NewMigrator(conn, logger).Up(ctx, clickhouseMigrations); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

// ReplaceStaged truncates jobs_upload and loads rows in one batch.
func (s *ClickHouseStore) ReplaceStaged(ctx context.Context, rows []model.RawPosting) (int, error) {
	if err := s.conn.Exec(ctx, "TRUNCATE TABLE IF EXISTS jobs_upload"); err != nil {
		return 0, fmt.Errorf("truncating jobs_upload: %w", err)
	}
	batch, err := s.conn.PrepareBatch(ctx, fmt.Sprintf("INSERT INTO jobs_upload (%s)", strings.Join(stagingColumns, ", ")))
	if err != nil {
		return 0, fmt.Errorf("preparing staging batch: %w", err)
	}
	for _, r := range rows {
		if err := batch.Append(stagingValues(r)...); err != nil {
			batch.Abort()
			return 0, fmt.Errorf("appending staged row: %w", err)
		}
	}
	if err := batch.Send(); err != nil {
		return 0, fmt.Errorf("sending staging batch: %w", err)
	}
	return len(rows), nil
}

func (s *ClickHouseStore) LoadStaged(ctx context.Context) ([]model.RawPosting, error) {
	rows, err := s.conn.Query(ctx, fmt.Sprintf("SELECT %s FROM jobs_upload ORDER BY imported_at", strings.Join(stagingColumns, ", ")))
	if err != nil {
		return nil, fmt.Errorf("querying jobs_upload: %w", err)
	}
	defer rows.Close()

	var out []model.RawPosting
	for rows.Next() {
		var r model.RawPosting
		if err := rows.Scan(stagingDest(&r)...); err != nil {
			return nil, fmt.Errorf("scanning jobs_upload row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *ClickHouseStore) ExistingPostings(ctx context.Context) ([]model.ExistingPosting, error) {
	rows, err := s.conn.Query(ctx, "SELECT id, any(technologies_used) FROM jobs GROUP BY id")
	if err != nil {
		return nil, fmt.Errorf("querying existing postings: %w", err)
	}
	defer rows.Close()

	var out []model.ExistingPosting
	for rows.Next() {
		var e model.ExistingPosting
		if err := rows.Scan(&e.ID, &e.TechnologiesUsed); err != nil {
			return nil, fmt.Errorf("scanning existing posting: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// InsertPostings sends every posting as one insert block.
func (s *ClickHouseStore) InsertPostings(ctx context.Context, postings []model.Posting) (int, error) {
	if len(postings) == 0 {
		return 0, nil
	}
	batch, err := s.conn.PrepareBatch(ctx, fmt.Sprintf("INSERT INTO jobs (%s)", strings.Join(model.Columns(), ", ")))
	if err != nil {
		return 0, fmt.Errorf("preparing jobs batch: %w", err)
	}
	expIdx := columnIndex("expiration")
	for _, p := range postings {
		vals := p.Values()
		vals[expIdx] = p.Expiration
		if err := batch.Append(vals...); err != nil {
			batch.Abort()
			return 0, fmt.Errorf("appending posting %s: %w", p.ID, err)
		}
	}
	if err := batch.Send(); err != nil {
		return 0, fmt.Errorf("sending jobs batch: %w", err)
	}
	return len(postings), nil
}

func (s *ClickHouseStore) RecordRun(ctx context.Context, summary *model.RunSummary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("encoding run summary: %w", err)
	}
	err = s.conn.Exec(ctx,
		"INSERT INTO pipeline_runs (run_id, started_at, finished_at, staged, inserted, summary) VALUES (?, ?, ?, ?, ?, ?)",
		summary.RunID, summary.StartedAt, summary.FinishedAt, int64(summary.Staged), int64(summary.Inserted), string(data),
	)
	if err != nil {
		return fmt.Errorf("recording run %s: %w", summary.RunID, err)
	}
	return nil
}

// RecentRuns returns up to limit run summaries, newest first.
func (s *ClickHouseStore) RecentRuns(ctx context.Context, limit int) ([]model.RunSummary, error) {
	rows, err := s.conn.Query(ctx, "SELECT summary FROM pipeline_runs ORDER BY started_at DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("querying pipeline_runs: %w", err)
	}
	defer rows.Close()

	var out []model.RunSummary
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		var sum model.RunSummary
		if err := json.Unmarshal([]byte(raw), &sum); err != nil {
			return nil, fmt.Errorf("decoding run summary: %w", err)
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

func (s *ClickHouseStore) ListPostings(ctx context.Context, q model.PostingQuery) ([]model.Posting, error) {
	clause, args := postingFilter(q, "substring")
	rows, err := s.conn.Query(ctx, "SELECT "+strings.Join(model.Columns(), ", ")+" FROM jobs FINAL"+clause, args...)
	if err != nil {
		return nil, fmt.Errorf("querying jobs: %w", err)
	}
	defer rows.Close()

	var (
		out []model.Posting
		exp time.Time
	)
	sc := newPostingScanner(&exp)
	for rows.Next() {
		if err := rows.Scan(sc.dest...); err != nil {
			return nil, fmt.Errorf("scanning jobs row: %w", err)
		}
		p, err := sc.posting()
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *ClickHouseStore) Close() error {
	return s.conn.Close()
}

func columnIndex(name string) int {
	for i, c := range model.Columns() {
		if c == name {
			return i
		}
	}
	return -1
}
