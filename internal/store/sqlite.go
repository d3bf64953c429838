package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/amishk599/pljobs/internal/model"
)

// Ensure SQLiteStore implements the storage interfaces.
var (
	_ model.PostingSource = (*SQLiteStore)(nil)
	_ model.PostingStore  = (*SQLiteStore)(nil)
	_ model.PostingReader = (*SQLiteStore)(nil)
)

// SQLiteStore keeps staging rows, normalized postings and run history in a
// single SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and applies
// pending migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	// one writer; avoids SQLITE_BUSY between the pool's connections
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version     INTEGER PRIMARY KEY,
		description TEXT NOT NULL,
		applied_at  DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	for _, m := range sqliteMigrations {
		var exists int
		err := s.db.QueryRowContext(ctx, "SELECT 1 FROM schema_migrations WHERE version = ?", m.Version).Scan(&exists)
		if err == nil {
			continue
		}
		if err != sql.ErrNoRows {
			return fmt.Errorf("checking migration %d: %w", m.Version, err)
		}

		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("beginning migration %d: %w", m.Version, err)
		}
		for _, stmt := range m.Up {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				tx.Rollback()
				return fmt.Errorf("applying migration %d (%s): %w", m.Version, m.Description, err)
			}
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (version, description) VALUES (?, ?)", m.Version, m.Description); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", m.Version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", m.Version, err)
		}
	}
	return nil
}

// ReplaceStaged swaps the contents of jobs_upload for rows and appends them
// to jobs_upload_backup.
func (s *SQLiteStore) ReplaceStaged(ctx context.Context, rows []model.RawPosting) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning staging import: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM jobs_upload"); err != nil {
		return 0, fmt.Errorf("clearing jobs_upload: %w", err)
	}

	cols := strings.Join(stagingColumns, ", ")
	for _, table := range []string{"jobs_upload", "jobs_upload_backup"} {
		stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, cols, placeholders(len(stagingColumns))))
		if err != nil {
			return 0, fmt.Errorf("preparing %s insert: %w", table, err)
		}
		for _, r := range rows {
			if _, err := stmt.ExecContext(ctx, stagingValues(r)...); err != nil {
				stmt.Close()
				return 0, fmt.Errorf("staging into %s: %w", table, err)
			}
		}
		stmt.Close()
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing staging import: %w", err)
	}
	return len(rows), nil
}

// LoadStaged returns the jobs_upload rows in import order.
func (s *SQLiteStore) LoadStaged(ctx context.Context) ([]model.RawPosting, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("SELECT %s FROM jobs_upload ORDER BY seq", strings.Join(stagingColumns, ", ")))
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

// ExistingPostings returns the id and technologies of every stored posting.
func (s *SQLiteStore) ExistingPostings(ctx context.Context) ([]model.ExistingPosting, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, technologies_used FROM jobs")
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

// InsertPostings writes all postings in one transaction. A duplicate id
// fails the whole batch.
func (s *SQLiteStore) InsertPostings(ctx context.Context, postings []model.Posting) (int, error) {
	if len(postings) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning insert: %w", err)
	}
	defer tx.Rollback()

	cols := model.Columns()
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO jobs (%s) VALUES (%s)", strings.Join(cols, ", "), placeholders(len(cols))))
	if err != nil {
		return 0, fmt.Errorf("preparing jobs insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range postings {
		if _, err := stmt.ExecContext(ctx, p.Values()...); err != nil {
			return 0, fmt.Errorf("inserting posting %s: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing insert: %w", err)
	}
	return len(postings), nil
}

// RecordRun stores a finished run summary.
func (s *SQLiteStore) RecordRun(ctx context.Context, summary *model.RunSummary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("encoding run summary: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO pipeline_runs (run_id, started_at, finished_at, staged, inserted, summary) VALUES (?, ?, ?, ?, ?, ?)",
		summary.RunID, summary.StartedAt.UTC().Format(time.RFC3339), summary.FinishedAt.UTC().Format(time.RFC3339),
		summary.Staged, summary.Inserted, string(data),
	)
	if err != nil {
		return fmt.Errorf("recording run %s: %w", summary.RunID, err)
	}
	return nil
}

// RecentRuns returns up to limit run summaries, newest first.
func (s *SQLiteStore) RecentRuns(ctx context.Context, limit int) ([]model.RunSummary, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT summary FROM pipeline_runs ORDER BY started_at DESC LIMIT ?", limit)
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

// ListPostings reads postings matching q, newest date_posted first.
func (s *SQLiteStore) ListPostings(ctx context.Context, q model.PostingQuery) ([]model.Posting, error) {
	clause, args := postingFilter(q, "substr")
	rows, err := s.db.QueryContext(ctx, "SELECT "+strings.Join(model.Columns(), ", ")+" FROM jobs"+clause, args...)
	if err != nil {
		return nil, fmt.Errorf("querying jobs: %w", err)
	}
	defer rows.Close()

	var (
		out []model.Posting
		exp string
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

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
