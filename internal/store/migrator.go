package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
)

// Migrator applies ClickHouse migrations, tracking them in a migrations table.
type Migrator struct {
	conn   clickhouse.Conn
	logger *slog.Logger
}

func NewMigrator(conn clickhouse.Conn, logger *slog.Logger) *Migrator {
	return &Migrator{conn: conn, logger: logger}
}

func (m *Migrator) createMigrationsTable(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS migrations (
			version Int32,
			description String,
			applied_at DateTime,
			PRIMARY KEY (version)
		) ENGINE = MergeTree()
	`
	if err := m.conn.Exec(ctx, query); err != nil {
		return fmt.Errorf("creating migrations table: %w", err)
	}
	return nil
}

func (m *Migrator) applied(ctx context.Context) (map[int]time.Time, error) {
	rows, err := m.conn.Query(ctx, "SELECT version, applied_at FROM migrations ORDER BY version")
	if err != nil {
		return nil, fmt.Errorf("querying migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]time.Time)
	for rows.Next() {
		var (
			version   int32
			appliedAt time.Time
		)
		if err := rows.Scan(&version, &appliedAt); err != nil {
			return nil, fmt.Errorf("scanning migration row: %w", err)
		}
		applied[int(version)] = appliedAt
	}
	return applied, rows.Err()
}

// Up applies every migration not yet recorded, in order.
func (m *Migrator) Up(ctx context.Context, migrations []Migration) error {
	if err := m.createMigrationsTable(ctx); err != nil {
		return err
	}
	applied, err := m.applied(ctx)
	if err != nil {
		return err
	}

	for _, mig := range migrations {
		if _, ok := applied[mig.Version]; ok {
			continue
		}
		for _, stmt := range mig.Up {
			if err := m.conn.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("applying migration %d: %w", mig.Version, err)
			}
		}
		if err := m.conn.Exec(ctx,
			"INSERT INTO migrations (version, description, applied_at) VALUES (?, ?, now())",
			int32(mig.Version), mig.Description,
		); err != nil {
			return fmt.Errorf("recording migration %d: %w", mig.Version, err)
		}
		m.logger.Info("applied migration", "version", mig.Version, "description", mig.Description)
	}
	return nil
}
