package store

import (
	"fmt"
	"strings"

	"github.com/amishk599/pljobs/internal/model"
)

// Migration is one forward schema step. Down is informational; nothing
// rolls back automatically.
type Migration struct {
	Version     int
	Description string
	Up          []string
	Down        []string
}

// stagingColumns is the column order of jobs_upload and jobs_upload_backup.
var stagingColumns = []string{
	"job_title", "employer_name", "location", "hybrid_full_remote",
	"expiration", "contract_type", "experience_level", "salary",
	"technologies", "responsibilities", "requirements", "offering",
	"benefits", "url", "date_posted", "upload_id",
}

func stagingValues(r model.RawPosting) []any {
	return []any{
		r.JobTitle, r.EmployerName, r.Location, r.WorkMode,
		r.Expiration, r.ContractType, r.ExperienceLevel, r.Salary,
		r.Technologies, r.Responsibilities, r.Requirements, r.Offering,
		r.Benefits, r.URL, r.DatePosted, r.UploadID,
	}
}

func stagingDest(r *model.RawPosting) []any {
	return []any{
		&r.JobTitle, &r.EmployerName, &r.Location, &r.WorkMode,
		&r.Expiration, &r.ContractType, &r.ExperienceLevel, &r.Salary,
		&r.Technologies, &r.Responsibilities, &r.Requirements, &r.Offering,
		&r.Benefits, &r.URL, &r.DatePosted, &r.UploadID,
	}
}

// dialect maps logical column kinds to engine types.
type dialect struct {
	text, real, flag, date string
}

var (
	sqliteDialect     = dialect{text: "TEXT NOT NULL DEFAULT ''", real: "REAL NOT NULL DEFAULT 0", flag: "INTEGER NOT NULL DEFAULT 0", date: "TEXT NOT NULL"}
	clickhouseDialect = dialect{text: "String", real: "Float64", flag: "Bool", date: "Date"}
)

// jobsColumnDefs renders the jobs table columns in model.Columns order.
func jobsColumnDefs(d dialect) string {
	defs := make([]string, 0, len(model.Columns()))
	for _, c := range model.Columns() {
		typ := d.text
		switch {
		case c == "start_salary" || c == "max_salary":
			typ = d.real
		case c == "expiration":
			typ = d.date
		case model.IsFlagColumn(c):
			typ = d.flag
		}
		defs = append(defs, fmt.Sprintf("%s %s", c, typ))
	}
	return strings.Join(defs, ",\n\t\t")
}

func stagingColumnDefs(d dialect) string {
	defs := make([]string, len(stagingColumns))
	for i, c := range stagingColumns {
		defs[i] = c + " " + d.text
	}
	return strings.Join(defs, ",\n\t\t")
}

var sqliteMigrations = []Migration{
	{
		Version:     1,
		Description: "create staging tables",
		Up: []string{
			`CREATE TABLE IF NOT EXISTS jobs_upload (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		` + stagingColumnDefs(sqliteDialect) + `
	)`,
			`CREATE TABLE IF NOT EXISTS jobs_upload_backup (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		` + stagingColumnDefs(sqliteDialect) + `,
		imported_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
		},
		Down: []string{"DROP TABLE IF EXISTS jobs_upload", "DROP TABLE IF EXISTS jobs_upload_backup"},
	},
	{
		Version:     2,
		Description: "create jobs table",
		Up: []string{
			`CREATE TABLE IF NOT EXISTS jobs (
		` + strings.Replace(jobsColumnDefs(sqliteDialect), "id TEXT NOT NULL DEFAULT ''", "id TEXT PRIMARY KEY", 1) + `
	)`,
			`CREATE INDEX IF NOT EXISTS idx_jobs_date_posted ON jobs (date_posted)`,
			`CREATE INDEX IF NOT EXISTS idx_jobs_expiration ON jobs (expiration)`,
		},
		Down: []string{"DROP TABLE IF EXISTS jobs"},
	},
	{
		Version:     3,
		Description: "create pipeline_runs table",
		Up: []string{
			`CREATE TABLE IF NOT EXISTS pipeline_runs (
		run_id      TEXT PRIMARY KEY,
		started_at  DATETIME NOT NULL,
		finished_at DATETIME NOT NULL,
		staged      INTEGER NOT NULL,
		inserted    INTEGER NOT NULL,
		summary     TEXT NOT NULL
	)`,
		},
		Down: []string{"DROP TABLE IF EXISTS pipeline_runs"},
	},
}

var clickhouseMigrations = []Migration{
	{
		Version:     1,
		Description: "create staging table",
		Up: []string{
			`CREATE TABLE IF NOT EXISTS jobs_upload (
		` + stagingColumnDefs(clickhouseDialect) + `,
		imported_at DateTime DEFAULT now()
	) ENGINE = MergeTree()
	ORDER BY imported_at`,
		},
		Down: []string{"DROP TABLE IF EXISTS jobs_upload"},
	},
	{
		Version:     2,
		Description: "create jobs table",
		Up: []string{
			`CREATE TABLE IF NOT EXISTS jobs (
		` + jobsColumnDefs(clickhouseDialect) + `
	) ENGINE = ReplacingMergeTree()
	PARTITION BY toYYYYMM(expiration)
	ORDER BY id
	SETTINGS index_granularity = 8192`,
		},
		Down: []string{"DROP TABLE IF EXISTS jobs"},
	},
	{
		Version:     3,
		Description: "create pipeline_runs table",
		Up: []string{
			`CREATE TABLE IF NOT EXISTS pipeline_runs (
		run_id String,
		started_at DateTime,
		finished_at DateTime,
		staged Int64,
		inserted Int64,
		summary String
	) ENGINE = MergeTree()
	ORDER BY started_at`,
		},
		Down: []string{"DROP TABLE IF EXISTS pipeline_runs"},
	},
}
