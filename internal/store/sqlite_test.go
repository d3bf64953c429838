package store

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/amishk599/pljobs/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testPosting(id string, exp time.Time) model.Posting {
	return model.Posting{
		ID:               id,
		JobTitle:         "Go Developer",
		CoreRole:         "Go Developer",
		EmployerName:     "Acme",
		City:             "Warszawa;Kraków",
		Lat:              "52.23;50.06",
		Long:             "21.01;19.94",
		Region:           "Masovian;Lesser Poland",
		StartSalary:      12000,
		MaxSalary:        18000.5,
		TechnologiesUsed: "GO;SQL",
		Flags: map[string]bool{
			"b2b_contract":     true,
			"language_english": true,
			"senior":           true,
			"remote":           true,
		},
		UploadID:   "u1",
		Expiration: exp,
		URL:        "https://example.com/" + id,
		DatePosted: "2024-05-01",
	}
}

func TestReplaceStagedThenLoad(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := []model.RawPosting{{JobTitle: "old"}}
	if _, err := s.ReplaceStaged(ctx, first); err != nil {
		t.Fatalf("ReplaceStaged: %v", err)
	}

	rows := []model.RawPosting{
		{JobTitle: "Go Dev", EmployerName: "Acme", WorkMode: "Praca zdalna", Salary: "10 000–12 000 zł"},
		{JobTitle: "Java Dev", EmployerName: "Beta"},
	}
	n, err := s.ReplaceStaged(ctx, rows)
	if err != nil {
		t.Fatalf("ReplaceStaged: %v", err)
	}
	if n != 2 {
		t.Errorf("staged = %d, want 2", n)
	}

	got, err := s.LoadStaged(ctx)
	if err != nil {
		t.Fatalf("LoadStaged: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("LoadStaged returned %d rows, want 2", len(got))
	}
	if got[0] != rows[0] || got[1] != rows[1] {
		t.Errorf("LoadStaged = %+v, want %+v", got, rows)
	}

	var backup int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM jobs_upload_backup").Scan(&backup); err != nil {
		t.Fatalf("counting backup: %v", err)
	}
	if backup != 3 {
		t.Errorf("backup rows = %d, want 3", backup)
	}
}

func TestInsertPostingsRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	exp := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)

	want := testPosting("a", exp)
	n, err := s.InsertPostings(ctx, []model.Posting{want})
	if err != nil {
		t.Fatalf("InsertPostings: %v", err)
	}
	if n != 1 {
		t.Fatalf("inserted = %d, want 1", n)
	}

	got, err := s.ListPostings(ctx, model.PostingQuery{})
	if err != nil {
		t.Fatalf("ListPostings: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("ListPostings returned %d rows", len(got))
	}
	p := got[0]
	if p.ID != "a" || p.City != want.City || p.MaxSalary != want.MaxSalary || !p.Expiration.Equal(exp) {
		t.Errorf("round trip mismatch: %+v", p)
	}
	for _, c := range model.FlagColumns() {
		if p.Flag(c) != want.Flag(c) {
			t.Errorf("flag %s = %v, want %v", c, p.Flag(c), want.Flag(c))
		}
	}

	existing, err := s.ExistingPostings(ctx)
	if err != nil {
		t.Fatalf("ExistingPostings: %v", err)
	}
	if len(existing) != 1 || existing[0].ID != "a" || existing[0].TechnologiesUsed != "GO;SQL" {
		t.Errorf("ExistingPostings = %+v", existing)
	}
}

func TestInsertPostingsIsAllOrNothing(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	exp := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)

	if _, err := s.InsertPostings(ctx, []model.Posting{testPosting("a", exp)}); err != nil {
		t.Fatalf("seed insert: %v", err)
	}

	// "a" collides with the stored row, so "b" must not be committed either.
	_, err := s.InsertPostings(ctx, []model.Posting{testPosting("b", exp), testPosting("a", exp)})
	if err == nil {
		t.Fatal("expected primary key violation")
	}

	existing, err := s.ExistingPostings(ctx)
	if err != nil {
		t.Fatalf("ExistingPostings: %v", err)
	}
	if len(existing) != 1 {
		t.Errorf("rows after failed batch = %d, want 1", len(existing))
	}
}

func TestListPostingsFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	old := testPosting("old", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	old.DatePosted = "2023-12-01 10:00:00"
	fresh := testPosting("fresh", time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC))
	fresh.DatePosted = "2024-08-01 08:30:00"
	if _, err := s.InsertPostings(ctx, []model.Posting{old, fresh}); err != nil {
		t.Fatalf("InsertPostings: %v", err)
	}

	tests := []struct {
		name string
		q    model.PostingQuery
		want []string
	}{
		{"all newest first", model.PostingQuery{}, []string{"fresh", "old"}},
		{"posted on", model.PostingQuery{PostedOn: "2023-12-01"}, []string{"old"}},
		{"current only", model.PostingQuery{ExpiresAfter: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)}, []string{"fresh"}},
		{"limit", model.PostingQuery{Limit: 1}, []string{"fresh"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.ListPostings(ctx, tt.q)
			if err != nil {
				t.Fatalf("ListPostings: %v", err)
			}
			var ids []string
			for _, p := range got {
				ids = append(ids, p.ID)
			}
			if strings.Join(ids, ",") != strings.Join(tt.want, ",") {
				t.Errorf("ids = %v, want %v", ids, tt.want)
			}
		})
	}
}

func TestRecordRunThenRecentRuns(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	start := time.Date(2024, 5, 1, 6, 0, 0, 0, time.UTC)

	for i, id := range []string{"run-1", "run-2"} {
		sum := &model.RunSummary{
			RunID:      id,
			StartedAt:  start.Add(time.Duration(i) * time.Hour),
			FinishedAt: start.Add(time.Duration(i)*time.Hour + time.Minute),
			Staged:     10,
			Inserted:   7,
			Tags:       map[string]int{"remote": 3},
		}
		if err := s.RecordRun(ctx, sum); err != nil {
			t.Fatalf("RecordRun: %v", err)
		}
	}

	runs, err := s.RecentRuns(ctx, 5)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(runs) != 2 || runs[0].RunID != "run-2" {
		t.Fatalf("RecentRuns = %+v", runs)
	}
	if runs[0].Tags["remote"] != 3 || runs[0].Inserted != 7 {
		t.Errorf("summary not preserved: %+v", runs[0])
	}
}

func TestMigrationsAreIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	for i := 0; i < 2; i++ {
		s, err := NewSQLiteStore(dbPath)
		if err != nil {
			t.Fatalf("NewSQLiteStore: %v", err)
		}
		s.Close()
	}
}

func TestNopStoreDiscardsWrites(t *testing.T) {
	inner := newTestStore(t)
	ctx := context.Background()
	exp := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
	if _, err := inner.InsertPostings(ctx, []model.Posting{testPosting("a", exp)}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	nop := NewNopStore(inner)
	existing, err := nop.ExistingPostings(ctx)
	if err != nil || len(existing) != 1 {
		t.Fatalf("ExistingPostings = %v, %v", existing, err)
	}
	n, err := nop.InsertPostings(ctx, []model.Posting{testPosting("b", exp)})
	if err != nil || n != 1 {
		t.Fatalf("InsertPostings = %d, %v", n, err)
	}
	if err := nop.RecordRun(ctx, &model.RunSummary{RunID: "x"}); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}

	existing, _ = inner.ExistingPostings(ctx)
	if len(existing) != 1 {
		t.Errorf("NopStore wrote through: %d rows", len(existing))
	}

	if got, _ := NewNopStore(nil).ExistingPostings(ctx); got != nil {
		t.Errorf("nil inner ExistingPostings = %v", got)
	}
}

func TestJobsSchemaFollowsColumns(t *testing.T) {
	s := newTestStore(t)
	rows, err := s.db.Query("SELECT name FROM pragma_table_info('jobs') ORDER BY cid")
	if err != nil {
		t.Fatalf("table_info: %v", err)
	}
	defer rows.Close()

	var got []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("scan: %v", err)
		}
		got = append(got, name)
	}
	want := model.Columns()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("jobs columns = %v\nwant %v", got, want)
	}
}
