package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/amishk599/pljobs/internal/model"
)

// postingScanner holds scan destinations for one jobs row in Columns order.
type postingScanner struct {
	p          model.Posting
	flags      []bool
	expiration any // *string for sqlite, *time.Time for clickhouse
	dest       []any
}

func newPostingScanner(expiration any) *postingScanner {
	s := &postingScanner{expiration: expiration}
	flagCols := model.FlagColumns()
	s.flags = make([]bool, len(flagCols))

	p := &s.p
	s.dest = []any{
		&p.ID, &p.JobTitle, &p.CoreRole, &p.EmployerName, &p.City, &p.Lat, &p.Long,
		&p.Region, &p.StartSalary, &p.MaxSalary, &p.TechnologiesUsed,
		&p.Responsibilities, &p.Requirements, &p.Offering, &p.Benefits,
	}
	for i := range s.flags {
		s.dest = append(s.dest, &s.flags[i])
	}
	s.dest = append(s.dest, &p.UploadID, expiration, &p.URL, &p.DatePosted)
	return s
}

// posting materializes the last scanned row.
func (s *postingScanner) posting() (model.Posting, error) {
	p := s.p
	p.Flags = make(map[string]bool, len(s.flags))
	for i, c := range model.FlagColumns() {
		p.Flags[c] = s.flags[i]
	}
	switch v := s.expiration.(type) {
	case *string:
		t, err := time.Parse(model.DateLayout, *v)
		if err != nil {
			return model.Posting{}, fmt.Errorf("parsing expiration of %s: %w", p.ID, err)
		}
		p.Expiration = t
	case *time.Time:
		p.Expiration = *v
	}
	return p, nil
}

// postingFilter renders q as a WHERE clause with positional args. substr is
// the engine's substring function name.
func postingFilter(q model.PostingQuery, substr string) (string, []any) {
	var (
		where []string
		args  []any
	)
	if q.PostedOn != "" {
		where = append(where, substr+"(date_posted, 1, 10) = ?")
		args = append(args, q.PostedOn)
	}
	if !q.ExpiresAfter.IsZero() {
		where = append(where, "expiration >= ?")
		args = append(args, q.ExpiresAfter.Format(model.DateLayout))
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}
	clause += " ORDER BY date_posted DESC, id"
	if q.Limit > 0 {
		clause += fmt.Sprintf(" LIMIT %d", q.Limit)
	}
	return clause, args
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
