// Package dates parses the expiration dates job boards print.
package dates

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrUnparseable is returned when no supported format matches.
var ErrUnparseable = errors.New("unparseable expiration date")

var relativeDays = regexp.MustCompile(`(\d+)\s*(dni|days)`)

// Parser understands "dd.mm.yyyy", "N dni"/"N days" and Polish month names
// ("31 października 2024").
type Parser struct {
	months map[string]string // Polish genitive month -> English month
	now    func() time.Time
}

// NewParser returns a parser using the given month table and clock. A nil
// clock means time.Now.
func NewParser(months map[string]string, now func() time.Time) *Parser {
	if now == nil {
		now = time.Now
	}
	return &Parser{months: months, now: now}
}

// Parse returns the calendar date (midnight UTC) described by text.
func (p *Parser) Parse(text string) (time.Time, error) {
	s := stripConnectives(strings.ToLower(text))
	if s == "" {
		return time.Time{}, ErrUnparseable
	}

	if t, err := time.Parse("2.1.2006", s); err == nil {
		return t, nil
	}

	if m := relativeDays.FindStringSubmatch(s); m != nil {
		days, err := strconv.Atoi(m[1])
		if err != nil {
			return time.Time{}, ErrUnparseable
		}
		y, mo, d := p.now().Date()
		today := time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
		return today.AddDate(0, 0, days-1), nil
	}

	for pl, en := range p.months {
		s = strings.ReplaceAll(s, pl, en)
	}
	s = strings.Join(strings.Fields(s), " ")

	if t, err := time.Parse("2 January 2006", s); err == nil {
		return t, nil
	}
	return time.Time{}, ErrUnparseable
}

// stripConnectives drops the "do"/"to" words boards put in front of a date
// ("do 12.05.2024", "valid to 12.05.2024").
func stripConnectives(s string) string {
	fields := strings.Fields(s)
	kept := fields[:0]
	for _, f := range fields {
		switch strings.TrimRight(f, ":") {
		case "do", "to", "valid", "ważna", "ważne":
			continue
		}
		kept = append(kept, f)
	}
	return strings.Join(kept, " ")
}
