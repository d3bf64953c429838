// Package digest selects postings for a reader's criteria and exports them
// as CSV or XLSX.
package digest

import (
	"strings"
	"time"

	"github.com/amishk599/pljobs/internal/model"
	"github.com/amishk599/pljobs/internal/textnorm"
)

// Filter is a reader's criteria. Empty fields do not filter. Within a field
// any value may match; across fields all must match.
type Filter struct {
	Levels      []string // level columns: internship, junior, middle, senior, lead
	CoreRoles   []string // substring of core_role
	Employers   []string // substring of employer_name
	Cities      []string // case- and diacritic-insensitive substring of city
	Regions     []string // same, against region
	Language    string   // "english" -> language_english
	WorkTypes   []string // full_time, hybrid, remote
	CurrentOnly bool     // expiration on or after yesterday
}

// Apply returns the postings matching f, keeping their order.
func Apply(postings []model.Posting, f Filter, now time.Time) []model.Posting {
	var out []model.Posting
	for _, p := range postings {
		if f.Match(p, now) {
			out = append(out, p)
		}
	}
	return out
}

// Match reports whether p satisfies every criterion of f.
func (f Filter) Match(p model.Posting, now time.Time) bool {
	if len(f.Levels) > 0 && !anyFlag(p, f.Levels) {
		return false
	}
	if len(f.WorkTypes) > 0 && !anyFlag(p, f.WorkTypes) {
		return false
	}
	if f.Language != "" && !p.Flag(LanguageColumn(f.Language)) {
		return false
	}
	if len(f.CoreRoles) > 0 && !containsAny(p.CoreRole, f.CoreRoles, false) {
		return false
	}
	if len(f.Employers) > 0 && !containsAny(p.EmployerName, f.Employers, false) {
		return false
	}
	if len(f.Cities) > 0 && !containsAny(p.City, f.Cities, true) {
		return false
	}
	if len(f.Regions) > 0 && !containsAny(p.Region, f.Regions, true) {
		return false
	}
	if f.CurrentOnly {
		y, m, d := now.AddDate(0, 0, -1).Date()
		if p.Expiration.Before(time.Date(y, m, d, 0, 0, 0, 0, time.UTC)) {
			return false
		}
	}
	return true
}

// LanguageColumn maps a language name ("English", "chinese mandarin") to its
// column.
func LanguageColumn(name string) string {
	return "language_" + strings.Join(strings.Fields(strings.ToLower(name)), "_")
}

func anyFlag(p model.Posting, cols []string) bool {
	for _, c := range cols {
		if p.Flag(c) {
			return true
		}
	}
	return false
}

// containsAny matches needles as substrings. With fold, case and Polish
// diacritics are ignored.
func containsAny(haystack string, needles []string, fold bool) bool {
	if fold {
		haystack = strings.ToLower(textnorm.Fold(haystack))
	}
	for _, n := range needles {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if fold {
			n = strings.ToLower(textnorm.Fold(n))
		}
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}
