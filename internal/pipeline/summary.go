package pipeline

import (
	"math"
	"sort"
	"strings"

	"github.com/amishk599/pljobs/internal/location"
	"github.com/amishk599/pljobs/internal/model"
)

const topN = 10

// summarize fills the distribution fields of s from the inserted postings.
func summarize(s *model.RunSummary, postings []model.Posting) {
	s.Tags = make(map[string]int, len(model.FlagColumns()))
	for _, c := range model.FlagColumns() {
		s.Tags[c] = 0
	}

	roles := make(map[string]int)
	cities := make(map[string]int)
	var (
		mids  float64
		stats model.SalaryStats
	)
	stats.MinStart = math.Inf(1)

	for _, p := range postings {
		for col, set := range p.Flags {
			if set {
				s.Tags[col]++
			}
		}
		if p.CoreRole != "" {
			roles[p.CoreRole]++
		}
		for _, city := range strings.Split(p.City, ";") {
			if city != "" && city != location.RemoteCity {
				cities[city]++
			}
		}
		if p.StartSalary > 0 || p.MaxSalary > 0 {
			stats.Count++
			if p.StartSalary > 0 && p.StartSalary < stats.MinStart {
				stats.MinStart = p.StartSalary
			}
			if p.MaxSalary > stats.MaxEnd {
				stats.MaxEnd = p.MaxSalary
			}
			mids += (p.StartSalary + p.MaxSalary) / 2
		}
	}

	if stats.Count > 0 {
		stats.MeanMid = math.Round(mids/float64(stats.Count)*100) / 100
	}
	if math.IsInf(stats.MinStart, 1) {
		stats.MinStart = 0
	}
	s.Salary = stats
	s.TopRoles = top(roles, topN)
	s.TopCities = top(cities, topN)
}

// top returns the n most frequent names, ties broken alphabetically.
func top(counts map[string]int, n int) []model.NameCount {
	out := make([]model.NameCount, 0, len(counts))
	for name, c := range counts {
		out = append(out, model.NameCount{Name: name, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
