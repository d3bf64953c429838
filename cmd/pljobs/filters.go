package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/amishk599/pljobs/internal/digest"
	"github.com/amishk599/pljobs/internal/model"
)

// filterFlags are the digest criteria shared by export and browse.
type filterFlags struct {
	levels    []string
	roles     []string
	employers []string
	cities    []string
	regions   []string
	language  string
	workTypes []string
	current   bool
}

func (f *filterFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringSliceVar(&f.levels, "level", nil, "experience levels (internship, junior, middle, senior, lead)")
	fl.StringSliceVar(&f.roles, "role", nil, "core role substrings")
	fl.StringSliceVar(&f.employers, "employer", nil, "employer name substrings")
	fl.StringSliceVar(&f.cities, "city", nil, "city names (case and diacritics ignored)")
	fl.StringSliceVar(&f.regions, "region", nil, "region names (case and diacritics ignored)")
	fl.StringVar(&f.language, "language", "", "required language, e.g. english")
	fl.StringSliceVar(&f.workTypes, "work-type", nil, "work types (full_time, hybrid, remote)")
	fl.BoolVar(&f.current, "current", false, "only postings that have not expired")
}

func (f *filterFlags) filter() (digest.Filter, error) {
	for _, l := range f.levels {
		if !contains(model.LevelColumns, l) {
			return digest.Filter{}, fmt.Errorf("unknown level %q (want one of %s)", l, strings.Join(model.LevelColumns, ", "))
		}
	}
	for _, w := range f.workTypes {
		if !contains(model.WorkTypeColumns, w) {
			return digest.Filter{}, fmt.Errorf("unknown work type %q (want one of %s)", w, strings.Join(model.WorkTypeColumns, ", "))
		}
	}
	if f.language != "" && !contains(model.LanguageColumns, digest.LanguageColumn(f.language)) {
		return digest.Filter{}, fmt.Errorf("unknown language %q", f.language)
	}
	return digest.Filter{
		Levels:      f.levels,
		CoreRoles:   f.roles,
		Employers:   f.employers,
		Cities:      f.cities,
		Regions:     f.regions,
		Language:    f.language,
		WorkTypes:   f.workTypes,
		CurrentOnly: f.current,
	}, nil
}

// label summarizes the active criteria for headers.
func (f *filterFlags) label() string {
	var parts []string
	add := func(name string, vals []string) {
		if len(vals) > 0 {
			parts = append(parts, name+"="+strings.Join(vals, ","))
		}
	}
	add("level", f.levels)
	add("role", f.roles)
	add("employer", f.employers)
	add("city", f.cities)
	add("region", f.regions)
	if f.language != "" {
		parts = append(parts, "language="+f.language)
	}
	add("work-type", f.workTypes)
	if f.current {
		parts = append(parts, "current")
	}
	if len(parts) == 0 {
		return "all"
	}
	return strings.Join(parts, " ")
}

// postedOn resolves "yesterday"/"today" to a date and validates explicit
// dates.
func postedOn(value string, now time.Time) (string, error) {
	switch value {
	case "":
		return "", nil
	case "today":
		return now.Format(model.DateLayout), nil
	case "yesterday":
		return now.AddDate(0, 0, -1).Format(model.DateLayout), nil
	}
	if _, err := time.Parse(model.DateLayout, value); err != nil {
		return "", fmt.Errorf("invalid --posted %q: want YYYY-MM-DD, today or yesterday", value)
	}
	return value, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
