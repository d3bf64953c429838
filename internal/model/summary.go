package model

import "time"

// RunSummary describes one pipeline run for operators.
type RunSummary struct {
	RunID      string         `json:"run_id"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	DryRun     bool           `json:"dry_run"`
	Staged     int            `json:"staged"`
	BadDate    int            `json:"dropped_bad_expiration"`
	BatchDupes int            `json:"dropped_batch_duplicates"`
	Stored     int            `json:"dropped_already_stored"`
	Inserted   int            `json:"inserted"`
	Tags       map[string]int `json:"tag_counts"`
	Salary     SalaryStats    `json:"salary"`
	TopRoles   []NameCount    `json:"top_roles,omitempty"`
	TopCities  []NameCount    `json:"top_cities,omitempty"`
}

// SalaryStats covers postings with a non-zero salary field.
type SalaryStats struct {
	Count    int     `json:"count"`
	MinStart float64 `json:"min_start"`
	MaxEnd   float64 `json:"max_end"`
	MeanMid  float64 `json:"mean_mid"`
}

// NameCount is one entry of a frequency table.
type NameCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Normalized is the number of rows that survived every filter.
func (s *RunSummary) Normalized() int {
	return s.Staged - s.BadDate - s.BatchDupes - s.Stored
}
