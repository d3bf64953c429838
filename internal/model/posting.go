package model

import (
	"context"
	"time"
)

// RawPosting is one scraped job advertisement as written to the staging table.
// Every field may be empty or "N/A".
type RawPosting struct {
	JobTitle         string `json:"job_title"`
	EmployerName     string `json:"employer_name"`
	Location         string `json:"location"`
	WorkMode         string `json:"hybrid_full_remote"`
	Expiration       string `json:"expiration"`
	ContractType     string `json:"contract_type"`
	ExperienceLevel  string `json:"experience_level"`
	Salary           string `json:"salary"`
	Technologies     string `json:"technologies"`
	Responsibilities string `json:"responsibilities"`
	Requirements     string `json:"requirements"`
	Offering         string `json:"offering"`
	Benefits         string `json:"benefits"`
	URL              string `json:"url"`
	DatePosted       string `json:"date_posted"`
	UploadID         string `json:"upload_id"`
}

// Posting is a normalized row of the jobs table.
type Posting struct {
	ID               string
	JobTitle         string
	CoreRole         string
	EmployerName     string
	City             string // ';'-joined
	Lat              string
	Long             string
	Region           string
	StartSalary      float64
	MaxSalary        float64
	TechnologiesUsed string
	Responsibilities string
	Requirements     string
	Offering         string
	Benefits         string
	Flags            map[string]bool // keyed by boolean column name
	UploadID         string
	Expiration       time.Time
	URL              string
	DatePosted       string
}

// Flag reports whether the boolean column is set.
func (p Posting) Flag(column string) bool {
	return p.Flags[column]
}

// ExistingPosting is the slice of a stored row the pipeline needs for dedup
// and technology vocabulary building.
type ExistingPosting struct {
	ID               string
	TechnologiesUsed string
}

// PostingSource loads the staged raw postings for one batch.
type PostingSource interface {
	LoadStaged(ctx context.Context) ([]RawPosting, error)
}

// PostingStore persists normalized postings. InsertPostings must be
// all-or-nothing.
type PostingStore interface {
	ExistingPostings(ctx context.Context) ([]ExistingPosting, error)
	InsertPostings(ctx context.Context, postings []Posting) (int, error)
	RecordRun(ctx context.Context, summary *RunSummary) error
}

// PostingQuery narrows a read of the jobs table. Zero values mean "no filter".
type PostingQuery struct {
	PostedOn     string    // exact date_posted match
	ExpiresAfter time.Time // expiration >= this date
	Limit        int
}

// PostingReader serves read-only consumers of the jobs table.
type PostingReader interface {
	ListPostings(ctx context.Context, q PostingQuery) ([]Posting, error)
}

// Translator turns one piece of text into English.
type Translator interface {
	Translate(ctx context.Context, text string) (string, error)
}

// Notifier delivers the summary of a finished pipeline run.
type Notifier interface {
	Notify(ctx context.Context, summary *RunSummary) error
}
