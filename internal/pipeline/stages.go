package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/amishk599/pljobs/internal/dates"
	"github.com/amishk599/pljobs/internal/employer"
	"github.com/amishk599/pljobs/internal/location"
	"github.com/amishk599/pljobs/internal/model"
	"github.com/amishk599/pljobs/internal/techtags"
	"github.com/amishk599/pljobs/internal/translate"
)

// locatedRow is a staged row with its location resolved and a valid
// expiration date.
type locatedRow struct {
	Raw        model.RawPosting
	Loc        location.Location
	Expiration time.Time
}

// identifiedRow carries the composite id computed from the raw fields.
type identifiedRow struct {
	locatedRow
	ID string
}

// postingID is title_employer_city_YYYY-MM-DD over the untranslated fields.
func postingID(raw model.RawPosting, loc location.Location, exp time.Time) string {
	return raw.JobTitle + "_" + raw.EmployerName + "_" + loc.City() + "_" + exp.Format(model.DateLayout)
}

// locate resolves locations and parses expirations. Rows whose expiration
// cannot be parsed are dropped.
func locate(rows []model.RawPosting, resolver *location.Resolver, parser *dates.Parser, logger *slog.Logger) ([]locatedRow, int) {
	out := make([]locatedRow, 0, len(rows))
	dropped := 0
	for _, raw := range rows {
		exp, err := parser.Parse(raw.Expiration)
		if err != nil {
			dropped++
			logger.Debug("dropping row with unparseable expiration",
				"title", raw.JobTitle,
				"expiration", raw.Expiration,
			)
			continue
		}
		out = append(out, locatedRow{Raw: raw, Loc: resolver.Resolve(raw.Location), Expiration: exp})
	}
	return out, dropped
}

// dedupe assigns ids, keeps the first row per id and drops ids already
// stored.
func dedupe(rows []locatedRow, stored map[string]bool) (out []identifiedRow, batchDupes, alreadyStored int) {
	seen := make(map[string]bool, len(rows))
	for _, r := range rows {
		id := postingID(r.Raw, r.Loc, r.Expiration)
		if seen[id] {
			batchDupes++
			continue
		}
		seen[id] = true
		if stored[id] {
			alreadyStored++
			continue
		}
		out = append(out, identifiedRow{locatedRow: r, ID: id})
	}
	return out, batchDupes, alreadyStored
}

// translatedFields lists the text fields that go through translation.
var translatedFields = []func(*model.RawPosting) *string{
	func(r *model.RawPosting) *string { return &r.JobTitle },
	func(r *model.RawPosting) *string { return &r.Responsibilities },
	func(r *model.RawPosting) *string { return &r.Requirements },
	func(r *model.RawPosting) *string { return &r.Benefits },
	func(r *model.RawPosting) *string { return &r.Offering },
}

// translateRows returns copies of rows with their text fields translated.
// The input is not modified.
func translateRows(ctx context.Context, rows []identifiedRow, svc *translate.Service) ([]identifiedRow, error) {
	texts := make([]string, 0, len(rows)*len(translatedFields))
	for i := range rows {
		for _, field := range translatedFields {
			texts = append(texts, *field(&rows[i].Raw))
		}
	}

	translated, err := svc.Batch(ctx, texts)
	if err != nil {
		return nil, err
	}

	out := make([]identifiedRow, len(rows))
	copy(out, rows)
	k := 0
	for i := range out {
		for _, field := range translatedFields {
			*field(&out[i].Raw) = translated[k]
			k++
		}
	}
	return out, nil
}

// classify builds a posting per row: core role, salary and boolean columns.
// Employer names are cleaned but not yet consolidated; technologies are
// filled later.
func classify(rows []identifiedRow, c *Components) []model.Posting {
	out := make([]model.Posting, len(rows))
	for i, r := range rows {
		raw := r.Raw
		pay := c.Salary.Parse(raw.Salary)
		out[i] = model.Posting{
			ID:               r.ID,
			JobTitle:         raw.JobTitle,
			CoreRole:         c.Roles.Classify(raw.JobTitle),
			EmployerName:     employer.Clean(raw.EmployerName),
			City:             r.Loc.City(),
			Lat:              r.Loc.Lat(),
			Long:             r.Loc.Long(),
			Region:           r.Loc.Region(),
			StartSalary:      pay.Start,
			MaxSalary:        pay.Max,
			Responsibilities: raw.Responsibilities,
			Requirements:     raw.Requirements,
			Offering:         raw.Offering,
			Benefits:         raw.Benefits,
			Flags:            c.Tagger.Tag(raw, r.Loc.WorkType),
			UploadID:         raw.UploadID,
			Expiration:       r.Expiration,
			URL:              raw.URL,
			DatePosted:       raw.DatePosted,
		}
	}
	return out
}

// consolidateEmployers rewrites employer names across the batch.
func consolidateEmployers(postings []model.Posting) {
	names := make([]string, len(postings))
	for i, p := range postings {
		names[i] = p.EmployerName
	}
	for i, name := range employer.Consolidate(names) {
		postings[i].EmployerName = name
	}
}

// tagTechnologies fills TechnologiesUsed. The vocabulary is every explicit
// technology of the batch plus every stored technology list.
func tagTechnologies(postings []model.Posting, rows []identifiedRow, existing []model.ExistingPosting, c *Components) {
	explicit := make([]string, len(rows))
	for i, r := range rows {
		explicit[i] = r.Raw.Technologies
	}
	stored := make([]string, len(existing))
	for i, e := range existing {
		stored[i] = e.TechnologiesUsed
	}

	extractor := techtags.NewExtractor(techtags.NewVocabulary(explicit, stored), c.TechAllow, c.TechStop)
	for i := range postings {
		p := &postings[i]
		p.TechnologiesUsed = extractor.Extract(explicit[i], p.JobTitle, p.Requirements, p.Responsibilities)
	}
}
