package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/amishk599/pljobs/internal/location"
	"github.com/amishk599/pljobs/internal/model"
	"github.com/amishk599/pljobs/internal/translate"
)

func TestPostingID(t *testing.T) {
	raw := model.RawPosting{JobTitle: "Go Dev", EmployerName: "Acme"}
	loc := location.Location{Cities: []string{"Warszawa", "Kraków"}}
	exp := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)

	got := postingID(raw, loc, exp)
	if got != "Go Dev_Acme_Warszawa;Kraków_2024-07-01" {
		t.Errorf("postingID = %q", got)
	}
}

func TestDedupe(t *testing.T) {
	exp := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	loc := location.Location{Cities: []string{"Gdańsk"}}
	row := func(title, url string) locatedRow {
		return locatedRow{Raw: model.RawPosting{JobTitle: title, EmployerName: "E", URL: url}, Loc: loc, Expiration: exp}
	}

	rows := []locatedRow{row("A", "first"), row("A", "second"), row("B", ""), row("C", "")}
	stored := map[string]bool{"B_E_Gdańsk_2024-07-01": true}

	out, dupes, already := dedupe(rows, stored)
	if dupes != 1 || already != 1 {
		t.Errorf("dupes %d, already stored %d", dupes, already)
	}
	if len(out) != 2 || out[0].Raw.URL != "first" || out[1].Raw.JobTitle != "C" {
		t.Errorf("dedupe kept %+v", out)
	}
}

func TestTranslateRows_KeepsIDAndInput(t *testing.T) {
	svc := translate.NewService(nil, map[string]string{"młodszy": "Junior", "programista": "Developer"}, 2, discardLogger())
	in := []identifiedRow{{
		locatedRow: locatedRow{Raw: model.RawPosting{JobTitle: "Młodszy Programista", Offering: "programista"}},
		ID:         "Młodszy Programista_E_Remote_2024-07-01",
	}}

	out, err := translateRows(context.Background(), in, svc)
	if err != nil {
		t.Fatalf("translateRows: %v", err)
	}
	if out[0].Raw.JobTitle != "Junior Developer" || out[0].Raw.Offering != "Developer" {
		t.Errorf("translated = %+v", out[0].Raw)
	}
	if out[0].ID != in[0].ID {
		t.Errorf("id changed to %q", out[0].ID)
	}
	if in[0].Raw.JobTitle != "Młodszy Programista" {
		t.Error("input row was modified")
	}
}

func TestConsolidateEmployers(t *testing.T) {
	postings := []model.Posting{{EmployerName: "Acme"}, {EmployerName: "Acme Group"}, {EmployerName: "Beta"}}
	consolidateEmployers(postings)

	want := []string{"Acme Group", "Acme Group", "Beta"}
	for i, p := range postings {
		if p.EmployerName != want[i] {
			t.Errorf("[%d] = %q, want %q", i, p.EmployerName, want[i])
		}
	}
}

func TestSummarize(t *testing.T) {
	postings := []model.Posting{
		{CoreRole: "Go Developer", City: "Warszawa;Kraków", StartSalary: 10000, MaxSalary: 14000, Flags: map[string]bool{"remote": true}},
		{CoreRole: "Go Developer", City: "Warszawa", Flags: map[string]bool{"remote": true, "senior": true}},
		{CoreRole: "Tester", City: location.RemoteCity, StartSalary: 6000, MaxSalary: 8000},
	}
	s := &model.RunSummary{}
	summarize(s, postings)

	if s.Tags["remote"] != 2 || s.Tags["senior"] != 1 || s.Tags["lead"] != 0 {
		t.Errorf("tags = %v", s.Tags)
	}
	if _, ok := s.Tags["language_danish"]; !ok {
		t.Error("zero-count columns should be present")
	}
	if s.Salary.Count != 2 || s.Salary.MinStart != 6000 || s.Salary.MaxEnd != 14000 || s.Salary.MeanMid != 9500 {
		t.Errorf("salary = %+v", s.Salary)
	}
	if len(s.TopRoles) != 2 || s.TopRoles[0] != (model.NameCount{Name: "Go Developer", Count: 2}) {
		t.Errorf("top roles = %v", s.TopRoles)
	}
	if len(s.TopCities) != 2 || s.TopCities[0].Name != "Warszawa" || s.TopCities[0].Count != 2 {
		t.Errorf("top cities = %v", s.TopCities)
	}
}
