package tagging

import (
	"testing"

	"github.com/amishk599/pljobs/internal/model"
)

func testContracts() Contracts {
	return Contracts{
		Synonyms: map[string]string{
			"umowa o pracę":               "Contract of Employment",
			"umowa o pracę, kontrakt B2B": "Contract of Employment, B2B Contract",
			"kontrakt B2B (pełny etat)":   "B2B Contract (Full-Time)",
		},
		Categories: []ContractCategory{
			{Name: "B2B Contract", Column: "b2b_contract"},
			{Name: "Contract of Employment", Column: "employment_contract"},
			{Name: "Contract of Mandate", Column: "mandate_contract"},
		},
	}
}

func TestContractsTag(t *testing.T) {
	c := testContracts()

	tests := []struct {
		raw  string
		want map[string]bool
	}{
		{"umowa o pracę", map[string]bool{"b2b_contract": false, "employment_contract": true, "mandate_contract": false}},
		{"umowa o pracę, kontrakt B2B", map[string]bool{"b2b_contract": true, "employment_contract": true, "mandate_contract": false}},
		{"kontrakt B2B (pełny etat)", map[string]bool{"b2b_contract": true, "employment_contract": false, "mandate_contract": false}},
		{"Contract of Mandate", map[string]bool{"b2b_contract": false, "employment_contract": false, "mandate_contract": true}},
		{"N/A", map[string]bool{"b2b_contract": false, "employment_contract": false, "mandate_contract": false}},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := c.Tag(tt.raw)
			for col, want := range tt.want {
				if got[col] != want {
					t.Errorf("Tag(%q)[%s] = %v, want %v", tt.raw, col, got[col], want)
				}
			}
		})
	}
}

func TestContractsStandardizeKeepsUnknown(t *testing.T) {
	c := testContracts()
	if got := c.Standardize("umowa o dzieło"); got != "umowa o dzieło" {
		t.Errorf("Standardize = %q, want raw value", got)
	}
}

func TestTaxonomyTagIsCaseInsensitiveAndMultiLabel(t *testing.T) {
	tax := NewTaxonomy([]Category{
		{Column: "health_and_wellbeing", Keywords: []string{"Medical care", "MultiSport"}},
		{Column: "mobility_and_transport", Keywords: []string{"parking"}},
		{Column: "unique_benefits", Keywords: []string{"beer allowance"}},
	})

	got := tax.Tag("Private MEDICAL CARE, multisport card and free Parking")
	want := map[string]bool{
		"health_and_wellbeing":   true,
		"mobility_and_transport": true,
		"unique_benefits":        false,
	}
	for col, w := range want {
		if got[col] != w {
			t.Errorf("Tag()[%s] = %v, want %v", col, got[col], w)
		}
	}
}

func TestTaxonomyTagScansAllTexts(t *testing.T) {
	tax := NewTaxonomy([]Category{
		{Column: "language_german", Keywords: []string{"German", "Niemiecki"}},
		{Column: "language_russian", Keywords: []string{"Русский"}},
	})
	got := tax.Tag("Java Developer", "", "Znajomość języka niemieckiego", "русский язык")
	if !got["language_german"] {
		t.Error("expected language_german from Polish keyword in third text")
	}
	if !got["language_russian"] {
		t.Error("expected language_russian from Cyrillic keyword")
	}
}

func TestLevelsTag(t *testing.T) {
	l := Levels{
		Synonyms: map[string]string{"Mid/Regular": "middle", "praktykant / stażysta": "internship"},
		Columns:  model.LevelColumns,
	}

	got := l.Tag("Mid/Regular")
	for _, col := range model.LevelColumns {
		if got[col] != (col == "middle") {
			t.Errorf("Tag(Mid/Regular)[%s] = %v", col, got[col])
		}
	}

	got = l.Tag("Wizard")
	for _, col := range model.LevelColumns {
		if got[col] {
			t.Errorf("Tag(Wizard)[%s] = true, want all false", col)
		}
	}
}

func TestWorkMode(t *testing.T) {
	tests := []struct {
		explicit, fallback, want string
	}{
		{"praca hybrydowa • praca zdalna", "Full Time", "praca hybrydowa,praca zdalna"},
		{"N/A", "Remote", "Remote"},
		{"", "Hybrid", "Hybrid"},
		{"full office work", "Remote", "full office work"},
	}
	for _, tt := range tests {
		if got := WorkMode(tt.explicit, tt.fallback); got != tt.want {
			t.Errorf("WorkMode(%q, %q) = %q, want %q", tt.explicit, tt.fallback, got, tt.want)
		}
	}
}

func TestTaggerAllowsOverlappingCategories(t *testing.T) {
	tg := Tagger{
		Contracts: testContracts(),
		Benefits:  NewTaxonomy([]Category{{Column: "work_life_balance", Keywords: []string{"remote work"}}}),
		Languages: NewTaxonomy([]Category{{Column: "language_english", Keywords: []string{"English"}}}),
		Levels:    Levels{Synonyms: map[string]string{"Senior": "senior"}, Columns: model.LevelColumns},
		WorkTypes: NewTaxonomy([]Category{
			{Column: "full_time", Keywords: []string{"full time"}},
			{Column: "hybrid", Keywords: []string{"hybrid", "praca hybrydowa"}},
			{Column: "remote", Keywords: []string{"remote", "praca zdalna"}},
		}),
	}

	raw := model.RawPosting{
		JobTitle:        "Backend Engineer",
		Requirements:    "Fluent English",
		ContractType:    "umowa o pracę, kontrakt B2B",
		ExperienceLevel: "Senior",
		Benefits:        "remote work days",
		WorkMode:        "praca hybrydowa • praca zdalna",
	}
	flags := tg.Tag(raw, "Full Time")

	for _, col := range []string{"b2b_contract", "employment_contract", "language_english", "senior", "hybrid", "remote", "work_life_balance"} {
		if !flags[col] {
			t.Errorf("flags[%s] = false, want true", col)
		}
	}
	if flags["full_time"] {
		t.Error("flags[full_time] = true, want false")
	}
}
