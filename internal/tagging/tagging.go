// Package tagging maps free-text posting fields onto the fixed boolean
// taxonomies of the jobs table. Categories inside one taxonomy are never
// mutually exclusive.
package tagging

import (
	"strings"
)

// Category is one boolean column and the keywords that switch it on.
type Category struct {
	Column   string   `yaml:"column"`
	Keywords []string `yaml:"keywords"`
}

// Taxonomy is a keyword-scan table.
type Taxonomy struct {
	categories []Category // keywords lower-cased
}

// NewTaxonomy lower-cases the keywords once.
func NewTaxonomy(categories []Category) Taxonomy {
	cats := make([]Category, len(categories))
	for i, c := range categories {
		kws := make([]string, 0, len(c.Keywords))
		for _, kw := range c.Keywords {
			if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
				kws = append(kws, kw)
			}
		}
		cats[i] = Category{Column: c.Column, Keywords: kws}
	}
	return Taxonomy{categories: cats}
}

// Columns lists the taxonomy's columns in table order.
func (t Taxonomy) Columns() []string {
	cols := make([]string, len(t.categories))
	for i, c := range t.categories {
		cols[i] = c.Column
	}
	return cols
}

// Tag sets a column when any of its keywords occurs, case-insensitively, in
// any of the texts. Every column of the taxonomy is present in the result.
func (t Taxonomy) Tag(texts ...string) map[string]bool {
	lowered := make([]string, len(texts))
	for i, s := range texts {
		lowered[i] = strings.ToLower(s)
	}
	out := make(map[string]bool, len(t.categories))
	for _, c := range t.categories {
		out[c.Column] = anyContains(lowered, c.Keywords)
	}
	return out
}

func anyContains(texts, keywords []string) bool {
	for _, kw := range keywords {
		for _, s := range texts {
			if strings.Contains(s, kw) {
				return true
			}
		}
	}
	return false
}

// ContractCategory ties a canonical contract name to its column.
type ContractCategory struct {
	Name   string `yaml:"name"`
	Column string `yaml:"column"`
}

// Contracts standardizes contract-type text and one-hot encodes it.
type Contracts struct {
	Synonyms   map[string]string
	Categories []ContractCategory
}

// Standardize maps a raw contract string to its canonical form, keeping the
// raw value when there is no synonym.
func (c Contracts) Standardize(raw string) string {
	if std, ok := c.Synonyms[raw]; ok {
		return std
	}
	if std, ok := c.Synonyms[strings.TrimSpace(raw)]; ok {
		return std
	}
	return raw
}

// Tag sets each category whose canonical name occurs in the standardized
// value, so "Contract of Employment, B2B Contract" yields two columns.
func (c Contracts) Tag(raw string) map[string]bool {
	std := c.Standardize(raw)
	out := make(map[string]bool, len(c.Categories))
	for _, cat := range c.Categories {
		out[cat.Column] = strings.Contains(std, cat.Name)
	}
	return out
}

// Levels maps experience-level text onto one level column by exact lookup.
type Levels struct {
	Synonyms map[string]string // raw text -> column
	Columns  []string
}

// Level returns the mapped column, or "" for unmapped text.
func (l Levels) Level(raw string) string {
	if lvl, ok := l.Synonyms[raw]; ok {
		return lvl
	}
	return l.Synonyms[strings.TrimSpace(raw)]
}

// Tag one-hot encodes the level. Unmapped text leaves every column false.
func (l Levels) Tag(raw string) map[string]bool {
	lvl := l.Level(raw)
	out := make(map[string]bool, len(l.Columns))
	for _, col := range l.Columns {
		out[col] = col == lvl
	}
	return out
}
