// Package employer cleans employer names and folds near-duplicates together.
package employer

import (
	"regexp"
	"strings"

	"github.com/amishk599/pljobs/internal/textnorm"
)

// Corporate-form and country tokens removed from names. Each alternative
// must stand on its own, delimited by the edges, whitespace or punctuation.
var suffixes = regexp.MustCompile(`(?i)(^|[\s,.(\-])(` + strings.Join([]string{
	`spółka z ograniczoną odpowiedzialnością`,
	`spółka komandytowa`,
	`spółka akcyjna`,
	`sp\.?\s?z\.?\s?o\.?\s?o\.?`,
	`sp\.?z\.?o\.?`,
	`spzoo`,
	`sp\s?k\.?`,
	`sp\.\s?k\.?`,
	`sp\.?\s?j\.?`,
	`s\.?\s?a\.?`,
	`llc\.?`,
	`inc\.?`,
	`ltd\.?`,
	`gmbh`,
	`polska`,
	`poland`,
	`pl`,
}, "|") + `)($|[\s,.)\-])`)

var (
	bracketed   = regexp.MustCompile(`\[[^\]]*\]|[\[\]]`)
	emptyParens = regexp.MustCompile(`\(\s*\)`)
	dots        = regexp.MustCompile(`\.\s*`)
	spaces      = regexp.MustCompile(`\s+`)
)

// Clean strips legal-form suffixes, bracketed codes and country names, then
// title-cases the rest ("ACME SOFTWARE SP. Z O.O." -> "Acme Software").
func Clean(name string) string {
	s := name
	for {
		next := suffixes.ReplaceAllString(s, "$1 $3")
		if next == s {
			break
		}
		s = next
	}
	s = bracketed.ReplaceAllString(s, " ")
	s = dots.ReplaceAllString(s, " ")
	s = emptyParens.ReplaceAllString(s, " ")
	s = strings.Trim(spaces.ReplaceAllString(s, " "), " ,-")
	return textnorm.TitleCase(s)
}

// Consolidate maps every name that is contained in another name of the batch
// onto the first such containing name. The mapping is a single pass and is
// not transitively closed: with A in B in C, A becomes B, not C.
func Consolidate(names []string) []string {
	var unique []string
	seen := make(map[string]bool)
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			unique = append(unique, n)
		}
	}

	canonical := make(map[string]string)
	for _, a := range unique {
		if a == "" {
			continue
		}
		for _, b := range unique {
			if a != b && strings.Contains(b, a) {
				canonical[a] = b
				break
			}
		}
	}

	out := make([]string, len(names))
	for i, n := range names {
		if c, ok := canonical[n]; ok {
			out[i] = c
		} else {
			out[i] = n
		}
	}
	return out
}
