// Package role maps free-text job titles onto a catalog of canonical
// profession titles.
package role

import (
	"regexp"
	"strings"

	"github.com/amishk599/pljobs/internal/textnorm"
)

// DefaultThreshold is the minimum cosine similarity for a catalog match.
const DefaultThreshold = 0.7

var (
	qualifiers = regexp.MustCompile(`\[.*?\]|\(.*?\)`)
	withTail   = regexp.MustCompile(` with.*`)
	pipeTail   = regexp.MustCompile(`[|\\].*`)
	spaces     = regexp.MustCompile(`\s+`)
)

// Classifier matches cleaned titles against the catalog.
type Classifier struct {
	catalog   []string
	terms     []string // experience-level words stripped from titles
	threshold float64
	corpus    *corpus
}

// NewClassifier fits the catalog side of the TF-IDF space once.
func NewClassifier(catalog, experienceTerms []string, threshold float64) *Classifier {
	lowered := make([]string, len(catalog))
	for i, t := range catalog {
		lowered[i] = strings.ToLower(t)
	}
	terms := make([]string, len(experienceTerms))
	for i, t := range experienceTerms {
		terms[i] = strings.ToLower(t)
	}
	return &Classifier{
		catalog:   catalog,
		terms:     terms,
		threshold: threshold,
		corpus:    newCorpus(lowered),
	}
}

// Clean lower-cases the title, drops experience terms, bracketed qualifiers
// and "with ..." or "| ..." tails, then title-cases the remainder.
func (c *Classifier) Clean(title string) string {
	s := strings.ToLower(title)
	for _, term := range c.terms {
		s = strings.ReplaceAll(s, term, "")
	}
	s = qualifiers.ReplaceAllString(s, "")
	s = withTail.ReplaceAllString(s, "")
	s = pipeTail.ReplaceAllString(s, "")
	s = strings.TrimSpace(spaces.ReplaceAllString(s, " "))
	return textnorm.TitleCase(s)
}

// Classify returns the best catalog title when its similarity exceeds the
// threshold, otherwise the cleaned title. Ties go to the earlier catalog
// entry.
func (c *Classifier) Classify(title string) string {
	if strings.TrimSpace(title) == "" {
		return ""
	}
	cleaned := c.Clean(title)

	best, bestScore := -1, 0.0
	for i, score := range c.corpus.similarities(cleaned) {
		if best == -1 || score > bestScore {
			best, bestScore = i, score
		}
	}
	if best >= 0 && bestScore > c.threshold {
		return c.catalog[best]
	}
	return cleaned
}
