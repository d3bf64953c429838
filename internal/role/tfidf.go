package role

import (
	"math"
	"strings"
	"unicode"
)

// tokenize lower-cases text and returns runs of letters, digits and
// underscores that are at least two runes long.
func tokenize(text string) []string {
	var tokens []string
	var cur []rune
	flush := func() {
		if len(cur) >= 2 {
			tokens = append(tokens, string(cur))
		}
		cur = cur[:0]
	}
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			cur = append(cur, r)
			continue
		}
		flush()
	}
	flush()
	return tokens
}

func termCounts(tokens []string) map[string]float64 {
	tf := make(map[string]float64, len(tokens))
	for _, t := range tokens {
		tf[t]++
	}
	return tf
}

// corpus is the catalog side of a smoothed TF-IDF space. The query document
// is added per call so each query behaves as if fitted on its own.
type corpus struct {
	docs []map[string]float64 // term counts per catalog entry
	df   map[string]int
}

func newCorpus(docs []string) *corpus {
	c := &corpus{df: make(map[string]int)}
	for _, d := range docs {
		tf := termCounts(tokenize(d))
		c.docs = append(c.docs, tf)
		for term := range tf {
			c.df[term]++
		}
	}
	return c
}

// similarities returns the cosine similarity between query and every
// catalog document, with idf = ln((1+n)/(1+df)) + 1 over the catalog plus
// the query, and L2-normalized vectors.
func (c *corpus) similarities(query string) []float64 {
	q := termCounts(tokenize(query))
	n := float64(len(c.docs) + 1)

	idf := func(term string) float64 {
		df := c.df[term]
		if _, ok := q[term]; ok {
			df++
		}
		return math.Log((1+n)/(1+float64(df))) + 1
	}

	qvec := make(map[string]float64, len(q))
	var qnorm float64
	for term, tf := range q {
		w := tf * idf(term)
		qvec[term] = w
		qnorm += w * w
	}
	qnorm = math.Sqrt(qnorm)

	sims := make([]float64, len(c.docs))
	if qnorm == 0 {
		return sims
	}
	for i, doc := range c.docs {
		var dot, dnorm float64
		for term, tf := range doc {
			w := tf * idf(term)
			dnorm += w * w
			dot += w * qvec[term]
		}
		if dnorm == 0 {
			continue
		}
		sims[i] = dot / (qnorm * math.Sqrt(dnorm))
	}
	return sims
}
