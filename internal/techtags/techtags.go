// Package techtags attaches technology tags to postings by re-scanning their
// text for tokens seen in any posting's technology list.
package techtags

import (
	"sort"
	"strings"
)

// NotAvailable is stored when a posting has no technologies.
const NotAvailable = "N/A"

// wordPunct is trimmed from both ends of a text word before comparison.
const wordPunct = `,;:()[]{}!?"'`

// NewVocabulary collects the upper-cased tokens of every technology list,
// keeping tokens of at least two characters. The result is sorted.
func NewVocabulary(lists ...[]string) []string {
	seen := make(map[string]bool)
	for _, list := range lists {
		for _, value := range list {
			for _, tok := range split(value) {
				if len([]rune(tok)) >= 2 {
					seen[tok] = true
				}
			}
		}
	}
	vocab := make([]string, 0, len(seen))
	for tok := range seen {
		vocab = append(vocab, tok)
	}
	sort.Strings(vocab)
	return vocab
}

// Extractor scans posting text for vocabulary tokens.
type Extractor struct {
	vocab []string
	allow map[string]bool // short tokens that are real technologies
	stop  map[string]bool // common words that collide with technology names
}

// NewExtractor builds an extractor. Allow and stop entries are compared
// upper-cased.
func NewExtractor(vocab, allow, stop []string) *Extractor {
	return &Extractor{vocab: vocab, allow: upperSet(allow), stop: upperSet(stop)}
}

// Extract returns the ';'-joined tag list for one posting: its explicit
// technologies first, then every valid vocabulary token appearing as a whole
// word in the title, requirements or responsibilities.
func (e *Extractor) Extract(explicit, title, requirements, responsibilities string) string {
	var tags []string
	seen := make(map[string]bool)
	add := func(tok string) {
		if !seen[tok] {
			seen[tok] = true
			tags = append(tags, tok)
		}
	}

	for _, tok := range split(explicit) {
		add(tok)
	}

	words := wordSet(title, requirements, responsibilities)
	for _, tok := range e.vocab {
		if seen[tok] || !e.valid(tok) {
			continue
		}
		if words[strings.ToLower(tok)] {
			add(tok)
		}
	}

	if len(tags) == 0 {
		return NotAvailable
	}
	return strings.Join(tags, ";")
}

func (e *Extractor) valid(tok string) bool {
	if e.stop[tok] {
		return false
	}
	return len([]rune(tok)) > 2 || e.allow[tok]
}

// split breaks a ','/';' list into upper-cased tokens, skipping "N/A".
func split(value string) []string {
	if strings.TrimSpace(value) == NotAvailable {
		return nil
	}
	parts := strings.FieldsFunc(value, func(r rune) bool { return r == ',' || r == ';' })
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToUpper(strings.TrimSpace(p))
		if p != "" && p != NotAvailable {
			out = append(out, p)
		}
	}
	return out
}

// wordSet lower-cases and whitespace-tokenizes the texts, so multi-word
// vocabulary entries never match.
func wordSet(texts ...string) map[string]bool {
	set := make(map[string]bool)
	for _, text := range texts {
		for _, w := range strings.Fields(strings.ToLower(text)) {
			set[w] = true
			if trimmed := strings.TrimRight(strings.Trim(w, wordPunct), "."); trimmed != "" {
				set[trimmed] = true
			}
		}
	}
	return set
}

func upperSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, it := range items {
		set[strings.ToUpper(strings.TrimSpace(it))] = true
	}
	return set
}
