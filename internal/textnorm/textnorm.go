// Package textnorm holds small text helpers shared by the normalization
// stages.
package textnorm

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// TitleCase upper-cases tokens of up to three characters and capitalizes
// longer ones, lower-casing their tail ("BIG DATA solutions" -> "BIG Data
// Solutions").
func TitleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		if utf8.RuneCountInString(w) <= 3 {
			words[i] = strings.ToUpper(w)
			continue
		}
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + strings.ToLower(w[size:])
	}
	return strings.Join(words, " ")
}

// stroke covers the Polish letters that do not decompose under NFD.
var stroke = runes.Map(func(r rune) rune {
	switch r {
	case 'ł':
		return 'l'
	case 'Ł':
		return 'L'
	}
	return r
})

// Fold strips diacritics: "Łódź" -> "Lodz", "Kraków" -> "Krakow".
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), stroke, norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// HasPolishDiacritics reports whether s contains a letter specific to
// Polish orthography.
func HasPolishDiacritics(s string) bool {
	return strings.ContainsAny(strings.ToLower(s), "ąćęłńóśźż")
}
