// Package salary turns free-text salary ranges into monthly gross amounts.
package salary

import (
	"regexp"
	"strconv"
	"strings"
)

// RangeSeparator is the only dash recognised between the two amounts.
const RangeSeparator = "–"

var (
	decimalFraction = regexp.MustCompile(`(\d)[.,]\d{1,2}(\D|$)`)
	splitDigits     = regexp.MustCompile(`(\d)[\s\x{00a0}\x{202f}]+(\d)`)
	nonDigit        = regexp.MustCompile(`\D`)
	netMarker       = regexp.MustCompile(`(?i)\bnet(to)?\b`)
)

// Range is a normalized salary. Zero means unknown.
type Range struct {
	Start float64
	Max   float64
}

// Normalizer holds the conversion constants.
type Normalizer struct {
	TaxRate         float64 // flat income tax used to gross up net amounts
	HoursPerMonth   float64
	HourlyThreshold float64 // amounts below this are hourly rates
}

// NewNormalizer returns a normalizer with the default 23% tax rate,
// 160 hour month and 1000 hourly threshold.
func NewNormalizer() Normalizer {
	return Normalizer{TaxRate: 0.23, HoursPerMonth: 160, HourlyThreshold: 1000}
}

// Parse extracts a range from text like "8 000–12 000 PLN netto" or
// "50–70 PLN/h". Text without a range separator yields a zero Range.
func (n Normalizer) Parse(text string) Range {
	s := decimalFraction.ReplaceAllString(text, "$1$2")
	s = strings.ReplaceAll(s, ",", " ")
	s = joinDigitGroups(s)

	dash := strings.Index(s, RangeSeparator)
	if dash == -1 {
		return Range{}
	}

	first := strings.TrimSpace(s[:dash])
	var second string
	if rest := strings.Fields(s[dash+len(RangeSeparator):]); len(rest) > 0 {
		second = rest[0]
	}

	start := numeric(first)
	max := numeric(second)

	// Hourly rates are recognised on the amounts as written, before any
	// gross-up can push them over the threshold.
	start = n.monthly(start)
	max = n.monthly(max)

	if netMarker.MatchString(s) {
		start = n.gross(start)
		max = n.gross(max)
	}

	if start > 0 && max > 0 && start > max {
		start, max = max, start
	}
	return Range{Start: start, Max: max}
}

func (n Normalizer) gross(v float64) float64 {
	if v == 0 {
		return 0
	}
	return v / (1 - n.TaxRate)
}

func (n Normalizer) monthly(v float64) float64 {
	if v > 0 && v < n.HourlyThreshold {
		return v * n.HoursPerMonth
	}
	return v
}

// joinDigitGroups merges "12 000" into "12000". Runs until stable because
// neighbouring groups share a digit.
func joinDigitGroups(s string) string {
	for {
		next := splitDigits.ReplaceAllString(s, "$1$2")
		if next == s {
			return s
		}
		s = next
	}
}

func numeric(s string) float64 {
	digits := nonDigit.ReplaceAllString(s, "")
	if digits == "" {
		return 0
	}
	v, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return 0
	}
	return v
}
