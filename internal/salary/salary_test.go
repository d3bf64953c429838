package salary

import (
	"math"
	"testing"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1
}

func TestParse(t *testing.T) {
	n := NewNormalizer()

	tests := []struct {
		name  string
		input string
		start float64
		max   float64
	}{
		{"net monthly is grossed up", "8 000–12 000 PLN netto", 10390, 15584},
		{"hourly becomes monthly", "50–70 PLN/h", 8000, 11200},
		{"gross monthly untouched", "15 000–20 000 zł brutto / mies.", 15000, 20000},
		{"comma thousands separator", "10,000–14,000 PLN", 10000, 14000},
		{"non-breaking spaces", "9\u00a0000–11\u202f000 PLN", 9000, 11000},
		{"decimal fractions dropped", "8 000,00–12 000,00 zł brutto", 8000, 12000},
		{"net hourly is scaled then grossed", "100–150 PLN/h netto (+ VAT) B2B", 100 / 0.77 * 160, 150 / 0.77 * 160},
		{"net hourly near threshold still hourly", "800–900 PLN/h netto", 800 * 160 / 0.77, 900 * 160 / 0.77},
		{"net as separate word", "7 000–9 000 PLN net/month", 7000 / 0.77, 9000 / 0.77},
		{"internet is not net", "5000–7000 PLN (internet allowance)", 5000, 7000},
		{"network is not net", "6000–8000 PLN, network team", 6000, 8000},
		{"hyphen is not a separator", "8000-12000 PLN", 0, 0},
		{"no range at all", "Negotiable", 0, 0},
		{"empty", "", 0, 0},
		{"reversed range is swapped", "20 000–15 000 PLN", 15000, 20000},
		{"open ended range", "5 000– PLN", 5000, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := n.Parse(tt.input)
			if !approx(got.Start, tt.start) || !approx(got.Max, tt.max) {
				t.Errorf("Parse(%q) = %.2f/%.2f, want %.2f/%.2f", tt.input, got.Start, got.Max, tt.start, tt.max)
			}
		})
	}
}

func TestParseRangeProperties(t *testing.T) {
	n := NewNormalizer()
	inputs := []string{
		"8 000–12 000 PLN netto",
		"50–70 PLN/h",
		"900–1 500 PLN",
		"30 000–25 000 zł netto",
		"– 12 000",
		"abc–def",
	}
	for _, in := range inputs {
		got := n.Parse(in)
		if got.Start < 0 || got.Max < 0 {
			t.Errorf("Parse(%q) produced negative amount: %+v", in, got)
		}
		if got.Start > 0 && got.Max > 0 && got.Start > got.Max {
			t.Errorf("Parse(%q) start > max: %+v", in, got)
		}
	}
}

func TestParseUsesConfiguredConstants(t *testing.T) {
	n := Normalizer{TaxRate: 0.5, HoursPerMonth: 100, HourlyThreshold: 1000}
	got := n.Parse("10–20 netto")
	if !approx(got.Start, 2000) || !approx(got.Max, 4000) {
		t.Errorf("Parse = %+v, want 2000/4000", got)
	}
}
