package dates

import (
	"errors"
	"testing"
	"time"
)

var months = map[string]string{
	"stycznia": "January", "lutego": "February", "marca": "March",
	"kwietnia": "April", "maja": "May", "czerwca": "June", "lipca": "July",
	"sierpnia": "August", "września": "September", "października": "October",
	"listopada": "November", "grudnia": "December", "lispada": "November",
}

func fixedClock() time.Time {
	return time.Date(2024, 10, 16, 15, 30, 0, 0, time.UTC)
}

func TestParse(t *testing.T) {
	p := NewParser(months, fixedClock)

	tests := []struct {
		input string
		want  string
	}{
		{"12.11.2024", "2024-11-12"},
		{"do 12.11.2024", "2024-11-12"},
		{"do 1.05.2024", "2024-05-01"},
		{"do: 5.5.2024", "2024-05-05"},
		{"12.3.2025", "2025-03-12"},
		{"valid to: 01.02.2025", "2025-02-01"},
		{"31 października 2024", "2024-10-31"},
		{"do: 3 listopada 2024", "2024-11-03"},
		{"3 lispada 2024", "2024-11-03"},
		{"5 November 2024", "2024-11-05"},
		{"30 dni", "2024-11-14"},
		{"still 1 day", ""},
		{"1 dni", "2024-10-16"},
		{"10 days left", "2024-10-25"},
		{"", ""},
		{"soon", ""},
		{"32.13.2024", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := p.Parse(tt.input)
			if tt.want == "" {
				if !errors.Is(err, ErrUnparseable) {
					t.Errorf("Parse(%q) = %v, %v; want ErrUnparseable", tt.input, got, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.input, err)
			}
			if got.Format("2006-01-02") != tt.want {
				t.Errorf("Parse(%q) = %s, want %s", tt.input, got.Format("2006-01-02"), tt.want)
			}
		})
	}
}

func TestParseDefaultsToWallClock(t *testing.T) {
	p := NewParser(months, nil)
	got, err := p.Parse("1 dni")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got.Format("2006-01-02") != time.Now().Format("2006-01-02") {
		t.Errorf("Parse(1 dni) = %s, want today", got.Format("2006-01-02"))
	}
}
