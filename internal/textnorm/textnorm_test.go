package textnorm

import "testing"

func TestTitleCase(t *testing.T) {
	tests := map[string]string{
		"big data solutions": "BIG Data Solutions",
		"EPAM SYSTEMS":       "Epam Systems",
		"łódzka firma it":    "Łódzka Firma IT",
		"  ":                 "",
	}
	for in, want := range tests {
		if got := TitleCase(in); got != want {
			t.Errorf("TitleCase(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFold(t *testing.T) {
	tests := map[string]string{
		"Łódź":             "Lodz",
		"Kraków":           "Krakow",
		"Gdańsk":           "Gdansk",
		"Bielsko-Biała":    "Bielsko-Biala",
		"Zielona Góra":     "Zielona Gora",
		"Jastrzębie-Zdrój": "Jastrzebie-Zdroj",
		"Warszawa":         "Warszawa",
	}
	for in, want := range tests {
		if got := Fold(in); got != want {
			t.Errorf("Fold(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestHasPolishDiacritics(t *testing.T) {
	if !HasPolishDiacritics("Inżynier oprogramowania") {
		t.Error("expected diacritics in Polish text")
	}
	if !HasPolishDiacritics("ŁÓDŹ") {
		t.Error("expected upper-case diacritics to count")
	}
	if HasPolishDiacritics("Software Engineer") {
		t.Error("unexpected diacritics in English text")
	}
}
