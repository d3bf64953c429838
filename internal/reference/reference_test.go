package reference

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/amishk599/pljobs/internal/model"
)

func TestLoadEmbeddedDefaults(t *testing.T) {
	data, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if data.Places[0].City != "Warszawa" || data.Places[0].CityASCII != "Warsaw" {
		t.Errorf("first place = %+v, want Warszawa/Warsaw", data.Places[0])
	}
	if data.Places[0].Lat != "52.23" {
		t.Errorf("lat = %q, want canonical 52.23", data.Places[0].Lat)
	}
	if len(data.ProfessionTitles) < 250 {
		t.Errorf("profession titles = %d, want the full catalog", len(data.ProfessionTitles))
	}
	if got := data.Tagger.Contracts.Standardize("umowa o pracę"); got != "Contract of Employment" {
		t.Errorf("Standardize(umowa o pracę) = %q", got)
	}
	if got := data.Tagger.Levels.Level("Mid/Regular"); got != "middle" {
		t.Errorf("Level(Mid/Regular) = %q, want middle", got)
	}
	if data.PolishMonths["października"] != "October" {
		t.Errorf("polish month table incomplete: %v", data.PolishMonths)
	}
	if data.Translation["programista"] != "Developer" {
		t.Errorf("translation[programista] = %q", data.Translation["programista"])
	}

	cols := data.Tagger.Benefits.Columns()
	if strings.Join(cols, ",") != strings.Join(model.BenefitColumns, ",") {
		t.Errorf("benefit columns = %v", cols)
	}
}

func TestLoadOverrideDirectory(t *testing.T) {
	dir := t.TempDir()
	gaz := "city,city_ascii,lat,lng,admin_name,admin_name_english\nŁódź,,51.7769,19.4547,Łódzkie,Lodz\n"
	if err := os.WriteFile(filepath.Join(dir, GazetteerFile), []byte(gaz), 0o644); err != nil {
		t.Fatal(err)
	}

	data, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(data.Places) != 1 {
		t.Fatalf("places = %d, want 1 from override", len(data.Places))
	}
	if data.Places[0].CityASCII != "Lodz" {
		t.Errorf("CityASCII = %q, want folded Lodz", data.Places[0].CityASCII)
	}
	if len(data.ProfessionTitles) == 0 {
		t.Error("taxonomy should fall back to the embedded default")
	}
}

func TestParseRejectsMalformedData(t *testing.T) {
	goodTax, err := defaults.ReadFile("data/" + TaxonomyFile)
	if err != nil {
		t.Fatal(err)
	}
	goodGaz, err := defaults.ReadFile("data/" + GazetteerFile)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		taxonomy string
		gaz      string
		wantErr  string
	}{
		{"yaml syntax", "contracts: [", string(goodGaz), "parse taxonomy.yaml"},
		{"missing sections", "profession_titles: [Data Engineer]", string(goodGaz), "contracts"},
		{"unknown level", strings.Replace(string(goodTax), `"Junior": junior`, `"Junior": rookie`, 1), string(goodGaz), "unknown level"},
		{"gazetteer header", string(goodTax), "name,lat\nX,1\n", "missing column"},
		{"gazetteer coordinate", string(goodTax), "city,city_ascii,lat,lng,admin_name,admin_name_english\nX,X,north,1,R,R\n", "bad coordinate"},
		{"gazetteer empty", string(goodTax), "city,city_ascii,lat,lng,admin_name,admin_name_english\n", "no cities"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.taxonomy), []byte(tt.gaz))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}
