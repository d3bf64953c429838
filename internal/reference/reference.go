// Package reference loads the static gazetteer and taxonomies the pipeline
// runs on. Defaults are embedded; a directory may override either file.
package reference

import (
	"bytes"
	"embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/amishk599/pljobs/internal/location"
	"github.com/amishk599/pljobs/internal/model"
	"github.com/amishk599/pljobs/internal/tagging"
	"github.com/amishk599/pljobs/internal/textnorm"
)

const (
	TaxonomyFile  = "taxonomy.yaml"
	GazetteerFile = "gazetteer.csv"
)

//go:embed data/taxonomy.yaml data/gazetteer.csv
var defaults embed.FS

// Data is the immutable reference set shared by every stage of a run.
type Data struct {
	Places           []location.Place
	Tagger           tagging.Tagger
	ExperienceTerms  []string
	ProfessionTitles []string
	PolishMonths     map[string]string
	Translation      map[string]string
	TechAllow        []string
	TechStop         []string
}

type rawTaxonomy struct {
	Contracts struct {
		Synonyms   map[string]string          `yaml:"synonyms"`
		Categories []tagging.ContractCategory `yaml:"categories"`
	} `yaml:"contracts"`
	Benefits         []tagging.Category `yaml:"benefits"`
	Languages        []tagging.Category `yaml:"languages"`
	ExperienceLevels map[string]string  `yaml:"experience_levels"`
	WorkTypes        []tagging.Category `yaml:"work_types"`
	ExperienceTerms  []string           `yaml:"experience_terms"`
	ProfessionTitles []string           `yaml:"profession_titles"`
	PolishMonths     map[string]string  `yaml:"polish_months"`
	Translation      map[string]string  `yaml:"translation"`
	Technologies     struct {
		Allow []string `yaml:"allow"`
		Stop  []string `yaml:"stop"`
	} `yaml:"technologies"`
}

// Load reads the reference data. Files present in dir replace the embedded
// defaults; an empty dir means defaults only.
func Load(dir string) (*Data, error) {
	taxBytes, err := readFile(dir, TaxonomyFile)
	if err != nil {
		return nil, err
	}
	gazBytes, err := readFile(dir, GazetteerFile)
	if err != nil {
		return nil, err
	}
	return Parse(taxBytes, gazBytes)
}

// Parse builds Data from raw file contents and validates it.
func Parse(taxonomy, gazetteer []byte) (*Data, error) {
	var raw rawTaxonomy
	if err := yaml.Unmarshal(taxonomy, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", TaxonomyFile, err)
	}
	if err := validateTaxonomy(&raw); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", TaxonomyFile, err)
	}

	places, err := parseGazetteer(bytes.NewReader(gazetteer))
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", GazetteerFile, err)
	}

	return &Data{
		Places: places,
		Tagger: tagging.Tagger{
			Contracts: tagging.Contracts{
				Synonyms:   raw.Contracts.Synonyms,
				Categories: raw.Contracts.Categories,
			},
			Benefits:  tagging.NewTaxonomy(raw.Benefits),
			Languages: tagging.NewTaxonomy(raw.Languages),
			Levels: tagging.Levels{
				Synonyms: raw.ExperienceLevels,
				Columns:  model.LevelColumns,
			},
			WorkTypes: tagging.NewTaxonomy(raw.WorkTypes),
		},
		ExperienceTerms:  raw.ExperienceTerms,
		ProfessionTitles: raw.ProfessionTitles,
		PolishMonths:     raw.PolishMonths,
		Translation:      raw.Translation,
		TechAllow:        raw.Technologies.Allow,
		TechStop:         raw.Technologies.Stop,
	}, nil
}

func readFile(dir, name string) ([]byte, error) {
	if dir != "" {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
	}
	data, err := defaults.ReadFile("data/" + name)
	if err != nil {
		return nil, fmt.Errorf("read embedded %s: %w", name, err)
	}
	return data, nil
}

func validateTaxonomy(raw *rawTaxonomy) error {
	var contractCols []string
	for _, c := range raw.Contracts.Categories {
		if c.Name == "" {
			return fmt.Errorf("contracts: category for column %q has no name", c.Column)
		}
		contractCols = append(contractCols, c.Column)
	}
	if err := sameColumns("contracts", contractCols, model.ContractColumns); err != nil {
		return err
	}
	if err := checkCategories("benefits", raw.Benefits, model.BenefitColumns); err != nil {
		return err
	}
	if err := checkCategories("languages", raw.Languages, model.LanguageColumns); err != nil {
		return err
	}
	if err := checkCategories("work_types", raw.WorkTypes, model.WorkTypeColumns); err != nil {
		return err
	}

	if len(raw.ExperienceLevels) == 0 {
		return fmt.Errorf("experience_levels is empty")
	}
	for text, lvl := range raw.ExperienceLevels {
		if !contains(model.LevelColumns, lvl) {
			return fmt.Errorf("experience_levels: %q maps to unknown level %q", text, lvl)
		}
	}

	if len(raw.ProfessionTitles) == 0 {
		return fmt.Errorf("profession_titles is empty")
	}
	if len(raw.PolishMonths) < 12 {
		return fmt.Errorf("polish_months has %d entries, want at least 12", len(raw.PolishMonths))
	}
	if len(raw.Technologies.Allow) == 0 || len(raw.Technologies.Stop) == 0 {
		return fmt.Errorf("technologies: allow and stop lists are required")
	}
	return nil
}

func checkCategories(section string, cats []tagging.Category, want []string) error {
	cols := make([]string, 0, len(cats))
	for _, c := range cats {
		if len(c.Keywords) == 0 {
			return fmt.Errorf("%s: column %q has no keywords", section, c.Column)
		}
		cols = append(cols, c.Column)
	}
	return sameColumns(section, cols, want)
}

// sameColumns requires got to list exactly the columns in want, in order.
func sameColumns(section string, got, want []string) error {
	if len(got) != len(want) {
		return fmt.Errorf("%s: got %d columns, want %d (%s)", section, len(got), len(want), strings.Join(want, ", "))
	}
	for i := range want {
		if got[i] != want[i] {
			return fmt.Errorf("%s: column %d is %q, want %q", section, i, got[i], want[i])
		}
	}
	return nil
}

var gazetteerHeader = []string{"city", "city_ascii", "lat", "lng", "admin_name", "admin_name_english"}

// parseGazetteer reads the city table, which must be ordered by priority
// (largest cities first).
func parseGazetteer(r io.Reader) ([]location.Place, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}
	for _, col := range gazetteerHeader {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("missing column %q", col)
		}
	}

	var places []location.Place
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		field := func(col string) string {
			if i := idx[col]; i < len(rec) {
				return strings.TrimSpace(rec[i])
			}
			return ""
		}

		p := location.Place{
			City:          field("city"),
			CityASCII:     field("city_ascii"),
			Region:        field("admin_name"),
			RegionEnglish: field("admin_name_english"),
			Lat:           field("lat"),
			Long:          field("lng"),
		}
		if p.City == "" {
			return nil, fmt.Errorf("line %d: empty city", line)
		}
		if p.CityASCII == "" {
			p.CityASCII = textnorm.Fold(p.City)
		}
		if p.Lat, err = coordinate(p.Lat); err != nil {
			return nil, fmt.Errorf("line %d: lat: %w", line, err)
		}
		if p.Long, err = coordinate(p.Long); err != nil {
			return nil, fmt.Errorf("line %d: lng: %w", line, err)
		}
		places = append(places, p)
	}

	if len(places) == 0 {
		return nil, fmt.Errorf("no cities")
	}
	return places, nil
}

// coordinate canonicalizes a decimal degree string ("52.2300" -> "52.23").
func coordinate(s string) (string, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return "", fmt.Errorf("bad coordinate %q", s)
	}
	return strconv.FormatFloat(v, 'f', -1, 64), nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
