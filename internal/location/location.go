// Package location maps free-text job locations onto gazetteer cities and
// guesses the work mode from percentage markers.
package location

import (
	"strings"
)

// Work modes inferred from a location string.
const (
	WorkFullTime = "Full Time"
	WorkHybrid   = "Hybrid"
	WorkRemote   = "Remote"
)

// Sentinel values used when no gazetteer city matches.
const (
	RemoteCity   = "Remote"
	UnknownCoord = "None"
)

var hybridMarkers = []string{"70%", "50%", "40%", "30%", "20%"}

// Place is one gazetteer row.
type Place struct {
	City          string // local spelling, canonical
	CityASCII     string
	Region        string
	RegionEnglish string
	Lat           string
	Long          string
}

// Location is the resolved form of one location string. The four slices
// are parallel.
type Location struct {
	Cities   []string
	Regions  []string
	Lats     []string
	Longs    []string
	WorkType string
}

func (l Location) City() string   { return strings.Join(l.Cities, ";") }
func (l Location) Region() string { return strings.Join(l.Regions, ";") }
func (l Location) Lat() string    { return strings.Join(l.Lats, ";") }
func (l Location) Long() string   { return strings.Join(l.Longs, ";") }

// Resolver matches against a gazetteer held in priority order.
type Resolver struct {
	places  []Place
	byCity  map[string]Place
	local   []string // lower-cased local names
	ascii   []string // lower-cased ASCII names
	aliases map[string]string
}

// NewResolver builds a resolver. Earlier places win when several match.
func NewResolver(places []Place) *Resolver {
	r := &Resolver{
		places:  places,
		byCity:  make(map[string]Place, len(places)),
		aliases: map[string]string{"Warsaw": "Warszawa"},
	}
	for _, p := range places {
		if _, ok := r.byCity[p.City]; !ok {
			r.byCity[p.City] = p
		}
		r.local = append(r.local, strings.ToLower(p.City))
		r.ascii = append(r.ascii, strings.ToLower(p.CityASCII))
	}
	return r
}

// Resolve parses a comma-separated location string. Substring matching is
// deliberately loose: a city name embedded in a longer word still counts.
func (r *Resolver) Resolve(text string) Location {
	loc := Location{WorkType: WorkFullTime}

	for _, frag := range strings.Split(text, ",") {
		lower := strings.ToLower(strings.TrimSpace(frag))

		if city, ok := r.match(lower); ok {
			if alias, ok := r.aliases[city]; ok {
				city = alias
			}
			loc.Cities = append(loc.Cities, city)
			if p, ok := r.byCity[city]; ok {
				loc.Regions = append(loc.Regions, p.Region)
				loc.Lats = append(loc.Lats, p.Lat)
				loc.Longs = append(loc.Longs, p.Long)
			}
		}

		if strings.Contains(lower, "100%") {
			loc.WorkType = WorkRemote
		} else if containsAny(lower, hybridMarkers) {
			loc.WorkType = WorkHybrid
		}
	}

	if len(loc.Cities) == 0 {
		loc.Cities = []string{RemoteCity}
		loc.Regions = []string{RemoteCity}
		loc.Lats = []string{UnknownCoord}
		loc.Longs = []string{UnknownCoord}
	}
	return loc
}

// match returns the canonical local name for the first gazetteer city found
// in frag, trying local spellings before ASCII ones.
func (r *Resolver) match(frag string) (string, bool) {
	if frag == "" {
		return "", false
	}
	for i, name := range r.local {
		if name != "" && strings.Contains(frag, name) {
			return r.places[i].City, true
		}
	}
	for i, name := range r.ascii {
		if name != "" && strings.Contains(frag, name) {
			return r.places[i].City, true
		}
	}
	if strings.Contains(frag, "warsaw") {
		return "Warsaw", true
	}
	return "", false
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
