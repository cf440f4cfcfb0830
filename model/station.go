package model

import (
	"github.com/transit-tools/subway-validator/colors"
	"github.com/transit-tools/subway-validator/geo"
	"github.com/transit-tools/subway-validator/osm"
)

// allModes is the full set of transport modes the registry and tag
// scanning recognize, mirroring subways/consts.py's ALL_MODES.
var allModes = []string{
	"subway", "light_rail", "monorail", "train",
	"tram", "bus", "trolleybus", "aerialway", "ferry",
}

// constructionKeys mark an element as still under construction, per
// subways/consts.py's CONSTRUCTION_KEYS.
var constructionKeys = []string{"construction", "proposed", "construction:railway", "proposed:railway"}

func hasConstructionTag(el *osm.Element) bool {
	for _, k := range constructionKeys {
		if _, ok := osm.Tag(el, k); ok {
			return true
		}
	}
	return false
}

// Station is a single physical station, derived from one OSM element.
type Station struct {
	ID      string
	Element *osm.Element
	Modes   map[string]bool
	Name    string
	IntName string
	Colour  string
	Center  geo.Point
}

// stationModes derives an element's own mode set from per-mode "=yes"
// tags plus the station=<mode> tag, independent of any target filter
// set (subways/structure/station.py::get_modes).
func stationModes(el *osm.Element) map[string]bool {
	modes := map[string]bool{}
	for _, m := range allModes {
		if osm.TagIs(el, m, "yes") {
			modes[m] = true
		}
	}
	if mode, ok := osm.Tag(el, "station"); ok && mode != "" {
		modes[mode] = true
	}
	return modes
}

// IsStation reports whether el should be treated as a station for the
// given target mode set (subways/structure/station.py::is_station).
func IsStation(el *osm.Element, targetModes map[string]bool) bool {
	if targetModes["tram"] && osm.TagIs(el, "railway", "tram_stop") {
		return true
	}
	railway, _ := osm.Tag(el, "railway")
	if railway != "station" && railway != "halt" {
		return false
	}
	if hasConstructionTag(el) {
		return false
	}
	if !targetModes["train"] {
		own := stationModes(el)
		if !intersects(own, targetModes) {
			return false
		}
	}
	return true
}

func intersects(a, b map[string]bool) bool {
	for k := range a {
		if b[k] {
			return true
		}
	}
	return false
}

// NewStation builds a Station from el, recording a warning against city
// if el's colour tag fails to normalize. It fails if el has no
// resolvable center (spec.md §4.3: "construction requires a resolvable
// center").
func NewStation(el *osm.Element, city *City) (*Station, error) {
	name, ok := osm.Tag(el, "name")
	if !ok {
		name = "?"
	}
	intName, ok := osm.Tag(el, "int_name")
	if !ok {
		intName = el.Tags["name:en"]
	}

	colour, err := colors.Normalize(el.Tags["colour"])
	if err != nil {
		colour = ""
		city.Warn(err.Error(), el)
	}

	if el.Center == nil {
		return nil, errMissingCenter(el)
	}

	return &Station{
		ID:      osm.ID(el),
		Element: el,
		Modes:   stationModes(el),
		Name:    name,
		IntName: intName,
		Colour:  colour,
		Center:  *el.Center,
	}, nil
}

type missingCenterError struct {
	elementID string
}

func (e *missingCenterError) Error() string {
	return "could not find center of " + e.elementID
}

func errMissingCenter(el *osm.Element) error {
	return &missingCenterError{elementID: osm.ID(el)}
}
