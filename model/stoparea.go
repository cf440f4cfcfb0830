package model

import (
	"github.com/transit-tools/subway-validator/colors"
	"github.com/transit-tools/subway-validator/geo"
	"github.com/transit-tools/subway-validator/osm"
)

// railwayTypes are the railway= values that mark a way as rail track,
// mirroring subways/consts.py's RAILWAY_TYPES.
var railwayTypes = map[string]bool{
	"rail": true, "light_rail": true, "subway": true, "narrow_gauge": true,
	"funicular": true, "monorail": true, "tram": true,
}

// maxDistanceToEntrances is the naked-station entrance search radius,
// in meters (subways/structure/stop_area.py).
const maxDistanceToEntrances = 300.0

// IsStop reports whether el is a stop position.
func IsStop(el *osm.Element) bool {
	return osm.TagIs(el, "railway", "stop") || osm.TagIs(el, "public_transport", "stop_position")
}

// IsPlatform reports whether el is a platform.
func IsPlatform(el *osm.Element) bool {
	railway, _ := osm.Tag(el, "railway")
	return railway == "platform" || railway == "platform_edge" || osm.TagIs(el, "public_transport", "platform")
}

// IsTrack reports whether el is a way carrying rail track.
func IsTrack(el *osm.Element) bool {
	if el.Type != osm.ElementWay {
		return false
	}
	railway, ok := osm.Tag(el, "railway")
	return ok && railwayTypes[railway]
}

// StopArea is a logical station grouping: a Station plus its platforms,
// stop positions, and entrances/exits.
type StopArea struct {
	ID      string
	Element *osm.Element
	Station *Station

	Stops     map[string]bool
	Platforms map[string]bool
	Exits     map[string]bool
	Entrances map[string]bool

	Center  geo.Point
	Centers map[string]geo.Point

	// Transfer is the id of an enclosing stop_area_group, if any.
	Transfer string

	Modes   map[string]bool
	Name    string
	IntName string
	Colour  string
}

// NewStopArea builds a StopArea from a Station, optionally backed by a
// public_transport=stop_area relation. stopAreaEl is nil for a "naked"
// station, in which case nearby entrances are attached by proximity.
func NewStopArea(station *Station, city *City, stopAreaEl *osm.Element) *StopArea {
	element := stopAreaEl
	if element == nil {
		element = station.Element
	}

	sa := &StopArea{
		ID:        osm.ID(element),
		Element:   element,
		Station:   station,
		Stops:     map[string]bool{},
		Platforms: map[string]bool{},
		Exits:     map[string]bool{},
		Entrances: map[string]bool{},
		Centers:   map[string]geo.Point{},
		Modes:     station.Modes,
		Name:      station.Name,
		IntName:   station.IntName,
		Colour:    station.Colour,
	}

	if stopAreaEl != nil {
		if name, ok := osm.Tag(stopAreaEl, "name"); ok {
			sa.Name = name
		}
		if intName, ok := osm.Tag(stopAreaEl, "int_name"); ok {
			sa.IntName = intName
		} else if en, ok := osm.Tag(stopAreaEl, "name:en"); ok {
			sa.IntName = en
		}
		if raw, ok := osm.Tag(stopAreaEl, "colour"); ok {
			if c, err := colors.Normalize(raw); err != nil {
				city.Warn(err.Error(), stopAreaEl)
			} else if c != "" {
				sa.Colour = c
			}
		}
		sa.processMembers(station, city, stopAreaEl)
	} else {
		sa.addNearbyEntrances(station, city)
	}

	if len(sa.Exits) > 0 && len(sa.Entrances) == 0 {
		city.Warn("Only exits for a station, no entrances", element)
	}
	if len(sa.Entrances) > 0 && len(sa.Exits) == 0 {
		city.Warn("No exits for a station", element)
	}

	for id := range sa.allElements() {
		if el, ok := city.Elements[id]; ok {
			if el.Center != nil {
				sa.Centers[id] = *el.Center
			}
		}
	}

	if len(sa.Stops)+len(sa.Platforms) == 0 {
		sa.Center = station.Center
	} else {
		var sumLon, sumLat float64
		n := 0
		for id := range sa.Stops {
			if c, ok := sa.Centers[id]; ok {
				sumLon += c.Lon
				sumLat += c.Lat
				n++
			}
		}
		for id := range sa.Platforms {
			if c, ok := sa.Centers[id]; ok {
				sumLon += c.Lon
				sumLat += c.Lat
				n++
			}
		}
		if n > 0 {
			sa.Center = geo.Point{Lon: sumLon / float64(n), Lat: sumLat / float64(n)}
		} else {
			sa.Center = station.Center
		}
	}

	return sa
}

func (sa *StopArea) processMembers(station *Station, city *City, stopAreaEl *osm.Element) {
	tracksDetected := false
	for _, m := range stopAreaEl.Members {
		k := osm.MemberID(m)
		mEl, ok := city.Elements[k]
		if !ok || mEl.Tags == nil {
			continue
		}
		switch {
		case IsStation(mEl, city.Modes):
			if k != station.ID {
				city.CriticalError("Stop area has multiple stations", stopAreaEl)
			}
		case IsStop(mEl):
			sa.Stops[k] = true
		case IsPlatform(mEl):
			sa.Platforms[k] = true
		default:
			entranceType, _ := osm.Tag(mEl, "railway")
			if entranceType == "subway_entrance" || entranceType == "train_station_entrance" {
				if mEl.Type != osm.ElementNode {
					city.Warn(entranceType+" is not a node", mEl)
				}
				entranceTag, _ := osm.Tag(mEl, "entrance")
				if entranceTag != "exit" && m.Role != "exit_only" {
					sa.Entrances[k] = true
				}
				if entranceTag != "entrance" && m.Role != "entry_only" {
					sa.Exits[k] = true
				}
			} else if IsTrack(mEl) {
				tracksDetected = true
			}
		}
	}
	if tracksDetected {
		city.Warn("Tracks in a stop_area relation", stopAreaEl)
	}
}

func (sa *StopArea) addNearbyEntrances(station *Station, city *City) {
	for _, el := range city.elementsInOrder() {
		entranceType, _ := osm.Tag(el, "railway")
		if entranceType != "subway_entrance" && entranceType != "train_station_entrance" {
			continue
		}
		id := osm.ID(el)
		if len(city.stopAreaMembership[id]) > 0 {
			continue // already a member of some stop_area relation
		}
		if el.Center == nil {
			continue
		}
		if geo.Distance(station.Center, *el.Center) > maxDistanceToEntrances {
			continue
		}
		if el.Type != osm.ElementNode {
			city.Warn(entranceType+" is not a node", el)
		}
		etag := el.Tags["entrance"]
		if etag != "exit" {
			sa.Entrances[id] = true
		}
		if etag != "entrance" {
			sa.Exits[id] = true
		}
	}
}

func (sa *StopArea) allElements() map[string]bool {
	result := map[string]bool{sa.ID: true, sa.Station.ID: true}
	for id := range sa.Entrances {
		result[id] = true
	}
	for id := range sa.Exits {
		result[id] = true
	}
	for id := range sa.Stops {
		result[id] = true
	}
	for id := range sa.Platforms {
		result[id] = true
	}
	return result
}

