// Package model builds the typed transit domain (Station, StopArea,
// Route, RouteMaster, Transfer, City) out of raw OSM elements and
// validates it against the structural and geometric invariants of the
// reconstruction pipeline.
package model

import (
	"fmt"
	"sort"
	"strings"

	"github.com/transit-tools/subway-validator/geo"
	"github.com/transit-tools/subway-validator/osm"
	"github.com/transit-tools/subway-validator/recovery"
	"github.com/transit-tools/subway-validator/types"
)

// BBox is a bounding box in (minLon, minLat, maxLon, maxLat) order.
type BBox struct {
	MinLon, MinLat, MaxLon, MaxLat float64
}

// Contains reports whether p falls inside the bounding box.
func (b BBox) Contains(p geo.Point) bool {
	return p.Lon >= b.MinLon && p.Lon <= b.MaxLon && p.Lat >= b.MinLat && p.Lat <= b.MaxLat
}

// CityDescriptor is one row of the city registry (spec.md §6).
type CityDescriptor struct {
	ID              string `validate:"required"`
	Name            string `validate:"required"`
	Country         string `validate:"required"`
	Continent       string `validate:"required"`
	NumStations     int    `validate:"gte=0"`
	NumLines        int    `validate:"gte=0"`
	NumLightLines   int    `validate:"gte=0"`
	NumInterchanges int    `validate:"gte=0"`
	NumTramLines    int    `validate:"gte=0"`
	BBox            BBox
	Modes           []string
	Networks        []string
}

// City is the top-level aggregate: a descriptor plus the OSM elements
// that fell into its bbox, and the domain objects reconstructed from
// them.
type City struct {
	Descriptor CityDescriptor

	// Elements holds every OSM element assigned to this city, keyed by
	// osm.ID(el).
	Elements map[string]*osm.Element

	// ElementStopAreas indexes every element id that belongs to a stop
	// area (its station, stops, platforms, entrances, exits) back to
	// the owning StopArea(s). A station element id mapping to more than
	// one StopArea means the same physical station backs ambiguous
	// stop areas, which route construction reports as an error rather
	// than guessing which one a route member means.
	ElementStopAreas map[string][]*StopArea

	// StationIDs is the set of element ids that passed IsStation.
	StationIDs map[string]bool

	StopAreas    map[string]*StopArea
	RouteMasters map[string]*RouteMaster
	Transfers    []Transfer

	// Masters maps a route relation id to the route_master relation
	// that contains it, if any.
	Masters map[string]*osm.Element

	// stopAreaMembership maps an element id to every stop_area relation
	// it belongs to, built incrementally as elements are added.
	stopAreaMembership map[string][]*osm.Element

	// Overground marks a city reconstructed under the overground
	// (tram/bus/trolleybus) line set rather than the rapid-transit one,
	// switching Validate to validateOvergroundLines
	// (subways/structure/city.py::City.overground).
	Overground bool

	Modes    map[string]bool
	Networks map[string]bool

	// Recovery resolves a prior run's itineraries for routes whose stop
	// order needs repair. Defaults to recovery.NullStore.
	Recovery recovery.Lookup

	// stopsAndPlatforms tracks every stop/platform element id already
	// claimed by a stop area, to notice when one is claimed twice.
	stopsAndPlatforms map[string]bool

	Errors   []types.ValidationIssue
	Warnings []types.ValidationIssue
	Notices  []types.ValidationIssue

	FoundStations     int
	FoundInterchanges int
	UnusedEntrances   int

	// FoundTramLines, FoundBusLines, FoundTrolleybusLines, and
	// FoundOtherLines are tallied by validateOvergroundLines; only
	// FoundTramLines is graded against the registry.
	FoundTramLines       int
	FoundBusLines        int
	FoundTrolleybusLines int
	FoundOtherLines      int

	aborted bool
}

// NewCity creates an empty City from a descriptor.
func NewCity(d CityDescriptor) *City {
	modes := map[string]bool{}
	if len(d.Modes) == 0 {
		modes["subway"] = true
		modes["light_rail"] = true
	} else {
		for _, m := range d.Modes {
			modes[m] = true
		}
	}
	networks := map[string]bool{}
	for _, n := range d.Networks {
		networks[n] = true
	}

	return &City{
		Descriptor:         d,
		Elements:           map[string]*osm.Element{},
		ElementStopAreas:   map[string][]*StopArea{},
		StationIDs:         map[string]bool{},
		StopAreas:          map[string]*StopArea{},
		RouteMasters:       map[string]*RouteMaster{},
		Masters:            map[string]*osm.Element{},
		stopAreaMembership: map[string][]*osm.Element{},
		Modes:              modes,
		Networks:           networks,
		Recovery:           recovery.NullStore{},
		stopsAndPlatforms:  map[string]bool{},
	}
}

// Contains reports whether el's center lies inside the city's bbox.
func (c *City) Contains(el *osm.Element) bool {
	if el.Center == nil {
		return false
	}
	return c.Descriptor.BBox.Contains(*el.Center)
}

// Add inserts el into the city's element map, and if it is a
// route_master or stop_area relation, indexes its members for later
// lookup by ExtractRoutes (subways/structure/city.py::City.add).
func (c *City) Add(el *osm.Element) {
	if el.Type == osm.ElementRelation && el.Members == nil {
		return
	}
	c.Elements[osm.ID(el)] = el
	if el.Type != osm.ElementRelation || el.Tags == nil {
		return
	}

	switch {
	case osm.TagIs(el, "type", "route_master"):
		for _, m := range el.Members {
			if m.Type != osm.ElementRelation {
				continue
			}
			k := osm.MemberID(m)
			if _, exists := c.Masters[k]; exists {
				c.Error("Route in two route_masters", nil)
			}
			c.Masters[k] = el
		}
	case osm.TagIs(el, "public_transport", "stop_area"):
		if !osm.TagIs(el, "type", "public_transport") {
			c.Warn(fmt.Sprintf("stop_area relation with type=%s, needed type=public_transport", el.Tags["type"]), el)
			return
		}
		warnedDuplicate := false
		for _, m := range el.Members {
			k := osm.MemberID(m)
			list := c.stopAreaMembership[k]
			dup := false
			for _, existing := range list {
				if existing == el {
					dup = true
					break
				}
			}
			if dup {
				if !warnedDuplicate {
					c.Warn("Duplicate element in a stop area", el)
					warnedDuplicate = true
				}
			} else {
				c.stopAreaMembership[k] = append(list, el)
			}
		}
	}
}

func (c *City) elementRef(el *osm.Element) *types.ElementRef {
	if el == nil {
		return nil
	}
	name := el.Tags["name"]
	if name == "" {
		name = el.Tags["ref"]
	}
	return &types.ElementRef{Type: el.Type.String(), ID: el.ID, Name: name}
}

// Error records an error-severity finding; errors invalidate the city.
func (c *City) Error(message string, el *osm.Element) {
	c.Errors = append(c.Errors, types.ValidationIssue{Severity: types.ERROR, Message: message, Element: c.elementRef(el)})
}

// Warn records a warning-severity finding.
func (c *City) Warn(message string, el *osm.Element) {
	c.Warnings = append(c.Warnings, types.ValidationIssue{Severity: types.WARNING, Message: message, Element: c.elementRef(el)})
}

// Notice records a notice-severity finding.
func (c *City) Notice(message string, el *osm.Element) {
	c.Notices = append(c.Notices, types.ValidationIssue{Severity: types.NOTICE, Message: message, Element: c.elementRef(el)})
}

// CriticalError marks the city as aborted and records one CRITICAL
// finding. The caller carries on with the element it is building (and
// may record further findings for it); ExtractRoutes stops at its next
// Aborted() check (spec.md §7).
func (c *City) CriticalError(message string, el *osm.Element) {
	c.aborted = true
	c.Errors = append(c.Errors, types.ValidationIssue{Severity: types.CRITICAL, Message: message, Element: c.elementRef(el)})
}

// Aborted reports whether extraction for this city was stopped early by
// a CriticalValidationError.
func (c *City) Aborted() bool { return c.aborted }

// IsGood reports whether the city accumulated no error- or
// critical-severity findings.
func (c *City) IsGood() bool {
	return len(c.Errors) == 0
}

// Result projects the city's accumulated findings into a
// types.CityValidationResult for reporting.
func (c *City) Result() types.CityValidationResult {
	return types.CityValidationResult{
		Name:              c.Descriptor.Name,
		Country:           c.Descriptor.Country,
		Continent:         c.Descriptor.Continent,
		IsGood:            c.IsGood(),
		StationsFound:     c.FoundStations,
		StationsExpected:  c.Descriptor.NumStations,
		TransfersFound:    c.FoundInterchanges,
		TransfersExpected: c.Descriptor.NumInterchanges,
		UnusedEntrances:   c.UnusedEntrances,
		NetworksObserved:  c.observedNetworkCount(),
		Errors:            c.Errors,
		Warnings:          c.Warnings,
		Notices:           c.Notices,
	}
}

// sortedKeys returns m's keys, sorted, for deterministic iteration
// (spec.md §5: "stable comparators").
func sortedKeys(m map[string]*osm.Element) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (c *City) elementsInOrder() []*osm.Element {
	keys := sortedKeys(c.Elements)
	els := make([]*osm.Element, 0, len(keys))
	for _, k := range keys {
		els = append(els, c.Elements[k])
	}
	return els
}

// formatElementIDList renders up to the first 20 (sorted) ids of a set,
// for compact notice messages (subways/structure/city.py::format_elid_list).
func formatElementIDList(ids []string) string {
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)
	n := len(sorted)
	if n > 20 {
		sorted = sorted[:20]
	}
	msg := strings.Join(sorted, ", ")
	if n > 20 {
		msg += ", ..."
	}
	return msg
}

// ExtractRoutes reconstructs stations, stop areas, route masters, and
// transfers out of the city's raw elements
// (subways/structure/city.py::City.extract_routes).
func (c *City) ExtractRoutes() {
	processedStopAreas := map[string]bool{}

	for _, el := range c.elementsInOrder() {
		if !IsStation(el, c.Modes) {
			continue
		}
		if el.Type == osm.ElementRelation && !osm.TagIs(el, "type", "multipolygon") {
			c.Warn(fmt.Sprintf("A railway station cannot be a relation of type %s", el.Tags["type"]), el)
			continue
		}
		station, err := NewStation(el, c)
		if err != nil {
			c.Error(err.Error(), el)
			continue
		}
		c.StationIDs[station.ID] = true

		var stopAreas []*StopArea
		if groups, ok := c.stopAreaMembership[station.ID]; ok && len(groups) > 0 {
			for _, group := range groups {
				stopAreas = append(stopAreas, NewStopArea(station, c, group))
			}
		} else {
			stopAreas = append(stopAreas, NewStopArea(station, c, nil))
		}
		if c.Aborted() {
			return
		}

		for _, sa := range stopAreas {
			if processedStopAreas[sa.ID] {
				continue
			}
			processedStopAreas[sa.ID] = true
			c.StopAreas[sa.ID] = sa
			for id := range sa.allElements() {
				c.ElementStopAreas[id] = append(c.ElementStopAreas[id], sa)
			}
			for id := range sa.Stops {
				c.noteStopOrPlatform(id)
			}
			for id := range sa.Platforms {
				c.noteStopOrPlatform(id)
			}
		}
	}

	for _, el := range c.elementsInOrder() {
		if IsRoute(el, c.Modes) {
			if el.Tags["access"] == "no" || el.Tags["access"] == "private" {
				continue
			}
			routeID := osm.ID(el)
			master := c.Masters[routeID]
			if len(c.Networks) > 0 {
				network := osm.Network(el)
				masterNetwork := ""
				if master != nil {
					masterNetwork = osm.Network(master)
				}
				if !c.Networks[network] && !c.Networks[masterNetwork] {
					continue
				}
			}

			route := NewRoute(el, c, master)
			if c.Aborted() {
				return
			}
			if len(route.Stops) == 0 {
				c.Warn("Route has no stops", el)
				continue
			}
			if len(route.Stops) == 1 {
				c.Warn("Route has only one stop", el)
				continue
			}
			route.CalculateDistances()

			masterID := routeID
			if master != nil {
				masterID = osm.ID(master)
			} else if route.Ref != "" {
				masterID = route.Ref
			}
			rm, ok := c.RouteMasters[masterID]
			if !ok {
				rm = NewRouteMaster(master)
				c.RouteMasters[masterID] = rm
			}
			rm.Add(route, c)
		}

		if IsStopAreaGroup(el) {
			c.MakeTransfer(el)
		}
	}

	ownStopAreas := map[string]bool{}
	for _, rm := range c.RouteMasters {
		for _, r := range rm.Routes {
			for _, s := range r.Stops {
				ownStopAreas[s.StopArea.ID] = true
			}
		}
	}
	filtered := c.Transfers[:0]
	for _, t := range c.Transfers {
		var kept []*StopArea
		for _, sa := range t.StopAreas {
			if ownStopAreas[sa.ID] {
				kept = append(kept, sa)
			}
		}
		if len(kept) > 1 {
			filtered = append(filtered, Transfer{ID: t.ID, StopAreas: kept})
		}
	}
	c.Transfers = filtered
}

func (c *City) noteStopOrPlatform(id string) {
	if c.stopsAndPlatforms[id] {
		c.Notice(fmt.Sprintf("A stop or a platform %s belongs to multiple stop areas, might be correct", id), nil)
	} else {
		c.stopsAndPlatforms[id] = true
	}
}

// countUnusedEntrances notices every subway/train-station entrance
// that is not wired into any stop_area relation or adjacent station
// (subways/structure/city.py::City.count_unused_entrances).
func (c *City) countUnusedEntrances() int {
	inStopArea := map[string]bool{}
	for _, el := range c.Elements {
		if el.Type == osm.ElementRelation && osm.TagIs(el, "public_transport", "stop_area") && el.Members != nil {
			for _, m := range el.Members {
				inStopArea[osm.MemberID(m)] = true
			}
		}
	}

	var unused, notInStopArea []string
	for _, el := range c.elementsInOrder() {
		if el.Type != osm.ElementNode || el.Tags == nil {
			continue
		}
		railway := el.Tags["railway"]
		if railway != "subway_entrance" && railway != "train_station_entrance" {
			continue
		}
		id := osm.ID(el)
		if !inStopArea[id] {
			notInStopArea = append(notInStopArea, id)
			if len(c.ElementStopAreas[id]) == 0 {
				unused = append(unused, id)
			}
		}
	}
	if len(unused) > 0 {
		c.Notice(fmt.Sprintf("%d subway entrances are not connected to a station: %s", len(unused), formatElementIDList(unused)), nil)
	}
	if len(notInStopArea) > 0 {
		c.Notice(fmt.Sprintf("%d subway entrances are not in stop_area relations: %s", len(notInStopArea), formatElementIDList(notInStopArea)), nil)
	}
	return len(unused)
}

// Validate tallies the stations and interchanges reconstructed from
// routes against the registry's expected counts, within the
// configured tolerances (subways/structure/city.py::City.validate).
func (c *City) Validate(allowedStationsMismatch, allowedTransfersMismatch float64) {
	unusedStations := map[string]bool{}
	for id := range c.StationIDs {
		unusedStations[id] = true
	}

	c.FoundStations = 0
	for _, rm := range c.RouteMasters {
		if !c.Overground {
			rm.CheckReturnRoutes(c)
		}
		routeStations := map[string]bool{}
		for _, r := range rm.Routes {
			for _, s := range r.Stops {
				sa := s.StopArea
				id := sa.Transfer
				if id == "" {
					id = sa.ID
				}
				routeStations[id] = true
				delete(unusedStations, sa.Station.ID)
			}
		}
		c.FoundStations += len(routeStations)
	}

	if len(unusedStations) > 0 {
		ids := make([]string, 0, len(unusedStations))
		for id := range unusedStations {
			ids = append(ids, id)
		}
		c.Notice(fmt.Sprintf("%d unused stations: %s", len(unusedStations), formatElementIDList(ids)), nil)
	}

	c.UnusedEntrances = c.countUnusedEntrances()
	c.FoundInterchanges = len(c.Transfers)

	if c.Overground {
		c.validateOvergroundLines()
		return
	}

	foundLightLines := 0
	for _, rm := range c.RouteMasters {
		if rm.Mode != "subway" {
			foundLightLines++
		}
	}
	foundLines := len(c.RouteMasters) - foundLightLines
	if foundLines != c.Descriptor.NumLines {
		c.Error(fmt.Sprintf("Found %d subway lines, expected %d", foundLines, c.Descriptor.NumLines), nil)
	}
	if foundLightLines != c.Descriptor.NumLightLines {
		c.Error(fmt.Sprintf("Found %d light rail lines, expected %d", foundLightLines, c.Descriptor.NumLightLines), nil)
	}

	if c.FoundStations != c.Descriptor.NumStations {
		msg := fmt.Sprintf("Found %d stations in routes, expected %d", c.FoundStations, c.Descriptor.NumStations)
		withinTolerance := c.Descriptor.NumStations > 0 &&
			ratioWithin(c.Descriptor.NumStations-c.FoundStations, c.Descriptor.NumStations, allowedStationsMismatch)
		if c.Descriptor.NumStations > 0 && !withinTolerance {
			c.Error(msg, nil)
		} else {
			c.Warn(msg, nil)
		}
	}

	if c.FoundInterchanges != c.Descriptor.NumInterchanges {
		msg := fmt.Sprintf("Found %d interchanges, expected %d", c.FoundInterchanges, c.Descriptor.NumInterchanges)
		withinTolerance := c.Descriptor.NumInterchanges != 0 &&
			ratioWithin(c.Descriptor.NumInterchanges-c.FoundInterchanges, c.Descriptor.NumInterchanges, allowedTransfersMismatch)
		if c.Descriptor.NumInterchanges != 0 && !withinTolerance {
			c.Error(msg, nil)
		} else {
			c.Warn(msg, nil)
		}
	}
}

// validateOvergroundLines tallies tram/bus/trolleybus/other route
// masters for a city reconstructed under the overground mode set,
// in place of the rapid-transit station/line/interchange tolerance
// checks (subways/structure/city.py::City.validate_overground_lines).
// Only the tram count is graded against the registry: bus, trolleybus,
// and other counts are tallied for the report but not compared, matching
// the source.
func (c *City) validateOvergroundLines() {
	for _, rm := range c.RouteMasters {
		switch rm.Mode {
		case "tram":
			c.FoundTramLines++
		case "bus":
			c.FoundBusLines++
		case "trolleybus":
			c.FoundTrolleybusLines++
		default:
			c.FoundOtherLines++
		}
	}

	if c.FoundTramLines != c.Descriptor.NumTramLines {
		msg := fmt.Sprintf("Found %d tram lines, expected %d", c.FoundTramLines, c.Descriptor.NumTramLines)
		if c.FoundTramLines == 0 {
			c.Error(msg, nil)
		} else {
			c.Notice(msg, nil)
		}
	}
}

// observedNetworkCount returns the number of distinct network tags seen
// across the city's reconstructed route masters.
func (c *City) observedNetworkCount() int {
	seen := map[string]bool{}
	for _, rm := range c.RouteMasters {
		seen[rm.Network] = true
	}
	return len(seen)
}

// ratioWithin reports whether diff/total falls within [0, tolerance].
func ratioWithin(diff, total int, tolerance float64) bool {
	if total == 0 {
		return true
	}
	ratio := float64(diff) / float64(total)
	return ratio >= 0 && ratio <= tolerance
}
