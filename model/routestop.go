package model

import (
	"github.com/transit-tools/subway-validator/geo"
	"github.com/transit-tools/subway-validator/osm"
)

// RouteStop is a single stop occurrence inside one route variant.
type RouteStop struct {
	StopArea *StopArea
	Stop     geo.Point
	Distance int // meters from the start of the route

	PlatformEntry string
	PlatformExit  string
	CanEnter      bool
	CanExit       bool

	PositionsOnRails []float64

	seenStop          bool
	seenPlatformEntry bool
	seenPlatformExit  bool
	seenStation       bool
}

func (rs *RouteStop) seenPlatform() bool {
	return rs.seenPlatformEntry || rs.seenPlatformExit
}

// NewRouteStop creates a RouteStop referencing sa, with no stop
// coordinate assigned yet.
func NewRouteStop(sa *StopArea) *RouteStop {
	return &RouteStop{StopArea: sa}
}

// ActualRole derives the functional role (stop/platform/"") of el
// within a route, independent of its stated member role, per
// subways/structure/route_stop.py::get_actual_role.
func ActualRole(el *osm.Element, statedRole string, modes map[string]bool) string {
	switch {
	case IsStop(el):
		return "stop"
	case IsPlatform(el):
		return "platform"
	case IsStation(el, modes):
		if contains(statedRole, "platform") {
			return "platform"
		}
		return "stop"
	default:
		return ""
	}
}

func contains(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}

// Add folds one more relation member onto this RouteStop, matching
// subways/structure/route_stop.py::RouteStop.add.
func (rs *RouteStop) Add(el *osm.Element, role string, relation *osm.Element, city *City) {
	modes := city.Modes
	name := el.Tags["name"]

	switch {
	case IsStop(el):
		if contains(role, "platform") {
			city.Warn("Stop position in a platform role in a route", el)
		}
		if el.Type != osm.ElementNode {
			city.Error("Stop position is not a node", el)
		}
		if el.Center != nil {
			rs.Stop = *el.Center
		}
		if !contains(role, "entry_only") {
			rs.CanExit = true
		}
		if !contains(role, "exit_only") {
			rs.CanEnter = true
		}

	case IsStation(el, modes):
		if el.Type != osm.ElementNode {
			city.Notice("Station in route is not a node", el)
		}
		if !rs.seenStop && !rs.seenPlatform() {
			if el.Center != nil {
				rs.Stop = *el.Center
			}
			rs.CanEnter = true
			rs.CanExit = true
		}

	case IsPlatform(el):
		if contains(role, "stop") {
			city.Warn("Platform in a stop role in a route", el)
		}
		id := osm.ID(el)
		if !contains(role, "exit_only") {
			rs.PlatformEntry = id
			rs.CanEnter = true
		}
		if !contains(role, "entry_only") {
			rs.PlatformExit = id
			rs.CanExit = true
		}
		if !rs.seenStop && el.Center != nil {
			rs.Stop = *el.Center
		}
	}

	multipleCheck := false
	actualRole := ActualRole(el, role, modes)
	switch actualRole {
	case "platform":
		switch role {
		case "platform_entry_only":
			multipleCheck = rs.seenPlatformEntry
			rs.seenPlatformEntry = true
		case "platform_exit_only":
			multipleCheck = rs.seenPlatformExit
			rs.seenPlatformExit = true
		default:
			if role != "platform" && !contains(role, "stop") {
				city.Warn("Platform \""+name+"\" ("+osm.ID(el)+") with invalid role \""+role+"\" in route", relation)
			}
			multipleCheck = rs.seenPlatform()
			rs.seenPlatformEntry = true
			rs.seenPlatformExit = true
		}
	case "stop":
		multipleCheck = rs.seenStop
		rs.seenStop = true
	}

	if multipleCheck {
		msg := "Multiple " + actualRole + "s for a station \"" + name + " (" + osm.ID(el) + ") in a route relation"
		if actualRole == "stop" {
			city.Error(msg, relation)
		} else {
			city.Notice(msg, relation)
		}
	}
}
