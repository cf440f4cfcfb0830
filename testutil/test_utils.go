// Package testutil builds small, hand-rolled OSM fixtures for the
// model and orchestrator test suites: a handful of nodes, ways and
// relations shaped like a minimal two-station subway line, in the
// spirit of subways/tests/sample_data_for_tests.py and
// subways/tests/util.py from the reference implementation.
package testutil

import (
	"fmt"

	"github.com/transit-tools/subway-validator/geo"
	"github.com/transit-tools/subway-validator/osm"
)

// Node builds a point node with the given tags.
func Node(id int64, lat, lon float64, tags map[string]string) *osm.Element {
	el := &osm.Element{Type: osm.ElementNode, ID: id, Lat: lat, Lon: lon, Tags: tags}
	center := geo.Point{Lat: lat, Lon: lon}
	el.Center = &center
	return el
}

// Way builds a way referencing nodeIDs in order.
func Way(id int64, nodeIDs []int64, tags map[string]string) *osm.Element {
	return &osm.Element{Type: osm.ElementWay, ID: id, Nodes: append([]int64(nil), nodeIDs...), Tags: tags}
}

// Member is a convenience constructor for a relation member.
func Member(elType osm.ElementType, ref int64, role string) osm.Member {
	return osm.Member{Type: elType, Ref: ref, Role: role}
}

// Relation builds a relation from the given members.
func Relation(id int64, members []osm.Member, tags map[string]string) *osm.Element {
	return &osm.Element{Type: osm.ElementRelation, ID: id, Members: members, Tags: tags}
}

// Station returns a railway=station node named name.
func Station(id int64, name string, lat, lon float64) *osm.Element {
	return Node(id, lat, lon, map[string]string{
		"railway": "station",
		"station": "subway",
		"name":    name,
	})
}

// StopPosition returns a railway=stop node used as a route member,
// distinct from the station node it sits next to.
func StopPosition(id int64, lat, lon float64) *osm.Element {
	return Node(id, lat, lon, map[string]string{"railway": "stop"})
}

// Platform returns a railway=platform node.
func Platform(id int64, lat, lon float64) *osm.Element {
	return Node(id, lat, lon, map[string]string{"railway": "platform"})
}

// StopAreaRelation builds a public_transport=stop_area relation tying
// a station to its stop positions and platforms.
func StopAreaRelation(id int64, stationID int64, stopIDs, platformIDs []int64) *osm.Element {
	members := []osm.Member{Member(osm.ElementNode, stationID, "")}
	for _, sid := range stopIDs {
		members = append(members, Member(osm.ElementNode, sid, "stop"))
	}
	for _, pid := range platformIDs {
		members = append(members, Member(osm.ElementNode, pid, "platform"))
	}
	return Relation(id, members, map[string]string{
		"type":             "public_transport",
		"public_transport": "stop_area",
	})
}

// RouteLine builds a type=route relation over stopIDs in travel order,
// each as a "stop" role member, with an accompanying way.
func RouteLine(id int64, name string, stopIDs []int64, wayID int64) *osm.Element {
	members := make([]osm.Member, 0, len(stopIDs)+1)
	for _, sid := range stopIDs {
		members = append(members, Member(osm.ElementNode, sid, "stop"))
	}
	members = append(members, Member(osm.ElementWay, wayID, ""))
	return Relation(id, members, map[string]string{
		"type":  "route",
		"route": "subway",
		"name":  name,
		"ref":   name,
	})
}

// RouteMasterRelation builds a type=route_master relation grouping
// routeIDs (one per direction/variant).
func RouteMasterRelation(id int64, name string, routeIDs []int64, network string) *osm.Element {
	members := make([]osm.Member, 0, len(routeIDs))
	for _, rid := range routeIDs {
		members = append(members, Member(osm.ElementRelation, rid, ""))
	}
	return Relation(id, members, map[string]string{
		"type":         "route_master",
		"route_master": "subway",
		"name":         name,
		"network":      network,
	})
}

// TwoStationLine is a self-consistent fixture: two stations, a stop
// position and platform at each, a connecting way, a route over the
// two stops, and a route_master wrapping the route.
type TwoStationLine struct {
	StationA, StationB   *osm.Element
	StopA, StopB         *osm.Element
	PlatformA, PlatformB *osm.Element
	StopAreaA, StopAreaB *osm.Element
	Way                  *osm.Element
	Route                *osm.Element
	RouteMaster          *osm.Element
}

// NewTwoStationLine builds the fixture using idOffset as the base id
// so multiple fixtures can coexist in one test without id collisions.
func NewTwoStationLine(idOffset int64, nameA, nameB string, latA, lonA, latB, lonB float64) *TwoStationLine {
	o := idOffset
	l := &TwoStationLine{
		StationA:  Station(o+1, nameA, latA, lonA),
		StationB:  Station(o+2, nameB, latB, lonB),
		StopA:     StopPosition(o+3, latA, lonA),
		StopB:     StopPosition(o+4, latB, lonB),
		PlatformA: Platform(o+5, latA, lonA),
		PlatformB: Platform(o+6, latB, lonB),
	}
	l.Way = Way(o+10, []int64{o + 3, o + 4}, map[string]string{"railway": "subway"})
	l.StopAreaA = StopAreaRelation(o+20, o+1, []int64{o + 3}, []int64{o + 5})
	l.StopAreaB = StopAreaRelation(o+21, o+2, []int64{o + 4}, []int64{o + 6})
	l.Route = RouteLine(o+30, fmt.Sprintf("%s-%s", nameA, nameB), []int64{o + 3, o + 4}, o+10)
	l.RouteMaster = RouteMasterRelation(o+40, fmt.Sprintf("%s-%s line", nameA, nameB), []int64{o + 30}, "Test Network")
	return l
}

// AddReturnRoute builds a second route relation running B->A (the
// reverse of the fixture's own A->B route) with id id, appends it to
// the fixture's route_master, and returns it so the caller can add it
// to a City alongside Elements(). Without a return route a
// route_master with a single direction is reported as missing its
// return route (subways/structure/route_master.py::check_return_routes).
func (l *TwoStationLine) AddReturnRoute(id int64) *osm.Element {
	route := RouteLine(id, fmt.Sprintf("return-%d", id), []int64{l.StopB.ID, l.StopA.ID}, l.Way.ID)
	l.RouteMaster.Members = append(l.RouteMaster.Members, Member(osm.ElementRelation, id, ""))
	return route
}

// Elements returns every element of the fixture in nodes-ways-relations
// order, the order osm.CalculateCenters and model.City.Add expect.
func (l *TwoStationLine) Elements() []*osm.Element {
	return []*osm.Element{
		l.StationA, l.StationB, l.StopA, l.StopB, l.PlatformA, l.PlatformB,
		l.Way,
		l.StopAreaA, l.StopAreaB, l.Route, l.RouteMaster,
	}
}
