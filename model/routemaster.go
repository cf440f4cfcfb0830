package model

import (
	"fmt"

	"github.com/transit-tools/subway-validator/colors"
	"github.com/transit-tools/subway-validator/geo"
	"github.com/transit-tools/subway-validator/osm"
)

// suggestTransferMinDistance is the distance below which the endpoints
// of two routes sharing one end count as the same place, so that a
// route without a return direction gets the "Cannot find a route ...
// which returns to ..." notice instead of the generic one
// (subways/structure/route_master.py).
const suggestTransferMinDistance = 100.0

// RouteMaster aggregates the directional Route variants that together
// form one line.
type RouteMaster struct {
	ID      string
	Element *osm.Element

	Ref     string
	Name    string
	Mode    string
	Colour  string
	Infill  string
	Network string

	Routes []*Route

	BestRoute *Route

	hasMaster bool
}

// IsRouteMaster reports whether el is a route_master relation that
// aggregates routes of modes.
func IsRouteMaster(el *osm.Element) bool {
	return el.Type == osm.ElementRelation && osm.TagIs(el, "type", "route_master")
}

// NewRouteMaster creates an empty RouteMaster, optionally backed by a
// route_master relation (masterEl nil for a standalone route promoted
// to its own line).
func NewRouteMaster(masterEl *osm.Element) *RouteMaster {
	rm := &RouteMaster{hasMaster: masterEl != nil}
	if masterEl != nil {
		rm.ID = osm.ID(masterEl)
		rm.Element = masterEl
		rm.Ref = masterEl.Tags["ref"]
		rm.Name = masterEl.Tags["name"]
		if c, err := colors.Normalize(masterEl.Tags["colour"]); err == nil {
			rm.Colour = c
		}
		if c, err := colors.Normalize(masterEl.Tags["colour:infill"]); err == nil {
			rm.Infill = c
		}
		rm.Network = osm.Network(masterEl)
	}
	return rm
}

// Add folds route into the route master, picking up whichever attribute
// the master relation itself did not provide. A differing network is
// reported as an error and a differing ref, colour or infill as a
// notice; a route whose mode differs is reported as an error and is not
// added (subways/structure/route_master.py::RouteMaster.add).
func (rm *RouteMaster) Add(route *Route, city *City) {
	if rm.ID == "" {
		rm.ID = route.ID
		rm.Element = route.Element
	}
	if rm.Mode == "" {
		rm.Mode = route.Mode
	} else if rm.Mode != route.Mode {
		city.Error(fmt.Sprintf("Route has mode %s, while route master has mode %s", route.Mode, rm.Mode), route.Element)
		return
	}
	if rm.Ref == "" {
		rm.Ref = route.Ref
	} else if route.Ref != "" && route.Ref != rm.Ref {
		city.Notice(fmt.Sprintf("Route has ref %s, while route master has ref %s", route.Ref, rm.Ref), route.Element)
	}
	if rm.Name == "" {
		rm.Name = route.Name
	}
	if rm.Colour == "" {
		rm.Colour = route.Colour
	} else if route.Colour != "" && route.Colour != rm.Colour {
		city.Notice(fmt.Sprintf("Route has colour %s, while route master has colour %s", route.Colour, rm.Colour), route.Element)
	}
	if rm.Infill == "" {
		rm.Infill = route.Infill
	} else if route.Infill != "" && route.Infill != rm.Infill {
		city.Notice(fmt.Sprintf("Route has infill colour %s, while route master has infill colour %s", route.Infill, rm.Infill), route.Element)
	}
	if rm.Network == "" {
		rm.Network = route.Network
	} else if route.Network != "" && route.Network != rm.Network {
		city.Error(fmt.Sprintf("Route has network %s, while route master has network %s", route.Network, rm.Network), route.Element)
	}

	rm.Routes = append(rm.Routes, route)
	if rm.BestRoute == nil || len(route.Stops) > len(rm.BestRoute.Stops) {
		rm.BestRoute = route
	}
}

// CheckReturnRoutes verifies that non-circular routes come in pairs
// running opposite directions between the same endpoints, and that
// circular routes have a counterpart circling the opposite way
// (subways/structure/route_master.py::check_return_routes).
func (rm *RouteMaster) CheckReturnRoutes(city *City) {
	meaningful := make([]*Route, 0, len(rm.Routes))
	for _, r := range rm.Routes {
		if len(r.Stops) >= 2 {
			meaningful = append(meaningful, r)
		}
	}

	switch len(meaningful) {
	case 0:
		city.Error(fmt.Sprintf("An empty route master %s. Please set construction:route if it is under construction", rm.ID), nil)
		return
	case 1:
		msg := "Only one route in route_master. Please check if it needs a return route"
		var el *osm.Element
		circular := false
		if rm.BestRoute != nil {
			el = rm.BestRoute.Element
			circular = rm.BestRoute.IsCircular
		}
		if circular {
			city.Notice(msg, el)
		} else {
			city.Error(msg, el)
		}
		return
	}

	var circular, nonCircular []*Route
	for _, r := range meaningful {
		if r.IsCircular {
			circular = append(circular, r)
		} else {
			nonCircular = append(nonCircular, r)
		}
	}

	for _, r := range nonCircular {
		if len(r.Stops) < 2 {
			continue
		}
		from, to := r.EndTransfers()
		hasReturn := false
		for _, other := range nonCircular {
			if other == r {
				continue
			}
			oFrom, oTo := other.EndTransfers()
			if oFrom == to && oTo == from {
				hasReturn = true
				break
			}
		}
		if !hasReturn {
			sameEndsDifferentWay := false
			for _, other := range nonCircular {
				if other == r || len(other.Stops) < 2 {
					continue
				}
				oFrom, oTo := other.EndTransfers()
				if (oFrom == from || oTo == to) && oFrom != oTo {
					dFrom := geo.Distance(r.Stops[0].Stop, other.Stops[0].Stop)
					dTo := geo.Distance(r.Stops[len(r.Stops)-1].Stop, other.Stops[len(other.Stops)-1].Stop)
					if dFrom < suggestTransferMinDistance || dTo < suggestTransferMinDistance {
						sameEndsDifferentWay = true
					}
				}
			}
			if sameEndsDifferentWay {
				city.Notice(fmt.Sprintf("Cannot find a route for %s-%s which returns to %s-%s", from, to, to, from), r.Element)
			} else {
				city.Notice(fmt.Sprintf("Route does not have a return direction among %d routes of this master", len(nonCircular)), r.Element)
			}
		}
	}

	for i, r := range circular {
		if len(r.Stops) < 2 {
			continue
		}
		hasOpposite := false
		for j, other := range circular {
			if i == j || len(other.Stops) < 2 {
				continue
			}
			if twinCircularRoutes(r, other) {
				hasOpposite = true
				break
			}
		}
		if !hasOpposite {
			city.Notice("Circular route does not have a return direction", r.Element)
		}
	}
}

// twinCircularRoutes reports whether a and b share at least 80% of
// their stop sequence when one is reversed, the threshold used to call
// two circular routes counter-rotating twins rather than genuinely
// distinct loops.
func twinCircularRoutes(a, b *Route) bool {
	seqA := a.TransfersSequence()
	seqB := reverseSeq(b.TransfersSequence())

	matched := longestCommonSubsequence(seqA, seqB)
	threshold := int(0.8 * float64(min(len(seqA), len(seqB))))
	return matched >= threshold
}

func reverseSeq(s []string) []string {
	out := make([]string, len(s))
	for i, v := range s {
		out[len(s)-1-i] = v
	}
	return out
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// longestCommonSubsequence implements a standard Wagner-Fischer style
// dynamic program over two id sequences.
func longestCommonSubsequence(a, b []string) int {
	n, m := len(a), len(b)
	prev := make([]int, m+1)
	cur := make([]int, m+1)
	for i := 1; i <= n; i++ {
		for j := 1; j <= m; j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1] + 1
			} else if prev[j] >= cur[j-1] {
				cur[j] = prev[j]
			} else {
				cur[j] = cur[j-1]
			}
		}
		prev, cur = cur, prev
	}
	return prev[m]
}

// FindTwinRoutes pairs up non-circular routes across the entire master
// by comparing their stop-id sequences via the same longest-common-
// subsequence measure, returning matched pairs whose overlap meets the
// 80% threshold. Nothing in this module calls it; CheckReturnRoutes
// pairs non-circular routes by their end transfers only.
func FindTwinRoutes(routes []*Route) [][2]*Route {
	var pairs [][2]*Route
	used := map[int]bool{}
	for i := 0; i < len(routes); i++ {
		if used[i] || routes[i].IsCircular {
			continue
		}
		for j := i + 1; j < len(routes); j++ {
			if used[j] || routes[j].IsCircular {
				continue
			}
			seqA := routeStopIDs(routes[i])
			seqB := reverseSeq(routeStopIDs(routes[j]))
			matched := longestCommonSubsequence(seqA, seqB)
			threshold := int(0.8 * float64(min(len(seqA), len(seqB))))
			if matched >= threshold {
				pairs = append(pairs, [2]*Route{routes[i], routes[j]})
				used[i], used[j] = true, true
				break
			}
		}
	}
	return pairs
}

func routeStopIDs(r *Route) []string {
	ids := make([]string, len(r.Stops))
	for i, s := range r.Stops {
		ids[i] = s.StopArea.ID
	}
	return ids
}
