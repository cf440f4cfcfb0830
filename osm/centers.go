package osm

import "github.com/transit-tools/subway-validator/geo"

// CalculateCenters fills el.Center for every way and relation in
// elements, relying on the input being in nodes-ways-relations order
// the way an Overpass extract or an .osm XML file is. Relations whose
// members are other relations (route_master, stop_area_group, or a
// stop_area built only from multipolygon ways) may not resolve on the
// first pass; those are retried in a worklist loop, first strictly and
// then, if stuck, ignoring relation members whose own center is still
// unknown, matching subways/validation.py::calculate_centers.
func CalculateCenters(elements []*Element) {
	nodeCenters := make(map[int64]geo.Point)
	wayCenters := make(map[int64]geo.Point)
	relationCenters := make(map[int64]geo.Point)

	var unresolved []*Element

	for _, el := range elements {
		switch el.Type {
		case ElementNode:
			p := geo.Point{Lon: el.Lon, Lat: el.Lat}
			nodeCenters[el.ID] = p
			el.Center = &p
		case ElementWay:
			if c, ok := wayCenter(el, nodeCenters); ok {
				wayCenters[el.ID] = c
				el.Center = &c
			}
		case ElementRelation:
			if c, ok := relationCenter(el, nodeCenters, wayCenters, relationCenters, false); ok {
				relationCenters[el.ID] = c
				el.Center = &c
			} else {
				unresolved = append(unresolved, el)
			}
		}
	}

	for len(unresolved) > 0 {
		remaining := resolvePass(unresolved, nodeCenters, wayCenters, relationCenters, false)
		progress := len(remaining) < len(unresolved)
		if !progress {
			remaining = resolvePass(unresolved, nodeCenters, wayCenters, relationCenters, true)
			progress = len(remaining) < len(unresolved)
			if !progress {
				break
			}
		}
		unresolved = remaining
	}
}

func resolvePass(
	pending []*Element,
	nodeCenters, wayCenters, relationCenters map[int64]geo.Point,
	ignoreUnlocalizedChildren bool,
) []*Element {
	var remaining []*Element
	for _, rel := range pending {
		if c, ok := relationCenter(rel, nodeCenters, wayCenters, relationCenters, ignoreUnlocalizedChildren); ok {
			relationCenters[rel.ID] = c
			rel.Center = &c
		} else {
			remaining = append(remaining, rel)
		}
	}
	return remaining
}

// wayCenter averages the centers of the way's nodes, not double-counting
// the shared first/last node of a closed way.
func wayCenter(el *Element, nodeCenters map[int64]geo.Point) (geo.Point, bool) {
	if el.Center != nil {
		return *el.Center, true
	}
	n := len(el.Nodes)
	if n == 0 {
		return geo.Point{}, false
	}

	var sumLon, sumLat float64
	count := 0
	closed := n > 1 && el.Nodes[0] == el.Nodes[n-1]
	for i, nd := range el.Nodes {
		if closed && i == n-1 {
			break
		}
		p, ok := nodeCenters[nd]
		if !ok {
			continue
		}
		sumLon += p.Lon
		sumLat += p.Lat
		count++
	}
	if count == 0 {
		return geo.Point{}, false
	}
	return geo.Point{Lon: sumLon / float64(count), Lat: sumLat / float64(count)}, true
}

// relationCenter averages the centers of member elements whose centers
// are already known. If ignoreUnlocalizedChildren is false and a member
// relation has no known center yet, relationCenter bails out entirely
// (the caller should retry once more members are resolved); if true,
// that member is skipped instead.
func relationCenter(
	el *Element,
	nodeCenters, wayCenters, relationCenters map[int64]geo.Point,
	ignoreUnlocalizedChildren bool,
) (geo.Point, bool) {
	if el.Center != nil {
		return *el.Center, true
	}

	var sumLon, sumLat float64
	count := 0
	for _, m := range el.Members {
		var container map[int64]geo.Point
		switch m.Type {
		case ElementNode:
			container = nodeCenters
		case ElementWay:
			container = wayCenters
		case ElementRelation:
			container = relationCenters
			if _, known := container[m.Ref]; !known {
				if ignoreUnlocalizedChildren {
					continue
				}
				return geo.Point{}, false
			}
		}
		if p, ok := container[m.Ref]; ok {
			sumLon += p.Lon
			sumLat += p.Lat
			count++
		}
	}
	if count == 0 {
		return geo.Point{}, false
	}
	return geo.Point{Lon: sumLon / float64(count), Lat: sumLat / float64(count)}, true
}
