package output

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"

	"github.com/transit-tools/subway-validator/colors"
	"github.com/transit-tools/subway-validator/geo"
	"github.com/transit-tools/subway-validator/model"
)

const (
	kmphToMPS       = 1000.0 / 3600.0
	entrancePenalty = 60 // seconds
	speedToEntrance = 5 * kmphToMPS
	speedOnLine     = 40 * kmphToMPS
)

// osmTypeCode is the 2-bit type tag folded into a routing uid, matching
// mapsme.py's OSM_TYPES table (node=0, way=2, relation=3).
var osmTypeCode = map[byte]int{'n': 0, 'w': 2, 'r': 3}

// UID packs an "<n|w|r><id>" element id into the single integer id the
// routing graph uses for stations, entrances, and routes
// (subways/processors/mapsme.py::uid).
func UID(elementID string) (int64, error) {
	if len(elementID) < 2 {
		return 0, fmt.Errorf("output: invalid element id %q", elementID)
	}
	t := elementID[0]
	code, ok := osmTypeCode[t]
	if !ok {
		return 0, fmt.Errorf("output: unknown element type prefix %q", elementID)
	}
	var n int64
	if _, err := fmt.Sscanf(elementID[1:], "%d", &n); err != nil {
		return 0, fmt.Errorf("output: invalid element id %q: %w", elementID, err)
	}
	return ((n << 2) + int64(code)) << 1, nil
}

// routingItinerary is one route variant's ordered stop uid/time list.
type routingItinerary struct {
	Stops     [][2]int64 `json:"stops"` // [stop_uid, seconds_from_start]
	Interval  int        `json:"interval"`
	StartTime string     `json:"startTime,omitempty"`
	EndTime   string     `json:"endTime,omitempty"`
}

type routingRoute struct {
	Type        string             `json:"type"`
	Ref         string             `json:"ref"`
	Name        string             `json:"name"`
	Colour      string             `json:"colour"`
	Casing      string             `json:"casing,omitempty"`
	RouteUID    int64              `json:"routeId"`
	Itineraries []routingItinerary `json:"itineraries"`
}

type routingNetwork struct {
	Network  string         `json:"network"`
	AgencyID string         `json:"agencyId"`
	Routes   []routingRoute `json:"routes"`
}

type routingStop struct {
	UID       int64             `json:"id"`
	Name      string            `json:"name"`
	Lon       float64           `json:"lon"`
	Lat       float64           `json:"lat"`
	Entrances []routingEntrance `json:"entrances,omitempty"`
}

// routingEntrance is a station entrance/exit reachable on foot from the
// stop, with the walking time a router should charge for using it
// (subways/processors/mapsme.py's fixed entrance penalty plus
// distance-at-walking-speed estimate).
type routingEntrance struct {
	UID     int64 `json:"id"`
	Seconds int   `json:"seconds"`
}

type routingTransfer struct {
	From    int64 `json:"from"`
	To      int64 `json:"to"`
	Seconds int   `json:"seconds"`
}

type routingGraph struct {
	Networks  []routingNetwork  `json:"networks"`
	Stops     []routingStop     `json:"stops"`
	Transfers []routingTransfer `json:"transfers"`
}

// WriteRouting renders every good city's reconstructed network into the
// compact graph consumed by a downstream router: stop uids, walking
// entrance penalties, and line-speed travel times from the start of each
// itinerary to each of its stops
// (subways/processors/mapsme.py::transit_data_to_mapsme).
func WriteRouting(w io.Writer, cities []*model.City) error {
	graph := routingGraph{}
	seenStops := map[int64]bool{}

	for _, city := range cities {
		if !city.IsGood() {
			continue
		}
		network := routingNetwork{Network: city.Descriptor.Name, AgencyID: city.Descriptor.ID}

		for _, rm := range city.RouteMasters {
			routeUID, err := UID(rm.ID)
			if err != nil {
				return err
			}
			route := routingRoute{
				Type: rm.Mode, Ref: rm.Ref, Name: rm.Name,
				Colour: colors.FormatForDisplay(rm.Colour), RouteUID: routeUID,
			}
			if rm.Infill != "" {
				route.Casing = route.Colour
				route.Colour = colors.FormatForDisplay(rm.Infill)
			}

			for _, variant := range rm.Routes {
				itin := routingItinerary{Interval: variant.Interval}
				if variant.Interval == 0 {
					itin.Interval = defaultInterval
				}
				for _, stop := range variant.Stops {
					stopUID, err := UID(stop.StopArea.ID)
					if err != nil {
						return err
					}
					if !seenStops[stopUID] {
						seenStops[stopUID] = true
						graph.Stops = append(graph.Stops, stopToRouting(stop.StopArea, stopUID))
					}
					seconds := int(float64(stop.Distance)/speedOnLine + 0.5)
					itin.Stops = append(itin.Stops, [2]int64{stopUID, int64(seconds)})
				}
				route.Itineraries = append(route.Itineraries, itin)
			}
			network.Routes = append(network.Routes, route)
		}
		graph.Networks = append(graph.Networks, network)

		for _, t := range city.Transfers {
			addRoutingTransfers(&graph, t)
		}
	}

	enc := json.NewEncoder(w)
	return enc.Encode(graph)
}

func stopToRouting(sa *model.StopArea, stopUID int64) routingStop {
	var entrances []routingEntrance
	addEntrance := func(id string) {
		u, err := UID(id)
		if err != nil {
			return
		}
		seconds := entrancePenalty
		if c, ok := sa.Centers[id]; ok {
			seconds += int(geo.Distance(sa.Center, c)/speedToEntrance + 0.5)
		}
		entrances = append(entrances, routingEntrance{UID: u, Seconds: seconds})
	}
	for id := range sa.Entrances {
		addEntrance(id)
	}
	for id := range sa.Exits {
		addEntrance(id)
	}
	return routingStop{
		UID: stopUID, Name: sa.Name,
		Lon: sa.Center.Lon, Lat: sa.Center.Lat,
		Entrances: entrances,
	}
}

func addRoutingTransfers(graph *routingGraph, t model.Transfer) {
	for _, a := range t.StopAreas {
		for _, b := range t.StopAreas {
			if a.ID >= b.ID {
				continue
			}
			uidA, errA := UID(a.ID)
			uidB, errB := UID(b.ID)
			if errA != nil || errB != nil {
				continue
			}
			seconds := transferPenalty + int(geo.Distance(a.Center, b.Center)/speedOnTransfer+0.5)
			graph.Transfers = append(graph.Transfers, routingTransfer{From: uidA, To: uidB, Seconds: seconds})
		}
	}
}
