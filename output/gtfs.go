// Package output renders the reconstructed transit network as GTFS
// feeds, a compact routing graph, and unused-entrance GeoJSON, the
// three export formats of subways/processors (gtfs.py, renderer.py,
// export_geojson.py).
package output

import (
	"archive/zip"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/transit-tools/subway-validator/colors"
	"github.com/transit-tools/subway-validator/geo"
	"github.com/transit-tools/subway-validator/model"
)

const (
	defaultInterval      = 600 // seconds, used when a route has no known interval
	transferPenalty      = 30  // seconds, boarding overhead for a walking transfer
	speedOnTransfer      = 1.0 // meters/second, walking speed assumed between platforms
	coordinatePrecision  = 7
	defaultTripStartHour = 5
	defaultTripEndHour   = 1
)

// gtfsColumns mirrors GTFS_COLUMNS: the exact header row (and row key
// order) for each feed file.
var gtfsColumns = map[string][]string{
	"agency":      {"agency_id", "agency_name", "agency_url", "agency_timezone", "agency_lang", "agency_phone"},
	"routes":      {"route_id", "agency_id", "route_short_name", "route_long_name", "route_desc", "route_type", "route_url", "route_color", "route_text_color", "route_sort_order", "route_fare_class", "line_id", "listed_route"},
	"trips":       {"route_id", "service_id", "trip_id", "trip_headsign", "trip_short_name", "direction_id", "block_id", "shape_id", "wheelchair_accessible", "trip_route_type", "route_pattern_id", "bikes_allowed"},
	"stops":       {"stop_id", "stop_code", "stop_name", "stop_desc", "platform_code", "platform_name", "stop_lat", "stop_lon", "zone_id", "stop_address", "stop_url", "level_id", "location_type", "parent_station", "wheelchair_boarding", "municipality", "on_street", "at_street", "vehicle_type"},
	"calendar":    {"service_id", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday", "start_date", "end_date"},
	"stop_times":  {"trip_id", "arrival_time", "departure_time", "stop_id", "stop_sequence", "stop_headsign", "pickup_type", "drop_off_type", "shape_dist_traveled", "timepoint", "checkpoint_id", "continuous_pickup", "continuous_drop_off"},
	"frequencies": {"trip_id", "start_time", "end_time", "headway_secs", "exact_times"},
	"shapes":      {"shape_id", "shape_pt_lat", "shape_pt_lon", "shape_pt_sequence", "shape_dist_traveled"},
	"transfers":   {"from_stop_id", "to_stop_id", "transfer_type", "min_transfer_time"},
}

type gtfsRow map[string]string

// gtfsData accumulates rows per feed file, keyed the same way as
// gtfsColumns.
type gtfsData map[string][]gtfsRow

func roundCoord(v float64) float64 {
	scale := 1.0
	for i := 0; i < coordinatePrecision; i++ {
		scale *= 10
	}
	return float64(int64(v*scale+sign(v)*0.5)) / scale
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}

// WriteGTFS renders every good city in cities into a GTFS zip feed at
// w (subways/processors/gtfs.py::process).
func WriteGTFS(w io.Writer, cities []*model.City) error {
	data := gtfsData{}
	for name := range gtfsColumns {
		data[name] = nil
	}

	data["calendar"] = append(data["calendar"], gtfsRow{
		"service_id": "always", "monday": "1", "tuesday": "1", "wednesday": "1",
		"thursday": "1", "friday": "1", "saturday": "1", "sunday": "1",
		"start_date": "19700101", "end_date": "30000101",
	})

	allStops := map[string]gtfsRow{}

	for _, city := range cities {
		if !city.IsGood() {
			continue
		}
		data["agency"] = append(data["agency"], gtfsRow{
			"agency_id": city.Descriptor.ID, "agency_name": city.Descriptor.Name,
		})

		for _, rm := range city.RouteMasters {
			routeID := rm.ID
			data["routes"] = append(data["routes"], gtfsRow{
				"route_id": routeID, "agency_id": city.Descriptor.ID,
				"route_type":       routeType(rm.Mode),
				"route_short_name": rm.Ref, "route_long_name": rm.Name,
				"route_color": colors.FormatForDisplay(rm.Colour),
			})

			for _, variant := range rm.Routes {
				shapeID := variant.ID[1:] // drop leading "r"
				data["trips"] = append(data["trips"], gtfsRow{
					"trip_id": variant.ID, "route_id": routeID,
					"service_id": "always", "shape_id": shapeID,
				})

				tracks := variant.TruncatedTracks(variant.ExtendedTracks())
				for i, p := range tracks {
					data["shapes"] = append(data["shapes"], gtfsRow{
						"shape_id": shapeID, "trip_id": variant.ID,
						"shape_pt_lat":      fmt.Sprintf("%.7f", roundCoord(p.Lat)),
						"shape_pt_lon":      fmt.Sprintf("%.7f", roundCoord(p.Lon)),
						"shape_pt_sequence": fmt.Sprintf("%d", i),
					})
				}

				startH, startM := variant.StartTime[0], variant.StartTime[1]
				endH, endM := variant.EndTime[0], variant.EndTime[1]
				if !variant.HasTimes {
					startH, startM = defaultTripStartHour, 0
					endH, endM = defaultTripEndHour, 0
				}
				if endH < startH || (endH == startH && endM < startM) {
					endH += 24
				}
				headway := variant.Interval
				if headway == 0 {
					headway = defaultInterval
				}
				data["frequencies"] = append(data["frequencies"], gtfsRow{
					"trip_id":      variant.ID,
					"start_time":   fmt.Sprintf("%02d:%02d:00", startH, startM),
					"end_time":     fmt.Sprintf("%02d:%02d:00", endH, endM),
					"headway_secs": fmt.Sprintf("%d", headway),
				})

				for seq, rs := range variant.Stops {
					platformID := addGTFSStop(allStops, rs, city)
					data["stop_times"] = append(data["stop_times"], gtfsRow{
						"trip_id": variant.ID, "stop_sequence": fmt.Sprintf("%d", seq),
						"shape_dist_traveled": fmt.Sprintf("%d", rs.Distance),
						"stop_id":             platformID,
					})
				}
			}
		}
	}

	for _, row := range allStops {
		data["stops"] = append(data["stops"], row)
	}

	for _, t := range cities {
		if !t.IsGood() {
			continue
		}
		for _, transfer := range t.Transfers {
			addGTFSTransfers(data, allStops, transfer)
		}
	}

	return writeGTFSZip(w, data)
}

func routeType(mode string) string {
	if mode == "monorail" {
		return "12"
	}
	return "1"
}

func addGTFSStop(allStops map[string]gtfsRow, rs *model.RouteStop, city *model.City) string {
	sa := rs.StopArea
	stationID := sa.ID + "_st"
	platformID := sa.ID + "_plt"

	if _, exists := allStops[stationID]; exists {
		return platformID
	}

	center := sa.Center
	allStops[stationID] = gtfsRow{
		"stop_id": stationID, "stop_code": stationID, "stop_name": sa.Name,
		"stop_lat": fmt.Sprintf("%.7f", roundCoord(center.Lat)), "stop_lon": fmt.Sprintf("%.7f", roundCoord(center.Lon)),
		"location_type": "1",
	}
	allStops[platformID] = gtfsRow{
		"stop_id": platformID, "stop_code": platformID, "stop_name": sa.Name,
		"stop_lat": fmt.Sprintf("%.7f", roundCoord(center.Lat)), "stop_lon": fmt.Sprintf("%.7f", roundCoord(center.Lon)),
		"location_type": "0", "parent_station": stationID,
	}

	entranceIDs := map[string]bool{}
	for id := range sa.Entrances {
		entranceIDs[id] = true
	}
	for id := range sa.Exits {
		entranceIDs[id] = true
	}
	if len(entranceIDs) == 0 {
		egressID := sa.ID + "_egress"
		allStops[egressID] = gtfsRow{
			"stop_id": egressID, "stop_code": egressID, "stop_name": sa.Name,
			"stop_lat": fmt.Sprintf("%.7f", roundCoord(center.Lat)), "stop_lon": fmt.Sprintf("%.7f", roundCoord(center.Lon)),
			"location_type": "2", "parent_station": stationID,
		}
	} else {
		for id := range entranceIDs {
			entrance, ok := city.Elements[id]
			if !ok {
				continue
			}
			entranceID := id + "_" + sa.ID
			name := entrance.Tags["name"]
			if name == "" {
				name = sa.Name
				if ref := entrance.Tags["ref"]; ref != "" {
					name += " " + ref
				}
			}
			p := geo.Point{}
			if entrance.Center != nil {
				p = *entrance.Center
			}
			allStops[entranceID] = gtfsRow{
				"stop_id": entranceID, "stop_code": entranceID, "stop_name": name,
				"stop_lat": fmt.Sprintf("%.7f", roundCoord(p.Lat)), "stop_lon": fmt.Sprintf("%.7f", roundCoord(p.Lon)),
				"location_type": "2", "parent_station": stationID,
			}
		}
	}
	return platformID
}

func addGTFSTransfers(data gtfsData, allStops map[string]gtfsRow, t model.Transfer) {
	for _, a := range t.StopAreas {
		for _, b := range t.StopAreas {
			if a.ID >= b.ID {
				continue
			}
			id1, id2 := a.ID+"_st", b.ID+"_st"
			if _, ok := allStops[id1]; !ok {
				continue
			}
			if _, ok := allStops[id2]; !ok {
				continue
			}
			transferTime := transferPenalty + int(geo.Distance(a.Center, b.Center)/speedOnTransfer+0.5)
			for _, pair := range [][2]string{{id1, id2}, {id2, id1}} {
				data["transfers"] = append(data["transfers"], gtfsRow{
					"from_stop_id": pair[0], "to_stop_id": pair[1],
					"transfer_type": "0", "min_transfer_time": fmt.Sprintf("%d", transferTime),
				})
			}
		}
	}
}

func writeGTFSZip(w io.Writer, data gtfsData) error {
	zw := zip.NewWriter(w)
	for feature, columns := range gtfsColumns {
		fw, err := zw.Create(feature + ".txt")
		if err != nil {
			return fmt.Errorf("output: creating %s.txt: %w", feature, err)
		}
		cw := csv.NewWriter(fw)
		if err := cw.Write(columns); err != nil {
			return err
		}
		for _, row := range data[feature] {
			record := make([]string, len(columns))
			for i, col := range columns {
				record[i] = row[col]
			}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
		cw.Flush()
		if err := cw.Error(); err != nil {
			return err
		}
	}
	return zw.Close()
}
