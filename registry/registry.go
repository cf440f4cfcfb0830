// Package registry loads the city reference list a validation run is
// graded against: one row per city naming its expected station/line/
// interchange counts and the OSM bounding box to pull its data from
// (subways/process_subways.py::get_cities_info, prepare_cities).
package registry

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/transit-tools/subway-validator/model"
)

var validate = validator.New()

// fieldNames mirrors the CSV column order used by the reference
// spreadsheet export.
var fieldNames = []string{
	"id", "name", "country", "continent",
	"num_stations", "num_lines", "num_light_lines", "num_interchanges",
	"bbox", "networks",
}

// Row is one raw registry CSV record prior to numeric/bbox parsing.
type Row struct {
	ID              string `validate:"required"`
	Name            string `validate:"required"`
	Country         string
	Continent       string
	NumStations     string
	NumLines        string
	NumLightLines   string
	NumInterchanges string
	BBox            string
	Networks        string
}

// Load reads the registry CSV from r, skipping the header row, and
// returns one CityDescriptor per row that carries both an id and a
// bbox. Duplicate city names are tolerated, matching the source
// spreadsheet's history of near-duplicate entries.
func Load(r io.Reader) ([]model.CityDescriptor, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(fieldNames)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("registry: reading csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	records = records[1:] // header

	var descriptors []model.CityDescriptor
	seenNames := map[string]bool{}
	for i, rec := range records {
		row := recordToRow(rec)
		if row.ID == "" || row.BBox == "" {
			continue
		}
		if err := validate.Struct(row); err != nil {
			return nil, fmt.Errorf("registry: row %d: %w", i+2, err)
		}
		name := strings.TrimSpace(row.Name)
		seenNames[name] = true // duplicates are not rejected

		d, err := rowToDescriptor(row)
		if err != nil {
			return nil, fmt.Errorf("registry: row %d (%s): %w", i+2, name, err)
		}
		descriptors = append(descriptors, d)
	}
	return descriptors, nil
}

func recordToRow(rec []string) Row {
	get := func(i int) string {
		if i < len(rec) {
			return rec[i]
		}
		return ""
	}
	return Row{
		ID:              get(0),
		Name:            get(1),
		Country:         get(2),
		Continent:       get(3),
		NumStations:     get(4),
		NumLines:        get(5),
		NumLightLines:   get(6),
		NumInterchanges: get(7),
		BBox:            get(8),
		Networks:        get(9),
	}
}

func parseIntOrDefault(s string, def int) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, nil
	}
	return strconv.Atoi(s)
}

// parseBBox converts the registry's natural "minlat,minlon,maxlat,maxlon"
// order into the internal (minLon, minLat, maxLon, maxLat) order used
// throughout the model package.
func parseBBox(s string) (model.BBox, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return model.BBox{}, fmt.Errorf("expected 4 comma-separated bbox values, got %d", len(parts))
	}
	nums := make([]float64, 4)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return model.BBox{}, fmt.Errorf("invalid bbox value %q: %w", p, err)
		}
		nums[i] = v
	}
	return model.BBox{
		MinLon: nums[1],
		MinLat: nums[0],
		MaxLon: nums[3],
		MaxLat: nums[2],
	}, nil
}

// parseNetworks splits the "MODES:NETWORKS" column into its mode list
// (before the colon) and network list (after it), both
// semicolon-separated.
func parseNetworks(s string) (modes, networks []string) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) < 2 || parts[0] == "" {
		return nil, splitNonEmpty(lastOrEmpty(parts))
	}
	return splitNonEmpty(parts[0]), splitNonEmpty(parts[1])
}

func lastOrEmpty(parts []string) string {
	if len(parts) == 0 {
		return ""
	}
	return parts[len(parts)-1]
}

func splitNonEmpty(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ";") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func rowToDescriptor(row Row) (model.CityDescriptor, error) {
	numStations, err := parseIntOrDefault(row.NumStations, 0)
	if err != nil {
		return model.CityDescriptor{}, fmt.Errorf("num_stations: %w", err)
	}
	numLines, err := parseIntOrDefault(row.NumLines, 0)
	if err != nil {
		return model.CityDescriptor{}, fmt.Errorf("num_lines: %w", err)
	}
	numLightLines, err := parseIntOrDefault(row.NumLightLines, 0)
	if err != nil {
		return model.CityDescriptor{}, fmt.Errorf("num_light_lines: %w", err)
	}
	numInterchanges, err := parseIntOrDefault(row.NumInterchanges, 0)
	if err != nil {
		return model.CityDescriptor{}, fmt.Errorf("num_interchanges: %w", err)
	}
	bbox, err := parseBBox(row.BBox)
	if err != nil {
		return model.CityDescriptor{}, fmt.Errorf("bbox: %w", err)
	}
	modes, networks := parseNetworks(row.Networks)

	return model.CityDescriptor{
		ID:              row.ID,
		Name:            strings.TrimSpace(row.Name),
		Country:         row.Country,
		Continent:       row.Continent,
		NumStations:     numStations,
		NumLines:        numLines,
		NumLightLines:   numLightLines,
		NumInterchanges: numInterchanges,
		BBox:            bbox,
		Modes:           modes,
		Networks:        networks,
	}, nil
}
