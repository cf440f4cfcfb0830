// Package recovery loads a prior validation run's itinerary cache, used
// to re-sort a route's stops when their current OSM member order fails
// the ordering check (spec.md §4.4 step 5, §9 "Recovery data").
package recovery

import (
	"os"

	"github.com/goccy/go-json"
	"github.com/transit-tools/subway-validator/geo"
)

// RecoveredStation is one stop of a previously recorded itinerary.
type RecoveredStation struct {
	Name   string    `json:"name"`
	Center geo.Point `json:"center"`
}

// Itinerary is one line's recorded stop sequence from a prior run.
type Itinerary struct {
	From     string             `json:"from"`
	To       string             `json:"to"`
	Stations []RecoveredStation `json:"stations"`
}

// Lookup resolves the itineraries recorded for a route identified by
// its (colour, ref) pair, the way the original route_id key is formed.
type Lookup interface {
	Lookup(colour, ref string) []Itinerary
}

// NullStore is the default Lookup: it never has recovery data, the
// same as running without --recovery-data.
type NullStore struct{}

func (NullStore) Lookup(string, string) []Itinerary { return nil }

// key identifies one route within the JSON store, matching Python's
// (colour, ref) tuple key, serialized as a {"colour", "ref"} object.
type key struct {
	Colour string `json:"colour"`
	Ref    string `json:"ref"`
}

type record struct {
	Key         key         `json:"key"`
	Itineraries []Itinerary `json:"itineraries"`
}

// JSONStore loads a cache of a prior run's itineraries from a JSON
// file: a flat array of {key: {colour, ref}, itineraries: [...]}
// records.
type JSONStore struct {
	byKey map[key][]Itinerary
}

// LoadJSONStore reads and parses path into a JSONStore.
func LoadJSONStore(path string) (*JSONStore, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is operator-supplied via CLI flag
	if err != nil {
		return nil, err
	}

	var records []record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}

	store := &JSONStore{byKey: make(map[key][]Itinerary, len(records))}
	for _, rec := range records {
		store.byKey[rec.Key] = rec.Itineraries
	}
	return store, nil
}

// Lookup implements Lookup.
func (s *JSONStore) Lookup(colour, ref string) []Itinerary {
	return s.byKey[key{Colour: colour, Ref: ref}]
}
