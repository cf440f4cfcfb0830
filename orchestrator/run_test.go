package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/transit-tools/subway-validator/geo"
	"github.com/transit-tools/subway-validator/model"
	"github.com/transit-tools/subway-validator/osm"
	"github.com/transit-tools/subway-validator/recovery"
)

func TestBuildCitiesAssignsRecoveryStore(t *testing.T) {
	descriptors := []model.CityDescriptor{
		{ID: "c1", Name: "Testville", Country: "Testland", Continent: "Testia"},
	}
	cities := buildCities(descriptors, recovery.NullStore{}, false)
	require.Len(t, cities, 1)
	require.Equal(t, "Testville", cities[0].Descriptor.Name)
}

func TestAssignElementsSortsByBBoxOverlap(t *testing.T) {
	cityA := model.NewCity(model.CityDescriptor{
		ID: "a", Name: "A",
		BBox: model.BBox{MinLon: 0, MinLat: 0, MaxLon: 1, MaxLat: 1},
	})
	cityB := model.NewCity(model.CityDescriptor{
		ID: "b", Name: "B",
		BBox: model.BBox{MinLon: 5, MinLat: 5, MaxLon: 6, MaxLat: 6},
	})

	inA := &osm.Element{Type: osm.ElementNode, ID: 1, Center: &geo.Point{Lon: 0.5, Lat: 0.5}}
	inB := &osm.Element{Type: osm.ElementNode, ID: 2, Center: &geo.Point{Lon: 5.5, Lat: 5.5}}
	nowhere := &osm.Element{Type: osm.ElementNode, ID: 3, Center: &geo.Point{Lon: 90, Lat: 90}}
	noCenter := &osm.Element{Type: osm.ElementNode, ID: 4}

	cities := []*model.City{cityA, cityB}
	assignElements(cities, []*osm.Element{inA, inB, nowhere, noCenter})

	require.Contains(t, cityA.Elements, osm.ID(inA))
	require.NotContains(t, cityA.Elements, osm.ID(inB))
	require.Contains(t, cityB.Elements, osm.ID(inB))
	require.NotContains(t, cityA.Elements, osm.ID(nowhere))
	require.NotContains(t, cityB.Elements, osm.ID(nowhere))
	require.NotContains(t, cityA.Elements, osm.ID(noCenter))
}

func TestProcessCitiesRecoversFromPanic(t *testing.T) {
	c := model.NewCity(model.CityDescriptor{ID: "x", Name: "X"})
	// A nil Config makes processOneCity dereference a nil pointer when
	// it reads tolerances; the per-city recover() should turn that into
	// a critical finding instead of crashing the whole run.
	processCities([]*model.City{c}, Options{Config: nil, ConcurrentCities: 2})
	require.True(t, c.Aborted())
	require.NotEmpty(t, c.Errors)
}
