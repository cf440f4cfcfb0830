package output

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/transit-tools/subway-validator/model"
	"github.com/transit-tools/subway-validator/osm"
	"github.com/transit-tools/subway-validator/testutil"
)

func TestUnusedEntrancesFeatureCollectionSkipsWiredEntrances(t *testing.T) {
	d := model.CityDescriptor{ID: "c1", Name: "Testville", Country: "Testland", Continent: "Europe"}
	c := model.NewCity(d)

	unused := testutil.Node(1, 52.1, 13.1, map[string]string{"railway": "subway_entrance", "name": "Unused"})
	wired := testutil.Node(2, 52.2, 13.2, map[string]string{"railway": "subway_entrance", "name": "Wired"})
	osm.CalculateCenters([]*osm.Element{unused, wired})
	c.Add(unused)
	c.Add(wired)
	c.ElementStopAreas[osm.ID(wired)] = []*model.StopArea{{ID: "r1"}}

	fc := UnusedEntrancesFeatureCollection([]*model.City{c})
	require.Len(t, fc.Features, 1)
	require.Equal(t, "Unused", fc.Features[0].Properties["name"])
	require.Equal(t, "Testville", fc.Features[0].Properties["city"])
}

func TestUnusedEntrancesFeatureCollectionEmptyForNoEntrances(t *testing.T) {
	d := model.CityDescriptor{ID: "c1", Name: "Testville", Country: "Testland", Continent: "Europe"}
	c := model.NewCity(d)
	station := testutil.Station(1, "Alpha", 52.1, 13.1)
	osm.CalculateCenters([]*osm.Element{station})
	c.Add(station)

	fc := UnusedEntrancesFeatureCollection([]*model.City{c})
	require.Empty(t, fc.Features)
}
