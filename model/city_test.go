package model

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/transit-tools/subway-validator/osm"
	"github.com/transit-tools/subway-validator/testutil"
)

func newTestDescriptor() CityDescriptor {
	return CityDescriptor{
		ID:        "c1",
		Name:      "Testville",
		Country:   "Testland",
		Continent: "Europe",
		BBox:      BBox{MinLon: 13.0, MinLat: 52.0, MaxLon: 14.0, MaxLat: 53.0},
	}
}

func buildTestCity(t *testing.T, numLines, numStations int) *City {
	t.Helper()
	d := newTestDescriptor()
	d.NumLines = numLines
	d.NumStations = numStations
	c := NewCity(d)

	line := testutil.NewTwoStationLine(1, "Alpha", "Beta", 52.1, 13.1, 52.2, 13.2)
	returnRoute := line.AddReturnRoute(32)
	elements := append(line.Elements(), returnRoute)
	osm.CalculateCenters(elements)
	for _, el := range elements {
		c.Add(el)
	}
	return c
}

func TestExtractRoutesBuildsOneRouteMasterAndTwoStations(t *testing.T) {
	c := buildTestCity(t, 1, 2)
	c.ExtractRoutes()
	require.False(t, c.Aborted())
	require.Empty(t, c.Errors)
	require.Len(t, c.RouteMasters, 1)
	require.Len(t, c.StationIDs, 2)
}

func TestValidateMatchesExpectedCounts(t *testing.T) {
	c := buildTestCity(t, 1, 2)
	c.ExtractRoutes()
	c.Validate(0, 0)
	require.True(t, c.IsGood())
	require.Equal(t, 2, c.FoundStations)
	require.Empty(t, c.Errors)
}

func TestValidateReportsStationCountMismatch(t *testing.T) {
	c := buildTestCity(t, 1, 5)
	c.ExtractRoutes()
	c.Validate(0, 0)
	require.False(t, c.IsGood())
	require.Contains(t, c.Errors[0].Message, "expected 5")
}

func TestResultProjectsCityState(t *testing.T) {
	c := buildTestCity(t, 1, 2)
	c.ExtractRoutes()
	c.Validate(0, 0)
	res := c.Result()
	require.Equal(t, "Testville", res.Name)
	require.True(t, res.IsGood)
	require.Equal(t, 2, res.StationsFound)
	require.Equal(t, 1, res.NetworksObserved)
}

func TestCriticalErrorAbortsCity(t *testing.T) {
	c := NewCity(newTestDescriptor())
	c.CriticalError("boom", nil)
	require.True(t, c.Aborted())
	require.False(t, c.IsGood())
	require.Len(t, c.Errors, 1)
	require.Equal(t, "boom", c.Errors[0].Message)
}

func TestAddDetectsRouteInTwoMasters(t *testing.T) {
	c := NewCity(newTestDescriptor())
	route := testutil.Relation(30, nil, map[string]string{"type": "route"})
	masterA := testutil.RouteMasterRelation(40, "A", []int64{30}, "net")
	masterB := testutil.RouteMasterRelation(41, "B", []int64{30}, "net")
	c.Add(route)
	c.Add(masterA)
	c.Add(masterB)
	require.NotEmpty(t, c.Errors)
	require.Contains(t, c.Errors[0].Message, "two route_masters")
}

func TestContainsUsesBBox(t *testing.T) {
	c := NewCity(newTestDescriptor())
	inside := testutil.Station(1, "Inside", 52.5, 13.5)
	outside := testutil.Station(2, "Outside", 10.0, 10.0)
	osm.CalculateCenters([]*osm.Element{inside, outside})
	require.True(t, c.Contains(inside))
	require.False(t, c.Contains(outside))
}
