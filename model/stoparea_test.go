package model

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/transit-tools/subway-validator/osm"
	"github.com/transit-tools/subway-validator/testutil"
)

func TestIsStopAndIsPlatform(t *testing.T) {
	stop := testutil.StopPosition(1, 0, 0)
	require.True(t, IsStop(stop))
	require.False(t, IsPlatform(stop))

	platform := testutil.Platform(2, 0, 0)
	require.True(t, IsPlatform(platform))
	require.False(t, IsStop(platform))
}

func TestIsTrackRequiresWayWithRailwayType(t *testing.T) {
	track := testutil.Way(1, []int64{1, 2}, map[string]string{"railway": "subway"})
	require.True(t, IsTrack(track))

	notRail := testutil.Way(2, []int64{1, 2}, map[string]string{"railway": "platform"})
	require.False(t, IsTrack(notRail))

	node := testutil.Node(3, 0, 0, map[string]string{"railway": "subway"})
	require.False(t, IsTrack(node))
}

func TestNewStopAreaFromRelationCollectsMembers(t *testing.T) {
	c := NewCity(newTestDescriptor())
	line := testutil.NewTwoStationLine(1, "Alpha", "Beta", 52.1, 13.1, 52.2, 13.2)
	elements := line.Elements()
	osm.CalculateCenters(elements)
	for _, el := range elements {
		c.Add(el)
	}

	station, err := NewStation(line.StationA, c)
	require.NoError(t, err)

	sa := NewStopArea(station, c, line.StopAreaA)
	require.Empty(t, c.Errors)
	require.Contains(t, sa.Stops, osm.ID(line.StopA))
	require.Contains(t, sa.Platforms, osm.ID(line.PlatformA))
}

func TestNewStopAreaNakedStationAttachesNearbyEntrance(t *testing.T) {
	c := NewCity(newTestDescriptor())
	stationEl := testutil.Station(1, "Alpha", 52.1, 13.1)
	entrance := testutil.Node(2, 52.1, 13.1, map[string]string{"railway": "subway_entrance"})
	elements := []*osm.Element{stationEl, entrance}
	osm.CalculateCenters(elements)
	for _, el := range elements {
		c.Add(el)
	}

	station, err := NewStation(stationEl, c)
	require.NoError(t, err)

	sa := NewStopArea(station, c, nil)
	require.Contains(t, sa.Entrances, osm.ID(entrance))
	require.Contains(t, sa.Exits, osm.ID(entrance))
}

func TestNewStopAreaDetectsMultipleStations(t *testing.T) {
	c := NewCity(newTestDescriptor())
	stationA := testutil.Station(1, "Alpha", 52.1, 13.1)
	stationB := testutil.Station(2, "Beta", 52.1, 13.1)
	stopAreaEl := testutil.StopAreaRelation(3, 1, nil, nil)
	stopAreaEl.Members = append(stopAreaEl.Members, testutil.Member(osm.ElementNode, 2, ""))

	elements := []*osm.Element{stationA, stationB, stopAreaEl}
	osm.CalculateCenters(elements)
	for _, el := range elements {
		c.Add(el)
	}

	station, err := NewStation(stationA, c)
	require.NoError(t, err)

	NewStopArea(station, c, stopAreaEl)
	require.True(t, c.Aborted())
	require.Contains(t, c.Errors[len(c.Errors)-1].Message, "multiple stations")
}
