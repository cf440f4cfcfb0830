package model

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/transit-tools/subway-validator/osm"
	"github.com/transit-tools/subway-validator/testutil"
)

func TestIsRouteRequiresModeRefOrName(t *testing.T) {
	modes := map[string]bool{"subway": true}
	route := testutil.RouteLine(1, "M1", []int64{2, 3}, 10)
	require.True(t, IsRoute(route, modes))

	noMembers := &osm.Element{Type: osm.ElementRelation, Tags: map[string]string{"type": "route", "route": "subway", "ref": "M1"}}
	require.False(t, IsRoute(noMembers, modes))

	wrongMode := map[string]bool{"bus": true}
	require.False(t, IsRoute(route, wrongMode))
}

func TestOsmIntervalToSeconds(t *testing.T) {
	require.Equal(t, 5400, osmIntervalToSeconds("1:30"))
	require.Equal(t, 5*60, osmIntervalToSeconds("5"))
	require.Equal(t, 3661, osmIntervalToSeconds("1:01:01"))
	require.Equal(t, 0, osmIntervalToSeconds("not-a-duration"))
	require.Equal(t, 0, osmIntervalToSeconds("1:99"))
}

func TestParseTimeRange(t *testing.T) {
	start, end, ok := parseTimeRange("24/7")
	require.True(t, ok)
	require.Equal(t, [2]int{0, 0}, start)
	require.Equal(t, [2]int{24, 0}, end)

	start, end, ok = parseTimeRange("Mo-Fr 06:00-22:00")
	require.True(t, ok)
	require.Equal(t, [2]int{6, 0}, start)
	require.Equal(t, [2]int{22, 0}, end)

	_, _, ok = parseTimeRange("")
	require.False(t, ok)
}

func TestNewRouteBuildsStopsFromStopArea(t *testing.T) {
	c := NewCity(newTestDescriptor())
	line := testutil.NewTwoStationLine(1, "Alpha", "Beta", 52.1, 13.1, 52.2, 13.2)
	elements := line.Elements()
	osm.CalculateCenters(elements)
	for _, el := range elements {
		c.Add(el)
	}
	c.ExtractRoutes()
	require.False(t, c.Aborted())

	rm, ok := c.RouteMasters[osm.ID(line.RouteMaster)]
	require.True(t, ok)
	require.Len(t, rm.Routes, 1)

	route := rm.Routes[0]
	require.Len(t, route.Stops, 2)
	require.Equal(t, "subway", route.Mode)
}
