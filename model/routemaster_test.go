package model

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/transit-tools/subway-validator/osm"
	"github.com/transit-tools/subway-validator/testutil"
)

func TestIsRouteMaster(t *testing.T) {
	master := testutil.RouteMasterRelation(1, "M1", []int64{2}, "net")
	require.True(t, IsRouteMaster(master))

	notMaster := testutil.RouteLine(2, "M1", []int64{3, 4}, 5)
	require.False(t, IsRouteMaster(notMaster))
}

func TestRouteMasterAddFillsMissingAttributesFromFirstRoute(t *testing.T) {
	c := NewCity(newTestDescriptor())
	line := testutil.NewTwoStationLine(1, "Alpha", "Beta", 52.1, 13.1, 52.2, 13.2)
	elements := line.Elements()
	osm.CalculateCenters(elements)
	for _, el := range elements {
		c.Add(el)
	}

	rm := NewRouteMaster(nil)
	require.Empty(t, rm.ID)

	route := NewRoute(line.Route, c, nil)
	rm.Add(route, c)

	require.Equal(t, route.ID, rm.ID)
	require.Equal(t, "subway", rm.Mode)
	require.Len(t, rm.Routes, 1)
	require.Same(t, route, rm.BestRoute)
}

func TestRouteMasterAddErrorsOnModeMismatch(t *testing.T) {
	c := NewCity(newTestDescriptor())
	rm := &RouteMaster{ID: "r1", Mode: "subway"}
	busRoute := &Route{ID: "r2", Mode: "bus", Stops: nil}
	rm.Add(busRoute, c)
	require.NotEmpty(t, c.Errors)
	require.Contains(t, c.Errors[0].Message, "mode bus")
}
