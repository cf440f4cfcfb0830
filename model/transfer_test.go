package model

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/transit-tools/subway-validator/osm"
	"github.com/transit-tools/subway-validator/testutil"
)

func TestIsStopAreaGroup(t *testing.T) {
	group := testutil.Relation(1, nil, map[string]string{
		"type":             "public_transport",
		"public_transport": "stop_area_group",
	})
	require.True(t, IsStopAreaGroup(group))

	notGroup := testutil.Relation(2, nil, map[string]string{"type": "route"})
	require.False(t, IsStopAreaGroup(notGroup))
}

func TestMakeTransferLinksTwoStopAreas(t *testing.T) {
	c := NewCity(newTestDescriptor())

	lineA := testutil.NewTwoStationLine(1, "Alpha", "Beta", 52.1, 13.1, 52.2, 13.2)
	lineB := testutil.NewTwoStationLine(100, "Gamma", "Delta", 52.3, 13.3, 52.4, 13.4)

	elements := append(lineA.Elements(), lineB.Elements()...)
	osm.CalculateCenters(elements)
	for _, el := range elements {
		c.Add(el)
	}
	c.ExtractRoutes()
	require.False(t, c.Aborted())

	group := testutil.Relation(999, []osm.Member{
		testutil.Member(osm.ElementRelation, lineA.StopAreaA.ID, ""),
		testutil.Member(osm.ElementRelation, lineB.StopAreaA.ID, ""),
	}, map[string]string{
		"type":             "public_transport",
		"public_transport": "stop_area_group",
	})

	c.MakeTransfer(group)
	require.Len(t, c.Transfers, 1)
	require.Len(t, c.Transfers[0].StopAreas, 2)
}
