package model

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/transit-tools/subway-validator/osm"
	"github.com/transit-tools/subway-validator/testutil"
)

func TestIsStationRequiresRailwayStationOrHalt(t *testing.T) {
	subway := map[string]bool{"subway": true}

	station := testutil.Station(1, "Alpha", 52.1, 13.1)
	require.True(t, IsStation(station, subway))

	notAStation := testutil.Node(2, 52.1, 13.1, map[string]string{"railway": "stop"})
	require.False(t, IsStation(notAStation, subway))
}

func TestIsStationRejectsConstruction(t *testing.T) {
	subway := map[string]bool{"subway": true}
	underConstruction := testutil.Node(1, 52.1, 13.1, map[string]string{
		"railway":      "station",
		"station":      "subway",
		"construction": "yes",
	})
	require.False(t, IsStation(underConstruction, subway))
}

func TestIsStationFiltersByMode(t *testing.T) {
	lightRailOnly := map[string]bool{"light_rail": true}
	subwayStation := testutil.Station(1, "Alpha", 52.1, 13.1)
	require.False(t, IsStation(subwayStation, lightRailOnly))
}

func TestIsStationTrainModeAcceptsAnyStation(t *testing.T) {
	trainTarget := map[string]bool{"train": true}
	subwayStation := testutil.Station(1, "Alpha", 52.1, 13.1)
	require.True(t, IsStation(subwayStation, trainTarget))
}

func TestIsStationTramStopRequiresTramMode(t *testing.T) {
	tramStop := testutil.Node(1, 52.1, 13.1, map[string]string{"railway": "tram_stop"})
	require.True(t, IsStation(tramStop, map[string]bool{"tram": true}))
	require.False(t, IsStation(tramStop, map[string]bool{"subway": true}))
}

func TestNewStationFailsWithoutCenter(t *testing.T) {
	el := &osm.Element{Type: osm.ElementNode, ID: 1, Tags: map[string]string{"railway": "station", "name": "Alpha"}}
	c := NewCity(newTestDescriptor())
	_, err := NewStation(el, c)
	require.Error(t, err)
}

func TestNewStationDefaultsNameAndWarnsOnBadColour(t *testing.T) {
	el := testutil.Node(1, 52.1, 13.1, map[string]string{
		"railway": "station",
		"station": "subway",
		"colour":  "not-a-colour",
	})
	osm.CalculateCenters([]*osm.Element{el})
	c := NewCity(newTestDescriptor())

	s, err := NewStation(el, c)
	require.NoError(t, err)
	require.Equal(t, "?", s.Name)
	require.Empty(t, s.Colour)
	require.NotEmpty(t, c.Warnings)
}
