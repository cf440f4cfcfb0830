package osm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestElementID(t *testing.T) {
	n := &Element{Type: ElementNode, ID: 42}
	w := &Element{Type: ElementWay, ID: 7}
	r := &Element{Type: ElementRelation, ID: 1}
	assert.Equal(t, "n42", ID(n))
	assert.Equal(t, "w7", ID(w))
	assert.Equal(t, "r1", ID(r))
}

func TestNetworkPrefersNetworkMetro(t *testing.T) {
	el := &Element{Tags: map[string]string{
		"network":       "City Metro",
		"network:metro": "Precise Metro",
		"operator":      "City Transit Authority",
	}}
	assert.Equal(t, "Precise Metro", Network(el))
}

func TestNetworkFallsBackToOperator(t *testing.T) {
	el := &Element{Tags: map[string]string{"operator": "City Transit Authority"}}
	assert.Equal(t, "City Transit Authority", Network(el))
}

func TestCalculateCentersForWay(t *testing.T) {
	n1 := &Element{Type: ElementNode, ID: 1, Lon: 0, Lat: 0}
	n2 := &Element{Type: ElementNode, ID: 2, Lon: 10, Lat: 0}
	way := &Element{Type: ElementWay, ID: 10, Nodes: []int64{1, 2}}

	CalculateCenters([]*Element{n1, n2, way})

	require.NotNil(t, way.Center)
	assert.InDelta(t, 5.0, way.Center.Lon, 1e-9)
	assert.InDelta(t, 0.0, way.Center.Lat, 1e-9)
}

func TestCalculateCentersClosedWayDoesNotDoubleCountSharedNode(t *testing.T) {
	n1 := &Element{Type: ElementNode, ID: 1, Lon: 0, Lat: 0}
	n2 := &Element{Type: ElementNode, ID: 2, Lon: 10, Lat: 0}
	n3 := &Element{Type: ElementNode, ID: 3, Lon: 10, Lat: 10}
	way := &Element{Type: ElementWay, ID: 10, Nodes: []int64{1, 2, 3, 1}}

	CalculateCenters([]*Element{n1, n2, n3, way})

	require.NotNil(t, way.Center)
	assert.InDelta(t, (0.0+10.0+10.0)/3, way.Center.Lon, 1e-9)
	assert.InDelta(t, (0.0+0.0+10.0)/3, way.Center.Lat, 1e-9)
}

func TestCalculateCentersRelationOfRelationsRetries(t *testing.T) {
	n1 := &Element{Type: ElementNode, ID: 1, Lon: 0, Lat: 0}
	n2 := &Element{Type: ElementNode, ID: 2, Lon: 10, Lat: 0}
	stopArea := &Element{
		Type: ElementRelation, ID: 100,
		Members: []Member{{Type: ElementNode, Ref: 1}, {Type: ElementNode, Ref: 2}},
	}
	// This relation depends on stopArea's center but appears before it
	// is resolved in a single left-to-right pass; the retry loop must
	// pick it up.
	stopAreaGroup := &Element{
		Type: ElementRelation, ID: 200,
		Members: []Member{{Type: ElementRelation, Ref: 100}},
	}

	CalculateCenters([]*Element{n1, n2, stopAreaGroup, stopArea})

	require.NotNil(t, stopArea.Center)
	require.NotNil(t, stopAreaGroup.Center)
	assert.InDelta(t, 5.0, stopAreaGroup.Center.Lon, 1e-9)
}

func TestCalculateCentersEmptyWayUnresolved(t *testing.T) {
	way := &Element{Type: ElementWay, ID: 10, Nodes: nil}
	CalculateCenters([]*Element{way})
	assert.Nil(t, way.Center)
}
