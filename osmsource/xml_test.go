package osmsource

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/transit-tools/subway-validator/osm"
)

const sampleOSMXML = `<?xml version="1.0" encoding="UTF-8"?>
<osm version="0.6">
  <node id="1" lat="52.5" lon="13.4">
    <tag k="railway" v="station"/>
    <tag k="name" v="Alexanderplatz"/>
  </node>
  <node id="2" lat="52.51" lon="13.41"/>
  <way id="10">
    <nd ref="1"/>
    <nd ref="2"/>
    <tag k="railway" v="subway"/>
  </way>
  <relation id="100">
    <member type="node" ref="1" role="stop"/>
    <member type="way" ref="10" role=""/>
    <tag k="type" v="route"/>
    <tag k="route" v="subway"/>
  </relation>
</osm>`

func TestLoadXML(t *testing.T) {
	elements, err := LoadXML(strings.NewReader(sampleOSMXML))
	require.NoError(t, err)
	require.Len(t, elements, 4)

	byID := map[string]*osm.Element{}
	for _, el := range elements {
		byID[osm.ID(el)] = el
	}

	node := byID["n1"]
	require.NotNil(t, node)
	require.Equal(t, "Alexanderplatz", node.Tags["name"])
	require.InDelta(t, 52.5, node.Lat, 1e-9)

	way := byID["w10"]
	require.NotNil(t, way)
	require.Equal(t, []int64{1, 2}, way.Nodes)

	rel := byID["r100"]
	require.NotNil(t, rel)
	require.Len(t, rel.Members, 2)
	require.Equal(t, "stop", rel.Members[0].Role)
	require.Equal(t, osm.ElementWay, rel.Members[1].Type)
}
