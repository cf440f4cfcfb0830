package osmsource

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/transit-tools/subway-validator/osm"
)

const sampleOverpassJSON = `{
  "elements": [
    {"type": "node", "id": 1, "lat": 52.5, "lon": 13.4, "tags": {"railway": "station", "name": "Alexanderplatz"}},
    {"type": "node", "id": 2, "lat": 52.51, "lon": 13.41},
    {"type": "way", "id": 10, "nodes": [1, 2], "tags": {"railway": "subway"}},
    {"type": "relation", "id": 100, "members": [
      {"type": "node", "ref": 1, "role": "stop"},
      {"type": "way", "ref": 10, "role": ""}
    ], "tags": {"type": "route", "route": "subway"}, "center": {"lat": 52.505, "lon": 13.405}}
  ]
}`

func TestLoadOverpassJSON(t *testing.T) {
	elements, err := LoadOverpassJSON([]byte(sampleOverpassJSON))
	require.NoError(t, err)
	require.Len(t, elements, 4)

	byID := map[string]*osm.Element{}
	for _, el := range elements {
		byID[osm.ID(el)] = el
	}

	require.Equal(t, "Alexanderplatz", byID["n1"].Tags["name"])
	require.Equal(t, []int64{1, 2}, byID["w10"].Nodes)

	rel := byID["r100"]
	require.Len(t, rel.Members, 2)
	require.NotNil(t, rel.Center)
	require.InDelta(t, 52.505, rel.Center.Lat, 1e-9)
}

func TestParseAndEncodeRoundTrip(t *testing.T) {
	parsed, err := ParseOverpassJSON([]byte(sampleOverpassJSON))
	require.NoError(t, err)
	require.Len(t, parsed, 4)

	encoded, err := EncodeOverpassJSON(parsed)
	require.NoError(t, err)

	reparsed, err := ParseOverpassJSON(encoded)
	require.NoError(t, err)
	require.Len(t, reparsed, 4)
}

func TestMergeElements(t *testing.T) {
	encodedA, err := EncodeOverpassJSON(mustParse(t, sampleOverpassJSON)[:2])
	require.NoError(t, err)
	encodedB, err := EncodeOverpassJSON(mustParse(t, sampleOverpassJSON)[2:])
	require.NoError(t, err)

	merged := mergeElements(encodedA, encodedB)
	elements, err := LoadOverpassJSON(merged)
	require.NoError(t, err)
	require.Len(t, elements, 4)
}

func mustParse(t *testing.T, data string) []overpassElement {
	t.Helper()
	parsed, err := ParseOverpassJSON([]byte(data))
	require.NoError(t, err)
	return parsed
}
