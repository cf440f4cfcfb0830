package registry

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleCSV = `id,name,country,continent,num_stations,num_lines,num_light_lines,num_interchanges,bbox,networks
r123,Berlin,Germany,Europe,173,10,0,12,"52.3,13.0,52.6,13.7",subway:BVG;S-Bahn
,Paris,France,Europe,303,16,0,62,"48.7,2.1,49.0,2.6",subway
r789,NoBBox,Spain,Europe,10,1,0,0,,subway
`

func TestLoadSkipsHeaderAndInvalidRows(t *testing.T) {
	descriptors, err := Load(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, descriptors, 1, "rows missing an id or a bbox are dropped")

	d := descriptors[0]
	require.Equal(t, "r123", d.ID)
	require.Equal(t, "Berlin", d.Name)
	require.Equal(t, 173, d.NumStations)
	require.Equal(t, 12, d.NumInterchanges)
	require.Equal(t, []string{"subway"}, d.Modes)
	require.Equal(t, []string{"BVG", "S-Bahn"}, d.Networks)
}

func TestLoadReordersBBox(t *testing.T) {
	descriptors, err := Load(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, descriptors, 1)

	// registry order is "minlat,minlon,maxlat,maxlon"; internal order is
	// (minLon, minLat, maxLon, maxLat).
	bbox := descriptors[0].BBox
	require.InDelta(t, 13.0, bbox.MinLon, 1e-9)
	require.InDelta(t, 52.3, bbox.MinLat, 1e-9)
	require.InDelta(t, 13.7, bbox.MaxLon, 1e-9)
	require.InDelta(t, 52.6, bbox.MaxLat, 1e-9)
}

func TestParseNetworksWithoutModes(t *testing.T) {
	modes, networks := parseNetworks("BVG;S-Bahn")
	require.Nil(t, modes)
	require.Equal(t, []string{"BVG", "S-Bahn"}, networks)
}

func TestLoadEmpty(t *testing.T) {
	descriptors, err := Load(strings.NewReader(""))
	require.NoError(t, err)
	require.Nil(t, descriptors)
}
