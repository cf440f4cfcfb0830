package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceZero(t *testing.T) {
	p := Point{Lon: 37.6, Lat: 55.7}
	assert.Equal(t, 0.0, Distance(p, p))
}

func TestDistanceKnownSpan(t *testing.T) {
	// Roughly one degree of longitude at the equator is ~111.3km.
	p1 := Point{Lon: 0, Lat: 0}
	p2 := Point{Lon: 1, Lat: 0}
	d := Distance(p1, p2)
	assert.InDelta(t, 111319.5, d, 100)
}

func TestProjectOnSegmentMidpoint(t *testing.T) {
	p1 := Point{Lon: 0, Lat: 0}
	p2 := Point{Lon: 10, Lat: 0}
	u, ok := ProjectOnSegment(Point{Lon: 5, Lat: 1}, p1, p2)
	assert.True(t, ok)
	assert.InDelta(t, 0.5, u, 1e-9)
}

func TestProjectOnSegmentOutsideRange(t *testing.T) {
	p1 := Point{Lon: 0, Lat: 0}
	p2 := Point{Lon: 10, Lat: 0}
	_, ok := ProjectOnSegment(Point{Lon: 20, Lat: 1}, p1, p2)
	assert.False(t, ok)
}

func TestProjectOnSegmentDegenerate(t *testing.T) {
	p1 := Point{Lon: 1, Lat: 1}
	_, ok := ProjectOnSegment(Point{Lon: 1, Lat: 1}, p1, p1)
	assert.False(t, ok)
}

func TestProjectOnLineFindsClosestSegment(t *testing.T) {
	line := []Point{{Lon: 0, Lat: 0}, {Lon: 1, Lat: 0}, {Lon: 2, Lat: 0}}
	result := ProjectOnLine(Point{Lon: 1.5, Lat: 0.0001}, line, 50)
	assert.True(t, result.Found)
	assert.Len(t, result.PositionsOnLine, 1)
	assert.InDelta(t, 1.5, result.PositionsOnLine[0], 0.01)
}

func TestProjectOnLineTooShort(t *testing.T) {
	result := ProjectOnLine(Point{Lon: 0, Lat: 0}, []Point{{Lon: 0, Lat: 0}}, 50)
	assert.False(t, result.Found)
}

func TestFindSegmentOnVertex(t *testing.T) {
	line := []Point{{Lon: 0, Lat: 0}, {Lon: 1, Lat: 0}, {Lon: 2, Lat: 0}}
	seg, pos, ok := FindSegment(Point{Lon: 1, Lat: 0}, line, 0)
	assert.True(t, ok)
	assert.Equal(t, 0, seg)
	assert.Equal(t, 1.0, pos)
}

func TestFindSegmentNotOnLine(t *testing.T) {
	line := []Point{{Lon: 0, Lat: 0}, {Lon: 1, Lat: 0}}
	_, _, ok := FindSegment(Point{Lon: 5, Lat: 5}, line, 0)
	assert.False(t, ok)
}

func TestDistanceOnLineSameSegment(t *testing.T) {
	line := []Point{{Lon: 0, Lat: 0}, {Lon: 10, Lat: 0}}
	d, next, ok := DistanceOnLine(Point{Lon: 2, Lat: 0}, Point{Lon: 8, Lat: 0}, line, 0)
	assert.True(t, ok)
	assert.Equal(t, 0, next)
	assert.Greater(t, d, 0.0)
}

func TestDistanceOnLineAcrossSegments(t *testing.T) {
	line := []Point{{Lon: 0, Lat: 0}, {Lon: 1, Lat: 0}, {Lon: 2, Lat: 0}, {Lon: 3, Lat: 0}}
	d, next, ok := DistanceOnLine(Point{Lon: 0.5, Lat: 0}, Point{Lon: 2.5, Lat: 0}, line, 0)
	assert.True(t, ok)
	assert.Equal(t, 2, next)
	assert.Greater(t, d, 0.0)
}

func TestDistanceOnLineUnprojectable(t *testing.T) {
	line := []Point{{Lon: 0, Lat: 0}, {Lon: 1, Lat: 0}}
	_, _, ok := DistanceOnLine(Point{Lon: 5, Lat: 5}, Point{Lon: 6, Lat: 6}, line, 0)
	assert.False(t, ok)
}

func TestAngleBetweenRightAngle(t *testing.T) {
	c := Point{Lon: 0, Lat: 0}
	p1 := Point{Lon: 1, Lat: 0}
	p2 := Point{Lon: 0, Lat: 1}
	assert.Equal(t, 90.0, AngleBetween(p1, c, p2))
}

func TestAngleBetweenStraightLine(t *testing.T) {
	c := Point{Lon: 0, Lat: 0}
	p1 := Point{Lon: -1, Lat: 0}
	p2 := Point{Lon: 1, Lat: 0}
	assert.Equal(t, 180.0, AngleBetween(p1, c, p2))
}
