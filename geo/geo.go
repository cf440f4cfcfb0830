// Package geo implements the projection and distance primitives used to
// reconstruct rail geometry from OSM way geometry: equirectangular
// distance, point-to-segment and point-to-polyline projection, and
// distance-along-line measurement.
package geo

import "math"

// earthRadius is the sphere radius used by the equirectangular
// approximation, in meters.
const earthRadius = 6378137.0

// Point is a longitude/latitude pair in degrees.
type Point struct {
	Lon, Lat float64
}

// Distance returns the equirectangular approximation of the great-circle
// distance between p1 and p2, in meters. Accurate enough over the short
// spans (station platforms, route segments) this package operates on.
func Distance(p1, p2 Point) float64 {
	dx := toRadians(p1.Lon-p2.Lon) * math.Cos(0.5*toRadians(p1.Lat+p2.Lat))
	dy := toRadians(p1.Lat - p2.Lat)
	return earthRadius * math.Sqrt(dx*dx+dy*dy)
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// isNear reports whether p1 and p2 are the same point to within floating
// point noise.
func isNear(p1, p2 Point) bool {
	const eps = 1e-8
	return p1.Lon-eps <= p2.Lon && p2.Lon <= p1.Lon+eps &&
		p1.Lat-eps <= p2.Lat && p2.Lat <= p1.Lat+eps
}

// ProjectOnSegment returns u, the position of the projection of p onto
// segment p1-p2 relative to p1 and the p2-p1 direction vector, and ok
// false if the segment is degenerate or the projection falls outside
// [0, 1].
func ProjectOnSegment(p, p1, p2 Point) (u float64, ok bool) {
	dx := p2.Lon - p1.Lon
	dy := p2.Lat - p1.Lat
	d2 := dx*dx + dy*dy
	if d2 < 1e-14 {
		return 0, false
	}
	u = ((p.Lon-p1.Lon)*dx + (p.Lat-p1.Lat)*dy) / d2
	if u < 0 || u > 1 {
		return 0, false
	}
	return u, true
}

// LineProjection is the result of projecting a point onto a polyline.
type LineProjection struct {
	// PositionsOnLine holds the vertex index (or fractional segment
	// index, seg+u) of each closest occurrence of the point on the
	// line. More than one entry occurs when the line revisits the same
	// tracks, e.g. a route that doubles back on itself.
	PositionsOnLine []float64
	ProjectedPoint  Point
	Found           bool
}

// ProjectOnLine projects p onto line, checking both vertices and
// segments, and returns the closest occurrence(s). maxDistanceStopToLine
// bounds the search: points farther than 5x that distance from every
// vertex and segment are not matched.
func ProjectOnLine(p Point, line []Point, maxDistanceStopToLine float64) LineProjection {
	var result LineProjection
	if len(line) < 2 {
		return result
	}

	dMin := maxDistanceStopToLine * 5
	closestToVertex := false

	for i, vertex := range line {
		d := Distance(p, vertex)
		if d < dMin {
			result.PositionsOnLine = []float64{float64(i)}
			result.ProjectedPoint = vertex
			dMin = d
			closestToVertex = true
			result.Found = true
		} else if result.Found && vertex == result.ProjectedPoint {
			result.PositionsOnLine = append(result.PositionsOnLine, float64(i))
		}
	}

	for seg := 0; seg < len(line)-1; seg++ {
		a, b := line[seg], line[seg+1]
		minLon, maxLon := math.Min(a.Lon, b.Lon), math.Max(a.Lon, b.Lon)
		minLat, maxLat := math.Min(a.Lat, b.Lat), math.Max(a.Lat, b.Lat)
		if p.Lon < minLon-maxDistanceStopToLine || p.Lon > maxLon+maxDistanceStopToLine ||
			p.Lat < minLat-maxDistanceStopToLine || p.Lat > maxLat+maxDistanceStopToLine {
			continue
		}
		u, ok := ProjectOnSegment(p, a, b)
		if !ok {
			continue
		}
		projected := Point{
			Lon: a.Lon + u*(b.Lon-a.Lon),
			Lat: a.Lat + u*(b.Lat-a.Lat),
		}
		d := Distance(p, projected)
		if d < dMin {
			result.PositionsOnLine = []float64{float64(seg) + u}
			result.ProjectedPoint = projected
			dMin = d
			closestToVertex = false
			result.Found = true
		} else if result.Found && projected == result.ProjectedPoint && !closestToVertex {
			result.PositionsOnLine = append(result.PositionsOnLine, float64(seg)+u)
		}
	}

	return result
}

// FindSegment returns the index of the segment of line that contains p,
// and the position of p within that segment, searching from startVertex
// onward. ok is false if no segment contains p.
func FindSegment(p Point, line []Point, startVertex int) (seg int, pos float64, ok bool) {
	const eps = 1e-9
	for seg := startVertex; seg < len(line)-1; seg++ {
		a, b := line[seg], line[seg+1]
		if isNear(p, a) {
			return seg, 0.0, true
		}

		var px, py float64
		pxOK, pyOK := false, true

		if a.Lon == b.Lon {
			if !(p.Lon-eps <= a.Lon && a.Lon <= p.Lon+eps) {
				continue
			}
			pxOK = false
		} else {
			px = (p.Lon - a.Lon) / (b.Lon - a.Lon)
			if px < 0 || px > 1 {
				continue
			}
			pxOK = true
		}

		if a.Lat == b.Lat {
			if !(p.Lat-eps <= a.Lat && a.Lat <= p.Lat+eps) {
				continue
			}
			pyOK = false
		} else {
			py = (p.Lat - a.Lat) / (b.Lat - a.Lat)
			if py < 0 || py > 1 {
				continue
			}
			pyOK = true
		}

		switch {
		case !pxOK && !pyOK:
			return seg, 0.0, true
		case !pxOK:
			return seg, py, true
		case !pyOK:
			return seg, px, true
		case px-eps <= py && py <= px+eps:
			return seg, px, true
		}
	}
	return 0, 0, false
}

// DistanceOnLine computes the distance along line between the
// projections of p1 and p2, searching for p1 from startVertex. It
// returns the distance and the segment index to resume searching from
// for a subsequent point, or ok false if either point fails to project.
// If p2 does not project past p1 and the line is closed, the line is
// extended by one loop to allow wraparound.
func DistanceOnLine(p1, p2 Point, line []Point, startVertex int) (dist float64, nextVertex int, ok bool) {
	lineLen := len(line)
	seg1, pos1, ok1 := FindSegment(p1, line, startVertex)
	if !ok1 {
		return 0, 0, false
	}
	seg2, pos2, ok2 := FindSegment(p2, line, seg1)
	if !ok2 {
		if lineLen > 1 && line[0] == line[lineLen-1] {
			extended := make([]Point, 0, lineLen*2-1)
			extended = append(extended, line...)
			extended = append(extended, line[1:]...)
			seg2, pos2, ok2 = FindSegment(p2, extended, seg1)
			line = extended
		}
		if !ok2 {
			return 0, 0, false
		}
	}

	if seg1 == seg2 {
		return Distance(line[seg1], line[seg1+1]) * math.Abs(pos2-pos1), seg1 % lineLen, true
	}
	if seg2 < seg1 {
		return 0, 0, false
	}

	d := 0.0
	if pos1 < 1 {
		d += Distance(line[seg1], line[seg1+1]) * (1 - pos1)
	}
	for i := seg1 + 1; i < seg2; i++ {
		d += Distance(line[i], line[i+1])
	}
	if pos2 > 0 {
		d += Distance(line[seg2], line[seg2+1]) * pos2
	}
	return d, seg2 % lineLen, true
}

// AngleBetween returns the angle at vertex c formed by rays to p1 and
// p2, in whole degrees in [0, 180].
func AngleBetween(p1, c, p2 Point) float64 {
	a := math.Round(math.Abs(
		radToDeg(math.Atan2(p1.Lat-c.Lat, p1.Lon-c.Lon)) -
			radToDeg(math.Atan2(p2.Lat-c.Lat, p2.Lon-c.Lon)),
	))
	if a <= 180 {
		return a
	}
	return 360 - a
}

func radToDeg(rad float64) float64 {
	return rad * 180.0 / math.Pi
}
