package geo

import (
	"github.com/golang/geo/s2"
)

// ProjectOntoSegment. orthogonal projection of p onto the segment (a,b) in
// lon/lat space. Returns the projected coordinate and the projection
// parameter t clamped to [0,1] (0 = a, 1 = b). Used where the parameter
// matters: snapping and route progress.
func ProjectOntoSegment(a, b, p Coordinate) (Coordinate, float64) {
	dLat := b.Lat - a.Lat
	dLon := b.Lon - a.Lon

	lenSq := dLat*dLat + dLon*dLon
	if lenSq == 0 {
		return a, 0
	}

	t := ((p.Lat-a.Lat)*dLat + (p.Lon-a.Lon)*dLon) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}

	return NewCoordinate(a.Lat+t*dLat, a.Lon+t*dLon), t
}

// ProjectPointToLineCoord. great-circle projection of snap onto the arc
// (pointA, pointB) using s2, clamped to the arc's endpoints.
func ProjectPointToLineCoord(pointA Coordinate, pointB Coordinate,
	snap Coordinate) Coordinate {
	pointAS2 := s2.PointFromLatLng(s2.LatLngFromDegrees(pointA.Lat, pointA.Lon))
	pointBS2 := s2.PointFromLatLng(s2.LatLngFromDegrees(pointB.Lat, pointB.Lon))
	snapS2 := s2.PointFromLatLng(s2.LatLngFromDegrees(snap.Lat, snap.Lon))
	projection := s2.Project(snapS2, pointAS2, pointBS2)
	projectLatLng := s2.LatLngFromPoint(projection)
	return NewCoordinate(projectLatLng.Lat.Degrees(), projectLatLng.Lng.Degrees())
}

// PointLinePerpendicularDistance. distance in meters from snap to the arc
// (pointA, pointB).
func PointLinePerpendicularDistance(pointA Coordinate, pointB Coordinate,
	snap Coordinate) float64 {
	projectionPoint := ProjectPointToLineCoord(pointA, pointB, snap)

	return CalculateHaversineDistance(snap.GetLat(), snap.GetLon(),
		projectionPoint.GetLat(), projectionPoint.GetLon())
}

// SegmentToSegmentDistance. minimum distance in meters between segments
// (a1,a2) and (b1,b2), approximated by projecting each endpoint onto the
// other segment. Pure geometry, no graph access.
func SegmentToSegmentDistance(a1, a2, b1, b2 Coordinate) float64 {
	min := PointLinePerpendicularDistance(b1, b2, a1)
	if d := PointLinePerpendicularDistance(b1, b2, a2); d < min {
		min = d
	}
	if d := PointLinePerpendicularDistance(a1, a2, b1); d < min {
		min = d
	}
	if d := PointLinePerpendicularDistance(a1, a2, b2); d < min {
		min = d
	}
	return min
}
