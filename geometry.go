package main

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Pose represents a planar position plus a heading in radians, normalized to (-pi, pi]
type Pose struct {
	Position orb.Point `json:"position"`
	Heading  float64   `json:"heading"`
}

// NewPose builds a pose with a normalized heading
func NewPose(x, y, heading float64) Pose {
	return Pose{Position: orb.Point{x, y}, Heading: NormalizeAngle(heading)}
}

// Finite reports whether every pose component is a finite number
func (p Pose) Finite() bool {
	return isFinite(p.Position[0]) && isFinite(p.Position[1]) && isFinite(p.Heading)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// NormalizeAngle wraps an angle in radians into (-pi, pi]
func NormalizeAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a <= -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

// AngleDiff returns the wrapped signed difference a-b
func AngleDiff(a, b float64) float64 {
	return NormalizeAngle(a - b)
}

// Bearing returns the direction of travel from one point to another
func Bearing(from, to orb.Point) float64 {
	return math.Atan2(to[1]-from[1], to[0]-from[0])
}

// Interpolate returns the point a fraction t of the way from p1 to p2
func Interpolate(p1, p2 orb.Point, t float64) orb.Point {
	return orb.Point{
		p1[0] + (p2[0]-p1[0])*t,
		p1[1] + (p2[1]-p1[1])*t,
	}
}

// LineSegment represents a line segment between two points
type LineSegment struct {
	P1, P2 orb.Point
}

// DoSegmentsIntersect checks if two line segments intersect
func DoSegmentsIntersect(seg1, seg2 LineSegment) bool {
	p1, p2 := seg1.P1, seg1.P2
	p3, p4 := seg2.P1, seg2.P2

	// Check if the segments are the same or share endpoints
	if (p1 == p3 && p2 == p4) || (p1 == p4 && p2 == p3) {
		return false
	}
	if p1 == p3 || p1 == p4 || p2 == p3 || p2 == p4 {
		return false
	}

	d1 := direction(p3, p4, p1)
	d2 := direction(p3, p4, p2)
	d3 := direction(p1, p2, p3)
	d4 := direction(p1, p2, p4)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}

	// Check for collinear cases
	if d1 == 0 && onSegment(p3, p4, p1) {
		return true
	}
	if d2 == 0 && onSegment(p3, p4, p2) {
		return true
	}
	if d3 == 0 && onSegment(p1, p2, p3) {
		return true
	}
	if d4 == 0 && onSegment(p1, p2, p4) {
		return true
	}

	return false
}

// direction calculates the cross product to determine orientation
func direction(p1, p2, p3 orb.Point) float64 {
	return (p3[0]-p1[0])*(p2[1]-p1[1]) - (p2[0]-p1[0])*(p3[1]-p1[1])
}

// onSegment checks if point q lies on segment pr
func onSegment(p, r, q orb.Point) bool {
	return q[0] <= math.Max(p[0], r[0]) && q[0] >= math.Min(p[0], r[0]) &&
		q[1] <= math.Max(p[1], r[1]) && q[1] >= math.Min(p[1], r[1])
}

// IsPointInRing checks if a point is inside a ring using ray casting
func IsPointInRing(point orb.Point, ring orb.Ring) bool {
	n := len(ring)
	if n < 3 {
		return false
	}

	count := 0
	for i := 0; i < n; i++ {
		v1 := ring[i]
		v2 := ring[(i+1)%n]

		// Check if the ray from point to the right intersects the edge
		if (v1[1] > point[1]) != (v2[1] > point[1]) {
			slope := (point[0]-v1[0])*(v2[1]-v1[1]) - (v2[0]-v1[0])*(point[1]-v1[1])
			if v2[1] > v1[1] {
				if slope > 0 {
					count++
				}
			} else {
				if slope < 0 {
					count++
				}
			}
		}
	}

	return count%2 == 1
}

// IsPointInPolygon checks if a point is inside a polygon's outer ring and outside its holes
func IsPointInPolygon(point orb.Point, polygon orb.Polygon) bool {
	if len(polygon) == 0 || !IsPointInRing(point, polygon[0]) {
		return false
	}
	for _, hole := range polygon[1:] {
		if IsPointInRing(point, hole) {
			return false
		}
	}
	return true
}

// DoesSegmentIntersectRing checks if a line segment intersects any edge of a ring
func DoesSegmentIntersectRing(seg LineSegment, ring orb.Ring) bool {
	n := len(ring)
	for i := 0; i < n; i++ {
		edge := LineSegment{
			P1: ring[i],
			P2: ring[(i+1)%n],
		}
		if DoSegmentsIntersect(seg, edge) {
			return true
		}
	}
	return false
}

// DoesSegmentIntersectPolygon checks if a line segment intersects any boundary of a polygon
func DoesSegmentIntersectPolygon(seg LineSegment, polygon orb.Polygon) bool {
	for _, ring := range polygon {
		if DoesSegmentIntersectRing(seg, ring) {
			return true
		}
	}
	return false
}

// IsPathClear checks if a straight line path between two points avoids every zone
func IsPathClear(p1, p2 orb.Point, zones []orb.Polygon) bool {
	segment := LineSegment{P1: p1, P2: p2}

	for _, zone := range zones {
		// Check if the segment intersects the polygon boundary
		if DoesSegmentIntersectPolygon(segment, zone) {
			return false
		}

		// Check if either endpoint is inside the polygon
		if IsPointInPolygon(p1, zone) || IsPointInPolygon(p2, zone) {
			return false
		}

		// Check if the midpoint is inside (handles case where segment is entirely inside)
		if IsPointInPolygon(Interpolate(p1, p2, 0.5), zone) {
			return false
		}
	}

	return true
}

// IsPolylineClear checks every consecutive segment of a polyline against the zones
func IsPolylineClear(path orb.LineString, zones []orb.Polygon) bool {
	if len(zones) == 0 || len(path) == 0 {
		return true
	}
	if len(path) == 1 {
		for _, zone := range zones {
			if IsPointInPolygon(path[0], zone) {
				return false
			}
		}
		return true
	}
	for i := 0; i < len(path)-1; i++ {
		if !IsPathClear(path[i], path[i+1], zones) {
			return false
		}
	}
	return true
}

// DoesPolylineIntersectPolygon reports whether a polyline touches or enters a polygon
func DoesPolylineIntersectPolygon(path orb.LineString, polygon orb.Polygon) bool {
	for _, v := range path {
		if IsPointInPolygon(v, polygon) {
			return true
		}
	}
	for i := 0; i < len(path)-1; i++ {
		seg := LineSegment{P1: path[i], P2: path[i+1]}
		if DoesSegmentIntersectPolygon(seg, polygon) {
			return true
		}
		if IsPointInPolygon(Interpolate(path[i], path[i+1], 0.5), polygon) {
			return true
		}
	}
	return false
}

// AppendPath appends src to dst, dropping src's first vertex when it duplicates dst's last
func AppendPath(dst, src orb.LineString) orb.LineString {
	if len(src) == 0 {
		return dst
	}
	start := 0
	if len(dst) > 0 && planar.Distance(dst[len(dst)-1], src[0]) < 1e-9 {
		start = 1
	}
	return append(dst, src[start:]...)
}
