package main

import (
	"math"

	"github.com/paulmach/orb"
)

// SimplifyPath reduces polyline complexity using the Douglas-Peucker
// algorithm. Endpoints are always preserved, so entry and exit poses of a
// simplified turn or deviation stay exact.
func SimplifyPath(path orb.LineString, epsilon float64) orb.LineString {
	if len(path) <= 2 || epsilon <= 0 {
		return path
	}
	return douglasPeucker(path, epsilon)
}

// SimplifyRing reduces ring complexity while keeping it closed
func SimplifyRing(ring orb.Ring, epsilon float64) orb.Ring {
	if len(ring) <= 4 || epsilon <= 0 {
		return ring
	}

	closed := ring.Closed()
	open := orb.LineString(ring)
	if closed {
		open = open[:len(open)-1]
	}

	work := make(orb.LineString, 0, len(open)+1)
	work = append(work, open...)
	work = append(work, open[0])

	simplified := douglasPeucker(work, epsilon)
	if len(simplified) > 1 {
		simplified = simplified[:len(simplified)-1]
	}
	if len(simplified) < 3 {
		return ring // too aggressive, keep the original
	}

	out := orb.Ring(simplified)
	if closed {
		out = append(out, out[0])
	}
	return out
}

// douglasPeucker implements the Douglas-Peucker line simplification algorithm
func douglasPeucker(points orb.LineString, epsilon float64) orb.LineString {
	if len(points) <= 2 {
		return points
	}

	// Find the point with maximum distance from line between first and last
	dmax := 0.0
	index := 0
	end := len(points) - 1

	for i := 1; i < end; i++ {
		d := perpendicularDistance(points[i], points[0], points[end])
		if d > dmax {
			index = i
			dmax = d
		}
	}

	// If max distance is greater than epsilon, recursively simplify
	if dmax > epsilon {
		left := douglasPeucker(points[0:index+1], epsilon)
		right := douglasPeucker(points[index:], epsilon)

		// Combine results (removing duplicate point at index)
		result := make(orb.LineString, 0, len(left)+len(right)-1)
		result = append(result, left[:len(left)-1]...)
		result = append(result, right...)
		return result
	}

	// All points in between can be discarded
	return orb.LineString{points[0], points[end]}
}

// perpendicularDistance calculates perpendicular distance from point to line
func perpendicularDistance(point, lineStart, lineEnd orb.Point) float64 {
	dx := lineEnd[0] - lineStart[0]
	dy := lineEnd[1] - lineStart[1]

	// Normalize
	mag := math.Sqrt(dx*dx + dy*dy)
	if mag > 0 {
		dx /= mag
		dy /= mag
	}

	pvx := point[0] - lineStart[0]
	pvy := point[1] - lineStart[1]

	// Get dot product (project pv onto normalized direction)
	pvdot := dx*pvx + dy*pvy

	// Scale by length to get actual distance
	ax := pvx - pvdot*dx
	ay := pvy - pvdot*dy

	return math.Sqrt(ax*ax + ay*ay)
}
