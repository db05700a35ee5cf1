package main

import (
	"log"
	"math"

	polyclip "github.com/akavel/polyclip-go"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// MergeZones unions overlapping or contained no-go zones into disjoint
// regions, so downstream planning never double-checks the same area
func MergeZones(zones []orb.Polygon) []orb.Polygon {
	valid := make([]orb.Polygon, 0, len(zones))
	for _, z := range zones {
		if len(z) > 0 && len(z[0]) >= 3 {
			valid = append(valid, z)
		}
	}
	if len(valid) <= 1 {
		return valid
	}

	acc := toPolyclip(valid[0])
	for _, z := range valid[1:] {
		acc = acc.Construct(polyclip.UNION, toPolyclip(z))
	}

	merged := fromPolyclip(acc)
	log.Printf("   Zones after union: %d (from %d)\n", len(merged), len(valid))
	return merged
}

// toPolyclip converts an orb polygon, dropping each ring's closing vertex
func toPolyclip(p orb.Polygon) polyclip.Polygon {
	out := make(polyclip.Polygon, 0, len(p))
	for _, ring := range p {
		n := len(ring)
		if n >= 2 && ring.Closed() {
			n--
		}
		if n < 3 {
			continue
		}
		contour := make(polyclip.Contour, 0, n)
		for i := 0; i < n; i++ {
			contour = append(contour, polyclip.Point{X: ring[i][0], Y: ring[i][1]})
		}
		out = append(out, contour)
	}
	return out
}

// fromPolyclip rebuilds orb polygons from result contours. A contour nested
// inside an odd number of others is a hole and is attached to a containing
// outer ring.
func fromPolyclip(p polyclip.Polygon) []orb.Polygon {
	rings := make([]orb.Ring, 0, len(p))
	for _, contour := range p {
		if len(contour) < 3 {
			continue
		}
		ring := make(orb.Ring, 0, len(contour)+1)
		for _, pt := range contour {
			ring = append(ring, orb.Point{pt.X, pt.Y})
		}
		ring = append(ring, ring[0])
		rings = append(rings, ring)
	}

	depths := make([]int, len(rings))
	for i, ring := range rings {
		for j, other := range rings {
			if i == j {
				continue
			}
			if IsPointInRing(ring[0], other) {
				depths[i]++
			}
		}
	}

	var polygons []orb.Polygon
	holes := make([]orb.Ring, 0)
	for i, ring := range rings {
		if depths[i]%2 == 0 {
			polygons = append(polygons, orb.Polygon{ring})
		} else {
			holes = append(holes, ring)
		}
	}

	for _, hole := range holes {
		for i := range polygons {
			if IsPointInRing(hole[0], polygons[i][0]) {
				polygons[i] = append(polygons[i], hole)
				break
			}
		}
	}

	return polygons
}

// BufferZone dilates a zone by pushing each outer-ring vertex the clearance
// distance radially outward from the centroid. Holes are dropped: a buffered
// zone blocks its full area.
func BufferZone(zone orb.Polygon, clearance float64) orb.Polygon {
	if len(zone) == 0 || len(zone[0]) < 3 || clearance <= 0 {
		return zone
	}

	centroid, _ := planar.CentroidArea(zone)
	outer := zone[0]
	buffered := make(orb.Ring, len(outer))
	for i, v := range outer {
		dx := v[0] - centroid[0]
		dy := v[1] - centroid[1]
		mag := math.Hypot(dx, dy)
		if mag < 1e-9 {
			buffered[i] = v
			continue
		}
		buffered[i] = orb.Point{
			v[0] + dx/mag*clearance,
			v[1] + dy/mag*clearance,
		}
	}
	return orb.Polygon{buffered}
}

// BufferZones dilates every zone by the clearance distance
func BufferZones(zones []orb.Polygon, clearance float64) []orb.Polygon {
	if clearance <= 0 {
		return zones
	}
	out := make([]orb.Polygon, len(zones))
	for i, z := range zones {
		out[i] = BufferZone(z, clearance)
	}
	return out
}
