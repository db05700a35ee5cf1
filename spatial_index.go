package main

import (
	"math"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
)

// zoneEntry wraps a no-go polygon for R-tree storage
type zoneEntry struct {
	Zone orb.Polygon
	BBox rtreego.Rect
}

// Bounds implements rtreego.Spatial interface
func (z *zoneEntry) Bounds() rtreego.Rect {
	return z.BBox
}

// ObstacleSet holds the no-go zones of one planning run behind an R-tree so
// collision checks only visit zones whose bounding boxes overlap the query.
// Read-only once built.
type ObstacleSet struct {
	zones []orb.Polygon
	tree  *rtreego.Rtree
}

// NewObstacleSet indexes the given zones
func NewObstacleSet(zones []orb.Polygon) *ObstacleSet {
	tree := rtreego.NewTree(2, 25, 50) // 2D, min 25, max 50 entries per node

	kept := make([]orb.Polygon, 0, len(zones))
	for _, zone := range zones {
		if len(zone) == 0 || len(zone[0]) < 3 {
			continue
		}
		rect, err := boundToRect(zone.Bound())
		if err != nil {
			continue
		}
		kept = append(kept, zone)
		tree.Insert(&zoneEntry{Zone: zone, BBox: rect})
	}

	return &ObstacleSet{zones: kept, tree: tree}
}

// Len returns the number of indexed zones
func (os *ObstacleSet) Len() int {
	if os == nil {
		return 0
	}
	return len(os.zones)
}

// Zones returns every indexed zone
func (os *ObstacleSet) Zones() []orb.Polygon {
	if os == nil {
		return nil
	}
	return os.zones
}

// ZonesNear returns the zones whose bounding boxes intersect the given bound
func (os *ObstacleSet) ZonesNear(bound orb.Bound) []orb.Polygon {
	if os == nil || len(os.zones) == 0 {
		return nil
	}
	rect, err := boundToRect(bound)
	if err != nil {
		return os.zones
	}

	results := os.tree.SearchIntersect(rect)
	zones := make([]orb.Polygon, 0, len(results))
	for _, item := range results {
		zones = append(zones, item.(*zoneEntry).Zone)
	}
	return zones
}

// SegmentClear reports whether a straight segment avoids every zone
func (os *ObstacleSet) SegmentClear(p1, p2 orb.Point) bool {
	if os.Len() == 0 {
		return true
	}
	candidates := os.ZonesNear(orb.MultiPoint{p1, p2}.Bound())
	return IsPathClear(p1, p2, candidates)
}

// PolylineClear reports whether every segment of a polyline avoids every zone
func (os *ObstacleSet) PolylineClear(path orb.LineString) bool {
	if os.Len() == 0 || len(path) == 0 {
		return true
	}
	candidates := os.ZonesNear(path.Bound())
	return IsPolylineClear(path, candidates)
}

// IntersectingZones returns the zones a polyline touches or enters
func (os *ObstacleSet) IntersectingZones(path orb.LineString) []orb.Polygon {
	if os.Len() == 0 || len(path) == 0 {
		return nil
	}
	var hit []orb.Polygon
	for _, zone := range os.ZonesNear(path.Bound()) {
		if DoesPolylineIntersectPolygon(path, zone) {
			hit = append(hit, zone)
		}
	}
	return hit
}

// boundToRect converts an orb bound to an R-tree rect, padding degenerate axes
func boundToRect(b orb.Bound) (rtreego.Rect, error) {
	return rtreego.NewRect(
		rtreego.Point{b.Min[0], b.Min[1]},
		[]float64{
			math.Max(b.Max[0]-b.Min[0], 1e-9),
			math.Max(b.Max[1]-b.Min[1], 1e-9),
		},
	)
}

// RouteBound calculates the bounding box for a route with margin
func RouteBound(start, end orb.Point, margin float64) orb.Bound {
	return orb.Bound{
		Min: orb.Point{
			math.Min(start[0], end[0]) - margin,
			math.Min(start[1], end[1]) - margin,
		},
		Max: orb.Point{
			math.Max(start[0], end[0]) + margin,
			math.Max(start[1], end[1]) + margin,
		},
	}
}

const nodeRectTol = 1e-6

// nodeEntry adapts one planner tree node position for R-tree storage
type nodeEntry struct {
	index int
	loc   rtreego.Point
}

// Bounds implements rtreego.Spatial interface
func (e *nodeEntry) Bounds() rtreego.Rect {
	return e.loc.ToRect(nodeRectTol)
}

// nodeIndex answers nearest-neighbour queries over planner tree nodes by
// Euclidean position
type nodeIndex struct {
	tree *rtreego.Rtree
}

func newNodeIndex() *nodeIndex {
	return &nodeIndex{tree: rtreego.NewTree(2, 25, 50)}
}

// Insert registers a tree node's position under its index
func (ni *nodeIndex) Insert(index int, p orb.Point) {
	ni.tree.Insert(&nodeEntry{index: index, loc: rtreego.Point{p[0], p[1]}})
}

// Nearest returns the index of the node closest to the given position
func (ni *nodeIndex) Nearest(p orb.Point) (int, bool) {
	got := ni.tree.NearestNeighbor(rtreego.Point{p[0], p[1]})
	if got == nil {
		return 0, false
	}
	return got.(*nodeEntry).index, true
}
