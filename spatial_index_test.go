package main

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewObstacleSetSkipsDegenerateZones(t *testing.T) {
	zones := []orb.Polygon{
		squareZone(0, 0, 5),
		{orb.Ring{{0, 0}, {1, 1}}}, // two vertices, not a region
		{},
	}
	set := NewObstacleSet(zones)
	assert.Equal(t, 1, set.Len())
	assert.Len(t, set.Zones(), 1)
}

func TestObstacleSetNilReceiver(t *testing.T) {
	var set *ObstacleSet
	assert.Equal(t, 0, set.Len())
	assert.Nil(t, set.Zones())
	assert.Nil(t, set.ZonesNear(orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{1, 1}}))
}

func TestObstacleSetZonesNear(t *testing.T) {
	set := NewObstacleSet([]orb.Polygon{
		squareZone(0, 0, 5),
		squareZone(1000, 1000, 5),
	})

	near := set.ZonesNear(orb.Bound{Min: orb.Point{-10, -10}, Max: orb.Point{10, 10}})
	require.Len(t, near, 1)
	assert.Equal(t, squareZone(0, 0, 5), near[0])

	all := set.ZonesNear(orb.Bound{Min: orb.Point{-10, -10}, Max: orb.Point{1010, 1010}})
	assert.Len(t, all, 2)
}

func TestObstacleSetSegmentClear(t *testing.T) {
	set := NewObstacleSet([]orb.Polygon{squareZone(50, 0, 10)})

	assert.False(t, set.SegmentClear(orb.Point{0, 0}, orb.Point{100, 0}))
	assert.True(t, set.SegmentClear(orb.Point{0, 20}, orb.Point{100, 20}))
	assert.True(t, NewObstacleSet(nil).SegmentClear(orb.Point{0, 0}, orb.Point{100, 0}))
}

func TestObstacleSetPolylineClear(t *testing.T) {
	set := NewObstacleSet([]orb.Polygon{squareZone(50, 0, 10)})

	// Bounding boxes overlap but the geometry goes around the zone
	around := orb.LineString{{0, 0}, {0, 30}, {100, 30}, {100, 0}}
	assert.True(t, set.PolylineClear(around))

	through := orb.LineString{{0, 0}, {100, 0}}
	assert.False(t, set.PolylineClear(through))
}

func TestObstacleSetIntersectingZones(t *testing.T) {
	set := NewObstacleSet([]orb.Polygon{
		squareZone(50, 0, 10),
		squareZone(150, 0, 10),
	})

	hits := set.IntersectingZones(orb.LineString{{0, 0}, {200, 0}})
	assert.Len(t, hits, 2)

	hits = set.IntersectingZones(orb.LineString{{0, 0}, {90, 0}})
	assert.Len(t, hits, 1)

	assert.Empty(t, set.IntersectingZones(orb.LineString{{0, 50}, {200, 50}}))
}

func TestRouteBound(t *testing.T) {
	b := RouteBound(orb.Point{10, 20}, orb.Point{110, 0}, 50)
	assert.Equal(t, orb.Point{-40, -50}, b.Min)
	assert.Equal(t, orb.Point{160, 70}, b.Max)
}

func TestNodeIndexNearest(t *testing.T) {
	idx := newNodeIndex()
	_, ok := idx.Nearest(orb.Point{0, 0})
	assert.False(t, ok, "empty index has no neighbours")

	idx.Insert(0, orb.Point{0, 0})
	idx.Insert(1, orb.Point{100, 0})
	idx.Insert(2, orb.Point{0, 100})

	got, ok := idx.Nearest(orb.Point{90, 10})
	require.True(t, ok)
	assert.Equal(t, 1, got)

	got, ok = idx.Nearest(orb.Point{1, 2})
	require.True(t, ok)
	assert.Equal(t, 0, got)
}
