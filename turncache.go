package main

import (
	"math/rand"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// pathSimplifyTol is the Douglas-Peucker tolerance, in metres, applied to
// planned geometry before it is stored or substituted
const pathSimplifyTol = 0.5

// TurnKey identifies one inter-line turn: where it starts, where it lands,
// and the direction the destination line will be shot in
type TurnKey struct {
	OriginLine int
	DestLine   int
	DestDir    LineDirection
}

// TurnResult is the cached outcome for a turn key. Failures are cached too,
// so a hopeless turn is never replanned within the same run.
type TurnResult struct {
	Geometry orb.LineString
	Length   float64
	Seconds  float64
	Failed   bool
}

// TurnConstraints carries what turn planning needs from the run configuration
type TurnConstraints struct {
	MinTurnRadius float64
	TransitSpeed  float64
	Obstacles     *ObstacleSet
	Plan          PlanParams
	Rand          *rand.Rand
}

// TurnCache memoizes turn computations within one planning run. Entries are
// write-once per key. Not safe for concurrent use; each run owns exactly one
// cache and clears it before starting.
type TurnCache struct {
	entries map[TurnKey]TurnResult
	hits    int
	misses  int
}

// NewTurnCache returns an empty cache
func NewTurnCache() *TurnCache {
	return &TurnCache{entries: make(map[TurnKey]TurnResult)}
}

// Clear drops every entry, for reuse at the start of a new run
func (c *TurnCache) Clear() {
	c.entries = make(map[TurnKey]TurnResult)
	c.hits = 0
	c.misses = 0
}

// Len returns the number of cached keys, including failure sentinels
func (c *TurnCache) Len() int {
	return len(c.entries)
}

// Stats returns how many lookups hit and missed since the last clear
func (c *TurnCache) Stats() (hits, misses int) {
	return c.hits, c.misses
}

// GetCachedTurn returns the turn connecting an origin line's exit pose to a
// destination line's entry pose, computing and caching it on first request.
// A false result means the turn is infeasible (possibly remembered from an
// earlier failure).
func GetCachedTurn(origin, dest int, destDir LineDirection, exit, entry Pose, tc TurnConstraints, cache *TurnCache) (TurnResult, bool) {
	key := TurnKey{OriginLine: origin, DestLine: dest, DestDir: destDir}

	if r, ok := cache.entries[key]; ok {
		cache.hits++
		return r, !r.Failed
	}
	cache.misses++

	r := computeTurn(exit, entry, tc)
	cache.entries[key] = r
	return r, !r.Failed
}

// computeTurn tries the direct curvature-bounded connection first and falls
// back to the full planner when the direct geometry crosses a no-go zone
func computeTurn(exit, entry Pose, tc TurnConstraints) TurnResult {
	if tc.TransitSpeed <= 0 {
		return TurnResult{Failed: true}
	}

	if path, length, ok := ConnectPoses(exit, entry, tc.MinTurnRadius); ok {
		if tc.Obstacles.PolylineClear(path) {
			return finishTurn(path, length, tc)
		}
	}

	path, _, ok := PlanPath(exit, entry, tc.Obstacles, tc.Plan, tc.Rand)
	if !ok {
		return TurnResult{Failed: true}
	}
	return finishTurn(path, planar.Length(path), tc)
}

// finishTurn simplifies the turn geometry when it stays collision-free and
// converts length to transit time
func finishTurn(path orb.LineString, length float64, tc TurnConstraints) TurnResult {
	if simplified := SimplifyPath(path, pathSimplifyTol); len(simplified) >= 2 && tc.Obstacles.PolylineClear(simplified) {
		path = simplified
	}
	return TurnResult{
		Geometry: path,
		Length:   length,
		Seconds:  length / tc.TransitSpeed,
	}
}
