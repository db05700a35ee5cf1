package main

import (
	"log"
	"math/rand"
	"sort"

	"github.com/paulmach/orb/planar"
)

// DeviationParams bounds the per-line replanning pass. Margin expands each
// line's bounding box into the planner's sampling window.
type DeviationParams struct {
	Margin float64
	Plan   PlanParams
	Rand   *rand.Rand
}

// ApplyDeviations replans every "to be acquired" line that crosses a no-go
// zone, substituting the deviation polyline for the line's geometry and
// recomputing its length. Lines that cannot be replanned get DeviationFailed
// set so the sequencer skips them; the pass itself never fails. Lines are
// visited in id order so repeated runs with the same seed produce the same
// geometry.
func ApplyDeviations(lines map[int]*SurveyLine, obstacles *ObstacleSet, dp DeviationParams) {
	if obstacles.Len() == 0 || len(lines) == 0 {
		return
	}

	ids := make([]int, 0, len(lines))
	for id := range lines {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	for _, id := range ids {
		line := lines[id]
		if line == nil || !line.Usable() || len(line.Geometry) < 2 {
			continue
		}
		hits := obstacles.IntersectingZones(line.Geometry)
		if len(hits) == 0 {
			continue
		}
		log.Printf("⚠️ Line %d crosses %d no-go zone(s), planning deviation", id, len(hits))

		entry, okEntry := line.EntryPose(LowToHigh)
		exit, okExit := line.ExitPose(LowToHigh)
		if !okEntry || !okExit {
			line.DeviationFailed = true
			continue
		}

		plan := dp.Plan
		bound := line.Geometry.Bound().Pad(dp.Margin)
		plan.Bounds = &bound

		path, stats, ok := PlanPath(entry, exit, obstacles, plan, dp.Rand)
		if !ok {
			log.Printf("❌ Deviation failed for line %d after %d iterations, excluding it", id, stats.Iterations)
			line.DeviationFailed = true
			continue
		}

		if simplified := SimplifyPath(path, pathSimplifyTol); len(simplified) >= 2 && obstacles.PolylineClear(simplified) {
			path = simplified
		}

		line.Geometry = path
		line.Length = planar.Length(path)
		line.Deviated = true
		log.Printf("✅ Line %d deviated, new length %.1f m (%d vertices)", id, line.Length, len(path))
	}
}
