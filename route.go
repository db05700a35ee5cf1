package main

import (
	"github.com/paulmach/orb"
)

// ReconstructRoute stitches the full vehicle track for a finished sequence:
// each line's geometry oriented by its assigned direction, preceded by the
// turn that reaches it. Turns come out of the cache populated during timing,
// so no new planning happens here. A false result means some piece of the
// track could not be recovered.
func ReconstructRoute(seq *SequenceResult, lines map[int]*SurveyLine, tc TurnConstraints, cache *TurnCache) (orb.LineString, bool) {
	if seq == nil || len(seq.Sequence) == 0 {
		return nil, false
	}

	var route orb.LineString
	for i, id := range seq.Sequence {
		line := lines[id]
		if line == nil {
			return nil, false
		}
		dir, ok := seq.Directions[id]
		if !ok {
			return nil, false
		}

		if i > 0 {
			prevID := seq.Sequence[i-1]
			prev := lines[prevID]
			if prev == nil {
				return nil, false
			}
			exit, ok := prev.ExitPose(seq.Directions[prevID])
			if !ok {
				return nil, false
			}
			entry, ok := line.EntryPose(dir)
			if !ok {
				return nil, false
			}
			turn, ok := GetCachedTurn(prevID, id, dir, exit, entry, tc, cache)
			if !ok {
				return nil, false
			}
			route = AppendPath(route, turn.Geometry)
		}

		route = AppendPath(route, line.Oriented(dir))
	}

	return route, len(route) >= 2
}
