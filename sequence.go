package main

import (
	"fmt"
	"log"
	"math"
	"sort"

	"github.com/paulmach/orb/planar"
	"gonum.org/v1/gonum/stat"
)

// AcquisitionMode selects the sequencing strategy
type AcquisitionMode string

const (
	ModeRacetrack AcquisitionMode = "racetrack"
	ModeTeardrop  AcquisitionMode = "teardrop"
)

// HeadingPreference is the requested traversal direction for the first line
// (and, in racetrack mode, for the whole run).
type HeadingPreference string

const (
	HeadingNormal     HeadingPreference = "normal"
	HeadingReciprocal HeadingPreference = "reciprocal"
)

// SequenceResult couples a visiting order with its per-line directions and
// the schedule computed for it. Partial marks a teardrop run that stopped
// before covering every line.
type SequenceResult struct {
	Mode         AcquisitionMode       `json:"mode"`
	Sequence     []int                 `json:"sequence"`
	Directions   map[int]LineDirection `json:"directions"`
	Records      []TimingRecord        `json:"records"`
	TotalSeconds float64               `json:"totalSeconds"`
	Partial      bool                  `json:"partial"`
}

// GenerateSequence dispatches to the configured acquisition mode. The active
// slice must be non-empty and firstLine already resolved against it.
func GenerateSequence(mode AcquisitionMode, active []int, firstLine int, pref HeadingPreference, lines map[int]*SurveyLine, runIns RunInSet, tc TurnConstraints, cache *TurnCache, tp TimingParams) (*SequenceResult, error) {
	switch mode {
	case ModeRacetrack:
		return GenerateRacetrack(active, firstLine, pref, lines, runIns, tc, cache, tp)
	case ModeTeardrop:
		return GenerateTeardrop(active, firstLine, pref, lines, runIns, tc, cache, tp)
	default:
		return nil, fmt.Errorf("unknown acquisition mode: %q", mode)
	}
}

// ResolveFirstLine validates the requested starting line against the active
// set, falling back to the lowest active id. active must be non-empty and
// sorted ascending.
func ResolveFirstLine(active []int, requested int) int {
	for _, id := range active {
		if id == requested {
			return requested
		}
	}
	log.Printf("⚠️ First line %d not active, using %d", requested, active[0])
	return active[0]
}

// TypicalLineSpacing returns the most common gap between consecutive line
// midpoints, rounded to 0.1 m. Reports false when fewer than two lines carry
// geometry.
func TypicalLineSpacing(lines map[int]*SurveyLine) (float64, bool) {
	ids := make([]int, 0, len(lines))
	for id, line := range lines {
		if line != nil && len(line.Geometry) >= 2 {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	if len(ids) < 2 {
		return 0, false
	}

	gaps := make([]float64, 0, len(ids)-1)
	for i := 1; i < len(ids); i++ {
		d := planar.Distance(lines[ids[i-1]].Midpoint(), lines[ids[i]].Midpoint())
		gaps = append(gaps, math.Round(d*10)/10)
	}
	sort.Float64s(gaps)

	spacing, _ := stat.Mode(gaps, nil)
	if !isFinite(spacing) || spacing <= 0 {
		return 0, false
	}
	return spacing, true
}

// IdealJump converts the turn diameter into a line-count jump. Spacings of a
// metre or less are treated as unreliable and yield a jump of 1.
func IdealJump(turnRadius, spacing float64) int {
	if spacing <= 1.0 {
		return 1
	}
	jump := int(math.Round(turnRadius * 2.0 / spacing))
	if jump < 1 {
		jump = 1
	}
	return jump
}

// InterleaveRacetrack produces the fixed interleaved visiting order: start at
// firstLine, advance by jump with wraparound, and scan forward to the next
// unvisited slot on collision. Every active line appears exactly once.
func InterleaveRacetrack(active []int, firstLine, jump int) []int {
	n := len(active)
	if n == 0 {
		return nil
	}
	if jump < 1 {
		jump = 1
	}

	start := 0
	for i, id := range active {
		if id == firstLine {
			start = i
			break
		}
	}

	seq := make([]int, 0, n)
	visited := make([]bool, n)
	idx := start
	for len(seq) < n {
		if visited[idx] {
			idx = (idx + 1) % n
			continue
		}
		visited[idx] = true
		seq = append(seq, active[idx])
		idx = (idx + jump) % n
	}
	return seq
}

// GenerateRacetrack builds the interleaved sequence and evaluates the full
// schedule once per global heading. The preferred heading wins whenever its
// timing succeeds; otherwise the other heading is used, and only when both
// fail does the whole run fail.
func GenerateRacetrack(active []int, firstLine int, pref HeadingPreference, lines map[int]*SurveyLine, runIns RunInSet, tc TurnConstraints, cache *TurnCache, tp TimingParams) (*SequenceResult, error) {
	if len(active) == 0 {
		return nil, fmt.Errorf("no usable lines to sequence")
	}

	jump := 1
	if spacing, ok := TypicalLineSpacing(lines); ok {
		jump = IdealJump(tc.MinTurnRadius, spacing)
		log.Printf("   Ideal jump: %d (typical spacing %.1f m)", jump, spacing)
	}

	seq := InterleaveRacetrack(active, firstLine, jump)
	if len(seq) == 0 {
		return nil, fmt.Errorf("racetrack sequence generation failed")
	}

	normDirs := uniformDirections(seq, LowToHigh)
	recipDirs := uniformDirections(seq, HighToLow)

	normRecs, normCost, normErr := ComputeTiming(seq, normDirs, lines, runIns, tc, cache, tp)
	recipRecs, recipCost, recipErr := ComputeTiming(seq, recipDirs, lines, runIns, tc, cache, tp)

	if normErr != nil && recipErr != nil {
		return nil, fmt.Errorf("both racetrack timings failed: %v / %v", normErr, recipErr)
	}

	result := func(dirs map[int]LineDirection, recs []TimingRecord, cost float64) *SequenceResult {
		return &SequenceResult{
			Mode:         ModeRacetrack,
			Sequence:     seq,
			Directions:   dirs,
			Records:      recs,
			TotalSeconds: cost,
		}
	}

	if pref == HeadingReciprocal {
		if recipErr == nil {
			log.Println("   Selected reciprocal heading (preference)")
			return result(recipDirs, recipRecs, recipCost), nil
		}
		log.Println("⚠️ Reciprocal heading timing failed, using normal")
		return result(normDirs, normRecs, normCost), nil
	}
	if normErr == nil {
		log.Println("   Selected normal heading (preference)")
		return result(normDirs, normRecs, normCost), nil
	}
	log.Println("⚠️ Normal heading timing failed, using reciprocal")
	return result(recipDirs, recipRecs, recipCost), nil
}

// GenerateTeardrop builds a greedy alternating-direction sequence. Each step
// scores every remaining line by the cached turn cost from the current exit
// pose to that line's entry pose at the alternated direction and takes the
// cheapest feasible one, lowest line id on ties. When no remaining line is
// reachable the prefix built so far is returned with Partial set.
func GenerateTeardrop(active []int, firstLine int, pref HeadingPreference, lines map[int]*SurveyLine, runIns RunInSet, tc TurnConstraints, cache *TurnCache, tp TimingParams) (*SequenceResult, error) {
	if len(active) == 0 {
		return nil, fmt.Errorf("no usable lines to sequence")
	}

	dir := LowToHigh
	if pref == HeadingReciprocal {
		dir = HighToLow
	}

	first, ok := lines[firstLine]
	if !ok {
		return nil, fmt.Errorf("line data not found for line %d", firstLine)
	}
	exit, ok := first.ExitPose(dir)
	if !ok {
		return nil, fmt.Errorf("no exit pose for line %d", firstLine)
	}

	seq := []int{firstLine}
	dirs := map[int]LineDirection{firstLine: dir}
	remaining := make(map[int]bool, len(active))
	for _, id := range active {
		if id != firstLine {
			remaining[id] = true
		}
	}

	lastLine := firstLine
	partial := false
	for len(remaining) > 0 {
		nextDir := dirs[lastLine].Opposite()
		nextLn, found := cheapestSuccessor(lastLine, exit, nextDir, remaining, lines, tc, cache)
		if !found {
			log.Printf("⚠️ No reachable line after line %d, ending sequence early", lastLine)
			partial = true
			break
		}

		seq = append(seq, nextLn)
		dirs[nextLn] = nextDir
		delete(remaining, nextLn)
		lastLine = nextLn

		exit, ok = lines[nextLn].ExitPose(nextDir)
		if !ok {
			log.Printf("⚠️ No exit pose for line %d, ending sequence early", nextLn)
			partial = true
			break
		}
	}

	recs, total, err := ComputeTiming(seq, dirs, lines, runIns, tc, cache, tp)
	if err != nil {
		return nil, fmt.Errorf("teardrop timing failed: %w", err)
	}

	return &SequenceResult{
		Mode:         ModeTeardrop,
		Sequence:     seq,
		Directions:   dirs,
		Records:      recs,
		TotalSeconds: total,
		Partial:      partial,
	}, nil
}

// cheapestSuccessor evaluates the turn from exit to each remaining line's
// entry at the given direction, populating the cache as it goes.
func cheapestSuccessor(lastLine int, exit Pose, dir LineDirection, remaining map[int]bool, lines map[int]*SurveyLine, tc TurnConstraints, cache *TurnCache) (int, bool) {
	ids := make([]int, 0, len(remaining))
	for id := range remaining {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	best := -1
	bestSeconds := math.Inf(1)
	for _, id := range ids {
		line := lines[id]
		if line == nil {
			continue
		}
		entry, ok := line.EntryPose(dir)
		if !ok {
			continue
		}
		turn, ok := GetCachedTurn(lastLine, id, dir, exit, entry, tc, cache)
		if !ok {
			continue
		}
		if turn.Seconds < bestSeconds {
			best = id
			bestSeconds = turn.Seconds
		}
	}
	if best < 0 {
		return 0, false
	}
	return best, true
}

func uniformDirections(seq []int, dir LineDirection) map[int]LineDirection {
	dirs := make(map[int]LineDirection, len(seq))
	for _, id := range seq {
		dirs[id] = dir
	}
	return dirs
}
