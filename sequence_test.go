package main

import (
	"math/rand"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// parallelTestLines builds n east-west lines of 100 m, spaced along y,
// numbered from 1 upward.
func parallelTestLines(n int, spacing float64) map[int]*SurveyLine {
	lines := make(map[int]*SurveyLine, n)
	for i := 1; i <= n; i++ {
		y := float64(i-1) * spacing
		geom := orb.LineString{{0, y}, {100, y}}
		lines[i] = NewSurveyLine(i, StatusToBeAcquired, geom, i*100, i*100+80)
	}
	return lines
}

func sequenceTestSetup(seed int64) (TurnConstraints, *TurnCache, TimingParams) {
	tc := TurnConstraints{
		MinTurnRadius: 20,
		TransitSpeed:  2.5,
		Obstacles:     NewObstacleSet(nil),
		Plan: PlanParams{
			MinTurnRadius:   20,
			StepSize:        50,
			MaxIterations:   5000,
			GoalBias:        0.2,
			GoalDistanceTol: 10,
			GoalAngleTol:    DefaultGoalAngleTol,
		},
		Rand: rand.New(rand.NewSource(seed)),
	}
	tp := TimingParams{
		AcquisitionSpeed: 2,
		RunInSpeed:       2,
		StartTime:        time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
		StartSeqNum:      1,
	}
	return tc, NewTurnCache(), tp
}

func TestResolveFirstLine(t *testing.T) {
	active := []int{2, 4, 6}
	assert.Equal(t, 4, ResolveFirstLine(active, 4))
	assert.Equal(t, 2, ResolveFirstLine(active, 5), "unknown request falls back to lowest")
	assert.Equal(t, 2, ResolveFirstLine(active, 0))
}

func TestTypicalLineSpacing(t *testing.T) {
	spacing, ok := TypicalLineSpacing(parallelTestLines(4, 25))
	require.True(t, ok)
	assert.InDelta(t, 25.0, spacing, 1e-9)

	// One odd gap does not move the mode
	lines := parallelTestLines(3, 25)
	lines[4] = NewSurveyLine(4, StatusToBeAcquired, orb.LineString{{0, 80}, {100, 80}}, 0, 0)
	spacing, ok = TypicalLineSpacing(lines)
	require.True(t, ok)
	assert.InDelta(t, 25.0, spacing, 1e-9)

	_, ok = TypicalLineSpacing(parallelTestLines(1, 25))
	assert.False(t, ok)
}

func TestIdealJump(t *testing.T) {
	assert.Equal(t, 2, IdealJump(20, 25))
	assert.Equal(t, 4, IdealJump(20, 10))
	assert.Equal(t, 1, IdealJump(20, 100), "jump never drops below one")
	assert.Equal(t, 1, IdealJump(20, 0.5), "sub-metre spacing is unreliable")
	assert.Equal(t, 5, IdealJump(500, 200))
}

func TestInterleaveRacetrack(t *testing.T) {
	active := []int{1, 2, 3, 4, 5, 6}

	assert.Equal(t, []int{1, 3, 5, 2, 4, 6}, InterleaveRacetrack(active, 1, 2))
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, InterleaveRacetrack(active, 1, 1))
	assert.Equal(t, []int{4, 6, 2, 5, 1, 3}, InterleaveRacetrack(active, 4, 2))
	assert.Equal(t, []int{2, 4, 6}, InterleaveRacetrack([]int{2, 4, 6}, 99, 1))
	assert.Empty(t, InterleaveRacetrack(nil, 1, 2))
}

func TestGenerateRacetrackNormalHeading(t *testing.T) {
	lines := parallelTestLines(4, 25)
	tc, cache, tp := sequenceTestSetup(1)

	res, err := GenerateRacetrack([]int{1, 2, 3, 4}, 1, HeadingNormal, lines, RunInSet{}, tc, cache, tp)
	require.NoError(t, err)

	assert.Equal(t, ModeRacetrack, res.Mode)
	assert.Equal(t, []int{1, 3, 2, 4}, res.Sequence)
	assert.False(t, res.Partial)
	for _, id := range res.Sequence {
		assert.Equal(t, LowToHigh, res.Directions[id])
	}

	require.Len(t, res.Records, 4)
	for i, rec := range res.Records {
		assert.Equal(t, i+1, rec.SeqNum)
		assert.Equal(t, res.Sequence[i], rec.LineID)
	}
	// Four 50 s lines plus three turns
	assert.Greater(t, res.TotalSeconds, 200.0)
}

func TestGenerateRacetrackReciprocalHeading(t *testing.T) {
	lines := parallelTestLines(4, 25)
	tc, cache, tp := sequenceTestSetup(1)

	res, err := GenerateRacetrack([]int{1, 2, 3, 4}, 1, HeadingReciprocal, lines, RunInSet{}, tc, cache, tp)
	require.NoError(t, err)

	for _, id := range res.Sequence {
		assert.Equal(t, HighToLow, res.Directions[id])
	}
}

func TestGenerateRacetrackBothHeadingsFail(t *testing.T) {
	lines := parallelTestLines(2, 30)
	tc, cache, tp := sequenceTestSetup(1)

	// Line 2 lies inside the zone, so its entry pose is unreachable in either
	// direction, and with no planner budget only direct connections count.
	zone := orb.Polygon{orb.Ring{{-60, 15}, {160, 15}, {160, 45}, {-60, 45}, {-60, 15}}}
	tc.Obstacles = NewObstacleSet([]orb.Polygon{zone})
	tc.Plan.MaxIterations = 0

	_, err := GenerateRacetrack([]int{1, 2}, 1, HeadingNormal, lines, RunInSet{}, tc, cache, tp)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "both racetrack timings failed")
}

func TestGenerateTeardropAlternatesDirections(t *testing.T) {
	lines := parallelTestLines(3, 30)
	tc, cache, tp := sequenceTestSetup(1)

	res, err := GenerateTeardrop([]int{1, 2, 3}, 1, HeadingNormal, lines, RunInSet{}, tc, cache, tp)
	require.NoError(t, err)

	assert.Equal(t, ModeTeardrop, res.Mode)
	assert.False(t, res.Partial)
	assert.Equal(t, 1, res.Sequence[0])
	assert.ElementsMatch(t, []int{1, 2, 3}, res.Sequence)

	want := LowToHigh
	for _, id := range res.Sequence {
		assert.Equal(t, want, res.Directions[id])
		want = want.Opposite()
	}
	assert.Len(t, res.Records, 3)
	assert.Greater(t, res.TotalSeconds, 150.0)
}

func TestGenerateTeardropReciprocalStartsHighToLow(t *testing.T) {
	lines := parallelTestLines(3, 30)
	tc, cache, tp := sequenceTestSetup(1)

	res, err := GenerateTeardrop([]int{1, 2, 3}, 1, HeadingReciprocal, lines, RunInSet{}, tc, cache, tp)
	require.NoError(t, err)
	assert.Equal(t, HighToLow, res.Directions[res.Sequence[0]])
}

func TestGenerateTeardropPartialWhenLineUnreachable(t *testing.T) {
	lines := parallelTestLines(3, 30)
	tc, cache, tp := sequenceTestSetup(1)

	// Both entry points of line 3 sit inside the zone, and with no planner
	// budget only direct connections count, so line 3 is unreachable while
	// the low turn between lines 1 and 2 stays clear.
	zone := orb.Polygon{orb.Ring{{-30, 45}, {130, 45}, {130, 80}, {-30, 80}, {-30, 45}}}
	tc.Obstacles = NewObstacleSet([]orb.Polygon{zone})
	tc.Plan.MaxIterations = 0

	res, err := GenerateTeardrop([]int{1, 2, 3}, 1, HeadingNormal, lines, RunInSet{}, tc, cache, tp)
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2}, res.Sequence)
	assert.True(t, res.Partial)
	assert.Equal(t, LowToHigh, res.Directions[1])
	assert.Equal(t, HighToLow, res.Directions[2])
	assert.Len(t, res.Records, 2)
}

func TestGenerateSequenceUnknownMode(t *testing.T) {
	lines := parallelTestLines(2, 25)
	tc, cache, tp := sequenceTestSetup(1)

	_, err := GenerateSequence(AcquisitionMode("spiral"), []int{1, 2}, 1, HeadingNormal, lines, RunInSet{}, tc, cache, tp)
	assert.Error(t, err)
}

func TestGenerateSequenceDispatch(t *testing.T) {
	lines := parallelTestLines(2, 25)

	tc, cache, tp := sequenceTestSetup(1)
	res, err := GenerateSequence(ModeRacetrack, []int{1, 2}, 1, HeadingNormal, lines, RunInSet{}, tc, cache, tp)
	require.NoError(t, err)
	assert.Equal(t, ModeRacetrack, res.Mode)

	tc2, cache2, _ := sequenceTestSetup(1)
	res, err = GenerateSequence(ModeTeardrop, []int{1, 2}, 1, HeadingNormal, lines, RunInSet{}, tc2, cache2, tp)
	require.NoError(t, err)
	assert.Equal(t, ModeTeardrop, res.Mode)
}
