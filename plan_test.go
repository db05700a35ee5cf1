package main

import (
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPlanConfig() PlanConfig {
	return PlanConfig{
		Plan: PlanParams{
			MinTurnRadius:   20,
			StepSize:        50,
			MaxIterations:   5000,
			GoalBias:        0.2,
			GoalDistanceTol: 25,
			GoalAngleTol:    DefaultGoalAngleTol,
		},
		AcquisitionSpeed:   2,
		TransitSpeed:       2.5,
		RunInSpeed:         2,
		DeviationClearance: 50,
		DeviationMargin:    100,
		Mode:               ModeRacetrack,
		Heading:            HeadingNormal,
		FirstLine:          1,
		StartTime:          time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
		StartSeqNum:        1,
		Seed:               1,
	}
}

func TestRunPlanRacetrackMission(t *testing.T) {
	m := &Mission{Lines: parallelTestLines(3, 25), RunIns: RunInSet{}}

	result, err := RunPlan(m, testPlanConfig())
	require.NoError(t, err)

	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, []int{1, 2, 3}, result.ActiveLines)
	assert.Equal(t, []int{1, 3, 2}, result.Sequence.Sequence)
	assert.Empty(t, result.FailedLines)
	assert.Empty(t, result.DeviatedLines)
	// Three 50 s lines plus two turns
	assert.Greater(t, result.Sequence.TotalSeconds, 150.0)

	require.GreaterOrEqual(t, len(result.Route), 2)
	assert.Equal(t, orb.Point{0, 0}, result.Route[0])
	assert.Equal(t, orb.Point{100, 25}, result.Route[len(result.Route)-1])

	require.Len(t, result.Sequence.Records, 3)
	for i, rec := range result.Sequence.Records {
		assert.Equal(t, i+1, rec.SeqNum)
		assert.Equal(t, result.Sequence.Sequence[i], rec.LineID)
	}

	// Both heading evaluations miss, route reconstruction hits
	assert.Equal(t, 2, result.CacheHits)
	assert.Equal(t, 4, result.CacheMisses)
}

func TestRunPlanTeardropMission(t *testing.T) {
	m := &Mission{Lines: parallelTestLines(3, 30), RunIns: RunInSet{}}
	cfg := testPlanConfig()
	cfg.Mode = ModeTeardrop

	result, err := RunPlan(m, cfg)
	require.NoError(t, err)

	assert.Equal(t, ModeTeardrop, result.Sequence.Mode)
	assert.False(t, result.Sequence.Partial)
	assert.ElementsMatch(t, []int{1, 2, 3}, result.Sequence.Sequence)
	require.GreaterOrEqual(t, len(result.Route), 2)
}

func TestRunPlanAppliesDeviations(t *testing.T) {
	m := &Mission{
		Lines:     parallelTestLines(3, 25),
		Obstacles: []orb.Polygon{squareZone(50, 25, 3)},
	}
	cfg := testPlanConfig()
	cfg.DeviationClearance = 5
	cfg.Plan.MaxIterations = 20000
	cfg.Seed = 42

	result, err := RunPlan(m, cfg)
	require.NoError(t, err)

	assert.Equal(t, []int{2}, result.DeviatedLines)
	assert.True(t, m.Lines[2].Deviated)
	assert.Greater(t, m.Lines[2].Length, 100.0)
	assert.Empty(t, result.FailedLines)
}

func TestRunPlanNoLines(t *testing.T) {
	_, err := RunPlan(&Mission{Lines: map[int]*SurveyLine{}}, testPlanConfig())
	assert.Error(t, err)
}

func TestRunPlanNoUsableLines(t *testing.T) {
	lines := map[int]*SurveyLine{
		1: NewSurveyLine(1, StatusAcquired, orb.LineString{{0, 0}, {100, 0}}, 0, 0),
	}
	_, err := RunPlan(&Mission{Lines: lines}, testPlanConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no usable")
}

func TestRunPlanRejectsBadSpeeds(t *testing.T) {
	cfg := testPlanConfig()
	cfg.TransitSpeed = 0
	_, err := RunPlan(&Mission{Lines: parallelTestLines(2, 25)}, cfg)
	assert.Error(t, err)
}

func TestReconstructRoute(t *testing.T) {
	lines := parallelTestLines(2, 25)
	tc, cache, tp := sequenceTestSetup(1)

	res, err := GenerateRacetrack([]int{1, 2}, 1, HeadingNormal, lines, RunInSet{}, tc, cache, tp)
	require.NoError(t, err)

	route, ok := ReconstructRoute(res, lines, tc, cache)
	require.True(t, ok)
	assert.Equal(t, orb.Point{0, 0}, route[0])
	assert.Equal(t, orb.Point{100, 25}, route[len(route)-1])
	assert.Greater(t, len(route), 4, "route carries the turn geometry between the lines")
}

func TestReconstructRouteDegenerateInputs(t *testing.T) {
	lines := parallelTestLines(2, 25)
	tc, cache, _ := sequenceTestSetup(1)

	_, ok := ReconstructRoute(nil, lines, tc, cache)
	assert.False(t, ok)

	_, ok = ReconstructRoute(&SequenceResult{}, lines, tc, cache)
	assert.False(t, ok)

	_, ok = ReconstructRoute(&SequenceResult{Sequence: []int{9}, Directions: map[int]LineDirection{9: LowToHigh}}, lines, tc, cache)
	assert.False(t, ok, "unknown line id")

	_, ok = ReconstructRoute(&SequenceResult{Sequence: []int{1}}, lines, tc, cache)
	assert.False(t, ok, "missing direction assignment")
}
