package main

import (
	"math/rand"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func deviationTestParams(seed int64) DeviationParams {
	return DeviationParams{
		Margin: 100,
		Plan: PlanParams{
			MinTurnRadius:   5,
			StepSize:        25,
			MaxIterations:   20000,
			GoalBias:        0.2,
			GoalDistanceTol: 10,
			GoalAngleTol:    0.35,
		},
		Rand: rand.New(rand.NewSource(seed)),
	}
}

func TestApplyDeviationsReplansBlockedLine(t *testing.T) {
	blocked := NewSurveyLine(1, StatusToBeAcquired, orb.LineString{{0, 0}, {200, 0}}, 100, 200)
	untouched := NewSurveyLine(2, StatusToBeAcquired, orb.LineString{{0, 60}, {200, 60}}, 300, 400)
	lines := map[int]*SurveyLine{1: blocked, 2: untouched}

	obstacles := NewObstacleSet([]orb.Polygon{squareZone(100, 0, 15)})

	ApplyDeviations(lines, obstacles, deviationTestParams(42))

	require.True(t, blocked.Deviated)
	assert.False(t, blocked.DeviationFailed)
	assert.True(t, obstacles.PolylineClear(blocked.Geometry))
	assert.Equal(t, orb.Point{0, 0}, blocked.Geometry[0])
	assert.Greater(t, blocked.Length, 150.0)
	assert.InDelta(t, planar.Length(blocked.Geometry), blocked.Length, 1e-9)

	assert.False(t, untouched.Deviated)
	assert.Equal(t, orb.LineString{{0, 60}, {200, 60}}, untouched.Geometry)
	assert.InDelta(t, 200.0, untouched.Length, 1e-9)
}

func TestApplyDeviationsMarksUnreachableLine(t *testing.T) {
	enclosed := NewSurveyLine(1, StatusToBeAcquired, orb.LineString{{90, -5}, {110, 5}}, 100, 200)
	lines := map[int]*SurveyLine{1: enclosed}

	obstacles := NewObstacleSet([]orb.Polygon{squareZone(100, 0, 15)})

	dp := deviationTestParams(1)
	dp.Plan.MaxIterations = 200

	ApplyDeviations(lines, obstacles, dp)

	assert.True(t, enclosed.DeviationFailed)
	assert.False(t, enclosed.Deviated)
	assert.Equal(t, orb.LineString{{90, -5}, {110, 5}}, enclosed.Geometry, "failed lines keep their geometry")
	assert.False(t, enclosed.Usable())
}

func TestApplyDeviationsSkipsInactiveLines(t *testing.T) {
	acquired := NewSurveyLine(1, StatusAcquired, orb.LineString{{0, 0}, {200, 0}}, 100, 200)
	lines := map[int]*SurveyLine{1: acquired}

	obstacles := NewObstacleSet([]orb.Polygon{squareZone(100, 0, 15)})

	ApplyDeviations(lines, obstacles, deviationTestParams(1))

	assert.False(t, acquired.Deviated)
	assert.False(t, acquired.DeviationFailed)
	assert.Equal(t, orb.LineString{{0, 0}, {200, 0}}, acquired.Geometry)
}

func TestApplyDeviationsNoZonesIsANoOp(t *testing.T) {
	line := NewSurveyLine(1, StatusToBeAcquired, orb.LineString{{0, 0}, {200, 0}}, 100, 200)
	lines := map[int]*SurveyLine{1: line}

	ApplyDeviations(lines, NewObstacleSet(nil), deviationTestParams(1))

	assert.False(t, line.Deviated)
	assert.Equal(t, orb.LineString{{0, 0}, {200, 0}}, line.Geometry)
}
