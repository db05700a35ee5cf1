package main

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// minTurnRadiusEpsilon is the radius below which steering degrades to
// straight-line interpolation, for vehicles that can effectively turn in place
const minTurnRadiusEpsilon = 1e-6

// SteerResult carries the outcome of one steering extension
type SteerResult struct {
	End      Pose
	Path     orb.LineString
	Achieved float64
}

// Steer extends from a pose toward a target pose, travelling at most
// targetDistance metres while honoring the minimum turn radius. The returned
// path is a discretized polyline from the start position to the cut point,
// and Achieved may be less than requested when the full connection is shorter.
func Steer(from, to Pose, minRadius, targetDistance float64) (SteerResult, bool) {
	if !from.Finite() || !to.Finite() || !isFinite(minRadius) || !isFinite(targetDistance) {
		return SteerResult{}, false
	}
	if targetDistance <= 0 {
		return SteerResult{}, false
	}

	separation := planar.Distance(from.Position, to.Position)

	// Near-zero radius: take the straight line toward the target. Coincident
	// positions leave no direction of travel here; with a real radius they
	// fall through to the solver, which can still turn in place.
	if minRadius <= minTurnRadiusEpsilon {
		if separation < minTurnRadiusEpsilon {
			return SteerResult{}, false
		}
		achieved := math.Min(targetDistance, separation)
		end := Interpolate(from.Position, to.Position, achieved/separation)
		return SteerResult{
			End:      Pose{Position: end, Heading: Bearing(from.Position, end)},
			Path:     orb.LineString{from.Position, end},
			Achieved: achieved,
		}, true
	}

	dubins, ok := SolveDubins(from, to, minRadius)
	if !ok {
		return SteerResult{}, false
	}

	resolution := math.Max(targetDistance/5.0, 0.1)
	return cutPolyline(dubins.Discretize(resolution), from.Heading, targetDistance)
}

// cutPolyline walks discretized points accumulating Euclidean arc length until
// targetDistance is reached, interpolating within the final sub-segment. The
// end heading is the bearing of the sub-segment the cut lands on.
func cutPolyline(pts orb.LineString, startHeading, targetDistance float64) (SteerResult, bool) {
	if len(pts) < 2 {
		return SteerResult{}, false
	}

	out := orb.LineString{pts[0]}
	accumulated := 0.0
	prevHeading := startHeading

	for i := 1; i < len(pts); i++ {
		prev, cur := pts[i-1], pts[i]
		segLen := planar.Distance(prev, cur)

		segHeading := prevHeading
		if segLen > 1e-9 {
			segHeading = Bearing(prev, cur)
		}

		if accumulated+segLen >= targetDistance {
			remaining := targetDistance - accumulated
			fraction := 0.0
			if segLen > minTurnRadiusEpsilon {
				fraction = remaining / segLen
			}
			cut := Interpolate(prev, cur, fraction)
			out = append(out, cut)
			return SteerResult{
				End:      Pose{Position: cut, Heading: NormalizeAngle(segHeading)},
				Path:     out,
				Achieved: targetDistance,
			}, true
		}

		accumulated += segLen
		out = append(out, cur)
		prevHeading = segHeading
	}

	// The whole connection is shorter than the requested distance
	end := out[len(out)-1]
	return SteerResult{
		End:      Pose{Position: end, Heading: NormalizeAngle(prevHeading)},
		Path:     out,
		Achieved: accumulated,
	}, true
}

// connectStep returns the sampling interval for a full pose-to-pose connection,
// scaled to the turn radius so arcs stay smooth at small radii
func connectStep(radius float64) float64 {
	step := radius / 5
	if step > 2.0 {
		step = 2.0
	}
	if step < 0.25 {
		step = 0.25
	}
	return step
}

// ConnectPoses builds the complete curvature-bounded connection between two
// poses, falling back to a straight segment when the radius is effectively
// zero. Returns the polyline, its length, and whether a connection exists.
func ConnectPoses(from, to Pose, minRadius float64) (orb.LineString, float64, bool) {
	if !from.Finite() || !to.Finite() {
		return nil, 0, false
	}

	if minRadius <= minTurnRadiusEpsilon {
		line := orb.LineString{from.Position, to.Position}
		return line, planar.Distance(from.Position, to.Position), true
	}

	dubins, ok := SolveDubins(from, to, minRadius)
	if !ok {
		return nil, 0, false
	}
	pts := dubins.Discretize(connectStep(minRadius))
	if len(pts) < 2 {
		return nil, 0, false
	}
	return pts, dubins.Length(), true
}
