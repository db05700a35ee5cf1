package main

import (
	"log"
	"math"
	"math/rand"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Planner defaults, applied by the service layer when a request leaves a
// tunable at zero. The core itself only uses what the caller passes in.
const (
	DefaultMinTurnRadius   = 20.0
	DefaultStepSize        = 50.0
	DefaultMaxIterations   = 20000
	DefaultGoalBias        = 0.2
	DefaultGoalDistanceTol = 25.0
)

// DefaultGoalAngleTol is 15 degrees in radians
var DefaultGoalAngleTol = 15.0 * math.Pi / 180.0

// alignedHeadingTol is the heading difference below which an obstacle-free
// start/goal pair is joined with a plain straight segment
const alignedHeadingTol = 0.1

// Periodic direct-connection attempt from fresh nodes to the goal
const (
	goalShortcutInterval  = 50  // every N iterations
	goalShortcutRange     = 3.0 // multiples of step size
	goalShortcutOvershoot = 1.5 // steer this multiple of the remaining distance
)

// PlannerNode is one vertex of the search tree. The tree is append-only:
// nodes are never removed or rewritten once added, and only the root has no
// parent and no incoming segment.
type PlannerNode struct {
	Pose        Pose
	ParentIndex int            // -1 for the root
	Cost        float64        // accumulated path length from the root
	Segment     orb.LineString // geometry connecting the parent to this node
}

// PlanParams bundles every tunable of one planning call
type PlanParams struct {
	MinTurnRadius   float64
	StepSize        float64
	MaxIterations   int
	GoalBias        float64
	GoalDistanceTol float64
	GoalAngleTol    float64
	Bounds          *orb.Bound // optional explicit sampling region
}

// PlanStats reports how a planning call concluded
type PlanStats struct {
	Iterations int  `json:"iterations"`
	Nodes      int  `json:"nodes"`
	FastPath   bool `json:"fastPath"`
	Shortcut   bool `json:"shortcut"`
}

// NewPlanRand returns a fresh time-seeded random source for one planning run
func NewPlanRand() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// PlanPath grows a rapidly-exploring random tree from start toward goal,
// honoring the minimum turn radius and rejecting extensions that cross the
// obstacle set. Exhausting MaxIterations is a normal negative result, not an
// error. The random source is caller-supplied so tests can fix the seed.
func PlanPath(start, goal Pose, obstacles *ObstacleSet, p PlanParams, rng *rand.Rand) (orb.LineString, PlanStats, bool) {
	var stats PlanStats

	if !start.Finite() || !goal.Finite() {
		return nil, stats, false
	}
	if rng == nil {
		rng = NewPlanRand()
	}

	// No obstacles: try to connect directly before growing a tree
	if obstacles.Len() == 0 {
		stats.FastPath = true
		if math.Abs(AngleDiff(start.Heading, goal.Heading)) < alignedHeadingTol {
			return orb.LineString{start.Position, goal.Position}, stats, true
		}
		if path, _, ok := ConnectPoses(start, goal, p.MinTurnRadius); ok && len(path) >= 2 {
			return path, stats, true
		}
		// Degenerate connection, keep the straight segment
		return orb.LineString{start.Position, goal.Position}, stats, true
	}

	nodes := []PlannerNode{{Pose: start, ParentIndex: -1}}
	index := newNodeIndex()
	index.Insert(0, start.Position)

	sampleBound := heuristicBound(start, goal)
	if p.Bounds != nil {
		sampleBound = *p.Bounds
	}

	for iteration := 0; iteration < p.MaxIterations; iteration++ {
		stats.Iterations = iteration + 1

		// 1. Sample a target pose, biased toward the goal
		target := goal
		if rng.Float64() >= p.GoalBias {
			target = Pose{
				Position: orb.Point{
					sampleBound.Min[0] + rng.Float64()*(sampleBound.Max[0]-sampleBound.Min[0]),
					sampleBound.Min[1] + rng.Float64()*(sampleBound.Max[1]-sampleBound.Min[1]),
				},
				Heading: rng.Float64()*2*math.Pi - math.Pi,
			}
		}

		// 2. Nearest tree node by position
		nearest, ok := index.Nearest(target.Position)
		if !ok {
			continue
		}

		// 3. Steer toward the sample for at most one step
		res, ok := Steer(nodes[nearest].Pose, target, p.MinTurnRadius, p.StepSize)
		if !ok {
			continue
		}

		// 4. Reject extensions that cross a no-go zone
		if !obstacles.PolylineClear(res.Path) {
			continue
		}

		nodes = append(nodes, PlannerNode{
			Pose:        res.End,
			ParentIndex: nearest,
			Cost:        nodes[nearest].Cost + res.Achieved,
			Segment:     res.Path,
		})
		newIndex := len(nodes) - 1
		index.Insert(newIndex, res.End.Position)

		distToGoal := planar.Distance(res.End.Position, goal.Position)
		angleToGoal := math.Abs(AngleDiff(res.End.Heading, goal.Heading))

		// 5. Periodically try to connect straight to the goal
		if iteration%goalShortcutInterval == 0 && distToGoal < p.StepSize*goalShortcutRange {
			gres, ok := Steer(res.End, goal, p.MinTurnRadius, distToGoal*goalShortcutOvershoot)
			if ok && obstacles.PolylineClear(gres.Path) {
				nodes = append(nodes, PlannerNode{
					Pose:        gres.End,
					ParentIndex: newIndex,
					Cost:        nodes[newIndex].Cost + gres.Achieved,
					Segment:     gres.Path,
				})
				stats.Shortcut = true
				stats.Nodes = len(nodes)
				if path, ok := reconstructPath(nodes, len(nodes)-1); ok {
					log.Printf("   ✅ Direct goal connection at iteration %d (%d nodes)\n", iteration+1, len(nodes))
					return path, stats, true
				}
				return nil, stats, false
			}
		}

		// 6. Goal test on both position and heading
		if distToGoal <= p.GoalDistanceTol && angleToGoal <= p.GoalAngleTol {
			stats.Nodes = len(nodes)
			if path, ok := reconstructPath(nodes, newIndex); ok {
				log.Printf("   ✅ Path found in %d iterations (%d nodes)\n", iteration+1, len(nodes))
				return path, stats, true
			}
			return nil, stats, false
		}
	}

	stats.Nodes = len(nodes)
	log.Printf("   ❌ No path found after %d iterations (%d nodes)\n", p.MaxIterations, len(nodes))
	return nil, stats, false
}

// heuristicBound is the sampling region used when the caller gives no bounds:
// a box around the start/goal midpoint spanning twice their separation plus a
// fixed margin
func heuristicBound(start, goal Pose) orb.Bound {
	cx := (start.Position[0] + goal.Position[0]) / 2
	cy := (start.Position[1] + goal.Position[1]) / 2
	span := math.Max(
		math.Abs(start.Position[0]-goal.Position[0]),
		math.Abs(start.Position[1]-goal.Position[1]),
	)*2 + 100
	half := span / 2
	return orb.Bound{
		Min: orb.Point{cx - half, cy - half},
		Max: orb.Point{cx + half, cy + half},
	}
}

// reconstructPath walks parent links from the terminal node back to the root
// and concatenates the stored segments in root-to-goal order, dropping the
// duplicated junction vertex between consecutive segments
func reconstructPath(nodes []PlannerNode, terminal int) (orb.LineString, bool) {
	var segments []orb.LineString
	for idx := terminal; idx >= 0; idx = nodes[idx].ParentIndex {
		if nodes[idx].ParentIndex >= 0 && len(nodes[idx].Segment) > 0 {
			segments = append(segments, nodes[idx].Segment)
		}
	}
	if len(segments) == 0 {
		return nil, false
	}

	var path orb.LineString
	for i := len(segments) - 1; i >= 0; i-- {
		path = AppendPath(path, segments[i])
	}
	if len(path) < 2 {
		return nil, false
	}
	return path, true
}
