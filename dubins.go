package main

import (
	"math"

	"github.com/paulmach/orb"
)

// DubinsWord identifies one of the six canonical turn/straight combinations
type DubinsWord int

const (
	WordLSL DubinsWord = iota
	WordLSR
	WordRSL
	WordRSR
	WordRLR
	WordLRL
)

func (w DubinsWord) String() string {
	switch w {
	case WordLSL:
		return "LSL"
	case WordLSR:
		return "LSR"
	case WordRSL:
		return "RSL"
	case WordRSR:
		return "RSR"
	case WordRLR:
		return "RLR"
	case WordLRL:
		return "LRL"
	}
	return "?"
}

type dubinsSegment int

const (
	segLeft dubinsSegment = iota
	segStraight
	segRight
)

// dubinsWordSegments maps each word to its three segment types, indexed by DubinsWord
var dubinsWordSegments = [6][3]dubinsSegment{
	{segLeft, segStraight, segLeft},
	{segLeft, segStraight, segRight},
	{segRight, segStraight, segLeft},
	{segRight, segStraight, segRight},
	{segRight, segLeft, segRight},
	{segLeft, segRight, segLeft},
}

// DubinsPath is the shortest curvature-bounded connection between two oriented poses.
// Segment lengths are stored normalized by the turn radius.
type DubinsPath struct {
	Start  Pose
	Params [3]float64
	Radius float64
	Word   DubinsWord
}

// Length returns the total path length in metres
func (p DubinsPath) Length() float64 {
	return (p.Params[0] + p.Params[1] + p.Params[2]) * p.Radius
}

// dubinsInputs holds the normalized configuration shared by all six word solvers
type dubinsInputs struct {
	alpha, beta, d float64
	sa, sb, ca, cb float64
	cab, d2        float64
}

func fmodr(x, y float64) float64 {
	return x - y*math.Floor(x/y)
}

func mod2pi(theta float64) float64 {
	return fmodr(theta, 2*math.Pi)
}

func makeDubinsInputs(from, to Pose, radius float64) dubinsInputs {
	dx := to.Position[0] - from.Position[0]
	dy := to.Position[1] - from.Position[1]
	d := math.Hypot(dx, dy) / radius

	var theta float64
	if d > 0 {
		theta = mod2pi(math.Atan2(dy, dx))
	}

	alpha := mod2pi(from.Heading - theta)
	beta := mod2pi(to.Heading - theta)

	return dubinsInputs{
		alpha: alpha, beta: beta, d: d,
		sa: math.Sin(alpha), sb: math.Sin(beta),
		ca: math.Cos(alpha), cb: math.Cos(beta),
		cab: math.Cos(alpha - beta), d2: d * d,
	}
}

func buildLSL(in dubinsInputs) ([3]float64, bool) {
	tmp0 := in.d + in.sa - in.sb
	pSq := 2 + in.d2 - (2 * in.cab) + (2 * in.d * (in.sa - in.sb))
	if pSq < 0 {
		return [3]float64{}, false
	}
	tmp1 := math.Atan2(in.cb-in.ca, tmp0)
	return [3]float64{mod2pi(tmp1 - in.alpha), math.Sqrt(pSq), mod2pi(in.beta - tmp1)}, true
}

func buildRSR(in dubinsInputs) ([3]float64, bool) {
	tmp0 := in.d - in.sa + in.sb
	pSq := 2 + in.d2 - (2 * in.cab) + (2 * in.d * (in.sb - in.sa))
	if pSq < 0 {
		return [3]float64{}, false
	}
	tmp1 := math.Atan2(in.ca-in.cb, tmp0)
	return [3]float64{mod2pi(in.alpha - tmp1), math.Sqrt(pSq), mod2pi(tmp1 - in.beta)}, true
}

func buildLSR(in dubinsInputs) ([3]float64, bool) {
	tmp0 := in.d + in.sa + in.sb
	pSq := -2 + in.d2 + (2 * in.cab) + (2 * in.d * (in.sa + in.sb))
	if pSq < 0 {
		return [3]float64{}, false
	}
	tmp1 := math.Atan2(-in.ca-in.cb, tmp0) - math.Atan2(-2, math.Sqrt(pSq))
	return [3]float64{mod2pi(tmp1 - in.alpha), math.Sqrt(pSq), mod2pi(tmp1 - in.beta)}, true
}

func buildRSL(in dubinsInputs) ([3]float64, bool) {
	tmp0 := in.d - in.sa - in.sb
	pSq := -2 + in.d2 + (2 * in.cab) - (2 * in.d * (in.sa + in.sb))
	if pSq < 0 {
		return [3]float64{}, false
	}
	tmp1 := math.Atan2(in.ca+in.cb, tmp0) - math.Atan2(-2, math.Sqrt(pSq))
	return [3]float64{mod2pi(in.alpha - tmp1), math.Sqrt(pSq), mod2pi(in.beta - tmp1)}, true
}

func buildRLR(in dubinsInputs) ([3]float64, bool) {
	tmp0 := (6.0 - in.d2 + 2*in.cab + 2*in.d*(in.sa-in.sb)) / 8.0
	if math.Abs(tmp0) > 1 {
		return [3]float64{}, false
	}
	phi := math.Atan2(in.ca-in.cb, in.d-in.sa+in.sb)
	p := mod2pi((2 * math.Pi) - math.Acos(tmp0))
	t := mod2pi(in.alpha - phi + mod2pi(p/2))
	return [3]float64{t, p, mod2pi(in.alpha - in.beta - t + mod2pi(p))}, true
}

func buildLRL(in dubinsInputs) ([3]float64, bool) {
	tmp0 := (6.0 - in.d2 + 2*in.cab + 2*in.d*(in.sb-in.sa)) / 8.0
	if math.Abs(tmp0) > 1 {
		return [3]float64{}, false
	}
	phi := math.Atan2(in.ca-in.cb, in.d+in.sa-in.sb)
	p := mod2pi((2 * math.Pi) - math.Acos(tmp0))
	t := mod2pi(-in.alpha - phi + mod2pi(p/2))
	return [3]float64{t, p, mod2pi(mod2pi(in.beta) - in.alpha - t + mod2pi(p))}, true
}

func buildDubinsWord(in dubinsInputs, word DubinsWord) ([3]float64, bool) {
	switch word {
	case WordLSL:
		return buildLSL(in)
	case WordLSR:
		return buildLSR(in)
	case WordRSL:
		return buildRSL(in)
	case WordRSR:
		return buildRSR(in)
	case WordRLR:
		return buildRLR(in)
	case WordLRL:
		return buildLRL(in)
	}
	return [3]float64{}, false
}

// SolveDubins finds the shortest curvature-bounded path connecting two poses.
// Returns false when the radius is not positive, an input is non-finite, or no
// word admits a solution.
func SolveDubins(from, to Pose, radius float64) (DubinsPath, bool) {
	if radius <= 0 || !from.Finite() || !to.Finite() {
		return DubinsPath{}, false
	}

	in := makeDubinsInputs(from, to, radius)
	best := DubinsPath{Start: from, Radius: radius}
	bestCost := math.Inf(1)
	found := false

	for w := WordLSL; w <= WordLRL; w++ {
		params, ok := buildDubinsWord(in, w)
		if !ok {
			continue
		}
		cost := params[0] + params[1] + params[2]
		if cost < bestCost {
			bestCost = cost
			best.Params = params
			best.Word = w
			found = true
		}
	}

	return best, found
}

// advanceSegment moves distance t along one normalized segment from configuration qi
func advanceSegment(t float64, qi [3]float64, seg dubinsSegment) [3]float64 {
	st, ct := math.Sin(qi[2]), math.Cos(qi[2])
	var q [3]float64
	switch seg {
	case segLeft:
		q[0] = math.Sin(qi[2]+t) - st
		q[1] = -math.Cos(qi[2]+t) + ct
		q[2] = t
	case segRight:
		q[0] = -math.Sin(qi[2]-t) + st
		q[1] = math.Cos(qi[2]-t) - ct
		q[2] = -t
	case segStraight:
		q[0] = ct * t
		q[1] = st * t
	}
	q[0] += qi[0]
	q[1] += qi[1]
	q[2] += qi[2]
	return q
}

// PoseAt returns the pose at arc length t along the path, clamped to [0, Length]
func (p DubinsPath) PoseAt(t float64) Pose {
	length := p.Length()
	if t < 0 {
		t = 0
	}
	if t > length {
		t = length
	}
	tp := t / p.Radius

	segs := dubinsWordSegments[p.Word]
	qi := [3]float64{0, 0, p.Start.Heading}
	q1 := advanceSegment(p.Params[0], qi, segs[0])
	q2 := advanceSegment(p.Params[1], q1, segs[1])

	var q [3]float64
	switch {
	case tp < p.Params[0]:
		q = advanceSegment(tp, qi, segs[0])
	case tp < p.Params[0]+p.Params[1]:
		q = advanceSegment(tp-p.Params[0], q1, segs[1])
	default:
		q = advanceSegment(tp-p.Params[0]-p.Params[1], q2, segs[2])
	}

	return Pose{
		Position: orb.Point{
			q[0]*p.Radius + p.Start.Position[0],
			q[1]*p.Radius + p.Start.Position[1],
		},
		Heading: NormalizeAngle(q[2]),
	}
}

// End returns the pose at the far end of the path
func (p DubinsPath) End() Pose {
	return p.PoseAt(p.Length())
}

// Discretize samples the path into a polyline at the given arc-length interval.
// The final vertex is always the exact path endpoint.
func (p DubinsPath) Discretize(step float64) orb.LineString {
	if step <= 0 {
		step = 0.1
	}
	length := p.Length()
	pts := make(orb.LineString, 0, int(length/step)+2)
	for t := 0.0; t < length; t += step {
		pts = append(pts, p.PoseAt(t).Position)
	}
	pts = append(pts, p.PoseAt(length).Position)
	return pts
}
