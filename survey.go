package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// LineStatus classifies a survey line's acquisition state
type LineStatus int

const (
	StatusOther LineStatus = iota
	StatusAcquired
	StatusToBeAcquired
)

// ParseLineStatus reads a source status string, case-insensitively
func ParseLineStatus(s string) LineStatus {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TO BE ACQUIRED":
		return StatusToBeAcquired
	case "ACQUIRED":
		return StatusAcquired
	}
	return StatusOther
}

func (s LineStatus) String() string {
	switch s {
	case StatusAcquired:
		return "Acquired"
	case StatusToBeAcquired:
		return "To Be Acquired"
	}
	return "Other"
}

// LineDirection is the traversal direction of a line relative to its station
// numbering. Low-to-high enters at the geometry start (lowest SP).
type LineDirection int

const (
	LowToHigh LineDirection = iota
	HighToLow
)

func (d LineDirection) String() string {
	if d == HighToLow {
		return "high_to_low"
	}
	return "low_to_high"
}

// MarshalJSON encodes the direction as its string form
func (d LineDirection) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts the string form produced by MarshalJSON
func (d *LineDirection) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "low_to_high":
		*d = LowToHigh
	case "high_to_low":
		*d = HighToLow
	default:
		return fmt.Errorf("unknown line direction %q", s)
	}
	return nil
}

// Opposite returns the reversed traversal direction
func (d LineDirection) Opposite() LineDirection {
	if d == HighToLow {
		return LowToHigh
	}
	return HighToLow
}

// Run-in end labels as supplied by the mission source
const (
	RunInStart = "start"
	RunInEnd   = "end"
)

// runInEndFor maps a traversal direction to the line end the run-in leads into
func runInEndFor(d LineDirection) string {
	if d == HighToLow {
		return RunInEnd
	}
	return RunInStart
}

// SurveyLine is one acquisition line. Geometry is ordered from the lowest
// station number to the highest. The deviation step is the only mutator:
// it may replace Geometry/Length once and set DeviationFailed.
type SurveyLine struct {
	ID              int            `json:"id"`
	Status          LineStatus     `json:"-"`
	Geometry        orb.LineString `json:"geometry"`
	Length          float64        `json:"length"`
	LowSP           int            `json:"lowSP"`
	HighSP          int            `json:"highSP"`
	DeviationFailed bool           `json:"deviationFailed"`
	Deviated        bool           `json:"deviated"`
}

// NewSurveyLine builds a line with its length measured from the geometry
func NewSurveyLine(id int, status LineStatus, geom orb.LineString, lowSP, highSP int) *SurveyLine {
	return &SurveyLine{
		ID:       id,
		Status:   status,
		Geometry: geom,
		Length:   planar.Length(geom),
		LowSP:    lowSP,
		HighSP:   highSP,
	}
}

// Usable reports whether the line takes part in sequencing
func (l *SurveyLine) Usable() bool {
	return l != nil && l.Status == StatusToBeAcquired && !l.DeviationFailed && len(l.Geometry) >= 2
}

// EntryPose returns where and at what heading the vehicle starts the line
func (l *SurveyLine) EntryPose(d LineDirection) (Pose, bool) {
	g := l.Geometry
	if len(g) < 2 {
		return Pose{}, false
	}
	if d == HighToLow {
		n := len(g)
		return Pose{Position: g[n-1], Heading: Bearing(g[n-1], g[n-2])}, true
	}
	return Pose{Position: g[0], Heading: Bearing(g[0], g[1])}, true
}

// ExitPose returns where and at what heading the vehicle leaves the line
func (l *SurveyLine) ExitPose(d LineDirection) (Pose, bool) {
	g := l.Geometry
	if len(g) < 2 {
		return Pose{}, false
	}
	if d == HighToLow {
		return Pose{Position: g[0], Heading: Bearing(g[1], g[0])}, true
	}
	n := len(g)
	return Pose{Position: g[n-1], Heading: Bearing(g[n-2], g[n-1])}, true
}

// Oriented returns the geometry in traversal order for the given direction
func (l *SurveyLine) Oriented(d LineDirection) orb.LineString {
	if d == LowToHigh {
		return l.Geometry
	}
	out := make(orb.LineString, len(l.Geometry))
	for i, p := range l.Geometry {
		out[len(l.Geometry)-1-i] = p
	}
	return out
}

// StartSP returns the station number at the entry end for the direction
func (l *SurveyLine) StartSP(d LineDirection) int {
	if d == HighToLow {
		return l.HighSP
	}
	return l.LowSP
}

// EndSP returns the station number at the exit end for the direction
func (l *SurveyLine) EndSP(d LineDirection) int {
	if d == HighToLow {
		return l.LowSP
	}
	return l.HighSP
}

// Midpoint returns the centre vertex position of the line geometry
func (l *SurveyLine) Midpoint() orb.Point {
	g := l.Geometry
	if len(g) == 0 {
		return orb.Point{}
	}
	return Interpolate(g[0], g[len(g)-1], 0.5)
}

// ActiveLineIDs returns the sorted ids of lines that still need acquisition
// and did not fail deviation
func ActiveLineIDs(lines map[int]*SurveyLine) []int {
	ids := make([]int, 0, len(lines))
	for id, l := range lines {
		if l.Usable() {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	return ids
}

// RunInKey addresses a run-in geometry by line and end label
type RunInKey struct {
	LineID int
	End    string
}

// RunInSet stores the run-in geometries of a mission
type RunInSet map[RunInKey]orb.LineString

// Lookup returns the run-in leading into the entry end for the direction
func (r RunInSet) Lookup(lineID int, d LineDirection) (orb.LineString, bool) {
	g, ok := r[RunInKey{LineID: lineID, End: runInEndFor(d)}]
	return g, ok
}

// Seconds returns the one-way traversal time of the run-in for the direction,
// zero when no run-in geometry exists for that end
func (r RunInSet) Seconds(lineID int, d LineDirection, speed float64) float64 {
	g, ok := r.Lookup(lineID, d)
	if !ok || speed <= 0 {
		return 0
	}
	return planar.Length(g) / speed
}
