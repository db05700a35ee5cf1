package main

import (
	"fmt"
	"log"
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
)

// PlanConfig carries every caller-supplied knob for one mission run. Nothing
// in it is defaulted here; the service shell fills gaps before calling.
type PlanConfig struct {
	Plan               PlanParams
	AcquisitionSpeed   float64
	TransitSpeed       float64
	RunInSpeed         float64
	RunInFactor        float64
	DeviationClearance float64
	DeviationMargin    float64
	Mode               AcquisitionMode
	Heading            HeadingPreference
	FirstLine          int
	StartTime          time.Time
	StartSeqNum        int
	Seed               int64
}

// PlanResult is the outcome of one full mission run
type PlanResult struct {
	RunID         string
	Sequence      *SequenceResult
	Route         orb.LineString
	ActiveLines   []int
	FailedLines   []int
	DeviatedLines []int
	CacheHits     int
	CacheMisses   int
	Elapsed       time.Duration
}

// RunPlan executes the full mission pipeline: zone preparation, per-line
// deviations, sequencing, timing, and route reconstruction. The mission's
// lines are mutated in place by the deviation step, so a Mission belongs to
// exactly one run.
func RunPlan(m *Mission, cfg PlanConfig) (*PlanResult, error) {
	started := time.Now()
	runID := uuid.NewString()
	log.Printf("🚀 Planning run %s started\n", runID)

	if len(m.Lines) == 0 {
		return nil, fmt.Errorf("mission has no survey lines")
	}
	if cfg.AcquisitionSpeed <= 0 || cfg.TransitSpeed <= 0 {
		return nil, fmt.Errorf("speeds must be positive (acquisition %.2f, transit %.2f)", cfg.AcquisitionSpeed, cfg.TransitSpeed)
	}

	rng := NewPlanRand()
	if cfg.Seed != 0 {
		rng = rand.New(rand.NewSource(cfg.Seed))
	}

	merged := MergeZones(m.Obstacles)
	buffered := BufferZones(merged, cfg.DeviationClearance)
	obstacles := NewObstacleSet(buffered)
	log.Printf("🗺️  Obstacle index ready: %d zones (clearance %.1f m)\n", obstacles.Len(), cfg.DeviationClearance)

	ApplyDeviations(m.Lines, obstacles, DeviationParams{
		Margin: cfg.DeviationMargin,
		Plan:   cfg.Plan,
		Rand:   rng,
	})

	active := ActiveLineIDs(m.Lines)
	if len(active) == 0 {
		return nil, fmt.Errorf("no usable 'to be acquired' lines after deviation checks")
	}
	log.Printf("   Proceeding with %d usable lines\n", len(active))

	first := ResolveFirstLine(active, cfg.FirstLine)

	cache := NewTurnCache()
	tc := TurnConstraints{
		MinTurnRadius: cfg.Plan.MinTurnRadius,
		TransitSpeed:  cfg.TransitSpeed,
		Obstacles:     obstacles,
		Plan:          cfg.Plan,
		Rand:          rng,
	}
	tp := TimingParams{
		AcquisitionSpeed: cfg.AcquisitionSpeed,
		RunInSpeed:       cfg.RunInSpeed,
		StartTime:        cfg.StartTime,
		StartSeqNum:      cfg.StartSeqNum,
		RunInFactor:      cfg.RunInFactor,
	}

	seq, err := GenerateSequence(cfg.Mode, active, first, cfg.Heading, m.Lines, m.RunIns, tc, cache, tp)
	if err != nil {
		return nil, err
	}

	route, ok := ReconstructRoute(seq, m.Lines, tc, cache)
	if !ok {
		log.Println("⚠️ Route reconstruction incomplete, returning sequence without geometry")
		route = nil
	}

	hits, misses := cache.Stats()
	log.Printf("⏱️ Turn cache: %d hits, %d misses (%d keys)\n", hits, misses, cache.Len())
	log.Printf("✅ Final estimated cost: %.2f hours (%s)\n", seq.TotalSeconds/3600.0, FormatDuration(seq.TotalSeconds))

	return &PlanResult{
		RunID:         runID,
		Sequence:      seq,
		Route:         route,
		ActiveLines:   active,
		FailedLines:   filterLineIDs(m.Lines, func(l *SurveyLine) bool { return l.DeviationFailed }),
		DeviatedLines: filterLineIDs(m.Lines, func(l *SurveyLine) bool { return l.Deviated }),
		CacheHits:     hits,
		CacheMisses:   misses,
		Elapsed:       time.Since(started),
	}, nil
}

func filterLineIDs(lines map[int]*SurveyLine, keep func(*SurveyLine) bool) []int {
	var ids []int
	for id, l := range lines {
		if l != nil && keep(l) {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	return ids
}
