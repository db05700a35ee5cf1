package main

import (
	"encoding/json"
	"log"
	"math"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

const serviceVersion = "1.1.0"

// PlanRequestParams are the per-request tunables. Zero values fall back to
// the service defaults; the core never sees a zero tunable.
type PlanRequestParams struct {
	MinTurnRadius      float64   `json:"minTurnRadius,omitempty"`
	StepSize           float64   `json:"stepSize,omitempty"`
	MaxIterations      int       `json:"maxIterations,omitempty"`
	GoalBias           float64   `json:"goalBias,omitempty"`
	GoalDistanceTol    float64   `json:"goalDistanceTol,omitempty"`
	GoalAngleTolDeg    float64   `json:"goalAngleTolDeg,omitempty"`
	AcquisitionSpeed   float64   `json:"acquisitionSpeed,omitempty"`
	TransitSpeed       float64   `json:"transitSpeed,omitempty"`
	RunInSpeed         float64   `json:"runInSpeed,omitempty"`
	RunInFactor        float64   `json:"runInFactor,omitempty"`
	DeviationClearance float64   `json:"deviationClearance,omitempty"`
	DeviationMargin    float64   `json:"deviationMargin,omitempty"`
	Mode               string    `json:"mode,omitempty"`
	Heading            string    `json:"heading,omitempty"`
	FirstLine          int       `json:"firstLine,omitempty"`
	StartTime          time.Time `json:"startTime,omitempty"`
	StartSeqNum        int       `json:"startSeqNum,omitempty"`
	Seed               int64     `json:"seed,omitempty"`
}

type PlanRequest struct {
	Lines     *geojson.FeatureCollection `json:"lines"`
	RunIns    *geojson.FeatureCollection `json:"runIns,omitempty"`
	Obstacles *geojson.FeatureCollection `json:"obstacles,omitempty"`
	Params    PlanRequestParams          `json:"params"`
}

type PlanResponse struct {
	Success       bool                  `json:"success"`
	RunID         string                `json:"runId,omitempty"`
	Message       string                `json:"message,omitempty"`
	Mode          AcquisitionMode       `json:"mode,omitempty"`
	Sequence      []int                 `json:"sequence,omitempty"`
	Directions    map[int]LineDirection `json:"directions,omitempty"`
	Records       []TimingRecord        `json:"records,omitempty"`
	TotalSeconds  float64               `json:"totalSeconds,omitempty"`
	TotalClock    string                `json:"totalClock,omitempty"`
	Partial       bool                  `json:"partial,omitempty"`
	FailedLines   []int                 `json:"failedLines,omitempty"`
	DeviatedLines []int                 `json:"deviatedLines,omitempty"`
	Route         *geojson.Feature      `json:"route,omitempty"`
}

type RouteRequest struct {
	Start     Pose                       `json:"start"`
	End       Pose                       `json:"end"`
	Obstacles *geojson.FeatureCollection `json:"obstacles,omitempty"`
	Params    PlanRequestParams          `json:"params"`
}

type RouteResponse struct {
	Success        bool             `json:"success"`
	Message        string           `json:"message,omitempty"`
	Path           *geojson.Feature `json:"path,omitempty"`
	DistanceMeters float64          `json:"distanceMeters,omitempty"`
	Stats          PlanStats        `json:"stats"`
}

var (
	serviceDefaults = DefaultPlannerDefaults()
	defaultsMutex   sync.RWMutex
)

// corsMiddleware adds CORS headers to allow frontend requests
func corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		// Handle preflight
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

// requestConfig overlays the service defaults onto request params, leaving
// explicitly supplied values alone
func requestConfig(p PlanRequestParams, d PlannerDefaults) PlanConfig {
	pick := func(v, def float64) float64 {
		if v == 0 {
			return def
		}
		return v
	}
	pickInt := func(v, def int) int {
		if v == 0 {
			return def
		}
		return v
	}

	cfg := PlanConfig{
		Plan: PlanParams{
			MinTurnRadius:   pick(p.MinTurnRadius, d.MinTurnRadius),
			StepSize:        pick(p.StepSize, d.StepSize),
			MaxIterations:   pickInt(p.MaxIterations, d.MaxIterations),
			GoalBias:        pick(p.GoalBias, d.GoalBias),
			GoalDistanceTol: pick(p.GoalDistanceTol, d.GoalDistanceTol),
			GoalAngleTol:    pick(p.GoalAngleTolDeg, d.GoalAngleTolDeg) * math.Pi / 180.0,
		},
		AcquisitionSpeed:   pick(p.AcquisitionSpeed, d.AcquisitionSpeed),
		TransitSpeed:       pick(p.TransitSpeed, d.TransitSpeed),
		RunInSpeed:         pick(p.RunInSpeed, d.RunInSpeed),
		RunInFactor:        p.RunInFactor,
		DeviationClearance: pick(p.DeviationClearance, d.DeviationClearance),
		DeviationMargin:    pick(p.DeviationMargin, d.DeviationMargin),
		Mode:               AcquisitionMode(strings.ToLower(strings.TrimSpace(p.Mode))),
		Heading:            HeadingPreference(strings.ToLower(strings.TrimSpace(p.Heading))),
		FirstLine:          p.FirstLine,
		StartTime:          p.StartTime,
		StartSeqNum:        pickInt(p.StartSeqNum, 1),
		Seed:               p.Seed,
	}
	if cfg.Mode == "" {
		cfg.Mode = AcquisitionMode(d.Mode)
	}
	if cfg.Heading == "" {
		cfg.Heading = HeadingPreference(d.Heading)
	}
	if cfg.StartTime.IsZero() {
		cfg.StartTime = time.Now().UTC()
	}
	return cfg
}

// POST /plan - Plan a full mission
func planHandler(w http.ResponseWriter, r *http.Request) {
	log.Println("========================================")
	log.Println("📍 Plan request received")

	if r.Method != http.MethodPost {
		log.Printf("❌ Method not allowed: %s\n", r.Method)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req PlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("❌ Invalid request body: %v\n", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	mission := &Mission{
		Lines:  ParseSurveyLines(req.Lines),
		RunIns: ParseRunIns(req.RunIns),
	}
	if req.Obstacles != nil {
		mission.Obstacles = ParseObstacles(req.Obstacles)
	}

	log.Printf("   Lines: %d, run-ins: %d, no-go polygons: %d\n",
		len(mission.Lines), len(mission.RunIns), len(mission.Obstacles))

	defaultsMutex.RLock()
	cfg := requestConfig(req.Params, serviceDefaults)
	defaultsMutex.RUnlock()

	result, err := RunPlan(mission, cfg)
	if err != nil {
		log.Printf("❌ Planning failed: %v\n", err)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(PlanResponse{Success: false, Message: err.Error()})
		log.Println("========================================")
		return
	}

	response := PlanResponse{
		Success:       true,
		RunID:         result.RunID,
		Mode:          result.Sequence.Mode,
		Sequence:      result.Sequence.Sequence,
		Directions:    result.Sequence.Directions,
		Records:       result.Sequence.Records,
		TotalSeconds:  result.Sequence.TotalSeconds,
		TotalClock:    FormatDuration(result.Sequence.TotalSeconds),
		Partial:       result.Sequence.Partial,
		FailedLines:   result.FailedLines,
		DeviatedLines: result.DeviatedLines,
	}
	if len(result.Route) >= 2 {
		response.Route = geojson.NewFeature(result.Route)
	}

	log.Printf("✅ Plan %s finished in %s: %d lines, %s total\n",
		result.RunID, result.Elapsed.Round(time.Millisecond), len(response.Sequence), response.TotalClock)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
	log.Println("========================================")
}

// POST /route - Plan a single path between two poses
func routeHandler(w http.ResponseWriter, r *http.Request) {
	log.Println("========================================")
	log.Println("📍 Route request received")

	if r.Method != http.MethodPost {
		log.Printf("❌ Method not allowed: %s\n", r.Method)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req RouteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("❌ Invalid request body: %v\n", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	log.Printf("   Start: (%.2f, %.2f) heading %.3f\n", req.Start.Position.X(), req.Start.Position.Y(), req.Start.Heading)
	log.Printf("   End:   (%.2f, %.2f) heading %.3f\n", req.End.Position.X(), req.End.Position.Y(), req.End.Heading)

	var zones []orb.Polygon
	if req.Obstacles != nil {
		zones = MergeZones(ParseObstacles(req.Obstacles))
	}
	obstacles := NewObstacleSet(zones)

	defaultsMutex.RLock()
	cfg := requestConfig(req.Params, serviceDefaults)
	defaultsMutex.RUnlock()

	bound := RouteBound(req.Start.Position, req.End.Position, cfg.DeviationMargin)
	cfg.Plan.Bounds = &bound

	rng := NewPlanRand()
	if cfg.Seed != 0 {
		rng = rand.New(rand.NewSource(cfg.Seed))
	}

	path, stats, ok := PlanPath(req.Start, req.End, obstacles, cfg.Plan, rng)

	response := RouteResponse{Success: ok, Stats: stats}
	if !ok {
		log.Println("❌ No path found")
		response.Message = "No path found between the requested poses"
	} else {
		dist := planar.Length(path)
		response.Path = geojson.NewFeature(path)
		response.DistanceMeters = dist
		log.Printf("✅ Path found with %d waypoints\n", len(path))
		log.Printf("   Distance: %.2f meters (%.2f km)\n", dist, dist/1000)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
	log.Println("========================================")
}

// GET /health - Health check endpoint
func healthHandler(w http.ResponseWriter, r *http.Request) {
	defaultsMutex.RLock()
	defaults := serviceDefaults
	defaultsMutex.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":   "ready",
		"version":  serviceVersion,
		"defaults": defaults,
	})
}

func main() {
	log.Println("========================================")
	log.Println("🚀 Survey Acquisition Planner")
	log.Println("========================================")

	defaults, err := LoadPlannerDefaults("planner.yaml")
	if err != nil {
		log.Fatalf("❌ Configuration error: %v", err)
	}
	defaultsMutex.Lock()
	serviceDefaults = defaults
	defaultsMutex.Unlock()

	log.Printf("   Turn radius: %.1f m, step: %.1f m, iterations: %d\n",
		defaults.MinTurnRadius, defaults.StepSize, defaults.MaxIterations)
	log.Printf("   Speeds: acquisition %.1f, transit %.1f, run-in %.1f m/s\n",
		defaults.AcquisitionSpeed, defaults.TransitSpeed, defaults.RunInSpeed)
	log.Println("")

	http.HandleFunc("/plan", corsMiddleware(planHandler))
	http.HandleFunc("/route", corsMiddleware(routeHandler))
	http.HandleFunc("/health", corsMiddleware(healthHandler))

	log.Printf("Server starting on %s\n", defaults.ListenAddr)
	log.Println("")
	log.Println("Endpoints:")
	log.Println("  POST /plan    - Plan a full acquisition mission (lines, run-ins, no-go zones)")
	log.Println("  POST /route   - Plan a single path between two poses")
	log.Println("  GET  /health  - Check server status")
	log.Println("")
	log.Println("CORS enabled for all origins")
	log.Println("========================================")
	log.Println("")

	if err := http.ListenAndServe(defaults.ListenAddr, nil); err != nil {
		log.Fatal(err)
	}
}
