package main

import (
	"errors"
	"fmt"
	"log"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// PlannerDefaults are the service-level fallbacks applied to requests that
// leave tunables zero. The core planning API never reads these; every value
// reaches it as an explicit parameter.
type PlannerDefaults struct {
	ListenAddr         string  `yaml:"listen_addr" json:"listenAddr"`
	MinTurnRadius      float64 `yaml:"min_turn_radius" json:"minTurnRadius"`
	StepSize           float64 `yaml:"step_size" json:"stepSize"`
	MaxIterations      int     `yaml:"max_iterations" json:"maxIterations"`
	GoalBias           float64 `yaml:"goal_bias" json:"goalBias"`
	GoalDistanceTol    float64 `yaml:"goal_distance_tol" json:"goalDistanceTol"`
	GoalAngleTolDeg    float64 `yaml:"goal_angle_tol_deg" json:"goalAngleTolDeg"`
	AcquisitionSpeed   float64 `yaml:"acquisition_speed" json:"acquisitionSpeed"`
	TransitSpeed       float64 `yaml:"transit_speed" json:"transitSpeed"`
	RunInSpeed         float64 `yaml:"run_in_speed" json:"runInSpeed"`
	DeviationClearance float64 `yaml:"deviation_clearance" json:"deviationClearance"`
	DeviationMargin    float64 `yaml:"deviation_margin" json:"deviationMargin"`
	Mode               string  `yaml:"mode" json:"mode"`
	Heading            string  `yaml:"heading" json:"heading"`
}

// DefaultPlannerDefaults returns the compiled-in configuration
func DefaultPlannerDefaults() PlannerDefaults {
	return PlannerDefaults{
		ListenAddr:         ":8080",
		MinTurnRadius:      DefaultMinTurnRadius,
		StepSize:           DefaultStepSize,
		MaxIterations:      DefaultMaxIterations,
		GoalBias:           DefaultGoalBias,
		GoalDistanceTol:    DefaultGoalDistanceTol,
		GoalAngleTolDeg:    15.0,
		AcquisitionSpeed:   2.0,
		TransitSpeed:       2.5,
		RunInSpeed:         2.0,
		DeviationClearance: 50.0,
		DeviationMargin:    100.0,
		Mode:               string(ModeRacetrack),
		Heading:            string(HeadingNormal),
	}
}

// LoadPlannerDefaults overlays a YAML file onto the compiled-in defaults. A
// missing file is fine; a malformed one is an error.
func LoadPlannerDefaults(path string) (PlannerDefaults, error) {
	d := DefaultPlannerDefaults()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		log.Printf("ℹ️ No %s found, using compiled-in defaults\n", path)
		return d, nil
	}
	if err != nil {
		return d, err
	}

	if err := yaml.Unmarshal(data, &d); err != nil {
		return d, fmt.Errorf("parsing %s: %w", path, err)
	}
	log.Printf("📂 Loaded planner defaults from %s\n", path)
	return d, nil
}

// PlanParams converts the defaults into planner parameters, with the angle
// tolerance moved from degrees to radians
func (d PlannerDefaults) PlanParams() PlanParams {
	return PlanParams{
		MinTurnRadius:   d.MinTurnRadius,
		StepSize:        d.StepSize,
		MaxIterations:   d.MaxIterations,
		GoalBias:        d.GoalBias,
		GoalDistanceTol: d.GoalDistanceTol,
		GoalAngleTol:    d.GoalAngleTolDeg * math.Pi / 180.0,
	}
}
