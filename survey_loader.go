package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Mission bundles everything one planning run consumes: the line inventory,
// run-in geometries keyed by line and end, and the raw no-go polygons before
// merging.
type Mission struct {
	Lines     map[int]*SurveyLine
	RunIns    RunInSet
	Obstacles []orb.Polygon
}

// LoadMission reads the mission from GeoJSON files. The lines file is
// required; empty run-in and obstacle paths mean the mission has none.
func LoadMission(linesPath, runInsPath, obstaclesPath string) (*Mission, error) {
	m := &Mission{Lines: map[int]*SurveyLine{}, RunIns: RunInSet{}}

	fc, err := readFeatureCollection(linesPath)
	if err != nil {
		return nil, fmt.Errorf("reading survey lines: %w", err)
	}
	m.Lines = ParseSurveyLines(fc)
	log.Printf("   ✅ Loaded %d survey lines from %s\n", len(m.Lines), linesPath)

	if runInsPath != "" {
		fc, err := readFeatureCollection(runInsPath)
		if err != nil {
			return nil, fmt.Errorf("reading run-ins: %w", err)
		}
		m.RunIns = ParseRunIns(fc)
		log.Printf("   ✅ Loaded %d run-in geometries from %s\n", len(m.RunIns), runInsPath)
	}

	if obstaclesPath != "" {
		fc, err := readFeatureCollection(obstaclesPath)
		if err != nil {
			return nil, fmt.Errorf("reading no-go zones: %w", err)
		}
		m.Obstacles = ParseObstacles(fc)
		log.Printf("   ✅ Loaded %d no-go polygons from %s\n", len(m.Obstacles), obstaclesPath)
	}

	return m, nil
}

func readFeatureCollection(path string) (*geojson.FeatureCollection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return geojson.UnmarshalFeatureCollection(data)
}

// ParseSurveyLines extracts the line inventory from a FeatureCollection.
// Features without a line id or a usable LineString are skipped with a
// warning.
func ParseSurveyLines(fc *geojson.FeatureCollection) map[int]*SurveyLine {
	lines := make(map[int]*SurveyLine)
	if fc == nil {
		return lines
	}
	for _, f := range fc.Features {
		id := f.Properties.MustInt("line", -1)
		if id < 0 {
			log.Printf("⚠️  Skipping line feature without a 'line' id\n")
			continue
		}
		geom, ok := f.Geometry.(orb.LineString)
		if !ok || len(geom) < 2 {
			log.Printf("⚠️  Skipping line %d: geometry is not a LineString with 2+ points\n", id)
			continue
		}
		status := ParseLineStatus(f.Properties.MustString("status", ""))
		lowSP := f.Properties.MustInt("low_sp", 0)
		highSP := f.Properties.MustInt("high_sp", 0)
		lines[id] = NewSurveyLine(id, status, geom, lowSP, highSP)
	}
	return lines
}

// ParseRunIns extracts run-in geometries. The end label is matched case
// insensitively so "Start"/"End" sources work unchanged.
func ParseRunIns(fc *geojson.FeatureCollection) RunInSet {
	runIns := RunInSet{}
	if fc == nil {
		return runIns
	}
	for _, f := range fc.Features {
		id := f.Properties.MustInt("line", -1)
		if id < 0 {
			log.Printf("⚠️  Skipping run-in feature without a 'line' id\n")
			continue
		}
		end := strings.ToLower(strings.TrimSpace(f.Properties.MustString("end", "")))
		if end != RunInStart && end != RunInEnd {
			log.Printf("⚠️  Skipping run-in for line %d: end %q is not start/end\n", id, end)
			continue
		}
		geom, ok := f.Geometry.(orb.LineString)
		if !ok || len(geom) < 2 {
			log.Printf("⚠️  Skipping run-in for line %d: geometry is not a LineString with 2+ points\n", id)
			continue
		}
		runIns[RunInKey{LineID: id, End: end}] = geom
	}
	return runIns
}

// ParseObstacles extracts no-go polygons, splitting MultiPolygons and keeping
// interior rings. Other geometry types are skipped with a warning.
func ParseObstacles(fc *geojson.FeatureCollection) []orb.Polygon {
	var zones []orb.Polygon
	if fc == nil {
		return zones
	}
	for _, f := range fc.Features {
		switch g := f.Geometry.(type) {
		case orb.Polygon:
			zones = append(zones, g)
		case orb.MultiPolygon:
			zones = append(zones, g...)
		default:
			log.Printf("⚠️  Skipping no-go feature with geometry type %q\n", f.Geometry.GeoJSONType())
		}
	}
	return zones
}
