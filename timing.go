package main

import (
	"fmt"
	"time"
)

// RunInRepeatFactor is the uniform scaling applied to every run-in time when
// accumulating segment costs. Callers may override it per run through
// TimingParams.RunInFactor; downstream acceptance totals assume the doubled
// value, so it is never silently changed here.
const RunInRepeatFactor = 2.0

// TimingParams configures the segment timing accumulator. A zero RunInFactor
// means RunInRepeatFactor.
type TimingParams struct {
	AcquisitionSpeed float64
	RunInSpeed       float64
	StartTime        time.Time
	StartSeqNum      int
	RunInFactor      float64
}

// TimingRecord is one row of the acquisition schedule. StartTime marks the
// beginning of the run-in/line portion, after the inbound turn completes;
// TotalSeconds includes the turn.
type TimingRecord struct {
	SeqNum       int           `json:"seqNum"`
	LineID       int           `json:"line"`
	Direction    LineDirection `json:"direction"`
	StartSP      int           `json:"startSP"`
	EndSP        int           `json:"endSP"`
	StartTime    time.Time     `json:"startTime"`
	EndTime      time.Time     `json:"endTime"`
	TurnSeconds  float64       `json:"turnSeconds"`
	RunInSeconds float64       `json:"runInSeconds"`
	LineSeconds  float64       `json:"lineSeconds"`
	TotalSeconds float64       `json:"totalSeconds"`
}

// ComputeTiming walks a sequence forward from the start time, producing one
// record per line and the total duration in seconds. Any missing line data,
// failed turn, or unresolvable exit state aborts the whole calculation:
// partial schedules are never returned.
func ComputeTiming(seq []int, dirs map[int]LineDirection, lines map[int]*SurveyLine, runIns RunInSet, tc TurnConstraints, cache *TurnCache, tp TimingParams) ([]TimingRecord, float64, error) {
	if len(seq) == 0 {
		return nil, 0, nil
	}
	if tp.AcquisitionSpeed <= 0 {
		return nil, 0, fmt.Errorf("acquisition speed must be positive, got %v", tp.AcquisitionSpeed)
	}
	factor := tp.RunInFactor
	if factor == 0 {
		factor = RunInRepeatFactor
	}

	records := make([]TimingRecord, 0, len(seq))
	current := tp.StartTime
	total := 0.0

	var exit Pose

	for i, id := range seq {
		line, ok := lines[id]
		if !ok {
			return nil, 0, fmt.Errorf("line data not found for line %d", id)
		}
		dir, ok := dirs[id]
		if !ok {
			return nil, 0, fmt.Errorf("no direction assigned for line %d", id)
		}

		lineSec := line.Length / tp.AcquisitionSpeed
		runInSec := runIns.Seconds(id, dir, tp.RunInSpeed) * factor

		turnSec := 0.0
		if i > 0 {
			entry, ok := line.EntryPose(dir)
			if !ok {
				return nil, 0, fmt.Errorf("no entry pose for line %d", id)
			}
			turn, ok := GetCachedTurn(seq[i-1], id, dir, exit, entry, tc, cache)
			if !ok {
				return nil, 0, fmt.Errorf("turn calculation failed for %d->%d", seq[i-1], id)
			}
			turnSec = turn.Seconds
		}

		segStart := current.Add(time.Duration(turnSec * float64(time.Second)))
		segEnd := segStart.Add(time.Duration((runInSec + lineSec) * float64(time.Second)))
		segTotal := turnSec + runInSec + lineSec

		records = append(records, TimingRecord{
			SeqNum:       tp.StartSeqNum + i,
			LineID:       id,
			Direction:    dir,
			StartSP:      line.StartSP(dir),
			EndSP:        line.EndSP(dir),
			StartTime:    segStart,
			EndTime:      segEnd,
			TurnSeconds:  turnSec,
			RunInSeconds: runInSec,
			LineSeconds:  lineSec,
			TotalSeconds: segTotal,
		})

		current = segEnd
		total += segTotal

		exit, ok = line.ExitPose(dir)
		if !ok {
			return nil, 0, fmt.Errorf("could not determine exit state after line %d", id)
		}
	}

	return records, total, nil
}

// FormatDuration renders seconds as HH:MM:SS for logs and reports
func FormatDuration(seconds float64) string {
	d := time.Duration(seconds * float64(time.Second)).Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
