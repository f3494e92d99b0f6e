package source

import "math"

// Stats summarises a sequence the way the script info panel shows it.
type Stats struct {
	NumPoints        int
	DurationScripted float64 // seconds between first and last action
	AvgSpeed         float64 // position units per second
	AvgIntensity     float64 // mean absolute stroke depth, percent
	MinPos, MaxPos   int     // -1 when empty
	AvgIntervalMs    float64
	MinIntervalMs    int64 // -1 when fewer than two actions
	MaxIntervalMs    int64
	TotalTravel      int
	NumStrokes       int // direction reversals
}

func ComputeStats(s Sequence) Stats {
	st := Stats{
		NumPoints:     len(s),
		MinPos:        -1,
		MaxPos:        -1,
		MinIntervalMs: -1,
		MaxIntervalMs: -1,
	}
	if len(s) == 0 {
		return st
	}

	st.MinPos, st.MaxPos = s[0].Pos, s[0].Pos
	for _, a := range s[1:] {
		if a.Pos < st.MinPos {
			st.MinPos = a.Pos
		}
		if a.Pos > st.MaxPos {
			st.MaxPos = a.Pos
		}
	}
	if len(s) < 2 {
		return st
	}

	st.DurationScripted = float64(s[len(s)-1].At-s[0].At) / 1000.0

	var speedSum float64
	var speedN int
	var intervalSum int64
	st.MinIntervalMs = math.MaxInt64
	prevDir := 0

	for i := 1; i < len(s); i++ {
		dt := s[i].At - s[i-1].At
		dp := s[i].Pos - s[i-1].Pos
		travel := dp
		if travel < 0 {
			travel = -travel
		}
		st.TotalTravel += travel

		intervalSum += dt
		if dt < st.MinIntervalMs {
			st.MinIntervalMs = dt
		}
		if dt > st.MaxIntervalMs {
			st.MaxIntervalMs = dt
		}
		if dt > 0 {
			speedSum += float64(travel) / (float64(dt) / 1000.0)
			speedN++
		}

		dir := 0
		switch {
		case dp > 0:
			dir = 1
		case dp < 0:
			dir = -1
		}
		if dir != 0 {
			if prevDir != 0 && dir != prevDir {
				st.NumStrokes++
			}
			prevDir = dir
		}
	}

	intervals := len(s) - 1
	st.AvgIntervalMs = float64(intervalSum) / float64(intervals)
	st.AvgIntensity = float64(st.TotalTravel) / float64(intervals)
	if speedN > 0 {
		st.AvgSpeed = speedSum / float64(speedN)
	}
	return st
}
