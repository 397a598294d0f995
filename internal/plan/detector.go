package plan

// DetectedInterval is one sustained effort bout found in a heart-rate
// stream, relative to a target zone.
type DetectedInterval struct {
	StartSec     int     `json:"start_sec"`
	EndSec       int     `json:"end_sec"`
	DurationSec  int     `json:"duration_sec"`
	AvgHeartrate float64 `json:"avg_heartrate"`
	MaxHeartrate int     `json:"max_heartrate"`
	Zone         int     `json:"zone"` // zone the average heart rate falls into
}

// Detection tuning. Entry and exit thresholds sit below the target zone
// floor and differ from each other so heart rates oscillating around the
// boundary don't open and close intervals repeatedly (hysteresis).
const (
	warmupSkipSec     = 300 // ignore everything in the first 5 minutes
	entryBelowFloor   = 5   // entry threshold = zone floor - 5 bpm
	exitBelowFloor    = 10  // exit threshold = zone floor - 10 bpm
	entryDwellSamples = 10  // consecutive samples above entry to open
	exitDwellSamples  = 10  // consecutive samples below exit to close
	minKeepFraction   = 0.5 // keep intervals >= half the expected duration
)

// DetectIntervals scans parallel (elapsed-second, heart-rate) series for
// sustained bouts at or above the target zone. Samples are assumed to be
// roughly one per second; dwell counts are treated as seconds when
// backdating interval boundaries. Returns intervals earliest first, or nil
// for empty, mismatched, or out-of-range input.
func DetectIntervals(times, rates []int, zones ZoneTable, targetZone, minDurationSec int) []DetectedInterval {
	if len(times) == 0 || len(times) != len(rates) {
		return nil
	}
	band, ok := zones.Range(targetZone)
	if !ok {
		return nil
	}

	entryThreshold := band.Min - entryBelowFloor
	exitThreshold := band.Min - exitBelowFloor

	var out []DetectedInterval

	// Two-state machine: outside an interval we count consecutive samples
	// above the entry threshold; inside we accumulate stats and count
	// consecutive samples below the exit threshold.
	inside := false
	var entryRun, entrySum, entryMax int
	var exitRun int
	var startSec int
	var hrSum float64
	var hrCount, maxHR int

	for i := range times {
		t, hr := times[i], rates[i]
		if t < warmupSkipSec {
			continue
		}

		if !inside {
			if hr < entryThreshold {
				entryRun, entrySum, entryMax = 0, 0, 0
				continue
			}
			entryRun++
			entrySum += hr
			if hr > entryMax {
				entryMax = hr
			}
			if entryRun >= entryDwellSamples {
				inside = true
				startSec = t - entryDwellSamples // backdate to where the dwell began
				hrSum = float64(entrySum)
				hrCount = entryDwellSamples
				maxHR = entryMax
				exitRun = 0
			}
			continue
		}

		hrSum += float64(hr)
		hrCount++
		if hr > maxHR {
			maxHR = hr
		}

		if hr < exitThreshold {
			exitRun++
			if exitRun >= exitDwellSamples {
				out = appendIfLongEnough(out, zones, startSec, t-exitDwellSamples, hrSum, hrCount, maxHR, minDurationSec)
				inside = false
				entryRun, entrySum, entryMax = 0, 0, 0
			}
		} else {
			exitRun = 0
		}
	}

	// Close an interval still open at the end of the stream.
	if inside {
		out = appendIfLongEnough(out, zones, startSec, times[len(times)-1], hrSum, hrCount, maxHR, minDurationSec)
	}

	return out
}

func appendIfLongEnough(out []DetectedInterval, zones ZoneTable, startSec, endSec int, hrSum float64, hrCount, maxHR, minDurationSec int) []DetectedInterval {
	duration := endSec - startSec
	if float64(duration) < minKeepFraction*float64(minDurationSec) {
		return out
	}

	avg := 0.0
	if hrCount > 0 {
		avg = hrSum / float64(hrCount)
	}

	return append(out, DetectedInterval{
		StartSec:     startSec,
		EndSec:       endSec,
		DurationSec:  duration,
		AvgHeartrate: avg,
		MaxHeartrate: maxHR,
		Zone:         zones.ZoneFor(avg),
	})
}
