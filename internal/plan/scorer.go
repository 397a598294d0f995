package plan

import (
	"context"
	"math"
	"regexp"
	"strconv"

	"plancheck/internal/store"
)

// StreamFunc fetches the stream points for an activity. The scorer only
// needs heart rate; everything else in the points is ignored.
type StreamFunc func(ctx context.Context, activityID int64) ([]store.StreamPoint, error)

// Scorer computes compliance scores for planned workouts. It is stateless;
// the only side effect is the injected stream fetch.
type Scorer struct {
	FetchStreams StreamFunc
}

// NewScorer returns a scorer that fetches streams through fn. fn may be
// nil, in which case interval compliance is never computed.
func NewScorer(fn StreamFunc) *Scorer {
	return &Scorer{FetchStreams: fn}
}

// Heart-rate direction relative to the target.
const (
	DirectionOnTarget = "on_target"
	DirectionTooLow   = "too_low"
	DirectionTooHigh  = "too_high"
)

// Per-repeat interval statuses.
const (
	RepeatCompleted = "completed"
	RepeatTooShort  = "too_short"
	RepeatTooLong   = "too_long"
	RepeatWrongZone = "wrong_zone"
	RepeatMissing   = "missing"
)

// Duration scoring bands, as a ratio of actual to target time.
const (
	durationFullBand    = 0.2 // within 20% of target
	durationPartialBand = 0.4 // within 40%
	durationMinRatio    = 0.4 // anything at least 40% of target
)

const (
	durationFullScore    = 100
	durationPartialScore = 70
	durationLowScore     = 40
	durationFloorScore   = 20
)

// Heart-rate scoring values.
const (
	hrOnTargetScore  = 100
	hrAdjacentScore  = 60 // one zone off
	hrOffTargetScore = 30
	hrNearRangeScore = 70 // within rangeToleranceBPM of a literal range
	rangeToleranceBPM = 10
)

// Interval repeat scoring values and bands.
const (
	repeatLowerBound     = 0.8
	repeatUpperBound     = 1.2
	repeatFullScore      = 100
	repeatOffDurScore    = 70 // right zone, wrong duration
	repeatAdjacentScore  = 50 // one zone off
	repeatWrongZoneScore = 30
)

// componentWeights control how much each compliance component contributes.
// Weights for absent components are dropped and the rest renormalized, so
// a workout with no HR data is not penalized for it.
type componentWeights struct {
	recorded  float64
	duration  float64
	heartRate float64
	intervals float64
}

var (
	weightsWithIntervals = componentWeights{recorded: 0.2, duration: 0.2, heartRate: 0.1, intervals: 0.5}
	weightsNoIntervals   = componentWeights{recorded: 0.2, duration: 0.4, heartRate: 0.4}
)

// bpmRangeRe matches a literal heart-rate prescription like "140-150 bpm".
var bpmRangeRe = regexp.MustCompile(`(\d{2,3})\s*-\s*(\d{2,3})\s*bpm`)

// ComplianceResult is the full scored breakdown for one planned workout.
// It marshals to JSON for storage and display.
type ComplianceResult struct {
	Score            int               `json:"score"`
	ActivityRecorded bool              `json:"activity_recorded"`
	Duration         *DurationResult   `json:"duration,omitempty"`
	HeartRate        *HeartRateResult  `json:"heart_rate,omitempty"`
	Intervals        *IntervalResult   `json:"intervals,omitempty"`
}

// DurationResult scores recorded time against the planned duration.
type DurationResult struct {
	TargetMin int     `json:"target_min"`
	ActualMin float64 `json:"actual_min"`
	Score     int     `json:"score"`
}

// HeartRateResult scores average heart rate against the intensity target,
// either a literal bpm range or a zone. Direction is empty for literal
// ranges and one of the Direction constants for zone targets.
type HeartRateResult struct {
	AvgHeartrate float64 `json:"avg_heartrate"`
	TargetZone   *int    `json:"target_zone,omitempty"`
	RangeLow     *int    `json:"range_low,omitempty"`
	RangeHigh    *int    `json:"range_high,omitempty"`
	ActualZone   int     `json:"actual_zone,omitempty"`
	Direction    string  `json:"direction,omitempty"`
	Score        int     `json:"score"`
}

// IntervalResult scores a repeat prescription against detected efforts.
type IntervalResult struct {
	ExpectedRepeats   int            `json:"expected_repeats"`
	RepeatDurationSec int            `json:"repeat_duration_sec"`
	TargetZone        int            `json:"target_zone"`
	Repeats           []RepeatResult `json:"repeats"`
	Score             int            `json:"score"`
}

// RepeatResult is the outcome for one prescribed repeat, paired by
// position with the detected intervals.
type RepeatResult struct {
	Index        int     `json:"index"`
	Status       string  `json:"status"`
	DurationSec  int     `json:"duration_sec,omitempty"`
	AvgHeartrate float64 `json:"avg_heartrate,omitempty"`
	Zone         int     `json:"zone,omitempty"`
	Score        int     `json:"score"`
}

// defaultIntervalZone is assumed when a repeat prescription carries no
// resolvable zone.
const defaultIntervalZone = 3

// Compute scores one planned workout against its matched activity. A nil
// activity means the session was never recorded and scores zero. Identical
// inputs always produce identical results.
func (s *Scorer) Compute(ctx context.Context, w *store.PlannedWorkout, activity *store.Activity, zones ZoneTable) ComplianceResult {
	var res ComplianceResult
	if activity == nil {
		return res
	}
	res.ActivityRecorded = true

	var intensity, notes string
	if w.TargetIntensity != nil {
		intensity = *w.TargetIntensity
	}
	if w.Notes != nil {
		notes = *w.Notes
	}

	res.Duration = scoreDuration(w, activity)
	res.HeartRate = scoreHeartRate(intensity, activity, zones)
	res.Intervals = s.scoreIntervals(ctx, w.Title, notes, intensity, activity, zones)

	res.Score = combineScores(&res)
	return res
}

// scoreDuration returns nil when the plan gives no duration target.
func scoreDuration(w *store.PlannedWorkout, activity *store.Activity) *DurationResult {
	if w.TargetDurationMin == nil || *w.TargetDurationMin <= 0 {
		return nil
	}

	targetSec := float64(*w.TargetDurationMin * 60)
	ratio := float64(activity.MovingTime) / targetSec

	score := durationFloorScore
	switch {
	case ratio >= 1-durationFullBand && ratio <= 1+durationFullBand:
		score = durationFullScore
	case ratio >= 1-durationPartialBand && ratio <= 1+durationPartialBand:
		score = durationPartialScore
	case ratio >= durationMinRatio:
		score = durationLowScore
	}

	return &DurationResult{
		TargetMin: *w.TargetDurationMin,
		ActualMin: float64(activity.MovingTime) / 60,
		Score:     score,
	}
}

// scoreHeartRate returns nil when the activity has no average heart rate
// or the intensity text gives no usable target. A literal "140-150 bpm"
// range beats zone inference.
func scoreHeartRate(intensity string, activity *store.Activity, zones ZoneTable) *HeartRateResult {
	if activity.AverageHeartrate == nil {
		return nil
	}
	avg := *activity.AverageHeartrate

	if m := bpmRangeRe.FindStringSubmatch(intensity); m != nil {
		low, _ := strconv.Atoi(m[1])
		high, _ := strconv.Atoi(m[2])
		if low < high {
			score := hrOffTargetScore
			switch {
			case avg >= float64(low) && avg <= float64(high):
				score = hrOnTargetScore
			case avg >= float64(low-rangeToleranceBPM) && avg <= float64(high+rangeToleranceBPM):
				score = hrNearRangeScore
			}
			return &HeartRateResult{
				AvgHeartrate: avg,
				RangeLow:     &low,
				RangeHigh:    &high,
				Score:        score,
			}
		}
	}

	target, ok := ParseIntensityZone(intensity)
	if !ok || !zones.Valid() {
		return nil
	}

	actual := zones.ZoneFor(avg)
	direction := DirectionOnTarget
	score := hrOnTargetScore
	switch {
	case actual < target:
		direction = DirectionTooLow
	case actual > target:
		direction = DirectionTooHigh
	}
	switch diff := abs(actual - target); {
	case diff == 1:
		score = hrAdjacentScore
	case diff > 1:
		score = hrOffTargetScore
	}

	return &HeartRateResult{
		AvgHeartrate: avg,
		TargetZone:   &target,
		ActualZone:   actual,
		Direction:    direction,
		Score:        score,
	}
}

// scoreIntervals returns nil when the plan prescribes no repeats, no
// stream fetch is wired, the zone table is unusable, or the streams cannot
// be fetched. Fetch failures drop the component rather than failing the
// whole score.
func (s *Scorer) scoreIntervals(ctx context.Context, title, notes, intensity string, activity *store.Activity, zones ZoneTable) *IntervalResult {
	st := ParseIntervalStructure(title, notes, intensity)
	if st == nil || s.FetchStreams == nil || !zones.Valid() {
		return nil
	}

	points, err := s.FetchStreams(ctx, activity.ID)
	if err != nil || len(points) == 0 {
		return nil
	}

	times, rates := heartratePoints(points)
	if len(times) == 0 {
		return nil
	}

	target := defaultIntervalZone
	if st.TargetZone != nil {
		target = *st.TargetZone
	}

	detected := DetectIntervals(times, rates, zones, target, st.DurationSec)

	result := &IntervalResult{
		ExpectedRepeats:   st.Repeats,
		RepeatDurationSec: st.DurationSec,
		TargetZone:        target,
		Repeats:           make([]RepeatResult, 0, st.Repeats),
	}

	total := 0
	for i := 0; i < st.Repeats; i++ {
		r := scoreRepeat(i, detected, st.DurationSec, target)
		total += r.Score
		result.Repeats = append(result.Repeats, r)
	}
	result.Score = int(math.Round(float64(total) / float64(st.Repeats)))

	return result
}

// scoreRepeat pairs prescribed repeat i with the i-th detected interval.
func scoreRepeat(i int, detected []DetectedInterval, expectedSec, targetZone int) RepeatResult {
	if i >= len(detected) {
		return RepeatResult{Index: i + 1, Status: RepeatMissing}
	}

	d := detected[i]
	ratio := float64(d.DurationSec) / float64(expectedSec)
	zoneDiff := abs(d.Zone - targetZone)

	var status string
	var score int
	switch {
	case ratio < repeatLowerBound:
		status = RepeatTooShort
		score = offDurationScore(zoneDiff)
	case ratio > repeatUpperBound:
		status = RepeatTooLong
		score = offDurationScore(zoneDiff)
	case zoneDiff == 0:
		status = RepeatCompleted
		score = repeatFullScore
	default:
		status = RepeatWrongZone
		if zoneDiff == 1 {
			score = repeatAdjacentScore
		} else {
			score = repeatWrongZoneScore
		}
	}

	return RepeatResult{
		Index:        i + 1,
		Status:       status,
		DurationSec:  d.DurationSec,
		AvgHeartrate: d.AvgHeartrate,
		Zone:         d.Zone,
		Score:        score,
	}
}

func offDurationScore(zoneDiff int) int {
	switch {
	case zoneDiff == 0:
		return repeatOffDurScore
	case zoneDiff == 1:
		return repeatAdjacentScore
	default:
		return repeatWrongZoneScore
	}
}

// combineScores applies the component weights, renormalized over the
// components that are actually present. The recorded component always
// contributes a full score once an activity exists.
func combineScores(res *ComplianceResult) int {
	weights := weightsNoIntervals
	if res.Intervals != nil {
		weights = weightsWithIntervals
	}

	sum := weights.recorded * 100
	total := weights.recorded

	if res.Duration != nil {
		sum += weights.duration * float64(res.Duration.Score)
		total += weights.duration
	}
	if res.HeartRate != nil {
		sum += weights.heartRate * float64(res.HeartRate.Score)
		total += weights.heartRate
	}
	if res.Intervals != nil {
		sum += weights.intervals * float64(res.Intervals.Score)
		total += weights.intervals
	}

	if total == 0 {
		return 0
	}

	score := int(math.Round(sum / total))
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}

// heartratePoints flattens stream points into parallel time/heart-rate
// slices, skipping samples with no heart rate.
func heartratePoints(points []store.StreamPoint) (times, rates []int) {
	times = make([]int, 0, len(points))
	rates = make([]int, 0, len(points))
	for _, p := range points {
		if p.Heartrate == nil {
			continue
		}
		times = append(times, p.TimeOffset)
		rates = append(rates, *p.Heartrate)
	}
	return times, rates
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
