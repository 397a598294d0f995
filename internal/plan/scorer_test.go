package plan

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"

	"plancheck/internal/store"
)

// hrStream builds one-sample-per-second stream points with only heart rate.
func hrStream(activityID int64, totalSec int, hrAt func(sec int) int) []store.StreamPoint {
	points := make([]store.StreamPoint, totalSec)
	for i := 0; i < totalSec; i++ {
		hr := hrAt(i)
		points[i] = store.StreamPoint{
			ActivityID: activityID,
			TimeOffset: i,
			Heartrate:  &hr,
		}
	}
	return points
}

func fixedStreams(points []store.StreamPoint) StreamFunc {
	return func(ctx context.Context, activityID int64) ([]store.StreamPoint, error) {
		return points, nil
	}
}

func failingStreams() StreamFunc {
	return func(ctx context.Context, activityID int64) ([]store.StreamPoint, error) {
		return nil, errors.New("rate limited")
	}
}

// intervalStream has four 2-minute efforts at 160 bpm after a 5-minute
// warm-up, with 2-minute recoveries between them.
func intervalStream(activityID int64) []store.StreamPoint {
	return hrStream(activityID, 1260, func(sec int) int {
		if sec < 300 || sec >= 1140 {
			return 100
		}
		if (sec-300)%240 < 120 {
			return 160
		}
		return 100
	})
}

func TestCompute_NoActivity(t *testing.T) {
	s := NewScorer(nil)
	w := &store.PlannedWorkout{ID: 1, Title: "Easy run", TargetDurationMin: intPtr(45)}

	res := s.Compute(context.Background(), w, nil, FromMaxHR(190))

	if res.Score != 0 {
		t.Errorf("Score = %d, want 0", res.Score)
	}
	if res.ActivityRecorded {
		t.Error("ActivityRecorded = true, want false")
	}
	if res.Duration != nil || res.HeartRate != nil || res.Intervals != nil {
		t.Error("missed workout should have no component breakdowns")
	}
}

func TestCompute_RecordedOnly(t *testing.T) {
	// No targets at all: showing up is full compliance
	s := NewScorer(nil)
	w := &store.PlannedWorkout{ID: 1, Title: "Easy run"}
	a := &store.Activity{ID: 100, Type: "Run", MovingTime: 3000}

	res := s.Compute(context.Background(), w, a, FromMaxHR(190))

	if !res.ActivityRecorded {
		t.Fatal("ActivityRecorded = false, want true")
	}
	if res.Score != 100 {
		t.Errorf("Score = %d, want 100", res.Score)
	}
}

func TestScoreDuration_Bands(t *testing.T) {
	target := 60
	tests := []struct {
		name      string
		actualMin int
		want      int
	}{
		{"exact", 60, 100},
		{"within 20 percent", 50, 100},
		{"within 40 percent", 40, 70},
		{"over by a third", 80, 70},
		{"well short", 27, 40},
		{"barely started", 20, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := &store.PlannedWorkout{TargetDurationMin: &target}
			a := &store.Activity{MovingTime: tt.actualMin * 60}

			d := scoreDuration(w, a)
			if d == nil {
				t.Fatal("expected a duration result, got nil")
			}
			if d.Score != tt.want {
				t.Errorf("Score = %d, want %d", d.Score, tt.want)
			}
		})
	}
}

func TestScoreDuration_MonotoneDecay(t *testing.T) {
	// Moving further below target never raises the score
	target := 60
	w := &store.PlannedWorkout{TargetDurationMin: &target}

	prev := 101
	for actual := 60; actual >= 5; actual -= 5 {
		a := &store.Activity{MovingTime: actual * 60}
		d := scoreDuration(w, a)
		if d.Score > prev {
			t.Fatalf("score rose from %d to %d as duration fell to %dmin", prev, d.Score, actual)
		}
		prev = d.Score
	}
}

func TestScoreHeartRate_ZoneTarget(t *testing.T) {
	zones := FromMaxHR(190) // z2 = [114, 133)

	tests := []struct {
		name          string
		avgHR         float64
		wantScore     int
		wantDirection string
	}{
		{"in zone", 120, 100, DirectionOnTarget},
		{"one zone high", 140, 60, DirectionTooHigh},
		{"one zone low", 100, 60, DirectionTooLow},
		{"two zones high", 160, 30, DirectionTooHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &store.Activity{AverageHeartrate: &tt.avgHR}
			hr := scoreHeartRate("z2 steady", a, zones)
			if hr == nil {
				t.Fatal("expected a heart-rate result, got nil")
			}
			if hr.Score != tt.wantScore {
				t.Errorf("Score = %d, want %d", hr.Score, tt.wantScore)
			}
			if hr.Direction != tt.wantDirection {
				t.Errorf("Direction = %q, want %q", hr.Direction, tt.wantDirection)
			}
		})
	}
}

func TestScoreHeartRate_LiteralRange(t *testing.T) {
	zones := FromMaxHR(190)

	tests := []struct {
		name      string
		avgHR     float64
		wantScore int
	}{
		{"inside range", 145, 100},
		{"just above", 155, 70},
		{"just below", 132, 70},
		{"far off", 170, 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &store.Activity{AverageHeartrate: &tt.avgHR}
			hr := scoreHeartRate("hold 140-150 bpm", a, zones)
			if hr == nil {
				t.Fatal("expected a heart-rate result, got nil")
			}
			if hr.Score != tt.wantScore {
				t.Errorf("Score = %d, want %d", hr.Score, tt.wantScore)
			}
			if hr.Direction != "" {
				t.Errorf("Direction = %q, want empty for literal ranges", hr.Direction)
			}
			if hr.RangeLow == nil || *hr.RangeLow != 140 || hr.RangeHigh == nil || *hr.RangeHigh != 150 {
				t.Errorf("range = %v-%v, want 140-150", hr.RangeLow, hr.RangeHigh)
			}
		})
	}
}

func TestScoreHeartRate_NoSignal(t *testing.T) {
	zones := FromMaxHR(190)
	avg := 140.0

	if hr := scoreHeartRate("just ride", &store.Activity{AverageHeartrate: &avg}, zones); hr != nil {
		t.Errorf("no intensity target: got %+v, want nil", hr)
	}
	if hr := scoreHeartRate("z2", &store.Activity{}, zones); hr != nil {
		t.Errorf("no average heart rate: got %+v, want nil", hr)
	}
}

func TestCompute_IntervalsAllCompleted(t *testing.T) {
	s := NewScorer(fixedStreams(intervalStream(100)))
	w := &store.PlannedWorkout{ID: 1, Title: "4x2min @ z4"}
	a := &store.Activity{ID: 100, Type: "Ride", MovingTime: 1260}

	res := s.Compute(context.Background(), w, a, FromMaxHR(190))

	if res.Intervals == nil {
		t.Fatal("expected an interval result, got nil")
	}
	iv := res.Intervals
	if iv.ExpectedRepeats != 4 || iv.RepeatDurationSec != 120 || iv.TargetZone != 4 {
		t.Errorf("got %dx%ds z%d, want 4x120s z4", iv.ExpectedRepeats, iv.RepeatDurationSec, iv.TargetZone)
	}
	if len(iv.Repeats) != 4 {
		t.Fatalf("got %d repeat results, want 4", len(iv.Repeats))
	}
	for _, r := range iv.Repeats {
		if r.Status != RepeatCompleted {
			t.Errorf("repeat %d status = %q, want %q", r.Index, r.Status, RepeatCompleted)
		}
	}
	if iv.Score != 100 {
		t.Errorf("interval score = %d, want 100", iv.Score)
	}
	if res.Score != 100 {
		t.Errorf("overall score = %d, want 100", res.Score)
	}
}

func TestCompute_IntervalsMissingRepeats(t *testing.T) {
	// Plan asks for six repeats, the athlete did four
	s := NewScorer(fixedStreams(intervalStream(100)))
	w := &store.PlannedWorkout{ID: 1, Title: "6x2min @ z4"}
	a := &store.Activity{ID: 100, Type: "Ride", MovingTime: 1260}

	res := s.Compute(context.Background(), w, a, FromMaxHR(190))

	if res.Intervals == nil {
		t.Fatal("expected an interval result, got nil")
	}
	iv := res.Intervals
	if len(iv.Repeats) != 6 {
		t.Fatalf("got %d repeat results, want 6", len(iv.Repeats))
	}
	missing := 0
	for _, r := range iv.Repeats {
		if r.Status == RepeatMissing {
			missing++
			if r.Score != 0 {
				t.Errorf("missing repeat %d score = %d, want 0", r.Index, r.Score)
			}
		}
	}
	if missing != 2 {
		t.Errorf("got %d missing repeats, want 2", missing)
	}
	// 4 completed at 100, 2 missing at 0
	want := int(math.Round(400.0 / 6))
	if iv.Score != want {
		t.Errorf("interval score = %d, want %d", iv.Score, want)
	}
	if res.Score >= 100 {
		t.Errorf("overall score = %d, want below 100", res.Score)
	}
}

func TestCompute_StreamFetchFailureDropsIntervals(t *testing.T) {
	s := NewScorer(failingStreams())
	w := &store.PlannedWorkout{ID: 1, Title: "4x2min @ z4", TargetDurationMin: intPtr(21)}
	a := &store.Activity{ID: 100, Type: "Ride", MovingTime: 21 * 60}

	res := s.Compute(context.Background(), w, a, FromMaxHR(190))

	if res.Intervals != nil {
		t.Errorf("Intervals = %+v, want nil after fetch failure", res.Intervals)
	}
	// The remaining components still score
	if res.Duration == nil || res.Duration.Score != 100 {
		t.Errorf("Duration = %+v, want full score", res.Duration)
	}
	if res.Score != 100 {
		t.Errorf("Score = %d, want 100", res.Score)
	}
}

func TestCompute_WeightSplitWithIntervals(t *testing.T) {
	// All components present: recorded and intervals dominate, heart rate
	// counts least. Duration 100, HR 60 (z3 average against a z4 target),
	// intervals 100 => 0.2*100 + 0.2*100 + 0.1*60 + 0.5*100 = 96
	s := NewScorer(fixedStreams(intervalStream(100)))
	avg := 145.0
	w := &store.PlannedWorkout{
		ID: 1, Title: "4x2min @ z4",
		TargetDurationMin: intPtr(21),
		TargetIntensity:   strPtr("z4"),
	}
	a := &store.Activity{ID: 100, Type: "Ride", MovingTime: 21 * 60, AverageHeartrate: &avg}

	res := s.Compute(context.Background(), w, a, FromMaxHR(190))

	if res.Duration == nil || res.Duration.Score != 100 {
		t.Fatalf("Duration = %+v, want score 100", res.Duration)
	}
	if res.HeartRate == nil || res.HeartRate.Score != 60 {
		t.Fatalf("HeartRate = %+v, want score 60", res.HeartRate)
	}
	if res.Intervals == nil || res.Intervals.Score != 100 {
		t.Fatalf("Intervals = %+v, want score 100", res.Intervals)
	}
	if res.Score != 96 {
		t.Errorf("Score = %d, want 96", res.Score)
	}
}

func TestCompute_WeightSplitNoIntervals(t *testing.T) {
	// No repeat prescription: duration and heart rate split evenly.
	// Duration 100, HR 60 => 0.2*100 + 0.4*100 + 0.4*60 = 84
	s := NewScorer(nil)
	avg := 140.0 // z3 against a z2 target
	w := &store.PlannedWorkout{
		ID: 1, Title: "Steady ride",
		TargetDurationMin: intPtr(60),
		TargetIntensity:   strPtr("z2"),
	}
	a := &store.Activity{ID: 100, Type: "Ride", MovingTime: 3600, AverageHeartrate: &avg}

	res := s.Compute(context.Background(), w, a, FromMaxHR(190))

	if res.Intervals != nil {
		t.Fatalf("Intervals = %+v, want nil", res.Intervals)
	}
	if res.Score != 84 {
		t.Errorf("Score = %d, want 84", res.Score)
	}
}

func TestCompute_Deterministic(t *testing.T) {
	s := NewScorer(fixedStreams(intervalStream(100)))
	avg := 156.0
	w := &store.PlannedWorkout{
		ID: 1, Title: "4x2min @ z4",
		TargetDurationMin: intPtr(21),
		TargetIntensity:   strPtr("threshold"),
	}
	a := &store.Activity{ID: 100, Type: "Ride", MovingTime: 21 * 60, AverageHeartrate: &avg}

	first := s.Compute(context.Background(), w, a, FromMaxHR(190))
	second := s.Compute(context.Background(), w, a, FromMaxHR(190))

	if !reflect.DeepEqual(first, second) {
		t.Errorf("identical inputs produced different results:\n%+v\n%+v", first, second)
	}
}

func TestCompute_ScoreBounds(t *testing.T) {
	s := NewScorer(fixedStreams(intervalStream(100)))
	zones := FromMaxHR(190)

	avgLow := 95.0
	workouts := []*store.PlannedWorkout{
		{ID: 1, Title: "Easy run"},
		{ID: 2, Title: "6x2min @ z5", TargetDurationMin: intPtr(180), TargetIntensity: strPtr("vo2max")},
		{ID: 3, Title: "Run", TargetDurationMin: intPtr(600)},
	}
	activities := []*store.Activity{
		nil,
		{ID: 100, Type: "Ride", MovingTime: 600, AverageHeartrate: &avgLow},
		{ID: 100, Type: "Run", MovingTime: 1260},
	}

	for _, w := range workouts {
		for _, a := range activities {
			res := s.Compute(context.Background(), w, a, zones)
			if res.Score < 0 || res.Score > 100 {
				t.Errorf("workout %d: score %d out of [0,100]", w.ID, res.Score)
			}
		}
	}
}
