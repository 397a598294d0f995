package store

import (
	"errors"
	"testing"
	"time"
)

func planDay(s string) time.Time {
	d, _ := time.Parse("2006-01-02", s)
	return d
}

func TestUpsertPlannedWorkout(t *testing.T) {
	db := setupTestDB(t)

	target := 45
	intensity := "z2"
	w := &PlannedWorkout{
		Day:               planDay("2026-03-02"),
		Title:             "Easy run",
		TargetDurationMin: &target,
		TargetIntensity:   &intensity,
	}
	if err := db.UpsertPlannedWorkout(w); err != nil {
		t.Fatalf("UpsertPlannedWorkout: %v", err)
	}

	workouts, err := db.ListWorkouts(10, 0)
	if err != nil {
		t.Fatalf("ListWorkouts: %v", err)
	}
	if len(workouts) != 1 {
		t.Fatalf("got %d workouts, want 1", len(workouts))
	}
	got := workouts[0]
	if got.Title != "Easy run" || !got.Day.Equal(planDay("2026-03-02")) {
		t.Errorf("got %q on %v, want Easy run on 2026-03-02", got.Title, got.Day)
	}
	if got.TargetDurationMin == nil || *got.TargetDurationMin != 45 {
		t.Errorf("TargetDurationMin = %v, want 45", got.TargetDurationMin)
	}

	// Re-import with revised target updates in place
	newTarget := 60
	w.TargetDurationMin = &newTarget
	if err := db.UpsertPlannedWorkout(w); err != nil {
		t.Fatalf("UpsertPlannedWorkout re-import: %v", err)
	}
	workouts, _ = db.ListWorkouts(10, 0)
	if len(workouts) != 1 {
		t.Fatalf("got %d workouts after re-import, want 1", len(workouts))
	}
	if *workouts[0].TargetDurationMin != 60 {
		t.Errorf("TargetDurationMin = %d after re-import, want 60", *workouts[0].TargetDurationMin)
	}
}

func TestUpsertPlannedWorkoutKeepsMatch(t *testing.T) {
	db := setupTestDB(t)

	if err := db.UpsertActivity(testStoreActivity(100, "Run", "Run", "2026-03-02T07:00:00Z")); err != nil {
		t.Fatalf("UpsertActivity: %v", err)
	}

	w := &PlannedWorkout{Day: planDay("2026-03-02"), Title: "Easy run"}
	if err := db.UpsertPlannedWorkout(w); err != nil {
		t.Fatalf("UpsertPlannedWorkout: %v", err)
	}
	workouts, _ := db.ListWorkouts(10, 0)
	activityID := int64(100)
	if err := db.SetMatchedActivity(workouts[0].ID, &activityID, false); err != nil {
		t.Fatalf("SetMatchedActivity: %v", err)
	}

	// Re-import without an activity link: the existing match survives
	if err := db.UpsertPlannedWorkout(w); err != nil {
		t.Fatalf("UpsertPlannedWorkout re-import: %v", err)
	}
	workouts, _ = db.ListWorkouts(10, 0)
	if workouts[0].MatchedActivityID == nil || *workouts[0].MatchedActivityID != 100 {
		t.Errorf("MatchedActivityID = %v after re-import, want 100", workouts[0].MatchedActivityID)
	}
}

func TestListWorkoutsBetween(t *testing.T) {
	db := setupTestDB(t)

	for _, d := range []string{"2026-03-01", "2026-03-02", "2026-03-09"} {
		w := &PlannedWorkout{Day: planDay(d), Title: "Session " + d}
		if err := db.UpsertPlannedWorkout(w); err != nil {
			t.Fatalf("UpsertPlannedWorkout: %v", err)
		}
	}

	got, err := db.ListWorkoutsBetween(planDay("2026-03-02"), planDay("2026-03-09"))
	if err != nil {
		t.Fatalf("ListWorkoutsBetween: %v", err)
	}
	if len(got) != 1 || !got[0].Day.Equal(planDay("2026-03-02")) {
		t.Errorf("got %d workouts, want only 2026-03-02", len(got))
	}

	first, last, ok, err := db.WorkoutDateRange()
	if err != nil || !ok {
		t.Fatalf("WorkoutDateRange: ok=%v err=%v", ok, err)
	}
	if !first.Equal(planDay("2026-03-01")) || !last.Equal(planDay("2026-03-09")) {
		t.Errorf("range = %v..%v, want 2026-03-01..2026-03-09", first, last)
	}
}

func TestWorkoutDateRangeEmpty(t *testing.T) {
	db := setupTestDB(t)

	_, _, ok, err := db.WorkoutDateRange()
	if err != nil {
		t.Fatalf("WorkoutDateRange: %v", err)
	}
	if ok {
		t.Error("ok = true for empty plan, want false")
	}
}

func TestSetMatchedActivity(t *testing.T) {
	db := setupTestDB(t)

	if err := db.UpsertActivity(testStoreActivity(100, "Run", "Run", "2026-03-02T07:00:00Z")); err != nil {
		t.Fatalf("UpsertActivity: %v", err)
	}
	w := &PlannedWorkout{Day: planDay("2026-03-02"), Title: "Easy run"}
	if err := db.UpsertPlannedWorkout(w); err != nil {
		t.Fatalf("UpsertPlannedWorkout: %v", err)
	}
	workouts, _ := db.ListWorkouts(10, 0)
	id := workouts[0].ID

	activityID := int64(100)
	if err := db.SetMatchedActivity(id, &activityID, true); err != nil {
		t.Fatalf("SetMatchedActivity: %v", err)
	}

	got, err := db.GetWorkout(id)
	if err != nil {
		t.Fatalf("GetWorkout: %v", err)
	}
	if got.MatchedActivityID == nil || *got.MatchedActivityID != 100 || !got.ManualMatch {
		t.Errorf("got %+v, want manual link to 100", got)
	}

	// Unlink
	if err := db.SetMatchedActivity(id, nil, false); err != nil {
		t.Fatalf("SetMatchedActivity unlink: %v", err)
	}
	got, _ = db.GetWorkout(id)
	if got.MatchedActivityID != nil || got.ManualMatch {
		t.Errorf("got %+v after unlink, want no match", got)
	}

	if err := db.SetMatchedActivity(999, &activityID, false); !errors.Is(err, ErrWorkoutNotFound) {
		t.Errorf("err = %v, want ErrWorkoutNotFound", err)
	}
}

func TestComplianceRoundTrip(t *testing.T) {
	db := setupTestDB(t)

	w := &PlannedWorkout{Day: planDay("2026-03-02"), Title: "Easy run"}
	if err := db.UpsertPlannedWorkout(w); err != nil {
		t.Fatalf("UpsertPlannedWorkout: %v", err)
	}
	workouts, _ := db.ListWorkouts(10, 0)
	id := workouts[0].ID

	if _, err := db.GetCompliance(id); !errors.Is(err, ErrComplianceNotFound) {
		t.Fatalf("err = %v, want ErrComplianceNotFound", err)
	}

	computed := time.Now().Truncate(time.Second)
	c := &WorkoutCompliance{
		WorkoutID:  id,
		Score:      85,
		Breakdown:  `{"score":85,"activity_recorded":true}`,
		ComputedAt: computed,
	}
	if err := db.SaveCompliance(c); err != nil {
		t.Fatalf("SaveCompliance: %v", err)
	}

	got, err := db.GetCompliance(id)
	if err != nil {
		t.Fatalf("GetCompliance: %v", err)
	}
	if got.Score != 85 || !got.ComputedAt.Equal(computed) {
		t.Errorf("got %+v, want score 85 at %v", got, computed)
	}

	// Replace
	c.Score = 90
	if err := db.SaveCompliance(c); err != nil {
		t.Fatalf("SaveCompliance replace: %v", err)
	}
	got, _ = db.GetCompliance(id)
	if got.Score != 90 {
		t.Errorf("Score = %d after replace, want 90", got.Score)
	}

	byID, err := db.GetComplianceByWorkoutIDs([]int64{id, 999})
	if err != nil {
		t.Fatalf("GetComplianceByWorkoutIDs: %v", err)
	}
	if len(byID) != 1 || byID[id] == nil {
		t.Errorf("got %d results, want just workout %d", len(byID), id)
	}

	if err := db.DeleteCompliance(id); err != nil {
		t.Fatalf("DeleteCompliance: %v", err)
	}
	if _, err := db.GetCompliance(id); !errors.Is(err, ErrComplianceNotFound) {
		t.Errorf("err = %v after delete, want ErrComplianceNotFound", err)
	}
}
