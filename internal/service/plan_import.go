package service

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"plancheck/internal/store"
)

// PlanFile is the JSON shape of an importable training plan
type PlanFile struct {
	Name     string        `json:"name"`
	Workouts []PlanWorkout `json:"workouts"`
}

// PlanWorkout is one session in a plan file. ActivityID, when present,
// manually links the session to a specific Strava activity.
type PlanWorkout struct {
	Day               string  `json:"day"` // YYYY-MM-DD
	Title             string  `json:"title"`
	TargetDurationMin *int    `json:"target_duration_min,omitempty"`
	TargetIntensity   *string `json:"target_intensity,omitempty"`
	Notes             *string `json:"notes,omitempty"`
	ActivityID        *int64  `json:"activity_id,omitempty"`
}

// ImportPlan reads a plan file and upserts its workouts, keyed by
// (day, title) so re-importing a revised plan updates targets in place.
// Returns the number of workouts imported.
func ImportPlan(db *store.DB, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("reading plan file: %w", err)
	}

	var pf PlanFile
	if err := json.Unmarshal(data, &pf); err != nil {
		return 0, fmt.Errorf("parsing plan file: %w", err)
	}

	if len(pf.Workouts) == 0 {
		return 0, fmt.Errorf("plan file %s contains no workouts", path)
	}

	imported := 0
	for i, pw := range pf.Workouts {
		if pw.Title == "" {
			return imported, fmt.Errorf("workout %d: title is required", i)
		}
		day, err := time.Parse("2006-01-02", pw.Day)
		if err != nil {
			return imported, fmt.Errorf("workout %d (%s): parsing day %q: %w", i, pw.Title, pw.Day, err)
		}
		if pw.TargetDurationMin != nil && *pw.TargetDurationMin <= 0 {
			return imported, fmt.Errorf("workout %d (%s): target_duration_min must be positive", i, pw.Title)
		}

		w := &store.PlannedWorkout{
			Day:               day,
			Title:             pw.Title,
			TargetDurationMin: pw.TargetDurationMin,
			TargetIntensity:   pw.TargetIntensity,
			Notes:             pw.Notes,
			MatchedActivityID: pw.ActivityID,
			ManualMatch:       pw.ActivityID != nil,
		}
		if err := db.UpsertPlannedWorkout(w); err != nil {
			return imported, fmt.Errorf("storing workout %d (%s): %w", i, pw.Title, err)
		}
		imported++
	}

	return imported, nil
}
