package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrWorkoutNotFound is returned when a planned workout doesn't exist
var ErrWorkoutNotFound = errors.New("planned workout not found")

// dayFormat is how plan days are stored (date only, no time component)
const dayFormat = "2006-01-02"

const workoutColumns = `id, day, title, target_duration_min, target_intensity, notes,
	matched_activity_id, manual_match`

// UpsertPlannedWorkout inserts or updates a workout, keyed by (day, title).
// Re-importing a plan refreshes targets without losing manual matches.
func (db *DB) UpsertPlannedWorkout(w *PlannedWorkout) error {
	_, err := db.Exec(`
		INSERT INTO planned_workouts (
			day, title, target_duration_min, target_intensity, notes,
			matched_activity_id, manual_match, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(day, title) DO UPDATE SET
			target_duration_min = excluded.target_duration_min,
			target_intensity = excluded.target_intensity,
			notes = excluded.notes,
			matched_activity_id = CASE
				WHEN excluded.matched_activity_id IS NOT NULL THEN excluded.matched_activity_id
				ELSE planned_workouts.matched_activity_id
			END,
			manual_match = CASE
				WHEN excluded.matched_activity_id IS NOT NULL THEN excluded.manual_match
				ELSE planned_workouts.manual_match
			END,
			updated_at = CURRENT_TIMESTAMP
	`,
		w.Day.Format(dayFormat), w.Title, w.TargetDurationMin, w.TargetIntensity, w.Notes,
		w.MatchedActivityID, boolToInt(w.ManualMatch),
	)
	return err
}

// GetWorkout retrieves a planned workout by ID
func (db *DB) GetWorkout(id int64) (*PlannedWorkout, error) {
	row := db.QueryRow(`
		SELECT `+workoutColumns+`
		FROM planned_workouts
		WHERE id = ?
	`, id)

	var w PlannedWorkout
	var day string
	var manual int
	err := row.Scan(
		&w.ID, &day, &w.Title, &w.TargetDurationMin, &w.TargetIntensity, &w.Notes,
		&w.MatchedActivityID, &manual,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrWorkoutNotFound
	}
	if err != nil {
		return nil, err
	}

	w.Day, err = time.Parse(dayFormat, day)
	if err != nil {
		return nil, fmt.Errorf("parsing day %q: %w", day, err)
	}
	w.ManualMatch = manual == 1
	return &w, nil
}

// ListWorkouts returns planned workouts ordered by day descending
func (db *DB) ListWorkouts(limit, offset int) ([]PlannedWorkout, error) {
	rows, err := db.Query(`
		SELECT `+workoutColumns+`
		FROM planned_workouts
		ORDER BY day DESC, title ASC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanWorkouts(rows)
}

// ListWorkoutsBetween returns workouts scheduled in [start, end), ascending
func (db *DB) ListWorkoutsBetween(start, end time.Time) ([]PlannedWorkout, error) {
	rows, err := db.Query(`
		SELECT `+workoutColumns+`
		FROM planned_workouts
		WHERE day >= ? AND day < ?
		ORDER BY day ASC, title ASC
	`, start.Format(dayFormat), end.Format(dayFormat))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanWorkouts(rows)
}

// CountWorkouts returns the total number of planned workouts
func (db *DB) CountWorkouts() (int, error) {
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM planned_workouts").Scan(&count)
	return count, err
}

// WorkoutDateRange returns the earliest and latest plan days.
// ok is false when the plan is empty.
func (db *DB) WorkoutDateRange() (first, last time.Time, ok bool, err error) {
	var minDay, maxDay sql.NullString
	err = db.QueryRow("SELECT MIN(day), MAX(day) FROM planned_workouts").Scan(&minDay, &maxDay)
	if err != nil {
		return time.Time{}, time.Time{}, false, err
	}
	if !minDay.Valid || !maxDay.Valid {
		return time.Time{}, time.Time{}, false, nil
	}

	first, err = time.Parse(dayFormat, minDay.String)
	if err != nil {
		return time.Time{}, time.Time{}, false, fmt.Errorf("parsing first day %q: %w", minDay.String, err)
	}
	last, err = time.Parse(dayFormat, maxDay.String)
	if err != nil {
		return time.Time{}, time.Time{}, false, fmt.Errorf("parsing last day %q: %w", maxDay.String, err)
	}
	return first, last, true, nil
}

// SetMatchedActivity links (or with nil, unlinks) an activity to a workout
func (db *DB) SetMatchedActivity(workoutID int64, activityID *int64, manual bool) error {
	result, err := db.Exec(`
		UPDATE planned_workouts
		SET matched_activity_id = ?, manual_match = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, activityID, boolToInt(manual), workoutID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrWorkoutNotFound
	}
	return nil
}

// scanWorkouts scans multiple planned workouts from rows
func scanWorkouts(rows *sql.Rows) ([]PlannedWorkout, error) {
	var workouts []PlannedWorkout

	for rows.Next() {
		var w PlannedWorkout
		var day string
		var manual int

		err := rows.Scan(
			&w.ID, &day, &w.Title, &w.TargetDurationMin, &w.TargetIntensity, &w.Notes,
			&w.MatchedActivityID, &manual,
		)
		if err != nil {
			return nil, err
		}

		w.Day, err = time.Parse(dayFormat, day)
		if err != nil {
			return nil, fmt.Errorf("parsing day %q: %w", day, err)
		}
		w.ManualMatch = manual == 1

		workouts = append(workouts, w)
	}

	return workouts, rows.Err()
}
