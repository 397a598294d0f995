package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrComplianceNotFound is returned when no score is stored for a workout
var ErrComplianceNotFound = errors.New("compliance result not found")

// SaveCompliance stores or replaces the compliance result for a workout
func (db *DB) SaveCompliance(c *WorkoutCompliance) error {
	_, err := db.Exec(`
		INSERT INTO workout_compliance (workout_id, score, breakdown, computed_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(workout_id) DO UPDATE SET
			score = excluded.score,
			breakdown = excluded.breakdown,
			computed_at = excluded.computed_at
	`, c.WorkoutID, c.Score, c.Breakdown, c.ComputedAt.Format(time.RFC3339))
	return err
}

// GetCompliance retrieves the stored compliance result for a workout
func (db *DB) GetCompliance(workoutID int64) (*WorkoutCompliance, error) {
	row := db.QueryRow(`
		SELECT workout_id, score, breakdown, computed_at
		FROM workout_compliance
		WHERE workout_id = ?
	`, workoutID)

	var c WorkoutCompliance
	var computedAt string
	err := row.Scan(&c.WorkoutID, &c.Score, &c.Breakdown, &computedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrComplianceNotFound
	}
	if err != nil {
		return nil, err
	}

	c.ComputedAt, err = time.Parse(time.RFC3339, computedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing computed_at %q: %w", computedAt, err)
	}
	return &c, nil
}

// GetComplianceByWorkoutIDs retrieves stored scores for multiple workouts.
// Workouts with no stored result are simply absent from the map.
func (db *DB) GetComplianceByWorkoutIDs(ids []int64) (map[int64]*WorkoutCompliance, error) {
	result := make(map[int64]*WorkoutCompliance)
	if len(ids) == 0 {
		return result, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}

	rows, err := db.Query(`
		SELECT workout_id, score, breakdown, computed_at
		FROM workout_compliance
		WHERE workout_id IN (`+joinStrings(placeholders, ",")+`)`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var c WorkoutCompliance
		var computedAt string
		if err := rows.Scan(&c.WorkoutID, &c.Score, &c.Breakdown, &computedAt); err != nil {
			return nil, err
		}
		c.ComputedAt, err = time.Parse(time.RFC3339, computedAt)
		if err != nil {
			return nil, fmt.Errorf("parsing computed_at %q: %w", computedAt, err)
		}
		result[c.WorkoutID] = &c
	}

	return result, rows.Err()
}

// DeleteCompliance removes the stored result for a workout, forcing a
// recompute on the next sync
func (db *DB) DeleteCompliance(workoutID int64) error {
	_, err := db.Exec("DELETE FROM workout_compliance WHERE workout_id = ?", workoutID)
	return err
}
