package store

import "time"

// Auth represents OAuth tokens for Strava API access
type Auth struct {
	AthleteID    int64     `db:"athlete_id"`
	AccessToken  string    `db:"access_token"`
	RefreshToken string    `db:"refresh_token"`
	ExpiresAt    time.Time `db:"expires_at"`
}

// Activity represents a Strava activity summary
type Activity struct {
	ID                 int64     `db:"id"`
	AthleteID          int64     `db:"athlete_id"`
	Name               string    `db:"name"`
	Type               string    `db:"type"`
	StartDate          time.Time `db:"start_date"`
	StartDateLocal     time.Time `db:"start_date_local"`
	Timezone           string    `db:"timezone"`
	Distance           float64   `db:"distance"`    // meters
	MovingTime         int       `db:"moving_time"` // seconds
	ElapsedTime        int       `db:"elapsed_time"` // seconds
	TotalElevationGain float64   `db:"total_elevation_gain"`
	AverageSpeed       float64   `db:"average_speed"`     // m/s
	MaxSpeed           float64   `db:"max_speed"`         // m/s
	AverageHeartrate   *float64  `db:"average_heartrate"` // nullable
	MaxHeartrate       *float64  `db:"max_heartrate"`     // nullable
	HasHeartrate       bool      `db:"has_heartrate"`
	StreamsSynced      bool      `db:"streams_synced"`
}

// StreamPoint represents a single data point from activity streams
type StreamPoint struct {
	ActivityID     int64    `db:"activity_id"`
	TimeOffset     int      `db:"time_offset"`     // seconds
	Heartrate      *int     `db:"heartrate"`       // bpm
	VelocitySmooth *float64 `db:"velocity_smooth"` // m/s
	Distance       *float64 `db:"distance"`        // cumulative meters
}

// PlannedWorkout represents one session from an imported training plan
type PlannedWorkout struct {
	ID                int64     `db:"id"`
	Day               time.Time `db:"day"` // date the session is scheduled for
	Title             string    `db:"title"`
	TargetDurationMin *int      `db:"target_duration_min"` // nullable
	TargetIntensity   *string   `db:"target_intensity"`    // nullable
	Notes             *string   `db:"notes"`               // nullable
	MatchedActivityID *int64    `db:"matched_activity_id"` // nullable
	ManualMatch       bool      `db:"manual_match"`
}

// WorkoutCompliance represents a computed compliance score for a workout
type WorkoutCompliance struct {
	WorkoutID  int64     `db:"workout_id"`
	Score      int       `db:"score"`
	Breakdown  string    `db:"breakdown"` // JSON ComplianceResult
	ComputedAt time.Time `db:"computed_at"`
}
