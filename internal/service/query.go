package service

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"plancheck/internal/plan"
	"plancheck/internal/store"
)

// QueryService provides read-only queries for the TUI
type QueryService struct {
	store        *store.DB
	zones        plan.ZoneTable
	weekStartDay string // "monday" or "sunday"
}

// NewQueryService creates a new query service
func NewQueryService(db *store.DB, zones plan.ZoneTable, weekStartDay string) *QueryService {
	if weekStartDay == "" {
		weekStartDay = "monday"
	}
	return &QueryService{store: db, zones: zones, weekStartDay: weekStartDay}
}

// WorkoutWithStatus combines a planned workout with its matched activity
// and stored compliance, either of which may be absent
type WorkoutWithStatus struct {
	Workout    store.PlannedWorkout
	Activity   *store.Activity
	Compliance *store.WorkoutCompliance
}

// DashboardData contains all data needed for the dashboard
type DashboardData struct {
	HasPlan   bool
	PlanStart time.Time
	PlanEnd   time.Time

	// This week
	WeekPlanned   int
	WeekCompleted int
	WeekAvgScore  float64

	// Compliance trend for the chart, oldest week first. Weeks with no
	// scoreable workouts carry -1 so the chart can skip them.
	WeeklyScores []float64
	WeekLabels   []string

	// Recent workouts, newest first
	RecentWorkouts []WorkoutWithStatus
}

// GetDashboardData fetches all data needed for the dashboard
func (q *QueryService) GetDashboardData() (*DashboardData, error) {
	data := &DashboardData{}

	first, last, ok, err := q.store.WorkoutDateRange()
	if err != nil {
		return nil, fmt.Errorf("getting plan range: %w", err)
	}
	if !ok {
		return data, nil
	}
	data.HasPlan = true
	data.PlanStart = first
	data.PlanEnd = last

	workouts, err := q.store.ListWorkoutsBetween(first, last.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("listing workouts: %w", err)
	}

	wrapped, err := q.wrapWorkouts(workouts)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	q.fillWeekSummary(data, wrapped, now)
	q.fillWeeklyTrend(data, wrapped, now)
	data.RecentWorkouts = recentWorkouts(wrapped, now, RecentWorkoutsLimit)

	return data, nil
}

// fillWeekSummary computes planned/completed counts and the average score
// for the week containing now
func (q *QueryService) fillWeekSummary(data *DashboardData, wrapped []WorkoutWithStatus, now time.Time) {
	start := weekStart(now, q.weekStartDay)
	end := start.AddDate(0, 0, 7)

	var scoreSum float64
	var scored int
	for _, w := range wrapped {
		if w.Workout.Day.Before(start) || !w.Workout.Day.Before(end) {
			continue
		}
		data.WeekPlanned++
		if w.Activity != nil {
			data.WeekCompleted++
		}
		if w.Compliance != nil {
			scoreSum += float64(w.Compliance.Score)
			scored++
		}
	}
	if scored > 0 {
		data.WeekAvgScore = scoreSum / float64(scored)
	}
}

// fillWeeklyTrend buckets past workouts into the last ChartWeeks weeks and
// averages their scores. Unscored past workouts count as zero; future
// workouts are excluded.
func (q *QueryService) fillWeeklyTrend(data *DashboardData, wrapped []WorkoutWithStatus, now time.Time) {
	currentStart := weekStart(now, q.weekStartDay)

	scoreSum := make([]float64, ChartWeeks)
	count := make([]int, ChartWeeks)
	data.WeekLabels = make([]string, ChartWeeks)
	data.WeeklyScores = make([]float64, ChartWeeks)

	for i := 0; i < ChartWeeks; i++ {
		start := currentStart.AddDate(0, 0, -7*(ChartWeeks-1-i))
		data.WeekLabels[i] = start.Format("Jan 02")
	}

	windowStart := currentStart.AddDate(0, 0, -7*(ChartWeeks-1))
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	for _, w := range wrapped {
		day := w.Workout.Day
		if day.Before(windowStart) || day.After(today) {
			continue
		}
		idx := int(day.Sub(windowStart).Hours() / 24 / 7)
		if idx < 0 || idx >= ChartWeeks {
			continue
		}
		if w.Compliance != nil {
			scoreSum[idx] += float64(w.Compliance.Score)
		}
		count[idx]++
	}

	for i := 0; i < ChartWeeks; i++ {
		if count[i] > 0 {
			data.WeeklyScores[i] = scoreSum[i] / float64(count[i])
		} else {
			data.WeeklyScores[i] = -1
		}
	}
}

// recentWorkouts returns the most recent non-future workouts, newest first
func recentWorkouts(wrapped []WorkoutWithStatus, now time.Time, limit int) []WorkoutWithStatus {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var past []WorkoutWithStatus
	for _, w := range wrapped {
		if !w.Workout.Day.After(today) {
			past = append(past, w)
		}
	}
	sort.SliceStable(past, func(i, j int) bool {
		return past[i].Workout.Day.After(past[j].Workout.Day)
	})
	if len(past) > limit {
		past = past[:limit]
	}
	return past
}

// GetPlanList returns paginated planned workouts with their status
func (q *QueryService) GetPlanList(limit, offset int) ([]WorkoutWithStatus, error) {
	workouts, err := q.store.ListWorkouts(limit, offset)
	if err != nil {
		return nil, err
	}
	return q.wrapWorkouts(workouts)
}

// GetTotalWorkoutCount returns the total number of planned workouts
func (q *QueryService) GetTotalWorkoutCount() (int, error) {
	return q.store.CountWorkouts()
}

// wrapWorkouts batch-loads matched activities and stored scores
func (q *QueryService) wrapWorkouts(workouts []store.PlannedWorkout) ([]WorkoutWithStatus, error) {
	workoutIDs := make([]int64, 0, len(workouts))
	var activityIDs []int64
	for _, w := range workouts {
		workoutIDs = append(workoutIDs, w.ID)
		if w.MatchedActivityID != nil {
			activityIDs = append(activityIDs, *w.MatchedActivityID)
		}
	}

	activities, err := q.store.GetActivitiesByIDs(activityIDs)
	if err != nil {
		return nil, fmt.Errorf("loading matched activities: %w", err)
	}
	compliance, err := q.store.GetComplianceByWorkoutIDs(workoutIDs)
	if err != nil {
		return nil, fmt.Errorf("loading compliance: %w", err)
	}

	wrapped := make([]WorkoutWithStatus, len(workouts))
	for i, w := range workouts {
		wrapped[i] = WorkoutWithStatus{Workout: w}
		if w.MatchedActivityID != nil {
			wrapped[i].Activity = activities[*w.MatchedActivityID]
		}
		wrapped[i].Compliance = compliance[w.ID]
	}
	return wrapped, nil
}

// WorkoutDetail contains everything the detail screen shows for one
// planned workout
type WorkoutDetail struct {
	Workout    store.PlannedWorkout
	Activity   *store.Activity
	Compliance *store.WorkoutCompliance
	Result     *plan.ComplianceResult // decoded breakdown, nil if not scored
	Structure  *plan.IntervalStructure
	Zones      plan.ZoneTable
}

// GetWorkoutDetail returns the full detail for a single planned workout
func (q *QueryService) GetWorkoutDetail(id int64) (*WorkoutDetail, error) {
	workout, err := q.store.GetWorkout(id)
	if err != nil {
		return nil, err
	}

	detail := &WorkoutDetail{
		Workout: *workout,
		Zones:   q.zones,
	}

	var intensity, notes string
	if workout.TargetIntensity != nil {
		intensity = *workout.TargetIntensity
	}
	if workout.Notes != nil {
		notes = *workout.Notes
	}
	detail.Structure = plan.ParseIntervalStructure(workout.Title, notes, intensity)

	if workout.MatchedActivityID != nil {
		activity, err := q.store.GetActivity(*workout.MatchedActivityID)
		if err == nil {
			detail.Activity = activity
		}
	}

	compliance, err := q.store.GetCompliance(id)
	if err == nil {
		detail.Compliance = compliance
		var result plan.ComplianceResult
		if err := json.Unmarshal([]byte(compliance.Breakdown), &result); err == nil {
			detail.Result = &result
		}
	}

	return detail, nil
}
