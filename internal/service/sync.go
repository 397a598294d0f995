package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"plancheck/internal/plan"
	"plancheck/internal/store"
	"plancheck/internal/strava"
)

// SyncService orchestrates syncing data from Strava and keeping plan
// compliance up to date
type SyncService struct {
	client *strava.Client
	store  *store.DB
	zones  plan.ZoneTable
	scorer *plan.Scorer
}

// NewSyncService creates a new sync service using the athlete's zone table
func NewSyncService(client *strava.Client, db *store.DB, zones plan.ZoneTable) *SyncService {
	s := &SyncService{
		client: client,
		store:  db,
		zones:  zones,
	}
	s.scorer = plan.NewScorer(s.fetchStreams)
	return s
}

// SyncProgress reports progress during sync
type SyncProgress struct {
	Phase           string // "activities", "streams", "match", "compliance"
	Total           int
	Completed       int
	CurrentActivity string
	Error           error
}

// SyncResult contains the results of a sync operation
type SyncResult struct {
	ActivitiesFetched  int
	ActivitiesStored   int
	StreamsFetched     int
	WorkoutsMatched    int
	ComplianceComputed int
	Errors             []error
}

// SyncAll performs a full sync: activities -> streams -> match -> compliance
func (s *SyncService) SyncAll(ctx context.Context, progress chan<- SyncProgress) (*SyncResult, error) {
	if progress != nil {
		defer close(progress)
	}

	result := &SyncResult{}

	// Phase 1: Sync activity summaries
	if err := s.syncActivities(ctx, progress, result); err != nil {
		return result, fmt.Errorf("syncing activities: %w", err)
	}

	// Phase 2: Fetch streams for activities that need them
	if err := s.syncStreams(ctx, progress, result); err != nil {
		return result, fmt.Errorf("syncing streams: %w", err)
	}

	// Phase 3: Match planned workouts to recorded activities
	if err := s.matchWorkouts(ctx, progress, result); err != nil {
		return result, fmt.Errorf("matching workouts: %w", err)
	}

	// Phase 4: Compute compliance scores for matched workouts
	if err := s.computeCompliance(ctx, progress, result); err != nil {
		return result, fmt.Errorf("computing compliance: %w", err)
	}

	return result, nil
}

// syncActivities fetches new activities from Strava and stores them
func (s *SyncService) syncActivities(ctx context.Context, progress chan<- SyncProgress, result *SyncResult) error {
	// Get last sync time
	lastSyncStr, _ := s.store.GetSyncState("last_activity_sync")
	var after time.Time
	if lastSyncStr != "" {
		after, _ = time.Parse(time.RFC3339, lastSyncStr)
	}

	if progress != nil {
		progress <- SyncProgress{Phase: "activities", Total: 0, Completed: 0}
	}

	page := 1

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		activities, err := s.client.GetActivities(ctx, after, page, ActivityPerPage)
		if err != nil {
			return fmt.Errorf("fetching page %d: %w", page, err)
		}

		if len(activities) == 0 {
			break
		}

		result.ActivitiesFetched += len(activities)

		for _, a := range activities {
			if err := s.store.UpsertActivity(convertActivity(a)); err != nil {
				result.Errors = append(result.Errors, fmt.Errorf("storing activity %d: %w", a.ID, err))
				continue
			}
			result.ActivitiesStored++
		}

		if progress != nil {
			progress <- SyncProgress{
				Phase:     "activities",
				Total:     result.ActivitiesFetched,
				Completed: result.ActivitiesStored,
			}
		}

		if len(activities) < ActivityPerPage {
			break // Last page
		}

		page++
	}

	// Update last sync time
	s.store.SetSyncState("last_activity_sync", time.Now().Format(time.RFC3339))

	return nil
}

// syncStreams fetches detailed stream data for activities that need it
func (s *SyncService) syncStreams(ctx context.Context, progress chan<- SyncProgress, result *SyncResult) error {
	// Limit to batch size to respect rate limits
	activities, err := s.store.GetActivitiesNeedingStreams(StreamSyncBatch)
	if err != nil {
		return fmt.Errorf("getting activities needing streams: %w", err)
	}

	if len(activities) == 0 {
		return nil
	}

	if progress != nil {
		progress <- SyncProgress{Phase: "streams", Total: len(activities), Completed: 0}
	}

	for i, activity := range activities {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if progress != nil {
			progress <- SyncProgress{
				Phase:           "streams",
				Total:           len(activities),
				Completed:       i,
				CurrentActivity: activity.Name,
			}
		}

		streams, err := s.client.GetActivityStreams(ctx, activity.ID)
		if err != nil {
			// Log error but continue - some activities may not have streams
			result.Errors = append(result.Errors, fmt.Errorf("activity %d (%s): %w", activity.ID, activity.Name, err))
			continue
		}

		points := convertStreams(activity.ID, streams)
		if len(points) > 0 {
			if err := s.store.SaveStreams(activity.ID, points); err != nil {
				result.Errors = append(result.Errors, fmt.Errorf("saving streams for %d: %w", activity.ID, err))
				continue
			}
		}

		if err := s.store.MarkStreamsSynced(activity.ID); err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("marking synced for %d: %w", activity.ID, err))
			continue
		}

		result.StreamsFetched++
	}

	if progress != nil {
		progress <- SyncProgress{
			Phase:     "streams",
			Total:     len(activities),
			Completed: len(activities),
		}
	}

	return nil
}

// matchWorkouts pairs planned workouts with recorded activities and
// persists the links. Manual links are left alone.
func (s *SyncService) matchWorkouts(ctx context.Context, progress chan<- SyncProgress, result *SyncResult) error {
	first, last, ok, err := s.store.WorkoutDateRange()
	if err != nil {
		return fmt.Errorf("getting plan date range: %w", err)
	}
	if !ok {
		return nil // no plan imported yet
	}

	workouts, err := s.store.ListWorkoutsBetween(first, last.AddDate(0, 0, 1))
	if err != nil {
		return fmt.Errorf("listing workouts: %w", err)
	}

	activities, err := s.store.ListActivitiesBetween(first, last.AddDate(0, 0, 1))
	if err != nil {
		return fmt.Errorf("listing activities: %w", err)
	}

	if progress != nil {
		progress <- SyncProgress{Phase: "match", Total: len(workouts), Completed: 0}
	}

	matches := plan.MatchActivities(workouts, activities)

	for i, w := range workouts {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if w.ManualMatch {
			continue
		}

		m, ok := matches[w.ID]
		if !ok {
			continue
		}
		if w.MatchedActivityID != nil && *w.MatchedActivityID == m.ID {
			continue // already linked
		}

		if err := s.store.SetMatchedActivity(w.ID, &m.ID, false); err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("linking workout %d: %w", w.ID, err))
			continue
		}
		// The old score no longer describes the linked activity
		if err := s.store.DeleteCompliance(w.ID); err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("clearing stale score for %d: %w", w.ID, err))
		}
		result.WorkoutsMatched++

		if progress != nil {
			progress <- SyncProgress{Phase: "match", Total: len(workouts), Completed: i + 1}
		}
	}

	return nil
}

// computeCompliance scores matched workouts that don't have a stored
// result yet
func (s *SyncService) computeCompliance(ctx context.Context, progress chan<- SyncProgress, result *SyncResult) error {
	first, last, ok, err := s.store.WorkoutDateRange()
	if err != nil {
		return fmt.Errorf("getting plan date range: %w", err)
	}
	if !ok {
		return nil
	}

	workouts, err := s.store.ListWorkoutsBetween(first, last.AddDate(0, 0, 1))
	if err != nil {
		return fmt.Errorf("listing workouts: %w", err)
	}

	if progress != nil {
		progress <- SyncProgress{Phase: "compliance", Total: len(workouts), Completed: 0}
	}

	for i, w := range workouts {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if progress != nil {
			progress <- SyncProgress{
				Phase:           "compliance",
				Total:           len(workouts),
				Completed:       i,
				CurrentActivity: w.Title,
			}
		}

		if w.MatchedActivityID == nil {
			continue
		}
		if _, err := s.store.GetCompliance(w.ID); err == nil {
			continue // already scored
		}

		activity, err := s.store.GetActivity(*w.MatchedActivityID)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("loading activity for workout %d: %w", w.ID, err))
			continue
		}

		res := s.scorer.Compute(ctx, &w, activity, s.zones)

		breakdown, err := json.Marshal(res)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("encoding breakdown for %d: %w", w.ID, err))
			continue
		}

		if err := s.store.SaveCompliance(&store.WorkoutCompliance{
			WorkoutID:  w.ID,
			Score:      res.Score,
			Breakdown:  string(breakdown),
			ComputedAt: time.Now(),
		}); err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("saving score for %d: %w", w.ID, err))
			continue
		}

		result.ComplianceComputed++
	}

	if progress != nil {
		progress <- SyncProgress{
			Phase:     "compliance",
			Total:     len(workouts),
			Completed: len(workouts),
		}
	}

	return nil
}

// fetchStreams is the scorer's stream source: stored streams first, the
// API as a fallback for activities whose streams were never synced.
func (s *SyncService) fetchStreams(ctx context.Context, activityID int64) ([]store.StreamPoint, error) {
	points, err := s.store.GetStreams(activityID)
	if err != nil {
		return nil, err
	}
	if len(points) > 0 {
		return points, nil
	}

	streams, err := s.client.GetActivityStreams(ctx, activityID)
	if err != nil {
		return nil, err
	}

	points = convertStreams(activityID, streams)
	if len(points) > 0 {
		if err := s.store.SaveStreams(activityID, points); err != nil {
			return nil, err
		}
		if err := s.store.MarkStreamsSynced(activityID); err != nil {
			return nil, err
		}
	}
	return points, nil
}

// RateLimitStatus returns the current rate limit status from the client
func (s *SyncService) RateLimitStatus() (shortRemaining, dailyRemaining int) {
	return s.client.RateLimitStatus()
}

// convertActivity converts a Strava API activity to a store activity
func convertActivity(a strava.Activity) *store.Activity {
	activity := &store.Activity{
		ID:                 a.ID,
		AthleteID:          a.Athlete.ID,
		Name:               a.Name,
		Type:               a.Type,
		StartDate:          a.StartDate,
		StartDateLocal:     a.StartDateLocal,
		Timezone:           a.Timezone,
		Distance:           a.Distance,
		MovingTime:         a.MovingTime,
		ElapsedTime:        a.ElapsedTime,
		TotalElevationGain: a.TotalElevationGain,
		AverageSpeed:       a.AverageSpeed,
		MaxSpeed:           a.MaxSpeed,
		HasHeartrate:       a.HasHeartrate,
		StreamsSynced:      false,
	}

	if a.AverageHeartrate > 0 {
		activity.AverageHeartrate = &a.AverageHeartrate
	}
	if a.MaxHeartrate > 0 {
		activity.MaxHeartrate = &a.MaxHeartrate
	}

	return activity
}

// convertStreams converts Strava API streams to store stream points
func convertStreams(activityID int64, s *strava.Streams) []store.StreamPoint {
	if s == nil || s.Time == nil {
		return nil
	}

	length := len(s.Time.Data)
	points := make([]store.StreamPoint, length)

	for i := 0; i < length; i++ {
		p := store.StreamPoint{
			ActivityID: activityID,
			TimeOffset: s.Time.Data[i],
		}

		if s.Heartrate != nil && i < len(s.Heartrate.Data) {
			hr := s.Heartrate.Data[i]
			p.Heartrate = &hr
		}

		if s.VelocitySmooth != nil && i < len(s.VelocitySmooth.Data) {
			vel := s.VelocitySmooth.Data[i]
			p.VelocitySmooth = &vel
		}

		if s.Distance != nil && i < len(s.Distance.Data) {
			dist := s.Distance.Data[i]
			p.Distance = &dist
		}

		points[i] = p
	}

	return points
}
