package plan

import (
	"strings"

	"plancheck/internal/store"
)

// sessionTypeRules maps session-name keywords to the Strava activity types
// that can satisfy them. Order matters: the first keyword found in the title
// wins, so "long ride" must come before "ride". A nil type list marks a
// rest day, which never matches an activity.
var sessionTypeRules = []struct {
	keyword string
	types   []string
}{
	{"off", nil},
	{"rest", nil},
	{"travel day", nil},
	{"long ride", []string{"Ride", "VirtualRide"}},
	{"ride", []string{"Ride", "VirtualRide"}},
	{"bike", []string{"Ride", "VirtualRide"}},
	{"spin", []string{"Ride", "VirtualRide"}},
	{"long run", []string{"Run", "VirtualRun"}},
	{"run", []string{"Run", "VirtualRun"}},
	{"jog", []string{"Run", "VirtualRun"}},
	{"swim", []string{"Swim"}},
	{"strength", []string{"WeightTraining", "Workout", "Crossfit"}},
	{"gym", []string{"WeightTraining", "Workout", "Crossfit"}},
	{"core", []string{"WeightTraining", "Workout", "Crossfit"}},
	{"yoga", []string{"Yoga", "Workout"}},
	{"brick", []string{"Ride", "Run"}},
}

// defaultSessionTypes is what a session with no recognized keyword can
// match: any of the common endurance types.
var defaultSessionTypes = []string{"Ride", "VirtualRide", "Run", "VirtualRun", "Swim", "Workout"}

// Match candidate scoring.
const (
	typeMatchScore     = 10
	durationMatchScore = 5
	durationLowerBound = 0.7
	durationUpperBound = 1.3
	maxDurationBonus   = 2.0
)

// expectedTypes resolves a session title to the activity types it accepts.
// restDay is true when the title names a day with nothing to record.
func expectedTypes(title string) (types []string, restDay bool) {
	lower := strings.ToLower(title)
	for _, rule := range sessionTypeRules {
		if strings.Contains(lower, rule.keyword) {
			return rule.types, rule.types == nil
		}
	}
	return defaultSessionTypes, false
}

// MatchActivities pairs each planned workout with the recorded activity
// that best fits it. Only activities recorded on the workout's plan day are
// considered. A workout already holding a manual link keeps it if the
// linked activity is among that day's candidates. Rest days never match.
// Returns a map keyed by workout ID; unmatched workouts are absent.
func MatchActivities(workouts []store.PlannedWorkout, activities []store.Activity) map[int64]*store.Activity {
	// Group candidates by local calendar date.
	byDay := make(map[string][]*store.Activity)
	for i := range activities {
		a := &activities[i]
		day := a.StartDateLocal.Format("2006-01-02")
		byDay[day] = append(byDay[day], a)
	}

	matches := make(map[int64]*store.Activity)
	for i := range workouts {
		w := &workouts[i]
		candidates := byDay[w.Day.Format("2006-01-02")]
		if len(candidates) == 0 {
			continue
		}

		if w.ManualMatch && w.MatchedActivityID != nil {
			for _, a := range candidates {
				if a.ID == *w.MatchedActivityID {
					matches[w.ID] = a
					break
				}
			}
			continue
		}

		types, restDay := expectedTypes(w.Title)
		if restDay {
			continue
		}

		var best *store.Activity
		var bestScore float64
		for _, a := range candidates {
			score := scoreCandidate(w, a, types)
			if best == nil || score > bestScore {
				best = a
				bestScore = score
			}
		}
		matches[w.ID] = best
	}

	return matches
}

// scoreCandidate rates how well an activity fits a planned workout. Type
// agreement dominates, a duration inside 70-130% of target adds a fixed
// bonus, and longer activities get a small tiebreaker capped at two hours.
func scoreCandidate(w *store.PlannedWorkout, a *store.Activity, types []string) float64 {
	score := 0.0

	for _, t := range types {
		if a.Type == t {
			score += typeMatchScore
			break
		}
	}

	if w.TargetDurationMin != nil && *w.TargetDurationMin > 0 {
		target := float64(*w.TargetDurationMin * 60)
		actual := float64(a.MovingTime)
		if actual >= target*durationLowerBound && actual <= target*durationUpperBound {
			score += durationMatchScore
		}
	}

	hours := float64(a.MovingTime) / 3600
	if hours > maxDurationBonus {
		hours = maxDurationBonus
	}
	score += hours

	return score
}
