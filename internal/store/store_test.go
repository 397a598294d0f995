package store

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

// setupTestDB creates an in-memory database for testing
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	sqlDB, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	// Enable foreign keys
	if _, err := sqlDB.Exec("PRAGMA foreign_keys = ON"); err != nil {
		sqlDB.Close()
		t.Fatalf("Failed to enable foreign keys: %v", err)
	}

	db := &DB{sqlDB}

	if err := migrate(sqlDB); err != nil {
		sqlDB.Close()
		t.Fatalf("Failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		sqlDB.Close()
	})

	return db
}

func testStoreActivity(id int64, name, actType string, start string) *Activity {
	startTime, _ := time.Parse(time.RFC3339, start)
	avgHR := 142.0
	return &Activity{
		ID:               id,
		AthleteID:        123,
		Name:             name,
		Type:             actType,
		StartDate:        startTime,
		StartDateLocal:   startTime,
		Timezone:         "Europe/Amsterdam",
		Distance:         10000,
		MovingTime:       3000,
		ElapsedTime:      3100,
		AverageHeartrate: &avgHR,
		HasHeartrate:     true,
	}
}

func TestUpsertAndGetActivity(t *testing.T) {
	db := setupTestDB(t)

	a := testStoreActivity(1, "Morning Run", "Run", "2026-03-02T07:00:00Z")
	if err := db.UpsertActivity(a); err != nil {
		t.Fatalf("UpsertActivity: %v", err)
	}

	got, err := db.GetActivity(1)
	if err != nil {
		t.Fatalf("GetActivity: %v", err)
	}
	if got.Name != "Morning Run" || got.Type != "Run" {
		t.Errorf("got %q/%q, want Morning Run/Run", got.Name, got.Type)
	}
	if got.AverageHeartrate == nil || *got.AverageHeartrate != 142 {
		t.Errorf("AverageHeartrate = %v, want 142", got.AverageHeartrate)
	}
	if !got.StartDate.Equal(a.StartDate) {
		t.Errorf("StartDate = %v, want %v", got.StartDate, a.StartDate)
	}

	// Upsert with same ID updates in place
	a.Name = "Morning Run (renamed)"
	if err := db.UpsertActivity(a); err != nil {
		t.Fatalf("UpsertActivity update: %v", err)
	}
	got, err = db.GetActivity(1)
	if err != nil {
		t.Fatalf("GetActivity after update: %v", err)
	}
	if got.Name != "Morning Run (renamed)" {
		t.Errorf("Name = %q after upsert, want renamed", got.Name)
	}

	count, err := db.CountActivities()
	if err != nil {
		t.Fatalf("CountActivities: %v", err)
	}
	if count != 1 {
		t.Errorf("CountActivities = %d, want 1", count)
	}
}

func TestGetActivityNotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.GetActivity(999)
	if !errors.Is(err, ErrActivityNotFound) {
		t.Errorf("err = %v, want ErrActivityNotFound", err)
	}
}

func TestListActivitiesBetween(t *testing.T) {
	db := setupTestDB(t)

	for i, start := range []string{
		"2026-03-01T08:00:00Z",
		"2026-03-02T08:00:00Z",
		"2026-03-05T08:00:00Z",
	} {
		a := testStoreActivity(int64(i+1), "Run", "Run", start)
		if err := db.UpsertActivity(a); err != nil {
			t.Fatalf("UpsertActivity: %v", err)
		}
	}

	from, _ := time.Parse(time.RFC3339, "2026-03-02T00:00:00Z")
	to, _ := time.Parse(time.RFC3339, "2026-03-05T00:00:00Z")
	got, err := db.ListActivitiesBetween(from, to)
	if err != nil {
		t.Fatalf("ListActivitiesBetween: %v", err)
	}
	if len(got) != 1 || got[0].ID != 2 {
		t.Errorf("got %d activities, want just activity 2", len(got))
	}
}

func TestStreamsRoundTrip(t *testing.T) {
	db := setupTestDB(t)

	a := testStoreActivity(1, "Run", "Run", "2026-03-02T07:00:00Z")
	if err := db.UpsertActivity(a); err != nil {
		t.Fatalf("UpsertActivity: %v", err)
	}

	hr1, hr2 := 120, 150
	vel := 3.2
	dist := 640.0
	points := []StreamPoint{
		{ActivityID: 1, TimeOffset: 0, Heartrate: &hr1},
		{ActivityID: 1, TimeOffset: 200, Heartrate: &hr2, VelocitySmooth: &vel, Distance: &dist},
	}

	if err := db.SaveStreams(1, points); err != nil {
		t.Fatalf("SaveStreams: %v", err)
	}

	got, err := db.GetStreams(1)
	if err != nil {
		t.Fatalf("GetStreams: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d points, want 2", len(got))
	}
	if got[0].TimeOffset != 0 || got[1].TimeOffset != 200 {
		t.Errorf("points not ordered by time offset: %d, %d", got[0].TimeOffset, got[1].TimeOffset)
	}
	if got[1].Heartrate == nil || *got[1].Heartrate != 150 {
		t.Errorf("Heartrate = %v, want 150", got[1].Heartrate)
	}
	if got[0].VelocitySmooth != nil {
		t.Errorf("VelocitySmooth = %v, want nil", got[0].VelocitySmooth)
	}

	has, err := db.HasStreams(1)
	if err != nil || !has {
		t.Errorf("HasStreams = %v, %v, want true", has, err)
	}

	// Saving again replaces, not appends
	if err := db.SaveStreams(1, points[:1]); err != nil {
		t.Fatalf("SaveStreams replace: %v", err)
	}
	got, _ = db.GetStreams(1)
	if len(got) != 1 {
		t.Errorf("got %d points after replace, want 1", len(got))
	}
}

func TestMarkStreamsSynced(t *testing.T) {
	db := setupTestDB(t)

	a := testStoreActivity(1, "Run", "Run", "2026-03-02T07:00:00Z")
	if err := db.UpsertActivity(a); err != nil {
		t.Fatalf("UpsertActivity: %v", err)
	}

	needing, err := db.GetActivitiesNeedingStreams(10)
	if err != nil {
		t.Fatalf("GetActivitiesNeedingStreams: %v", err)
	}
	if len(needing) != 1 {
		t.Fatalf("got %d activities needing streams, want 1", len(needing))
	}

	if err := db.MarkStreamsSynced(1); err != nil {
		t.Fatalf("MarkStreamsSynced: %v", err)
	}

	needing, _ = db.GetActivitiesNeedingStreams(10)
	if len(needing) != 0 {
		t.Errorf("got %d activities needing streams after sync, want 0", len(needing))
	}

	if err := db.MarkStreamsSynced(999); !errors.Is(err, ErrActivityNotFound) {
		t.Errorf("err = %v, want ErrActivityNotFound", err)
	}
}

func TestAuthRoundTrip(t *testing.T) {
	db := setupTestDB(t)

	if _, err := db.GetAuth(); !errors.Is(err, ErrNoAuth) {
		t.Fatalf("GetAuth on empty db: err = %v, want ErrNoAuth", err)
	}

	expires := time.Now().Add(6 * time.Hour).Truncate(time.Second)
	auth := &Auth{
		AthleteID:    123,
		AccessToken:  "access",
		RefreshToken: "refresh",
		ExpiresAt:    expires,
	}
	if err := db.SaveAuth(auth); err != nil {
		t.Fatalf("SaveAuth: %v", err)
	}

	got, err := db.GetAuth()
	if err != nil {
		t.Fatalf("GetAuth: %v", err)
	}
	if got.AthleteID != 123 || got.AccessToken != "access" {
		t.Errorf("got %+v, want stored auth", got)
	}
	if !got.ExpiresAt.Equal(expires) {
		t.Errorf("ExpiresAt = %v, want %v", got.ExpiresAt, expires)
	}

	newExpiry := expires.Add(time.Hour)
	if err := db.UpdateTokens("access2", "refresh2", newExpiry); err != nil {
		t.Fatalf("UpdateTokens: %v", err)
	}
	got, _ = db.GetAuth()
	if got.AccessToken != "access2" || got.RefreshToken != "refresh2" {
		t.Errorf("tokens not updated: %+v", got)
	}
}

func TestSyncState(t *testing.T) {
	db := setupTestDB(t)

	v, err := db.GetSyncState("missing")
	if err != nil || v != "" {
		t.Errorf("GetSyncState(missing) = %q, %v, want empty", v, err)
	}

	if err := db.SetSyncState("last_activity_sync", "2026-03-02T07:00:00Z"); err != nil {
		t.Fatalf("SetSyncState: %v", err)
	}
	if err := db.SetSyncState("last_activity_sync", "2026-03-03T07:00:00Z"); err != nil {
		t.Fatalf("SetSyncState update: %v", err)
	}

	v, err = db.GetSyncState("last_activity_sync")
	if err != nil {
		t.Fatalf("GetSyncState: %v", err)
	}
	if v != "2026-03-03T07:00:00Z" {
		t.Errorf("GetSyncState = %q, want updated value", v)
	}
}
