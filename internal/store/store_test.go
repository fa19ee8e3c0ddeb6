package store_test

import (
	"context"
	"testing"
	"time"

	"ctkirep/internal/store"
	"ctkirep/internal/testsupport"
)

func openSeeded(t *testing.T) (*store.Store, testsupport.Fixture) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	return st, testsupport.SeedFixture(t, st)
}

func TestOpenAppliesMigrations(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	health, err := st.CheckHealth(context.Background())
	if err != nil {
		t.Fatalf("CheckHealth: %v", err)
	}
	if !health.DatabaseExists || !health.DatabaseReadable {
		t.Fatalf("fresh database not usable: %+v", health)
	}
	if len(health.MissingTables) != 0 {
		t.Fatalf("missing tables after migration: %v", health.MissingTables)
	}
	if !health.IntegrityCheck {
		t.Fatal("integrity check failed on a fresh database")
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	if err := st.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// Reopening the same file must not re-run applied migrations.
	st2 := testsupport.MustOpenStore(t, cfg)
	health, err := st2.CheckHealth(context.Background())
	if err != nil {
		t.Fatalf("CheckHealth after reopen: %v", err)
	}
	if len(health.MissingTables) != 0 {
		t.Fatalf("missing tables after reopen: %v", health.MissingTables)
	}
}

func TestReadingTimeRoundTrip(t *testing.T) {
	st, fx := openSeeded(t)
	ctx := context.Background()

	start := time.Date(2024, time.January, 8, 9, 0, 0, 0, time.UTC)
	sessions := []store.ReadingTime{
		{ID: 1, StudentID: fx.Alice.ID, ActivityID: fx.ReadingActivity.ID, Start: start, End: start.Add(time.Hour), Duration: time.Hour},
		{ID: 2, StudentID: fx.Alice.ID, ActivityID: fx.ReadingActivity.ID, Start: start.Add(24 * time.Hour), End: start.Add(26 * time.Hour), Duration: 2 * time.Hour},
	}
	if err := st.InsertReadingTimes(ctx, sessions); err != nil {
		t.Fatalf("InsertReadingTimes: %v", err)
	}

	maxID, err := st.MaxReadingTimeID(ctx)
	if err != nil {
		t.Fatalf("MaxReadingTimeID: %v", err)
	}
	if maxID != 2 {
		t.Fatalf("expected max ID 2, got %d", maxID)
	}

	latest, err := st.LatestReadingEnds(ctx)
	if err != nil {
		t.Fatalf("LatestReadingEnds: %v", err)
	}
	if got := latest[fx.Alice.ID]; !got.Equal(start.Add(26 * time.Hour)) {
		t.Fatalf("unexpected latest end %v", got)
	}
	if _, ok := latest[fx.Bob.ID]; ok {
		t.Fatal("bob has no sessions and should not appear")
	}

	stored, err := st.ReadingTimesByStudent(ctx, fx.Alice.ID)
	if err != nil {
		t.Fatalf("ReadingTimesByStudent: %v", err)
	}
	if len(stored) != 2 || stored[0].Duration != time.Hour {
		t.Fatalf("unexpected stored sessions: %+v", stored)
	}
}

func TestInsertReadingTimesIsAtomic(t *testing.T) {
	st, fx := openSeeded(t)
	ctx := context.Background()

	start := time.Date(2024, time.January, 8, 9, 0, 0, 0, time.UTC)
	sessions := []store.ReadingTime{
		{ID: 1, StudentID: fx.Alice.ID, ActivityID: fx.ReadingActivity.ID, Start: start, End: start.Add(time.Hour), Duration: time.Hour},
		// duplicate primary key forces the transaction to fail
		{ID: 1, StudentID: fx.Bob.ID, ActivityID: fx.ReadingActivity.ID, Start: start, End: start.Add(time.Hour), Duration: time.Hour},
	}
	if err := st.InsertReadingTimes(ctx, sessions); err == nil {
		t.Fatal("expected duplicate ID to fail the batch")
	}

	count, err := st.CountReadingTimes(ctx)
	if err != nil {
		t.Fatalf("CountReadingTimes: %v", err)
	}
	if count != 0 {
		t.Fatalf("failed batch must leave the table empty, found %d rows", count)
	}
}

func TestUpsertContentStatus(t *testing.T) {
	st, fx := openSeeded(t)
	ctx := context.Background()

	ts := time.Date(2024, time.March, 1, 10, 15, 30, 0, time.UTC)
	score := 54.5
	created, err := st.UpsertContentStatus(ctx, store.ACEContentStatus{
		StudentID:  fx.Alice.ID,
		ActivityID: fx.ACEActivity.ID,
		StatusID:   fx.StatusFailed.ID,
		Timestamp:  &ts,
		Score:      &score,
	})
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if !created {
		t.Fatal("first upsert should create")
	}

	ts2 := ts.Add(7 * 24 * time.Hour)
	score2 := 81.0
	created, err = st.UpsertContentStatus(ctx, store.ACEContentStatus{
		StudentID:  fx.Alice.ID,
		ActivityID: fx.ACEActivity.ID,
		StatusID:   fx.StatusPassed.ID,
		Timestamp:  &ts2,
		Score:      &score2,
	})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if created {
		t.Fatal("second upsert should update")
	}

	count, err := st.CountContentStatuses(ctx)
	if err != nil {
		t.Fatalf("CountContentStatuses: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one row per (student, activity), got %d", count)
	}

	status, err := st.ContentStatus(ctx, fx.Alice.ID, fx.ACEActivity.ID)
	if err != nil {
		t.Fatalf("ContentStatus: %v", err)
	}
	if status.StatusID != fx.StatusPassed.ID || status.Score == nil || *status.Score != 81 {
		t.Fatalf("update not applied: %+v", status)
	}
}

func TestLatestJourneyTimestamps(t *testing.T) {
	st, fx := openSeeded(t)
	ctx := context.Background()

	early := time.Date(2024, time.March, 1, 10, 0, 0, 0, time.UTC)
	late := early.Add(48 * time.Hour)
	events := []store.ACEJourneyEvent{
		{StudentID: fx.Alice.ID, Timestamp: late, Attempt: 2, ActivityID: fx.ACEActivity.ID, ActionID: fx.StatusPassed.ID},
		{StudentID: fx.Alice.ID, Timestamp: early, Attempt: 1, ActivityID: fx.ACEActivity.ID, ActionID: fx.StatusFailed.ID},
	}
	if err := st.InsertJourneyEvents(ctx, events); err != nil {
		t.Fatalf("InsertJourneyEvents: %v", err)
	}

	latest, err := st.LatestJourneyTimestamps(ctx)
	if err != nil {
		t.Fatalf("LatestJourneyTimestamps: %v", err)
	}
	if got := latest[fx.Alice.PTUsername]; !got.Equal(late) {
		t.Fatalf("expected latest %v, got %v", late, got)
	}
	if _, ok := latest[fx.Bob.PTUsername]; ok {
		t.Fatal("bob has no events and should not appear")
	}
}

func TestLatestJourneyTimestampsFractionalSeconds(t *testing.T) {
	st, fx := openSeeded(t)
	ctx := context.Background()

	// 10:00:00.5 is later than 10:00:00 and must win the aggregate, which
	// only holds when the stored text encoding sorts chronologically.
	whole := time.Date(2024, time.March, 1, 10, 0, 0, 0, time.UTC)
	fractional := whole.Add(500 * time.Millisecond)
	events := []store.ACEJourneyEvent{
		{StudentID: fx.Alice.ID, Timestamp: whole, Attempt: 1, ActivityID: fx.ACEActivity.ID, ActionID: fx.StatusFailed.ID},
		{StudentID: fx.Alice.ID, Timestamp: fractional, Attempt: 1, ActivityID: fx.ACEActivity.ID, ActionID: fx.StatusPassed.ID},
	}
	if err := st.InsertJourneyEvents(ctx, events); err != nil {
		t.Fatalf("InsertJourneyEvents: %v", err)
	}

	latest, err := st.LatestJourneyTimestamps(ctx)
	if err != nil {
		t.Fatalf("LatestJourneyTimestamps: %v", err)
	}
	if got := latest[fx.Alice.PTUsername]; !got.Equal(fractional) {
		t.Fatalf("expected latest %v, got %v", fractional, got)
	}
}

func TestInsertStudentsIsAtomic(t *testing.T) {
	st, fx := openSeeded(t)
	ctx := context.Background()

	before, err := st.Students(ctx)
	if err != nil {
		t.Fatalf("Students: %v", err)
	}

	start := time.Date(2024, time.January, 8, 0, 0, 0, 0, time.UTC)
	batch := []store.Student{
		{Name: "Carol", Surname: "Clark", ReadingUsername: "carol.r", PTUsername: "carol.pt", CourseTypeID: fx.CourseType.ID, StartDate: start, Active: true},
		// duplicate reading username violates the unique constraint
		{Name: "Dan", Surname: "Doyle", ReadingUsername: "alice.r", PTUsername: "dan.pt", CourseTypeID: fx.CourseType.ID, StartDate: start, Active: true},
	}
	if err := st.InsertStudents(ctx, batch); err == nil {
		t.Fatal("expected duplicate username to fail the batch")
	}

	after, err := st.Students(ctx)
	if err != nil {
		t.Fatalf("Students: %v", err)
	}
	if len(after) != len(before) {
		t.Fatalf("failed batch must not change the roster: %d -> %d", len(before), len(after))
	}
}

func TestCourseTypeByName(t *testing.T) {
	st, fx := openSeeded(t)
	ctx := context.Background()

	courseType, err := st.CourseTypeByName(ctx, "ATPL")
	if err != nil {
		t.Fatalf("CourseTypeByName: %v", err)
	}
	if courseType == nil || courseType.ID != fx.CourseType.ID {
		t.Fatalf("unexpected course type: %+v", courseType)
	}

	missing, err := st.CourseTypeByName(ctx, "CPL")
	if err != nil {
		t.Fatalf("CourseTypeByName: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for unknown name, got %+v", missing)
	}
}
