package store_test

import (
	"context"
	"testing"
	"time"

	"ctkirep/internal/store"
)

func TestReadingTimeReport(t *testing.T) {
	st, fx := openSeeded(t)
	ctx := context.Background()

	start := time.Date(2024, time.January, 8, 9, 0, 0, 0, time.UTC)
	sessions := []store.ReadingTime{
		{ID: 1, StudentID: fx.Alice.ID, ActivityID: fx.ReadingActivity.ID, Start: start, End: start.Add(30 * time.Hour), Duration: 30 * time.Hour},
		{ID: 2, StudentID: fx.Alice.ID, ActivityID: fx.ReadingActivity.ID, Start: start.Add(48 * time.Hour), End: start.Add(60 * time.Hour), Duration: 12 * time.Hour},
	}
	if err := st.InsertReadingTimes(ctx, sessions); err != nil {
		t.Fatalf("InsertReadingTimes: %v", err)
	}

	rows, err := st.ReadingTimeReport(ctx, fx.CourseType.ID)
	if err != nil {
		t.Fatalf("ReadingTimeReport: %v", err)
	}
	// one course subject, two active students, ordered by surname
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}

	alice := rows[0]
	if alice.Surname != "Anderson" {
		t.Fatalf("expected Anderson first, got %s", alice.Surname)
	}
	if alice.Total != 42*time.Hour {
		t.Fatalf("expected 42h accumulated, got %v", alice.Total)
	}
	if alice.Difference != 2*time.Hour {
		t.Fatalf("expected +2h difference, got %v", alice.Difference)
	}

	bob := rows[1]
	if bob.Total != 0 {
		t.Fatalf("student without sessions should report zero, got %v", bob.Total)
	}
	if bob.Difference != -40*time.Hour {
		t.Fatalf("expected -40h difference, got %v", bob.Difference)
	}
}

func TestReadingTimeReportExcludesInactiveStudents(t *testing.T) {
	st, fx := openSeeded(t)
	ctx := context.Background()

	start := time.Date(2024, time.January, 8, 0, 0, 0, 0, time.UTC)
	if _, err := st.CreateStudent(ctx, store.Student{
		Name: "Carol", Surname: "Clark",
		ReadingUsername: "carol.r", PTUsername: "carol.pt",
		CourseTypeID: fx.CourseType.ID, StartDate: start, Active: false,
	}); err != nil {
		t.Fatalf("CreateStudent: %v", err)
	}

	rows, err := st.ReadingTimeReport(ctx, fx.CourseType.ID)
	if err != nil {
		t.Fatalf("ReadingTimeReport: %v", err)
	}
	for _, row := range rows {
		if row.Surname == "Clark" {
			t.Fatal("inactive student must not appear in the report")
		}
	}
}

func TestProgressReport(t *testing.T) {
	st, fx := openSeeded(t)
	ctx := context.Background()

	ts := time.Date(2024, time.March, 8, 9, 0, 0, 0, time.UTC)
	score := 81.0
	if _, err := st.UpsertContentStatus(ctx, store.ACEContentStatus{
		StudentID:  fx.Alice.ID,
		ActivityID: fx.ACEActivity.ID,
		StatusID:   fx.StatusPassed.ID,
		Timestamp:  &ts,
		Score:      &score,
	}); err != nil {
		t.Fatalf("UpsertContentStatus: %v", err)
	}

	events := []store.ACEJourneyEvent{
		{StudentID: fx.Alice.ID, Timestamp: ts.Add(-7 * 24 * time.Hour), Attempt: 1, ActivityID: fx.ACEActivity.ID, ActionID: fx.StatusFailed.ID},
		{StudentID: fx.Alice.ID, Timestamp: ts, Attempt: 2, ActivityID: fx.ACEActivity.ID, ActionID: fx.StatusPassed.ID},
	}
	if err := st.InsertJourneyEvents(ctx, events); err != nil {
		t.Fatalf("InsertJourneyEvents: %v", err)
	}

	rows, err := st.ProgressReport(ctx, fx.CourseType.ID)
	if err != nil {
		t.Fatalf("ProgressReport: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}

	row := rows[0]
	if row.Status != "Passed" {
		t.Fatalf("expected Passed, got %s", row.Status)
	}
	if row.MaxAttempt != 2 {
		t.Fatalf("expected attempt count 2, got %d", row.MaxAttempt)
	}
	if row.Timestamp == nil || !row.Timestamp.Equal(ts) {
		t.Fatalf("unexpected timestamp %v", row.Timestamp)
	}
	if row.Score == nil || *row.Score != 81 {
		t.Fatalf("unexpected score %v", row.Score)
	}
}

func TestProgressReportWithoutJourneyEvents(t *testing.T) {
	st, fx := openSeeded(t)
	ctx := context.Background()

	if _, err := st.UpsertContentStatus(ctx, store.ACEContentStatus{
		StudentID:  fx.Bob.ID,
		ActivityID: fx.ACEActivity.ID,
		StatusID:   fx.StatusFailed.ID,
	}); err != nil {
		t.Fatalf("UpsertContentStatus: %v", err)
	}

	rows, err := st.ProgressReport(ctx, fx.CourseType.ID)
	if err != nil {
		t.Fatalf("ProgressReport: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	row := rows[0]
	if row.MaxAttempt != 0 {
		t.Fatalf("expected zero attempts, got %d", row.MaxAttempt)
	}
	if row.Timestamp != nil || row.Score != nil {
		t.Fatalf("expected absent optionals, got %+v", row)
	}
}
