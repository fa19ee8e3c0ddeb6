package testsupport

import (
	"context"
	"testing"
	"time"

	"ctkirep/internal/config"
	"ctkirep/internal/store"
)

// MustOpenStore opens a store.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

// Fixture is a small but complete roster-and-catalogue setup shared by the
// ingestion and report tests.
type Fixture struct {
	CourseType      store.CourseType
	Subject         store.CourseSubject
	Course          store.Course
	ReadingActivity store.ReadingActivity
	ActivityType    store.ACEActivityType
	ACEActivity     store.ACEActivity
	StatusPassed    store.ACEStatus
	StatusFailed    store.ACEStatus
	Alice           store.Student
	Bob             store.Student
}

// SeedFixture populates catalogues and two enrolled students. Usernames follow
// the convention <name>.r for the reading tracker and <name>.pt for the
// progress test platform.
func SeedFixture(t testing.TB, st *store.Store) Fixture {
	t.Helper()
	ctx := context.Background()

	courseType, err := st.CreateCourseType(ctx, store.CourseType{Name: "ATPL", SortOrder: 1})
	if err != nil {
		t.Fatalf("create course type: %v", err)
	}

	subject, err := st.CreateCourseSubject(ctx, store.CourseSubject{Code: "AGK", FullName: "Aircraft General Knowledge"})
	if err != nil {
		t.Fatalf("create subject: %v", err)
	}

	readingActivity := store.ReadingActivity{ID: 1, Name: "AGK Reading"}
	if err := st.CreateReadingActivity(ctx, readingActivity); err != nil {
		t.Fatalf("create reading activity: %v", err)
	}

	course, err := st.CreateCourse(ctx, store.Course{
		CourseTypeID:      courseType.ID,
		SubjectOrder:      1,
		SubjectID:         subject.ID,
		ReadingActivityID: readingActivity.ID,
		Required:          40 * time.Hour,
	})
	if err != nil {
		t.Fatalf("create course: %v", err)
	}

	activityType, err := st.CreateACEActivityType(ctx, store.ACEActivityType{Name: "Exam"})
	if err != nil {
		t.Fatalf("create activity type: %v", err)
	}

	aceActivity, err := st.CreateACEActivity(ctx, store.ACEActivity{
		Name:           "AGK Progress Test 1",
		ActivityTypeID: activityType.ID,
		SubjectID:      subject.ID,
		SortOrder:      1,
	})
	if err != nil {
		t.Fatalf("create ace activity: %v", err)
	}

	passed, err := st.CreateACEStatus(ctx, store.ACEStatus{Name: "Passed"})
	if err != nil {
		t.Fatalf("create status: %v", err)
	}
	failed, err := st.CreateACEStatus(ctx, store.ACEStatus{Name: "Failed"})
	if err != nil {
		t.Fatalf("create status: %v", err)
	}

	start := time.Date(2024, time.January, 8, 0, 0, 0, 0, time.UTC)
	alice, err := st.CreateStudent(ctx, store.Student{
		Name:            "Alice",
		Surname:         "Anderson",
		Email:           "alice@example.com",
		ReadingUsername: "alice.r",
		PTUsername:      "alice.pt",
		CourseTypeID:    courseType.ID,
		StartDate:       start,
		Active:          true,
	})
	if err != nil {
		t.Fatalf("create student: %v", err)
	}
	bob, err := st.CreateStudent(ctx, store.Student{
		Name:            "Bob",
		Surname:         "Brown",
		Email:           "bob@example.com",
		ReadingUsername: "bob.r",
		PTUsername:      "bob.pt",
		CourseTypeID:    courseType.ID,
		StartDate:       start,
		Active:          true,
	})
	if err != nil {
		t.Fatalf("create student: %v", err)
	}

	return Fixture{
		CourseType:      courseType,
		Subject:         subject,
		Course:          course,
		ReadingActivity: readingActivity,
		ActivityType:    activityType,
		ACEActivity:     aceActivity,
		StatusPassed:    passed,
		StatusFailed:    failed,
		Alice:           alice,
		Bob:             bob,
	}
}
