package store

import "time"

// CourseType is a course catalogue entry (e.g. full-time, remote intake).
type CourseType struct {
	ID        int64
	Name      string
	SortOrder int
	Remote    bool
}

// CourseSubject identifies one subject taught within a course.
type CourseSubject struct {
	ID       int64
	Code     string
	FullName string
}

// Course links a course type to a subject and its required reading activity.
type Course struct {
	ID                int64
	CourseTypeID      int64
	SubjectOrder      int
	SubjectID         int64
	ReadingActivityID int64
	Required          time.Duration
}

// Student is an enrolled learner. ReadingUsername and PTUsername are the
// globally unique identities the external reporting systems know the student
// by; ingestion resolves rows against them.
type Student struct {
	ID              int64
	Name            string
	Surname         string
	Email           string
	ReadingUsername string
	PTUsername      string
	CourseTypeID    int64
	StartDate       time.Time
	Active          bool
}

// ReadingActivity is a fixed catalogue entry for the reading tracker.
type ReadingActivity struct {
	ID   int64
	Name string
}

// ReadingTime is one reading session. Records are only ever inserted; the
// ingestion run allocates IDs monotonically from the stored maximum.
type ReadingTime struct {
	ID         int64
	StudentID  int64
	ActivityID int64
	Start      time.Time
	End        time.Time
	Duration   time.Duration
}

// ACEActivityType is a fixed catalogue of progress-test display types.
type ACEActivityType struct {
	ID   int64
	Name string
}

// ACEActivity is a progress-test activity resolved by name during ingestion.
type ACEActivity struct {
	ID             int64
	Link           string
	ExternalRef    string
	Name           string
	ActivityTypeID int64
	SubjectID      int64
	SortOrder      int
}

// ACEStatus is a fixed catalogue of content statuses and journey actions.
type ACEStatus struct {
	ID   int64
	Name string
}

// ACEContentStatus holds the current test status per (student, activity).
// At most one row exists per pair; ingestion overwrites in place.
type ACEContentStatus struct {
	ID         int64
	StudentID  int64
	ActivityID int64
	StatusID   int64
	Timestamp  *time.Time
	Score      *float64
}

// ACEJourneyEvent is one append-only learner journey log entry.
type ACEJourneyEvent struct {
	ID         int64
	StudentID  int64
	Timestamp  time.Time
	Attempt    int
	Duration   *time.Duration
	ActivityID int64
	ActionID   int64
	Response   string
	Score      *float64
}

// DatabaseHealth captures diagnostic information about the database file.
type DatabaseHealth struct {
	DBPath           string
	DatabaseExists   bool
	DatabaseReadable bool
	TablesPresent    []string
	MissingTables    []string
	IntegrityCheck   bool
	StudentCount     int
	Error            string
}
