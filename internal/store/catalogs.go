package store

import (
	"context"
	"fmt"
)

// ReadingActivities returns the reading activity catalogue.
func (s *Store) ReadingActivities(ctx context.Context) ([]ReadingActivity, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM reading_activities ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query reading activities: %w", err)
	}
	defer rows.Close()

	var activities []ReadingActivity
	for rows.Next() {
		var activity ReadingActivity
		if err := rows.Scan(&activity.ID, &activity.Name); err != nil {
			return nil, err
		}
		activities = append(activities, activity)
	}
	return activities, rows.Err()
}

// ACEActivityTypes returns the display-type catalogue.
func (s *Store) ACEActivityTypes(ctx context.Context) ([]ACEActivityType, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM ace_activity_types ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query activity types: %w", err)
	}
	defer rows.Close()

	var types []ACEActivityType
	for rows.Next() {
		var at ACEActivityType
		if err := rows.Scan(&at.ID, &at.Name); err != nil {
			return nil, err
		}
		types = append(types, at)
	}
	return types, rows.Err()
}

// ACEActivities returns the progress-test activity catalogue.
func (s *Store) ACEActivities(ctx context.Context) ([]ACEActivity, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, link, external_ref, name, activity_type_id, subject_id, sort_order
         FROM ace_activities ORDER BY sort_order, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("query ace activities: %w", err)
	}
	defer rows.Close()

	var activities []ACEActivity
	for rows.Next() {
		var activity ACEActivity
		if err := rows.Scan(
			&activity.ID,
			&activity.Link,
			&activity.ExternalRef,
			&activity.Name,
			&activity.ActivityTypeID,
			&activity.SubjectID,
			&activity.SortOrder,
		); err != nil {
			return nil, err
		}
		activities = append(activities, activity)
	}
	return activities, rows.Err()
}

// ACEStatuses returns the status/action catalogue.
func (s *Store) ACEStatuses(ctx context.Context) ([]ACEStatus, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM ace_statuses ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query ace statuses: %w", err)
	}
	defer rows.Close()

	var statuses []ACEStatus
	for rows.Next() {
		var status ACEStatus
		if err := rows.Scan(&status.ID, &status.Name); err != nil {
			return nil, err
		}
		statuses = append(statuses, status)
	}
	return statuses, rows.Err()
}

// CreateCourseType inserts a course type catalogue entry.
func (s *Store) CreateCourseType(ctx context.Context, ct CourseType) (CourseType, error) {
	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO course_types (name, sort_order, remote) VALUES (?, ?, ?)`,
		ct.Name, ct.SortOrder, boolToInt(ct.Remote),
	)
	if err != nil {
		return CourseType{}, fmt.Errorf("insert course type: %w", err)
	}
	ct.ID, err = res.LastInsertId()
	if err != nil {
		return CourseType{}, fmt.Errorf("last insert id: %w", err)
	}
	return ct, nil
}

// CreateCourseSubject inserts a subject catalogue entry.
func (s *Store) CreateCourseSubject(ctx context.Context, subject CourseSubject) (CourseSubject, error) {
	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO course_subjects (code, full_name) VALUES (?, ?)`,
		subject.Code, subject.FullName,
	)
	if err != nil {
		return CourseSubject{}, fmt.Errorf("insert course subject: %w", err)
	}
	subject.ID, err = res.LastInsertId()
	if err != nil {
		return CourseSubject{}, fmt.Errorf("last insert id: %w", err)
	}
	return subject, nil
}

// CreateCourse inserts a course row tying a subject to a course type.
func (s *Store) CreateCourse(ctx context.Context, course Course) (Course, error) {
	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO courses (course_type_id, subject_order, subject_id, reading_activity_id, required_seconds)
         VALUES (?, ?, ?, ?, ?)`,
		course.CourseTypeID,
		course.SubjectOrder,
		course.SubjectID,
		course.ReadingActivityID,
		int64(course.Required.Seconds()),
	)
	if err != nil {
		return Course{}, fmt.Errorf("insert course: %w", err)
	}
	course.ID, err = res.LastInsertId()
	if err != nil {
		return Course{}, fmt.Errorf("last insert id: %w", err)
	}
	return course, nil
}

// CreateReadingActivity inserts a reading activity with its fixed ID.
func (s *Store) CreateReadingActivity(ctx context.Context, activity ReadingActivity) error {
	if _, err := s.db.ExecContext(
		ctx,
		`INSERT INTO reading_activities (id, name) VALUES (?, ?)`,
		activity.ID, activity.Name,
	); err != nil {
		return fmt.Errorf("insert reading activity: %w", err)
	}
	return nil
}

// CreateACEActivityType inserts a display-type catalogue entry.
func (s *Store) CreateACEActivityType(ctx context.Context, at ACEActivityType) (ACEActivityType, error) {
	res, err := s.db.ExecContext(ctx, `INSERT INTO ace_activity_types (name) VALUES (?)`, at.Name)
	if err != nil {
		return ACEActivityType{}, fmt.Errorf("insert activity type: %w", err)
	}
	at.ID, err = res.LastInsertId()
	if err != nil {
		return ACEActivityType{}, fmt.Errorf("last insert id: %w", err)
	}
	return at, nil
}

// CreateACEActivity inserts a progress-test activity catalogue entry.
func (s *Store) CreateACEActivity(ctx context.Context, activity ACEActivity) (ACEActivity, error) {
	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO ace_activities (link, external_ref, name, activity_type_id, subject_id, sort_order)
         VALUES (?, ?, ?, ?, ?, ?)`,
		activity.Link,
		activity.ExternalRef,
		activity.Name,
		activity.ActivityTypeID,
		activity.SubjectID,
		activity.SortOrder,
	)
	if err != nil {
		return ACEActivity{}, fmt.Errorf("insert ace activity: %w", err)
	}
	activity.ID, err = res.LastInsertId()
	if err != nil {
		return ACEActivity{}, fmt.Errorf("last insert id: %w", err)
	}
	return activity, nil
}

// CreateACEStatus inserts a status/action catalogue entry.
func (s *Store) CreateACEStatus(ctx context.Context, status ACEStatus) (ACEStatus, error) {
	res, err := s.db.ExecContext(ctx, `INSERT INTO ace_statuses (name) VALUES (?)`, status.Name)
	if err != nil {
		return ACEStatus{}, fmt.Errorf("insert ace status: %w", err)
	}
	status.ID, err = res.LastInsertId()
	if err != nil {
		return ACEStatus{}, fmt.Errorf("last insert id: %w", err)
	}
	return status, nil
}
