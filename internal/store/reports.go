package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// ReadingReportRow is one line of the reading time report: a student's
// accumulated reading against the requirement for one course subject.
type ReadingReportRow struct {
	StudentID    int64
	Surname      string
	Name         string
	SubjectOrder int
	SubjectCode  string
	SubjectName  string
	Activity     string
	Required     time.Duration
	Total        time.Duration
	Difference   time.Duration
}

// ProgressReportRow is one line of the progress test report: the current
// content status for one (student, activity) with the attempt count from the
// journey log.
type ProgressReportRow struct {
	StudentID    int64
	Surname      string
	Name         string
	SubjectOrder int
	SubjectCode  string
	SubjectName  string
	Activity     string
	Status       string
	Timestamp    *time.Time
	Score        *float64
	MaxAttempt   int
}

// ReadingTimeReport aggregates stored reading sessions per student and course
// subject for one course type. Rows are ordered by student surname and the
// course's subject order.
func (s *Store) ReadingTimeReport(ctx context.Context, courseTypeID int64) ([]ReadingReportRow, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT st.id, st.surname, st.name,
                c.subject_order, cs.code, cs.full_name, ra.name,
                c.required_seconds, COALESCE(rt.total, 0)
         FROM students st
         JOIN courses c ON c.course_type_id = st.course_type_id
         JOIN course_subjects cs ON cs.id = c.subject_id
         JOIN reading_activities ra ON ra.id = c.reading_activity_id
         LEFT JOIN (
             SELECT student_id, activity_id, SUM(duration_seconds) AS total
             FROM reading_times GROUP BY student_id, activity_id
         ) rt ON rt.student_id = st.id AND rt.activity_id = c.reading_activity_id
         WHERE st.course_type_id = ? AND st.active = 1
         ORDER BY st.surname, st.name, c.subject_order`,
		courseTypeID,
	)
	if err != nil {
		return nil, fmt.Errorf("reading time report: %w", err)
	}
	defer rows.Close()

	var report []ReadingReportRow
	for rows.Next() {
		var (
			row             ReadingReportRow
			requiredSeconds int64
			totalSeconds    int64
		)
		if err := rows.Scan(
			&row.StudentID,
			&row.Surname,
			&row.Name,
			&row.SubjectOrder,
			&row.SubjectCode,
			&row.SubjectName,
			&row.Activity,
			&requiredSeconds,
			&totalSeconds,
		); err != nil {
			return nil, err
		}
		row.Required = time.Duration(requiredSeconds) * time.Second
		row.Total = time.Duration(totalSeconds) * time.Second
		row.Difference = row.Total - row.Required
		report = append(report, row)
	}
	return report, rows.Err()
}

// ProgressReport returns current content statuses with journey attempt counts
// for one course type, ordered by student surname, subject order, and activity
// order.
func (s *Store) ProgressReport(ctx context.Context, courseTypeID int64) ([]ProgressReportRow, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT st.id, st.surname, st.name,
                c.subject_order, cs.code, cs.full_name,
                a.name, ast.name, cst.timestamp, cst.score,
                COALESCE(j.max_attempt, 0)
         FROM ace_content_statuses cst
         JOIN students st ON st.id = cst.student_id
         JOIN ace_activities a ON a.id = cst.activity_id
         JOIN ace_statuses ast ON ast.id = cst.status_id
         JOIN course_subjects cs ON cs.id = a.subject_id
         JOIN courses c ON c.subject_id = cs.id AND c.course_type_id = st.course_type_id
         LEFT JOIN (
             SELECT student_id, activity_id, MAX(attempt) AS max_attempt
             FROM ace_learner_journeys GROUP BY student_id, activity_id
         ) j ON j.student_id = cst.student_id AND j.activity_id = cst.activity_id
         WHERE st.course_type_id = ?
         ORDER BY st.surname, st.name, c.subject_order, a.sort_order`,
		courseTypeID,
	)
	if err != nil {
		return nil, fmt.Errorf("progress report: %w", err)
	}
	defer rows.Close()

	var report []ProgressReportRow
	for rows.Next() {
		var (
			row   ProgressReportRow
			ts    sql.NullString
			score sql.NullFloat64
		)
		if err := rows.Scan(
			&row.StudentID,
			&row.Surname,
			&row.Name,
			&row.SubjectOrder,
			&row.SubjectCode,
			&row.SubjectName,
			&row.Activity,
			&row.Status,
			&ts,
			&score,
			&row.MaxAttempt,
		); err != nil {
			return nil, err
		}
		if ts.Valid {
			parsed, err := parseTimeString(ts.String)
			if err != nil {
				return nil, fmt.Errorf("parse report timestamp %q: %w", ts.String, err)
			}
			row.Timestamp = &parsed
		}
		if score.Valid {
			value := score.Float64
			row.Score = &value
		}
		report = append(report, row)
	}
	return report, rows.Err()
}
