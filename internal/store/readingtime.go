package store

import (
	"context"
	"fmt"
	"time"
)

// MaxReadingTimeID returns the highest reading time ID currently stored, or
// zero when the table is empty. The ingestion run continues allocation from it.
func (s *Store) MaxReadingTimeID(ctx context.Context) (int64, error) {
	row := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(id), 0) FROM reading_times`)
	var max int64
	if err := row.Scan(&max); err != nil {
		return 0, fmt.Errorf("max reading time id: %w", err)
	}
	return max, nil
}

// LatestReadingEnds returns, per student ID, the latest session end already
// stored across all activities. One aggregate query; the ingestion run checks
// candidates against the map in memory.
func (s *Store) LatestReadingEnds(ctx context.Context) (map[int64]time.Time, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT student_id, MAX(end_time) FROM reading_times GROUP BY student_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("latest reading ends: %w", err)
	}
	defer rows.Close()

	latest := make(map[int64]time.Time)
	for rows.Next() {
		var studentID int64
		var endRaw string
		if err := rows.Scan(&studentID, &endRaw); err != nil {
			return nil, err
		}
		end, err := parseTimeString(endRaw)
		if err != nil {
			return nil, fmt.Errorf("parse stored end time %q: %w", endRaw, err)
		}
		latest[studentID] = end
	}
	return latest, rows.Err()
}

// InsertReadingTimes writes the batch in a single transaction so a failure
// mid-insert leaves no partial rows.
func (s *Store) InsertReadingTimes(ctx context.Context, sessions []ReadingTime) error {
	if len(sessions) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reading time tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(
		ctx,
		`INSERT INTO reading_times (id, student_id, activity_id, start_time, end_time, duration_seconds)
         VALUES (?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("prepare reading time insert: %w", err)
	}
	defer stmt.Close()

	for _, session := range sessions {
		if _, err := stmt.ExecContext(
			ctx,
			session.ID,
			session.StudentID,
			session.ActivityID,
			formatTime(session.Start),
			formatTime(session.End),
			int64(session.Duration.Seconds()),
		); err != nil {
			return fmt.Errorf("insert reading time %d: %w", session.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit reading times: %w", err)
	}
	return nil
}

// ReadingTimesByStudent returns all stored sessions for one student ordered by start.
func (s *Store) ReadingTimesByStudent(ctx context.Context, studentID int64) ([]ReadingTime, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, student_id, activity_id, start_time, end_time, duration_seconds
         FROM reading_times WHERE student_id = ? ORDER BY start_time`,
		studentID,
	)
	if err != nil {
		return nil, fmt.Errorf("query reading times: %w", err)
	}
	defer rows.Close()

	var sessions []ReadingTime
	for rows.Next() {
		var (
			session  ReadingTime
			startRaw string
			endRaw   string
			seconds  int64
		)
		if err := rows.Scan(&session.ID, &session.StudentID, &session.ActivityID, &startRaw, &endRaw, &seconds); err != nil {
			return nil, err
		}
		if session.Start, err = parseTimeString(startRaw); err != nil {
			return nil, fmt.Errorf("parse start time %q: %w", startRaw, err)
		}
		if session.End, err = parseTimeString(endRaw); err != nil {
			return nil, fmt.Errorf("parse end time %q: %w", endRaw, err)
		}
		session.Duration = time.Duration(seconds) * time.Second
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

// CountReadingTimes reports the stored session total.
func (s *Store) CountReadingTimes(ctx context.Context) (int, error) {
	row := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reading_times`)
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("count reading times: %w", err)
	}
	return count, nil
}
