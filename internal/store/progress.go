package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// UpsertContentStatus writes the current status for a (student, activity) pair,
// overwriting any existing row. It reports whether a new row was created.
func (s *Store) UpsertContentStatus(ctx context.Context, cs ACEContentStatus) (bool, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT id FROM ace_content_statuses WHERE student_id = ? AND activity_id = ?`,
		cs.StudentID, cs.ActivityID,
	)
	var existingID int64
	err := row.Scan(&existingID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := s.db.ExecContext(
			ctx,
			`INSERT INTO ace_content_statuses (student_id, activity_id, status_id, timestamp, score)
             VALUES (?, ?, ?, ?, ?)`,
			cs.StudentID,
			cs.ActivityID,
			cs.StatusID,
			nullableTimeValue(cs.Timestamp),
			nullableFloat(cs.Score),
		); err != nil {
			return false, fmt.Errorf("insert content status: %w", err)
		}
		return true, nil
	case err != nil:
		return false, fmt.Errorf("find content status: %w", err)
	default:
		if _, err := s.db.ExecContext(
			ctx,
			`UPDATE ace_content_statuses SET status_id = ?, timestamp = ?, score = ? WHERE id = ?`,
			cs.StatusID,
			nullableTimeValue(cs.Timestamp),
			nullableFloat(cs.Score),
			existingID,
		); err != nil {
			return false, fmt.Errorf("update content status: %w", err)
		}
		return false, nil
	}
}

// ContentStatus fetches the current status row for a (student, activity) pair.
func (s *Store) ContentStatus(ctx context.Context, studentID, activityID int64) (*ACEContentStatus, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT id, student_id, activity_id, status_id, timestamp, score
         FROM ace_content_statuses WHERE student_id = ? AND activity_id = ?`,
		studentID, activityID,
	)
	var (
		cs    ACEContentStatus
		ts    sql.NullString
		score sql.NullFloat64
	)
	if err := row.Scan(&cs.ID, &cs.StudentID, &cs.ActivityID, &cs.StatusID, &ts, &score); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get content status: %w", err)
	}
	if ts.Valid {
		parsed, err := parseTimeString(ts.String)
		if err != nil {
			return nil, fmt.Errorf("parse status timestamp %q: %w", ts.String, err)
		}
		cs.Timestamp = &parsed
	}
	if score.Valid {
		value := score.Float64
		cs.Score = &value
	}
	return &cs, nil
}

// CountContentStatuses reports the stored status row total.
func (s *Store) CountContentStatuses(ctx context.Context) (int, error) {
	row := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM ace_content_statuses`)
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("count content statuses: %w", err)
	}
	return count, nil
}

// LatestJourneyTimestamps returns, per pt_username, the latest journey event
// timestamp already stored. One aggregate query per ingestion run.
func (s *Store) LatestJourneyTimestamps(ctx context.Context) (map[string]time.Time, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT st.pt_username, MAX(j.timestamp)
         FROM ace_learner_journeys j
         JOIN students st ON st.id = j.student_id
         GROUP BY st.pt_username`,
	)
	if err != nil {
		return nil, fmt.Errorf("latest journey timestamps: %w", err)
	}
	defer rows.Close()

	latest := make(map[string]time.Time)
	for rows.Next() {
		var username string
		var tsRaw string
		if err := rows.Scan(&username, &tsRaw); err != nil {
			return nil, err
		}
		ts, err := parseTimeString(tsRaw)
		if err != nil {
			return nil, fmt.Errorf("parse stored journey timestamp %q: %w", tsRaw, err)
		}
		latest[username] = ts
	}
	return latest, rows.Err()
}

// InsertJourneyEvents writes the batch in a single transaction so a failure
// mid-insert leaves no partial rows.
func (s *Store) InsertJourneyEvents(ctx context.Context, events []ACEJourneyEvent) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin journey tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(
		ctx,
		`INSERT INTO ace_learner_journeys (student_id, timestamp, attempt, duration_seconds, activity_id, action_id, response, score)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("prepare journey insert: %w", err)
	}
	defer stmt.Close()

	for _, event := range events {
		if _, err := stmt.ExecContext(
			ctx,
			event.StudentID,
			formatTime(event.Timestamp),
			event.Attempt,
			nullableSeconds(event.Duration),
			event.ActivityID,
			event.ActionID,
			event.Response,
			nullableFloat(event.Score),
		); err != nil {
			return fmt.Errorf("insert journey event: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit journey events: %w", err)
	}
	return nil
}

// JourneyEventsByStudent returns all stored journey events for one student in
// timestamp order.
func (s *Store) JourneyEventsByStudent(ctx context.Context, studentID int64) ([]ACEJourneyEvent, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, student_id, timestamp, attempt, duration_seconds, activity_id, action_id, response, score
         FROM ace_learner_journeys WHERE student_id = ? ORDER BY timestamp`,
		studentID,
	)
	if err != nil {
		return nil, fmt.Errorf("query journey events: %w", err)
	}
	defer rows.Close()

	var events []ACEJourneyEvent
	for rows.Next() {
		var (
			event   ACEJourneyEvent
			tsRaw   string
			seconds sql.NullInt64
			score   sql.NullFloat64
		)
		if err := rows.Scan(
			&event.ID,
			&event.StudentID,
			&tsRaw,
			&event.Attempt,
			&seconds,
			&event.ActivityID,
			&event.ActionID,
			&event.Response,
			&score,
		); err != nil {
			return nil, err
		}
		if event.Timestamp, err = parseTimeString(tsRaw); err != nil {
			return nil, fmt.Errorf("parse journey timestamp %q: %w", tsRaw, err)
		}
		if seconds.Valid {
			duration := time.Duration(seconds.Int64) * time.Second
			event.Duration = &duration
		}
		if score.Valid {
			value := score.Float64
			event.Score = &value
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

// CountJourneyEvents reports the stored journey event total.
func (s *Store) CountJourneyEvents(ctx context.Context) (int, error) {
	row := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM ace_learner_journeys`)
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("count journey events: %w", err)
	}
	return count, nil
}
