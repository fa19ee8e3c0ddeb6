package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const studentColumns = "id, name, surname, email, reading_username, pt_username, course_type_id, start_date, active"

// startDateLayout is the storage format for enrollment dates.
const startDateLayout = "2006-01-02"

// CreateStudent inserts a roster entry and returns it with its assigned ID.
func (s *Store) CreateStudent(ctx context.Context, student Student) (Student, error) {
	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO students (name, surname, email, reading_username, pt_username, course_type_id, start_date, active)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		student.Name,
		student.Surname,
		student.Email,
		student.ReadingUsername,
		student.PTUsername,
		student.CourseTypeID,
		student.StartDate.Format(startDateLayout),
		boolToInt(student.Active),
	)
	if err != nil {
		return Student{}, fmt.Errorf("insert student: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Student{}, fmt.Errorf("last insert id: %w", err)
	}
	student.ID = id
	return student, nil
}

// InsertStudents adds a batch of roster entries in a single transaction, so a
// failed roster import leaves the table untouched.
func (s *Store) InsertStudents(ctx context.Context, students []Student) error {
	if len(students) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert students: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(
		ctx,
		`INSERT INTO students (name, surname, email, reading_username, pt_username, course_type_id, start_date, active)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("prepare insert students: %w", err)
	}
	defer stmt.Close()

	for _, student := range students {
		if _, err := stmt.ExecContext(
			ctx,
			student.Name,
			student.Surname,
			student.Email,
			student.ReadingUsername,
			student.PTUsername,
			student.CourseTypeID,
			student.StartDate.Format(startDateLayout),
			boolToInt(student.Active),
		); err != nil {
			return fmt.Errorf("insert student %s: %w", student.ReadingUsername, err)
		}
	}
	return tx.Commit()
}

// Students returns the full roster ordered by surname.
func (s *Store) Students(ctx context.Context) ([]Student, error) {
	return s.queryStudents(ctx, `SELECT `+studentColumns+` FROM students ORDER BY surname, name`)
}

// StudentsByCourse returns the roster for one course type ordered by surname.
func (s *Store) StudentsByCourse(ctx context.Context, courseTypeID int64) ([]Student, error) {
	return s.queryStudents(
		ctx,
		`SELECT `+studentColumns+` FROM students WHERE course_type_id = ? ORDER BY surname, name`,
		courseTypeID,
	)
}

func (s *Store) queryStudents(ctx context.Context, query string, args ...any) ([]Student, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query students: %w", err)
	}
	defer rows.Close()

	var students []Student
	for rows.Next() {
		student, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		students = append(students, student)
	}
	return students, rows.Err()
}

// CourseTypeByName resolves a course type by its name.
func (s *Store) CourseTypeByName(ctx context.Context, name string) (*CourseType, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT id, name, sort_order, remote FROM course_types WHERE name = ?`,
		name,
	)
	var ct CourseType
	var remote int
	if err := row.Scan(&ct.ID, &ct.Name, &ct.SortOrder, &remote); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("course type by name: %w", err)
	}
	ct.Remote = remote != 0
	return &ct, nil
}

// CourseTypes returns all course types in display order.
func (s *Store) CourseTypes(ctx context.Context) ([]CourseType, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, sort_order, remote FROM course_types ORDER BY sort_order`)
	if err != nil {
		return nil, fmt.Errorf("query course types: %w", err)
	}
	defer rows.Close()

	var types []CourseType
	for rows.Next() {
		var ct CourseType
		var remote int
		if err := rows.Scan(&ct.ID, &ct.Name, &ct.SortOrder, &remote); err != nil {
			return nil, err
		}
		ct.Remote = remote != 0
		types = append(types, ct)
	}
	return types, rows.Err()
}

func scanStudent(scanner interface{ Scan(dest ...any) error }) (Student, error) {
	var (
		student   Student
		startRaw  string
		activeInt int
	)
	if err := scanner.Scan(
		&student.ID,
		&student.Name,
		&student.Surname,
		&student.Email,
		&student.ReadingUsername,
		&student.PTUsername,
		&student.CourseTypeID,
		&startRaw,
		&activeInt,
	); err != nil {
		return Student{}, err
	}
	if parsed, err := time.Parse(startDateLayout, startRaw); err == nil {
		student.StartDate = parsed
	}
	student.Active = activeInt != 0
	return student, nil
}
