// Package roster imports student enrollment CSV files. The import follows the
// same policy as the report ingests: exact header validation, full
// normalization before any write, one transaction for the whole file.
package roster

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"ctkirep/internal/ingest"
	"ctkirep/internal/logging"
	"ctkirep/internal/store"
)

// rosterHeader is the canonical roster CSV layout.
var rosterHeader = []string{
	"Surname", "Name", "Email", "Reading username", "PT username",
	"Course type", "Start date", "Active",
}

const startDateLayout = "2006-01-02"

// Importer loads roster CSV files into the store.
type Importer struct {
	store  *store.Store
	logger *slog.Logger
	titler cases.Caser
}

// New constructs an Importer. A nil logger is replaced with a no-op logger.
func New(st *store.Store, logger *slog.Logger) *Importer {
	return &Importer{
		store:  st,
		logger: logging.WithComponent(logger, "roster"),
		titler: cases.Title(language.English, cases.NoLower),
	}
}

// Summary reports the outcome of a roster import.
type Summary struct {
	File  string
	Rows  int
	Added int
}

func (s Summary) String() string {
	return fmt.Sprintf("OK, %d students added, total rows in file %d", s.Added, s.Rows)
}

// Import reads a roster CSV and inserts every row in one transaction. Course
// types are resolved by name; an unknown name fails the file before anything
// is written. Student names are title-cased, so an all-caps export reads
// normally in reports.
func (imp *Importer) Import(ctx context.Context, path string) (Summary, error) {
	summary := Summary{File: path}

	file, err := os.Open(path)
	if err != nil {
		return summary, fmt.Errorf("open roster file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return summary, fmt.Errorf("%w: read CSV header: %w", ingest.ErrInvalidFormat, err)
	}
	if err := validateHeader(header); err != nil {
		return summary, err
	}

	courseTypes, err := imp.store.CourseTypes(ctx)
	if err != nil {
		return summary, err
	}
	typesByName := make(map[string]store.CourseType, len(courseTypes))
	for _, ct := range courseTypes {
		typesByName[ct.Name] = ct
	}

	var batch []store.Student
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return summary, fmt.Errorf("line %d: %w: read CSV record: %w", line, ingest.ErrInvalidFormat, err)
		}
		summary.Rows++

		student, err := imp.normalizeStudent(typesByName, record)
		if err != nil {
			return summary, fmt.Errorf("line %d: %w", line, err)
		}
		batch = append(batch, student)
	}

	if err := imp.store.InsertStudents(ctx, batch); err != nil {
		return summary, err
	}
	summary.Added = len(batch)

	imp.logger.Info("roster imported",
		slog.String("file", path),
		slog.Int("added", summary.Added))
	return summary, nil
}

func (imp *Importer) normalizeStudent(typesByName map[string]store.CourseType, record []string) (store.Student, error) {
	courseTypeName := strings.TrimSpace(record[5])
	courseType, ok := typesByName[courseTypeName]
	if !ok {
		return store.Student{}, fmt.Errorf("%w: course type [%s] not valid", ingest.ErrUnknownReference, courseTypeName)
	}

	startRaw := strings.TrimSpace(record[6])
	startDate, err := time.Parse(startDateLayout, startRaw)
	if err != nil {
		return store.Student{}, fmt.Errorf("%w: start date [%s]: %w", ingest.ErrInvalidTimestamp, startRaw, err)
	}

	activeRaw := strings.TrimSpace(record[7])
	active, err := strconv.ParseBool(activeRaw)
	if err != nil {
		return store.Student{}, fmt.Errorf("%w: active [%s]: %w", ingest.ErrInvalidNumber, activeRaw, err)
	}

	return store.Student{
		Surname:         imp.titler.String(strings.ToLower(strings.TrimSpace(record[0]))),
		Name:            imp.titler.String(strings.ToLower(strings.TrimSpace(record[1]))),
		Email:           strings.TrimSpace(record[2]),
		ReadingUsername: strings.TrimSpace(record[3]),
		PTUsername:      strings.TrimSpace(record[4]),
		CourseTypeID:    courseType.ID,
		StartDate:       startDate,
		Active:          active,
	}, nil
}

func validateHeader(fields []string) error {
	if len(fields) != len(rosterHeader) {
		return fmt.Errorf("%w: file is not a roster (%d columns, want %d)",
			ingest.ErrSchemaMismatch, len(fields), len(rosterHeader))
	}
	for i, field := range fields {
		if strings.TrimPrefix(field, "\ufeff") != rosterHeader[i] {
			return fmt.Errorf("%w: file is not a roster (column %d is %q, want %q)",
				ingest.ErrSchemaMismatch, i+1, field, rosterHeader[i])
		}
	}
	return nil
}
