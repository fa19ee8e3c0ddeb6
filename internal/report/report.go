package report

import (
	"fmt"
	"time"

	"ctkirep/internal/store"
)

// Alignment selects how a column is padded when rendered as a terminal table.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignRight
)

// Table is a fully shaped report ready for rendering. The CLI renders it as a
// terminal table; WriteCSV renders the same data as CSV.
type Table struct {
	Headers []string
	Rows    [][]string
	Aligns  []Alignment
}

const timestampLayout = "2006-01-02 15:04:05"

// ReadingTable shapes the reading time report. The difference column is
// signed: a leading minus means the student is behind the requirement.
func ReadingTable(rows []store.ReadingReportRow) Table {
	t := Table{
		Headers: []string{"Student", "Subject", "Activity", "Required", "Total", "Difference"},
		Aligns: []Alignment{
			AlignLeft, AlignLeft, AlignLeft, AlignRight, AlignRight, AlignRight,
		},
	}
	for _, row := range rows {
		t.Rows = append(t.Rows, []string{
			row.Surname + " " + row.Name,
			row.SubjectCode + " " + row.SubjectName,
			row.Activity,
			FormatDuration(row.Required),
			FormatDuration(row.Total),
			FormatSignedDuration(row.Difference),
		})
	}
	return t
}

// ProgressTable shapes the progress test report.
func ProgressTable(rows []store.ProgressReportRow) Table {
	t := Table{
		Headers: []string{"Student", "Subject", "Activity", "Status", "Timestamp", "Score", "Attempts"},
		Aligns: []Alignment{
			AlignLeft, AlignLeft, AlignLeft, AlignLeft, AlignLeft, AlignRight, AlignRight,
		},
	}
	for _, row := range rows {
		t.Rows = append(t.Rows, []string{
			row.Surname + " " + row.Name,
			row.SubjectCode + " " + row.SubjectName,
			row.Activity,
			row.Status,
			formatTimestamp(row.Timestamp),
			formatScore(row.Score),
			fmt.Sprintf("%d", row.MaxAttempt),
		})
	}
	return t
}

// FormatDuration renders a duration as HH:MM:SS with the hour field free to
// exceed two digits.
func FormatDuration(d time.Duration) string {
	total := int64(d / time.Second)
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}

// FormatSignedDuration renders a duration difference with an explicit sign,
// so a shortfall reads as -HH:MM:SS and a surplus as +HH:MM:SS.
func FormatSignedDuration(d time.Duration) string {
	sign := "+"
	if d < 0 {
		sign = "-"
		d = -d
	}
	return sign + FormatDuration(d)
}

func formatTimestamp(ts *time.Time) string {
	if ts == nil {
		return ""
	}
	return ts.Format(timestampLayout)
}

func formatScore(score *float64) string {
	if score == nil {
		return ""
	}
	return fmt.Sprintf("%.1f", *score)
}
