package ingest

import (
	"fmt"
	"strings"
)

// contentStatusHeader is the canonical content status export layout. The
// export tool sometimes prefixes the first column with a UTF-8 byte order
// mark; stripBOM collapses that variant into this one before comparison.
var contentStatusHeader = []string{
	"Username", "First name", "Surname", "Groups", "Timestamp", "Date", "Time",
	"Activity ID", "Activity external reference", "Activity name",
	"Display type", "Status", "Score", "CPD points", "Learning hours",
}

// journeyHeader is the canonical learner journey export layout. The activity
// name lives in the column labeled "Course"; that quirk comes from the source
// system and is preserved here.
var journeyHeader = []string{
	"Username", "First name", "Surname", "Groups", "Timestamp", "Date", "Time",
	"Attempt", "Duration", "Statement ID", "Course ID", "Course",
	"Activity ID", "Activity name", "Type", "Action", "Response", "Mark", "Score",
}

const bomMarker = "\ufeff"

// stripBOM removes a leading byte-order-mark artifact from the first header
// field, returning a normalized copy.
func stripBOM(fields []string) []string {
	if len(fields) == 0 {
		return fields
	}
	normalized := make([]string, len(fields))
	copy(normalized, fields)
	normalized[0] = strings.TrimPrefix(normalized[0], bomMarker)
	return normalized
}

// validateHeader confirms the normalized header matches the expected layout
// for the report kind.
func validateHeader(fields, expected []string, kind ReportKind) error {
	normalized := stripBOM(fields)
	if len(normalized) != len(expected) {
		return fmt.Errorf("%w: file is not a %s report (%d columns, want %d)",
			ErrSchemaMismatch, kind, len(normalized), len(expected))
	}
	for i, field := range normalized {
		if field != expected[i] {
			return fmt.Errorf("%w: file is not a %s report (column %d is %q, want %q)",
				ErrSchemaMismatch, kind, i+1, field, expected[i])
		}
	}
	return nil
}

// columnIndex returns the position of a column in a canonical header. The
// headers are package constants, so a miss is a programming error.
func columnIndex(header []string, name string) int {
	for i, field := range header {
		if field == name {
			return i
		}
	}
	panic(fmt.Sprintf("ingest: column %q not in canonical header", name))
}
