package ingest

import "fmt"

// ReportKind identifies which external export an ingestion run processed.
type ReportKind string

const (
	KindReadingTime   ReportKind = "reading time"
	KindContentStatus ReportKind = "content status"
	KindJourney       ReportKind = "learner journey"
)

// Summary is the structured outcome of a successful ingestion run. The
// boundary layer renders it; nothing in the pipeline formats display text.
type Summary struct {
	Kind     ReportKind
	File     string
	Rows     int
	Inserted int
	Updated  int
	Skipped  int
}

// String renders the operator-facing success sentence for the run.
func (s Summary) String() string {
	switch s.Kind {
	case KindContentStatus:
		return fmt.Sprintf("OK, %d rows created, %d rows updated, total rows in file %d", s.Inserted, s.Updated, s.Rows)
	case KindJourney:
		return fmt.Sprintf("OK, %d rows inserted, total rows in file %d", s.Inserted, s.Rows)
	default:
		return fmt.Sprintf("OK, %d new rows inserted, total rows in file %d", s.Inserted, s.Rows)
	}
}
