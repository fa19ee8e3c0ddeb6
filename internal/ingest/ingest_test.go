package ingest_test

import (
	"strings"
	"testing"

	"ctkirep/internal/config"
	"ctkirep/internal/ingest"
	"ctkirep/internal/logging"
	"ctkirep/internal/store"
	"ctkirep/internal/testsupport"
)

type harness struct {
	cfg     *config.Config
	store   *store.Store
	ingest  *ingest.Ingestor
	fixture testsupport.Fixture
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	fixture := testsupport.SeedFixture(t, st)
	return &harness{
		cfg:     cfg,
		store:   st,
		ingest:  ingest.New(cfg, st, logging.NewNop()),
		fixture: fixture,
	}
}

// statusRow builds one content status CSV line with the fixture's activity
// and plausible filler for the columns the pipeline does not read.
func statusRow(username, timestamp, status, score string) string {
	return strings.Join([]string{
		username, "Test", "Student", "Cohort A", timestamp, "01/03/2024", "10:15",
		"1342", "pt-agk-1", "AGK Progress Test 1",
		"Exam", status, score, "-", "-",
	}, ",")
}

// journeyRow builds one learner journey CSV line. The activity name sits in
// the Course column, mirroring the export layout.
func journeyRow(username, timestamp, attempt, duration, action, response, score string) string {
	return strings.Join([]string{
		username, "Test", "Student", "Cohort A", timestamp, "01/03/2024", "10:15",
		attempt, duration, "stmt-9001", "crs-42", "AGK Progress Test 1",
		"1342", "Progress check", "Exam", action, response, "-", score,
	}, ",")
}

func csvFile(header []string, rows ...string) string {
	lines := append([]string{strings.Join(header, ",")}, rows...)
	return strings.Join(lines, "\n") + "\n"
}

var contentStatusHeaderLine = []string{
	"Username", "First name", "Surname", "Groups", "Timestamp", "Date", "Time",
	"Activity ID", "Activity external reference", "Activity name",
	"Display type", "Status", "Score", "CPD points", "Learning hours",
}

var journeyHeaderLine = []string{
	"Username", "First name", "Surname", "Groups", "Timestamp", "Date", "Time",
	"Attempt", "Duration", "Statement ID", "Course ID", "Course",
	"Activity ID", "Activity name", "Type", "Action", "Response", "Mark", "Score",
}
