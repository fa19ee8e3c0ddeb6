package ingest_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"ctkirep/internal/ingest"
	"ctkirep/internal/testsupport"
)

func TestJourneyIngest(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	path := testsupport.WriteUpload(t, h.cfg.Paths.UploadDir, "journey.csv",
		csvFile(journeyHeaderLine,
			journeyRow("alice.pt", "2024-03-01T10:15:30.123Z", "1", "PT0H45M12S", "Failed", "52.0", "52"),
			journeyRow("alice.pt", "2024-03-08T09:30:00.000Z", "2", "PT1H2M3S", "Passed", "81.0", "81"),
		))

	summary, err := h.ingest.Journey(ctx, path)
	if err != nil {
		t.Fatalf("Journey: %v", err)
	}
	if summary.Rows != 2 || summary.Inserted != 2 || summary.Skipped != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if got := summary.String(); got != "OK, 2 rows inserted, total rows in file 2" {
		t.Fatalf("unexpected summary text %q", got)
	}

	events, err := h.store.JourneyEventsByStudent(ctx, h.fixture.Alice.ID)
	if err != nil {
		t.Fatalf("JourneyEventsByStudent: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	last := events[len(events)-1]
	if last.Attempt != 2 {
		t.Fatalf("expected attempt 2, got %d", last.Attempt)
	}
	if last.Duration == nil || *last.Duration != time.Hour+2*time.Minute+3*time.Second {
		t.Fatalf("unexpected duration %v", last.Duration)
	}
	if last.ActionID != h.fixture.StatusPassed.ID {
		t.Fatalf("expected Passed action, got action ID %d", last.ActionID)
	}
}

func TestJourneyCumulativeReupload(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	first := journeyRow("alice.pt", "2024-03-01T10:15:30.123Z", "1", "PT0H45M12S", "Failed", "52.0", "52")
	path := testsupport.WriteUpload(t, h.cfg.Paths.UploadDir, "journey-1.csv", csvFile(journeyHeaderLine, first))
	if _, err := h.ingest.Journey(ctx, path); err != nil {
		t.Fatalf("first ingest: %v", err)
	}

	second := journeyRow("alice.pt", "2024-03-08T09:30:00.000Z", "2", "PT1H2M3S", "Passed", "81.0", "81")
	path = testsupport.WriteUpload(t, h.cfg.Paths.UploadDir, "journey-2.csv", csvFile(journeyHeaderLine, first, second))

	summary, err := h.ingest.Journey(ctx, path)
	if err != nil {
		t.Fatalf("second ingest: %v", err)
	}
	if summary.Inserted != 1 || summary.Skipped != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	count, err := h.store.CountJourneyEvents(ctx)
	if err != nil {
		t.Fatalf("CountJourneyEvents: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 stored events, got %d", count)
	}
}

func TestJourneyEqualTimestampIsSkipped(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	row := journeyRow("alice.pt", "2024-03-01T10:15:30.123Z", "1", "PT0H45M12S", "Failed", "52.0", "52")
	path := testsupport.WriteUpload(t, h.cfg.Paths.UploadDir, "journey-1.csv", csvFile(journeyHeaderLine, row))
	if _, err := h.ingest.Journey(ctx, path); err != nil {
		t.Fatalf("first ingest: %v", err)
	}

	path = testsupport.WriteUpload(t, h.cfg.Paths.UploadDir, "journey-2.csv", csvFile(journeyHeaderLine, row))
	summary, err := h.ingest.Journey(ctx, path)
	if err != nil {
		t.Fatalf("second ingest: %v", err)
	}
	if summary.Inserted != 0 || summary.Skipped != 1 {
		t.Fatalf("a timestamp at the stored maximum must be skipped: %+v", summary)
	}
}

func TestJourneyFractionalTimestampReingestInsertsNothing(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	// The second row is half a second after the first. Re-uploading the same
	// file must skip both against the stored per-student maximum.
	path := testsupport.WriteUpload(t, h.cfg.Paths.UploadDir, "journey-1.csv",
		csvFile(journeyHeaderLine,
			journeyRow("alice.pt", "2024-03-01T10:00:00Z", "1", "PT0H45M12S", "Failed", "52.0", "52"),
			journeyRow("alice.pt", "2024-03-01T10:00:00.5Z", "2", "PT0H10M00S", "Passed", "81.0", "81"),
		))
	if _, err := h.ingest.Journey(ctx, path); err != nil {
		t.Fatalf("first ingest: %v", err)
	}

	path = testsupport.WriteUpload(t, h.cfg.Paths.UploadDir, "journey-2.csv",
		csvFile(journeyHeaderLine,
			journeyRow("alice.pt", "2024-03-01T10:00:00Z", "1", "PT0H45M12S", "Failed", "52.0", "52"),
			journeyRow("alice.pt", "2024-03-01T10:00:00.5Z", "2", "PT0H10M00S", "Passed", "81.0", "81"),
		))
	summary, err := h.ingest.Journey(ctx, path)
	if err != nil {
		t.Fatalf("second ingest: %v", err)
	}
	if summary.Inserted != 0 || summary.Skipped != 2 {
		t.Fatalf("re-ingest of the same file must insert nothing: %+v", summary)
	}

	count, err := h.store.CountJourneyEvents(ctx)
	if err != nil {
		t.Fatalf("CountJourneyEvents: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 stored events, got %d", count)
	}
}

func TestJourneyEmptyActionSkipped(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	path := testsupport.WriteUpload(t, h.cfg.Paths.UploadDir, "journey.csv",
		csvFile(journeyHeaderLine,
			journeyRow("alice.pt", "2024-03-01T10:15:30.123Z", "1", "PT0H45M12S", "", "", "-"),
			journeyRow("alice.pt", "2024-03-01T11:00:00.000Z", "1", "PT0H30M00S", "Passed", "80.0", "80"),
		))

	summary, err := h.ingest.Journey(ctx, path)
	if err != nil {
		t.Fatalf("Journey: %v", err)
	}
	if summary.Inserted != 1 || summary.Skipped != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

// A stale row is dropped on the timestamp check alone, before any reference
// resolution, so even a stale row with bad references must not fail the file.
func TestJourneyStaleRowSkipsBeforeStudentLookup(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	row := journeyRow("alice.pt", "2024-03-08T09:30:00.000Z", "1", "PT0H45M12S", "Passed", "81.0", "81")
	path := testsupport.WriteUpload(t, h.cfg.Paths.UploadDir, "journey-1.csv", csvFile(journeyHeaderLine, row))
	if _, err := h.ingest.Journey(ctx, path); err != nil {
		t.Fatalf("first ingest: %v", err)
	}

	stale := journeyRow("alice.pt", "2024-03-01T10:00:00.000Z", "1", "PT0H10M00S", "NoSuchStatus", "", "-")
	path = testsupport.WriteUpload(t, h.cfg.Paths.UploadDir, "journey-2.csv", csvFile(journeyHeaderLine, stale))

	summary, err := h.ingest.Journey(ctx, path)
	if err != nil {
		t.Fatalf("stale row must not fail the run: %v", err)
	}
	if summary.Inserted != 0 || summary.Skipped != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestJourneySchemaMismatch(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	header := append([]string{}, journeyHeaderLine...)
	header[7] = "Try"
	path := testsupport.WriteUpload(t, h.cfg.Paths.UploadDir, "journey.csv",
		csvFile(header, journeyRow("alice.pt", "2024-03-01T10:15:30.123Z", "1", "PT0H45M12S", "Passed", "81.0", "81")))

	_, err := h.ingest.Journey(ctx, path)
	if !errors.Is(err, ingest.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}

	count, err := h.store.CountJourneyEvents(ctx)
	if err != nil {
		t.Fatalf("CountJourneyEvents: %v", err)
	}
	if count != 0 {
		t.Fatalf("rejected file must commit nothing, found %d rows", count)
	}
}

func TestJourneyBadAttempt(t *testing.T) {
	h := newHarness(t)

	path := testsupport.WriteUpload(t, h.cfg.Paths.UploadDir, "journey.csv",
		csvFile(journeyHeaderLine, journeyRow("alice.pt", "2024-03-01T10:15:30.123Z", "first", "PT0H45M12S", "Passed", "81.0", "81")))

	_, err := h.ingest.Journey(context.Background(), path)
	if !errors.Is(err, ingest.ErrInvalidNumber) {
		t.Fatalf("expected ErrInvalidNumber, got %v", err)
	}
}

func TestJourneyMalformedDuration(t *testing.T) {
	h := newHarness(t)

	path := testsupport.WriteUpload(t, h.cfg.Paths.UploadDir, "journey.csv",
		csvFile(journeyHeaderLine, journeyRow("alice.pt", "2024-03-01T10:15:30.123Z", "1", "45 minutes", "Passed", "81.0", "81")))

	_, err := h.ingest.Journey(context.Background(), path)
	if !errors.Is(err, ingest.ErrInvalidTimestamp) {
		t.Fatalf("expected ErrInvalidTimestamp, got %v", err)
	}
}
