package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"ctkirep/internal/store"
)

var (
	jrUsernameCol  = columnIndex(journeyHeader, "Username")
	jrTimestampCol = columnIndex(journeyHeader, "Timestamp")
	jrAttemptCol   = columnIndex(journeyHeader, "Attempt")
	jrDurationCol  = columnIndex(journeyHeader, "Duration")
	// The journey export stores the activity name in its "Course" column.
	jrActivityCol = columnIndex(journeyHeader, "Course")
	jrTypeCol     = columnIndex(journeyHeader, "Type")
	jrActionCol   = columnIndex(journeyHeader, "Action")
	jrResponseCol = columnIndex(journeyHeader, "Response")
	jrScoreCol    = columnIndex(journeyHeader, "Score")
)

// isoDurationPattern matches the export's PT<H>H<M>M<S>S duration text.
var isoDurationPattern = regexp.MustCompile(`^PT(\d{1,2})H(\d{1,2})M(\d{1,2})S$`)

// Journey ingests a learner journey CSV export. The journey log is
// append-only: a row is accepted only when its timestamp is strictly newer
// than the latest event already stored for that student, so re-uploading a
// cumulative export never duplicates history. Rows with an empty Action are
// incomplete events and are skipped silently.
func (ing *Ingestor) Journey(ctx context.Context, path string) (Summary, error) {
	summary := Summary{Kind: KindJourney, File: path}

	unlock, err := ing.acquireLock(ctx)
	if err != nil {
		return summary, err
	}
	defer unlock()

	logger := ing.runLogger(KindJourney, path)

	file, err := os.Open(path)
	if err != nil {
		return summary, wrap(ErrIO, "open file", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return summary, wrap(ErrInvalidFormat, "read CSV header", err)
	}
	if err := validateHeader(header, journeyHeader, KindJourney); err != nil {
		return summary, err
	}

	resolver, err := newProgressResolver(ctx, ing.store)
	if err != nil {
		return summary, err
	}
	latest, err := ing.store.LatestJourneyTimestamps(ctx)
	if err != nil {
		return summary, err
	}

	var batch []store.ACEJourneyEvent
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return summary, atLine(line, wrap(ErrInvalidFormat, "read CSV record", err))
		}
		summary.Rows++

		event, ok, err := normalizeJourneyEvent(resolver, latest, record)
		if err != nil {
			return summary, atLine(line, err)
		}
		if !ok {
			summary.Skipped++
			continue
		}
		batch = append(batch, event)
	}

	if err := ing.store.InsertJourneyEvents(ctx, batch); err != nil {
		return summary, err
	}
	summary.Inserted = len(batch)

	if err := ing.removeSource(path, logger); err != nil {
		return summary, err
	}

	logger.Info("learner journey ingested",
		slog.Int("rows", summary.Rows),
		slog.Int("inserted", summary.Inserted),
		slog.Int("skipped", summary.Skipped))
	return summary, nil
}

// normalizeJourneyEvent converts one CSV record into a journey event. The
// second return value is false when the row is skipped: an empty Action marks
// an incomplete event, and a timestamp at or before the student's stored
// maximum marks history the log already has. Both checks run before the
// student lookup so stale rows never fail a file over a roster change.
func normalizeJourneyEvent(resolver *resolver, latest map[string]time.Time, record []string) (store.ACEJourneyEvent, bool, error) {
	if len(record[jrActionCol]) == 0 {
		return store.ACEJourneyEvent{}, false, nil
	}

	username := strings.TrimSpace(record[jrUsernameCol])

	tsRaw := strings.TrimSpace(record[jrTimestampCol])
	timestamp, err := time.Parse(time.RFC3339Nano, tsRaw)
	if err != nil {
		return store.ACEJourneyEvent{}, false, wrap(ErrInvalidTimestamp, "timestamp ["+tsRaw+"]", err)
	}
	if lastTS, ok := latest[username]; ok && !timestamp.After(lastTS) {
		return store.ACEJourneyEvent{}, false, nil
	}

	student, err := resolver.studentByPTUsername(username)
	if err != nil {
		return store.ACEJourneyEvent{}, false, err
	}

	attemptRaw := strings.TrimSpace(record[jrAttemptCol])
	attempt, err := strconv.Atoi(attemptRaw)
	if err != nil {
		return store.ACEJourneyEvent{}, false, wrap(ErrInvalidNumber, "attempt ["+attemptRaw+"]", err)
	}

	duration, err := parseISODuration(record[jrDurationCol])
	if err != nil {
		return store.ACEJourneyEvent{}, false, err
	}

	if _, err := resolver.activityType(strings.TrimSpace(record[jrTypeCol])); err != nil {
		return store.ACEJourneyEvent{}, false, err
	}
	activity, err := resolver.aceActivity(strings.TrimSpace(record[jrActivityCol]))
	if err != nil {
		return store.ACEJourneyEvent{}, false, err
	}
	action, err := resolver.status(strings.TrimSpace(record[jrActionCol]))
	if err != nil {
		return store.ACEJourneyEvent{}, false, err
	}

	score, err := parseOptionalScore(record[jrScoreCol])
	if err != nil {
		return store.ACEJourneyEvent{}, false, err
	}

	return store.ACEJourneyEvent{
		StudentID:  student.ID,
		Timestamp:  timestamp,
		Attempt:    attempt,
		Duration:   duration,
		ActivityID: activity.ID,
		ActionID:   action.ID,
		Response:   record[jrResponseCol],
		Score:      score,
	}, true, nil
}

// parseISODuration parses the export's PT<H>H<M>M<S>S duration text. An empty
// field means the duration was not recorded.
func parseISODuration(raw string) (*time.Duration, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	match := isoDurationPattern.FindStringSubmatch(strings.TrimSpace(raw))
	if match == nil {
		return nil, wrap(ErrInvalidTimestamp, "duration ["+raw+"]", nil)
	}
	hours, _ := strconv.Atoi(match[1])
	minutes, _ := strconv.Atoi(match[2])
	seconds, _ := strconv.Atoi(match[3])
	duration := time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute + time.Duration(seconds)*time.Second
	return &duration, nil
}
