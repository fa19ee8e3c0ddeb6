package ingest

import (
	"context"
	"encoding/xml"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"ctkirep/internal/store"
)

// readingTimeLayout is the timestamp format the reading tracker exports.
const readingTimeLayout = "02/01/2006 15:04:05"

type trackingExport struct {
	Tracking *trackingNode `xml:"tracking"`
}

type trackingNode struct {
	Results []trackingResult `xml:"result"`
}

type trackingResult struct {
	Identifier   string `xml:"identifier"`
	Activity     string `xml:"activity"`
	RevisionTime string `xml:"revisiontime"`
	StartTime    string `xml:"starttime"`
	EndTime      string `xml:"endtime"`
}

// ReadingTime ingests a reading tracker XML export. Sessions whose end does
// not exceed the student's latest stored end are skipped, so re-uploading a
// cumulative export is idempotent. New session IDs continue from the stored
// maximum. The source file is deleted after a successful commit.
func (ing *Ingestor) ReadingTime(ctx context.Context, path string) (Summary, error) {
	summary := Summary{Kind: KindReadingTime, File: path}

	unlock, err := ing.acquireLock(ctx)
	if err != nil {
		return summary, err
	}
	defer unlock()

	logger := ing.runLogger(KindReadingTime, path)

	data, err := os.ReadFile(path)
	if err != nil {
		return summary, wrap(ErrIO, "open file", err)
	}

	var export trackingExport
	if err := xml.Unmarshal(data, &export); err != nil {
		return summary, wrap(ErrInvalidFormat, "invalid XML file "+path, err)
	}
	if export.Tracking == nil {
		return summary, wrap(ErrInvalidFormat, "invalid XML file "+path+": no tracking element", nil)
	}

	resolver, err := newReadingResolver(ctx, ing.store)
	if err != nil {
		return summary, err
	}
	latestEnds, err := ing.store.LatestReadingEnds(ctx)
	if err != nil {
		return summary, err
	}
	nextID, err := ing.store.MaxReadingTimeID(ctx)
	if err != nil {
		return summary, err
	}

	var batch []store.ReadingTime
	for _, result := range export.Tracking.Results {
		summary.Rows++

		student, err := resolver.studentByReadingUsername(strings.TrimSpace(result.Identifier))
		if err != nil {
			return summary, err
		}
		activity, err := resolver.readingActivity(strings.TrimSpace(result.Activity))
		if err != nil {
			return summary, err
		}

		session, err := normalizeSession(result)
		if err != nil {
			return summary, err
		}

		if latest, ok := latestEnds[student.ID]; ok && !session.end.After(latest) {
			summary.Skipped++
			continue
		}

		nextID++
		batch = append(batch, store.ReadingTime{
			ID:         nextID,
			StudentID:  student.ID,
			ActivityID: activity.ID,
			Start:      session.start,
			End:        session.end,
			Duration:   session.end.Sub(session.start),
		})
	}

	if err := ing.store.InsertReadingTimes(ctx, batch); err != nil {
		return summary, err
	}
	summary.Inserted = len(batch)

	if err := ing.removeSource(path, logger); err != nil {
		return summary, err
	}

	logger.Info("reading time ingested",
		slog.Int("rows", summary.Rows),
		slog.Int("inserted", summary.Inserted),
		slog.Int("skipped", summary.Skipped))
	return summary, nil
}

type sessionTimes struct {
	start time.Time
	end   time.Time
}

// normalizeSession parses the session boundaries. A missing start time fails
// the file: the upstream export writes one for every real session, so its
// absence means a truncated or corrupt record, not an empty value. A missing
// end time means the session never closed; it collapses to a zero-duration
// session at the start time.
func normalizeSession(result trackingResult) (sessionTimes, error) {
	startRaw := strings.TrimSpace(result.StartTime)
	if startRaw == "" {
		return sessionTimes{}, fmt.Errorf("%w: result for [%s] has no starttime", ErrInvalidTimestamp, result.Identifier)
	}
	start, err := time.Parse(readingTimeLayout, startRaw)
	if err != nil {
		return sessionTimes{}, wrap(ErrInvalidTimestamp, "starttime ["+startRaw+"]", err)
	}

	endRaw := strings.TrimSpace(result.EndTime)
	if endRaw == "" {
		return sessionTimes{start: start, end: start}, nil
	}
	end, err := time.Parse(readingTimeLayout, endRaw)
	if err != nil {
		return sessionTimes{}, wrap(ErrInvalidTimestamp, "endtime ["+endRaw+"]", err)
	}
	if end.Before(start) {
		return sessionTimes{}, fmt.Errorf("%w: endtime [%s] precedes starttime [%s]", ErrInvalidTimestamp, endRaw, startRaw)
	}
	return sessionTimes{start: start, end: end}, nil
}
