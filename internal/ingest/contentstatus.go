package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"ctkirep/internal/store"
)

// scoreAbsent is the sentinel the export writes for an intentionally empty
// timestamp or score field.
const scoreAbsent = "-"

var (
	csUsernameCol  = columnIndex(contentStatusHeader, "Username")
	csTimestampCol = columnIndex(contentStatusHeader, "Timestamp")
	csTypeCol      = columnIndex(contentStatusHeader, "Display type")
	csActivityCol  = columnIndex(contentStatusHeader, "Activity name")
	csStatusCol    = columnIndex(contentStatusHeader, "Status")
	csScoreCol     = columnIndex(contentStatusHeader, "Score")
)

// ContentStatus ingests a content status CSV export. Every row upserts the
// current status for its (student, activity) pair; there is no incremental
// filter because the table holds current state, not history. All rows are
// normalized before the first write, so a malformed row commits nothing.
func (ing *Ingestor) ContentStatus(ctx context.Context, path string) (Summary, error) {
	summary := Summary{Kind: KindContentStatus, File: path}

	unlock, err := ing.acquireLock(ctx)
	if err != nil {
		return summary, err
	}
	defer unlock()

	logger := ing.runLogger(KindContentStatus, path)

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
	if err := validateHeader(header, contentStatusHeader, KindContentStatus); err != nil {
		return summary, err
	}

	resolver, err := newProgressResolver(ctx, ing.store)
	if err != nil {
		return summary, err
	}

	var batch []store.ACEContentStatus
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

		status, err := normalizeContentStatus(resolver, record)
		if err != nil {
			return summary, atLine(line, err)
		}
		batch = append(batch, status)
	}

	for _, status := range batch {
		created, err := ing.store.UpsertContentStatus(ctx, status)
		if err != nil {
			return summary, err
		}
		if created {
			summary.Inserted++
		} else {
			summary.Updated++
		}
	}

	if err := ing.removeSource(path, logger); err != nil {
		return summary, err
	}

	logger.Info("content status ingested",
		slog.Int("rows", summary.Rows),
		slog.Int("created", summary.Inserted),
		slog.Int("updated", summary.Updated))
	return summary, nil
}

func normalizeContentStatus(resolver *resolver, record []string) (store.ACEContentStatus, error) {
	student, err := resolver.studentByPTUsername(strings.TrimSpace(record[csUsernameCol]))
	if err != nil {
		return store.ACEContentStatus{}, err
	}

	timestamp, err := parseOptionalTimestamp(record[csTimestampCol])
	if err != nil {
		return store.ACEContentStatus{}, err
	}

	// The display type is not persisted on the status row, but an unknown
	// type still fails the file: it means the catalogue is stale.
	if _, err := resolver.activityType(strings.TrimSpace(record[csTypeCol])); err != nil {
		return store.ACEContentStatus{}, err
	}
	activity, err := resolver.aceActivity(strings.TrimSpace(record[csActivityCol]))
	if err != nil {
		return store.ACEContentStatus{}, err
	}
	status, err := resolver.status(strings.TrimSpace(record[csStatusCol]))
	if err != nil {
		return store.ACEContentStatus{}, err
	}

	score, err := parseOptionalScore(record[csScoreCol])
	if err != nil {
		return store.ACEContentStatus{}, err
	}

	return store.ACEContentStatus{
		StudentID:  student.ID,
		ActivityID: activity.ID,
		StatusID:   status.ID,
		Timestamp:  timestamp,
		Score:      score,
	}, nil
}

// parseOptionalTimestamp handles the export's ISO-8601 timestamps with
// fractional seconds and a Z suffix. The sentinel "-" means absent.
func parseOptionalTimestamp(raw string) (*time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == scoreAbsent {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339Nano, trimmed)
	if err != nil {
		return nil, wrap(ErrInvalidTimestamp, "timestamp ["+trimmed+"]", err)
	}
	return &parsed, nil
}

// parseOptionalScore handles the decimal score column. The sentinel "-"
// means absent.
func parseOptionalScore(raw string) (*float64, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == scoreAbsent {
		return nil, nil
	}
	value, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return nil, wrap(ErrInvalidNumber, "score ["+trimmed+"]", err)
	}
	return &value, nil
}
