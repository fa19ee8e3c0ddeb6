package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"ctkirep/internal/config"
	"ctkirep/internal/logging"
	"ctkirep/internal/store"
)

// Ingestor wires the store and configuration into the three ingestion
// orchestrators. Runs are serialized through a lock file in the data
// directory; the incremental filters assume no concurrent writer.
type Ingestor struct {
	cfg    *config.Config
	store  *store.Store
	logger *slog.Logger
}

// New constructs an Ingestor. A nil logger is replaced with a no-op logger.
func New(cfg *config.Config, st *store.Store, logger *slog.Logger) *Ingestor {
	return &Ingestor{
		cfg:    cfg,
		store:  st,
		logger: logging.WithComponent(logger, "ingest"),
	}
}

// runLogger tags log lines with the run identifier and source file.
func (ing *Ingestor) runLogger(kind ReportKind, path string) *slog.Logger {
	return ing.logger.With(
		slog.String(logging.FieldRunID, uuid.NewString()),
		slog.String("report", string(kind)),
		slog.String("file", filepath.Base(path)),
	)
}

// acquireLock takes the ingestion run lock, waiting up to the configured
// timeout for a concurrent run to finish.
func (ing *Ingestor) acquireLock(ctx context.Context) (func(), error) {
	lockPath := filepath.Join(ing.cfg.Paths.DataDir, "ingest.lock")
	lock := flock.New(lockPath)

	timeout := time.Duration(ing.cfg.Ingest.LockTimeout) * time.Second
	lockCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	locked, err := lock.TryLockContext(lockCtx, 250*time.Millisecond)
	if err != nil || !locked {
		if err == nil {
			err = fmt.Errorf("lock %s unavailable", lockPath)
		}
		return nil, wrap(ErrIO, "another ingestion run is in progress", err)
	}
	return func() {
		_ = lock.Unlock()
	}, nil
}

// removeSource deletes a successfully ingested upload unless the
// configuration asks to keep it.
func (ing *Ingestor) removeSource(path string, logger *slog.Logger) error {
	if ing.cfg.Ingest.KeepUploads {
		logger.Debug("keeping source file")
		return nil
	}
	if err := os.Remove(path); err != nil {
		return wrap(ErrIO, "remove source file", err)
	}
	return nil
}
