package ingest

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel markers for ingestion failure classification. Every error returned
// by an orchestrator wraps exactly one of these.
var (
	ErrInvalidFormat    = errors.New("invalid format")
	ErrSchemaMismatch   = errors.New("schema mismatch")
	ErrUnknownReference = errors.New("unknown reference")
	ErrInvalidTimestamp = errors.New("invalid timestamp")
	ErrInvalidNumber    = errors.New("invalid number")
	ErrIO               = errors.New("io failure")
)

// Kind returns the short classification name for a marked ingestion error, or
// "internal" when the error carries no marker.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrInvalidFormat):
		return "invalid_format"
	case errors.Is(err, ErrSchemaMismatch):
		return "schema_mismatch"
	case errors.Is(err, ErrUnknownReference):
		return "unknown_reference"
	case errors.Is(err, ErrInvalidTimestamp):
		return "invalid_timestamp"
	case errors.Is(err, ErrInvalidNumber):
		return "invalid_number"
	case errors.Is(err, ErrIO):
		return "io_failure"
	default:
		return "internal"
	}
}

// wrap tags an error chain with a marker while keeping the detail readable.
func wrap(marker error, detail string, err error) error {
	detail = strings.TrimSpace(detail)
	if err != nil {
		if detail != "" {
			return fmt.Errorf("%w: %s: %w", marker, detail, err)
		}
		return fmt.Errorf("%w: %w", marker, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// unknownReference builds the operator-facing message for a failed lookup,
// naming the field and the offending value.
func unknownReference(field, value string) error {
	return fmt.Errorf("%w: %s [%s] not valid", ErrUnknownReference, field, value)
}

// atLine prefixes an error with the 1-based source file line it occurred on.
// The marker stays visible to errors.Is through the wrapped chain.
func atLine(line int, err error) error {
	return fmt.Errorf("line %d: %w", line, err)
}
