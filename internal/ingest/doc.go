// Package ingest implements the reconciliation pipeline for the three external
// report exports: the reading time XML tracking export and the two progress
// test CSV exports (content status and learner journey).
//
// Every run follows the same linear shape: validate the file's schema, preload
// reference lookups and incremental state from the store, normalize and filter
// each record, then commit the surviving batch in one transactional write.
// Any error aborts the whole file; partial imports are deliberately
// impossible. Runs are serialized through a file lock so the incremental
// check-then-insert cannot race with a concurrent upload.
//
// Errors carry one of the package's sentinel markers (schema mismatch, unknown
// reference, invalid timestamp, and so on) so the boundary layer can classify
// them; the messages themselves name the offending value for the operator.
package ingest
