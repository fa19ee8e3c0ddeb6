// Package store persists the student roster, reference catalogues, and the
// three report tables (reading times, content statuses, learner journeys) in
// SQLite.
//
// The Store manages the database connection, schema migrations, the aggregate
// preload queries the ingestion pipeline needs (per-student maxima), and the
// transactional bulk inserts that make an ingestion run all-or-nothing.
// Reporting queries for the CLI also live here.
//
// Timestamps are stored as RFC 3339 text and durations as integer seconds.
// Treat this package as the single source of truth for schema semantics; schema
// changes are added as new files under migrations/.
package store
