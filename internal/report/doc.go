// Package report shapes store query results into renderable tables for the
// CLI and for CSV export. It holds no query logic of its own; the store owns
// the SQL, this package owns column layout and value formatting.
package report
