// Command ctkirep ingests reading tracker and progress test exports into a
// local SQLite database and renders progress reports for flight training
// course administrators.
package main
