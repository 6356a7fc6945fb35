// Package history records refresh cycles in a local SQLite database.
//
// One row is written per cycle (success or failure) and, for successful
// cycles, one sample row per published server. Rows older than the
// retention window are removed by a background loop.
//
// The database is opened with WAL journaling and a busy timeout so the HTTP
// handlers can read while a cycle writes.
package history
