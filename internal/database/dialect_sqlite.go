package database

import "fmt"

// SQLiteDialect implements the Dialect interface for SQLite databases.
// It also satisfies query.QueryDialect through structural typing.
type SQLiteDialect struct{}

func (d *SQLiteDialect) DriverName() string              { return "sqlite" }
func (d *SQLiteDialect) DSN(pathOrConnStr string) string { return pathOrConnStr }
func (d *SQLiteDialect) Placeholder(index int) string    { return "?" }
func (d *SQLiteDialect) QuoteColumn(name string) string  { return name }
func (d *SQLiteDialect) SanitizeText(s string) string    { return s }

func (d *SQLiteDialect) DateFormatSQL(column, format string) string {
	return fmt.Sprintf("strftime('%s', %s / 1000, 'unixepoch')", format, column)
}

func (d *SQLiteDialect) CreateTablesSQL() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS stress_samples (
			session_id TEXT NOT NULL, timestamp INTEGER NOT NULL,
			value REAL NOT NULL, kind TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS flight_events (
			session_id TEXT NOT NULL, seq INTEGER NOT NULL, name TEXT,
			timestamp INTEGER NOT NULL, details TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS phase_intervals (
			session_id TEXT NOT NULL, kind TEXT, ordinal INTEGER,
			start_ts INTEGER, end_ts INTEGER, start_label TEXT, end_label TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS analyses (
			session_id TEXT PRIMARY KEY, created_at INTEGER, timezone TEXT,
			threshold REAL, day_start INTEGER, day_end INTEGER,
			samples INTEGER, high_stress INTEGER, summary TEXT, insight TEXT
		)`,
	}
}

func (d *SQLiteDialect) CreateIndexSQL(indexName, tableName, column string) string {
	return fmt.Sprintf(
		"CREATE INDEX IF NOT EXISTS %s ON %s (%s)", indexName, tableName, column)
}
