package database

import (
	"fmt"
	"strings"
)

// pgQuoteCol wraps a column name in double quotes if it collides with a
// PostgreSQL type or keyword. Other names are returned as-is so PostgreSQL
// folds them to lowercase consistently with unquoted DDL definitions.
func pgQuoteCol(name string) string {
	switch name {
	case "timestamp", "value":
		return `"` + name + `"`
	default:
		return name
	}
}

// strftimeToPostgres maps the strftime format strings used by
// GetStressHistogram to their PostgreSQL to_char equivalents.
var strftimeToPostgres = map[string]string{
	"%Y-%m-%d %H:00:00": "YYYY-MM-DD HH24:00:00",
	"%Y-%m-%d":          "YYYY-MM-DD",
	"%Y-%m":             "YYYY-MM",
}

// PostgresDialect implements the Dialect interface for PostgreSQL databases.
// It also satisfies query.QueryDialect through structural typing.
type PostgresDialect struct{}

func (d *PostgresDialect) DriverName() string              { return "pgx" }
func (d *PostgresDialect) DSN(pathOrConnStr string) string { return pathOrConnStr }
func (d *PostgresDialect) Placeholder(index int) string    { return fmt.Sprintf("$%d", index) }
func (d *PostgresDialect) QuoteColumn(name string) string  { return pgQuoteCol(name) }

// SanitizeText strips null bytes (0x00). SQLite stores these fine but
// PostgreSQL rejects them with "invalid byte sequence for encoding UTF8".
func (d *PostgresDialect) SanitizeText(s string) string {
	if strings.ContainsRune(s, '\x00') {
		return strings.ReplaceAll(s, "\x00", "")
	}
	return s
}

func (d *PostgresDialect) DateFormatSQL(column, format string) string {
	pgFmt, ok := strftimeToPostgres[format]
	if !ok {
		pgFmt = format
	}
	return fmt.Sprintf("to_char(to_timestamp(%s / 1000.0) AT TIME ZONE 'UTC', '%s')", column, pgFmt)
}

func (d *PostgresDialect) CreateTablesSQL() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS stress_samples (
			id BIGSERIAL PRIMARY KEY,
			session_id TEXT NOT NULL, "timestamp" BIGINT NOT NULL,
			"value" DOUBLE PRECISION NOT NULL, kind TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS flight_events (
			id BIGSERIAL PRIMARY KEY,
			session_id TEXT NOT NULL, seq INT NOT NULL, name TEXT,
			"timestamp" BIGINT NOT NULL, details TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS phase_intervals (
			id BIGSERIAL PRIMARY KEY,
			session_id TEXT NOT NULL, kind TEXT, ordinal INT,
			start_ts BIGINT, end_ts BIGINT, start_label TEXT, end_label TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS analyses (
			session_id TEXT PRIMARY KEY, created_at BIGINT, timezone TEXT,
			threshold DOUBLE PRECISION, day_start BIGINT, day_end BIGINT,
			samples BIGINT, high_stress BIGINT, summary TEXT, insight TEXT
		)`,
	}
}

func (d *PostgresDialect) CreateIndexSQL(indexName, tableName, column string) string {
	return fmt.Sprintf(
		"CREATE INDEX IF NOT EXISTS %s ON %s (%s)", indexName, tableName, pgQuoteCol(column))
}
