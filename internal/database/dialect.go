package database

// Dialect abstracts all database-specific SQL generation.
// Each database backend (SQLite, PostgreSQL) implements this interface.
// Placeholder and QuoteColumn match the query.QueryDialect interface through
// Go structural typing, so a Dialect can also serve as a QueryDialect.
type Dialect interface {
	// DriverName returns the database/sql driver name (e.g. "sqlite", "pgx").
	DriverName() string

	// DSN returns the data source name for opening a connection.
	DSN(pathOrConnStr string) string

	// Placeholder returns the parameter placeholder for the given 1-based index.
	// SQLite: "?" (ignoring index), PostgreSQL: "$1", "$2", etc.
	Placeholder(index int) string

	// QuoteColumn returns the column name quoted appropriately for the dialect.
	QuoteColumn(name string) string

	// DateFormatSQL returns a SQL expression that formats an epoch-millisecond
	// column as UTC text using a strftime-style format.
	DateFormatSQL(column, format string) string

	// CreateTablesSQL returns the DDL for every export table, in creation order.
	CreateTablesSQL() []string

	// CreateIndexSQL returns DDL to create an index on a table column.
	CreateIndexSQL(indexName, tableName, column string) string

	// SanitizeText makes a string safe to store. PostgreSQL rejects NUL bytes.
	SanitizeText(s string) string
}

// exportIndexes lists the indexes created with a new schema.
var exportIndexes = []struct{ name, table, column string }{
	{"stress_samples_session_idx", "stress_samples", "session_id"},
	{"stress_samples_timestamp_idx", "stress_samples", "timestamp"},
	{"flight_events_session_idx", "flight_events", "session_id"},
	{"phase_intervals_session_idx", "phase_intervals", "session_id"},
}

// insertSQL builds a parameterized INSERT for the given columns.
func insertSQL(d Dialect, table string, columns ...string) string {
	sql := "INSERT INTO " + table + " ("
	values := ""
	for i, c := range columns {
		if i > 0 {
			sql += ", "
			values += ", "
		}
		sql += d.QuoteColumn(c)
		values += d.Placeholder(i + 1)
	}
	return sql + ") VALUES (" + values + ")"
}
