package database

import (
	_ "github.com/jackc/pgx/v5/stdlib"
)

// OpenPostgres opens an existing PostgreSQL export database.
func OpenPostgres(connStr string) (Store, error) {
	return asStore(openSQL(&PostgresDialect{}, connStr))
}

// CreatePostgres creates the export schema on a PostgreSQL database.
// The database itself must already exist; this creates the tables and indexes.
func CreatePostgres(connStr string) (Store, error) {
	return asStore(createSQL(&PostgresDialect{}, connStr))
}
