package database

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/cdtdelta/stresstrip/internal/model"

	_ "modernc.org/sqlite"
)

// histogramFormat buckets exported samples by UTC hour.
const histogramFormat = "%Y-%m-%d %H:00:00"

// sqlStore implements Store over database/sql. The backends differ only
// in their Dialect and how the connection is opened.
type sqlStore struct {
	path    string
	conn    *sql.DB
	dialect Dialect
}

// OpenSQLite opens an existing SQLite export file.
func OpenSQLite(path string) (Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return asStore(openSQL(&SQLiteDialect{}, path))
}

// CreateSQLite creates (or extends) a SQLite export file with the full schema.
func CreateSQLite(path string) (Store, error) {
	return asStore(createSQL(&SQLiteDialect{}, path))
}

// asStore keeps a failed open from yielding a non-nil Store holding a nil pointer.
func asStore(db *sqlStore, err error) (Store, error) {
	if err != nil {
		return nil, err
	}
	return db, nil
}

func openSQL(d Dialect, dsn string) (*sqlStore, error) {
	conn, err := sql.Open(d.DriverName(), d.DSN(dsn))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Verify the connection works
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	return &sqlStore{path: dsn, conn: conn, dialect: d}, nil
}

func createSQL(d Dialect, dsn string) (*sqlStore, error) {
	db, err := openSQL(d, dsn)
	if err != nil {
		return nil, err
	}
	if err := db.createSchema(); err != nil {
		db.conn.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *sqlStore) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}

// Path returns the file path or connection string of the database.
func (db *sqlStore) Path() string {
	return db.path
}

func (db *sqlStore) Dialect() Dialect {
	return db.dialect
}

// createSchema builds all tables and indexes. Existing tables are kept so
// several analyses can be exported into one store.
func (db *sqlStore) createSchema() error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, ddl := range db.dialect.CreateTablesSQL() {
		if _, err := tx.Exec(ddl); err != nil {
			return fmt.Errorf("creating table: %w", err)
		}
	}

	for _, idx := range exportIndexes {
		if _, err := tx.Exec(db.dialect.CreateIndexSQL(idx.name, idx.table, idx.column)); err != nil {
			return fmt.Errorf("creating index on %s.%s: %w", idx.table, idx.column, err)
		}
	}

	return tx.Commit()
}

// ExportBatch is everything written for one analysis.
type ExportBatch struct {
	Record  AnalysisRecord
	Samples []model.HealthSample
	Events  []model.FlightEvent
	Phases  []model.PhaseInterval
}

// WriteExport writes a whole analysis in one transaction. The summary row
// goes first so a session that was already exported fails on its primary
// key before any sample is written.
func (db *sqlStore) WriteExport(b ExportBatch, onProgress func(count int)) (int, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := db.saveAnalysis(tx, b.Record); err != nil {
		return 0, err
	}
	sessionID := b.Record.SessionID
	n, err := db.insertSamples(tx, sessionID, b.Samples, onProgress)
	if err != nil {
		return 0, err
	}
	if err := db.insertEvents(tx, sessionID, b.Events); err != nil {
		return 0, err
	}
	if err := db.insertPhases(tx, sessionID, b.Phases); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing transaction: %w", err)
	}
	return n, nil
}

// InsertSamples inserts a batch of samples inside a single transaction.
// The onProgress callback is called every 10,000 samples with the current count.
// Pass nil for onProgress if you don't need progress updates.
func (db *sqlStore) InsertSamples(sessionID string, samples []model.HealthSample, onProgress func(count int)) (int, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	inserted, err := db.insertSamples(tx, sessionID, samples, onProgress)
	if err != nil {
		return inserted, err
	}
	if err := tx.Commit(); err != nil {
		return inserted, fmt.Errorf("committing transaction: %w", err)
	}

	return inserted, nil
}

func (db *sqlStore) insertSamples(tx *sql.Tx, sessionID string, samples []model.HealthSample, onProgress func(count int)) (int, error) {
	stmt, err := tx.Prepare(insertSQL(db.dialect, "stress_samples", model.SampleFields...))
	if err != nil {
		return 0, fmt.Errorf("preparing insert statement: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, s := range samples {
		if _, err := stmt.Exec(sessionID, s.Timestamp, s.Value, string(s.Kind)); err != nil {
			return inserted, fmt.Errorf("inserting sample %d: %w", inserted+1, err)
		}
		inserted++
		if onProgress != nil && inserted%10000 == 0 {
			onProgress(inserted)
		}
	}
	return inserted, nil
}

// InsertEvents stores the flight events with their position in the itinerary.
func (db *sqlStore) InsertEvents(sessionID string, events []model.FlightEvent) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := db.insertEvents(tx, sessionID, events); err != nil {
		return err
	}
	return tx.Commit()
}

func (db *sqlStore) insertEvents(tx *sql.Tx, sessionID string, events []model.FlightEvent) error {
	stmt, err := tx.Prepare(insertSQL(db.dialect, "flight_events",
		"session_id", "seq", "name", "timestamp", "details"))
	if err != nil {
		return fmt.Errorf("preparing insert statement: %w", err)
	}
	defer stmt.Close()

	for i, e := range events {
		_, err := stmt.Exec(sessionID, i, db.dialect.SanitizeText(e.Name), e.Timestamp,
			db.dialect.SanitizeText(e.Details))
		if err != nil {
			return fmt.Errorf("inserting event %d: %w", i+1, err)
		}
	}
	return nil
}

// InsertPhases stores the derived flight and transit intervals.
func (db *sqlStore) InsertPhases(sessionID string, phases []model.PhaseInterval) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := db.insertPhases(tx, sessionID, phases); err != nil {
		return err
	}
	return tx.Commit()
}

func (db *sqlStore) insertPhases(tx *sql.Tx, sessionID string, phases []model.PhaseInterval) error {
	stmt, err := tx.Prepare(insertSQL(db.dialect, "phase_intervals",
		"session_id", "kind", "ordinal", "start_ts", "end_ts", "start_label", "end_label"))
	if err != nil {
		return fmt.Errorf("preparing insert statement: %w", err)
	}
	defer stmt.Close()

	for i, p := range phases {
		_, err := stmt.Exec(sessionID, string(p.Kind), p.Ordinal, p.Start, p.End, p.StartLabel, p.EndLabel)
		if err != nil {
			return fmt.Errorf("inserting phase %d: %w", i+1, err)
		}
	}
	return nil
}

// SaveAnalysis writes the summary row for an export.
func (db *sqlStore) SaveAnalysis(rec AnalysisRecord) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := db.saveAnalysis(tx, rec); err != nil {
		return err
	}
	return tx.Commit()
}

func (db *sqlStore) saveAnalysis(tx *sql.Tx, rec AnalysisRecord) error {
	_, err := tx.Exec(insertSQL(db.dialect, "analyses",
		"session_id", "created_at", "timezone", "threshold", "day_start", "day_end",
		"samples", "high_stress", "summary", "insight"),
		rec.SessionID, rec.CreatedAt, rec.Timezone, rec.Threshold, rec.DayStart, rec.DayEnd,
		rec.Samples, rec.HighStress, db.dialect.SanitizeText(rec.Summary), db.dialect.SanitizeText(rec.Insight),
	)
	if err != nil {
		return fmt.Errorf("saving analysis: %w", err)
	}
	return nil
}

// ExecuteQuery runs a pre-built SQL query (e.g. from query.Build) and
// returns the matching samples.
func (db *sqlStore) ExecuteQuery(sqlStr string, args []any) ([]SampleRow, error) {
	rows, err := db.conn.Query(sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("executing query: %w", err)
	}
	defer rows.Close()

	var out []SampleRow
	for rows.Next() {
		var r SampleRow
		var kind string
		if err := rows.Scan(&r.SessionID, &r.Timestamp, &r.Value, &kind); err != nil {
			return nil, fmt.Errorf("scanning sample: %w", err)
		}
		r.Kind = model.SampleKind(kind)
		out = append(out, r)
	}
	return out, rows.Err()
}

// ExecuteCountQuery runs a pre-built COUNT query.
func (db *sqlStore) ExecuteCountQuery(sqlStr string, args []any) (int64, error) {
	var count int64
	if err := db.conn.QueryRow(sqlStr, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("executing count query: %w", err)
	}
	return count, nil
}

// CountSamples returns the number of samples stored for sessionID, or for
// every analysis when sessionID is empty.
func (db *sqlStore) CountSamples(sessionID string) (int64, error) {
	where, args := db.sessionFilter(sessionID, 1)
	return db.ExecuteCountQuery("SELECT COUNT(*) FROM stress_samples"+where, args)
}

// GetMinMaxTimestamp returns the earliest and latest sample timestamps.
// Both are zero when nothing matches.
func (db *sqlStore) GetMinMaxTimestamp(sessionID string) (int64, int64, error) {
	col := db.dialect.QuoteColumn("timestamp")
	where, args := db.sessionFilter(sessionID, 1)

	var lo, hi sql.NullInt64
	err := db.conn.QueryRow("SELECT MIN("+col+"), MAX("+col+") FROM stress_samples"+where, args...).Scan(&lo, &hi)
	if err != nil {
		return 0, 0, fmt.Errorf("getting timestamp range: %w", err)
	}
	return lo.Int64, hi.Int64, nil
}

// GetStressHistogram returns sample counts bucketed by UTC hour, with the
// number of samples at or above threshold and the peak value per hour.
func (db *sqlStore) GetStressHistogram(sessionID string, threshold float64) ([]HistogramBucket, error) {
	bucketExpr := db.dialect.DateFormatSQL(db.dialect.QuoteColumn("timestamp"), histogramFormat)
	val := db.dialect.QuoteColumn("value")

	histSQL := "SELECT " + bucketExpr + " AS bucket, COUNT(*) AS cnt, " +
		"SUM(CASE WHEN " + val + " >= " + db.dialect.Placeholder(1) + " THEN 1 ELSE 0 END) AS high, " +
		"MAX(" + val + ") AS peak FROM stress_samples"
	where, args := db.sessionFilter(sessionID, 2)
	histSQL += where + " GROUP BY bucket ORDER BY bucket"

	rows, err := db.conn.Query(histSQL, append([]any{threshold}, args...)...)
	if err != nil {
		return nil, fmt.Errorf("histogram query: %w", err)
	}
	defer rows.Close()

	buckets := []HistogramBucket{}
	for rows.Next() {
		var b HistogramBucket
		if err := rows.Scan(&b.Hour, &b.Count, &b.High, &b.Peak); err != nil {
			return nil, fmt.Errorf("scanning bucket: %w", err)
		}
		buckets = append(buckets, b)
	}

	return buckets, rows.Err()
}

// GetAnalyses lists the exported analyses, newest first.
func (db *sqlStore) GetAnalyses() ([]AnalysisRecord, error) {
	rows, err := db.conn.Query(`SELECT session_id, created_at, timezone, threshold,
		day_start, day_end, samples, high_stress, summary, insight
		FROM analyses ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing analyses: %w", err)
	}
	defer rows.Close()

	var out []AnalysisRecord
	for rows.Next() {
		var r AnalysisRecord
		if err := rows.Scan(&r.SessionID, &r.CreatedAt, &r.Timezone, &r.Threshold,
			&r.DayStart, &r.DayEnd, &r.Samples, &r.HighStress, &r.Summary, &r.Insight); err != nil {
			return nil, fmt.Errorf("scanning analysis: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (db *sqlStore) sessionFilter(sessionID string, placeholder int) (string, []any) {
	if sessionID == "" {
		return "", nil
	}
	return " WHERE session_id = " + db.dialect.Placeholder(placeholder), []any{sessionID}
}
