package database

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cdtdelta/stresstrip/internal/model"
	"github.com/cdtdelta/stresstrip/internal/query"
)

func tempDBPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "test.db")
}

func createTestDB(t *testing.T) Store {
	t.Helper()
	db, err := CreateSQLite(tempDBPath(t))
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func hour(h, m int) int64 {
	return time.Date(2024, 1, 1, h, m, 0, 0, time.UTC).UnixMilli()
}

func sampleAnalysis() *model.Analysis {
	return &model.Analysis{
		SessionID: "session-1",
		Timezone:  "UTC",
		Threshold: 80,
		Samples: []model.HealthSample{
			{Timestamp: hour(9, 10), Value: 40, Kind: model.KindStress},
			{Timestamp: hour(12, 0), Value: 90, Kind: model.KindStress},
			{Timestamp: hour(12, 30), Value: 70, Kind: model.KindStress},
			{Timestamp: hour(12, 45), Value: 85, Kind: model.KindStress},
		},
		Flight: model.FlightData{
			Summary: "UA1\x00 SFO-JFK",
			Events: []model.FlightEvent{
				{Name: "Takeoff (Leg 1)", Timestamp: hour(10, 0), Details: "UA1"},
				{Name: "Landing (Leg 1)", Timestamp: hour(14, 0), Details: "UA1"},
			},
		},
		Travel: model.TravelWindow{DayStart: hour(0, 0), DayEnd: hour(23, 59)},
		Phases: []model.PhaseInterval{
			{Kind: model.PhaseFlight, Ordinal: 1, Start: hour(10, 0), End: hour(14, 0), StartLabel: "10:00", EndLabel: "14:00"},
		},
		Correlated: []model.CorrelatedSample{{Timestamp: hour(12, 0), Value: 90}, {Timestamp: hour(12, 45), Value: 85}},
		Insight:    "Peak mid-flight.",
		CreatedAt:  time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
	}
}

func TestCreateAndOpen(t *testing.T) {
	path := tempDBPath(t)

	db, err := CreateSQLite(path)
	if err != nil {
		t.Fatalf("CreateSQLite failed: %v", err)
	}
	if db.Path() != path {
		t.Errorf("expected path %s, got %s", path, db.Path())
	}
	db.Close()

	db2, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}
	defer db2.Close()

	count, err := db2.CountSamples("")
	if err != nil {
		t.Fatalf("CountSamples failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected 0 samples in new database, got %d", count)
	}
}

func TestOpenMissingFile(t *testing.T) {
	if _, err := OpenSQLite(tempDBPath(t)); err == nil {
		t.Error("expected error opening a missing database")
	}
}

func TestCreateIsIdempotent(t *testing.T) {
	path := tempDBPath(t)
	for i := 0; i < 2; i++ {
		db, err := CreateStore("sqlite", path)
		if err != nil {
			t.Fatalf("CreateStore pass %d failed: %v", i, err)
		}
		db.Close()
	}
}

func TestUnsupportedDriver(t *testing.T) {
	if _, err := OpenStore("mysql", "x"); err == nil {
		t.Error("expected error for unsupported driver")
	}
	if _, err := CreateStore("oracle", "x"); err == nil {
		t.Error("expected error for unsupported driver")
	}
}

func TestInsertSamplesProgress(t *testing.T) {
	db := createTestDB(t)

	samples := make([]model.HealthSample, 25000)
	for i := range samples {
		samples[i] = model.HealthSample{Timestamp: int64(i) * 60000, Value: float64(i % 100), Kind: model.KindStress}
	}

	var progress []int
	n, err := db.InsertSamples("s", samples, func(c int) { progress = append(progress, c) })
	if err != nil {
		t.Fatalf("InsertSamples failed: %v", err)
	}
	if n != 25000 {
		t.Errorf("expected 25000 inserted, got %d", n)
	}
	if len(progress) != 2 || progress[0] != 10000 || progress[1] != 20000 {
		t.Errorf("unexpected progress calls: %v", progress)
	}

	count, _ := db.CountSamples("s")
	if count != 25000 {
		t.Errorf("expected 25000 stored, got %d", count)
	}
}

func TestExport(t *testing.T) {
	db := createTestDB(t)
	a := sampleAnalysis()

	n, err := Export(db, a, nil)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if n != 4 {
		t.Errorf("expected 4 samples written, got %d", n)
	}

	analyses, err := db.GetAnalyses()
	if err != nil {
		t.Fatalf("GetAnalyses failed: %v", err)
	}
	if len(analyses) != 1 {
		t.Fatalf("expected 1 analysis, got %d", len(analyses))
	}
	rec := analyses[0]
	if rec.SessionID != "session-1" || rec.Samples != 4 || rec.HighStress != 2 {
		t.Errorf("unexpected record: %+v", rec)
	}
	if rec.Insight != "Peak mid-flight." || rec.DayStart != a.Travel.DayStart {
		t.Errorf("unexpected record: %+v", rec)
	}

	lo, hi, err := db.GetMinMaxTimestamp("session-1")
	if err != nil {
		t.Fatalf("GetMinMaxTimestamp failed: %v", err)
	}
	if lo != hour(9, 10) || hi != hour(12, 45) {
		t.Errorf("unexpected range %d-%d", lo, hi)
	}
}

func TestExportEmpty(t *testing.T) {
	db := createTestDB(t)
	_, err := Export(db, &model.Analysis{SessionID: "x"}, nil)
	if !errors.Is(err, ErrEmptyAnalysis) {
		t.Errorf("expected ErrEmptyAnalysis, got %v", err)
	}
}

func TestExportSameSessionTwiceFails(t *testing.T) {
	db := createTestDB(t)
	if _, err := Export(db, sampleAnalysis(), nil); err != nil {
		t.Fatal(err)
	}
	n, err := Export(db, sampleAnalysis(), nil)
	if err == nil {
		t.Fatal("expected duplicate session export to fail")
	}
	if n != 0 {
		t.Errorf("failed export reported %d samples written, want 0", n)
	}

	count, err := db.CountSamples("session-1")
	if err != nil {
		t.Fatalf("CountSamples failed: %v", err)
	}
	if count != 4 {
		t.Errorf("expected 4 samples after failed re-export, got %d", count)
	}
	events, err := db.ExecuteCountQuery("SELECT COUNT(*) FROM flight_events WHERE session_id = ?", []any{"session-1"})
	if err != nil {
		t.Fatalf("counting events failed: %v", err)
	}
	if events != 2 {
		t.Errorf("expected 2 events after failed re-export, got %d", events)
	}
	phases, err := db.ExecuteCountQuery("SELECT COUNT(*) FROM phase_intervals WHERE session_id = ?", []any{"session-1"})
	if err != nil {
		t.Fatalf("counting phases failed: %v", err)
	}
	if phases != 1 {
		t.Errorf("expected 1 phase after failed re-export, got %d", phases)
	}
}

func TestGetStressHistogram(t *testing.T) {
	db := createTestDB(t)
	if _, err := Export(db, sampleAnalysis(), nil); err != nil {
		t.Fatal(err)
	}

	buckets, err := db.GetStressHistogram("session-1", 80)
	if err != nil {
		t.Fatalf("GetStressHistogram failed: %v", err)
	}
	if len(buckets) != 2 {
		t.Fatalf("expected 2 hourly buckets, got %d: %+v", len(buckets), buckets)
	}
	if buckets[0].Hour != "2024-01-01 09:00:00" || buckets[0].Count != 1 || buckets[0].High != 0 {
		t.Errorf("unexpected first bucket: %+v", buckets[0])
	}
	if buckets[1].Hour != "2024-01-01 12:00:00" || buckets[1].Count != 3 || buckets[1].High != 2 || buckets[1].Peak != 90 {
		t.Errorf("unexpected second bucket: %+v", buckets[1])
	}

	empty, err := db.GetStressHistogram("nope", 80)
	if err != nil {
		t.Fatal(err)
	}
	if len(empty) != 0 {
		t.Errorf("expected no buckets, got %d", len(empty))
	}
}

func TestExecuteQueryWithBuilder(t *testing.T) {
	db := createTestDB(t)
	if _, err := Export(db, sampleAnalysis(), nil); err != nil {
		t.Fatal(err)
	}

	q := query.New(0)
	q.SetDialect(db.Dialect())
	q.AddPredicate(query.Simple("session_id", query.Equal, "session-1"))
	q.AddPredicate(query.TimeRange(hour(12, 0), hour(13, 0)))
	q.AddPredicate(query.Simple("value", query.GreaterOrEqual, 80))
	if err := q.OrderBy("timestamp", false); err != nil {
		t.Fatal(err)
	}

	sql, args := q.Build()
	rows, err := db.ExecuteQuery(sql, args)
	if err != nil {
		t.Fatalf("ExecuteQuery failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Value != 90 || rows[1].Value != 85 || rows[0].Kind != model.KindStress {
		t.Errorf("unexpected rows: %+v", rows)
	}

	countSQL, countArgs := q.BuildCount()
	count, err := db.ExecuteCountQuery(countSQL, countArgs)
	if err != nil {
		t.Fatalf("ExecuteCountQuery failed: %v", err)
	}
	if count != 2 {
		t.Errorf("expected count 2, got %d", count)
	}
}

func TestInsertSQL(t *testing.T) {
	got := insertSQL(&PostgresDialect{}, "stress_samples", model.SampleFields...)
	want := `INSERT INTO stress_samples (session_id, "timestamp", "value", kind) VALUES ($1, $2, $3, $4)`
	if got != want {
		t.Errorf("expected %s, got %s", want, got)
	}

	got = insertSQL(&SQLiteDialect{}, "flight_events", "session_id", "name")
	if got != "INSERT INTO flight_events (session_id, name) VALUES (?, ?)" {
		t.Errorf("unexpected sqlite insert: %s", got)
	}
}

func TestPostgresDialect(t *testing.T) {
	d := &PostgresDialect{}
	if got := d.SanitizeText("a\x00b"); got != "ab" {
		t.Errorf("expected NUL stripped, got %q", got)
	}
	expr := d.DateFormatSQL(`"timestamp"`, histogramFormat)
	if !strings.Contains(expr, "YYYY-MM-DD HH24:00:00") || !strings.Contains(expr, "to_timestamp") {
		t.Errorf("unexpected histogram expression: %s", expr)
	}
	for _, ddl := range d.CreateTablesSQL() {
		if !strings.HasPrefix(ddl, "CREATE TABLE IF NOT EXISTS") {
			t.Errorf("unexpected DDL: %s", ddl)
		}
	}
}
