package database

import "github.com/cdtdelta/stresstrip/internal/model"

// HistogramBucket is one hour of exported samples.
type HistogramBucket struct {
	Hour  string  `json:"hour"`
	Count int64   `json:"count"`
	High  int64   `json:"high"`
	Peak  float64 `json:"peak"`
}

// SampleRow is a stored sample with the analysis it belongs to.
type SampleRow struct {
	SessionID string `json:"sessionId"`
	model.HealthSample
}

// AnalysisRecord is the summary row written for each exported analysis.
type AnalysisRecord struct {
	SessionID  string  `json:"sessionId"`
	CreatedAt  int64   `json:"createdAt"`
	Timezone   string  `json:"timezone"`
	Threshold  float64 `json:"threshold"`
	DayStart   int64   `json:"dayStart"`
	DayEnd     int64   `json:"dayEnd"`
	Samples    int64   `json:"samples"`
	HighStress int64   `json:"highStress"`
	Summary    string  `json:"summary"`
	Insight    string  `json:"insight"`
}

// Store defines the export database operations.
// Callers depend on the interface, not on a concrete backend.
type Store interface {
	// Bulk writes, keyed by the analysis session ID.
	InsertSamples(sessionID string, samples []model.HealthSample, onProgress func(int)) (int, error)
	InsertEvents(sessionID string, events []model.FlightEvent) error
	InsertPhases(sessionID string, phases []model.PhaseInterval) error
	SaveAnalysis(rec AnalysisRecord) error

	// WriteExport writes a complete analysis atomically.
	WriteExport(b ExportBatch, onProgress func(int)) (int, error)

	// Query execution for pre-built SQL (from query.Build).
	// The scan order matches model.SampleFields: session_id, timestamp, value, kind.
	ExecuteQuery(sql string, args []any) ([]SampleRow, error)
	ExecuteCountQuery(sql string, args []any) (int64, error)

	// Read-back for inspection
	CountSamples(sessionID string) (int64, error)
	GetMinMaxTimestamp(sessionID string) (int64, int64, error)
	GetStressHistogram(sessionID string, threshold float64) ([]HistogramBucket, error)
	GetAnalyses() ([]AnalysisRecord, error)

	// Dialect exposes placeholder and quoting rules for query building.
	Dialect() Dialect

	// Lifecycle
	Close() error
	Path() string
}
