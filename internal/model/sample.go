package model

import "time"

// SampleFields is the ordered list of column names in the stress_samples table.
// Used for query building and field validation.
var SampleFields = []string{"session_id", "timestamp", "value", "kind"}

// SampleKind tags what a HealthSample measures.
type SampleKind string

// KindStress is the only kind the archive extractor produces.
const KindStress SampleKind = "stress"

// HealthSample is one wearable-derived measurement.
// Timestamp is epoch milliseconds.
type HealthSample struct {
	Timestamp int64      `json:"timestamp"`
	Value     float64    `json:"value"`
	Kind      SampleKind `json:"kind"`
}

// CorrelatedSample is a high-stress sample as handed to the insight generator.
// The kind is implied by context and dropped.
type CorrelatedSample struct {
	Timestamp int64   `json:"timestamp"`
	Value     float64 `json:"value"`
}

// Millis converts t to epoch milliseconds.
func Millis(t time.Time) int64 {
	return t.UnixMilli()
}

// TimeOf converts epoch milliseconds to a time in loc.
// A nil loc yields UTC.
func TimeOf(ms int64, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.UnixMilli(ms).In(loc)
}
