package model

// ChartBucket is one per-minute point of the stress series.
// Minute is the epoch-ms start of the local calendar minute; Label is the
// HH:MM rendering of it and may repeat across days.
type ChartBucket struct {
	Minute int64    `json:"minute"`
	Label  string   `json:"label"`
	Stress *float64 `json:"stress,omitempty"`
}

// PhaseKind distinguishes shaded chart intervals.
type PhaseKind string

const (
	PhaseFlight  PhaseKind = "flight"
	PhaseTransit PhaseKind = "transit"
	PhaseGround  PhaseKind = "ground"
)

// PhaseInterval is a derived flight-in-progress or transit span.
// Start and End are the originating event timestamps; the labels are for display only.
type PhaseInterval struct {
	Kind       PhaseKind `json:"kind"`
	Ordinal    int       `json:"ordinal"`
	Start      int64     `json:"start"`
	End        int64     `json:"end"`
	StartLabel string    `json:"startLabel"`
	EndLabel   string    `json:"endLabel"`
}

// Contains reports whether ts lies inside the interval, bounds inclusive.
func (p PhaseInterval) Contains(ts int64) bool {
	return ts >= p.Start && ts <= p.End
}

// EventMarker is a flight event positioned on the chart.
type EventMarker struct {
	FlightEvent
	Label string `json:"label"`
	Color string `json:"color"`
}

// PhaseStress summarises high-stress samples that fell inside one phase.
// The trailing ground row (Kind PhaseGround, zero interval bounds) collects
// samples outside every interval.
type PhaseStress struct {
	Interval PhaseInterval `json:"interval"`
	Count    int           `json:"count"`
	Peak     float64       `json:"peak"`
}
