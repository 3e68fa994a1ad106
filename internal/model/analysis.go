package model

import "time"

// Analysis is a point-in-time copy of one session's derived results,
// used by the report, CSV and database exporters.
type Analysis struct {
	SessionID   string             `json:"sessionId"`
	Timezone    string             `json:"timezone"`
	Location    *time.Location     `json:"-"`
	Threshold   float64            `json:"threshold"`
	Samples     []HealthSample     `json:"samples"`
	Flight      FlightData         `json:"flight"`
	Travel      TravelWindow       `json:"travel"`
	Visible     VisibleWindow      `json:"visible"`
	Phases      []PhaseInterval    `json:"phases"`
	Correlated  []CorrelatedSample `json:"correlated"`
	PhaseStress []PhaseStress      `json:"phaseStress"`
	Insight     string             `json:"insight"`
	CreatedAt   time.Time          `json:"createdAt"`
}
