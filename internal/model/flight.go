package model

// FlightEvent is a single itinerary event such as "Takeoff (Leg 2)".
// Timestamp is epoch milliseconds derived from a UTC ISO-8601 instant.
type FlightEvent struct {
	Name      string `json:"name"`
	Timestamp int64  `json:"timestamp"`
	Details   string `json:"details"`
}

// FlightData is the normalized flight-document result.
// Events are kept in the order the collaborator produced them; consumers
// that need chronological order sort a copy.
type FlightData struct {
	Summary string        `json:"summary"`
	Events  []FlightEvent `json:"events"`
}

// TravelWindow spans whole local calendar days covering every flight event.
type TravelWindow struct {
	DayStart int64 `json:"dayStart"`
	DayEnd   int64 `json:"dayEnd"`
}

// Contains reports whether ts lies inside the window, bounds inclusive.
func (w TravelWindow) Contains(ts int64) bool {
	return ts >= w.DayStart && ts <= w.DayEnd
}

// VisibleWindow is the user-adjustable chart range.
type VisibleWindow struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}

// Contains reports whether ts lies inside the window, bounds inclusive.
func (w VisibleWindow) Contains(ts int64) bool {
	return ts >= w.Start && ts <= w.End
}
