package chart

import (
	"strings"
	"time"

	"github.com/cdtdelta/stresstrip/internal/flight"
	"github.com/cdtdelta/stresstrip/internal/model"
)

const (
	keyTakeoff      = "takeoff"
	keyLanding      = "landing"
	keyTransitStart = "transit start"
	keyTransitEnd   = "transit end"
)

// Phases pairs takeoff/landing and transit start/transit end events into
// intervals, scanning the events in time order. Flight and transit pairing
// are tracked independently. Ordinals count from 1 within each kind. An
// opening event with no matching close is dropped, as is a close with no
// open interval.
func Phases(events []model.FlightEvent, loc *time.Location) []model.PhaseInterval {
	var (
		out         []model.PhaseInterval
		flightOpen  *model.FlightEvent
		transitOpen *model.FlightEvent
		flights     int
		transits    int
	)

	for _, e := range flight.Sorted(events) {
		name := strings.ToLower(e.Name)

		if strings.Contains(name, keyTakeoff) && flightOpen == nil {
			flightOpen = &e
		}
		if strings.Contains(name, keyLanding) && flightOpen != nil {
			flights++
			out = append(out, interval(model.PhaseFlight, flights, *flightOpen, e, loc))
			flightOpen = nil
		}
		if strings.Contains(name, keyTransitStart) && transitOpen == nil {
			transitOpen = &e
		}
		if strings.Contains(name, keyTransitEnd) && transitOpen != nil {
			transits++
			out = append(out, interval(model.PhaseTransit, transits, *transitOpen, e, loc))
			transitOpen = nil
		}
	}
	return out
}

// VisiblePhases keeps the intervals whose start and end both lie in the window.
func VisiblePhases(phases []model.PhaseInterval, visible model.VisibleWindow) []model.PhaseInterval {
	out := []model.PhaseInterval{}
	for _, p := range phases {
		if visible.Contains(p.Start) && visible.Contains(p.End) {
			out = append(out, p)
		}
	}
	return out
}

func interval(kind model.PhaseKind, ordinal int, open, closing model.FlightEvent, loc *time.Location) model.PhaseInterval {
	return model.PhaseInterval{
		Kind:       kind,
		Ordinal:    ordinal,
		Start:      open.Timestamp,
		End:        closing.Timestamp,
		StartLabel: Label(open.Timestamp, loc),
		EndLabel:   Label(closing.Timestamp, loc),
	}
}
