package window

import (
	"errors"
	"time"

	"github.com/cdtdelta/stresstrip/internal/model"
)

// DefaultPadding is added on both sides of the flight events when seeding
// the visible window.
const DefaultPadding = 3 * time.Hour

// ErrNoEvents is returned when a window is requested for an empty event list.
var ErrNoEvents = errors.New("no flight events")

// Span returns the earliest and latest event timestamps. The events do not
// need to be in any particular order.
func Span(events []model.FlightEvent) (int64, int64, error) {
	if len(events) == 0 {
		return 0, 0, ErrNoEvents
	}
	lo, hi := events[0].Timestamp, events[0].Timestamp
	for _, e := range events[1:] {
		lo = min(lo, e.Timestamp)
		hi = max(hi, e.Timestamp)
	}
	return lo, hi, nil
}

// Travel widens the event span to whole calendar days in loc: midnight of
// the earliest event's date through 23:59:59.999 of the latest event's date.
func Travel(events []model.FlightEvent, loc *time.Location) (model.TravelWindow, error) {
	lo, hi, err := Span(events)
	if err != nil {
		return model.TravelWindow{}, err
	}
	if loc == nil {
		loc = time.UTC
	}

	first := model.TimeOf(lo, loc)
	last := model.TimeOf(hi, loc)

	dayStart := time.Date(first.Year(), first.Month(), first.Day(), 0, 0, 0, 0, loc)
	nextDay := time.Date(last.Year(), last.Month(), last.Day()+1, 0, 0, 0, 0, loc)

	return model.TravelWindow{
		DayStart: model.Millis(dayStart),
		DayEnd:   model.Millis(nextDay) - 1,
	}, nil
}

// InitialVisible seeds the chart window at pad before the first event and
// pad after the last one.
func InitialVisible(events []model.FlightEvent, pad time.Duration) (model.VisibleWindow, error) {
	lo, hi, err := Span(events)
	if err != nil {
		return model.VisibleWindow{}, err
	}
	return model.VisibleWindow{
		Start: lo - pad.Milliseconds(),
		End:   hi + pad.Milliseconds(),
	}, nil
}

// Clamp pulls End up to Start when an edit left the window inverted.
func Clamp(w model.VisibleWindow) model.VisibleWindow {
	if w.End < w.Start {
		w.End = w.Start
	}
	return w
}
