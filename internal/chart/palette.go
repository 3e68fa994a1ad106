package chart

import (
	"strings"
	"time"

	"github.com/cdtdelta/stresstrip/internal/flight"
	"github.com/cdtdelta/stresstrip/internal/model"
)

// NeutralColor is used for events that match no palette rule.
const NeutralColor = "#9ca3af"

type colorRule struct {
	all   []string
	color string
}

// Rules are checked in order; multi-leg rules come before the generic
// phase keywords so "Takeoff (Leg 2)" does not pick up the leg 1 color.
var palette = []colorRule{
	{[]string{"leg 2", keyTakeoff}, "#f97316"},
	{[]string{"leg 2", keyLanding}, "#14b8a6"},
	{[]string{"leg 3", keyTakeoff}, "#ec4899"},
	{[]string{"leg 3", keyLanding}, "#0ea5e9"},
	{[]string{keyTakeoff}, "#ef4444"},
	{[]string{keyLanding}, "#22c55e"},
	{[]string{keyTransitStart}, "#f59e0b"},
	{[]string{keyTransitEnd}, "#d97706"},
	{[]string{"boarding"}, "#3b82f6"},
	{[]string{"check-in"}, "#6366f1"},
	{[]string{"check in"}, "#6366f1"},
}

// Color maps an event name to its marker color, case-insensitively.
func Color(name string) string {
	lower := strings.ToLower(name)
	for _, r := range palette {
		if containsAll(lower, r.all) {
			return r.color
		}
	}
	return NeutralColor
}

func containsAll(s string, subs []string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}

// Markers returns the events inside the visible window in time order,
// labelled and colored for the chart.
func Markers(events []model.FlightEvent, visible model.VisibleWindow, loc *time.Location) []model.EventMarker {
	out := []model.EventMarker{}
	for _, e := range flight.Sorted(events) {
		if !visible.Contains(e.Timestamp) {
			continue
		}
		out = append(out, model.EventMarker{
			FlightEvent: e,
			Label:       Label(e.Timestamp, loc),
			Color:       Color(e.Name),
		})
	}
	return out
}
