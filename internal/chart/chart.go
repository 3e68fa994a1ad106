// Package chart derives everything the timeline view draws for a visible
// window: per-minute stress buckets, shaded flight and transit intervals,
// and colored event markers.
package chart

import (
	"time"

	"github.com/cdtdelta/stresstrip/internal/model"
)

// View is the complete chart state for one visible window.
type View struct {
	Window  model.VisibleWindow   `json:"window"`
	Buckets []model.ChartBucket   `json:"buckets"`
	Phases  []model.PhaseInterval `json:"phases"`
	Markers []model.EventMarker   `json:"markers"`
}

// Build re-derives the chart for visible. It holds no state and is cheap
// enough to call on every window edit.
func Build(samples []model.HealthSample, events []model.FlightEvent, visible model.VisibleWindow, loc *time.Location) View {
	return View{
		Window:  visible,
		Buckets: Buckets(samples, visible, loc),
		Phases:  VisiblePhases(Phases(events, loc), visible),
		Markers: Markers(events, visible, loc),
	}
}
