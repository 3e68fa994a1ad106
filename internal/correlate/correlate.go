package correlate

import (
	"github.com/cdtdelta/stresstrip/internal/model"
)

// DefaultThreshold is the inclusive lower bound for a high-stress sample
// on the 0-100 stress scale.
const DefaultThreshold = 80

// HighStress returns the stress samples inside the travel window whose value
// is at least threshold, projected to timestamp/value pairs. Input order is
// kept. The result is never nil so it serialises as an empty list.
func HighStress(samples []model.HealthSample, travel model.TravelWindow, threshold float64) []model.CorrelatedSample {
	out := []model.CorrelatedSample{}
	for _, s := range samples {
		if s.Kind != model.KindStress || s.Value < threshold || !travel.Contains(s.Timestamp) {
			continue
		}
		out = append(out, model.CorrelatedSample{Timestamp: s.Timestamp, Value: s.Value})
	}
	return out
}

// ByPhase groups high-stress samples by the flight and transit intervals
// they fall in. A sample on a shared boundary counts toward every interval
// containing it. Samples outside all intervals are reported in a trailing
// ground row, which is always present.
func ByPhase(high []model.CorrelatedSample, phases []model.PhaseInterval) []model.PhaseStress {
	rows := make([]model.PhaseStress, len(phases)+1)
	for i, p := range phases {
		rows[i].Interval = p
	}
	ground := &rows[len(phases)]
	ground.Interval = model.PhaseInterval{Kind: model.PhaseGround}

	for _, s := range high {
		matched := false
		for i := range phases {
			if !phases[i].Contains(s.Timestamp) {
				continue
			}
			matched = true
			record(&rows[i], s.Value)
		}
		if !matched {
			record(ground, s.Value)
		}
	}
	return rows
}

func record(row *model.PhaseStress, value float64) {
	if row.Count == 0 || value > row.Peak {
		row.Peak = value
	}
	row.Count++
}
