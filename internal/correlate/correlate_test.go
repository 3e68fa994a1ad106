package correlate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cdtdelta/stresstrip/internal/model"
)

func utc(y int, m time.Month, d, h, mi int) int64 {
	return model.Millis(time.Date(y, m, d, h, mi, 0, 0, time.UTC))
}

var jan1 = model.TravelWindow{
	DayStart: utc(2024, 1, 1, 0, 0),
	DayEnd:   utc(2024, 1, 2, 0, 0) - 1,
}

func stress(ts int64, v float64) model.HealthSample {
	return model.HealthSample{Timestamp: ts, Value: v, Kind: model.KindStress}
}

func TestHighStress_SingleFlightScenario(t *testing.T) {
	noon := utc(2024, 1, 1, 12, 0)
	samples := []model.HealthSample{stress(noon, 90), stress(noon, 70)}

	got := HighStress(samples, jan1, DefaultThreshold)

	assert.Equal(t, []model.CorrelatedSample{{Timestamp: noon, Value: 90}}, got)
}

func TestHighStress_Boundaries(t *testing.T) {
	samples := []model.HealthSample{
		stress(jan1.DayStart-1, 95),
		stress(jan1.DayStart, 80),
		stress(jan1.DayStart+1, 79.99),
		stress(jan1.DayEnd, 100),
		stress(jan1.DayEnd+1, 99),
	}

	got := HighStress(samples, jan1, DefaultThreshold)

	require.Len(t, got, 2)
	assert.Equal(t, jan1.DayStart, got[0].Timestamp)
	assert.Equal(t, jan1.DayEnd, got[1].Timestamp)
}

func TestHighStress_IgnoresOtherKinds(t *testing.T) {
	samples := []model.HealthSample{
		{Timestamp: utc(2024, 1, 1, 9, 0), Value: 120, Kind: "heart_rate"},
		stress(utc(2024, 1, 1, 9, 1), 85),
	}

	got := HighStress(samples, jan1, DefaultThreshold)

	require.Len(t, got, 1)
	assert.Equal(t, float64(85), got[0].Value)
}

func TestHighStress_NeverExceedsBounds(t *testing.T) {
	var samples []model.HealthSample
	for ts := jan1.DayStart - 6*time.Hour.Milliseconds(); ts < jan1.DayEnd+6*time.Hour.Milliseconds(); ts += 7 * time.Minute.Milliseconds() {
		samples = append(samples, stress(ts, float64(ts/time.Minute.Milliseconds()%101)))
	}

	got := HighStress(samples, jan1, DefaultThreshold)

	require.NotEmpty(t, got)
	for i, s := range got {
		assert.GreaterOrEqual(t, s.Value, float64(DefaultThreshold))
		assert.True(t, jan1.Contains(s.Timestamp))
		if i > 0 {
			assert.LessOrEqual(t, got[i-1].Timestamp, s.Timestamp)
		}
	}
}

func TestHighStress_EmptyIsNotNil(t *testing.T) {
	got := HighStress(nil, jan1, DefaultThreshold)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestByPhase(t *testing.T) {
	phases := []model.PhaseInterval{
		{Kind: model.PhaseFlight, Ordinal: 1, Start: 100, End: 200},
		{Kind: model.PhaseTransit, Ordinal: 1, Start: 200, End: 300},
	}
	high := []model.CorrelatedSample{
		{Timestamp: 50, Value: 81},
		{Timestamp: 150, Value: 90},
		{Timestamp: 160, Value: 85},
		{Timestamp: 200, Value: 88},
		{Timestamp: 250, Value: 82},
	}

	rows := ByPhase(high, phases)

	require.Len(t, rows, 3)
	assert.Equal(t, model.PhaseFlight, rows[0].Interval.Kind)
	assert.Equal(t, 3, rows[0].Count)
	assert.Equal(t, float64(90), rows[0].Peak)
	assert.Equal(t, 2, rows[1].Count)
	assert.Equal(t, float64(88), rows[1].Peak)
	assert.Equal(t, model.PhaseGround, rows[2].Interval.Kind)
	assert.Equal(t, 1, rows[2].Count)
	assert.Equal(t, float64(81), rows[2].Peak)
}

func TestByPhase_NoPhases(t *testing.T) {
	rows := ByPhase(nil, nil)
	require.Len(t, rows, 1)
	assert.Equal(t, model.PhaseGround, rows[0].Interval.Kind)
	assert.Zero(t, rows[0].Count)
}
