package chart

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cdtdelta/stresstrip/internal/model"
)

func utc(h, mi, s int) int64 {
	return model.Millis(time.Date(2024, 1, 1, h, mi, s, 0, time.UTC))
}

func stress(ts int64, v float64) model.HealthSample {
	return model.HealthSample{Timestamp: ts, Value: v, Kind: model.KindStress}
}

func ev(name string, ts int64) model.FlightEvent {
	return model.FlightEvent{Name: name, Timestamp: ts}
}

var wide = model.VisibleWindow{Start: utc(0, 0, 0), End: utc(23, 59, 59)}

func TestBuckets_LastWriteWinsWithinMinute(t *testing.T) {
	samples := []model.HealthSample{
		stress(utc(10, 0, 5), 40),
		stress(utc(10, 0, 30), 60),
		stress(utc(10, 1, 0), 70),
		stress(utc(10, 0, 59), 50),
	}

	got := Buckets(samples, wide, time.UTC)

	require.Len(t, got, 2)
	assert.Equal(t, utc(10, 0, 0), got[0].Minute)
	assert.Equal(t, "10:00", got[0].Label)
	require.NotNil(t, got[0].Stress)
	assert.Equal(t, float64(50), *got[0].Stress)
	assert.Equal(t, "10:01", got[1].Label)
	assert.Equal(t, float64(70), *got[1].Stress)
}

func TestBuckets_SortedByMinute(t *testing.T) {
	samples := []model.HealthSample{
		stress(utc(12, 0, 0), 1),
		stress(utc(9, 30, 0), 2),
		stress(utc(11, 15, 0), 3),
	}

	got := Buckets(samples, wide, time.UTC)

	require.Len(t, got, 3)
	assert.Equal(t, []string{"09:30", "11:15", "12:00"}, []string{got[0].Label, got[1].Label, got[2].Label})
}

func TestBuckets_InclusiveWindowOnRawTimestamp(t *testing.T) {
	visible := model.VisibleWindow{Start: utc(10, 0, 30), End: utc(10, 5, 0)}
	samples := []model.HealthSample{
		stress(utc(10, 0, 29), 1),
		stress(utc(10, 0, 30), 2),
		stress(utc(10, 5, 0), 3),
		stress(utc(10, 5, 0)+1, 4),
	}

	got := Buckets(samples, visible, time.UTC)

	require.Len(t, got, 2)
	assert.Equal(t, float64(2), *got[0].Stress)
	assert.Equal(t, float64(3), *got[1].Stress)
}

func TestBuckets_Idempotent(t *testing.T) {
	var samples []model.HealthSample
	for i := 0; i < 300; i++ {
		samples = append(samples, stress(utc(8, 0, 0)+int64(i)*17_000, float64(i%100)))
	}

	first := Buckets(samples, wide, time.UTC)
	second := Buckets(samples, wide, time.UTC)

	assert.Equal(t, first, second)
}

func TestBuckets_LocalLabels(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	got := Buckets([]model.HealthSample{stress(utc(10, 0, 0), 1)}, wide, tokyo)

	require.Len(t, got, 1)
	assert.Equal(t, "19:00", got[0].Label)
}

func TestBuckets_LabelsCollideAcrossDays(t *testing.T) {
	day := 24 * time.Hour.Milliseconds()
	visible := model.VisibleWindow{Start: utc(0, 0, 0), End: utc(0, 0, 0) + 2*day}

	got := Buckets([]model.HealthSample{
		stress(utc(10, 0, 0), 1),
		stress(utc(10, 0, 0)+day, 2),
	}, visible, time.UTC)

	require.Len(t, got, 2)
	assert.Equal(t, got[0].Label, got[1].Label)
	assert.NotEqual(t, got[0].Minute, got[1].Minute)
}

func TestBuckets_Empty(t *testing.T) {
	got := Buckets(nil, wide, time.UTC)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestPhases_FlightTransitFlight(t *testing.T) {
	t1, t2, t3, t4 := utc(8, 0, 0), utc(10, 0, 0), utc(12, 0, 0), utc(15, 0, 0)
	events := []model.FlightEvent{
		ev("Takeoff (Leg 1)", t1),
		ev("Landing (Leg 1)", t2),
		ev("Transit Start", t2),
		ev("Transit End", t3),
		ev("Takeoff (Leg 2)", t3),
		ev("Landing (Leg 2)", t4),
	}

	got := Phases(events, time.UTC)

	require.Len(t, got, 3)
	assert.Equal(t, model.PhaseInterval{Kind: model.PhaseFlight, Ordinal: 1, Start: t1, End: t2, StartLabel: "08:00", EndLabel: "10:00"}, got[0])
	assert.Equal(t, model.PhaseInterval{Kind: model.PhaseTransit, Ordinal: 1, Start: t2, End: t3, StartLabel: "10:00", EndLabel: "12:00"}, got[1])
	assert.Equal(t, model.PhaseInterval{Kind: model.PhaseFlight, Ordinal: 2, Start: t3, End: t4, StartLabel: "12:00", EndLabel: "15:00"}, got[2])
}

func TestPhases_SortsBeforePairing(t *testing.T) {
	events := []model.FlightEvent{
		ev("LANDING", utc(14, 0, 0)),
		ev("takeoff", utc(10, 0, 0)),
	}

	got := Phases(events, time.UTC)

	require.Len(t, got, 1)
	assert.Equal(t, utc(10, 0, 0), got[0].Start)
	assert.Equal(t, utc(14, 0, 0), got[0].End)
}

func TestPhases_UnmatchedEvents(t *testing.T) {
	assert.Empty(t, Phases([]model.FlightEvent{ev("Landing (Leg 1)", utc(10, 0, 0))}, time.UTC))
	assert.Empty(t, Phases([]model.FlightEvent{ev("Takeoff (Leg 1)", utc(10, 0, 0))}, time.UTC))
	assert.Empty(t, Phases([]model.FlightEvent{ev("Transit End", utc(10, 0, 0))}, time.UTC))
	assert.Empty(t, Phases(nil, time.UTC))
}

func TestPhases_SecondTakeoffWhileOpenIsIgnored(t *testing.T) {
	events := []model.FlightEvent{
		ev("Takeoff", utc(8, 0, 0)),
		ev("Takeoff", utc(9, 0, 0)),
		ev("Landing", utc(11, 0, 0)),
	}

	got := Phases(events, time.UTC)

	require.Len(t, got, 1)
	assert.Equal(t, utc(8, 0, 0), got[0].Start)
}

func TestVisiblePhases_NumericFilter(t *testing.T) {
	// Two legs landing in the same displayed minute stay distinct.
	phases := []model.PhaseInterval{
		{Kind: model.PhaseFlight, Ordinal: 1, Start: utc(8, 0, 0), End: utc(10, 0, 10), EndLabel: "10:00"},
		{Kind: model.PhaseFlight, Ordinal: 2, Start: utc(9, 0, 0), End: utc(10, 0, 50), EndLabel: "10:00"},
		{Kind: model.PhaseTransit, Ordinal: 1, Start: utc(6, 0, 0), End: utc(9, 0, 0)},
	}
	visible := model.VisibleWindow{Start: utc(7, 0, 0), End: utc(10, 0, 30)}

	got := VisiblePhases(phases, visible)

	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].Ordinal)
}

func TestColor(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Takeoff (Leg 1)", "#ef4444"},
		{"TAKEOFF (LEG 2)", "#f97316"},
		{"Landing (Leg 2)", "#14b8a6"},
		{"Takeoff (Leg 3)", "#ec4899"},
		{"Landing (Leg 3)", "#0ea5e9"},
		{"Landing (Leg 1)", "#22c55e"},
		{"Transit Start", "#f59e0b"},
		{"Transit End", "#d97706"},
		{"Boarding", "#3b82f6"},
		{"Check-in", "#6366f1"},
		{"Leg 2 layover", NeutralColor},
		{"Gate change", NeutralColor},
		{"", NeutralColor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Color(tt.name))
		})
	}
}

func TestMarkers(t *testing.T) {
	events := []model.FlightEvent{
		ev("Landing (Leg 1)", utc(14, 0, 0)),
		ev("Takeoff (Leg 1)", utc(10, 0, 0)),
		ev("Boarding", utc(5, 0, 0)),
	}
	visible := model.VisibleWindow{Start: utc(7, 0, 0), End: utc(17, 0, 0)}

	got := Markers(events, visible, time.UTC)

	require.Len(t, got, 2)
	assert.Equal(t, "Takeoff (Leg 1)", got[0].Name)
	assert.Equal(t, "10:00", got[0].Label)
	assert.Equal(t, "#ef4444", got[0].Color)
	assert.Equal(t, "Landing (Leg 1)", got[1].Name)
}

func TestBuild(t *testing.T) {
	events := []model.FlightEvent{
		ev("Takeoff (Leg 1)", utc(10, 0, 0)),
		ev("Landing (Leg 1)", utc(14, 0, 0)),
	}
	samples := []model.HealthSample{stress(utc(12, 0, 0), 90), stress(utc(20, 0, 0), 85)}
	visible := model.VisibleWindow{Start: utc(7, 0, 0), End: utc(17, 0, 0)}

	view := Build(samples, events, visible, time.UTC)

	assert.Equal(t, visible, view.Window)
	assert.Len(t, view.Buckets, 1)
	assert.Len(t, view.Phases, 1)
	assert.Len(t, view.Markers, 2)

	narrowed := Build(samples, events, model.VisibleWindow{Start: utc(11, 0, 0), End: utc(17, 0, 0)}, time.UTC)
	assert.Empty(t, narrowed.Phases)
	assert.Len(t, narrowed.Markers, 1)
}
