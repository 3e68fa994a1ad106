package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cdtdelta/stresstrip/internal/model"
	"github.com/cdtdelta/stresstrip/internal/session"
)

func utc(h, m int) int64 {
	return time.Date(2024, 1, 1, h, m, 0, 0, time.UTC).UnixMilli()
}

func loadedSession(t *testing.T) *session.Session {
	t.Helper()
	s := session.New(session.Options{Location: time.UTC})
	require.NoError(t, s.SetSamples([]model.HealthSample{
		{Timestamp: utc(9, 0), Value: 40, Kind: model.KindStress},
		{Timestamp: utc(12, 0), Value: 90, Kind: model.KindStress},
	}))
	require.NoError(t, s.SetFlightData(&model.FlightData{Events: []model.FlightEvent{
		{Name: "Takeoff (Leg 1)", Timestamp: utc(10, 0)},
		{Name: "Landing (Leg 1)", Timestamp: utc(14, 0)},
	}}))
	return s
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func TestNewRequiresFlightData(t *testing.T) {
	_, err := New(session.New(session.Options{}), Options{})
	assert.ErrorIs(t, err, session.ErrNoFlightData)
}

func TestMoveEdges(t *testing.T) {
	s := loadedSession(t)
	m, err := New(s, Options{})
	require.NoError(t, err)
	assert.Equal(t, model.VisibleWindow{Start: utc(7, 0), End: utc(17, 0)}, m.Window())

	m = press(t, m, runes("l"), tea.KeyMsg{Type: tea.KeyShiftRight})

	want := model.VisibleWindow{Start: utc(7, 15), End: utc(17, 15)}
	assert.Equal(t, want, m.Window())
	got, ok := s.VisibleWindow()
	assert.True(t, ok)
	assert.Equal(t, want, got)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyLeft}, runes("H"))
	assert.Equal(t, model.VisibleWindow{Start: utc(7, 0), End: utc(17, 0)}, m.Window())
}

func TestEndNeverBeforeStart(t *testing.T) {
	m, err := New(loadedSession(t), Options{Step: time.Hour})
	require.NoError(t, err)

	for i := 0; i < 12; i++ {
		m = press(t, m, runes("H"))
	}

	assert.Equal(t, m.Window().Start, m.Window().End)
	assert.Equal(t, utc(7, 0), m.Window().Start)
}

func TestZoomAndReset(t *testing.T) {
	m, err := New(loadedSession(t), Options{Step: time.Hour})
	require.NoError(t, err)

	m = press(t, m, runes("+"))
	assert.Equal(t, model.VisibleWindow{Start: utc(8, 0), End: utc(16, 0)}, m.Window())

	for i := 0; i < 6; i++ {
		m = press(t, m, runes("+"))
	}
	assert.Equal(t, m.Window().Start, m.Window().End)

	m = press(t, m, runes("-"), runes("r"))
	assert.Equal(t, model.VisibleWindow{Start: utc(7, 0), End: utc(17, 0)}, m.Window())
}

func TestQuit(t *testing.T) {
	m, err := New(loadedSession(t), Options{})
	require.NoError(t, err)

	_, cmd := m.Update(runes("q"))

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestViewShowsMarkersAndRange(t *testing.T) {
	m, err := New(loadedSession(t), Options{})
	require.NoError(t, err)
	m = press(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})

	out := m.View()

	assert.Contains(t, out, "2024-01-01 07:00 to 2024-01-01 17:00")
	assert.Contains(t, out, "Takeoff (Leg 1)")
	assert.Contains(t, out, "Landing (Leg 1)")
	assert.Contains(t, out, "█")
}

func TestColumnsKeepPeakPerSlot(t *testing.T) {
	m, err := New(loadedSession(t), Options{})
	require.NoError(t, err)

	cols := m.columns(10)

	assert.Len(t, cols, 10)
	assert.Equal(t, 90.0, cols[m.column(utc(12, 0), 10)])
	assert.Equal(t, 40.0, cols[m.column(utc(9, 0), 10)])
	assert.Equal(t, -1.0, cols[9])
}
