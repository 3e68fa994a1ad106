// Package tui is a terminal explorer for the visible chart window of a
// loaded session.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/cdtdelta/stresstrip/internal/chart"
	"github.com/cdtdelta/stresstrip/internal/model"
	"github.com/cdtdelta/stresstrip/internal/session"
)

const (
	// DefaultStep is how far one key press moves a window edge.
	DefaultStep = 15 * time.Minute

	chartHeight = 10
	axisWidth   = 4
	maxStress   = 100.0
)

// Options configures the explorer.
type Options struct {
	Step time.Duration
}

// Model is the bubbletea model for the explorer.
type Model struct {
	session *session.Session
	step    int64
	view    chart.View
	err     error
	help    help.Model
	width   int
	height  int
}

// New builds an explorer over s. The session must already hold flight data.
func New(s *session.Session, opts Options) (Model, error) {
	if opts.Step <= 0 {
		opts.Step = DefaultStep
	}
	v, err := s.Chart()
	if err != nil {
		return Model{}, err
	}
	return Model{
		session: s,
		step:    opts.Step.Milliseconds(),
		view:    v,
		help:    help.New(),
		width:   80,
	}, nil
}

// Run starts the explorer and blocks until it exits.
func Run(s *session.Session, opts Options) error {
	m, err := New(s, opts)
	if err != nil {
		return err
	}
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles key presses by editing the session's visible window.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		w := m.view.Window
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.StartEarlier):
			m.apply(m.session.SetVisibleStart(w.Start - m.step))
		case key.Matches(msg, keys.StartLater):
			m.apply(m.session.SetVisibleStart(w.Start + m.step))
		case key.Matches(msg, keys.EndEarlier):
			m.apply(m.session.SetVisibleEnd(w.End - m.step))
		case key.Matches(msg, keys.EndLater):
			m.apply(m.session.SetVisibleEnd(w.End + m.step))
		case key.Matches(msg, keys.ZoomIn):
			m.zoom(w.Start+m.step, w.End-m.step)
		case key.Matches(msg, keys.ZoomOut):
			m.zoom(w.Start-m.step, w.End+m.step)
		case key.Matches(msg, keys.Reset):
			m.apply(m.session.ResetVisible())
		}
	}
	return m, nil
}

// zoom never lets the start pass the end.
func (m *Model) zoom(start, end int64) {
	if start > end {
		mid := m.view.Window.Start + (m.view.Window.End-m.view.Window.Start)/2
		start, end = mid, mid
	}
	if _, err := m.session.SetVisibleStart(start); err != nil {
		m.err = err
		return
	}
	m.apply(m.session.SetVisibleEnd(end))
}

func (m *Model) apply(v chart.View, err error) {
	if err != nil {
		m.err = err
		return
	}
	m.err = nil
	m.view = v
}

// Window returns the window currently shown.
func (m Model) Window() model.VisibleWindow {
	return m.view.Window
}

// View renders the title, the bar chart, the phase strip and the markers.
func (m Model) View() string {
	loc := m.session.Location()
	w := m.view.Window
	cols := m.chartWidth()

	title := styleTitle.Render(fmt.Sprintf("%s to %s  (%s)",
		model.TimeOf(w.Start, loc).Format("2006-01-02 15:04"),
		model.TimeOf(w.End, loc).Format("2006-01-02 15:04"),
		loc))

	body := lipgloss.JoinVertical(lipgloss.Left,
		m.renderBars(cols),
		m.renderPhases(cols),
		m.renderMarkers(),
	)

	parts := []string{title, stylePanelBorder.Render(body)}
	if m.err != nil {
		parts = append(parts, styleError.Render("Error: "+m.err.Error()))
	}
	parts = append(parts, styleStatusBar.Render(m.help.View(keys)))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) chartWidth() int {
	w := m.width - axisWidth - 4
	if w < 10 {
		w = 10
	}
	return w
}

// column maps ts onto one of cols columns of the visible window.
func (m Model) column(ts int64, cols int) int {
	w := m.view.Window
	span := w.End - w.Start + 1
	c := int((ts - w.Start) * int64(cols) / span)
	return min(max(c, 0), cols-1)
}

// columns folds buckets into cols slots, keeping the highest value per slot.
func (m Model) columns(cols int) []float64 {
	out := make([]float64, cols)
	for i := range out {
		out[i] = -1
	}
	for _, b := range m.view.Buckets {
		if b.Stress == nil {
			continue
		}
		c := m.column(b.Minute, cols)
		out[c] = max(out[c], *b.Stress)
	}
	return out
}

func (m Model) renderBars(cols int) string {
	values := m.columns(cols)
	threshold := m.session.Threshold()

	var b strings.Builder
	for row := chartHeight; row >= 1; row-- {
		axis := "    "
		if row == chartHeight {
			axis = fmt.Sprintf("%3.0f ", maxStress)
		} else if row == 1 {
			axis = "  0 "
		}
		b.WriteString(styleAxis.Render(axis))

		level := float64(row) / chartHeight * maxStress
		for _, v := range values {
			switch {
			case v < 0 || v < level-maxStress/chartHeight/2:
				b.WriteByte(' ')
			case v >= threshold:
				b.WriteString(styleBarHigh.Render("█"))
			default:
				b.WriteString(styleBar.Render("█"))
			}
		}
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) renderPhases(cols int) string {
	strip := make([]string, cols)
	for i := range strip {
		strip[i] = " "
	}
	for _, p := range m.view.Phases {
		glyph := styleFlight.Render("▀")
		if p.Kind == model.PhaseTransit {
			glyph = styleTransit.Render("▀")
		}
		from, to := m.column(p.Start, cols), m.column(p.End, cols)
		for c := from; c <= to; c++ {
			strip[c] = glyph
		}
	}
	return strings.Repeat(" ", axisWidth) + strings.Join(strip, "")
}

func (m Model) renderMarkers() string {
	if len(m.view.Markers) == 0 {
		return styleAxis.Render("no events in window")
	}
	lines := make([]string, 0, len(m.view.Markers))
	for _, mk := range m.view.Markers {
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color(mk.Color)).Render("●")
		lines = append(lines, fmt.Sprintf("%s %s  %s", dot, mk.Label, mk.Name))
	}
	return strings.Join(lines, "\n")
}
