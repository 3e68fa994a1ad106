// Package report renders an analysis as text for the terminal, either
// styled with lipgloss or plain for pipes and files.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/cdtdelta/stresstrip/internal/model"
)

// DefaultMaxReadings caps the high-stress table.
const DefaultMaxReadings = 50

const (
	dateTimeLayout = "2006-01-02 15:04"
	timeLayout     = "15:04"
)

var (
	colorTitle = lipgloss.Color("12")  // bright blue
	colorHigh  = lipgloss.Color("9")   // bright red
	colorDim   = lipgloss.Color("240") // gray
)

// Options controls rendering.
type Options struct {
	Styled      bool
	MaxReadings int
}

type renderer struct {
	opts    Options
	loc     *time.Location
	title   lipgloss.Style
	heading lipgloss.Style
	label   lipgloss.Style
	high    lipgloss.Style
	dim     lipgloss.Style
	b       strings.Builder
}

// Render returns the report for a.
func Render(a *model.Analysis, opts Options) string {
	if opts.MaxReadings <= 0 {
		opts.MaxReadings = DefaultMaxReadings
	}
	r := &renderer{
		opts:    opts,
		loc:     a.Location,
		title:   lipgloss.NewStyle().Foreground(colorTitle).Bold(true),
		heading: lipgloss.NewStyle().Bold(true).Underline(true),
		label:   lipgloss.NewStyle().Foreground(colorDim).Width(14),
		high:    lipgloss.NewStyle().Foreground(colorHigh).Bold(true),
		dim:     lipgloss.NewStyle().Foreground(colorDim),
	}
	if r.loc == nil {
		r.loc = time.UTC
	}

	r.header(a)
	r.events(a.Flight.Events)
	r.readings(a.Correlated, a.Threshold)
	r.phases(a.PhaseStress)
	r.insight(a.Insight)
	return r.b.String()
}

// Write renders a to w.
func Write(w io.Writer, a *model.Analysis, opts Options) error {
	_, err := io.WriteString(w, Render(a, opts))
	return err
}

func (r *renderer) style(s lipgloss.Style, text string) string {
	if !r.opts.Styled {
		return text
	}
	return s.Render(text)
}

func (r *renderer) field(name, value string) {
	if r.opts.Styled {
		fmt.Fprintf(&r.b, "%s%s\n", r.label.Render(name), value)
		return
	}
	fmt.Fprintf(&r.b, "%-14s%s\n", name, value)
}

func (r *renderer) section(name string) {
	fmt.Fprintf(&r.b, "\n%s\n", r.style(r.heading, name))
}

func (r *renderer) format(ms int64, layout string) string {
	return model.TimeOf(ms, r.loc).Format(layout)
}

func (r *renderer) header(a *model.Analysis) {
	r.b.WriteString(r.style(r.title, "Stress and flight report"))
	r.b.WriteByte('\n')
	r.field("Session", a.SessionID)
	r.field("Timezone", r.loc.String())
	r.field("Travel day", fmt.Sprintf("%s to %s",
		r.format(a.Travel.DayStart, dateTimeLayout), r.format(a.Travel.DayEnd, dateTimeLayout)))
	r.field("Threshold", formatValue(a.Threshold))
	r.field("Samples", fmt.Sprintf("%d", len(a.Samples)))
	r.field("High stress", fmt.Sprintf("%d", len(a.Correlated)))

	if a.Flight.Summary != "" {
		r.section("Flight summary")
		r.b.WriteString(strings.TrimSpace(a.Flight.Summary))
		r.b.WriteByte('\n')
	}
}

func (r *renderer) events(events []model.FlightEvent) {
	r.section("Events")
	if len(events) == 0 {
		r.b.WriteString(r.style(r.dim, "  none"))
		r.b.WriteByte('\n')
		return
	}
	for _, e := range events {
		line := fmt.Sprintf("  %s  %s", r.format(e.Timestamp, dateTimeLayout), e.Name)
		if e.Details != "" {
			line += "  " + r.style(r.dim, e.Details)
		}
		r.b.WriteString(line)
		r.b.WriteByte('\n')
	}
}

func (r *renderer) readings(high []model.CorrelatedSample, threshold float64) {
	r.section(fmt.Sprintf("High-stress readings (>= %s)", formatValue(threshold)))
	if len(high) == 0 {
		r.b.WriteString(r.style(r.dim, "  none during the travel day"))
		r.b.WriteByte('\n')
		return
	}
	shown := high
	if len(shown) > r.opts.MaxReadings {
		shown = shown[:r.opts.MaxReadings]
	}
	for _, s := range shown {
		fmt.Fprintf(&r.b, "  %s  %s\n", r.format(s.Timestamp, dateTimeLayout), r.style(r.high, formatValue(s.Value)))
	}
	if more := len(high) - len(shown); more > 0 {
		r.b.WriteString(r.style(r.dim, fmt.Sprintf("  ... %d more", more)))
		r.b.WriteByte('\n')
	}
}

func (r *renderer) phases(rows []model.PhaseStress) {
	if len(rows) == 0 {
		return
	}
	r.section("Stress by phase")
	for _, row := range rows {
		name, span := r.phaseName(row.Interval), ""
		if row.Interval.Kind != model.PhaseGround {
			span = fmt.Sprintf("%s-%s", r.format(row.Interval.Start, timeLayout), r.format(row.Interval.End, timeLayout))
		}
		line := fmt.Sprintf("  %-10s %-11s %3d high", name, span, row.Count)
		if row.Count > 0 {
			line += "  peak " + r.style(r.high, formatValue(row.Peak))
		}
		r.b.WriteString(line)
		r.b.WriteByte('\n')
	}
}

func (r *renderer) phaseName(p model.PhaseInterval) string {
	switch p.Kind {
	case model.PhaseFlight:
		return fmt.Sprintf("Flight %d", p.Ordinal)
	case model.PhaseTransit:
		return fmt.Sprintf("Transit %d", p.Ordinal)
	default:
		return "Ground"
	}
}

func (r *renderer) insight(text string) {
	r.section("Insight")
	if strings.TrimSpace(text) == "" {
		r.b.WriteString(r.style(r.dim, "  not available"))
		r.b.WriteByte('\n')
		return
	}
	r.b.WriteString(strings.TrimSpace(text))
	r.b.WriteByte('\n')
}

func formatValue(v float64) string {
	return fmt.Sprintf("%g", v)
}
