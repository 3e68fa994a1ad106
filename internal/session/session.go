// Package session holds the mutable state of one analysis: the extracted
// samples, the normalized flight data, the visible chart window and the
// insight status. Components read and mutate it through methods; there is
// no package-level state.
package session

import (
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cdtdelta/stresstrip/internal/archive"
	"github.com/cdtdelta/stresstrip/internal/chart"
	"github.com/cdtdelta/stresstrip/internal/correlate"
	"github.com/cdtdelta/stresstrip/internal/model"
	"github.com/cdtdelta/stresstrip/internal/window"
)

var (
	// ErrNoSamples is returned when an archive yields no compatible stress data.
	ErrNoSamples = errors.New("no compatible stress data found in archive")
	// ErrNoFlightData is returned by reads that need flight events before
	// an itinerary has been loaded.
	ErrNoFlightData = errors.New("no flight data loaded")
	// ErrBusy is returned when an upload is attempted while another is running.
	ErrBusy = errors.New("another upload is in progress")
)

// InsightState tracks the insight collaborator for the current inputs.
type InsightState string

const (
	InsightIdle        InsightState = "idle"
	InsightLoading     InsightState = "loading"
	InsightReady       InsightState = "ready"
	InsightUnavailable InsightState = "unavailable"
)

// Options configures a new Session. Zero values fall back to the defaults.
type Options struct {
	Location   *time.Location
	Threshold  float64
	Padding    time.Duration
	MaxMembers int
	Logger     *zap.Logger
}

// Session is the state container for one analysis. It is safe for
// concurrent use.
type Session struct {
	id         string
	loc        *time.Location
	threshold  float64
	padding    time.Duration
	maxMembers int
	logger     *zap.Logger

	mu           sync.Mutex
	samples      []model.HealthSample
	flight       *model.FlightData
	visible      model.VisibleWindow
	insight      string
	insightState InsightState
	insightGen   int
	busy         bool
}

// New creates an empty session.
func New(opts Options) *Session {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Threshold <= 0 {
		opts.Threshold = correlate.DefaultThreshold
	}
	if opts.Padding <= 0 {
		opts.Padding = window.DefaultPadding
	}
	if opts.MaxMembers <= 0 {
		opts.MaxMembers = archive.MaxMembers
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Session{
		id:           uuid.NewString(),
		loc:          opts.Location,
		threshold:    opts.Threshold,
		padding:      opts.Padding,
		maxMembers:   opts.MaxMembers,
		logger:       opts.Logger,
		insightState: InsightIdle,
	}
}

// ID returns the session's unique identifier, used as the export key.
func (s *Session) ID() string { return s.id }

// Location returns the time zone used for travel days and chart labels.
func (s *Session) Location() *time.Location { return s.loc }

// Threshold returns the stress value at or above which a sample counts as high.
func (s *Session) Threshold() float64 { return s.threshold }

// Logger returns the session's logger.
func (s *Session) Logger() *zap.Logger { return s.logger }

// Padding returns the margin added around the flight events for the initial chart window.
func (s *Session) Padding() time.Duration { return s.padding }

// MaxMembers returns how many qualifying archive members an upload parses.
func (s *Session) MaxMembers() int { return s.maxMembers }

// SetSamples replaces the sample stream. An empty stream is rejected and
// leaves the previous samples in place.
func (s *Session) SetSamples(samples []model.HealthSample) error {
	if len(samples) == 0 {
		return ErrNoSamples
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.samples = slices.Clone(samples)
	s.clearInsightLocked()
	return nil
}

// SetFlightData replaces the flight data wholesale and reseeds the visible
// window around its events. Data without events is rejected with
// window.ErrNoEvents and the session keeps its previous flight state.
func (s *Session) SetFlightData(fd *model.FlightData) error {
	if fd == nil {
		return window.ErrNoEvents
	}
	visible, err := window.InitialVisible(fd.Events, s.padding)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cp := &model.FlightData{Summary: fd.Summary, Events: slices.Clone(fd.Events)}
	s.flight = cp
	s.visible = visible
	s.clearInsightLocked()
	return nil
}

// Samples returns a copy of the current sample stream.
func (s *Session) Samples() []model.HealthSample {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.samples)
}

// FlightData returns a copy of the current flight data, or nil.
func (s *Session) FlightData() *model.FlightData {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.flight == nil {
		return nil
	}
	return &model.FlightData{Summary: s.flight.Summary, Events: slices.Clone(s.flight.Events)}
}

// TravelWindow derives the calendar-day travel window from the flight events.
func (s *Session) TravelWindow() (model.TravelWindow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.flight == nil {
		return model.TravelWindow{}, ErrNoFlightData
	}
	return window.Travel(s.flight.Events, s.loc)
}

// Correlated returns the high-stress samples inside the travel window.
func (s *Session) Correlated() ([]model.CorrelatedSample, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.correlatedLocked()
}

func (s *Session) correlatedLocked() ([]model.CorrelatedSample, error) {
	if s.flight == nil {
		return nil, ErrNoFlightData
	}
	tw, err := window.Travel(s.flight.Events, s.loc)
	if err != nil {
		return nil, err
	}
	return correlate.HighStress(s.samples, tw, s.threshold), nil
}

// PhaseStress summarises the high-stress samples per flight and transit interval.
func (s *Session) PhaseStress() ([]model.PhaseStress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	high, err := s.correlatedLocked()
	if err != nil {
		return nil, err
	}
	return correlate.ByPhase(high, chart.Phases(s.flight.Events, s.loc)), nil
}

// VisibleWindow returns the chart window; ok is false before flight data arrives.
func (s *Session) VisibleWindow() (model.VisibleWindow, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible, s.flight != nil
}

// Chart derives the chart for the current visible window.
func (s *Session) Chart() (chart.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.flight == nil {
		return chart.View{}, ErrNoFlightData
	}
	return s.viewLocked(), nil
}

// SetVisibleStart moves the start of the visible window. If the edit leaves
// the window inverted the end is pulled up to the new start.
func (s *Session) SetVisibleStart(ts int64) (chart.View, error) {
	return s.editVisible(func(w *model.VisibleWindow) { w.Start = ts })
}

// SetVisibleEnd moves the end of the visible window. An end before the
// current start is clamped to the start.
func (s *Session) SetVisibleEnd(ts int64) (chart.View, error) {
	return s.editVisible(func(w *model.VisibleWindow) { w.End = ts })
}

// ResetVisible restores the window seeded from the flight events.
func (s *Session) ResetVisible() (chart.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.flight == nil {
		return chart.View{}, ErrNoFlightData
	}
	visible, err := window.InitialVisible(s.flight.Events, s.padding)
	if err != nil {
		return chart.View{}, err
	}
	s.visible = visible
	return s.viewLocked(), nil
}

func (s *Session) editVisible(edit func(*model.VisibleWindow)) (chart.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.flight == nil {
		return chart.View{}, ErrNoFlightData
	}
	w := s.visible
	edit(&w)
	s.visible = window.Clamp(w)
	return s.viewLocked(), nil
}

func (s *Session) viewLocked() chart.View {
	return chart.Build(s.samples, s.flight.Events, s.visible, s.loc)
}

// Insight returns the current insight text and its state.
func (s *Session) Insight() (string, InsightState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insight, s.insightState
}

// clearInsightLocked drops the insight for the previous inputs. A request
// already in flight keeps the loading state; its result is discarded when
// it returns.
func (s *Session) clearInsightLocked() {
	s.insightGen++
	s.insight = ""
	if s.insightState != InsightLoading {
		s.insightState = InsightIdle
	}
}

// Analysis returns a snapshot of everything derived from the current inputs.
func (s *Session) Analysis() (*model.Analysis, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.flight == nil {
		return nil, ErrNoFlightData
	}
	tw, err := window.Travel(s.flight.Events, s.loc)
	if err != nil {
		return nil, err
	}
	phases := chart.Phases(s.flight.Events, s.loc)
	high := correlate.HighStress(s.samples, tw, s.threshold)

	return &model.Analysis{
		SessionID:   s.id,
		Timezone:    s.loc.String(),
		Location:    s.loc,
		Threshold:   s.threshold,
		Samples:     slices.Clone(s.samples),
		Flight:      model.FlightData{Summary: s.flight.Summary, Events: slices.Clone(s.flight.Events)},
		Travel:      tw,
		Visible:     s.visible,
		Phases:      phases,
		Correlated:  high,
		PhaseStress: correlate.ByPhase(high, phases),
		Insight:     s.insight,
		CreatedAt:   time.Now(),
	}, nil
}

// beginUpload marks the upload surface busy.
func (s *Session) beginUpload() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return ErrBusy
	}
	s.busy = true
	return nil
}

func (s *Session) endUpload() {
	s.mu.Lock()
	s.busy = false
	s.mu.Unlock()
}

// Busy reports whether an upload is in progress.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}
