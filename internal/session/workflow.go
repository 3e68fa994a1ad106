package session

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/cdtdelta/stresstrip/internal/archive"
	"github.com/cdtdelta/stresstrip/internal/flight"
	"github.com/cdtdelta/stresstrip/internal/model"
)

// ErrInsightStale is returned by MaybeInsight when the inputs changed while
// the request was in flight. The result is discarded and the state is idle
// again so the caller may trigger a fresh request.
var ErrInsightStale = errors.New("insight inputs changed during generation")

// FlightExtractor turns an itinerary document into the raw structured JSON
// that flight.Normalize accepts.
type FlightExtractor interface {
	ExtractFlight(ctx context.Context, doc []byte, mimeType string) ([]byte, error)
}

// InsightGenerator writes a narrative about high-stress samples given the
// flight chronology. The returned markdown is not interpreted.
type InsightGenerator interface {
	GenerateInsight(ctx context.Context, samples []model.CorrelatedSample, chronology string) (string, error)
}

// Workflow drives uploads and collaborator calls against a Session.
type Workflow struct {
	Session  *Session
	Flights  FlightExtractor
	Insights InsightGenerator
	// OnArchiveProgress, if set, receives the running count of archive members parsed.
	OnArchiveProgress func(members int)
}

// NewWorkflow wires a session to its collaborators.
func NewWorkflow(s *Session, flights FlightExtractor, insights InsightGenerator) *Workflow {
	return &Workflow{Session: s, Flights: flights, Insights: insights}
}

// UploadArchive extracts stress samples from a zip archive and makes them
// the session's sample stream. An archive with no compatible data returns
// ErrNoSamples and the previous samples are kept.
func (w *Workflow) UploadArchive(ctx context.Context, r io.ReaderAt, size int64) (*archive.ReadResult, error) {
	return w.upload(ctx, func() (*archive.ReadResult, error) {
		return archive.ReadSamples(r, size, w.archiveOptions())
	})
}

// UploadArchiveFile is UploadArchive for an archive on disk.
func (w *Workflow) UploadArchiveFile(ctx context.Context, path string) (*archive.ReadResult, error) {
	return w.upload(ctx, func() (*archive.ReadResult, error) {
		return archive.ReadFile(path, w.archiveOptions())
	})
}

func (w *Workflow) archiveOptions() archive.Options {
	return archive.Options{
		Logger:     w.Session.logger,
		MaxMembers: w.Session.maxMembers,
		OnProgress: w.OnArchiveProgress,
	}
}

func (w *Workflow) upload(ctx context.Context, read func() (*archive.ReadResult, error)) (*archive.ReadResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := w.Session.beginUpload(); err != nil {
		return nil, err
	}
	defer w.Session.endUpload()

	logger := w.Session.logger
	result, err := read()
	if err != nil {
		return nil, err
	}
	if err := w.Session.SetSamples(result.Samples); err != nil {
		logger.Info("Archive contained no stress samples",
			zap.Int("members", result.Members),
			zap.Int("skipped", result.SkippedMembers))
		return result, err
	}

	logger.Info("Loaded stress samples",
		zap.String("session", w.Session.id),
		zap.Int("samples", len(result.Samples)),
		zap.Int("members", result.Members),
		zap.Bool("truncated", result.Truncated))
	return result, nil
}

// UploadItinerary sends an itinerary document to the flight collaborator,
// normalizes the result and replaces the session's flight data. Any failure
// leaves the previous flight data and visible window in place.
func (w *Workflow) UploadItinerary(ctx context.Context, doc []byte, mimeType string) (*model.FlightData, error) {
	if w.Flights == nil {
		return nil, errors.New("no flight extractor configured")
	}
	if err := w.Session.beginUpload(); err != nil {
		return nil, err
	}
	defer w.Session.endUpload()

	logger := w.Session.logger
	raw, err := w.Flights.ExtractFlight(ctx, doc, mimeType)
	if err != nil {
		logger.Error("Flight extraction failed", zap.Error(err))
		return nil, fmt.Errorf("extracting flight data: %w", err)
	}

	fd, err := w.loadFlightJSON(raw)
	if err != nil {
		logger.Error("Flight data rejected", zap.Error(err))
		return nil, err
	}
	return fd, nil
}

// LoadFlightJSON normalizes already-extracted flight JSON into the session.
// It returns ErrBusy while another upload is running.
func (w *Workflow) LoadFlightJSON(raw []byte) (*model.FlightData, error) {
	if err := w.Session.beginUpload(); err != nil {
		return nil, err
	}
	defer w.Session.endUpload()
	return w.loadFlightJSON(raw)
}

func (w *Workflow) loadFlightJSON(raw []byte) (*model.FlightData, error) {
	fd, err := flight.Normalize(raw)
	if err != nil {
		return nil, err
	}
	if err := w.Session.SetFlightData(fd); err != nil {
		return nil, err
	}
	w.Session.logger.Info("Loaded flight data",
		zap.String("session", w.Session.id),
		zap.Int("events", len(fd.Events)))
	return fd, nil
}

// MaybeInsight requests an insight if samples and flight data are both
// loaded and no insight exists or is loading for them. started reports
// whether a request was issued. A failed request moves the insight to
// InsightUnavailable; the chart and correlation are not affected.
func (w *Workflow) MaybeInsight(ctx context.Context) (text string, started bool, err error) {
	s := w.Session
	if w.Insights == nil {
		return "", false, nil
	}

	s.mu.Lock()
	if len(s.samples) == 0 || s.flight == nil || s.insightState != InsightIdle {
		s.mu.Unlock()
		return "", false, nil
	}
	high, err := s.correlatedLocked()
	if err != nil {
		s.mu.Unlock()
		return "", false, err
	}
	chronology := flight.Chronology(s.flight.Events)
	gen := s.insightGen
	s.insightState = InsightLoading
	s.mu.Unlock()

	s.logger.Info("Requesting insight", zap.Int("highStressSamples", len(high)))
	text, err = w.Insights.GenerateInsight(ctx, high, chronology)

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.insightGen {
		s.insightState = InsightIdle
		return "", true, ErrInsightStale
	}
	if err != nil {
		s.insightState = InsightUnavailable
		s.logger.Error("Insight generation failed", zap.Error(err))
		return "", true, fmt.Errorf("generating insight: %w", err)
	}
	s.insight = text
	s.insightState = InsightReady
	return text, true, nil
}
