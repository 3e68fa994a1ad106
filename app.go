package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/wailsapp/wails/v2/pkg/runtime"
	"go.uber.org/zap"

	"github.com/cdtdelta/stresstrip/internal/chart"
	"github.com/cdtdelta/stresstrip/internal/config"
	"github.com/cdtdelta/stresstrip/internal/csvexport"
	"github.com/cdtdelta/stresstrip/internal/database"
	"github.com/cdtdelta/stresstrip/internal/llm"
	"github.com/cdtdelta/stresstrip/internal/model"
	"github.com/cdtdelta/stresstrip/internal/session"
)

// App is the main application struct that Wails binds to the frontend.
// All exported methods become callable from JavaScript.
type App struct {
	ctx    context.Context
	cfg    *config.Config
	logger *zap.Logger
	wf     *session.Workflow

	// insights tracks background insight requests so shutdown can wait.
	insights sync.WaitGroup
}

// NewApp creates a new App instance with a fresh session.
func NewApp(cfg *config.Config, logger *zap.Logger) (*App, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	s := session.New(session.Options{
		Location:   loc,
		Threshold:  cfg.StressThreshold,
		Padding:    cfg.WindowPadding.Duration,
		MaxMembers: cfg.MaxMembers,
		Logger:     logger,
	})
	client := llm.New(cfg.LLMConfig(), logger)
	return &App{
		cfg:    cfg,
		logger: logger,
		wf:     session.NewWorkflow(s, client, client),
	}, nil
}

// startup is called when the app starts. The context is saved
// so we can call runtime methods (dialogs, events, etc.)
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
	a.wf.OnArchiveProgress = func(members int) {
		runtime.EventsEmit(a.ctx, "archive:progress", map[string]interface{}{
			"members": members, "message": fmt.Sprintf("Read %d archive members...", members),
		})
	}
}

// shutdown is called when the app is closing.
func (a *App) shutdown(ctx context.Context) {
	a.insights.Wait()
	_ = a.logger.Sync()
}

// -- Uploads --

// ArchiveInfo summarises an archive upload.
type ArchiveInfo struct {
	Path           string `json:"path"`
	Samples        int    `json:"samples"`
	Members        int    `json:"members"`
	SkippedMembers int    `json:"skippedMembers"`
	Excluded       int    `json:"excluded"`
	Truncated      bool   `json:"truncated"`
}

// OpenArchive opens a file dialog and loads stress samples from a wearable export.
func (a *App) OpenArchive() (*ArchiveInfo, error) {
	path, err := runtime.OpenFileDialog(a.ctx, runtime.OpenDialogOptions{
		Title: "Open Wearable Export",
		Filters: []runtime.FileFilter{
			{DisplayName: "Zip Archive (*.zip)", Pattern: "*.zip"},
			{DisplayName: "All Files (*.*)", Pattern: "*.*"},
		},
	})
	if err != nil {
		return nil, err
	}
	if path == "" {
		return nil, nil // user cancelled
	}

	result, err := a.wf.UploadArchiveFile(a.ctx, path)
	if err != nil {
		return nil, err
	}
	a.startInsight()

	return &ArchiveInfo{
		Path:           path,
		Samples:        len(result.Samples),
		Members:        result.Members,
		SkippedMembers: result.SkippedMembers,
		Excluded:       result.Excluded,
		Truncated:      result.Truncated,
	}, nil
}

// FlightInfo is the itinerary upload result with the freshly seeded chart.
type FlightInfo struct {
	Summary string              `json:"summary"`
	Events  []model.FlightEvent `json:"events"`
	Chart   *chart.View         `json:"chart"`
}

// OpenItinerary opens a file dialog and extracts flight events from an
// itinerary document. On failure the previous flight data is kept.
func (a *App) OpenItinerary() (*FlightInfo, error) {
	path, err := runtime.OpenFileDialog(a.ctx, runtime.OpenDialogOptions{
		Title: "Open Flight Itinerary",
		Filters: []runtime.FileFilter{
			{DisplayName: "Documents (*.pdf;*.png;*.jpg)", Pattern: "*.pdf;*.png;*.jpg;*.jpeg;*.webp"},
			{DisplayName: "All Files (*.*)", Pattern: "*.*"},
		},
	})
	if err != nil {
		return nil, err
	}
	if path == "" {
		return nil, nil
	}

	doc, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading itinerary: %w", err)
	}

	runtime.EventsEmit(a.ctx, "itinerary:progress", map[string]interface{}{
		"message": "Extracting flight events...",
	})
	fd, err := a.wf.UploadItinerary(a.ctx, doc, llm.MimeType(path, doc))
	if err != nil {
		return nil, err
	}
	view, err := a.wf.Session.Chart()
	if err != nil {
		return nil, err
	}
	a.startInsight()

	return &FlightInfo{Summary: fd.Summary, Events: fd.Events, Chart: &view}, nil
}

// -- Chart --

// GetChart returns the chart for the current visible window.
func (a *App) GetChart() (*chart.View, error) {
	return viewOrErr(a.wf.Session.Chart())
}

// SetWindowStart moves the start of the visible window (epoch ms).
func (a *App) SetWindowStart(ts int64) (*chart.View, error) {
	return viewOrErr(a.wf.Session.SetVisibleStart(ts))
}

// SetWindowEnd moves the end of the visible window (epoch ms).
func (a *App) SetWindowEnd(ts int64) (*chart.View, error) {
	return viewOrErr(a.wf.Session.SetVisibleEnd(ts))
}

// ResetWindow restores the window seeded around the flight events.
func (a *App) ResetWindow() (*chart.View, error) {
	return viewOrErr(a.wf.Session.ResetVisible())
}

func viewOrErr(v chart.View, err error) (*chart.View, error) {
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Correlation is the high-stress report for the travel day.
type Correlation struct {
	Travel      model.TravelWindow       `json:"travel"`
	Threshold   float64                  `json:"threshold"`
	Samples     []model.CorrelatedSample `json:"samples"`
	PhaseStress []model.PhaseStress      `json:"phaseStress"`
}

// GetCorrelation returns the high-stress samples inside the travel window.
func (a *App) GetCorrelation() (*Correlation, error) {
	an, err := a.wf.Session.Analysis()
	if err != nil {
		return nil, err
	}
	return &Correlation{
		Travel:      an.Travel,
		Threshold:   an.Threshold,
		Samples:     an.Correlated,
		PhaseStress: an.PhaseStress,
	}, nil
}

// -- Insight --

// InsightInfo is the insight text and where its request stands.
type InsightInfo struct {
	Text  string `json:"text"`
	State string `json:"state"`
}

// GetInsight returns the current insight.
func (a *App) GetInsight() InsightInfo {
	text, state := a.wf.Session.Insight()
	return InsightInfo{Text: text, State: string(state)}
}

// startInsight requests an insight in the background once both inputs are
// loaded. The frontend is told through "insight:done".
func (a *App) startInsight() {
	a.insights.Add(1)
	go func() {
		defer a.insights.Done()
		for {
			_, started, err := a.wf.MaybeInsight(a.ctx)
			if !started {
				return
			}
			if errors.Is(err, session.ErrInsightStale) {
				continue
			}
			info := a.GetInsight()
			payload := map[string]interface{}{"text": info.Text, "state": info.State}
			if err != nil {
				a.logger.Warn("Insight unavailable", zap.Error(err))
				payload["error"] = err.Error()
			}
			runtime.EventsEmit(a.ctx, "insight:done", payload)
			return
		}
	}()
}

// -- Export --

// ExportCSV writes samples, the visible series and events to a chosen directory.
func (a *App) ExportCSV() (string, error) {
	dir, err := runtime.OpenDirectoryDialog(a.ctx, runtime.OpenDialogOptions{
		Title:                "Export CSV To",
		CanCreateDirectories: true,
	})
	if err != nil {
		return "", err
	}
	if dir == "" {
		return "", nil
	}

	analysis, err := a.wf.Session.Analysis()
	if err != nil {
		return "", err
	}
	view, err := a.wf.Session.Chart()
	if err != nil {
		return "", err
	}
	if _, err := csvexport.WriteAnalysis(dir, analysis, view.Buckets); err != nil {
		return "", err
	}
	a.logger.Info("Exported CSV", zap.String("dir", dir))
	return dir, nil
}

// ExportDatabase writes the analysis to the configured store. For SQLite
// the user picks the file; PostgreSQL uses the configured DSN.
func (a *App) ExportDatabase() (string, error) {
	analysis, err := a.wf.Session.Analysis()
	if err != nil {
		return "", err
	}

	driver, dsn := a.cfg.Export.Driver, a.cfg.Export.DSN
	if driver == "sqlite" {
		dsn, err = runtime.SaveFileDialog(a.ctx, runtime.SaveDialogOptions{
			Title:            "Export Database As",
			DefaultDirectory: filepath.Dir(a.cfg.Export.DSN),
			DefaultFilename:  filepath.Base(a.cfg.Export.DSN),
			Filters: []runtime.FileFilter{
				{DisplayName: "SQLite Database (*.db)", Pattern: "*.db"},
			},
		})
		if err != nil {
			return "", err
		}
		if dsn == "" {
			return "", nil
		}
	}

	store, err := database.CreateStore(driver, dsn)
	if err != nil {
		return "", fmt.Errorf("creating database: %w", err)
	}
	defer store.Close()

	total := len(analysis.Samples)
	n, err := database.Export(store, analysis, func(count int) {
		runtime.EventsEmit(a.ctx, "export:progress", map[string]interface{}{
			"message": fmt.Sprintf("Inserted %d of %d samples...", count, total), "count": count, "total": total,
		})
	})
	if err != nil {
		return "", err
	}
	a.logger.Info("Exported analysis",
		zap.String("session", analysis.SessionID),
		zap.String("driver", driver),
		zap.Int("samples", n))
	return store.Path(), nil
}

// GetVersion returns the application version string.
func (a *App) GetVersion() string {
	return Version
}
