package csvexport

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/cdtdelta/stresstrip/internal/model"
)

// File names written by WriteAnalysis.
const (
	SamplesFile = "samples.csv"
	SeriesFile  = "series.csv"
	EventsFile  = "events.csv"
)

// Column order matters: readers of the export rely on the positions.
var (
	samplesHeader = []string{"timestamp_ms", "local_time", "value", "kind"}
	seriesHeader  = []string{"minute_ms", "label", "stress"}
	eventsHeader  = []string{"seq", "name", "timestamp_ms", "local_time", "details"}
)

// WriteSamples writes the sample stream with a local-time column rendered in loc.
func WriteSamples(path string, samples []model.HealthSample, loc *time.Location) error {
	return writeFile(path, samplesHeader, func(w *csv.Writer) error {
		for _, s := range samples {
			row := []string{
				strconv.FormatInt(s.Timestamp, 10),
				localTime(s.Timestamp, loc),
				formatValue(s.Value),
				string(s.Kind),
			}
			if err := w.Write(row); err != nil {
				return fmt.Errorf("writing row: %w", err)
			}
		}
		return nil
	})
}

// WriteSeries writes chart buckets. Minutes without a value get an empty
// stress cell.
func WriteSeries(path string, buckets []model.ChartBucket) error {
	return writeFile(path, seriesHeader, func(w *csv.Writer) error {
		for _, b := range buckets {
			stress := ""
			if b.Stress != nil {
				stress = formatValue(*b.Stress)
			}
			if err := w.Write([]string{strconv.FormatInt(b.Minute, 10), b.Label, stress}); err != nil {
				return fmt.Errorf("writing row: %w", err)
			}
		}
		return nil
	})
}

// WriteEvents writes flight events in their itinerary order.
func WriteEvents(path string, events []model.FlightEvent, loc *time.Location) error {
	return writeFile(path, eventsHeader, func(w *csv.Writer) error {
		for i, e := range events {
			row := []string{
				strconv.Itoa(i),
				e.Name,
				strconv.FormatInt(e.Timestamp, 10),
				localTime(e.Timestamp, loc),
				e.Details,
			}
			if err := w.Write(row); err != nil {
				return fmt.Errorf("writing row: %w", err)
			}
		}
		return nil
	})
}

// WriteAnalysis writes samples, the visible series and events into dir,
// creating it if needed. It returns the paths written.
func WriteAnalysis(dir string, a *model.Analysis, series []model.ChartBucket) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating directory: %w", err)
	}

	samplesPath := filepath.Join(dir, SamplesFile)
	if err := WriteSamples(samplesPath, a.Samples, a.Location); err != nil {
		return nil, err
	}
	seriesPath := filepath.Join(dir, SeriesFile)
	if err := WriteSeries(seriesPath, series); err != nil {
		return nil, err
	}
	eventsPath := filepath.Join(dir, EventsFile)
	if err := WriteEvents(eventsPath, a.Flight.Events, a.Location); err != nil {
		return nil, err
	}
	return []string{samplesPath, seriesPath, eventsPath}, nil
}

func writeFile(path string, header []string, rows func(*csv.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)

	if err := writer.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	if err := rows(writer); err != nil {
		return err
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flushing %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}

func localTime(ms int64, loc *time.Location) string {
	return model.TimeOf(ms, loc).Format(time.RFC3339)
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
