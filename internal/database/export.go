package database

import (
	"errors"
	"fmt"

	"github.com/cdtdelta/stresstrip/internal/model"
)

// ErrEmptyAnalysis is returned by Export when there is nothing to write.
var ErrEmptyAnalysis = errors.New("analysis has no samples")

// Export writes one analysis to the store: samples, flight events, phase
// intervals and the summary row. It returns the number of samples written.
// Nothing is written when any part fails, including re-exporting a session
// that is already in the store.
func Export(s Store, a *model.Analysis, onProgress func(int)) (int, error) {
	if a == nil || len(a.Samples) == 0 {
		return 0, ErrEmptyAnalysis
	}

	n, err := s.WriteExport(ExportBatch{
		Record: AnalysisRecord{
			SessionID:  a.SessionID,
			CreatedAt:  model.Millis(a.CreatedAt),
			Timezone:   a.Timezone,
			Threshold:  a.Threshold,
			DayStart:   a.Travel.DayStart,
			DayEnd:     a.Travel.DayEnd,
			Samples:    int64(len(a.Samples)),
			HighStress: int64(len(a.Correlated)),
			Summary:    a.Flight.Summary,
			Insight:    a.Insight,
		},
		Samples: a.Samples,
		Events:  a.Flight.Events,
		Phases:  a.Phases,
	}, onProgress)
	if err != nil {
		return n, fmt.Errorf("exporting %s: %w", a.SessionID, err)
	}
	return n, nil
}
