package archive

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/klauspost/compress/zip"
	"go.uber.org/zap"

	"github.com/cdtdelta/stresstrip/internal/model"
)

const (
	// MaxMembers bounds how many qualifying members are parsed per archive.
	MaxMembers = 500

	memberSuffix = ".binning_data.json"
	stressMarker = "com.samsung.shealth.stress"
)

// Options controls an extraction run. The zero value is usable.
type Options struct {
	Logger *zap.Logger
	// MaxMembers overrides the qualifying-member cap; 0 means MaxMembers.
	MaxMembers int
	// OnProgress is called after each qualifying member with the running count.
	OnProgress func(members int)
}

// ReadResult contains the outcome of an archive extraction.
type ReadResult struct {
	Samples []model.HealthSample
	// Members is the number of qualifying members processed.
	Members int
	// SkippedMembers counts members that could not be read or were not valid JSON.
	SkippedMembers int
	// Excluded counts records dropped for a missing or non-numeric field.
	Excluded int
	// Truncated is set when more qualifying members existed than the cap allowed.
	Truncated bool
}

// binningRecord is one entry of a stress binning file. Both fields are
// pointers so that absent keys can be told apart from zero.
type binningRecord struct {
	Score   *float64 `json:"score"`
	EndTime *float64 `json:"end_time"`
}

// IsStressMember reports whether an archive entry name looks like a
// stress binning data file.
func IsStressMember(name string) bool {
	return strings.HasSuffix(name, memberSuffix) && strings.Contains(name, stressMarker)
}

// ReadFile extracts stress samples from the zip archive at path.
func ReadFile(path string, opts Options) (*ReadResult, error) {
	rc, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}
	defer rc.Close()

	return readMembers(rc.File, opts), nil
}

// ReadSamples extracts stress samples from a zip archive held in r.
// Unreadable or malformed members are logged and skipped; only a container
// that is not a zip archive at all is returned as an error.
func ReadSamples(r io.ReaderAt, size int64, opts Options) (*ReadResult, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}
	return readMembers(zr.File, opts), nil
}

func readMembers(files []*zip.File, opts Options) *ReadResult {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	limit := opts.MaxMembers
	if limit <= 0 {
		limit = MaxMembers
	}

	result := &ReadResult{Samples: []model.HealthSample{}}

	for _, f := range files {
		if f.FileInfo().IsDir() || !IsStressMember(f.Name) {
			continue
		}
		if result.Members >= limit {
			result.Truncated = true
			break
		}
		result.Members++
		collectMember(f, result, logger)

		if opts.OnProgress != nil {
			opts.OnProgress(result.Members)
		}
	}

	slices.SortStableFunc(result.Samples, func(a, b model.HealthSample) int {
		switch {
		case a.Timestamp < b.Timestamp:
			return -1
		case a.Timestamp > b.Timestamp:
			return 1
		default:
			return 0
		}
	})

	logger.Debug("Archive extraction finished",
		zap.Int("members", result.Members),
		zap.Int("skipped", result.SkippedMembers),
		zap.Int("samples", len(result.Samples)),
		zap.Int("excluded", result.Excluded),
		zap.Bool("truncated", result.Truncated))

	return result
}

// collectMember adds one member's samples to result. Unreadable or
// malformed members are logged and counted as skipped.
func collectMember(f *zip.File, result *ReadResult, logger *zap.Logger) {
	data, err := readMember(f)
	if err != nil {
		logger.Warn("Skipping unreadable archive member",
			zap.String("member", f.Name), zap.Error(err))
		result.SkippedMembers++
		return
	}

	samples, excluded, err := parseMember(data)
	if err != nil {
		logger.Warn("Skipping malformed archive member",
			zap.String("member", f.Name), zap.Error(err))
		result.SkippedMembers++
		return
	}
	result.Samples = append(result.Samples, samples...)
	result.Excluded += excluded
}

func readMember(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// parseMember decodes one member file into samples. It fails only when the
// content is not valid JSON; individual bad records are counted as excluded.
func parseMember(data []byte) ([]model.HealthSample, int, error) {
	var root json.RawMessage
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, 0, fmt.Errorf("invalid JSON: %w", err)
	}

	records := recordsOf(root)
	samples := make([]model.HealthSample, 0, len(records))
	excluded := 0

	for _, raw := range records {
		var rec binningRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			excluded++
			continue
		}
		if rec.Score == nil || rec.EndTime == nil {
			excluded++
			continue
		}
		samples = append(samples, model.HealthSample{
			Timestamp: int64(*rec.EndTime),
			Value:     *rec.Score,
			Kind:      model.KindStress,
		})
	}

	return samples, excluded, nil
}

// recordsOf locates the record sequence inside a member document. It tries
// a top-level array, then a "data" array, then a "binning_data" array, and
// treats anything else as empty.
func recordsOf(root json.RawMessage) []json.RawMessage {
	if records, ok := asArray(root); ok {
		return records
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(root, &obj); err != nil {
		return nil
	}
	for _, key := range []string{"data", "binning_data"} {
		if records, ok := asArray(obj[key]); ok {
			return records
		}
	}
	return nil
}

func asArray(raw json.RawMessage) ([]json.RawMessage, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, false
	}
	var records []json.RawMessage
	if err := json.Unmarshal(trimmed, &records); err != nil {
		return nil, false
	}
	return records, true
}
