package flight

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/cdtdelta/stresstrip/internal/model"
)

// ErrInvalidPayload is returned when the flight-document collaborator's
// output does not have the expected shape or carries an unparseable timestamp.
var ErrInvalidPayload = errors.New("invalid flight data")

// payload mirrors the collaborator's JSON output. Pointers mark required keys.
type payload struct {
	Summary *string         `json:"summary"`
	Events  *[]payloadEvent `json:"events"`
}

type payloadEvent struct {
	Event        *string `json:"event"`
	TimestampISO *string `json:"timestamp_iso"`
	Details      string  `json:"details"`
}

// zone-less layouts are read as UTC, which is what the collaborator is asked to emit.
var utcLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
}

// Normalize converts raw collaborator output into FlightData. The whole
// payload is rejected if any event is missing a required field or has a
// timestamp that cannot be parsed. Event order is preserved.
func Normalize(raw []byte) (*model.FlightData, error) {
	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if p.Summary == nil {
		return nil, fmt.Errorf("%w: missing summary", ErrInvalidPayload)
	}
	if p.Events == nil {
		return nil, fmt.Errorf("%w: missing events", ErrInvalidPayload)
	}

	events := make([]model.FlightEvent, 0, len(*p.Events))
	for i, pe := range *p.Events {
		if pe.Event == nil {
			return nil, fmt.Errorf("%w: event %d: missing event name", ErrInvalidPayload, i)
		}
		if pe.TimestampISO == nil {
			return nil, fmt.Errorf("%w: event %d: missing timestamp_iso", ErrInvalidPayload, i)
		}
		ts, err := ParseTimestamp(*pe.TimestampISO)
		if err != nil {
			return nil, fmt.Errorf("%w: event %d (%s): %v", ErrInvalidPayload, i, *pe.Event, err)
		}
		events = append(events, model.FlightEvent{
			Name:      *pe.Event,
			Timestamp: ts,
			Details:   pe.Details,
		})
	}

	return &model.FlightData{Summary: *p.Summary, Events: events}, nil
}

// ParseTimestamp parses an ISO-8601 instant into epoch milliseconds.
// Instants without an offset are taken as UTC.
func ParseTimestamp(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("empty timestamp")
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UnixMilli(), nil
	}
	for _, layout := range utcLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UnixMilli(), nil
		}
	}
	return 0, fmt.Errorf("unrecognised timestamp %q", s)
}

// Sorted returns a chronologically ordered copy of events.
// Events with equal timestamps keep their relative order.
func Sorted(events []model.FlightEvent) []model.FlightEvent {
	out := slices.Clone(events)
	slices.SortStableFunc(out, func(a, b model.FlightEvent) int {
		switch {
		case a.Timestamp < b.Timestamp:
			return -1
		case a.Timestamp > b.Timestamp:
			return 1
		default:
			return 0
		}
	})
	return out
}

// Chronology renders events as one line each, oldest first, for the
// insight collaborator. Times are written in UTC.
func Chronology(events []model.FlightEvent) string {
	var b strings.Builder
	for _, e := range Sorted(events) {
		fmt.Fprintf(&b, "- %s: %s", model.TimeOf(e.Timestamp, time.UTC).Format(time.RFC3339), e.Name)
		if e.Details != "" {
			fmt.Fprintf(&b, " (%s)", e.Details)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
