package llm

import (
	"time"

	"github.com/cdtdelta/stresstrip/internal/model"
)

const extractionPrompt = `You read travel itineraries, boarding passes and booking confirmations.
Return a single JSON object with exactly these keys:
  "summary": a short markdown summary of the trip (flights, airports, layovers)
  "events": an array of {"event": string, "timestamp_iso": string, "details": string}

Rules for events:
- List events in chronological order.
- Name each departure "Takeoff (Leg N)" and each arrival "Landing (Leg N)", numbering legs from 1.
- When there is a connection, add "Transit Start" at the arrival of the inbound leg and
  "Transit End" at the departure of the outbound leg.
- timestamp_iso must be a UTC instant in ISO-8601 form, for example 2024-01-01T10:00:00Z.
  Convert local airport times to UTC using the airport's time zone.
- details holds the flight number and airports, for example "UA1 SFO to JFK".
Return only the JSON object.`

const insightPrompt = `You are a calm, practical travel wellbeing assistant.
You receive a flight chronology and the wearable stress readings at or above the
high-stress threshold (0-100 scale) recorded on the travel days.
Write a short markdown analysis (at most 200 words): when stress peaked relative to
boarding, takeoff, landing and transit, any pattern across legs, and two or three
concrete suggestions for the next trip. Do not invent readings. If there are no
readings, say that stress stayed below the threshold.`

const insightTemplate = `Flight chronology (UTC):
%s
High-stress readings (timestamps in UTC, value 0-100):
%s`

type reading struct {
	Time  string  `json:"time"`
	Value float64 `json:"value"`
}

func insightReadings(samples []model.CorrelatedSample) []reading {
	out := make([]reading, len(samples))
	for i, s := range samples {
		out[i] = reading{
			Time:  model.TimeOf(s.Timestamp, time.UTC).Format(time.RFC3339),
			Value: s.Value,
		}
	}
	return out
}
