package llm

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cdtdelta/stresstrip/internal/flight"
	"github.com/cdtdelta/stresstrip/internal/model"
)

func answer(text string) string {
	resp := map[string]any{
		"candidates": []any{map[string]any{
			"content":      map[string]any{"parts": []any{map[string]any{"text": text}}},
			"finishReason": "STOP",
		}},
	}
	b, _ := json.Marshal(resp)
	return string(b)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Config{Endpoint: srv.URL, Model: "test-model", APIKey: "secret"}, zaptest.NewLogger(t))
}

func TestExtractFlight(t *testing.T) {
	payload := `{"summary":"UA1","events":[{"event":"Takeoff (Leg 1)","timestamp_iso":"2024-01-01T10:00:00Z","details":"UA1"}]}`
	var got generateRequest

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1beta/models/test-model:generateContent", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("x-goog-api-key"))
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &got))
		io.WriteString(w, answer("```json\n"+payload+"\n```"))
	})

	raw, err := c.ExtractFlight(context.Background(), []byte("%PDF-1.7"), "application/pdf")
	require.NoError(t, err)
	assert.JSONEq(t, payload, string(raw))

	require.Len(t, got.Contents, 1)
	inline := got.Contents[0].Parts[0].InlineData
	require.NotNil(t, inline)
	assert.Equal(t, "application/pdf", inline.MimeType)
	decoded, err := base64.StdEncoding.DecodeString(inline.Data)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7", string(decoded))
	assert.Equal(t, "application/json", got.GenerationConfig.ResponseMimeType)
	assert.Contains(t, got.SystemInstruction.Parts[0].Text, "Takeoff (Leg N)")

	fd, err := flight.Normalize(raw)
	require.NoError(t, err)
	assert.Len(t, fd.Events, 1)
}

func TestGenerateInsight(t *testing.T) {
	var prompt string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		if assert.NoError(t, json.NewDecoder(r.Body).Decode(&req)) && len(req.Contents) > 0 {
			prompt = req.Contents[0].Parts[0].Text
		}
		io.WriteString(w, answer("  Stress peaked at **takeoff**.\n"))
	})

	text, err := c.GenerateInsight(context.Background(),
		[]model.CorrelatedSample{{Timestamp: 1704110400000, Value: 90}},
		"- 2024-01-01T10:00:00Z: Takeoff (Leg 1)\n")

	require.NoError(t, err)
	assert.Equal(t, "Stress peaked at **takeoff**.", text)
	assert.Contains(t, prompt, "Takeoff (Leg 1)")
	assert.Contains(t, prompt, `"time":"2024-01-01T12:00:00Z"`)
	assert.Contains(t, prompt, `"value":90`)
}

func TestGenerate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"server error", http.StatusTooManyRequests, `{"error":"quota"}`, "model returned 429"},
		{"not json", http.StatusOK, `<html>`, "failed to parse model response"},
		{"no candidates", http.StatusOK, `{"candidates":[]}`, "no candidates"},
		{"empty answer", http.StatusOK, `{"candidates":[{"content":{"parts":[]},"finishReason":"SAFETY"}]}`, "SAFETY"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			})
			_, err := c.ExtractFlight(context.Background(), []byte("x"), "text/plain")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGenerate_LongErrorBodyIsTruncated(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		io.WriteString(w, strings.Repeat("x", 5000))
	})

	_, err := c.GenerateInsight(context.Background(), nil, "")
	require.Error(t, err)
	assert.Less(t, len(err.Error()), 600)
}

func TestNotConfigured(t *testing.T) {
	c := New(Config{}, nil)
	_, err := c.ExtractFlight(context.Background(), nil, "application/pdf")
	assert.ErrorIs(t, err, ErrNotConfigured)
	_, err = c.GenerateInsight(context.Background(), nil, "")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestStripFence(t *testing.T) {
	tests := []struct{ in, want string }{
		{`{"a":1}`, `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}```", `{"a":1}`},
		{"  \n{\"a\":1}\n  ", `{"a":1}`},
		{"```{\"a\":1}```", `{"a":1}`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StripFence(tt.in), tt.in)
	}
}

func TestMimeType(t *testing.T) {
	assert.Equal(t, "application/pdf", MimeType("trip.PDF", nil))
	assert.Equal(t, "image/jpeg", MimeType("pass.jpeg", nil))
	assert.Equal(t, "application/pdf", MimeType("download", []byte("%PDF-1.4\n")))
	assert.Equal(t, "text/plain", MimeType("notes", []byte("Flight UA1 departs 10:00")))
}
