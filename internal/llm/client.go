// Package llm calls the Gemini generateContent API for the two language
// model steps: extracting flight events from an itinerary document and
// writing the stress insight.
package llm

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cdtdelta/stresstrip/internal/model"
)

const (
	DefaultEndpoint = "https://generativelanguage.googleapis.com"
	DefaultModel    = "gemini-2.5-flash"
	DefaultTimeout  = 90 * time.Second

	// errorExcerpt bounds how much of a failed response body ends up in an error.
	errorExcerpt = 512
)

// ErrNotConfigured is returned when no API key has been provided.
var ErrNotConfigured = errors.New("language model API key not configured")

// Config holds the collaborator settings.
type Config struct {
	Endpoint string
	Model    string
	APIKey   string
	Timeout  time.Duration
}

// Client implements both session collaborators.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *zap.Logger
}

// New creates a Client. Empty endpoint, model and timeout take the defaults.
func New(cfg Config, logger *zap.Logger) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	Temperature      float64 `json:"temperature"`
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
}

type generateRequest struct {
	SystemInstruction *content         `json:"systemInstruction,omitempty"`
	Contents          []content        `json:"contents"`
	GenerationConfig  generationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
}

// ExtractFlight sends the itinerary document inline and returns the model's
// JSON output with any surrounding code fence removed. The output is not
// validated here; flight.Normalize is the trust boundary.
func (c *Client) ExtractFlight(ctx context.Context, doc []byte, mimeType string) ([]byte, error) {
	req := generateRequest{
		SystemInstruction: &content{Parts: []part{{Text: extractionPrompt}}},
		Contents: []content{{
			Role: "user",
			Parts: []part{
				{InlineData: &inlineData{MimeType: mimeType, Data: base64.StdEncoding.EncodeToString(doc)}},
				{Text: "Extract the flight itinerary from this document."},
			},
		}},
		GenerationConfig: generationConfig{ResponseMimeType: "application/json"},
	}

	text, err := c.generate(ctx, req)
	if err != nil {
		return nil, err
	}
	return []byte(StripFence(text)), nil
}

// GenerateInsight asks for a short markdown narrative about the high-stress
// samples relative to the flight chronology.
func (c *Client) GenerateInsight(ctx context.Context, samples []model.CorrelatedSample, chronology string) (string, error) {
	readings, err := json.Marshal(insightReadings(samples))
	if err != nil {
		return "", fmt.Errorf("encoding readings: %w", err)
	}

	req := generateRequest{
		SystemInstruction: &content{Parts: []part{{Text: insightPrompt}}},
		Contents: []content{{
			Role: "user",
			Parts: []part{{Text: fmt.Sprintf(insightTemplate, chronology, readings)}},
		}},
		GenerationConfig: generationConfig{Temperature: 0.4},
	}

	text, err := c.generate(ctx, req)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func (c *Client) generate(ctx context.Context, body generateRequest) (string, error) {
	if c.cfg.APIKey == "" {
		return "", ErrNotConfigured
	}

	bodyJSON, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", strings.TrimRight(c.cfg.Endpoint, "/"), c.cfg.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyJSON))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.cfg.APIKey)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("model request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading model response: %w", err)
	}
	c.logger.Debug("Model call finished",
		zap.String("model", c.cfg.Model),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		excerpt := string(respBody)
		if len(excerpt) > errorExcerpt {
			excerpt = excerpt[:errorExcerpt]
		}
		return "", fmt.Errorf("model returned %d: %s", resp.StatusCode, excerpt)
	}

	var gr generateResponse
	if err := json.Unmarshal(respBody, &gr); err != nil {
		return "", fmt.Errorf("failed to parse model response: %w", err)
	}
	if len(gr.Candidates) == 0 {
		return "", errors.New("model returned no candidates")
	}

	var b strings.Builder
	for _, p := range gr.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("model returned an empty answer (finish reason %q)", gr.Candidates[0].FinishReason)
	}
	return b.String(), nil
}

// StripFence removes a surrounding markdown code fence, if present.
func StripFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx >= 0 {
			s = s[idx+1:]
		} else {
			s = strings.TrimPrefix(s, "```")
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
