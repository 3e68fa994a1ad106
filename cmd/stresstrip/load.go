package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cdtdelta/stresstrip/internal/llm"
	"github.com/cdtdelta/stresstrip/internal/session"
)

// inputs names the files an analysis is built from.
type inputs struct {
	archive   string
	itinerary string
	events    string
	insight   bool
}

func (in *inputs) register(cmd *cobra.Command, insightDefault bool) {
	cmd.Flags().StringVar(&in.archive, "archive", "", "Wearable export archive (.zip)")
	cmd.Flags().StringVar(&in.itinerary, "itinerary", "", "Itinerary document (PDF or image) sent for extraction")
	cmd.Flags().StringVar(&in.events, "events", "", "Pre-extracted flight JSON, used instead of --itinerary")
	cmd.Flags().BoolVar(&in.insight, "insight", insightDefault, "Request a narrative insight")
	_ = cmd.MarkFlagRequired("archive")
	cmd.MarkFlagsOneRequired("itinerary", "events")
	cmd.MarkFlagsMutuallyExclusive("itinerary", "events")
}

// load builds a session from the inputs. Insight failures are logged and
// leave the insight unavailable; they never fail the load.
func (c *cli) load(ctx context.Context, in inputs) (*session.Workflow, error) {
	loc, err := c.cfg.Location()
	if err != nil {
		return nil, err
	}
	s := session.New(session.Options{
		Location:   loc,
		Threshold:  c.cfg.StressThreshold,
		Padding:    c.cfg.WindowPadding.Duration,
		MaxMembers: c.cfg.MaxMembers,
		Logger:     c.logger,
	})
	client := llm.New(c.cfg.LLMConfig(), c.logger)
	wf := session.NewWorkflow(s, client, client)
	wf.OnArchiveProgress = func(members int) {
		c.logger.Debug("Archive progress", zap.Int("members", members))
	}

	result, err := wf.UploadArchiveFile(ctx, in.archive)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", in.archive, err)
	}
	if result.SkippedMembers > 0 {
		c.logger.Warn("Some archive members could not be read", zap.Int("skipped", result.SkippedMembers))
	}

	if in.events != "" {
		raw, err := os.ReadFile(in.events)
		if err != nil {
			return nil, fmt.Errorf("reading events: %w", err)
		}
		if _, err := wf.LoadFlightJSON(raw); err != nil {
			return nil, fmt.Errorf("%s: %w", in.events, err)
		}
	} else {
		doc, err := os.ReadFile(in.itinerary)
		if err != nil {
			return nil, fmt.Errorf("reading itinerary: %w", err)
		}
		if _, err := wf.UploadItinerary(ctx, doc, llm.MimeType(in.itinerary, doc)); err != nil {
			return nil, err
		}
	}

	if in.insight {
		if _, _, err := wf.MaybeInsight(ctx); err != nil {
			if errors.Is(err, llm.ErrNotConfigured) {
				c.logger.Info("Skipping insight, no API key configured")
			} else {
				c.logger.Warn("Insight unavailable", zap.Error(err))
			}
		}
	}
	return wf, nil
}
