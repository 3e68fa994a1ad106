package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/cdtdelta/stresstrip/internal/report"
)

func analyzeCmd(c *cli) *cobra.Command {
	var in inputs
	var plain bool
	var maxReadings int

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Print a stress report for a travel day",
		Long: `Extracts stress samples from the archive, derives flight events from the
itinerary (or a pre-extracted --events file) and prints the travel window,
high-stress readings, stress per flight phase and the narrative insight.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			wf, err := c.load(cmd.Context(), in)
			if err != nil {
				return err
			}
			a, err := wf.Session.Analysis()
			if err != nil {
				return err
			}

			styled := !plain && term.IsTerminal(int(os.Stdout.Fd()))
			return report.Write(cmd.OutOrStdout(), a, report.Options{
				Styled:      styled,
				MaxReadings: maxReadings,
			})
		},
	}

	in.register(cmd, true)
	cmd.Flags().BoolVar(&plain, "plain", false, "Disable styling even on a terminal")
	cmd.Flags().IntVar(&maxReadings, "max-readings", report.DefaultMaxReadings, "Max high-stress readings to list")

	return cmd
}
