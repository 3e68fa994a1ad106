package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/cdtdelta/stresstrip/internal/tui"
)

func exploreCmd(c *cli) *cobra.Command {
	var in inputs
	var step time.Duration

	cmd := &cobra.Command{
		Use:   "explore",
		Short: "Browse the stress chart around the flights in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			wf, err := c.load(cmd.Context(), in)
			if err != nil {
				return err
			}
			return tui.Run(wf.Session, tui.Options{Step: step})
		},
	}

	in.register(cmd, false)
	cmd.Flags().DurationVar(&step, "step", tui.DefaultStep, "How far one key press moves a window edge")

	return cmd
}
