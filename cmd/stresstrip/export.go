package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cdtdelta/stresstrip/internal/csvexport"
	"github.com/cdtdelta/stresstrip/internal/database"
)

func exportCmd(c *cli) *cobra.Command {
	var in inputs
	var driver, dsn, csvDir string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export an analysis to SQLite, PostgreSQL or CSV",
		Long: `Writes samples, flight events, phase intervals and the analysis summary
to a database (--driver sqlite|postgres, --dsn), or the samples, visible chart
series and events to CSV files in --csv. Driver and DSN default to the [export]
table of the config file.`,
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

			if csvDir != "" {
				view, err := wf.Session.Chart()
				if err != nil {
					return err
				}
				paths, err := csvexport.WriteAnalysis(csvDir, a, view.Buckets)
				if err != nil {
					return err
				}
				for _, p := range paths {
					fmt.Fprintln(cmd.OutOrStdout(), p)
				}
				return nil
			}

			if driver == "" {
				driver = c.cfg.Export.Driver
			}
			if dsn == "" {
				dsn = c.cfg.Export.DSN
			}
			store, err := database.CreateStore(driver, dsn)
			if err != nil {
				return err
			}
			defer store.Close()

			n, err := database.Export(store, a, func(count int) {
				c.logger.Info("Export progress", zap.Int("samples", count))
			})
			if err != nil {
				return err
			}
			c.logger.Info("Exported analysis",
				zap.String("session", a.SessionID),
				zap.String("driver", driver),
				zap.Int("samples", n))
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d samples written to %s\n", a.SessionID, n, store.Path())
			return nil
		},
	}

	in.register(cmd, true)
	cmd.Flags().StringVar(&driver, "driver", "", "Database driver (sqlite or postgres)")
	cmd.Flags().StringVar(&dsn, "dsn", "", "SQLite file path or PostgreSQL connection string")
	cmd.Flags().StringVar(&csvDir, "csv", "", "Write CSV files into this directory instead of a database")
	cmd.MarkFlagsMutuallyExclusive("csv", "dsn")
	cmd.MarkFlagsMutuallyExclusive("csv", "driver")

	return cmd
}
