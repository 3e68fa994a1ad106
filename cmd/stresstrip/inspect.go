package main

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/cdtdelta/stresstrip/internal/database"
	"github.com/cdtdelta/stresstrip/internal/model"
	"github.com/cdtdelta/stresstrip/internal/query"
)

func inspectCmd(c *cli) *cobra.Command {
	var driver, sessionID, from, to string
	var minValue float64
	var limit int
	var histogram bool

	cmd := &cobra.Command{
		Use:   "inspect <dsn>",
		Short: "Query samples from an exported database",
		Long: `Lists exported analyses and the samples matching the filters.
--from and --to accept RFC 3339 or "YYYY-MM-DD HH:MM" in the configured timezone.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := c.cfg.Location()
			if err != nil {
				return err
			}
			if driver == "" {
				driver = c.cfg.Export.Driver
			}
			store, err := database.OpenStore(driver, args[0])
			if err != nil {
				return err
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			analyses, err := store.GetAnalyses()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%d analyses\n", len(analyses))
			for _, a := range analyses {
				fmt.Fprintf(out, "  %s  %s  %d samples, %d high\n", a.SessionID,
					model.TimeOf(a.CreatedAt, loc).Format(time.RFC3339), a.Samples, a.HighStress)
			}

			if histogram {
				buckets, err := store.GetStressHistogram(sessionID, c.cfg.StressThreshold)
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "HOUR (UTC)\tSAMPLES\tHIGH\tPEAK")
				for _, b := range buckets {
					fmt.Fprintf(tw, "%s\t%d\t%d\t%g\n", b.Hour, b.Count, b.High, b.Peak)
				}
				return tw.Flush()
			}

			q := query.New(limit)
			q.SetDialect(store.Dialect())
			if sessionID != "" {
				q.AddPredicate(query.Simple("session_id", query.Equal, sessionID))
			}
			if from != "" || to != "" {
				lo, hi := int64(0), int64(1<<62)
				if from != "" {
					if lo, err = parseTime(from, loc); err != nil {
						return err
					}
				}
				if to != "" {
					if hi, err = parseTime(to, loc); err != nil {
						return err
					}
				}
				q.AddPredicate(query.TimeRange(lo, hi))
			}
			if cmd.Flags().Changed("min") {
				q.AddPredicate(query.Simple("value", query.GreaterOrEqual, minValue))
			}
			if err := q.OrderBy("timestamp", false); err != nil {
				return err
			}

			countSQL, countArgs := q.BuildCount()
			total, err := store.ExecuteCountQuery(countSQL, countArgs)
			if err != nil {
				return err
			}
			sqlStr, sqlArgs := q.Build()
			rows, err := store.ExecuteQuery(sqlStr, sqlArgs)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "SESSION\tTIME\tVALUE\tKIND")
			for _, r := range rows {
				fmt.Fprintf(tw, "%s\t%s\t%g\t%s\n", shortID(r.SessionID),
					model.TimeOf(r.Timestamp, loc).Format("2006-01-02 15:04"), r.Value, r.Kind)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(out, "%d of %d matching samples\n", len(rows), total)
			return nil
		},
	}

	cmd.Flags().StringVar(&driver, "driver", "", "Database driver (sqlite or postgres)")
	cmd.Flags().StringVar(&sessionID, "session", "", "Only samples from this analysis")
	cmd.Flags().StringVar(&from, "from", "", "Earliest sample time")
	cmd.Flags().StringVar(&to, "to", "", "Latest sample time")
	cmd.Flags().Float64Var(&minValue, "min", 0, "Minimum stress value")
	cmd.Flags().IntVar(&limit, "limit", 100, "Max rows (0 = no limit)")
	cmd.Flags().BoolVar(&histogram, "histogram", false, "Print hourly sample counts instead of rows")

	return cmd
}

func parseTime(s string, loc *time.Location) (int64, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UnixMilli(), nil
	}
	for _, layout := range []string{"2006-01-02 15:04", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t.UnixMilli(), nil
		}
	}
	return 0, fmt.Errorf("unrecognised time %q", s)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
