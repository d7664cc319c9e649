package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/wadjakorntonsri/popular-clicks/pkg/core/domain"
	"github.com/wadjakorntonsri/popular-clicks/pkg/core/window"
)

func newReportCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Evaluate the whole report catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			result := app.Reports.RunCatalog(cmd.Context(), app.Catalog.Get())
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), result)
			}
			for _, res := range result.Reports {
				printReport(cmd.OutOrStdout(), res)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of tables")
	return cmd
}

func newTopCmd() *cobra.Command {
	var (
		granularity string
		ago         int
		seconds     int
		limit       int
		at          string
		asJSON      bool
	)

	cmd := &cobra.Command{
		Use:   "top",
		Short: "Rank links over one calendar period or rolling lookback",
		RunE: func(cmd *cobra.Command, args []string) error {
			var g domain.Granularity
			var anchor time.Time
			if seconds == 0 {
				parsed, ok := window.ParseGranularity(granularity)
				if !ok {
					return fmt.Errorf("unknown granularity %q (want one of %v)", granularity, domain.Granularities())
				}
				g = parsed
				if at != "" {
					t, err := time.Parse(domain.ClickTimeLayout, at)
					if err != nil {
						return fmt.Errorf("--at: %w", err)
					}
					anchor = t
				}
			}

			app, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			var res domain.ReportResult
			if seconds != 0 {
				res, err = app.Reports.Rolling(cmd.Context(), seconds, limit)
			} else {
				res, err = app.Reports.Fixed(cmd.Context(), g, ago, anchor, limit)
			}
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			printReport(cmd.OutOrStdout(), res)
			return nil
		},
	}

	cmd.Flags().StringVar(&granularity, "granularity", "day", "hour, day, week, month, year or all")
	cmd.Flags().IntVar(&ago, "ago", 0, "periods before the current one")
	cmd.Flags().IntVar(&seconds, "seconds", 0, "rolling lookback in seconds; overrides --granularity")
	cmd.Flags().IntVar(&limit, "limit", 0, "rows to show (default 10)")
	cmd.Flags().StringVar(&at, "at", "", "anchor time as YYYY-MM-DD HH:MM:SS instead of now")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func printReport(out io.Writer, res domain.ReportResult) {
	fmt.Fprintf(out, "Most popular links for %s\n", res.Description)
	switch {
	case res.Failed():
		fmt.Fprintf(out, "  error: %s\n\n", res.Error)
		return
	case res.NoResults:
		fmt.Fprint(out, "  no clicks\n\n")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  CLICKS\tCODE\tTITLE\tURL")
	for _, e := range res.Entries {
		fmt.Fprintf(w, "  %d\t%s\t%s\t%s\n", e.Clicks, e.ShortCode, e.Title, e.OriginalURL)
	}
	w.Flush()

	fmt.Fprintf(out, "  total %d", res.TotalClicks)
	if res.UsedDefaultLimit {
		fmt.Fprintf(out, " (top %d)", len(res.Entries))
	}
	fmt.Fprint(out, "\n\n")
}

func writeJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
