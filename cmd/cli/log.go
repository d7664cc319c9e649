package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/wadjakorntonsri/popular-clicks/pkg/core/domain"
)

func newLogCmd() *cobra.Command {
	var (
		limit  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show the most recent clicks",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			clicks, _, err := app.Reports.RecentClicks(cmd.Context(), limit)
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), clicks)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TIME\tCODE\tREFERRER\tURL\tIP\tCOUNTRY")
			for _, c := range clicks {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					c.Timestamp.Format(domain.ClickTimeLayout), c.ShortCode, c.Referrer, c.OriginalURL, c.ClientIP, c.CountryCode)
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "clicks to show (default 10)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func newImportCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import links from a JSON array, skipping existing short codes",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(file)
			if err != nil {
				return err
			}
			defer f.Close()

			var links []domain.Link
			if err := json.NewDecoder(f).Decode(&links); err != nil {
				return fmt.Errorf("decode %s: %w", file, err)
			}

			app, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			count := 0
			for i := range links {
				l := links[i]
				existing, err := app.Store.GetByShortCode(cmd.Context(), l.ShortCode)
				if err != nil {
					return err
				}
				if existing != nil {
					app.Logger.Info().Str("short_code", l.ShortCode).Msg("skipping existing code")
					continue
				}
				if err := app.Store.Create(cmd.Context(), &l); err != nil {
					app.Logger.Error().Err(err).Str("short_code", l.ShortCode).Msg("import failed")
					continue
				}
				count++
			}

			fmt.Fprintf(cmd.OutOrStdout(), "imported %d links\n", count)
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "JSON file to import")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
