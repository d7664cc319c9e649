// Package main is the popular-clicks command line: reports, the raw click
// log and link import against the configured database.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/wadjakorntonsri/popular-clicks/pkg/bootstrap"
	"github.com/wadjakorntonsri/popular-clicks/pkg/config"
	"github.com/wadjakorntonsri/popular-clicks/pkg/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "popular-clicks",
		Short: "Most clicked short links over rolling and calendar windows",
		Long: `popular-clicks reads the click log and ranks short links by clicks.

Examples:
  popular-clicks report
  popular-clicks top --granularity day --ago 1 --limit 10
  popular-clicks top --seconds 300
  popular-clicks log --limit 20
  popular-clicks import --file links.json`,
		SilenceUsage: true,
	}

	root.AddCommand(newReportCmd(), newTopCmd(), newLogCmd(), newImportCmd())
	return root
}

// openApp wires the app from the environment. Logs go to stderr so stdout
// stays machine readable.
func openApp(ctx context.Context) (*bootstrap.App, error) {
	cfg := config.Load()
	logger := logging.NewTo(os.Stderr, cfg.LogLevel, cfg.LogFormat, cfg.LogFile)
	return bootstrap.New(ctx, cfg, logger, bootstrap.Options{})
}
