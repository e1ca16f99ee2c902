package cmd

import (
	"sync"

	"github.com/huangsam/folio/core"
	"github.com/huangsam/folio/internal/contract"
	"github.com/huangsam/folio/internal/outwriter"
	"github.com/huangsam/folio/schema"
	"github.com/spf13/cobra"
)

// showCmd resolves every enabled tracker once and prints the reports.
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Resolve every tracker once and print the results",
	Long: `Resolve each enabled tracker once and print one report per tracker.

Each tracker is served from the session cache when fresh, fetched live otherwise,
and falls back to stale data or a built-in default when the fetch fails. The
report shows which of those happened.

Examples:
  # Show all trackers as a table
  folio show --username octocat --judge-username ada

  # Views and judge only, as JSON
  folio show --trackers views,judge --output json

  # Export to parquet
  folio show -u octocat --output parquet --output-file stats.parquet`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		trackers := core.BuildTrackers(cfg, cacheManager.GetSessionStore(), core.Presenters{}, nil)
		defer core.CloseTrackers(trackers)

		if err := outwriter.WriteReports(resolveAll(trackers), cfg); err != nil {
			contract.LogFatal("Failed to write reports", err)
		}
	},
}

// resolveAll resolves the trackers concurrently and returns the reports in tracker order.
func resolveAll(trackers []core.Tracker) []schema.TrackerReport {
	reports := make([]schema.TrackerReport, len(trackers))
	var wg sync.WaitGroup
	for i, t := range trackers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			reports[i] = t.Report(rootCtx)
		}()
	}
	wg.Wait()
	return reports
}
