package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/huangsam/folio/internal/contract"
	"github.com/huangsam/folio/internal/server"
	"github.com/spf13/cobra"
)

// serveCmd runs the backend the portfolio page and the trackers call.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the backend proxy for view counts and judge stats",
	Long: `Serve /get_views and /get_leetcode_stats with CORS open to all origins.

/get_views increments the page-view counter and returns the new count, or -1 when
the counter cannot be reached. /get_leetcode_stats relays the solved-problem
object of --judge-username.

Keep the counter token out of config files:
  FOLIO_COUNTER_TOKEN=... folio serve --counter-url https://counter.example/v2/team/views`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		ctx, stop := signal.NotifyContext(rootCtx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := server.Serve(ctx, cfg); err != nil {
			contract.LogFatal("Backend stopped", err)
		}
	},
}
