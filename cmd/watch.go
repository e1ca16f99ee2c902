package cmd

import (
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/huangsam/folio/core"
	"github.com/huangsam/folio/internal/contract"
	"github.com/huangsam/folio/internal/logging"
	"github.com/huangsam/folio/internal/outwriter"
	"github.com/spf13/cobra"
)

// watchCmd keeps a live terminal view of the trackers.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Show a live view that refreshes every freshness window",
	Long: `Render the enabled trackers in the terminal and keep them up to date.

Each tracker refreshes once per freshness window and shows a countdown to its
next refresh. A tracker that could only show its built-in default is not
scheduled; restart the command once the upstream is reachable.

Press Ctrl+C to stop.

Examples:
  # Watch everything with shorter windows
  folio watch -u octocat --activity-window 10m --views-window 5m`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		ctx, stop := signal.NotifyContext(rootCtx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		surface := outwriter.NewTrackerSurface(cfg.Trackers)
		terminal := outwriter.NewTerminal(surface, cfg, os.Stdout)
		activity, views, judge, countdown := terminal.Presenters()
		surface.OnChange(func() {
			if err := terminal.Render(); err != nil {
				logging.Warn().Err(err).Msg("failed to render")
			}
		})

		trackers := core.BuildTrackers(cfg, cacheManager.GetSessionStore(), core.Presenters{
			Activity: activity,
			Views:    views,
			Judge:    judge,
		}, countdown.Countdown)
		defer core.CloseTrackers(trackers)

		var wg sync.WaitGroup
		for _, t := range trackers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, armed := t.Watch(ctx); !armed {
					logging.Warn().Str("tracker", string(t.Name())).Msg("showing default, refresh not scheduled")
				}
			}()
		}
		wg.Wait()

		if err := terminal.Render(); err != nil {
			contract.LogWarn("Failed to render", err)
		}
		<-ctx.Done()
	},
}
