package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// DrainResultView is the JSON payload for the drain command.
type DrainResultView struct {
	Replayed int `json:"replayed"`
	Failed   int `json:"failed"`
	Pending  int `json:"pending"`
}

// NewDrainCommand creates the drain command.
func NewDrainCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "drain",
		Short: "Replay writes queued while offline",
		Long: `Replay queued operations against the remote store in enqueue order.

Operations that fail stay queued for the next drain. Replays go through
a queue-free client, so a replay that fails is never re-enqueued.

Exit codes:
  0 - Queue fully drained
  1 - One or more operations failed and remain queued
  2 - Command error (bad config, unreadable offline log)

Examples:
  rollcall drain
  rollcall drain --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd.Context(), rootOpts.ConfigPath)
			if err != nil {
				return err
			}
			defer app.Close()

			res, err := app.queue.Drain(cmd.Context(), app.client.Direct())
			if err != nil {
				return WrapExitError(ExitCommandError, "drain offline log", err)
			}

			view := DrainResultView{Replayed: res.Replayed, Failed: res.Failed}
			if pending, err := app.queue.CountPending(cmd.Context()); err == nil {
				view.Pending = pending
			}

			w := cmd.OutOrStdout()
			if rootOpts.Format == "json" {
				if view.Failed > 0 {
					if err := outputJSONError(w, "E_DRAIN_INCOMPLETE",
						fmt.Sprintf("%d operation(s) failed", view.Failed), view); err != nil {
						return err
					}
					return NewExitError(ExitFailure, fmt.Sprintf("%d operation(s) failed", view.Failed))
				}
				return outputJSON(w, view)
			}

			fmt.Fprintf(w, "Replayed %d operation(s), %d failed, %d still pending\n",
				view.Replayed, view.Failed, view.Pending)
			if view.Failed > 0 {
				return NewExitError(ExitFailure, fmt.Sprintf("%d operation(s) failed", view.Failed))
			}
			fmt.Fprintln(w, "✓ Queue drained")
			return nil
		},
	}
}
