package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// StatusResult summarizes the deployment state.
type StatusResult struct {
	RemoteOK   bool   `json:"remote_ok"`
	Guardians  int    `json:"guardians,omitempty"`
	Children   int    `json:"children,omitempty"`
	Events     int    `json:"events,omitempty"`
	PendingOps int    `json:"pending_ops"`
	RemoteErr  string `json:"remote_error,omitempty"`
}

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show roster counts and pending offline writes",
		Long: `Report the size of the remote roster and the offline queue.

The remote store is read fresh. When it is unreachable the queue depth
is still reported, so status works offline.

Examples:
  rollcall status
  rollcall status --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd.Context(), rootOpts.ConfigPath)
			if err != nil {
				return err
			}
			defer app.Close()

			res := StatusResult{RemoteOK: true}
			if err := app.cache.LoadAll(cmd.Context()); err != nil {
				res.RemoteOK = false
				res.RemoteErr = err.Error()
			} else {
				res.Guardians = len(app.cache.Guardians())
				res.Children = len(app.cache.Children())
				res.Events = len(app.cache.Events())
			}

			pending, err := app.queue.CountPending(cmd.Context())
			if err != nil {
				return WrapExitError(ExitCommandError, "count pending operations", err)
			}
			res.PendingOps = pending

			if rootOpts.Format == "json" {
				return outputJSON(cmd.OutOrStdout(), res)
			}

			w := cmd.OutOrStdout()
			if res.RemoteOK {
				fmt.Fprintf(w, "Remote:    ok\n")
				fmt.Fprintf(w, "Guardians: %d\n", res.Guardians)
				fmt.Fprintf(w, "Children:  %d\n", res.Children)
				fmt.Fprintf(w, "Events:    %d\n", res.Events)
			} else {
				fmt.Fprintf(w, "Remote:    unreachable (%s)\n", res.RemoteErr)
			}
			fmt.Fprintf(w, "Pending:   %d queued write(s)\n", res.PendingOps)
			return nil
		},
	}
}
