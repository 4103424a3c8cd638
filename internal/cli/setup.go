package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sundaykids/rollcall/internal/roster"
)

// NewSetupCommand creates the setup command.
func NewSetupCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Write header rows into empty sheets",
		Long: `Bootstrap the spreadsheet for a new deployment.

Each of the three tabs that is still empty gets its header row written.
Tabs that already carry a header are left untouched, so running setup
against an existing deployment is safe.

Examples:
  rollcall setup
  rollcall setup --config /etc/rollcall.yaml`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd.Context(), rootOpts.ConfigPath)
			if err != nil {
				return err
			}
			defer app.Close()

			// Header writes must reach the sheet, not the offline queue.
			if err := roster.EnsureHeaders(cmd.Context(), app.client.Direct(), tables(app.cfg)); err != nil {
				return WrapExitError(ExitCommandError, "ensure headers", err)
			}

			if rootOpts.Format == "json" {
				return outputJSON(cmd.OutOrStdout(), map[string]string{"result": "headers ensured"})
			}
			fmt.Fprintln(cmd.OutOrStdout(), "✓ Headers ensured")
			return nil
		},
	}
}
