package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sundaykids/rollcall/internal/roster"
)

// PresentChild is one row of the present command output.
type PresentChild struct {
	EventID  int    `json:"event_id"`
	ChildID  int    `json:"child_id"`
	Name     string `json:"name"`
	SignedIn string `json:"signed_in"`
}

// NewPresentCommand creates the present command.
func NewPresentCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "present",
		Short: "List children currently signed in",
		Long: `List today's open sessions: children signed in and not yet out.

The projection is reloaded first, so sign-ins from other devices are
included.

Examples:
  rollcall present
  rollcall present --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd.Context(), rootOpts.ConfigPath)
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.cache.LoadAll(cmd.Context()); err != nil {
				return WrapExitError(ExitCommandError, "load roster", err)
			}
			present := app.cache.CurrentlyPresent()

			if rootOpts.Format == "json" {
				rows := make([]PresentChild, 0, len(present))
				for _, ev := range present {
					rows = append(rows, PresentChild{
						EventID:  ev.ID,
						ChildID:  ev.ChildID,
						Name:     ev.ChildFullName,
						SignedIn: ev.SignInTimestamp,
					})
				}
				return outputJSON(cmd.OutOrStdout(), rows)
			}

			renderPresent(cmd.OutOrStdout(), present)
			return nil
		},
	}
}

// renderPresent writes the text listing of open sessions.
func renderPresent(w io.Writer, events []roster.AttendanceEvent) {
	if len(events) == 0 {
		fmt.Fprintln(w, "No children currently signed in.")
		return
	}

	fmt.Fprintf(w, "Currently signed in: %d\n\n", len(events))
	fmt.Fprintf(w, "  %-6s%-24s%s\n", "ID", "CHILD", "SIGNED IN")
	for _, ev := range events {
		fmt.Fprintf(w, "  %-6d%-24s%s\n", ev.ID, ev.ChildFullName, ev.SignInTimestamp)
	}
}
