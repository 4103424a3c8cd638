package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sundaykids/rollcall/internal/roster"
)

// SearchChild is one row of the search command output.
type SearchChild struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	GuardianID  int    `json:"guardian_id"`
	DateOfBirth string `json:"date_of_birth,omitempty"`
}

// NewSearchCommand creates the search command.
func NewSearchCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Find children by name",
		Long: `Search the roster for children whose name contains the query.

Matching is case-insensitive with Unicode case folding.

Examples:
  rollcall search sam
  rollcall search "doe" --format json`,
		Args:          cobra.ExactArgs(1),
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
			matches := app.cache.SearchChildren(args[0])

			if rootOpts.Format == "json" {
				rows := make([]SearchChild, 0, len(matches))
				for _, ch := range matches {
					rows = append(rows, SearchChild{
						ID:          ch.ID,
						Name:        ch.FullName(),
						GuardianID:  ch.GuardianID,
						DateOfBirth: ch.DateOfBirth,
					})
				}
				return outputJSON(cmd.OutOrStdout(), rows)
			}

			renderChildren(cmd.OutOrStdout(), matches)
			return nil
		},
	}
}

// renderChildren writes the text listing of matched children.
func renderChildren(w io.Writer, children []roster.Child) {
	if len(children) == 0 {
		fmt.Fprintln(w, "No matching children.")
		return
	}

	fmt.Fprintf(w, "Matched: %d\n\n", len(children))
	fmt.Fprintf(w, "  %-6s%-24s%s\n", "ID", "CHILD", "GUARDIAN")
	for _, ch := range children {
		fmt.Fprintf(w, "  %-6d%-24s%d\n", ch.ID, ch.FullName(), ch.GuardianID)
	}
}
