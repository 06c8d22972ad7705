// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/websublime/wsconfig/internal/issue"
	"github.com/websublime/wsconfig/pkg/types"
)

func newIssueCommand(app *App) *cobra.Command {
	var style string

	cmd := &cobra.Command{
		Use:   "issue [name]",
		Short: "Show a troubleshooting guide",
		Long: `Show the troubleshooting guide for a known problem. Without a name, list
the available guides.`,
		Args: cobra.MaximumNArgs(1),
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			return issue.Names(), cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(_ *cobra.Command, args []string) error {
			if len(args) == 0 {
				fmt.Fprintln(app.stdout, TitleStyle.Render("Troubleshooting guides"))
				for _, name := range issue.Names() {
					fmt.Fprintln(app.stdout, "  "+CmdStyle.Render(name))
				}
				return nil
			}

			i, ok := issue.Lookup(args[0])
			if !ok {
				return &ExitError{
					Code: types.ExitUsage,
					Err: issue.NewErrorContext().
						WithOperation("show guide").
						WithResource(args[0]).
						WithSuggestion("Known guides: " + strings.Join(issue.Names(), ", ")).
						Wrap(fmt.Errorf("unknown guide %q", args[0])).
						BuildError(),
				}
			}
			out, err := i.Render(style)
			if err != nil {
				return &ExitError{Code: types.ExitFailure, Err: err}
			}
			fmt.Fprint(app.stdout, out)
			return nil
		},
	}

	cmd.Flags().StringVar(&style, "style", "auto", `glamour style: "auto", "dark", "light", "notty" or a JSON style file`)
	return cmd
}
