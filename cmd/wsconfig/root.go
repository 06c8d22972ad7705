// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/websublime/wsconfig/internal/issue"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// rootFlagValues holds the persistent flags shared by every command.
type rootFlagValues struct {
	verbose       bool
	configPath    string
	workspaceRoot string
}

// NewRootCommand builds the command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	flags := &rootFlagValues{}

	root := &cobra.Command{
		Use:   "wsconfig",
		Short: "Workspace aliases and build config for module bundlers",
		Long: TitleStyle.Render("wsconfig") + SubtitleStyle.Render(" - workspace aliases and build config for module bundlers") + `

wsconfig scans the package directories of a monorepo and rewrites a bundler
configuration so every workspace package resolves to its source entry, and so
the package being built contributes its own build options.

` + SubtitleStyle.Render("Examples:") + `
  wsconfig scan                          List workspace packages
  wsconfig alias -i vite.config.json     Add workspace aliases to a config
  wsconfig build -p packages/ui          Merge a package's build options
  wsconfig apply -i vite.config.json -o vite.config.out.json
  wsconfig watch -i vite.config.json -o vite.config.out.json`,
		SilenceUsage: true,
	}

	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable debug logging and detailed errors")
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "wsconfig settings file (default is <config dir>/wsconfig/wsconfig.cue)")
	root.PersistentFlags().StringVarP(&flags.workspaceRoot, "workspace-root", "w", "", "workspace root directory (default: detected)")

	root.AddCommand(
		newAliasCommand(app, flags),
		newBuildCommand(app, flags),
		newApplyCommand(app, flags),
		newScanCommand(app, flags),
		newWatchCommand(app, flags),
		newConfigCommand(app, flags),
		newIssueCommand(app),
	)

	root.SetIn(app.stdin)
	root.SetOut(app.stdout)
	root.SetErr(app.stderr)

	return root
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI and exits with the code carried by the returned
// error. It is called by main.main().
func Execute() {
	app := NewApp(Dependencies{})
	root := NewRootCommand(app)

	if err := fang.Execute(
		context.Background(),
		root,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(func(w io.Writer, _ fang.Styles, err error) {
			printError(w, err, verboseFlag(root))
		}),
	); err != nil {
		if code := exitCodeOf(err); !code.IsSuccess() {
			os.Exit(int(code))
		}
	}
}

// printError writes err for the user. An ExitError without a cause has
// already been reported and prints nothing.
func printError(w io.Writer, err error, verbose bool) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Err == nil {
		return
	}
	fmt.Fprintln(w, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose))
	if verbose {
		printGuide(w, err)
	}
}

// printGuide renders the troubleshooting guide linked to err, if any.
func printGuide(w io.Writer, err error) {
	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		return
	}
	guide := ae.Guide()
	if guide == nil {
		return
	}
	out, renderErr := guide.Render("auto")
	if renderErr != nil {
		return
	}
	fmt.Fprint(w, out)
}

// formatErrorForDisplay uses ActionableError formatting when available.
func formatErrorForDisplay(err error, verbose bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verbose)
	}
	return err.Error()
}

func verboseFlag(root *cobra.Command) bool {
	v, err := root.PersistentFlags().GetBool("verbose")
	return err == nil && v
}
